// Package tiersource retrieves the bonus rule table.
//
// A Source fetches tiers from somewhere (an HTTP origin or a local file), a
// Cache keeps the last good copy, and a Loader combines both with a
// network-first policy that never fails: when neither yields a table the
// result is empty.
package tiersource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/bonus/internal/domain/tier"
	"gopkg.in/yaml.v3"
)

// Sentinel error kinds.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrDecode           = errors.New("decode tiers failed")
	ErrCacheMiss        = errors.New("tier cache miss")
)

// Format is the encoding of a tier document.
type Format int

// Supported document formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// Source fetches the current tier list.
type Source interface {
	Fetch(ctx context.Context) ([]tier.Tier, error)
	String() string
}

// Decode parses a tier document. Both formats hold a top-level array.
func Decode(data []byte, format Format) ([]tier.Tier, error) {
	var tiers []tier.Tier
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &tiers)
	default:
		err = json.Unmarshal(data, &tiers)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return tiers, nil
}

// FormatFor picks a format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource
// otherwise.
func NewSource(location, version string, timeout time.Duration) Source {
	l := strings.ToLower(location)
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return NewHTTPSource(location, WithVersion(version), WithTimeout(timeout))
	}
	return NewFileSource(location)
}
