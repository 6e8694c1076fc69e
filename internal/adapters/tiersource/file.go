package tiersource

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/bonus/internal/domain/tier"
)

// FileSource reads tiers from a local JSON or YAML file. The file is read
// on every Fetch.
type FileSource struct {
	path   string
	format Format
}

// NewFileSource infers the format from the file extension.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, format: FormatFor(path)}
}

func (s *FileSource) String() string { return s.path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]tier.Tier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}
	return Decode(data, s.format)
}
