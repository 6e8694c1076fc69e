package bonus

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownRounding is returned by ParseRounding for unsupported names.
var ErrUnknownRounding = errors.New("unknown rounding policy")

// Rounding selects how a fractional bonus becomes whole units.
type Rounding int

// Supported rounding policies.
const (
	RoundFloor Rounding = iota
	RoundNearest
)

// ParseRounding accepts "floor" (or empty) and "round"/"nearest".
func ParseRounding(name string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "floor":
		return RoundFloor, nil
	case "round", "nearest":
		return RoundNearest, nil
	default:
		return RoundFloor, fmt.Errorf("%w: %q", ErrUnknownRounding, name)
	}
}

func (r Rounding) String() string {
	if r == RoundNearest {
		return "round"
	}
	return "floor"
}

func (r Rounding) apply(v float64) float64 {
	if r == RoundNearest {
		return math.Round(v)
	}
	return math.Floor(v)
}
