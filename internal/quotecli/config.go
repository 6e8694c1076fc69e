// Package quotecli implements the quote command: it prints the bonus message
// for each amount, evaluated locally against a tier source or remotely by a
// running server.
package quotecli

import (
	"errors"
	"time"
)

// Default configuration constants.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultLocale   = "en-IN"
	DefaultSymbol   = "₹"
	DefaultRounding = "floor"
)

// Sentinel errors.
var (
	ErrNoAmounts   = errors.New("no amounts given")
	ErrNoSource    = errors.New("either -tiers or -server is required")
	ErrRemoteQuote = errors.New("remote quote failed")
)

// Config holds the command options.
type Config struct {
	// Tiers is an http(s) URL or a local .json/.yaml file.
	Tiers   string
	Version string

	// Server, when set, asks a running service instead of evaluating locally.
	Server string

	Locale   string
	Symbol   string
	Rounding string
	Timeout  time.Duration

	// JSON prints one quote object per line instead of the message.
	JSON    bool
	Verbose bool
}

// Validate checks that the command has something to evaluate against.
func (c *Config) Validate(amounts []string) error {
	if c.Tiers == "" && c.Server == "" {
		return ErrNoSource
	}
	if len(amounts) == 0 {
		return ErrNoAmounts
	}
	return nil
}
