package bonus

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default presentation settings.
const (
	DefaultLocale         = "en-IN"
	DefaultCurrencySymbol = "₹"
)

// Formatter renders whole currency amounts with locale grouping.
// Values are floored and clamped at zero; fractional digits are never shown.
type Formatter struct {
	tag    language.Tag
	symbol string
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithLocale sets the locale used for digit grouping.
func WithLocale(tag language.Tag) FormatterOption {
	return func(f *Formatter) {
		if tag != language.Und {
			f.tag = tag
		}
	}
}

// WithCurrencySymbol sets the prefix printed before every amount.
func WithCurrencySymbol(symbol string) FormatterOption {
	return func(f *Formatter) {
		f.symbol = symbol
	}
}

// NewFormatter returns a Formatter for en-IN rupees unless overridden.
func NewFormatter(opts ...FormatterOption) Formatter {
	f := Formatter{
		tag:    language.MustParse(DefaultLocale),
		symbol: DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// ParseLocale parses a BCP 47 tag such as "en-IN" or "de-DE".
func ParseLocale(locale string) (language.Tag, error) {
	return language.Parse(locale)
}

// Number renders v with grouping and no symbol.
func (f Formatter) Number(v float64) string {
	return message.NewPrinter(f.tag).Sprintf("%d", wholeUnits(v))
}

// Format renders v with the currency symbol, e.g. "₹12,500".
func (f Formatter) Format(v float64) string {
	return f.symbol + f.Number(v)
}

// Symbol returns the configured currency symbol.
func (f Formatter) Symbol() string { return f.symbol }

// wholeUnits floors v and clamps it into [0, MaxInt64]. NaN maps to 0.
func wholeUnits(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(math.Floor(v))
}
