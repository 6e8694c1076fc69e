package bonus

import (
	"strconv"
	"strings"
)

// smallAmountThreshold is the amount below which users likely typed a
// shortened figure.
const smallAmountThreshold = 100

// SmallAmountHint is shown for amounts that look truncated.
const SmallAmountHint = "Tip: enter whole amount in rupees, e.g., 12500"

// DefaultPresets are the shortcut amounts offered to users.
var DefaultPresets = []int64{500, 1000, 5000, 10000, 25000, 50000}

// ParseAmount keeps only the ASCII digits of input. An input without digits
// yields 0, and an overflowing one yields +Inf.
func ParseAmount(input string) float64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
	if digits == "" {
		return 0
	}
	// ParseFloat returns ±Inf together with ErrRange, which Compute treats
	// as an invalid amount.
	v, _ := strconv.ParseFloat(digits, 64)
	return v
}

// Hint returns advice for suspiciously small amounts, or "".
func Hint(amount float64) string {
	if amount > 0 && amount < smallAmountThreshold {
		return SmallAmountHint
	}
	return ""
}
