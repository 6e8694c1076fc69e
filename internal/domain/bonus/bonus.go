// Package bonus resolves the tier for a deposit amount and computes the
// bonus credited for it.
//
// Everything here is pure: a Resolver holds an immutable tier.Table and the
// presentation settings, and Compute has no side effects.
package bonus

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/bonus/internal/domain/tier"
)

// Fixed result messages.
const (
	MsgInvalidAmount = "Invalid amount."
	MsgNoBonus       = "No bonus."
)

// Result is produced per evaluation and never stored.
type Result struct {
	Amount  float64    `json:"amount"`
	Bonus   int64      `json:"bonus"`
	Total   int64      `json:"total"`
	Tier    *tier.Tier `json:"tier"`
	Message string     `json:"message"`
}

// Matched reports whether a tier was selected.
func (r Result) Matched() bool { return r.Tier != nil }

// Resolver computes bonuses against one rule table.
type Resolver struct {
	table     tier.Table
	formatter Formatter
	rounding  Rounding
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFormatter sets the formatter used for messages.
func WithFormatter(f Formatter) Option {
	return func(r *Resolver) {
		r.formatter = f
	}
}

// WithRounding sets the rounding policy. Floor is the default.
func WithRounding(policy Rounding) Option {
	return func(r *Resolver) {
		r.rounding = policy
	}
}

// NewResolver binds a resolver to table.
func NewResolver(table tier.Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:     table,
		formatter: NewFormatter(),
		rounding:  RoundFloor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compute evaluates amount against the default resolver settings.
func Compute(amount float64, table tier.Table) Result {
	return NewResolver(table).Compute(amount)
}

// Table returns the rule table the resolver was built with.
func (r *Resolver) Table() tier.Table { return r.table }

// Formatter returns the resolver's formatter.
func (r *Resolver) Formatter() Formatter { return r.formatter }

// FindTier returns the tier that applies to amount, if any.
func (r *Resolver) FindTier(amount float64) (tier.Tier, bool) {
	return r.table.Find(amount)
}

// Compute returns the bonus for amount. Invalid or unmatched amounts yield a
// zero bonus and an explanatory message instead of an error.
func (r *Resolver) Compute(amount float64) Result {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Result{Message: MsgInvalidAmount}
	}

	t, ok := r.table.Find(amount)
	if !ok {
		return Result{
			Amount:  amount,
			Total:   wholeUnits(amount),
			Message: MsgNoBonus,
		}
	}

	raw := amount * t.Rate
	if t.Cap != nil {
		raw = math.Min(raw, *t.Cap)
	}
	rounded := r.rounding.apply(raw)
	if t.Cap != nil {
		// Rounding to nearest must not lift a fractional cap.
		rounded = math.Min(rounded, math.Floor(*t.Cap))
	}
	b := wholeUnits(rounded)

	return Result{
		Amount:  amount,
		Bonus:   b,
		Total:   wholeUnits(amount + float64(b)),
		Tier:    &t,
		Message: r.message(amount, b, t),
	}
}

func (r *Resolver) message(amount float64, b int64, t tier.Tier) string {
	f := r.formatter
	var note strings.Builder
	note.WriteString(strconv.FormatFloat(math.Round(t.Rate*100), 'f', 0, 64))
	note.WriteString("%")
	if t.Cap != nil {
		note.WriteString(", cap ")
		note.WriteString(f.Format(*t.Cap))
	}
	return fmt.Sprintf("Deposit: %s | Bonus: %s (%s) | Total credit: %s",
		f.Format(amount),
		f.Format(float64(b)),
		note.String(),
		f.Format(amount+float64(b)),
	)
}
