// Package tier defines bonus tiers and the immutable rule table they form.
package tier

// Tier is one rule of the bonus table. Min is inclusive, Max is exclusive.
// A nil Max means unbounded above and a nil Cap means uncapped.
type Tier struct {
	Min   float64  `json:"min" yaml:"min"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Rate  float64  `json:"rate" yaml:"rate"`
	Cap   *float64 `json:"cap,omitempty" yaml:"cap,omitempty"`
	Label string   `json:"label" yaml:"label"`
}

// Contains reports whether amount falls inside [Min, Max).
func (t Tier) Contains(amount float64) bool {
	if amount < t.Min {
		return false
	}
	return t.Max == nil || amount < *t.Max
}

// HasCap reports whether the tier bounds the absolute bonus.
func (t Tier) HasCap() bool { return t.Cap != nil }

// clone deep-copies the optional bounds so callers cannot reach into a Table.
func (t Tier) clone() Tier {
	c := t
	if t.Max != nil {
		v := *t.Max
		c.Max = &v
	}
	if t.Cap != nil {
		v := *t.Cap
		c.Cap = &v
	}
	return c
}

// Float returns a pointer to v. Handy for building tiers in code.
func Float(v float64) *float64 { return &v }
