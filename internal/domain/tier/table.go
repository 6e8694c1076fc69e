package tier

// Table is a read-only, ordered set of tiers. The zero value is an empty table.
// Tiers are not checked for overlap or gaps.
type Table struct {
	tiers []Tier
}

// NewTable copies tiers into a new Table.
func NewTable(tiers []Tier) Table {
	if len(tiers) == 0 {
		return Table{}
	}
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[i] = t.clone()
	}
	return Table{tiers: out}
}

// Len returns the number of tiers.
func (t Table) Len() int { return len(t.tiers) }

// Empty reports whether the table has no tiers.
func (t Table) Empty() bool { return len(t.tiers) == 0 }

// Tiers returns a copy of the tiers in declaration order.
func (t Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	for i, tr := range t.tiers {
		out[i] = tr.clone()
	}
	return out
}

// Find returns the matching tier with the greatest Min. On equal Min the
// tier declared first wins.
func (t Table) Find(amount float64) (Tier, bool) {
	best := -1
	for i, tr := range t.tiers {
		if !tr.Contains(amount) {
			continue
		}
		if best < 0 || tr.Min > t.tiers[best].Min {
			best = i
		}
	}
	if best < 0 {
		return Tier{}, false
	}
	return t.tiers[best].clone(), true
}
