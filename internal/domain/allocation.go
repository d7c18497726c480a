package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Allocation maps asset classes to raw non-negative quantities. The unit is
// allocation-agnostic (currency or unit count); only relative proportions
// matter. A missing class counts as zero.
type Allocation map[AssetClass]decimal.Decimal

// Validate checks the allocation against the universe: every class must be
// known and every quantity non-negative. A zero total is legal.
func (a Allocation) Validate(universe Universe) error {
	for class, qty := range a {
		if !universe.Contains(class) {
			return errors.Wrapf(ErrValidation, "unknown asset class %s", class)
		}
		if qty.IsNegative() {
			return errors.Wrapf(ErrValidation, "negative quantity %s for %s", qty, class)
		}
	}
	return nil
}

// Total sums the quantities over the universe.
func (a Allocation) Total(universe Universe) decimal.Decimal {
	total := decimal.Zero
	for _, class := range universe.Classes() {
		total = total.Add(a[class])
	}
	return total
}

// Clone returns an independent copy of the allocation.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for class, qty := range a {
		out[class] = qty
	}
	return out
}
