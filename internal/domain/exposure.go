package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ExposureVector maps asset classes to percentage-of-total exposures in
// [0,100], rounded to two decimal places per class. Because rounding is
// applied independently per class, the values may drift from summing to
// exactly 100 by up to 0.01 per class beyond the first; that slack is
// accepted, not corrected. Derived data: recomputed on every read, never
// persisted apart from the allocation that produced it.
type ExposureVector map[AssetClass]decimal.Decimal

// ExposureCalculator normalizes raw allocations into percentage exposures.
type ExposureCalculator struct {
	universe Universe
}

// NewExposureCalculator returns a calculator over the given universe.
func NewExposureCalculator(universe Universe) *ExposureCalculator {
	return &ExposureCalculator{universe: universe}
}

// Compute converts the allocation into an exposure vector. A zero total is a
// defined degenerate state producing an all-zero vector, not an error.
// Negative quantities are a caller error.
func (c *ExposureCalculator) Compute(allocation Allocation) (ExposureVector, error) {
	if err := allocation.Validate(c.universe); err != nil {
		return nil, err
	}

	total := allocation.Total(c.universe)
	exposure := make(ExposureVector, c.universe.Size())

	if !total.IsPositive() {
		for _, class := range c.universe.Classes() {
			exposure[class] = decimal.Zero
		}
		return exposure, nil
	}

	for _, class := range c.universe.Classes() {
		exposure[class] = allocation[class].Mul(hundred).Div(total).Round(2)
	}
	return exposure, nil
}
