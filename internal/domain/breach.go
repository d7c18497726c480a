package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// LimitTable maps every asset class to its maximum permitted exposure
// percentage. The threshold is exclusive: exceeding it, not reaching it,
// constitutes a breach. Supplied once at construction and immutable after.
type LimitTable map[AssetClass]decimal.Decimal

// Validate checks that the table covers the full universe with sane values.
func (t LimitTable) Validate(universe Universe) error {
	for _, class := range universe.Classes() {
		limit, ok := t[class]
		if !ok {
			return errors.Wrapf(ErrConfiguration, "limit table misses asset class %s", class)
		}
		if limit.IsNegative() {
			return errors.Wrapf(ErrConfiguration, "negative exposure limit for %s", class)
		}
	}
	for class := range t {
		if !universe.Contains(class) {
			return errors.Wrapf(ErrConfiguration, "limit table has unknown asset class %s", class)
		}
	}
	return nil
}

// Clone returns an independent copy of the table.
func (t LimitTable) Clone() LimitTable {
	out := make(LimitTable, len(t))
	for class, limit := range t {
		out[class] = limit
	}
	return out
}

// BreachEvaluator compares exposures against the configured limit table.
type BreachEvaluator struct {
	universe Universe
	limits   LimitTable
}

// NewBreachEvaluator validates the limit table against the universe and
// returns an evaluator.
func NewBreachEvaluator(universe Universe, limits LimitTable) (*BreachEvaluator, error) {
	if err := limits.Validate(universe); err != nil {
		return nil, err
	}
	return &BreachEvaluator{universe: universe, limits: limits.Clone()}, nil
}

// Evaluate returns one description per breached class, in universe
// declaration order. The order is part of the contract: the ledger's dedup
// rule compares breach lists positionally, so it must be deterministic.
// Returns an empty list when nothing breaches.
func (e *BreachEvaluator) Evaluate(exposure ExposureVector) []string {
	breaches := make([]string, 0)
	for _, class := range e.universe.Classes() {
		limit := e.limits[class]
		if exposure[class].GreaterThan(limit) {
			breaches = append(breaches, fmt.Sprintf("%s exposure exceeds %s%%", class, limit))
		}
	}
	return breaches
}

// Limits returns a copy of the configured limit table.
func (e *BreachEvaluator) Limits() LimitTable {
	return e.limits.Clone()
}
