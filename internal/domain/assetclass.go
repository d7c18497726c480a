package domain

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AssetClass is a tag from the closed, configuration-driven set of asset
// classes tracked by the engine (e.g. Equity, Bond, Derivative).
type AssetClass string

// Universe is the ordered, immutable set of asset classes an engine instance
// operates on. Iteration order is the declaration order supplied at
// construction; breach evaluation and exposure reporting depend on it being
// stable for the lifetime of a portfolio's history.
type Universe struct {
	ordered []AssetClass
	index   map[AssetClass]struct{}
}

// NewUniverse builds a universe from the configured class list.
func NewUniverse(classes []AssetClass) (Universe, error) {
	if len(classes) == 0 {
		return Universe{}, errors.Wrap(ErrConfiguration, "asset class set is empty")
	}

	index := make(map[AssetClass]struct{}, len(classes))
	ordered := make([]AssetClass, 0, len(classes))
	for _, c := range classes {
		if c == "" {
			return Universe{}, errors.Wrap(ErrConfiguration, "empty asset class name")
		}
		if _, ok := index[c]; ok {
			return Universe{}, errors.Wrapf(ErrConfiguration, "duplicate asset class %s", c)
		}
		index[c] = struct{}{}
		ordered = append(ordered, c)
	}

	return Universe{ordered: ordered, index: index}, nil
}

// Classes returns the classes in declaration order. The caller must not
// modify the returned slice.
func (u Universe) Classes() []AssetClass {
	return u.ordered
}

// Contains reports whether the class belongs to the universe.
func (u Universe) Contains(c AssetClass) bool {
	_, ok := u.index[c]
	return ok
}

// Size returns the number of classes in the universe.
func (u Universe) Size() int {
	return len(u.ordered)
}

// QuantityFromFloat converts a caller-supplied float into an allocation
// quantity, rejecting non-finite values before they reach the engine.
func QuantityFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, errors.Wrap(ErrValidation, "quantity is not a finite number")
	}
	return decimal.NewFromFloat(f), nil
}
