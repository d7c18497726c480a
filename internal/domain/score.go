package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// WeightTable maps every asset class to its capital-risk weight used by the
// composite score (e.g. derivatives weigh heavier than bonds). Deployment
// configuration, fixed at construction.
type WeightTable map[AssetClass]decimal.Decimal

// Validate checks that the table covers the full universe.
func (t WeightTable) Validate(universe Universe) error {
	for _, class := range universe.Classes() {
		weight, ok := t[class]
		if !ok {
			return errors.Wrapf(ErrConfiguration, "weight table misses asset class %s", class)
		}
		if weight.IsNegative() {
			return errors.Wrapf(ErrConfiguration, "negative score weight for %s", class)
		}
	}
	for class := range t {
		if !universe.Contains(class) {
			return errors.Wrapf(ErrConfiguration, "weight table has unknown asset class %s", class)
		}
	}
	return nil
}

// Clone returns an independent copy of the table.
func (t WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(t))
	for class, weight := range t {
		out[class] = weight
	}
	return out
}

// Tier is a discrete risk classification derived from a numeric score.
type Tier struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// TierBoundary is one row of the ordered classification table: scores at or
// above MinScore fall into Tier unless a higher boundary matched first.
type TierBoundary struct {
	MinScore int
	Tier     Tier
}

// TierTable is the ordered boundary table consulted top-down, first match
// wins. Boundaries must be strictly descending and the last row must catch
// score zero.
type TierTable []TierBoundary

// Validate checks ordering and coverage of the boundary table.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return errors.Wrap(ErrConfiguration, "tier table is empty")
	}
	for i := 1; i < len(t); i++ {
		if t[i].MinScore >= t[i-1].MinScore {
			return errors.Wrapf(ErrConfiguration,
				"tier boundaries not strictly descending: %d then %d", t[i-1].MinScore, t[i].MinScore)
		}
	}
	if t[len(t)-1].MinScore > 0 {
		return errors.Wrapf(ErrConfiguration,
			"lowest tier boundary %d leaves scores below it unclassified", t[len(t)-1].MinScore)
	}
	return nil
}

// RiskScorer computes the weighted composite risk score and classifies it.
type RiskScorer struct {
	universe Universe
	weights  WeightTable
	tiers    TierTable
}

// NewRiskScorer validates the weight and tier tables and returns a scorer.
func NewRiskScorer(universe Universe, weights WeightTable, tiers TierTable) (*RiskScorer, error) {
	if err := weights.Validate(universe); err != nil {
		return nil, err
	}
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	tiersCopy := make(TierTable, len(tiers))
	copy(tiersCopy, tiers)
	return &RiskScorer{universe: universe, weights: weights.Clone(), tiers: tiersCopy}, nil
}

// Score computes round(Σ weight[class] × exposure[class]) clamped to 100.
// Rounding is half-up and deterministic for identical input.
func (s *RiskScorer) Score(exposure ExposureVector) int {
	sum := decimal.Zero
	for _, class := range s.universe.Classes() {
		sum = sum.Add(exposure[class].Mul(s.weights[class]))
	}

	score := sum.Round(0).IntPart()
	if score > 100 {
		score = 100
	}
	return int(score)
}

// Classify maps a score onto the configured tier table.
func (s *RiskScorer) Classify(score int) Tier {
	for _, boundary := range s.tiers {
		if score >= boundary.MinScore {
			return boundary.Tier
		}
	}
	// unreachable once Validate passed, scores are never negative
	return s.tiers[len(s.tiers)-1].Tier
}

// Weights returns a copy of the configured weight table.
func (s *RiskScorer) Weights() WeightTable {
	return s.weights.Clone()
}
