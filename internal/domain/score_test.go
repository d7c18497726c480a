package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testWeights() WeightTable {
	return WeightTable{
		"Equity":     decimal.RequireFromString("0.7"),
		"Bond":       decimal.RequireFromString("0.3"),
		"Derivative": decimal.RequireFromString("1.2"),
	}
}

func testTiers() TierTable {
	return TierTable{
		{MinScore: 75, Tier: Tier{Label: "High", Severity: "critical"}},
		{MinScore: 50, Tier: Tier{Label: "Medium", Severity: "elevated"}},
		{MinScore: 0, Tier: Tier{Label: "Low", Severity: "normal"}},
	}
}

func newTestScorer(t *testing.T) *RiskScorer {
	t.Helper()
	scorer, err := NewRiskScorer(testUniverse(t), testWeights(), testTiers())
	require.NoError(t, err)
	return scorer
}

func TestScore_WeightedSum(t *testing.T) {
	scorer := newTestScorer(t)

	// 60*0.7 + 20*0.3 + 20*1.2 = 42 + 6 + 24 = 72
	score := scorer.Score(ExposureVector{
		"Equity":     decimal.NewFromInt(60),
		"Bond":       decimal.NewFromInt(20),
		"Derivative": decimal.NewFromInt(20),
	})
	require.Equal(t, 72, score)
}

func TestScore_ClampedAt100(t *testing.T) {
	scorer := newTestScorer(t)

	score := scorer.Score(ExposureVector{
		"Equity":     decimal.NewFromInt(0),
		"Bond":       decimal.NewFromInt(0),
		"Derivative": decimal.NewFromInt(100),
	})
	require.Equal(t, 100, score)
}

func TestScore_RoundsHalfUp(t *testing.T) {
	universe, err := NewUniverse([]AssetClass{"Equity"})
	require.NoError(t, err)

	scorer, err := NewRiskScorer(universe,
		WeightTable{"Equity": decimal.RequireFromString("0.5")},
		TierTable{{MinScore: 0, Tier: Tier{Label: "Low", Severity: "normal"}}})
	require.NoError(t, err)

	// 45 * 0.5 = 22.5 rounds up to 23
	score := scorer.Score(ExposureVector{"Equity": decimal.NewFromInt(45)})
	require.Equal(t, 23, score)
}

func TestScore_ZeroExposure(t *testing.T) {
	scorer := newTestScorer(t)

	score := scorer.Score(ExposureVector{
		"Equity":     decimal.Zero,
		"Bond":       decimal.Zero,
		"Derivative": decimal.Zero,
	})
	require.Equal(t, 0, score)
	require.Equal(t, "Low", scorer.Classify(score).Label)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	scorer := newTestScorer(t)

	cases := []struct {
		score int
		label string
	}{
		{100, "High"},
		{75, "High"},
		{74, "Medium"},
		{50, "Medium"},
		{49, "Low"},
		{0, "Low"},
	}
	for _, c := range cases {
		require.Equal(t, c.label, scorer.Classify(c.score).Label, "score %d", c.score)
	}
}

func TestNewRiskScorer_TiersOutOfOrder(t *testing.T) {
	tiers := TierTable{
		{MinScore: 50, Tier: Tier{Label: "Medium", Severity: "elevated"}},
		{MinScore: 75, Tier: Tier{Label: "High", Severity: "critical"}},
		{MinScore: 0, Tier: Tier{Label: "Low", Severity: "normal"}},
	}

	_, err := NewRiskScorer(testUniverse(t), testWeights(), tiers)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewRiskScorer_NoCatchAllTier(t *testing.T) {
	tiers := TierTable{
		{MinScore: 75, Tier: Tier{Label: "High", Severity: "critical"}},
		{MinScore: 50, Tier: Tier{Label: "Medium", Severity: "elevated"}},
	}

	_, err := NewRiskScorer(testUniverse(t), testWeights(), tiers)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewRiskScorer_IncompleteWeights(t *testing.T) {
	weights := testWeights()
	delete(weights, "Bond")

	_, err := NewRiskScorer(testUniverse(t), weights, testTiers())
	require.ErrorIs(t, err, ErrConfiguration)
}
