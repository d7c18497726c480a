package monitor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/portsure/internal/domain"
	"go.uber.org/zap"
)

type journalSpy struct {
	events []domain.EvaluationEvent
}

func (j *journalSpy) Record(event domain.EvaluationEvent) error {
	j.events = append(j.events, event)
	return nil
}

func newTestMonitor(t *testing.T, journal EventJournal) *Monitor {
	t.Helper()

	universe, err := domain.NewUniverse([]domain.AssetClass{"Equity", "Bond", "Derivative"})
	require.NoError(t, err)

	m, err := New(universe,
		domain.LimitTable{
			"Equity":     decimal.NewFromInt(60),
			"Bond":       decimal.NewFromInt(70),
			"Derivative": decimal.NewFromInt(30),
		},
		domain.WeightTable{
			"Equity":     decimal.RequireFromString("0.7"),
			"Bond":       decimal.RequireFromString("0.3"),
			"Derivative": decimal.RequireFromString("1.2"),
		},
		domain.TierTable{
			{MinScore: 75, Tier: domain.Tier{Label: "High", Severity: "critical"}},
			{MinScore: 50, Tier: domain.Tier{Label: "Medium", Severity: "elevated"}},
			{MinScore: 0, Tier: domain.Tier{Label: "Low", Severity: "normal"}},
		},
		journal, zap.NewNop())
	require.NoError(t, err)
	return m
}

func allocation(equity, bond, derivative int64) domain.Allocation {
	return domain.Allocation{
		"Equity":     decimal.NewFromInt(equity),
		"Bond":       decimal.NewFromInt(bond),
		"Derivative": decimal.NewFromInt(derivative),
	}
}

func TestMonitor_InvalidConfigRejected(t *testing.T) {
	universe, err := domain.NewUniverse([]domain.AssetClass{"Equity"})
	require.NoError(t, err)

	_, err = New(universe,
		domain.LimitTable{},
		domain.WeightTable{"Equity": decimal.NewFromInt(1)},
		domain.TierTable{{MinScore: 0, Tier: domain.Tier{Label: "Low", Severity: "normal"}}},
		nil, nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMonitor_UnknownPortfolio(t *testing.T) {
	m := newTestMonitor(t, nil)

	_, err := m.GetExposure("missing")
	require.ErrorIs(t, err, domain.ErrUnknownPortfolio)

	_, err = m.CalculateRisk("missing")
	require.ErrorIs(t, err, domain.ErrUnknownPortfolio)

	_, err = m.History("missing")
	require.ErrorIs(t, err, domain.ErrUnknownPortfolio)

	err = m.SetAllocation("missing", "Equity", decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrUnknownPortfolio)
}

func TestMonitor_RegisterTwice(t *testing.T) {
	m := newTestMonitor(t, nil)

	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))
	require.ErrorIs(t, m.Register("P1001", nil), domain.ErrPortfolioExists)
}

func TestMonitor_SetAllocationValidation(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))

	err := m.SetAllocation("P1001", "Equity", decimal.NewFromInt(-5))
	require.ErrorIs(t, err, domain.ErrValidation)

	err = m.SetAllocation("P1001", "Crypto", decimal.NewFromInt(5))
	require.ErrorIs(t, err, domain.ErrValidation)

	// rejected updates must leave the allocation untouched
	current, err := m.GetAllocation("P1001")
	require.NoError(t, err)
	require.True(t, current["Equity"].Equal(decimal.NewFromInt(60)))
}

func TestMonitor_ExposureScenario(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))

	exposure, err := m.GetExposure("P1001")
	require.NoError(t, err)
	require.True(t, exposure["Equity"].Equal(decimal.NewFromInt(60)))
	require.True(t, exposure["Bond"].Equal(decimal.NewFromInt(20)))
	require.True(t, exposure["Derivative"].Equal(decimal.NewFromInt(20)))

	// 60 is not > 60, so no breach is recorded
	history, err := m.History("P1001")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestMonitor_CalculateRiskScenario(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))

	event, err := m.CalculateRisk("P1001")
	require.NoError(t, err)
	require.Equal(t, domain.EventCalculation, event.Kind)
	require.NotNil(t, event.Score)
	require.Equal(t, 72, *event.Score)
	require.NotNil(t, event.Tier)
	require.Equal(t, "Medium", event.Tier.Label)
	require.Empty(t, event.Breaches)
	require.NotEmpty(t, event.ID)

	history, err := m.History("P1001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, event.ID, history[0].ID)
}

func TestMonitor_CalculationsNeverDeduped(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))

	first, err := m.CalculateRisk("P1001")
	require.NoError(t, err)
	second, err := m.CalculateRisk("P1001")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	history, err := m.History("P1001")
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestMonitor_BreachScenario(t *testing.T) {
	journal := &journalSpy{}
	m := newTestMonitor(t, journal)
	require.NoError(t, m.Register("P1002", allocation(0, 50, 19)))

	require.NoError(t, m.SetAllocation("P1002", "Equity", decimal.NewFromInt(3000)))

	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.EventBreach, history[0].Kind)
	require.Nil(t, history[0].Score)
	require.Equal(t, []string{"Equity exposure exceeds 60%"}, history[0].Breaches)
	require.Len(t, journal.events, 1)
}

func TestMonitor_BreachDedupOnIdenticalMutation(t *testing.T) {
	journal := &journalSpy{}
	m := newTestMonitor(t, journal)
	require.NoError(t, m.Register("P1002", allocation(0, 50, 19)))

	require.NoError(t, m.SetAllocation("P1002", "Equity", decimal.NewFromInt(3000)))
	require.NoError(t, m.SetAllocation("P1002", "Equity", decimal.NewFromInt(3000)))

	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, journal.events, 1)
}

func TestMonitor_CalculationAfterBreachCarriesBreachList(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1002", allocation(3000, 50, 19)))
	require.NoError(t, m.RecheckBreaches("P1002"))

	event, err := m.CalculateRisk("P1002")
	require.NoError(t, err)
	require.Equal(t, domain.EventCalculation, event.Kind)
	require.Equal(t, []string{"Equity exposure exceeds 60%"}, event.Breaches)

	// dedup never applies to CALCULATION, and a later identical BREACH state
	// still dedups against the last BREACH head rule
	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.EventCalculation, history[0].Kind)
	require.Equal(t, domain.EventBreach, history[1].Kind)
}

func TestMonitor_BreachReappearsAfterCalculation(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1002", allocation(3000, 50, 19)))
	require.NoError(t, m.RecheckBreaches("P1002"))

	_, err := m.CalculateRisk("P1002")
	require.NoError(t, err)

	// the head is now a CALCULATION, so the unchanged breach state appends
	// again on the next mutation
	require.NoError(t, m.SetAllocation("P1002", "Bond", decimal.NewFromInt(50)))

	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, domain.EventBreach, history[0].Kind)
}

func TestMonitor_RecheckBreachesIdempotent(t *testing.T) {
	journal := &journalSpy{}
	m := newTestMonitor(t, journal)
	require.NoError(t, m.Register("P1002", allocation(3000, 50, 19)))

	require.NoError(t, m.RecheckBreaches("P1002"))
	require.NoError(t, m.RecheckBreaches("P1002"))

	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, journal.events, 1)
}

func TestMonitor_ZeroTotalAllocation(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(0, 0, 0)))
	require.NoError(t, m.RecheckBreaches("P1001"))

	exposure, err := m.GetExposure("P1001")
	require.NoError(t, err)
	for class, value := range exposure {
		require.True(t, value.IsZero(), "class %s", class)
	}

	event, err := m.CalculateRisk("P1001")
	require.NoError(t, err)
	require.Equal(t, 0, *event.Score)
	require.Equal(t, "Low", event.Tier.Label)
	require.Empty(t, event.Breaches)

	// zero total produced no BREACH event, only the calculation
	history, err := m.History("P1001")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestMonitor_HistoryStaysWithinPortfolio(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P1001", allocation(60, 20, 20)))
	require.NoError(t, m.Register("P1002", allocation(3000, 50, 19)))
	require.NoError(t, m.RecheckBreaches("P1002"))

	history1, err := m.History("P1001")
	require.NoError(t, err)
	require.Empty(t, history1)

	history2, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history2, 1)
}

func TestMonitor_RestoreReplaysWithoutJournalling(t *testing.T) {
	journal := &journalSpy{}
	m := newTestMonitor(t, journal)
	require.NoError(t, m.Register("P1002", allocation(3000, 50, 19)))

	score := 80
	restored := []domain.EvaluationEvent{
		{ID: "RISK-1-1", PortfolioID: "P1002", Kind: domain.EventBreach,
			Breaches: []string{"Equity exposure exceeds 60%"}},
		{ID: "RISK-2-2", PortfolioID: "P1002", Kind: domain.EventCalculation, Score: &score,
			Breaches: []string{"Equity exposure exceeds 60%"}},
	}
	require.NoError(t, m.Restore("P1002", restored))
	require.Empty(t, journal.events)

	history, err := m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "RISK-2-2", history[0].ID)

	// the breach state is already recorded under a CALCULATION head, so a
	// recheck appends a fresh BREACH event
	require.NoError(t, m.RecheckBreaches("P1002"))
	history, err = m.History("P1002")
	require.NoError(t, err)
	require.Len(t, history, 3)
}

func TestMonitor_TablesAreCopies(t *testing.T) {
	m := newTestMonitor(t, nil)

	limits := m.Limits()
	limits["Equity"] = decimal.NewFromInt(1)
	require.True(t, m.Limits()["Equity"].Equal(decimal.NewFromInt(60)))

	weights := m.Weights()
	weights["Equity"] = decimal.NewFromInt(9)
	require.True(t, m.Weights()["Equity"].Equal(decimal.RequireFromString("0.7")))
}

func TestMonitor_Portfolios(t *testing.T) {
	m := newTestMonitor(t, nil)
	require.NoError(t, m.Register("P2", nil))
	require.NoError(t, m.Register("P1", nil))

	require.Equal(t, []string{"P1", "P2"}, m.Portfolios())
}
