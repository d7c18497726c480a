package monitor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/portsure/internal/domain"
	"go.uber.org/zap"
)

// EventJournal persists appended evaluation events. The in-memory ledger
// stays the source of truth; the journal is a durability sink.
type EventJournal interface {
	Record(event domain.EvaluationEvent) error
}

// Monitor orchestrates the risk engine for a set of independent portfolios:
// it owns each portfolio's allocation, recomputes exposure and checks limits
// on every mutation, and scores on explicit request. All per-portfolio
// operations are serialized on the portfolio's own lock because the ledger
// dedup check is a check-then-act sequence.
type Monitor struct {
	universe domain.Universe
	exposure *domain.ExposureCalculator
	breaches *domain.BreachEvaluator
	scorer   *domain.RiskScorer
	ledger   *domain.Ledger
	journal  EventJournal
	logger   *zap.Logger

	mu         sync.RWMutex
	portfolios map[string]*portfolioState

	now func() time.Time
}

type portfolioState struct {
	mu         sync.Mutex
	allocation domain.Allocation
	seq        uint64
}

// New constructs a monitor from validated engine configuration. The journal
// may be nil when durability is handled elsewhere.
func New(
	universe domain.Universe,
	limits domain.LimitTable,
	weights domain.WeightTable,
	tiers domain.TierTable,
	journal EventJournal,
	logger *zap.Logger,
) (*Monitor, error) {
	breaches, err := domain.NewBreachEvaluator(universe, limits)
	if err != nil {
		return nil, err
	}
	scorer, err := domain.NewRiskScorer(universe, weights, tiers)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		universe:   universe,
		exposure:   domain.NewExposureCalculator(universe),
		breaches:   breaches,
		scorer:     scorer,
		ledger:     domain.NewLedger(),
		journal:    journal,
		logger:     logger,
		portfolios: make(map[string]*portfolioState),
		now:        time.Now,
	}, nil
}

// Register establishes a portfolio with its initial allocation. It does not
// run the breach check: callers that want the initial state evaluated (e.g.
// after seeding or history replay) follow up with RecheckBreaches, so a
// restart does not journal duplicates of already recorded breach states.
func (m *Monitor) Register(portfolioID string, initial domain.Allocation) error {
	if portfolioID == "" {
		return errors.Wrap(domain.ErrValidation, "empty portfolio id")
	}
	if initial == nil {
		initial = domain.Allocation{}
	}
	if err := initial.Validate(m.universe); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.portfolios[portfolioID]; ok {
		return errors.Wrapf(domain.ErrPortfolioExists, "portfolio %s", portfolioID)
	}
	m.portfolios[portfolioID] = &portfolioState{allocation: initial.Clone()}

	m.logger.Info("portfolio registered", zap.String("portfolio", portfolioID))
	return nil
}

// RecheckBreaches runs the mutation trigger against the current allocation
// without changing it. Dedup applies as usual, so repeating the check over
// an unchanged breaching state is a no-op.
func (m *Monitor) RecheckBreaches(portfolioID string) error {
	state, err := m.portfolio(portfolioID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	m.checkBreaches(portfolioID, state)
	return nil
}

// SetAllocation updates one asset class quantity and runs the breach check
// against the new exposure. A rejected update leaves the allocation exactly
// as it was.
func (m *Monitor) SetAllocation(portfolioID string, class domain.AssetClass, quantity decimal.Decimal) error {
	if !m.universe.Contains(class) {
		return errors.Wrapf(domain.ErrValidation, "unknown asset class %s", class)
	}
	if quantity.IsNegative() {
		return errors.Wrapf(domain.ErrValidation, "negative quantity %s for %s", quantity, class)
	}

	state, err := m.portfolio(portfolioID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.allocation[class] = quantity
	m.checkBreaches(portfolioID, state)
	return nil
}

// GetExposure recomputes the portfolio's exposure vector from its current
// allocation.
func (m *Monitor) GetExposure(portfolioID string) (domain.ExposureVector, error) {
	state, err := m.portfolio(portfolioID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return m.exposure.Compute(state.allocation)
}

// GetAllocation returns a copy of the portfolio's current allocation.
func (m *Monitor) GetAllocation(portfolioID string) (domain.Allocation, error) {
	state, err := m.portfolio(portfolioID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.allocation.Clone(), nil
}

// CalculateRisk performs an explicit scoring of the current allocation and
// appends a CALCULATION event. The event's breach list records breaches
// co-occurring with the scoring snapshot; it never participates in BREACH
// dedup, so repeated calculations always append.
func (m *Monitor) CalculateRisk(portfolioID string) (domain.EvaluationEvent, error) {
	state, err := m.portfolio(portfolioID)
	if err != nil {
		return domain.EvaluationEvent{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	exposure, err := m.exposure.Compute(state.allocation)
	if err != nil {
		return domain.EvaluationEvent{}, err
	}

	score := m.scorer.Score(exposure)
	tier := m.scorer.Classify(score)
	event := m.newEvent(portfolioID, state, domain.EventCalculation, m.breaches.Evaluate(exposure))
	event.Score = &score
	event.Tier = &tier

	m.ledger.Append(portfolioID, event)
	m.record(event)

	m.logger.Info("risk calculated",
		zap.String("portfolio", portfolioID),
		zap.Int("score", score),
		zap.String("tier", tier.Label),
		zap.Int("breaches", len(event.Breaches)))
	return event, nil
}

// History returns the portfolio's evaluation events, newest first.
func (m *Monitor) History(portfolioID string) ([]domain.EvaluationEvent, error) {
	if _, err := m.portfolio(portfolioID); err != nil {
		return nil, err
	}
	return m.ledger.History(portfolioID), nil
}

// Limits returns a copy of the configured exposure limit table.
func (m *Monitor) Limits() domain.LimitTable {
	return m.breaches.Limits()
}

// Weights returns a copy of the configured score weight table.
func (m *Monitor) Weights() domain.WeightTable {
	return m.scorer.Weights()
}

// Universe returns the ordered asset class set.
func (m *Monitor) Universe() domain.Universe {
	return m.universe
}

// Portfolios lists registered portfolio identifiers in lexical order.
func (m *Monitor) Portfolios() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.portfolios))
	for id := range m.portfolios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restore replays previously journalled events into the ledger, oldest
// first, without re-journalling them. The portfolio must be registered.
func (m *Monitor) Restore(portfolioID string, events []domain.EvaluationEvent) error {
	state, err := m.portfolio(portfolioID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	for _, event := range events {
		m.ledger.Append(portfolioID, event)
		state.seq++
	}
	return nil
}

func (m *Monitor) portfolio(portfolioID string) (*portfolioState, error) {
	m.mu.RLock()
	state, ok := m.portfolios[portfolioID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(domain.ErrUnknownPortfolio, "portfolio %s", portfolioID)
	}
	return state, nil
}

// checkBreaches runs the mutation trigger: recompute exposure, evaluate
// limits, append a BREACH event when the state breaches. Returning within
// limits is not logged, the ledger records breach occurrences only.
// Caller holds state.mu.
func (m *Monitor) checkBreaches(portfolioID string, state *portfolioState) {
	exposure, err := m.exposure.Compute(state.allocation)
	if err != nil {
		// allocation was validated before every write, recompute cannot fail
		m.logger.Error("exposure recompute failed", zap.String("portfolio", portfolioID), zap.Error(err))
		return
	}

	breaches := m.breaches.Evaluate(exposure)
	if len(breaches) == 0 {
		return
	}

	event := m.newEvent(portfolioID, state, domain.EventBreach, breaches)
	if !m.ledger.Append(portfolioID, event) {
		return
	}
	m.record(event)

	m.logger.Warn("exposure breach detected",
		zap.String("portfolio", portfolioID),
		zap.Strings("breaches", breaches))
}

// newEvent builds an evaluation event with a unique, recency-sortable id.
// Caller holds state.mu.
func (m *Monitor) newEvent(portfolioID string, state *portfolioState, kind domain.EventKind, breaches []string) domain.EvaluationEvent {
	state.seq++
	now := m.now()
	return domain.EvaluationEvent{
		ID:          fmt.Sprintf("RISK-%d-%d", now.UnixMilli(), state.seq),
		PortfolioID: portfolioID,
		Kind:        kind,
		Breaches:    breaches,
		Timestamp:   now,
	}
}

func (m *Monitor) record(event domain.EvaluationEvent) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(event); err != nil {
		m.logger.Error("journal write failed",
			zap.String("portfolio", event.PortfolioID),
			zap.String("event", event.ID),
			zap.Error(err))
	}
}
