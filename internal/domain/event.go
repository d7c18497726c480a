package domain

import "time"

// EventKind distinguishes manual score calculations from automatically
// detected breaches in the evaluation history.
type EventKind string

const (
	// EventCalculation records an explicit, caller-requested risk scoring.
	EventCalculation EventKind = "CALCULATION"
	// EventBreach records an automatically detected exposure limit breach.
	EventBreach EventKind = "BREACH"
)

// EvaluationEvent is one immutable entry of a portfolio's evaluation
// history. Created exactly once by the monitor, appended to the ledger,
// never mutated or deleted afterwards.
type EvaluationEvent struct {
	// ID is unique and sortable by recency within a portfolio.
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	Kind        EventKind `json:"kind"`
	// Score is set for CALCULATION events only, nil for BREACH.
	Score *int `json:"score"`
	// Breaches lists human-readable breach descriptions in evaluator order.
	// Empty for CALCULATION events taken while within limits.
	Breaches  []string  `json:"breaches"`
	Tier      *Tier     `json:"tier,omitempty"`
	Timestamp time.Time `json:"time"`
}

// BreachListsEqual is the dedup comparison for BREACH events: positional
// equality of the ordered description lists, not set equality. The evaluator
// emits breaches in a deterministic order, so two identical breach states
// always produce identical lists.
func BreachListsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
