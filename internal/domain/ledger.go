package domain

import "sync"

// Ledger is the append-only evaluation history, newest-first, kept per
// portfolio. The engine never deletes or mutates entries; external
// collaborators may truncate for display, the ledger itself is unbounded.
type Ledger struct {
	mu     sync.RWMutex
	events map[string][]EvaluationEvent
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{events: make(map[string][]EvaluationEvent)}
}

// Append inserts the event at the head of the portfolio's history and
// reports whether it was actually stored. A BREACH event is suppressed when
// the current head is also a BREACH with a positionally equal breach list:
// an allocation sitting unchanged in a breaching state must not flood the
// history. CALCULATION events are never deduplicated.
func (l *Ledger) Append(portfolioID string, event EvaluationEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.events[portfolioID]
	if event.Kind == EventBreach && len(history) > 0 {
		head := history[0]
		if head.Kind == EventBreach && BreachListsEqual(head.Breaches, event.Breaches) {
			return false
		}
	}

	l.events[portfolioID] = append([]EvaluationEvent{event}, history...)
	return true
}

// History returns a copy of the portfolio's events, newest first. Unknown
// portfolios yield an empty history; existence checks belong to the monitor.
func (l *Ledger) History(portfolioID string) []EvaluationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := l.events[portfolioID]
	out := make([]EvaluationEvent, len(history))
	copy(out, history)
	return out
}

// Len returns the number of events recorded for the portfolio.
func (l *Ledger) Len(portfolioID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events[portfolioID])
}
