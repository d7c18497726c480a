package evaluations

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/portsure/internal/domain"
)

const (
	DefaultDir   = "./wal/evaluations"
	segmentLimit = 1000
	maxSegments  = 20

	evaluationKeyPrefix = "evaluation_"
)

// Record bundles a journalled evaluation event with its WAL index.
type Record struct {
	Index uint64
	Event domain.EvaluationEvent
}

// WALStore persists evaluation events in an append-only WAL so the ledger
// survives restarts and the dashboard can tail new events.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed evaluation journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "evaluation_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init evaluation WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Record writes the evaluation event to the WAL.
func (s *WALStore) Record(event domain.EvaluationEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("evaluation store is not initialized")
	}
	if event.PortfolioID == "" {
		return errors.New("evaluation event portfolio id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal evaluation event")
	}

	key := fmt.Sprintf("%s%s", evaluationKeyPrefix, event.PortfolioID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all evaluation events written after the provided WAL
// index, oldest first.
func (s *WALStore) EventsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("evaluation store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, evaluationKeyPrefix) {
			continue
		}

		var event domain.EvaluationEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode evaluation event")
		}
		records = append(records, Record{Index: idx, Event: event})
	}

	return records, nil
}

// HistoryByPortfolio groups all journalled events by portfolio, oldest
// first, for ledger replay at startup.
func (s *WALStore) HistoryByPortfolio() (map[string][]domain.EvaluationEvent, error) {
	records, err := s.EventsAfter(0)
	if err != nil {
		return nil, err
	}

	histories := make(map[string][]domain.EvaluationEvent)
	for _, record := range records {
		id := record.Event.PortfolioID
		histories[id] = append(histories[id], record.Event)
	}
	return histories, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("evaluation store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
