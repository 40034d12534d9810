package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/novopnp/painel/internal/contracts"
)

// Memory is an in-memory ledger store with the same batch semantics as the
// PostgreSQL repository. Used in tests and for local development without a
// database.
type Memory struct {
	mu      sync.RWMutex
	vocab   contracts.Vocabulary
	batches map[string][]contracts.Record // keyed by YYYY-MM-DD
}

// NewMemory creates an empty in-memory ledger.
func NewMemory(vocab contracts.Vocabulary) *Memory {
	return &Memory{
		vocab:   vocab,
		batches: make(map[string][]contracts.Record),
	}
}

// HasDate reports whether a batch for date d already exists.
func (m *Memory) HasDate(_ context.Context, d time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.batches[contracts.DayKey(contracts.Day(d))]
	return ok, nil
}

// AppendBatch validates and stores a full batch for date d atomically.
func (m *Memory) AppendBatch(_ context.Context, records []contracts.Record, d time.Time) error {
	day := contracts.Day(d)

	for i, rec := range records {
		if err := rec.Validate(m.vocab); err != nil {
			var ve *contracts.ValidationError
			if errors.As(err, &ve) {
				ve.Row = i + 1
			}
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := contracts.DayKey(day)
	if _, ok := m.batches[key]; ok {
		return &contracts.DuplicateBatchError{Date: day}
	}

	batch := make([]contracts.Record, len(records))
	for i, rec := range records {
		rec.ProcessingDate = day
		batch[i] = rec
	}
	m.batches[key] = batch

	return nil
}

// LatestDate returns the most recent processing date, or nil when empty.
func (m *Memory) LatestDate(_ context.Context) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *time.Time
	for key := range m.batches {
		d, err := contracts.ParseDay(key)
		if err != nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			day := d
			latest = &day
		}
	}

	return latest, nil
}

// AllDates returns every processing date present, ascending.
func (m *Memory) AllDates(_ context.Context) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dates []time.Time
	for key := range m.batches {
		d, err := contracts.ParseDay(key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	contracts.SortDates(dates)

	return dates, nil
}

// Query returns a copied snapshot of the records matching the filter.
func (m *Memory) Query(_ context.Context, f contracts.Filter) ([]contracts.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []contracts.Record
	for _, batch := range m.batches {
		for _, rec := range batch {
			if f.Matches(rec) {
				records = append(records, rec)
			}
		}
	}

	return records, nil
}

var _ contracts.LedgerStore = (*Memory)(nil)
