package contracts

import (
	"context"
	"time"
)

// Filter narrows a ledger query. Zero values match everything.
type Filter struct {
	Date        *time.Time
	Institution string
	Unit        string
	Scope       string
	Status      string
}

// Matches reports whether a record satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if f.Date != nil && !Day(*f.Date).Equal(r.ProcessingDate) {
		return false
	}
	if f.Institution != "" && f.Institution != r.Institution {
		return false
	}
	if f.Unit != "" && f.Unit != r.Unit {
		return false
	}
	if f.Scope != "" && f.Scope != r.Scope {
		return false
	}
	if f.Status != "" && f.Status != r.Status {
		return false
	}
	return true
}

// LedgerStore is the append-only historical store of inconsistency records,
// partitioned by processing date. At most one batch exists per date.
//
// AppendBatch is all-or-nothing: every record is validated before any write,
// and concurrent readers never observe a partially written batch. A second
// append for the same date fails with DuplicateBatchError.
type LedgerStore interface {
	HasDate(ctx context.Context, d time.Time) (bool, error)
	AppendBatch(ctx context.Context, records []Record, d time.Time) error
	LatestDate(ctx context.Context) (*time.Time, error)
	AllDates(ctx context.Context) ([]time.Time, error)
	Query(ctx context.Context, f Filter) ([]Record, error)
}

// ExportSource fetches the raw inconsistency rows from the upstream export.
type ExportSource interface {
	FetchExport(ctx context.Context) ([]RawRow, error)
}
