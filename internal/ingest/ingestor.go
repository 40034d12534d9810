// Package ingest orchestrates one ingestion run: fetch the export, stamp the
// rows with the processing date and append them to the ledger as a single
// atomic batch.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/pkg/logger"
)

// Ingestor runs the fetch-and-append pipeline.
type Ingestor struct {
	source contracts.ExportSource
	store  contracts.LedgerStore
	logger *logger.Logger
}

// New creates a new Ingestor.
func New(source contracts.ExportSource, store contracts.LedgerStore, log *logger.Logger) *Ingestor {
	return &Ingestor{
		source: source,
		store:  store,
		logger: log,
	}
}

// Result summarizes an ingestion run.
type Result struct {
	Date           time.Time `json:"date"`
	Rows           int       `json:"rows"`
	AlreadyCurrent bool      `json:"already_current"`
}

// Run ingests the export for the given processing date, nominally today.
//
// A date that already has a batch is reported as AlreadyCurrent, not an
// error: re-triggering after a duplicate or a failed earlier attempt is safe.
// Validation failures reject the whole batch and leave the date free for a
// corrected retry.
func (i *Ingestor) Run(ctx context.Context, d time.Time) (*Result, error) {
	day := contracts.Day(d)
	log := i.logger.WithField("date", contracts.DayKey(day))

	// Check before fetching so an up-to-date ledger costs no upstream call.
	has, err := i.store.HasDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("check ledger date: %w", err)
	}
	if has {
		log.Info("Ledger already current, skipping ingestion")
		return &Result{Date: day, AlreadyCurrent: true}, nil
	}

	rows, err := i.source.FetchExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch export: %w", err)
	}

	records := make([]contracts.Record, len(rows))
	for idx, row := range rows {
		records[idx] = row.Record(day)
	}

	if err := i.store.AppendBatch(ctx, records, day); err != nil {
		// A concurrent run may have committed between the check and the
		// append; that still counts as up to date.
		if contracts.IsDuplicateBatch(err) {
			log.Warn("Batch appeared concurrently, treating as already current")
			return &Result{Date: day, AlreadyCurrent: true}, nil
		}
		return nil, fmt.Errorf("append batch: %w", err)
	}

	log.WithField("rows", len(records)).Info("Ingestion completed")

	return &Result{Date: day, Rows: len(records)}, nil
}
