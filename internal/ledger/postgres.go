package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novopnp/painel/internal/contracts"
)

// Repository is the PostgreSQL implementation of the ledger store.
//
// The batch-per-date invariant is enforced by a primary key on
// ledger_batches.processing_date: the batch row is inserted in the same
// transaction as the records, so a concurrent ingestion for the same date
// commits exactly once and the loser fails with DuplicateBatchError. Readers
// run under ordinary snapshot isolation and never see an uncommitted batch.
type Repository struct {
	pool  *pgxpool.Pool
	vocab contracts.Vocabulary
}

// NewRepository creates a new ledger repository.
func NewRepository(pool *pgxpool.Pool, vocab contracts.Vocabulary) *Repository {
	return &Repository{pool: pool, vocab: vocab}
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ledger_batches (
			processing_date DATE PRIMARY KEY,
			row_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS inconsistency_records (
			institution TEXT NOT NULL,
			unit TEXT NOT NULL,
			scope TEXT NOT NULL,
			status TEXT NOT NULL,
			total INTEGER NOT NULL CHECK (total >= 0),
			processing_date DATE NOT NULL REFERENCES ledger_batches (processing_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inconsistency_records_date
			ON inconsistency_records (processing_date)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return &contracts.StorageError{Op: "ensure schema", Err: err}
		}
	}

	return nil
}

// HasDate reports whether a batch for date d already exists.
func (r *Repository) HasDate(ctx context.Context, d time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ledger_batches WHERE processing_date = $1)`

	if err := r.pool.QueryRow(ctx, query, contracts.Day(d)).Scan(&exists); err != nil {
		return false, &contracts.StorageError{Op: "check batch date", Err: err}
	}

	return exists, nil
}

// AppendBatch validates and persists a full batch for date d atomically.
func (r *Repository) AppendBatch(ctx context.Context, records []contracts.Record, d time.Time) error {
	day := contracts.Day(d)

	// Whole-batch validation before any write.
	for i, rec := range records {
		if err := rec.Validate(r.vocab); err != nil {
			var ve *contracts.ValidationError
			if errors.As(err, &ve) {
				ve.Row = i + 1
			}
			return err
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &contracts.StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	// The batch row is the duplicate guard: its primary key makes the second
	// concurrent committer for the same date fail here.
	_, err = tx.Exec(ctx,
		`INSERT INTO ledger_batches (processing_date, row_count) VALUES ($1, $2)`,
		day, len(records),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &contracts.DuplicateBatchError{Date: day}
		}
		return &contracts.StorageError{Op: "insert batch", Err: err}
	}

	insert := `
		INSERT INTO inconsistency_records (
			institution, unit, scope, status, total, processing_date
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, rec := range records {
		_, err := tx.Exec(ctx, insert,
			rec.Institution, rec.Unit, rec.Scope, rec.Status, rec.Count, day,
		)
		if err != nil {
			return &contracts.StorageError{Op: fmt.Sprintf("insert record for %s", rec.Institution), Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &contracts.StorageError{Op: "commit batch", Err: err}
	}

	return nil
}

// LatestDate returns the most recent processing date, or nil when the ledger
// is empty.
func (r *Repository) LatestDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	query := `SELECT MAX(processing_date) FROM ledger_batches`

	if err := r.pool.QueryRow(ctx, query).Scan(&latest); err != nil {
		return nil, &contracts.StorageError{Op: "query latest date", Err: err}
	}

	if latest == nil {
		return nil, nil
	}

	day := contracts.Day(*latest)
	return &day, nil
}

// AllDates returns every processing date present, ascending.
func (r *Repository) AllDates(ctx context.Context) ([]time.Time, error) {
	query := `SELECT processing_date FROM ledger_batches ORDER BY processing_date ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &contracts.StorageError{Op: "query dates", Err: err}
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, &contracts.StorageError{Op: "scan date", Err: err}
		}
		dates = append(dates, contracts.Day(d))
	}

	if err := rows.Err(); err != nil {
		return nil, &contracts.StorageError{Op: "iterate dates", Err: err}
	}

	return dates, nil
}

// Query returns a read snapshot of the records matching the filter.
func (r *Repository) Query(ctx context.Context, f contracts.Filter) ([]contracts.Record, error) {
	query := `
		SELECT institution, unit, scope, status, total, processing_date
		FROM inconsistency_records
	`

	var conditions []string
	var args []interface{}

	addCondition := func(column, value string) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Date != nil {
		args = append(args, contracts.Day(*f.Date))
		conditions = append(conditions, fmt.Sprintf("processing_date = $%d", len(args)))
	}
	if f.Institution != "" {
		addCondition("institution", f.Institution)
	}
	if f.Unit != "" {
		addCondition("unit", f.Unit)
	}
	if f.Scope != "" {
		addCondition("scope", f.Scope)
	}
	if f.Status != "" {
		addCondition("status", f.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY processing_date, institution, unit, scope, status"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &contracts.StorageError{Op: "query records", Err: err}
	}
	defer rows.Close()

	var records []contracts.Record
	for rows.Next() {
		var rec contracts.Record
		if err := rows.Scan(&rec.Institution, &rec.Unit, &rec.Scope, &rec.Status, &rec.Count, &rec.ProcessingDate); err != nil {
			return nil, &contracts.StorageError{Op: "scan record", Err: err}
		}
		rec.ProcessingDate = contracts.Day(rec.ProcessingDate)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &contracts.StorageError{Op: "iterate records", Err: err}
	}

	return records, nil
}
