package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports a row that failed schema or range checks. A batch
// containing such a row is rejected wholesale, nothing is persisted.
type ValidationError struct {
	Row    int // 1-based row number when known, 0 otherwise
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateBatchError reports an ingestion attempt for a processing date that
// already has a committed batch. Callers may treat it as "already current".
type DuplicateBatchError struct {
	Date time.Time
}

func (e *DuplicateBatchError) Error() string {
	return fmt.Sprintf("batch for %s already ingested", DayKey(e.Date))
}

// StorageError wraps an underlying persistence failure. The core never
// retries; retry policy belongs to the scheduling collaborator.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDuplicateBatch reports whether err is a duplicate-batch condition.
func IsDuplicateBatch(err error) bool {
	var dup *DuplicateBatchError
	return errors.As(err, &dup)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
