package contracts

import (
	"sort"
	"time"
)

// Record is one inconsistency count observation: how many inconsistencies of a
// given scope and resolution status were reported for an institution's unit on
// a processing date.
type Record struct {
	Institution    string    `json:"institution"`
	Unit           string    `json:"unit"`
	Scope          string    `json:"scope"`
	Status         string    `json:"status"`
	Count          int       `json:"count"`
	ProcessingDate time.Time `json:"processing_date"`
}

// RawRow is an export row before the ingestion run stamps it with a
// processing date.
type RawRow struct {
	Institution string `json:"institution"`
	Unit        string `json:"unit"`
	Scope       string `json:"scope"`
	Status      string `json:"status"`
	Count       int    `json:"count"`
}

// Record converts a raw row into a ledger record tagged with date d.
func (r RawRow) Record(d time.Time) Record {
	return Record{
		Institution:    r.Institution,
		Unit:           r.Unit,
		Scope:          r.Scope,
		Status:         r.Status,
		Count:          r.Count,
		ProcessingDate: Day(d),
	}
}

// Validate checks the record against the closed status vocabulary.
// Scope is an open set and is not validated.
func (r Record) Validate(vocab Vocabulary) error {
	if r.Count < 0 {
		return &ValidationError{Field: "count", Reason: "count must be non-negative"}
	}
	if !vocab.Contains(r.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status " + r.Status}
	}
	return nil
}

// Vocabulary is the closed set of recognized resolution statuses.
// The order is the column order of pivot tables.
type Vocabulary struct {
	Statuses []string
}

// Contains reports whether s is a recognized status.
func (v Vocabulary) Contains(s string) bool {
	for _, known := range v.Statuses {
		if known == s {
			return true
		}
	}
	return false
}

// Day truncates t to a calendar date in UTC. All processing dates in the
// ledger are normalized through this function.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a date as YYYY-MM-DD for map keys and wire formats.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// SortDates sorts dates ascending in place.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
