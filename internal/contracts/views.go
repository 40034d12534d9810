package contracts

import "time"

// AggregatedRow is one group of the rollup keyed by
// (processing_date, institution, unit, scope, status) with counts summed.
type AggregatedRow struct {
	ProcessingDate time.Time `json:"processing_date"`
	Institution    string    `json:"institution"`
	Unit           string    `json:"unit"`
	Scope          string    `json:"scope"`
	Status         string    `json:"status"`
	Count          int       `json:"count"`
}

// AggregatedView is the rollup of a set of raw records.
// Rows are sorted by (date, institution, unit, scope, status).
type AggregatedView struct {
	Rows []AggregatedRow `json:"rows"`
}

// Dates returns the distinct processing dates in the view, ascending.
func (v AggregatedView) Dates() []time.Time {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, row := range v.Rows {
		key := DayKey(row.ProcessingDate)
		if !seen[key] {
			seen[key] = true
			dates = append(dates, row.ProcessingDate)
		}
	}
	SortDates(dates)
	return dates
}

// Dimension selects the entity axis of a pivot table.
type Dimension string

const (
	DimensionInstitution Dimension = "institution"
	DimensionUnit        Dimension = "unit"
)

// PivotRow is one ranked entity of a pivot table. Counts and Shares carry an
// entry for every status in the vocabulary, absent statuses are explicit
// zeros. Shares are percentages rounded to one decimal, 0 when Total is 0.
type PivotRow struct {
	Entity string             `json:"entity"`
	Counts map[string]int     `json:"counts"`
	Total  int                `json:"total"`
	Shares map[string]float64 `json:"shares"`
}

// PivotView cross-tabulates status against an entity dimension for one
// processing date. Rows are sorted by total descending, ties broken by
// entity name ascending.
type PivotView struct {
	Dimension      Dimension  `json:"dimension"`
	ProcessingDate *time.Time `json:"processing_date,omitempty"`
	Scope          string     `json:"scope,omitempty"`
	Statuses       []string   `json:"statuses"`
	Rows           []PivotRow `json:"rows"`
}

// TrendResult is the period-over-period delta for one status. It is a
// discriminated result: when Undefined is true the baseline was zero or the
// ledger holds fewer than two dates, and PercentChange carries no meaning.
type TrendResult struct {
	Latest        int     `json:"latest"`
	Previous      int     `json:"previous"`
	PercentChange float64 `json:"percent_change"`
	Undefined     bool    `json:"undefined"`
}

// SeriesPoint is one plottable point of a per-status timeline.
type SeriesPoint struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Count  int       `json:"count"`
}
