// Package report holds the pure transformations over ledger snapshots:
// rollup, pivot/share tables, period-over-period trends and timeline
// continuity. Nothing here touches storage or blocks.
package report

import (
	"sort"
	"time"

	"github.com/novopnp/painel/internal/contracts"
)

type groupKey struct {
	day         string
	institution string
	unit        string
	scope       string
	status      string
}

// Aggregate groups records by (processing_date, institution, unit, scope,
// status) and sums their counts. The result is independent of input order and
// conserves the total count of the input.
func Aggregate(records []contracts.Record) contracts.AggregatedView {
	sums := make(map[groupKey]int)
	days := make(map[string]time.Time)

	for _, rec := range records {
		day := contracts.Day(rec.ProcessingDate)
		key := groupKey{
			day:         contracts.DayKey(day),
			institution: rec.Institution,
			unit:        rec.Unit,
			scope:       rec.Scope,
			status:      rec.Status,
		}
		sums[key] += rec.Count
		days[key.day] = day
	}

	rows := make([]contracts.AggregatedRow, 0, len(sums))
	for key, count := range sums {
		rows = append(rows, contracts.AggregatedRow{
			ProcessingDate: days[key.day],
			Institution:    key.institution,
			Unit:           key.unit,
			Scope:          key.scope,
			Status:         key.status,
			Count:          count,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.ProcessingDate.Equal(b.ProcessingDate) {
			return a.ProcessingDate.Before(b.ProcessingDate)
		}
		if a.Institution != b.Institution {
			return a.Institution < b.Institution
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		return a.Status < b.Status
	})

	return contracts.AggregatedView{Rows: rows}
}
