package report

import (
	"math"
	"sort"

	"github.com/novopnp/painel/internal/contracts"
)

// Pivot cross-tabulates status against the chosen entity dimension, restricted
// to the latest processing date in the view. An empty scope means no scope
// filter. Every status in the vocabulary gets a column, absent ones as
// explicit zeros; shares are percentages of the row total rounded to one
// decimal, with 0/0 defined as 0. Rows are ranked by total descending, ties
// broken by entity name ascending.
func Pivot(view contracts.AggregatedView, dim contracts.Dimension, scope string, vocab contracts.Vocabulary) contracts.PivotView {
	result := contracts.PivotView{
		Dimension: dim,
		Scope:     scope,
		Statuses:  append([]string(nil), vocab.Statuses...),
	}

	dates := view.Dates()
	if len(dates) == 0 {
		result.Rows = []contracts.PivotRow{}
		return result
	}
	latest := dates[len(dates)-1]
	result.ProcessingDate = &latest

	counts := make(map[string]map[string]int)
	for _, row := range view.Rows {
		if !row.ProcessingDate.Equal(latest) {
			continue
		}
		if scope != "" && row.Scope != scope {
			continue
		}

		entity := row.Institution
		if dim == contracts.DimensionUnit {
			entity = row.Unit
		}

		if counts[entity] == nil {
			counts[entity] = make(map[string]int)
		}
		counts[entity][row.Status] += row.Count
	}

	rows := make([]contracts.PivotRow, 0, len(counts))
	for entity, byStatus := range counts {
		row := contracts.PivotRow{
			Entity: entity,
			Counts: make(map[string]int, len(vocab.Statuses)),
			Shares: make(map[string]float64, len(vocab.Statuses)),
		}

		for _, status := range vocab.Statuses {
			row.Counts[status] = byStatus[status]
			row.Total += byStatus[status]
		}

		for _, status := range vocab.Statuses {
			row.Shares[status] = share(row.Counts[status], row.Total)
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Entity < rows[j].Entity
	})

	result.Rows = rows
	return result
}

// share is the percentage of total that count represents, rounded to one
// decimal. 0/0 is 0 by convention, never NaN.
func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) / float64(total) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
