package report

import "github.com/novopnp/painel/internal/contracts"

// Trend computes, per status, the percent change between the two most recent
// distinct processing dates of the view. An empty scope means no scope filter.
//
// The result is a discriminated case per status, never NaN or infinity:
// a zero baseline (including a status absent on the previous date) and a
// ledger with fewer than two dates both yield Undefined.
func Trend(view contracts.AggregatedView, scope string, vocab contracts.Vocabulary) map[string]contracts.TrendResult {
	results := make(map[string]contracts.TrendResult, len(vocab.Statuses))

	dates := view.Dates()
	if len(dates) < 2 {
		for _, status := range vocab.Statuses {
			results[status] = contracts.TrendResult{Undefined: true}
		}
		return results
	}

	latestDay := dates[len(dates)-1]
	previousDay := dates[len(dates)-2]

	latest := make(map[string]int)
	previous := make(map[string]int)
	for _, row := range view.Rows {
		if scope != "" && row.Scope != scope {
			continue
		}
		switch {
		case row.ProcessingDate.Equal(latestDay):
			latest[row.Status] += row.Count
		case row.ProcessingDate.Equal(previousDay):
			previous[row.Status] += row.Count
		}
	}

	for _, status := range vocab.Statuses {
		l, p := latest[status], previous[status]

		result := contracts.TrendResult{Latest: l, Previous: p}
		if p == 0 {
			// Percent change from a zero baseline is undefined, whether the
			// latest value moved or not.
			result.Undefined = true
		} else {
			result.PercentChange = float64(l-p) / float64(p) * 100
		}

		results[status] = result
	}

	return results
}
