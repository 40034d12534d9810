package report

import (
	"sort"

	"github.com/novopnp/painel/internal/contracts"
)

// Series flattens a view into per-status timeline points, one per
// (date, status) with counts summed, ordered by date then status.
func Series(view contracts.AggregatedView) []contracts.SeriesPoint {
	type seriesKey struct {
		day    string
		status string
	}

	sums := make(map[seriesKey]contracts.SeriesPoint)
	for _, row := range view.Rows {
		key := seriesKey{day: contracts.DayKey(row.ProcessingDate), status: row.Status}
		point := sums[key]
		point.Date = row.ProcessingDate
		point.Status = row.Status
		point.Count += row.Count
		sums[key] = point
	}

	points := make([]contracts.SeriesPoint, 0, len(sums))
	for _, point := range sums {
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].Status < points[j].Status
	})

	return points
}

// EnsureTwoPoints guarantees a plottable series. When the series spans exactly
// one distinct date, every point is duplicated one day earlier and prepended,
// so a line chart renders a segment instead of a single dot.
//
// The synthetic points are a display-only extrapolation, not a claim about the
// preceding day's real values: callers that care can tell them apart by date,
// since the ledger holds no batch for that day.
func EnsureTwoPoints(series []contracts.SeriesPoint) []contracts.SeriesPoint {
	distinct := make(map[string]bool)
	for _, point := range series {
		distinct[contracts.DayKey(point.Date)] = true
	}
	if len(distinct) != 1 {
		return series
	}

	synthetic := make([]contracts.SeriesPoint, 0, len(series)*2)
	for _, point := range series {
		synthetic = append(synthetic, contracts.SeriesPoint{
			Date:   point.Date.AddDate(0, 0, -1),
			Status: point.Status,
			Count:  point.Count,
		})
	}

	return append(synthetic, series...)
}
