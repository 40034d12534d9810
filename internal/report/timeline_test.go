package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/internal/contracts"
)

func TestSeriesSumsPerDateAndStatus(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
		rec(dayA, "IFSP", "Campus C", "staff", "flagged", 4),
		rec(dayB, "IFPB", "Campus A", "enrollment", "amended", 2),
	})

	series := Series(view)

	require.Len(t, series, 2)
	assert.Equal(t, contracts.SeriesPoint{Date: dayA, Status: "flagged", Count: 7}, series[0])
	assert.Equal(t, contracts.SeriesPoint{Date: dayB, Status: "amended", Count: 2}, series[1])
}

func TestEnsureTwoPointsSynthesizesPrecedingDay(t *testing.T) {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	series := []contracts.SeriesPoint{
		{Date: day, Status: "flagged", Count: 42},
	}

	filled := EnsureTwoPoints(series)

	require.Len(t, filled, 2)
	assert.Equal(t, time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), filled[0].Date)
	assert.Equal(t, "flagged", filled[0].Status)
	assert.Equal(t, 42, filled[0].Count)
	assert.Equal(t, day, filled[1].Date)
	assert.Equal(t, 42, filled[1].Count)
}

func TestEnsureTwoPointsDuplicatesAllStatuses(t *testing.T) {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	series := []contracts.SeriesPoint{
		{Date: day, Status: "amended", Count: 6},
		{Date: day, Status: "flagged", Count: 4},
	}

	filled := EnsureTwoPoints(series)

	require.Len(t, filled, 4)
	eve := day.AddDate(0, 0, -1)
	assert.Equal(t, contracts.SeriesPoint{Date: eve, Status: "amended", Count: 6}, filled[0])
	assert.Equal(t, contracts.SeriesPoint{Date: eve, Status: "flagged", Count: 4}, filled[1])
}

func TestEnsureTwoPointsLeavesMultiDateSeriesAlone(t *testing.T) {
	series := []contracts.SeriesPoint{
		{Date: dayA, Status: "flagged", Count: 10},
		{Date: dayB, Status: "flagged", Count: 4},
	}

	assert.Equal(t, series, EnsureTwoPoints(series))
}

func TestEnsureTwoPointsEmptySeries(t *testing.T) {
	assert.Empty(t, EnsureTwoPoints(nil))
}
