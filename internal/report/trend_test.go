package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/internal/contracts"
)

func TestTrendPercentChange(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 10),
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 4),
		rec(dayB, "IFPB", "Campus A", "enrollment", "amended", 6),
	})

	results := Trend(view, "", testVocabulary())

	flagged := results["flagged"]
	assert.False(t, flagged.Undefined)
	assert.InDelta(t, -60.0, flagged.PercentChange, 0.001)
	assert.Equal(t, 4, flagged.Latest)
	assert.Equal(t, 10, flagged.Previous)
}

func TestTrendZeroBaselineIsUndefined(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayB, "IFPB", "Campus A", "enrollment", "amended", 5),
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
	})

	results := Trend(view, "", testVocabulary())

	// amended was absent on the previous date: previous=0, latest=5.
	amended := results["amended"]
	assert.True(t, amended.Undefined)
	assert.Equal(t, 5, amended.Latest)
	assert.Equal(t, 0, amended.Previous)

	// validated is absent on both dates: previous=0, latest=0 is also
	// undefined, not a misleading 0%.
	assert.True(t, results["validated"].Undefined)
}

func TestTrendSingleDateIsAllUndefined(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 42),
	})

	results := Trend(view, "", testVocabulary())

	require.Len(t, results, 3)
	for status, result := range results {
		assert.True(t, result.Undefined, "status %s", status)
	}
}

func TestTrendEmptyViewIsAllUndefined(t *testing.T) {
	results := Trend(contracts.AggregatedView{}, "", testVocabulary())

	for _, result := range results {
		assert.True(t, result.Undefined)
	}
}

func TestTrendScopeFilter(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 10),
		rec(dayA, "IFPB", "Campus A", "staff", "flagged", 100),
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 5),
		rec(dayB, "IFPB", "Campus A", "staff", "flagged", 100),
	})

	results := Trend(view, "enrollment", testVocabulary())

	flagged := results["flagged"]
	assert.False(t, flagged.Undefined)
	assert.InDelta(t, -50.0, flagged.PercentChange, 0.001)
}

func TestTrendUsesTwoMostRecentDates(t *testing.T) {
	dayC := dayB.AddDate(0, 0, 1)
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 1000),
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 10),
		rec(dayC, "IFPB", "Campus A", "enrollment", "flagged", 12),
	})

	results := Trend(view, "", testVocabulary())

	flagged := results["flagged"]
	assert.False(t, flagged.Undefined)
	assert.InDelta(t, 20.0, flagged.PercentChange, 0.001)
}
