package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/internal/contracts"
)

func TestPivotSharesAndZeroFill(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 4),
		rec(dayB, "IFPB", "Campus A", "enrollment", "amended", 6),
	})

	pivot := Pivot(view, contracts.DimensionInstitution, "", testVocabulary())

	require.Len(t, pivot.Rows, 1)
	row := pivot.Rows[0]
	assert.Equal(t, "IFPB", row.Entity)
	assert.Equal(t, 10, row.Total)
	assert.Equal(t, 4, row.Counts["flagged"])
	assert.Equal(t, 6, row.Counts["amended"])
	assert.InDelta(t, 40.0, row.Shares["flagged"], 0.001)
	assert.InDelta(t, 60.0, row.Shares["amended"], 0.001)

	// A status absent from the data is an explicit zero column, never a gap.
	assert.Contains(t, row.Counts, "validated")
	assert.Equal(t, 0, row.Counts["validated"])
	assert.Equal(t, 0.0, row.Shares["validated"])
}

func TestPivotSharesSumToHundred(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 7),
		rec(dayA, "IFPB", "Campus A", "enrollment", "amended", 11),
		rec(dayA, "IFPB", "Campus A", "staff", "validated", 3),
		rec(dayA, "IFSP", "Campus C", "enrollment", "flagged", 1),
		rec(dayA, "IFSP", "Campus C", "enrollment", "amended", 2),
	})

	vocab := testVocabulary()
	pivot := Pivot(view, contracts.DimensionInstitution, "", vocab)

	tolerance := 0.1 * float64(len(vocab.Statuses))
	for _, row := range pivot.Rows {
		if row.Total == 0 {
			continue
		}
		var sum float64
		for _, s := range row.Shares {
			sum += s
		}
		assert.LessOrEqual(t, math.Abs(sum-100.0), tolerance, "entity %s", row.Entity)
	}
}

func TestPivotUsesLatestDateOnly(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 99),
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 4),
	})

	pivot := Pivot(view, contracts.DimensionInstitution, "", testVocabulary())

	require.NotNil(t, pivot.ProcessingDate)
	assert.Equal(t, dayB, *pivot.ProcessingDate)
	require.Len(t, pivot.Rows, 1)
	assert.Equal(t, 4, pivot.Rows[0].Total)
}

func TestPivotScopeFilter(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 5),
		rec(dayA, "IFPB", "Campus A", "staff", "flagged", 8),
	})

	pivot := Pivot(view, contracts.DimensionInstitution, "staff", testVocabulary())

	require.Len(t, pivot.Rows, 1)
	assert.Equal(t, 8, pivot.Rows[0].Total)
}

func TestPivotSortAndTieBreak(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 5),
		rec(dayA, "IFAM", "Campus B", "enrollment", "flagged", 5),
		rec(dayA, "IFSP", "Campus C", "enrollment", "flagged", 12),
	})

	pivot := Pivot(view, contracts.DimensionInstitution, "", testVocabulary())

	require.Len(t, pivot.Rows, 3)
	assert.Equal(t, "IFSP", pivot.Rows[0].Entity)
	// Equal totals rank alphabetically.
	assert.Equal(t, "IFAM", pivot.Rows[1].Entity)
	assert.Equal(t, "IFPB", pivot.Rows[2].Entity)
}

func TestPivotByUnit(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
		rec(dayA, "IFPB", "Campus B", "enrollment", "flagged", 9),
	})

	pivot := Pivot(view, contracts.DimensionUnit, "", testVocabulary())

	require.Len(t, pivot.Rows, 2)
	assert.Equal(t, "Campus B", pivot.Rows[0].Entity)
	assert.Equal(t, "Campus A", pivot.Rows[1].Entity)
}

func TestPivotZeroTotalRow(t *testing.T) {
	view := Aggregate([]contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 0),
	})

	pivot := Pivot(view, contracts.DimensionInstitution, "", testVocabulary())

	require.Len(t, pivot.Rows, 1)
	assert.Equal(t, 0, pivot.Rows[0].Total)
	// 0/0 is 0 by convention, not NaN.
	for _, s := range pivot.Rows[0].Shares {
		assert.Equal(t, 0.0, s)
		assert.False(t, math.IsNaN(s))
	}
}

func TestPivotEmptyView(t *testing.T) {
	pivot := Pivot(contracts.AggregatedView{}, contracts.DimensionInstitution, "", testVocabulary())

	assert.Nil(t, pivot.ProcessingDate)
	assert.Empty(t, pivot.Rows)
	assert.Equal(t, testVocabulary().Statuses, pivot.Statuses)
}
