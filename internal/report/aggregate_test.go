package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/internal/contracts"
)

var (
	dayA = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	dayB = time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
)

func testVocabulary() contracts.Vocabulary {
	return contracts.Vocabulary{Statuses: []string{"flagged", "amended", "validated"}}
}

func rec(date time.Time, inst, unit, scope, status string, count int) contracts.Record {
	return contracts.Record{
		Institution:    inst,
		Unit:           unit,
		Scope:          scope,
		Status:         status,
		Count:          count,
		ProcessingDate: date,
	}
}

func TestAggregateSumsRepeatedKeys(t *testing.T) {
	records := []contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 7),
		rec(dayA, "IFPB", "Campus A", "enrollment", "amended", 2),
	}

	view := Aggregate(records)

	require.Len(t, view.Rows, 2)
	assert.Equal(t, "amended", view.Rows[0].Status)
	assert.Equal(t, 2, view.Rows[0].Count)
	assert.Equal(t, "flagged", view.Rows[1].Status)
	assert.Equal(t, 10, view.Rows[1].Count)
}

func TestAggregateIsOrderInvariant(t *testing.T) {
	records := []contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
		rec(dayA, "IFPB", "Campus B", "staff", "amended", 5),
		rec(dayB, "IFSP", "Campus C", "enrollment", "flagged", 8),
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 4),
		rec(dayB, "IFSP", "Campus C", "financial", "validated", 1),
	}

	want := Aggregate(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]contracts.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregateConservesTotals(t *testing.T) {
	records := []contracts.Record{
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 3),
		rec(dayA, "IFPB", "Campus A", "enrollment", "flagged", 9),
		rec(dayA, "IFSP", "Campus C", "staff", "amended", 6),
		rec(dayB, "IFPB", "Campus A", "enrollment", "flagged", 4),
	}

	view := Aggregate(records)

	rawTotals := make(map[string]int)
	for _, r := range records {
		rawTotals[contracts.DayKey(contracts.Day(r.ProcessingDate))] += r.Count
	}

	viewTotals := make(map[string]int)
	for _, row := range view.Rows {
		viewTotals[contracts.DayKey(row.ProcessingDate)] += row.Count
	}

	assert.Equal(t, rawTotals, viewTotals)
}

func TestAggregateNormalizesTimestamps(t *testing.T) {
	records := []contracts.Record{
		rec(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), "IFPB", "Campus A", "enrollment", "flagged", 1),
		rec(time.Date(2025, 1, 10, 19, 30, 0, 0, time.UTC), "IFPB", "Campus A", "enrollment", "flagged", 2),
	}

	view := Aggregate(records)

	require.Len(t, view.Rows, 1)
	assert.Equal(t, dayA, view.Rows[0].ProcessingDate)
	assert.Equal(t, 3, view.Rows[0].Count)
}

func TestAggregateEmptyInput(t *testing.T) {
	view := Aggregate(nil)
	assert.Empty(t, view.Rows)
	assert.Empty(t, view.Dates())
}
