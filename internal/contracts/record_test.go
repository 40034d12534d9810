package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocabulary() Vocabulary {
	return Vocabulary{Statuses: []string{"flagged", "amended", "validated"}}
}

func TestRecordValidate(t *testing.T) {
	vocab := testVocabulary()

	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{
			name:   "valid record",
			record: Record{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "flagged", Count: 10},
		},
		{
			name:   "zero count is valid",
			record: Record{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "amended", Count: 0},
		},
		{
			name:    "negative count",
			record:  Record{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "flagged", Count: -1},
			wantErr: true,
		},
		{
			name:    "unknown status",
			record:  Record{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "bogus", Count: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate(vocab)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRawRowRecordStampsDay(t *testing.T) {
	raw := RawRow{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "flagged", Count: 3}

	stamped := raw.Record(time.Date(2025, 1, 10, 14, 30, 12, 0, time.Local))

	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), stamped.ProcessingDate)
	assert.Equal(t, raw.Count, stamped.Count)
}

func TestFilterMatches(t *testing.T) {
	d := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	rec := Record{Institution: "IFPB", Unit: "Campus A", Scope: "enrollment", Status: "flagged", Count: 1, ProcessingDate: d}

	assert.True(t, Filter{}.Matches(rec))
	assert.True(t, Filter{Date: &d, Institution: "IFPB"}.Matches(rec))
	assert.False(t, Filter{Institution: "IFSP"}.Matches(rec))
	assert.False(t, Filter{Scope: "staff"}.Matches(rec))

	other := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	assert.False(t, Filter{Date: &other}.Matches(rec))
}

func TestDuplicateBatchErrorDetection(t *testing.T) {
	err := &DuplicateBatchError{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}
	assert.True(t, IsDuplicateBatch(err))
	assert.False(t, IsDuplicateBatch(&StorageError{Op: "query", Err: assert.AnError}))
	assert.Contains(t, err.Error(), "2025-01-10")
}
