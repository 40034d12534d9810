package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novopnp/painel/internal/ledger"
)

func TestGetDates(t *testing.T) {
	handler := NewLedgerHandler(seededStore(t), testLogger())

	req := httptest.NewRequest("GET", "/api/ledger/dates", nil)
	rec := httptest.NewRecorder()
	handler.GetDates(rec, req)

	require.Equal(t, 200, rec.Code)

	var response DatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []string{"2025-01-10", "2025-01-11"}, response.Dates)
	require.NotNil(t, response.Latest)
	assert.Equal(t, dayB, *response.Latest)
}

func TestGetDatesEmptyLedger(t *testing.T) {
	handler := NewLedgerHandler(ledger.NewMemory(testVocabulary()), testLogger())

	req := httptest.NewRequest("GET", "/api/ledger/dates", nil)
	rec := httptest.NewRecorder()
	handler.GetDates(rec, req)

	require.Equal(t, 200, rec.Code)

	var response DatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Empty(t, response.Dates)
	assert.Nil(t, response.Latest)
}

func TestGetRecordsFiltered(t *testing.T) {
	handler := NewLedgerHandler(seededStore(t), testLogger())

	req := httptest.NewRequest("GET", "/api/ledger/records?date=2025-01-11&status=amended", nil)
	rec := httptest.NewRecorder()
	handler.GetRecords(rec, req)

	require.Equal(t, 200, rec.Code)

	var response RecordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Records, 1)
	assert.Equal(t, 6, response.Records[0].Count)
}

func TestGetRecordsBadDate(t *testing.T) {
	handler := NewLedgerHandler(seededStore(t), testLogger())

	req := httptest.NewRequest("GET", "/api/ledger/records?date=nope", nil)
	rec := httptest.NewRecorder()
	handler.GetRecords(rec, req)

	assert.Equal(t, 400, rec.Code)
}
