package handlers

import (
	"net/http"
	"time"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/pkg/logger"
)

// LedgerHandler serves raw ledger state for downstream reporting tools.
type LedgerHandler struct {
	store  contracts.LedgerStore
	logger *logger.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(store contracts.LedgerStore, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:  store,
		logger: log,
	}
}

// DatesResponse lists the processing dates present in the ledger.
type DatesResponse struct {
	Dates  []string   `json:"dates"`
	Latest *time.Time `json:"latest"`
}

// GetDates returns every processing date present, ascending.
// GET /api/ledger/dates
func (h *LedgerHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dates, err := h.store.AllDates(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger dates")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	latest, err := h.store.LatestDate(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query latest date")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	response := DatesResponse{Dates: make([]string, 0, len(dates)), Latest: latest}
	for _, d := range dates {
		response.Dates = append(response.Dates, contracts.DayKey(d))
	}

	respondJSON(w, http.StatusOK, response)
}

// RecordsResponse holds a raw read snapshot of the ledger.
type RecordsResponse struct {
	Records []contracts.Record `json:"records"`
}

// GetRecords returns the raw records matching the query filters.
// GET /api/ledger/records?date=&institution=&unit=&scope=&status=
func (h *LedgerHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := contracts.Filter{
		Institution: r.URL.Query().Get("institution"),
		Unit:        r.URL.Query().Get("unit"),
		Scope:       r.URL.Query().Get("scope"),
		Status:      r.URL.Query().Get("status"),
	}

	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		d, err := contracts.ParseDay(dateParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
			return
		}
		filter.Date = &d
	}

	records, err := h.store.Query(ctx, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger records")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	if records == nil {
		records = []contracts.Record{}
	}

	respondJSON(w, http.StatusOK, RecordsResponse{Records: records})
}
