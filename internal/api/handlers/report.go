package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/report"
	"github.com/novopnp/painel/pkg/logger"
	"github.com/novopnp/painel/pkg/redis"
)

// cacheTTL bounds how stale a cached report view can get between ingestions.
const cacheTTL = 5 * time.Minute

// ReportHandler serves the aggregated dashboard views.
type ReportHandler struct {
	store  contracts.LedgerStore
	cache  *redis.Cache
	vocab  contracts.Vocabulary
	logger *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(store contracts.LedgerStore, cache *redis.Cache, vocab contracts.Vocabulary, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		store:  store,
		cache:  cache,
		vocab:  vocab,
		logger: log,
	}
}

// SummaryResponse is the grouped view of one snapshot.
type SummaryResponse struct {
	ProcessingDate *time.Time               `json:"processing_date"`
	Rows           []contracts.AggregatedRow `json:"rows"`
}

// GetSummary returns the rollup of one snapshot, the latest by default.
// GET /api/report/summary?date=&institution=&unit=&scope=
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached SummaryResponse
	cacheKey := "summary?" + r.URL.RawQuery
	if found, _ := h.cache.Get(ctx, cacheKey, &cached); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	filter := contracts.Filter{
		Institution: r.URL.Query().Get("institution"),
		Unit:        r.URL.Query().Get("unit"),
		Scope:       r.URL.Query().Get("scope"),
	}

	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		d, err := contracts.ParseDay(dateParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
			return
		}
		filter.Date = &d
	} else {
		latest, err := h.store.LatestDate(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to resolve latest date")
			respondError(w, http.StatusInternalServerError, "Failed to query ledger")
			return
		}
		filter.Date = latest // nil on an empty ledger matches nothing
	}

	records, err := h.store.Query(ctx, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	view := report.Aggregate(records)
	response := SummaryResponse{ProcessingDate: filter.Date, Rows: view.Rows}
	if response.Rows == nil {
		response.Rows = []contracts.AggregatedRow{}
	}

	h.cacheSet(ctx, cacheKey, response)
	respondJSON(w, http.StatusOK, response)
}

// GetPivot returns the status-by-entity pivot for the latest snapshot.
// GET /api/report/pivot?dimension=institution|unit&scope=
func (h *ReportHandler) GetPivot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dim := contracts.Dimension(r.URL.Query().Get("dimension"))
	if dim == "" {
		dim = contracts.DimensionInstitution
	}
	if dim != contracts.DimensionInstitution && dim != contracts.DimensionUnit {
		respondError(w, http.StatusBadRequest, "Invalid 'dimension' (expected institution or unit)")
		return
	}

	var cached contracts.PivotView
	cacheKey := "pivot?" + r.URL.RawQuery
	if found, _ := h.cache.Get(ctx, cacheKey, &cached); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	view, ok := h.latestView(w, ctx)
	if !ok {
		return
	}

	pivot := report.Pivot(view, dim, r.URL.Query().Get("scope"), h.vocab)

	h.cacheSet(ctx, cacheKey, pivot)
	respondJSON(w, http.StatusOK, pivot)
}

// GetTrend returns per-status deltas between the two most recent snapshots.
// GET /api/report/trend?scope=
func (h *ReportHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached map[string]contracts.TrendResult
	cacheKey := "trend?" + r.URL.RawQuery
	if found, _ := h.cache.Get(ctx, cacheKey, &cached); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	records, err := h.store.Query(ctx, contracts.Filter{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	results := report.Trend(report.Aggregate(records), r.URL.Query().Get("scope"), h.vocab)

	h.cacheSet(ctx, cacheKey, results)
	respondJSON(w, http.StatusOK, results)
}

// TimelineResponse is a continuity-filled per-status series.
type TimelineResponse struct {
	Points []contracts.SeriesPoint `json:"points"`
}

// GetTimeline returns the full per-status series over all snapshots,
// continuity-filled so a single-snapshot ledger still plots a segment.
// GET /api/report/timeline?scope=&institution=&unit=
func (h *ReportHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached TimelineResponse
	cacheKey := "timeline?" + r.URL.RawQuery
	if found, _ := h.cache.Get(ctx, cacheKey, &cached); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	filter := contracts.Filter{
		Institution: r.URL.Query().Get("institution"),
		Unit:        r.URL.Query().Get("unit"),
		Scope:       r.URL.Query().Get("scope"),
	}

	records, err := h.store.Query(ctx, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return
	}

	points := report.EnsureTwoPoints(report.Series(report.Aggregate(records)))
	response := TimelineResponse{Points: points}
	if response.Points == nil {
		response.Points = []contracts.SeriesPoint{}
	}

	h.cacheSet(ctx, cacheKey, response)
	respondJSON(w, http.StatusOK, response)
}

// latestView loads the full rollup and reports its own HTTP errors; the bool
// is false when an error response was already written.
func (h *ReportHandler) latestView(w http.ResponseWriter, ctx context.Context) (contracts.AggregatedView, bool) {
	records, err := h.store.Query(ctx, contracts.Filter{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to query ledger")
		respondError(w, http.StatusInternalServerError, "Failed to query ledger")
		return contracts.AggregatedView{}, false
	}

	return report.Aggregate(records), true
}

func (h *ReportHandler) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := h.cache.Set(ctx, key, value, cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache report view")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
