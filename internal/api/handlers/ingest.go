package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/ingest"
	"github.com/novopnp/painel/pkg/logger"
	"github.com/novopnp/painel/pkg/redis"
)

// IngestHandler triggers ingestion runs over HTTP.
type IngestHandler struct {
	ingestor *ingest.Ingestor
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingestor *ingest.Ingestor, cache *redis.Cache, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		ingestor: ingestor,
		cache:    cache,
		logger:   log,
	}
}

// TriggerRequest is the optional body of an ingestion trigger.
type TriggerRequest struct {
	Date string `json:"date"` // optional, YYYY-MM-DD, defaults to today
}

// TriggerResponse reports the outcome of an ingestion trigger.
type TriggerResponse struct {
	Status string `json:"status"` // "ingested" or "already_current"
	Date   string `json:"date"`
	Rows   int    `json:"rows,omitempty"`
}

// Trigger runs ingestion for the requested processing date.
// POST /api/ingest
//
// The three failure states stay distinguishable for the caller: a data error
// is 422, a storage failure 500, an unreachable upstream 502, and an already
// ingested date is a 200 with status already_current.
func (h *IngestHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day := time.Now()
	if r.Body != nil && r.ContentLength != 0 {
		var req TriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Date != "" {
			parsed, err := contracts.ParseDay(req.Date)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
				return
			}
			day = parsed
		}
	}

	result, err := h.ingestor.Run(ctx, day)
	if err != nil {
		h.logger.WithError(err).Error("Ingestion trigger failed")

		var storageErr *contracts.StorageError
		switch {
		case contracts.IsValidation(err):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &storageErr):
			respondError(w, http.StatusInternalServerError, "Ledger storage failure")
		default:
			respondError(w, http.StatusBadGateway, "Failed to fetch export")
		}
		return
	}

	response := TriggerResponse{Date: contracts.DayKey(result.Date), Rows: result.Rows}
	if result.AlreadyCurrent {
		response.Status = "already_current"
	} else {
		response.Status = "ingested"

		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate report cache")
		}
	}

	respondJSON(w, http.StatusOK, response)
}
