package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/novopnp/painel/internal/api/handlers"
	"github.com/novopnp/painel/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(reportHandler *handlers.ReportHandler, ledgerHandler *handlers.LedgerHandler, ingestHandler *handlers.IngestHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Ledger endpoints
	api.HandleFunc("/ledger/dates", ledgerHandler.GetDates).Methods("GET")
	api.HandleFunc("/ledger/records", ledgerHandler.GetRecords).Methods("GET")

	// Report endpoints
	api.HandleFunc("/report/summary", reportHandler.GetSummary).Methods("GET")
	api.HandleFunc("/report/pivot", reportHandler.GetPivot).Methods("GET")
	api.HandleFunc("/report/trend", reportHandler.GetTrend).Methods("GET")
	api.HandleFunc("/report/timeline", reportHandler.GetTimeline).Methods("GET")

	// Ingestion trigger
	api.HandleFunc("/ingest", ingestHandler.Trigger).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "painel-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
