package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/novopnp/painel/internal/api"
	"github.com/novopnp/painel/internal/api/handlers"
	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/external/metabase"
	"github.com/novopnp/painel/internal/ingest"
	"github.com/novopnp/painel/internal/ledger"
	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/database"
	"github.com/novopnp/painel/pkg/httputil"
	"github.com/novopnp/painel/pkg/logger"
	"github.com/novopnp/painel/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Starts the HTTP API server
- Serves ledger and report endpoints
- Exposes an ingestion trigger

Endpoints:
  GET  /health                - Health check
  GET  /api/ledger/dates      - Processing dates in the ledger
  GET  /api/ledger/records    - Raw ledger records
  GET  /api/report/summary    - Aggregated snapshot rollup
  GET  /api/report/pivot      - Status share pivot
  GET  /api/report/trend      - Per-status trend
  GET  /api/report/timeline   - Per-status timeline
  POST /api/ingest            - Trigger ingestion

Example:
  go run ./cmd/painel api
  go run ./cmd/painel api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Painel API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Create ledger repository and make sure the schema exists
	vocab := contracts.Vocabulary{Statuses: cfg.Vocabulary.Statuses}
	store := ledger.NewRepository(db.Pool, vocab)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureSchema(ctx); err != nil {
		cancel()
		return fmt.Errorf("ensure schema: %w", err)
	}
	cancel()

	// 5. Connect to redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "painel")

	// 6. Create HTTP client and export source
	httpClient := httputil.New(log)
	source := metabase.NewClient(cfg, httpClient, log)

	// 7. Create ingestor
	ingestor := ingest.New(source, store, log)

	// 8. Create handlers
	reportHandler := handlers.NewReportHandler(store, cache, vocab, log)
	ledgerHandler := handlers.NewLedgerHandler(store, log)
	ingestHandler := handlers.NewIngestHandler(ingestor, cache, log)

	// 9. Create router
	router := api.NewRouter(reportHandler, ledgerHandler, ingestHandler, log)

	// 10. Create server
	server := api.New(cfg, log, router)

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/ledger/dates")
	fmt.Println("  GET  /api/ledger/records")
	fmt.Println("  GET  /api/report/summary")
	fmt.Println("  GET  /api/report/pivot")
	fmt.Println("  GET  /api/report/trend")
	fmt.Println("  GET  /api/report/timeline")
	fmt.Println("  POST /api/ingest")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
