package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/external/metabase"
	"github.com/novopnp/painel/internal/ingest"
	"github.com/novopnp/painel/internal/ledger"
	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/database"
	"github.com/novopnp/painel/pkg/httputil"
	"github.com/novopnp/painel/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion",
	Long: `Fetches the current inconsistency export and appends it to the ledger.

This command:
- Downloads the CSV export from Metabase
- Validates every row against the status vocabulary
- Appends the batch under the processing date, one batch per day

A date that already holds a batch is reported and left untouched.

Example:
  go run ./cmd/painel ingest
  go run ./cmd/painel ingest --date 2025-01-10`,
	RunE: runIngest,
}

var (
	ingestDate string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Flags
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "processing date (YYYY-MM-DD, default today)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Painel Ingestion ===")

	day := time.Now()
	if ingestDate != "" {
		parsed, err := contracts.ParseDay(ingestDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		day = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	vocab := contracts.Vocabulary{Statuses: cfg.Vocabulary.Statuses}
	store := ledger.NewRepository(db.Pool, vocab)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	source := metabase.NewClient(cfg, httputil.New(log), log)
	ingestor := ingest.New(source, store, log)

	result, err := ingestor.Run(ctx, day)
	if err != nil {
		return fmt.Errorf("run ingestion: %w", err)
	}

	if result.AlreadyCurrent {
		fmt.Printf("\nLedger already holds a batch for %s, nothing to do\n", contracts.DayKey(result.Date))
		return nil
	}

	fmt.Printf("\nIngested %d rows for %s\n", result.Rows, contracts.DayKey(result.Date))
	return nil
}
