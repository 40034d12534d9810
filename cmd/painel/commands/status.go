package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/ledger"
	"github.com/novopnp/painel/internal/report"
	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger status",
	Long: `Shows the current state of the inconsistency ledger.

Displayed information:
- Processing dates present in the ledger
- Latest snapshot date and its per-status totals
- Trend against the previous snapshot

Example:
  go run ./cmd/painel status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Painel Ledger Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	vocab := contracts.Vocabulary{Statuses: cfg.Vocabulary.Statuses}
	store := ledger.NewRepository(db.Pool, vocab)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	dates, err := store.AllDates(ctx)
	if err != nil {
		return fmt.Errorf("query dates: %w", err)
	}

	if len(dates) == 0 {
		fmt.Println("\nLedger is empty, run `painel ingest` first")
		return nil
	}

	fmt.Printf("\nSnapshots: %d (%s .. %s)\n",
		len(dates),
		contracts.DayKey(dates[0]),
		contracts.DayKey(dates[len(dates)-1]))

	records, err := store.Query(ctx, contracts.Filter{})
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}

	view := report.Aggregate(records)
	latest := dates[len(dates)-1]

	totals := make(map[string]int)
	for _, row := range view.Rows {
		if row.ProcessingDate.Equal(latest) {
			totals[row.Status] += row.Count
		}
	}

	fmt.Printf("\nLatest snapshot (%s):\n", contracts.DayKey(latest))
	for _, status := range vocab.Statuses {
		fmt.Printf("  %-24s %6d\n", status, totals[status])
	}

	trends := report.Trend(view, "", vocab)
	fmt.Println("\nTrend vs previous snapshot:")
	for _, status := range vocab.Statuses {
		result := trends[status]
		if result.Undefined {
			fmt.Printf("  %-24s      n/a\n", status)
			continue
		}
		fmt.Printf("  %-24s %+7.1f%%\n", status, result.PercentChange)
	}

	return nil
}
