package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/novopnp/painel/internal/contracts"
	"github.com/novopnp/painel/internal/external/metabase"
	"github.com/novopnp/painel/internal/ingest"
	"github.com/novopnp/painel/internal/ledger"
	"github.com/novopnp/painel/internal/scheduler"
	"github.com/novopnp/painel/internal/scheduler/jobs"
	"github.com/novopnp/painel/pkg/config"
	"github.com/novopnp/painel/pkg/database"
	"github.com/novopnp/painel/pkg/httputil"
	"github.com/novopnp/painel/pkg/logger"
	"github.com/novopnp/painel/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

This command:
- Starts the scheduler daemon
- Lists registered jobs
- Runs a job immediately

Subcommands:
  start   - Start the scheduler
  list    - List registered jobs
  run     - Run a job immediately

Example:
  go run ./cmd/painel scheduler start
  go run ./cmd/painel scheduler list
  go run ./cmd/painel scheduler run ingestion`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and schedules all registered jobs.

Registered jobs:
- ingestion: fetches the daily export and appends it to the ledger
  (default schedule 06:00 every day, INGESTION_SCHEDULE to override)

Stop the scheduler with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with its jobs and returns it along with
// a cleanup function for the shared connections.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	vocab := contracts.Vocabulary{Statuses: cfg.Vocabulary.Statuses}
	store := ledger.NewRepository(db.Pool, vocab)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "painel")

	source := metabase.NewClient(cfg, httputil.New(log), log)
	ingestor := ingest.New(source, store, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewIngestionJob(ingestor, cache, cfg.Scheduler.IngestionSchedule, log)); err != nil {
		db.Close()
		redisClient.Close()
		return nil, nil, fmt.Errorf("add ingestion job: %w", err)
	}

	cleanup := func() {
		db.Close()
		redisClient.Close()
	}
	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Painel Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\nScheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nStopping scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job %s...\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; give the run time to record a result.
	time.Sleep(2 * time.Second)
	history, err := sched.GetJobHistory(jobName)
	if err == nil {
		if last := history.LastResult(); last != nil {
			if last.Success {
				fmt.Printf("Job %s completed in %v\n", jobName, last.Duration)
			} else {
				fmt.Printf("Job %s failed: %s\n", jobName, last.Error)
			}
		}
	}
	return nil
}
