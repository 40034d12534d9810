package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/novopnp/painel/internal/ingest"
	"github.com/novopnp/painel/pkg/logger"
	"github.com/novopnp/painel/pkg/redis"
)

// IngestionJob runs the daily export ingestion for today's processing date.
type IngestionJob struct {
	ingestor *ingest.Ingestor
	cache    *redis.Cache
	schedule string
	logger   *logger.Logger
}

// NewIngestionJob creates a new ingestion job.
func NewIngestionJob(ingestor *ingest.Ingestor, cache *redis.Cache, schedule string, log *logger.Logger) *IngestionJob {
	return &IngestionJob{
		ingestor: ingestor,
		cache:    cache,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *IngestionJob) Name() string {
	return "ingestion"
}

// Schedule returns the cron schedule from config.
func (j *IngestionJob) Schedule() string {
	return j.schedule
}

// Run ingests today's export.
func (j *IngestionJob) Run(ctx context.Context) error {
	result, err := j.ingestor.Run(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("ingestion run: %w", err)
	}

	if result.AlreadyCurrent {
		j.logger.Info("Ledger already current")
		return nil
	}

	// Cached report views are stale once a new batch lands.
	if err := j.cache.Invalidate(ctx); err != nil {
		j.logger.WithError(err).Warn("Failed to invalidate report cache")
	}

	j.logger.WithFields(map[string]interface{}{
		"date": result.Date.Format("2006-01-02"),
		"rows": result.Rows,
	}).Info("Scheduled ingestion completed")

	return nil
}
