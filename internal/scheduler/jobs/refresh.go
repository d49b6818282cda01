package jobs

import (
	"context"
	"fmt"

	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/pkg/config"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// RefreshJob re-runs the full pipeline on a schedule and swaps the serving
// snapshot. Each run re-derives everything from the network source; there is
// no incremental path.
type RefreshJob struct {
	pipeline *pipeline.Pipeline
	store    *pipeline.Store
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new dataset refresh job
func NewRefreshJob(p *pipeline.Pipeline, store *pipeline.Store, cfg *config.Config, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		pipeline: p,
		store:    store,
		schedule: cfg.Refresh.Schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the configured cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one pipeline pass and installs the result. A failed run
// leaves the previous snapshot serving: stale data beats no data between
// refreshes, and the failure stays visible in the job history.
func (j *RefreshJob) Run(ctx context.Context) error {
	snap, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("dataset refresh: %w", err)
	}

	j.store.Swap(snap)

	j.logger.WithFields(map[string]interface{}{
		"movies":     len(snap.AllTime),
		"fetched_at": snap.FetchedAt,
	}).Info("Dataset refreshed")

	return nil
}
