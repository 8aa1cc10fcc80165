// Package jobs provides the scheduled background tasks of the service,
// implemented with github.com/robfig/cron/v3.
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	delayedOrdersJob *DelayedOrdersJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	orderRepo ports.OrderRepository,
	restaurantID kernel.UUID,
	delayedAfter time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		delayedOrdersJob: NewDelayedOrdersJob(orderRepo, restaurantID, delayedAfter, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.delayedOrdersJob.Start(); err != nil {
		return fmt.Errorf("failed to start delayed orders job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.delayedOrdersJob.Stop()
}
