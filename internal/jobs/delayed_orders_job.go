package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DelayedOrdersJob sweeps the active orders once a minute and logs every
// order that crossed the delay threshold since the previous sweep. The delay
// flag is display-only: the job never transitions an order, it only makes
// the kitchen falling behind visible in the logs.
type DelayedOrdersJob struct {
	orderRepo    ports.OrderRepository
	restaurantID kernel.UUID
	delayedAfter time.Duration
	cron         *cron.Cron
	logger       *slog.Logger

	mu       sync.Mutex
	reported map[kernel.UUID]struct{}
}

// NewDelayedOrdersJob creates a sweep job for one restaurant.
func NewDelayedOrdersJob(
	orderRepo ports.OrderRepository,
	restaurantID kernel.UUID,
	delayedAfter time.Duration,
	logger *slog.Logger,
) *DelayedOrdersJob {
	return &DelayedOrdersJob{
		orderRepo:    orderRepo,
		restaurantID: restaurantID,
		delayedAfter: delayedAfter,
		cron:         cron.New(),
		logger:       logger.With("component", "delayed_orders_job"),
		reported:     make(map[kernel.UUID]struct{}),
	}
}

// Start begins the sweep, running every minute.
func (j *DelayedOrdersJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", j.sweep)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delayed orders job started (running every minute)",
		"threshold", j.delayedAfter.String())
	return nil
}

// Stop stops the sweep job.
func (j *DelayedOrdersJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Delayed orders job stopped")
}

func (j *DelayedOrdersJob) sweep() {
	ctx := context.Background()
	now := time.Now()

	active, err := j.orderRepo.GetActive(ctx, j.restaurantID)
	if err != nil {
		j.logger.ErrorContext(ctx, "Delayed orders sweep failed", "error", err)
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	seen := make(map[kernel.UUID]struct{}, len(active))
	for _, o := range active {
		seen[o.ID()] = struct{}{}

		if o.Age(now) <= j.delayedAfter {
			continue
		}
		if _, alreadyReported := j.reported[o.ID()]; alreadyReported {
			continue
		}

		j.reported[o.ID()] = struct{}{}
		j.logger.WarnContext(ctx, "Order is delayed",
			"order_id", o.ID().String(),
			"order_number", o.OrderNumber(),
			"status", o.Status().String(),
			"age", o.Age(now).Round(time.Second).String())
	}

	// Orders that left the active set can be reported again if they ever
	// come back, which cannot happen along the transition graph; this just
	// keeps the map from growing forever.
	for id := range j.reported {
		if _, stillActive := seen[id]; !stillActive {
			delete(j.reported, id)
		}
	}
}
