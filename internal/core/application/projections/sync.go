package projections

import (
	"context"
	"log/slog"

	"orderflow/internal/core/ports"
)

// Sync drives one OrderStore from the restaurant's change feed. It owns no
// state of its own: subscribing, ranging over events and forwarding them to
// the store is all it does, so the reconciliation rules live in one place.
type Sync struct {
	feed   ports.ChangeFeed
	store  *OrderStore
	logger *slog.Logger
}

// NewSync creates a dispatch loop binding a feed to a store.
func NewSync(feed ports.ChangeFeed, store *OrderStore, logger *slog.Logger) *Sync {
	return &Sync{
		feed:   feed,
		store:  store,
		logger: logger.With("component", "realtime_sync"),
	}
}

// Run subscribes to the store's restaurant scope and applies events until
// the context is canceled or the feed closes. It blocks; run it in its own
// goroutine. After Run returns, the store must be Reset from a full
// re-fetch before a new Run is trusted again.
func (s *Sync) Run(ctx context.Context) error {
	events, err := s.feed.Subscribe(ctx, s.store.RestaurantID())
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Change feed subscription started",
		"restaurant_id", s.store.RestaurantID().String())

	for event := range events {
		s.store.ApplyEvent(event)
	}

	s.logger.InfoContext(ctx, "Change feed subscription closed",
		"restaurant_id", s.store.RestaurantID().String())

	return ctx.Err()
}
