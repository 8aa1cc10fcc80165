// Package changefeed streams order mutations to in-process subscribers over
// Postgres LISTEN/NOTIFY. A row trigger on the orders table publishes a
// compact JSON payload for every insert, update and delete; the listener
// fans the events out to restaurant-scoped subscriptions.
package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NotifyChannel is the Postgres notification channel the orders trigger
// publishes to.
const NotifyChannel = "orders_changed"

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second

	// subscriberBuffer absorbs bursts; a subscriber that stays behind for
	// this many events starts losing them and must Reset from the store.
	subscriberBuffer = 256
)

// EnsureChangeTrigger installs the notify function and the row trigger on
// the orders table. Idempotent; meant to run at startup after migration.
func EnsureChangeTrigger(db *gorm.DB) error {
	statements := []string{
		`CREATE OR REPLACE FUNCTION order_change_snapshot(o orders) RETURNS json AS $$
			SELECT json_build_object(
				'id', o.id,
				'restaurant_id', o.restaurant_id,
				'order_number', o.order_number,
				'status', o.status,
				'is_draft', o.is_draft,
				'customer_name', o.customer_name,
				'customer_phone', o.customer_phone,
				'total', o.total::text,
				'created_at', o.created_at,
				'updated_at', o.updated_at
			)
		$$ LANGUAGE sql IMMUTABLE`,

		`CREATE OR REPLACE FUNCTION notify_orders_changed() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('` + NotifyChannel + `', json_build_object(
				'kind', lower(TG_OP),
				'before', CASE WHEN TG_OP IN ('UPDATE', 'DELETE') THEN order_change_snapshot(OLD) END,
				'after',  CASE WHEN TG_OP IN ('INSERT', 'UPDATE') THEN order_change_snapshot(NEW) END
			)::text);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS orders_changed_trigger ON orders`,

		`CREATE TRIGGER orders_changed_trigger
			AFTER INSERT OR UPDATE OR DELETE ON orders
			FOR EACH ROW EXECUTE FUNCTION notify_orders_changed()`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

type subscription struct {
	restaurantID kernel.UUID
	events       chan ports.OrderEvent
}

// PqChangeFeed implements ports.ChangeFeed on top of a single lib/pq
// listener connection shared by all subscriptions.
type PqChangeFeed struct {
	listener *pq.Listener
	logger   *slog.Logger

	mu     sync.Mutex
	subs   map[int]subscription
	nextID int
	closed bool
}

// NewPqChangeFeed opens a listener connection and starts dispatching.
// Close must be called to release the connection.
func NewPqChangeFeed(dsn string, logger *slog.Logger) (*PqChangeFeed, error) {
	logger = logger.With("component", "change_feed")

	listener := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.Error("Listener connection event", "event", int(event), "error", err)
			}
		})

	if err := listener.Listen(NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	feed := &PqChangeFeed{
		listener: listener,
		logger:   logger,
		subs:     make(map[int]subscription),
	}

	go feed.dispatchLoop()

	return feed, nil
}

// Subscribe returns a channel of events for one restaurant. The channel is
// closed when ctx is canceled or the feed shuts down.
func (f *PqChangeFeed) Subscribe(ctx context.Context, restaurantID kernel.UUID) (<-chan ports.OrderEvent, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	sub := subscription{
		restaurantID: restaurantID,
		events:       make(chan ports.OrderEvent, subscriberBuffer),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(sub.events)
		return sub.events, nil
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.unsubscribe(id)
	}()

	return sub.events, nil
}

// Close stops dispatching and closes all subscriber channels.
func (f *PqChangeFeed) Close() error {
	return f.listener.Close()
}

func (f *PqChangeFeed) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(sub.events)
	}
}

func (f *PqChangeFeed) dispatchLoop() {
	for {
		select {
		case notification, ok := <-f.listener.Notify:
			if !ok {
				f.shutdown()
				return
			}
			// A nil notification signals a reconnect: events may have been
			// missed and subscribers cannot tell which. They resynchronize
			// through their store reset path.
			if notification == nil {
				f.logger.Warn("Listener reconnected, events may have been lost")
				continue
			}
			f.dispatch(notification.Extra)
		case <-time.After(pingInterval):
			if err := f.listener.Ping(); err != nil {
				f.logger.Error("Listener ping failed", "error", err)
			}
		}
	}
}

func (f *PqChangeFeed) shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for id, sub := range f.subs {
		delete(f.subs, id)
		close(sub.events)
	}
}

func (f *PqChangeFeed) dispatch(payload string) {
	event, restaurantID, err := parseEvent(payload)
	if err != nil {
		f.logger.Error("Failed to parse change payload", "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if !sub.restaurantID.IsEqual(restaurantID) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			f.logger.Warn("Subscriber buffer full, dropping event",
				"restaurant_id", restaurantID.String())
		}
	}
}

type snapshotPayload struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	OrderNumber   int64     `json:"order_number"`
	Status        string    `json:"status"`
	IsDraft       bool      `json:"is_draft"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Total         string    `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type eventPayload struct {
	Kind   string           `json:"kind"`
	Before *snapshotPayload `json:"before"`
	After  *snapshotPayload `json:"after"`
}

func parseEvent(payload string) (ports.OrderEvent, kernel.UUID, error) {
	var raw eventPayload
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return ports.OrderEvent{}, kernel.UUID{}, err
	}

	event := ports.OrderEvent{Kind: ports.EventKind(raw.Kind)}

	var restaurantID kernel.UUID

	if raw.Before != nil {
		snapshot, err := toSnapshot(*raw.Before)
		if err != nil {
			return ports.OrderEvent{}, kernel.UUID{}, err
		}
		event.Before = &snapshot
		restaurantID = snapshot.RestaurantID
	}

	if raw.After != nil {
		snapshot, err := toSnapshot(*raw.After)
		if err != nil {
			return ports.OrderEvent{}, kernel.UUID{}, err
		}
		event.After = &snapshot
		restaurantID = snapshot.RestaurantID
	}

	return event, restaurantID, nil
}

func toSnapshot(raw snapshotPayload) (ports.OrderSnapshot, error) {
	id, err := kernel.UUIDFromString(raw.ID)
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	restaurantID, err := kernel.UUIDFromString(raw.RestaurantID)
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	status, err := order.StatusFromString(raw.Status)
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	amount, err := decimal.NewFromString(raw.Total)
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	total, err := kernel.NewMoney(amount)
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	return ports.OrderSnapshot{
		ID:            id,
		RestaurantID:  restaurantID,
		OrderNumber:   raw.OrderNumber,
		Status:        status,
		IsDraft:       raw.IsDraft,
		CustomerName:  raw.CustomerName,
		CustomerPhone: raw.CustomerPhone,
		Total:         total,
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
	}, nil
}
