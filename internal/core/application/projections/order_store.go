// Package projections holds the client-side read models: the OrderStore, a
// per-client in-memory projection of a restaurant's orders, and the Sync
// loop that keeps it reconciled with the authoritative change feed.
//
// Every connected client (kitchen display, order console, POS) owns its own
// OrderStore. The persisted order row is the single source of truth; the
// store only mirrors it and may briefly diverge through optimistic staging.
package projections

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrUnknownStagingToken is returned when confirming or rolling back a token
// that was never issued or has already been resolved.
var ErrUnknownStagingToken = errors.New("unknown or already resolved staging token")

// AlertFunc is invoked at most once per order id when a new order surfaces
// in the projection. Called while the store lock is held; keep it cheap.
type AlertFunc func(snapshot ports.OrderSnapshot)

// StagingToken identifies one optimistic status patch awaiting resolution.
type StagingToken int64

// HistoryFilter narrows History results. Zero-valued fields are ignored.
type HistoryFilter struct {
	Statuses []order.Status
	// Search matches order number, customer name and phone, case-insensitive.
	Search string
	From   time.Time
	To     time.Time
}

// BoardGroup is one column of the kanban board.
type BoardGroup struct {
	Status order.Status
	Orders []ports.OrderSnapshot
}

type storedOrder struct {
	snapshot ports.OrderSnapshot
	// tentative is the optimistically staged status, shown on the board
	// until an authoritative event or an explicit resolution supersedes it.
	tentative *order.Status
}

type stagedChange struct {
	orderID   kernel.UUID
	newStatus order.Status
}

// OrderStore is a mutex-guarded projection of one restaurant's orders.
//
// Active orders (non-draft, non-terminal) form the working set served by
// Board and Delayed; orders evicted on reaching a terminal status stay
// available through History. The store applies feed events idempotently:
// re-applying an event with an (id, updated_at) pair it has already seen
// changes nothing and raises no second alert.
type OrderStore struct {
	mu sync.Mutex

	restaurantID kernel.UUID
	delayedAfter time.Duration
	alert        AlertFunc

	active  map[kernel.UUID]*storedOrder
	history map[kernel.UUID]ports.OrderSnapshot

	// applied records the last updated_at applied per order id. Events are
	// ordered per order, so one timestamp per id is enough for idempotency.
	applied map[kernel.UUID]time.Time
	// alerted records ids that have already raised their one alert.
	alerted map[kernel.UUID]struct{}

	staged    map[StagingToken]stagedChange
	nextToken StagingToken
}

// NewOrderStore creates an empty projection. alert may be nil.
func NewOrderStore(restaurantID kernel.UUID, delayedAfter time.Duration, alert AlertFunc) (*OrderStore, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}
	if delayedAfter <= 0 {
		return nil, errs.NewValueIsRequiredError("delayedAfter")
	}

	return &OrderStore{
		restaurantID: restaurantID,
		delayedAfter: delayedAfter,
		alert:        alert,
		active:       make(map[kernel.UUID]*storedOrder),
		history:      make(map[kernel.UUID]ports.OrderSnapshot),
		applied:      make(map[kernel.UUID]time.Time),
		alerted:      make(map[kernel.UUID]struct{}),
		staged:       make(map[StagingToken]stagedChange),
	}, nil
}

// RestaurantID returns the scope of the projection.
func (s *OrderStore) RestaurantID() kernel.UUID {
	return s.restaurantID
}

// Reset replaces the whole projection with a full re-fetch. A reconnecting
// client must Reset before trusting incremental feed events again. Orders
// present in the snapshot set do not re-alert.
func (s *OrderStore) Reset(snapshots []ports.OrderSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = make(map[kernel.UUID]*storedOrder)
	s.history = make(map[kernel.UUID]ports.OrderSnapshot)
	s.applied = make(map[kernel.UUID]time.Time)
	s.staged = make(map[StagingToken]stagedChange)

	for _, snapshot := range snapshots {
		if snapshot.IsDraft || !snapshot.RestaurantID.IsEqual(s.restaurantID) {
			continue
		}

		s.applied[snapshot.ID] = snapshot.UpdatedAt
		s.alerted[snapshot.ID] = struct{}{}

		if snapshot.Status.IsTerminal() {
			s.history[snapshot.ID] = snapshot
		} else {
			s.active[snapshot.ID] = &storedOrder{snapshot: snapshot}
		}
	}
}

// ApplyEvent reconciles one feed event into the projection. Authoritative
// events always supersede tentative state for the order they touch.
func (s *OrderStore) ApplyEvent(event ports.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Kind {
	case ports.EventInsert:
		if event.After != nil {
			s.applyInsert(*event.After)
		}
	case ports.EventUpdate:
		if event.After != nil {
			s.applyUpdate(*event.After)
		}
	case ports.EventDelete:
		if event.Before != nil {
			s.applyDelete(event.Before.ID)
		}
	}
}

func (s *OrderStore) applyInsert(after ports.OrderSnapshot) {
	if s.alreadyApplied(after) {
		return
	}
	s.applied[after.ID] = after.UpdatedAt

	if after.IsDraft || after.Status.IsTerminal() {
		return
	}

	s.active[after.ID] = &storedOrder{snapshot: after}
	s.alertOnce(after)
}

func (s *OrderStore) applyUpdate(after ports.OrderSnapshot) {
	if s.alreadyApplied(after) {
		return
	}
	s.applied[after.ID] = after.UpdatedAt

	if after.Status.IsTerminal() {
		delete(s.active, after.ID)
		if !after.IsDraft {
			s.history[after.ID] = after
		}
		s.dropStagedFor(after.ID)
		return
	}

	entry, ok := s.active[after.ID]
	if !ok {
		// An update about an order this client never saw inserted, e.g. a
		// draft finalized elsewhere or a reconnect gap.
		if !after.IsDraft {
			s.active[after.ID] = &storedOrder{snapshot: after}
			s.alertOnce(after)
		}
		return
	}

	// Last-writer-wins: the event's state is merged only if it is not older
	// than what the projection already holds.
	if after.UpdatedAt.Before(entry.snapshot.UpdatedAt) {
		return
	}

	entry.snapshot = after
	entry.tentative = nil
	s.dropStagedFor(after.ID)
}

func (s *OrderStore) applyDelete(id kernel.UUID) {
	delete(s.active, id)
	delete(s.history, id)
	delete(s.applied, id)
	s.dropStagedFor(id)
}

// StageStatus optimistically patches the displayed status of an active order
// before the server acknowledges the transition. The returned token must be
// resolved with Confirm or Rollback. Tentative state is display-only: it
// never feeds money or ledger paths.
func (s *OrderStore) StageStatus(orderID kernel.UUID, newStatus order.Status) (StagingToken, error) {
	if err := orderID.Validate(); err != nil {
		return 0, err
	}
	if err := newStatus.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.active[orderID]
	if !ok {
		return 0, errs.NewObjectNotFoundError("order", orderID.String())
	}

	status := newStatus
	entry.tentative = &status

	s.nextToken++
	token := s.nextToken
	s.staged[token] = stagedChange{orderID: orderID, newStatus: newStatus}

	return token, nil
}

// Confirm resolves a staged patch after the server acknowledged it. The
// confirmed status becomes the local state; the authoritative feed event,
// carrying a newer updated_at, still supersedes it on arrival.
func (s *OrderStore) Confirm(token StagingToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, ok := s.staged[token]
	if !ok {
		return ErrUnknownStagingToken
	}
	delete(s.staged, token)

	entry, ok := s.active[change.orderID]
	if !ok {
		return nil
	}

	entry.tentative = nil
	entry.snapshot.Status = change.newStatus

	if change.newStatus.IsTerminal() {
		delete(s.active, change.orderID)
		s.history[change.orderID] = entry.snapshot
	}

	return nil
}

// Rollback discards a staged patch after the server rejected it, restoring
// the last confirmed state.
func (s *OrderStore) Rollback(token StagingToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, ok := s.staged[token]
	if !ok {
		return ErrUnknownStagingToken
	}
	delete(s.staged, token)

	if entry, ok := s.active[change.orderID]; ok {
		entry.tentative = nil
	}

	return nil
}

// Board returns the active orders grouped by status in lifecycle order,
// oldest first within each group. Staged statuses are reflected.
func (s *OrderStore) Board() []BoardGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStatus := make(map[order.Status][]ports.OrderSnapshot)
	for _, entry := range s.active {
		snapshot := entry.snapshot
		if entry.tentative != nil {
			snapshot.Status = *entry.tentative
		}
		byStatus[snapshot.Status] = append(byStatus[snapshot.Status], snapshot)
	}

	groups := make([]BoardGroup, 0, len(order.ActiveStatuses()))
	for _, status := range order.ActiveStatuses() {
		orders := byStatus[status]
		sort.Slice(orders, func(i, j int) bool {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		})
		if orders == nil {
			orders = []ports.OrderSnapshot{}
		}
		groups = append(groups, BoardGroup{Status: status, Orders: orders})
	}

	return groups
}

// History returns the filtered slice of all known orders, newest first,
// plus the total match count for paging. A non-positive limit means no cap.
func (s *OrderStore) History(filter HistoryFilter, offset, limit int) ([]ports.OrderSnapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]ports.OrderSnapshot, 0, len(s.active)+len(s.history))
	for _, entry := range s.active {
		if matchesFilter(entry.snapshot, filter) {
			matches = append(matches, entry.snapshot)
		}
	}
	for _, snapshot := range s.history {
		if matchesFilter(snapshot, filter) {
			matches = append(matches, snapshot)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	if offset >= total {
		return []ports.OrderSnapshot{}, total
	}
	matches = matches[offset:]
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, total
}

// Delayed returns the active orders whose age exceeds the configured
// threshold. Display-only: no transition follows from being delayed.
func (s *OrderStore) Delayed(now time.Time) []ports.OrderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	delayed := make([]ports.OrderSnapshot, 0)
	for _, entry := range s.active {
		if now.Sub(entry.snapshot.CreatedAt) > s.delayedAfter {
			delayed = append(delayed, entry.snapshot)
		}
	}

	sort.Slice(delayed, func(i, j int) bool {
		return delayed[i].CreatedAt.Before(delayed[j].CreatedAt)
	})

	return delayed
}

func (s *OrderStore) alreadyApplied(snapshot ports.OrderSnapshot) bool {
	last, ok := s.applied[snapshot.ID]
	return ok && last.Equal(snapshot.UpdatedAt)
}

func (s *OrderStore) alertOnce(snapshot ports.OrderSnapshot) {
	if _, ok := s.alerted[snapshot.ID]; ok {
		return
	}
	s.alerted[snapshot.ID] = struct{}{}
	if s.alert != nil {
		s.alert(snapshot)
	}
}

func (s *OrderStore) dropStagedFor(orderID kernel.UUID) {
	for token, change := range s.staged {
		if change.orderID.IsEqual(orderID) {
			delete(s.staged, token)
		}
	}
}

func matchesFilter(snapshot ports.OrderSnapshot, filter HistoryFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if snapshot.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := strings.ToLower(strings.TrimPrefix(search, "#"))
		number := strconv.FormatInt(snapshot.OrderNumber, 10)
		if number != needle &&
			!strings.Contains(strings.ToLower(snapshot.CustomerName), needle) &&
			!strings.Contains(snapshot.CustomerPhone, needle) {
			return false
		}
	}

	if !filter.From.IsZero() && snapshot.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && snapshot.CreatedAt.After(filter.To) {
		return false
	}

	return true
}
