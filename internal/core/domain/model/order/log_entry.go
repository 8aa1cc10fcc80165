package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// LogAction identifies the kind of mutation recorded in the audit log.
type LogAction string

const (
	// LogActionCreated records the initial submission of an order.
	LogActionCreated LogAction = "created"
	// LogActionStatusChanged records a successful status transition.
	LogActionStatusChanged LogAction = "status_changed"
)

// LogEntry is an immutable audit record of a single order mutation.
// Entries are append-only: they are never updated or deleted, so the log
// forms the complete history of an order's lifecycle.
type LogEntry struct {
	orderID     kernel.UUID
	action      LogAction
	oldStatus   Status
	newStatus   Status
	performedBy string
	createdAt   time.Time
}

// NewLogEntry creates an audit record. It is called by the Order aggregate
// when a mutation succeeds; failed mutations write no entry.
func NewLogEntry(
	orderID kernel.UUID,
	action LogAction,
	oldStatus Status,
	newStatus Status,
	performedBy string,
	createdAt time.Time,
) LogEntry {
	return LogEntry{
		orderID:     orderID,
		action:      action,
		oldStatus:   oldStatus,
		newStatus:   newStatus,
		performedBy: performedBy,
		createdAt:   createdAt,
	}
}

// OrderID returns the order the entry belongs to.
func (e LogEntry) OrderID() kernel.UUID {
	return e.orderID
}

// Action returns the recorded mutation kind.
func (e LogEntry) Action() LogAction {
	return e.action
}

// OldStatus returns the status before the mutation.
// For creation entries this is Unknown.
func (e LogEntry) OldStatus() Status {
	return e.oldStatus
}

// NewStatus returns the status after the mutation.
func (e LogEntry) NewStatus() Status {
	return e.newStatus
}

// PerformedBy returns the actor that triggered the mutation.
func (e LogEntry) PerformedBy() string {
	return e.performedBy
}

// CreatedAt returns when the mutation happened.
func (e LogEntry) CreatedAt() time.Time {
	return e.createdAt
}
