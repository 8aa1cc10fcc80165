// Package notification contains the best-effort notification record created
// when an order is submitted. Notifications are advisory: a failure to create
// one never rolls back or blocks the order it followed from.
package notification

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Kind identifies what a notification is about.
type Kind string

const (
	// KindOrder marks notifications emitted for newly created orders.
	KindOrder Kind = "order"
)

// Audience identifies which staff surface a notification targets.
type Audience string

const (
	// AudienceStaff targets the order-management console.
	AudienceStaff Audience = "staff"
	// AudienceKitchen targets the kitchen display.
	AudienceKitchen Audience = "kitchen"
)

// ErrNotificationIsNotConstructed is returned when a Notification was not
// created through NewNotification or RestoreNotification.
var ErrNotificationIsNotConstructed = errors.New(
	"Notification must be created via NewNotification or RestoreNotification")

// Notification is a restaurant-scoped advisory record. It is created once
// and only its read flag changes afterwards.
type Notification struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	title        string
	body         string
	kind         Kind
	audience     Audience
	isRead       bool
	createdAt    time.Time

	isConstructed bool
}

// NewNotification creates an unread notification.
func NewNotification(
	id kernel.UUID,
	restaurantID kernel.UUID,
	title string,
	body string,
	kind Kind,
	audience Audience,
	now time.Time,
) (*Notification, error) {
	n := &Notification{
		body:          body,
		kind:          kind,
		audience:      audience,
		createdAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		n.setID(id),
		n.setRestaurantID(restaurantID),
		n.setTitle(title),
	); err != nil {
		return nil, err
	}

	return n, nil
}

// RestoreNotification reconstructs a notification from persistence.
func RestoreNotification(
	id kernel.UUID,
	restaurantID kernel.UUID,
	title string,
	body string,
	kind Kind,
	audience Audience,
	isRead bool,
	createdAt time.Time,
) (*Notification, error) {
	n, err := NewNotification(id, restaurantID, title, body, kind, audience, createdAt)
	if err != nil {
		return nil, err
	}
	n.isRead = isRead
	return n, nil
}

// Validate ensures the Notification was created through a constructor.
func (n *Notification) Validate() error {
	if n == nil || !n.isConstructed {
		return ErrNotificationIsNotConstructed
	}
	return nil
}

// ID returns the notification's unique identifier.
func (n *Notification) ID() kernel.UUID {
	return n.id
}

// RestaurantID returns the restaurant scope.
func (n *Notification) RestaurantID() kernel.UUID {
	return n.restaurantID
}

// Title returns the short display title.
func (n *Notification) Title() string {
	return n.title
}

// Body returns the summary text.
func (n *Notification) Body() string {
	return n.body
}

// Kind returns what the notification is about.
func (n *Notification) Kind() Kind {
	return n.kind
}

// Audience returns the targeted staff surface.
func (n *Notification) Audience() Audience {
	return n.audience
}

// IsRead reports whether the notification has been acknowledged.
func (n *Notification) IsRead() bool {
	return n.isRead
}

// CreatedAt returns when the notification was created.
func (n *Notification) CreatedAt() time.Time {
	return n.createdAt
}

// MarkRead flags the notification as acknowledged. Idempotent.
func (n *Notification) MarkRead() {
	n.isRead = true
}

// MarkUnread clears the acknowledged flag. Idempotent.
func (n *Notification) MarkUnread() {
	n.isRead = false
}

func (n *Notification) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	n.id = id
	return nil
}

func (n *Notification) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	n.restaurantID = id
	return nil
}

func (n *Notification) setTitle(title string) error {
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	n.title = title
	return nil
}
