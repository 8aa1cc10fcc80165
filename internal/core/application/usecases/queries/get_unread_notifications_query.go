package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/pkg/guard"
)

var ErrGetUnreadNotificationsQueryIsNotConstructed = errors.New(
	"GetUnreadNotificationsQuery must be created via NewGetUnreadNotificationsQuery constructor",
)

// GetUnreadNotificationsQuery retrieves the unacknowledged notifications of
// one restaurant, newest first.
type GetUnreadNotificationsQuery struct {
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetUnreadNotificationsQuery creates a query for unread notifications.
func NewGetUnreadNotificationsQuery(restaurantID kernel.UUID) (GetUnreadNotificationsQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetUnreadNotificationsQuery{}, err
	}

	return GetUnreadNotificationsQuery{
		restaurantID: restaurantID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetUnreadNotificationsQuery) Validate() error {
	return q.guard.Validate(ErrGetUnreadNotificationsQueryIsNotConstructed)
}

// RestaurantID returns the restaurant scope.
func (q GetUnreadNotificationsQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// GetUnreadNotificationsQueryResponse is one unread notification.
type GetUnreadNotificationsQueryResponse struct {
	ID        kernel.UUID
	Title     string
	Body      string
	Kind      notification.Kind
	Audience  notification.Audience
	CreatedAt time.Time
}
