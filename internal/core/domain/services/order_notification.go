package services

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/core/domain/model/order"
)

// NewOrderNotification builds the staff notification for a freshly created
// order: the title references the order number and the body summarizes the
// customer, item count, total and fulfillment type.
//
// The caller persists the result fire-and-forget; this function only shapes it.
func NewOrderNotification(o *order.Order, now time.Time) (*notification.Notification, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	customerName := o.Details().CustomerName
	if customerName == "" {
		customerName = "Walk-in customer"
	}

	fulfillment := "pickup"
	if o.IsDelivery() {
		fulfillment = "delivery"
	}

	itemCount := 0
	for _, item := range o.Items() {
		itemCount += item.Quantity()
	}

	title := fmt.Sprintf("New order #%d", o.OrderNumber())
	body := fmt.Sprintf("%s | %d items | %s | %s", customerName, itemCount, o.Total(), fulfillment)

	return notification.NewNotification(
		kernel.NewUUID(),
		o.RestaurantID(),
		title,
		body,
		notification.KindOrder,
		notification.AudienceStaff,
		now,
	)
}
