package services_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNotification(t *testing.T) {
	t.Run("summarizes customer, item count, total and fulfillment", func(t *testing.T) {
		o := buildOrder(t,
			order.Details{CustomerName: "Aigerim", CustomerAddress: "Abay ave 10"},
			kernel.NoDiscount(),
		)

		n, err := services.NewOrderNotification(o, time.Now())

		require.NoError(t, err)
		assert.Equal(t, "New order #42", n.Title())
		assert.Equal(t, "Aigerim | 3 items | 260.00 | delivery", n.Body())
		assert.Equal(t, notification.KindOrder, n.Kind())
		assert.Equal(t, notification.AudienceStaff, n.Audience())
		assert.False(t, n.IsRead())
		assert.True(t, n.RestaurantID().IsEqual(o.RestaurantID()))
	})

	t.Run("falls back to walk-in customer and pickup", func(t *testing.T) {
		o := buildOrder(t, order.Details{}, kernel.NoDiscount())

		n, err := services.NewOrderNotification(o, time.Now())

		require.NoError(t, err)
		assert.Equal(t, "Walk-in customer | 3 items | 260.00 | pickup", n.Body())
	})

	t.Run("rejects an unconstructed order", func(t *testing.T) {
		var o order.Order

		_, err := services.NewOrderNotification(&o, time.Now())
		require.Error(t, err)
	})
}
