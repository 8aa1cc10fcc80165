package customer_test

import (
	"fmt"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount float64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoneyFromFloat(amount)
	require.NoError(t, err)
	return m
}

func TestNewCustomer(t *testing.T) {
	t.Run("first order seeds the aggregates", func(t *testing.T) {
		now := time.Now()

		c, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "+77010000001", "Aigerim", mustMoney(t, 250), now,
		)

		require.NoError(t, err)
		assert.Equal(t, int64(1), c.TotalOrders())
		assert.Equal(t, "250.00", c.TotalSpent().String())
		assert.Equal(t, now, c.LastOrderDate())
	})

	t.Run("phone is required", func(t *testing.T) {
		_, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "", "Aigerim", mustMoney(t, 250), time.Now(),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var c customer.Customer
		require.ErrorIs(t, c.Validate(), customer.ErrCustomerIsNotConstructed)
	})
}

func TestCustomer_RecordOrder(t *testing.T) {
	t.Run("N sequential orders sum exactly", func(t *testing.T) {
		totals := []float64{120, 80.50, 250, 19.99}

		c, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "+77010000001", "Aigerim", mustMoney(t, totals[0]), time.Now(),
		)
		require.NoError(t, err)

		for _, total := range totals[1:] {
			require.NoError(t, c.RecordOrder(mustMoney(t, total), "Aigerim", time.Now()))
		}

		assert.Equal(t, int64(len(totals)), c.TotalOrders())
		assert.Equal(t, "470.49", c.TotalSpent().String())
	})

	t.Run("refreshes name when provided", func(t *testing.T) {
		c, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "+77010000001", "A.", mustMoney(t, 100), time.Now(),
		)
		require.NoError(t, err)

		require.NoError(t, c.RecordOrder(mustMoney(t, 50), "Aigerim", time.Now()))
		assert.Equal(t, "Aigerim", c.Name())

		require.NoError(t, c.RecordOrder(mustMoney(t, 50), "", time.Now()))
		assert.Equal(t, "Aigerim", c.Name(), "empty name must not erase the stored one")
	})

	t.Run("last order date never moves backwards", func(t *testing.T) {
		now := time.Now()
		c, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "+77010000001", "Aigerim", mustMoney(t, 100), now,
		)
		require.NoError(t, err)

		require.NoError(t, c.RecordOrder(mustMoney(t, 50), "Aigerim", now.Add(-time.Hour)))
		assert.Equal(t, now, c.LastOrderDate())
	})

	t.Run("aggregates are non-decreasing", func(t *testing.T) {
		c, err := customer.NewCustomer(
			kernel.NewUUID(), kernel.NewUUID(), "+77010000001", "Aigerim", mustMoney(t, 100), time.Now(),
		)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			prevOrders := c.TotalOrders()
			prevSpent := c.TotalSpent()

			require.NoError(t, c.RecordOrder(kernel.ZeroMoney(), "", time.Now()))

			assert.Greater(t, c.TotalOrders(), prevOrders, fmt.Sprintf("iteration %d", i))
			assert.False(t, c.TotalSpent().Amount().LessThan(prevSpent.Amount()))
		}
	})
}
