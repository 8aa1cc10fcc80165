package cart_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/cart"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount float64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoneyFromFloat(amount)
	require.NoError(t, err)
	return m
}

func TestCart_AddLine(t *testing.T) {
	t.Run("same item and variant merges into one line", func(t *testing.T) {
		c := cart.NewCart()
		pizza := kernel.NewUUID()

		require.NoError(t, c.AddLine(pizza, "Pizza", "M", 1, mustMoney(t, 120)))
		require.NoError(t, c.AddLine(pizza, "Pizza", "M", 2, mustMoney(t, 120)))

		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 3, lines[0].Quantity)
	})

	t.Run("different variant of the same item stays separate", func(t *testing.T) {
		c := cart.NewCart()
		pizza := kernel.NewUUID()

		require.NoError(t, c.AddLine(pizza, "Pizza", "M", 1, mustMoney(t, 120)))
		require.NoError(t, c.AddLine(pizza, "Pizza", "L", 1, mustMoney(t, 150)))

		assert.Len(t, c.Lines(), 2)
	})

	t.Run("quantity below 1 is rejected", func(t *testing.T) {
		c := cart.NewCart()

		err := c.AddLine(kernel.NewUUID(), "Pizza", "M", 0, mustMoney(t, 120))

		require.Error(t, err)
		assert.True(t, c.IsEmpty())
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	setup := func(t *testing.T) (*cart.Cart, kernel.UUID) {
		t.Helper()
		c := cart.NewCart()
		require.NoError(t, c.AddLine(kernel.NewUUID(), "Pizza", "M", 2, mustMoney(t, 120)))
		return c, c.Lines()[0].ID
	}

	t.Run("positive delta increases quantity", func(t *testing.T) {
		c, lineID := setup(t)

		require.NoError(t, c.UpdateQuantity(lineID, 3))
		assert.Equal(t, 5, c.Lines()[0].Quantity)
	})

	t.Run("reducing to zero removes the line", func(t *testing.T) {
		c, lineID := setup(t)

		require.NoError(t, c.UpdateQuantity(lineID, -2))
		assert.True(t, c.IsEmpty())
	})

	t.Run("result is clamped at zero", func(t *testing.T) {
		c, lineID := setup(t)

		require.NoError(t, c.UpdateQuantity(lineID, -100))
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown line reports not found", func(t *testing.T) {
		c, _ := setup(t)

		err := c.UpdateQuantity(kernel.NewUUID(), 1)
		require.Error(t, err)
	})
}

func TestCart_RemoveLine(t *testing.T) {
	c := cart.NewCart()
	require.NoError(t, c.AddLine(kernel.NewUUID(), "Pizza", "M", 2, mustMoney(t, 120)))
	require.NoError(t, c.AddLine(kernel.NewUUID(), "Coke", "", 1, mustMoney(t, 20)))
	lineID := c.Lines()[0].ID

	require.NoError(t, c.RemoveLine(lineID))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Coke", lines[0].Title)
}

func TestCart_ComputeTotals(t *testing.T) {
	newCart := func(t *testing.T) *cart.Cart {
		t.Helper()
		c := cart.NewCart()
		require.NoError(t, c.AddLine(kernel.NewUUID(), "Pizza", "M", 2, mustMoney(t, 120)))
		require.NoError(t, c.AddLine(kernel.NewUUID(), "Coke", "", 1, mustMoney(t, 20)))
		return c
	}

	t.Run("fixed discount scenario", func(t *testing.T) {
		totals, err := newCart(t).ComputeTotals(kernel.FixedDiscount(decimal.NewFromInt(10)))

		require.NoError(t, err)
		assert.Equal(t, "260.00", totals.Subtotal.String())
		assert.Equal(t, "10.00", totals.Discount.String())
		assert.Equal(t, "250.00", totals.Total.String())
	})

	t.Run("percent discount above 100 clamps to full subtotal", func(t *testing.T) {
		totals, err := newCart(t).ComputeTotals(kernel.PercentDiscount(decimal.NewFromInt(120)))

		require.NoError(t, err)
		assert.Equal(t, "260.00", totals.Discount.String())
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("fixed discount larger than subtotal clamps to subtotal", func(t *testing.T) {
		totals, err := newCart(t).ComputeTotals(kernel.FixedDiscount(decimal.NewFromInt(1000)))

		require.NoError(t, err)
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("empty cart totals are zero", func(t *testing.T) {
		totals, err := cart.NewCart().ComputeTotals(kernel.NoDiscount())

		require.NoError(t, err)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Total.IsZero())
	})
}

func TestCart_ToOrder(t *testing.T) {
	c := cart.NewCart()
	require.NoError(t, c.AddLine(kernel.NewUUID(), "Pizza", "M", 2, mustMoney(t, 120)))

	t.Run("produces a pending order with the cart's lines", func(t *testing.T) {
		o, err := c.ToOrder(
			kernel.NewUUID(), kernel.NewUUID(), 7,
			kernel.NoDiscount(), order.PaymentCash, order.Details{}, false, time.Now(),
		)

		require.NoError(t, err)
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, "240.00", o.Total().String())
		require.Len(t, o.Items(), 1)
		assert.Equal(t, 2, o.Items()[0].Quantity())
		// The cart itself is untouched until the submission is confirmed.
		assert.Len(t, c.Lines(), 1)
	})

	t.Run("empty cart cannot become a non-draft order", func(t *testing.T) {
		_, err := cart.NewCart().ToOrder(
			kernel.NewUUID(), kernel.NewUUID(), 8,
			kernel.NoDiscount(), order.PaymentCash, order.Details{}, false, time.Now(),
		)

		require.ErrorIs(t, err, order.ErrEmptyOrder)
	})
}
