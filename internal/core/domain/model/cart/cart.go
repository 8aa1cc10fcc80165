// Package cart contains the ephemeral, pre-persistence shopping cart.
//
// A cart accumulates line selections on a single client (the POS surface)
// and computes subtotal, discount and total deterministically. On submission
// its lines become the immutable items of a persisted order; the cart itself
// is never stored.
package cart

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// Line is one selection in the cart. Lines sharing the same
// (menu item, variant) key are merged rather than duplicated.
type Line struct {
	ID         kernel.UUID
	MenuItemID kernel.UUID
	Title      string
	Variant    string
	Quantity   int
	UnitPrice  kernel.Money
}

// LineTotal returns unit price multiplied by quantity.
func (l Line) LineTotal() kernel.Money {
	return l.UnitPrice.MulInt(l.Quantity)
}

// Totals is the deterministic monetary summary of a cart.
type Totals struct {
	Subtotal kernel.Money
	Discount kernel.Money
	Total    kernel.Money
}

// Cart accumulates selected line items for one pending order.
// Cart is not safe for concurrent use; each client surface holds its own.
type Cart struct {
	lines []Line
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Lines returns a copy of the current cart lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// AddLine merges the selection into an existing line with the same
// (menu item, variant) key by summing quantities, or appends a new line.
// Quantity must be at least 1 and the unit price must be constructed.
func (c *Cart) AddLine(menuItemID kernel.UUID, title, variant string, quantity int, unitPrice kernel.Money) error {
	if err := menuItemID.Validate(); err != nil {
		return err
	}
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}
	if err := unitPrice.Validate(); err != nil {
		return err
	}

	for i := range c.lines {
		if c.lines[i].MenuItemID.IsEqual(menuItemID) && c.lines[i].Variant == variant {
			c.lines[i].Quantity += quantity
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		ID:         kernel.NewUUID(),
		MenuItemID: menuItemID,
		Title:      title,
		Variant:    variant,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	})
	return nil
}

// UpdateQuantity adjusts a line's quantity by delta, clamping the result at
// zero. A line whose resulting quantity is zero is removed from the cart.
func (c *Cart) UpdateQuantity(lineID kernel.UUID, delta int) error {
	for i := range c.lines {
		if !c.lines[i].ID.IsEqual(lineID) {
			continue
		}

		quantity := c.lines[i].Quantity + delta
		if quantity < 0 {
			quantity = 0
		}
		if quantity == 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}

		c.lines[i].Quantity = quantity
		return nil
	}

	return errs.NewObjectNotFoundError("cart line", lineID.String())
}

// RemoveLine removes a line unconditionally.
func (c *Cart) RemoveLine(lineID kernel.UUID) error {
	for i := range c.lines {
		if c.lines[i].ID.IsEqual(lineID) {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("cart line", lineID.String())
}

// ComputeTotals computes subtotal, effective discount and total:
//
//	subtotal = sum(unit price x quantity)
//	discount = clamped per kernel.Discount semantics
//	total    = max(0, subtotal - discount)
func (c *Cart) ComputeTotals(discount kernel.Discount) (Totals, error) {
	if err := discount.Validate(); err != nil {
		return Totals{}, err
	}

	subtotal := kernel.ZeroMoney()
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	discountAmount := discount.AmountFor(subtotal)
	return Totals{
		Subtotal: subtotal,
		Discount: discountAmount,
		Total:    subtotal.SubFloor(discountAmount),
	}, nil
}

// ToOrder converts the cart into a persisted order in Pending status.
// The cart is left unchanged; callers clear it once submission is confirmed,
// keeping the optimistic view recoverable if the write fails.
func (c *Cart) ToOrder(
	orderID kernel.UUID,
	restaurantID kernel.UUID,
	orderNumber int64,
	discount kernel.Discount,
	paymentMethod order.PaymentMethod,
	details order.Details,
	isDraft bool,
	now time.Time,
) (*order.Order, error) {
	items := make([]order.LineItem, 0, len(c.lines))
	for _, line := range c.lines {
		item, err := order.NewLineItem(line.MenuItemID, line.Title, line.Variant, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return order.NewOrder(orderID, restaurantID, orderNumber, items, discount, paymentMethod, details, isDraft, now)
}
