package order

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// LineItem is one menu selection within an order: a snapshot of the chosen
// item, its price variant and quantity at submission time. Unlike cart lines,
// order line items are immutable once the order is persisted.
type LineItem struct {
	menuItemID kernel.UUID
	title      string
	variant    string
	quantity   int
	unitPrice  kernel.Money

	isConstructed bool
}

// ErrLineItemIsNotConstructed is returned when a LineItem was not created
// through the NewLineItem factory function.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// NewLineItem creates a validated line item. Quantity must be at least 1,
// the title must not be empty and the unit price must be a constructed Money.
// The variant label may be empty for items without size or price variants.
func NewLineItem(
	menuItemID kernel.UUID,
	title string,
	variant string,
	quantity int,
	unitPrice kernel.Money,
) (LineItem, error) {
	item := LineItem{isConstructed: true}

	if err := errors.Join(
		item.setMenuItemID(menuItemID),
		item.setTitle(title),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return LineItem{}, err
	}

	item.variant = variant
	return item, nil
}

// Validate ensures the LineItem was created through NewLineItem.
func (li LineItem) Validate() error {
	if !li.isConstructed {
		return ErrLineItemIsNotConstructed
	}
	return nil
}

// MenuItemID returns the identifier of the referenced menu item.
func (li LineItem) MenuItemID() kernel.UUID {
	return li.menuItemID
}

// Title returns the menu item title at submission time.
func (li LineItem) Title() string {
	return li.title
}

// Variant returns the chosen size or price variant label, empty if none.
func (li LineItem) Variant() string {
	return li.variant
}

// Quantity returns the ordered quantity, always at least 1.
func (li LineItem) Quantity() int {
	return li.quantity
}

// UnitPrice returns the price of a single unit.
func (li LineItem) UnitPrice() kernel.Money {
	return li.unitPrice
}

// LineTotal returns unit price multiplied by quantity.
func (li LineItem) LineTotal() kernel.Money {
	return li.unitPrice.MulInt(li.quantity)
}

func (li *LineItem) setMenuItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	li.menuItemID = id
	return nil
}

func (li *LineItem) setTitle(title string) error {
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	li.title = title
	return nil
}

func (li *LineItem) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}
	li.quantity = quantity
	return nil
}

func (li *LineItem) setUnitPrice(unitPrice kernel.Money) error {
	if err := unitPrice.Validate(); err != nil {
		return err
	}
	li.unitPrice = unitPrice
	return nil
}
