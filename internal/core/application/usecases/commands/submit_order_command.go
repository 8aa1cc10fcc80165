package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/cart"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrSubmitOrderCommandIsNotConstructed = errors.New(
		"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
	)
	ErrCartIsRequired  = errors.New("cart is required")
	ErrActorIsRequired = errors.New("actor is required")
)

// SubmitOrderCommand represents a request to turn a cart into a persisted
// order, either as a draft or as a final submission entering the kitchen flow.
//
// Example:
//
//	cmd, err := NewSubmitOrderCommand(restaurantID, posCart,
//	    kernel.FixedDiscount(decimal.NewFromInt(10)),
//	    order.PaymentCash,
//	    order.Details{CustomerName: "Aigerim", CustomerPhone: "+77010000001"},
//	    false, "pos-1")
//	if err != nil {
//	    return err
//	}
//	created, err := handler.Handle(ctx, cmd)
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	restaurantID  kernel.UUID
	cart          *cart.Cart
	discount      kernel.Discount
	paymentMethod order.PaymentMethod
	details       order.Details
	isDraft       bool
	actor         string

	guard guard.ConstructorGuard
}

// NewSubmitOrderCommand creates a validated submission request.
// A non-draft submission with an empty cart is rejected here, before any
// persistence is attempted.
func NewSubmitOrderCommand(
	restaurantID kernel.UUID,
	c *cart.Cart,
	discount kernel.Discount,
	paymentMethod order.PaymentMethod,
	details order.Details,
	isDraft bool,
	actor string,
) (SubmitOrderCommand, error) {
	cmd := SubmitOrderCommand{
		paymentMethod: paymentMethod,
		details:       details,
		isDraft:       isDraft,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRestaurantID(restaurantID),
		cmd.setCart(c, isDraft),
		cmd.setDiscount(discount),
		cmd.setActor(actor),
	); err != nil {
		return SubmitOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

// RestaurantID returns the restaurant scope for the new order.
func (c SubmitOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Cart returns the cart being submitted.
func (c SubmitOrderCommand) Cart() *cart.Cart {
	return c.cart
}

// Discount returns the discount to apply.
func (c SubmitOrderCommand) Discount() kernel.Discount {
	return c.discount
}

// PaymentMethod returns how the order is paid.
func (c SubmitOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// Details returns the optional customer and fulfillment attributes.
func (c SubmitOrderCommand) Details() order.Details {
	return c.details
}

// IsDraft reports whether the order is saved without entering the kitchen flow.
func (c SubmitOrderCommand) IsDraft() bool {
	return c.isDraft
}

// Actor returns who triggered the submission, recorded in the audit log.
func (c SubmitOrderCommand) Actor() string {
	return c.actor
}

func (c *SubmitOrderCommand) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.restaurantID = id
	return nil
}

func (c *SubmitOrderCommand) setCart(crt *cart.Cart, isDraft bool) error {
	if crt == nil {
		return ErrCartIsRequired
	}
	if !isDraft && crt.IsEmpty() {
		return order.ErrEmptyOrder
	}
	c.cart = crt
	return nil
}

func (c *SubmitOrderCommand) setDiscount(discount kernel.Discount) error {
	if err := discount.Validate(); err != nil {
		return err
	}
	c.discount = discount
	return nil
}

func (c *SubmitOrderCommand) setActor(actor string) error {
	if actor == "" {
		return ErrActorIsRequired
	}
	c.actor = actor
	return nil
}
