// Package customer contains the per-restaurant customer ledger aggregate.
//
// A customer is deduplicated by phone number within a restaurant scope and
// carries running aggregates of order count and lifetime spend. Aggregates
// only ever grow: they reflect exactly the set of non-draft orders attributed
// to that phone.
package customer

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// ErrCustomerIsNotConstructed is returned when a Customer instance was not
// created through NewCustomer or RestoreCustomer.
var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer or RestoreCustomer")

// Customer is the ledger record for one phone number within a restaurant.
type Customer struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	phone        string
	name         string

	totalOrders   int64
	totalSpent    kernel.Money
	lastOrderDate time.Time

	isConstructed bool
}

// NewCustomer creates a ledger record for a first order:
// totalOrders starts at 1 and totalSpent at the first order's total.
func NewCustomer(
	id kernel.UUID,
	restaurantID kernel.UUID,
	phone string,
	name string,
	firstOrderTotal kernel.Money,
	now time.Time,
) (*Customer, error) {
	c := &Customer{
		name:          name,
		totalOrders:   1,
		totalSpent:    firstOrderTotal,
		lastOrderDate: now,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setRestaurantID(restaurantID),
		c.setPhone(phone),
		firstOrderTotal.Validate(),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCustomer reconstructs a ledger record from persistence.
func RestoreCustomer(
	id kernel.UUID,
	restaurantID kernel.UUID,
	phone string,
	name string,
	totalOrders int64,
	totalSpent kernel.Money,
	lastOrderDate time.Time,
) (*Customer, error) {
	c := &Customer{
		name:          name,
		totalOrders:   totalOrders,
		totalSpent:    totalSpent,
		lastOrderDate: lastOrderDate,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setRestaurantID(restaurantID),
		c.setPhone(phone),
		totalSpent.Validate(),
	); err != nil {
		return nil, err
	}

	if totalOrders < 0 {
		return nil, errs.NewValueIsInvalidError("total orders")
	}

	return c, nil
}

// Validate ensures the Customer was created through a constructor.
func (c *Customer) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomerIsNotConstructed
	}
	return nil
}

// ID returns the customer's unique identifier.
func (c *Customer) ID() kernel.UUID {
	return c.id
}

// RestaurantID returns the restaurant scope the record belongs to.
func (c *Customer) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Phone returns the dedup key within the restaurant scope.
func (c *Customer) Phone() string {
	return c.phone
}

// Name returns the most recently provided customer name.
func (c *Customer) Name() string {
	return c.name
}

// TotalOrders returns the number of non-draft orders attributed to this phone.
func (c *Customer) TotalOrders() int64 {
	return c.totalOrders
}

// TotalSpent returns the lifetime spend across those orders.
func (c *Customer) TotalSpent() kernel.Money {
	return c.totalSpent
}

// LastOrderDate returns when the most recent order was placed.
func (c *Customer) LastOrderDate() time.Time {
	return c.lastOrderDate
}

// RecordOrder attributes one more order to this customer: increments the
// order count, adds the total to lifetime spend, refreshes the name and
// stamps the last order date. Aggregates never decrease.
//
// This is the in-memory form of the ledger update; the persistence adapter
// performs the same mutation as a single atomic upsert so that concurrent
// submissions from the same phone cannot undercount.
func (c *Customer) RecordOrder(orderTotal kernel.Money, name string, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := orderTotal.Validate(); err != nil {
		return err
	}

	c.totalOrders++
	c.totalSpent = c.totalSpent.Add(orderTotal)
	if name != "" {
		c.name = name
	}
	if now.After(c.lastOrderDate) {
		c.lastOrderDate = now
	}
	return nil
}

func (c *Customer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Customer) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.restaurantID = id
	return nil
}

func (c *Customer) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	c.phone = phone
	return nil
}
