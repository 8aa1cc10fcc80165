package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrEmptyOrder is returned when a non-draft order is submitted without items.
	ErrEmptyOrder = errors.New("a non-draft order must contain at least one line item")
)

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Validate checks the payment method against the closed set.
func (p PaymentMethod) Validate() error {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return nil
	default:
		return errs.NewValueIsInvalidError("payment method")
	}
}

// Details carries the optional, free-form attributes of an order: who ordered
// it, where it goes, and any kitchen notes. All fields may be empty; an order
// with neither address nor delivery zone is a pickup order.
type Details struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	TableLabel      string
	DeliveryZone    string
	Notes           string
}

// Order is the aggregate root of the order lifecycle. It is created once by a
// cart submission and mutated only through status transitions afterwards.
// Orders are never physically deleted: cancellation is a terminal status.
//
// Invariants:
//   - total == max(0, subtotal - effective discount), recomputed from the items
//   - a non-draft order has at least one line item
//   - status changes only along the allowed transition graph
//   - updatedAt is monotonically non-decreasing
type Order struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	orderNumber  int64

	status   Status
	items    []LineItem
	discount kernel.Discount

	subtotal       kernel.Money
	discountAmount kernel.Money
	total          kernel.Money

	paymentMethod PaymentMethod
	details       Details
	isDraft       bool

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewOrder creates a submitted order in Pending status. Totals are computed
// from the line items and the discount; a non-draft submission with an empty
// item list or an invalid payment method is rejected before persistence.
func NewOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	orderNumber int64,
	items []LineItem,
	discount kernel.Discount,
	paymentMethod PaymentMethod,
	details Details,
	isDraft bool,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		details:       details,
		isDraft:       isDraft,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRestaurantID(restaurantID),
		o.setOrderNumber(orderNumber),
		o.setItems(items, isDraft),
		o.setDiscount(discount),
		o.setPaymentMethod(paymentMethod, isDraft),
	); err != nil {
		return nil, err
	}

	o.recomputeTotals()
	return o, nil
}

// RestoreOrder reconstructs an order from persistence, including its current
// status and timestamps. Totals are recomputed from the stored items so the
// monetary invariant holds even for rows written by older code.
func RestoreOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	orderNumber int64,
	status Status,
	items []LineItem,
	discount kernel.Discount,
	paymentMethod PaymentMethod,
	details Details,
	isDraft bool,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		details:       details,
		isDraft:       isDraft,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRestaurantID(restaurantID),
		o.setOrderNumber(orderNumber),
		status.Validate(),
		o.setItems(items, isDraft),
		o.setDiscount(discount),
		o.setPaymentMethod(paymentMethod, isDraft),
	); err != nil {
		return nil, err
	}

	o.status = status
	o.recomputeTotals()
	return o, nil
}

// Validate ensures the Order instance was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// RestaurantID returns the restaurant scope the order belongs to.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// OrderNumber returns the display number, strictly increasing per restaurant.
func (o *Order) OrderNumber() int64 {
	return o.orderNumber
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the line items.
func (o *Order) Items() []LineItem {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	return items
}

// Discount returns the discount applied at submission.
func (o *Order) Discount() kernel.Discount {
	return o.discount
}

// Subtotal returns the sum of all line totals.
func (o *Order) Subtotal() kernel.Money {
	return o.subtotal
}

// DiscountAmount returns the effective, clamped discount.
func (o *Order) DiscountAmount() kernel.Money {
	return o.discountAmount
}

// Total returns subtotal minus effective discount, floored at zero.
func (o *Order) Total() kernel.Money {
	return o.total
}

// PaymentMethod returns how the order is paid.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// Details returns the optional customer and fulfillment attributes.
func (o *Order) Details() Details {
	return o.details
}

// IsDraft reports whether the order is saved but not submitted.
// Draft orders are excluded from active views, the ledger and notifications.
func (o *Order) IsDraft() bool {
	return o.isDraft
}

// IsDelivery reports whether the order goes out, based on the presence of a
// delivery address or zone. Everything else is a pickup or table order.
func (o *Order) IsDelivery() bool {
	return o.details.CustomerAddress != "" || o.details.DeliveryZone != ""
}

// CreatedAt returns the submission time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the time of the last mutation.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Age returns how long the order has existed at the given instant.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.createdAt)
}

// TransitionTo moves the order to newStatus if the edge is allowed by the
// transition graph, stamps updatedAt, and returns the audit entry to persist.
//
// On an invalid transition the order is left untouched, no entry is produced
// and an *InvalidTransitionError is returned.
func (o *Order) TransitionTo(newStatus Status, actor string, now time.Time) (LogEntry, error) {
	if err := o.Validate(); err != nil {
		return LogEntry{}, err
	}

	next, err := o.status.TransitionTo(newStatus)
	if err != nil {
		return LogEntry{}, err
	}

	oldStatus := o.status
	o.status = next
	o.touch(now)

	return NewLogEntry(o.id, LogActionStatusChanged, oldStatus, next, actor, o.updatedAt), nil
}

// CreationLogEntry returns the audit entry recording the order's submission.
func (o *Order) CreationLogEntry(actor string) LogEntry {
	return NewLogEntry(o.id, LogActionCreated, Unknown, o.status, actor, o.createdAt)
}

// touch advances updatedAt, never moving it backwards.
func (o *Order) touch(now time.Time) {
	if now.After(o.updatedAt) {
		o.updatedAt = now
	}
}

func (o *Order) recomputeTotals() {
	subtotal := kernel.ZeroMoney()
	for _, item := range o.items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	o.subtotal = subtotal
	o.discountAmount = o.discount.AmountFor(subtotal)
	o.total = subtotal.SubFloor(o.discountAmount)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setOrderNumber(n int64) error {
	if n < 1 {
		return errs.NewValueIsInvalidError("order number")
	}
	o.orderNumber = n
	return nil
}

func (o *Order) setItems(items []LineItem, isDraft bool) error {
	if !isDraft && len(items) == 0 {
		return ErrEmptyOrder
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	o.items = make([]LineItem, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setDiscount(discount kernel.Discount) error {
	if err := discount.Validate(); err != nil {
		return err
	}
	o.discount = discount
	return nil
}

func (o *Order) setPaymentMethod(paymentMethod PaymentMethod, isDraft bool) error {
	if isDraft && paymentMethod == "" {
		return nil
	}
	if err := paymentMethod.Validate(); err != nil {
		return err
	}
	o.paymentMethod = paymentMethod
	return nil
}
