package kernel

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// MaxDiscountPercent is the upper bound applied to percentage discounts.
// Percentages above it are clamped, never rejected.
const MaxDiscountPercent = 100

// ErrMoneyIsNotConstructed is returned when a Money value was not created through
// NewMoney, NewMoneyFromFloat or ZeroMoney. The zero value of Money is valid only
// as an amount of zero obtained via ZeroMoney.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError(
	"money must be created via NewMoney, NewMoneyFromFloat, or ZeroMoney")

// Money is an immutable value object holding an exact non-negative monetary amount.
// All cart and order arithmetic goes through Money so that totals never accumulate
// binary floating point drift.
//
// Example:
//
//	price, _ := kernel.NewMoneyFromFloat(120)
//	total := price.MulInt(2) // 240.00 exactly
type Money struct { //nolint:recvcheck //using for validation
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewMoney creates a Money from a decimal amount. Negative amounts are rejected.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is negative", amount.String()))
	}
	return Money{amount: amount, guard: guard.NewConstructorGuard()}, nil
}

// NewMoneyFromFloat creates a Money from a float amount, e.g. a parsed price.
func NewMoneyFromFloat(amount float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount))
}

// ZeroMoney returns a valid Money of amount zero.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero, guard: guard.NewConstructorGuard()}
}

// Validate ensures the Money was created through a constructor.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Amount returns the underlying decimal value.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Add returns the sum of two Money values.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), guard: guard.NewConstructorGuard()}
}

// MulInt returns the amount multiplied by a non-negative integer factor,
// used for quantity times unit price.
func (m Money) MulInt(factor int) Money {
	return Money{
		amount: m.amount.Mul(decimal.NewFromInt(int64(factor))),
		guard:  guard.NewConstructorGuard(),
	}
}

// SubFloor returns the difference floored at zero. Totals never go negative.
func (m Money) SubFloor(other Money) Money {
	diff := m.amount.Sub(other.amount)
	if diff.IsNegative() {
		diff = decimal.Zero
	}
	return Money{amount: diff, guard: guard.NewConstructorGuard()}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsEqual compares two Money values by amount.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the amount with two decimal places, e.g. "250.00".
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// DiscountKind distinguishes fixed-amount discounts from percentage discounts.
type DiscountKind int

const (
	// DiscountNone means no discount is applied.
	DiscountNone DiscountKind = iota
	// DiscountFixed subtracts a fixed amount, clamped to the subtotal.
	DiscountFixed
	// DiscountPercent subtracts a percentage of the subtotal, clamped to [0, 100].
	DiscountPercent
)

// ErrDiscountIsNotConstructed is returned when a Discount value was not created
// through one of the discount constructors.
var ErrDiscountIsNotConstructed = errors.New(
	"discount must be created via NoDiscount, FixedDiscount, or PercentDiscount")

// Discount describes a price reduction applied to a cart subtotal.
// Out-of-range inputs are clamped during application, matching the
// "never raise on out-of-range discounts" rule.
type Discount struct { //nolint:recvcheck //using for validation
	kind  DiscountKind
	value decimal.Decimal

	guard guard.ConstructorGuard
}

// NoDiscount returns a discount that leaves the subtotal unchanged.
func NoDiscount() Discount {
	return Discount{kind: DiscountNone, value: decimal.Zero, guard: guard.NewConstructorGuard()}
}

// FixedDiscount creates a fixed-amount discount. Negative amounts are treated as zero.
func FixedDiscount(amount decimal.Decimal) Discount {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return Discount{kind: DiscountFixed, value: amount, guard: guard.NewConstructorGuard()}
}

// PercentDiscount creates a percentage discount. The percentage is clamped
// to [0, MaxDiscountPercent] when applied.
func PercentDiscount(percent decimal.Decimal) Discount {
	return Discount{kind: DiscountPercent, value: percent, guard: guard.NewConstructorGuard()}
}

// Validate ensures the Discount was created through a constructor.
func (d Discount) Validate() error {
	return d.guard.Validate(ErrDiscountIsNotConstructed)
}

// Kind returns the discount kind.
func (d Discount) Kind() DiscountKind {
	return d.kind
}

// Value returns the raw, unclamped discount value (amount or percentage).
func (d Discount) Value() decimal.Decimal {
	return d.value
}

// AmountFor computes the effective discount for a subtotal:
// fixed discounts are clamped to [0, subtotal], percentage discounts to [0, 100]%.
func (d Discount) AmountFor(subtotal Money) Money {
	switch d.kind {
	case DiscountFixed:
		amount := d.value
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(subtotal.Amount()) {
			amount = subtotal.Amount()
		}
		return Money{amount: amount, guard: guard.NewConstructorGuard()}
	case DiscountPercent:
		pct := d.value
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		if pct.GreaterThan(decimal.NewFromInt(MaxDiscountPercent)) {
			pct = decimal.NewFromInt(MaxDiscountPercent)
		}
		amount := subtotal.Amount().Mul(pct).Div(decimal.NewFromInt(MaxDiscountPercent))
		return Money{amount: amount, guard: guard.NewConstructorGuard()}
	default:
		return ZeroMoney()
	}
}
