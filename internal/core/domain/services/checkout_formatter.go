package services

import (
	"fmt"
	"net/url"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

const (
	checkoutDivider = "--------------------------------"

	// messagingBaseURL is the handoff address format for the excluded I/O
	// wrapper. The core's obligation ends at producing the encoded URL.
	messagingBaseURL = "https://wa.me/%s?text=%s"
)

// CheckoutFormatter renders a finalized order into the canonical text payload
// handed to the messaging channel. Format is a pure function: identical inputs
// produce byte-identical output, which the tests pin with literal strings.
type CheckoutFormatter struct {
	restaurantName string
}

// NewCheckoutFormatter creates a formatter for one restaurant identity.
func NewCheckoutFormatter(restaurantName string) CheckoutFormatter {
	return CheckoutFormatter{restaurantName: restaurantName}
}

// Format renders the checkout text: restaurant header, customer block (or
// pickup indicator), one block per line item, monetary footer and the fixed
// disclaimer lines. deliveryFee is included only when non-zero.
func (f CheckoutFormatter) Format(o *order.Order, deliveryFee kernel.Money) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", f.restaurantName)
	fmt.Fprintf(&b, "Order #%d\n", o.OrderNumber())
	b.WriteString(checkoutDivider + "\n")

	f.writeCustomerBlock(&b, o)
	f.writeItems(&b, o)
	f.writeFooter(&b, o, deliveryFee)

	b.WriteString(checkoutDivider + "\n")
	b.WriteString("Prices include all applicable charges.\n")
	b.WriteString("Thank you for your order!\n")

	return b.String()
}

func (f CheckoutFormatter) writeCustomerBlock(b *strings.Builder, o *order.Order) {
	details := o.Details()

	if details.CustomerName != "" {
		fmt.Fprintf(b, "Customer: %s\n", details.CustomerName)
	}
	if details.CustomerPhone != "" {
		fmt.Fprintf(b, "Phone: %s\n", details.CustomerPhone)
	}

	switch {
	case o.IsDelivery():
		if details.CustomerAddress != "" {
			fmt.Fprintf(b, "Address: %s\n", details.CustomerAddress)
		}
		if details.DeliveryZone != "" {
			fmt.Fprintf(b, "Zone: %s\n", details.DeliveryZone)
		}
	case details.TableLabel != "":
		fmt.Fprintf(b, "Table: %s\n", details.TableLabel)
	default:
		b.WriteString("Pickup order\n")
	}

	if details.Notes != "" {
		fmt.Fprintf(b, "Notes: %s\n", details.Notes)
	}
	b.WriteString("\n")
}

func (f CheckoutFormatter) writeItems(b *strings.Builder, o *order.Order) {
	for _, item := range o.Items() {
		if item.Variant() != "" {
			fmt.Fprintf(b, "%s (%s)\n", item.Title(), item.Variant())
		} else {
			fmt.Fprintf(b, "%s\n", item.Title())
		}
		fmt.Fprintf(b, "  %d x %s = %s\n", item.Quantity(), item.UnitPrice(), item.LineTotal())
	}
	b.WriteString("\n")
}

func (f CheckoutFormatter) writeFooter(b *strings.Builder, o *order.Order, deliveryFee kernel.Money) {
	fmt.Fprintf(b, "Subtotal: %s\n", o.Subtotal())
	if !o.DiscountAmount().IsZero() {
		fmt.Fprintf(b, "Discount: -%s\n", o.DiscountAmount())
	}

	total := o.Total()
	if !deliveryFee.IsZero() {
		fmt.Fprintf(b, "Delivery fee: %s\n", deliveryFee)
		total = total.Add(deliveryFee)
	}

	fmt.Fprintf(b, "Total: %s\n", total)
	fmt.Fprintf(b, "Payment: %s\n", o.PaymentMethod())
}

// CheckoutLink produces the URL-encoded payload address for the messaging
// handoff. Non-digit characters are stripped from the phone number. Opening
// the channel itself is outside this core.
func CheckoutLink(phone string, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	return fmt.Sprintf(messagingBaseURL, digits, url.QueryEscape(text))
}
