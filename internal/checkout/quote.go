package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/ovenside/pizza-storefront/internal/cart"
)

// Display-only pricing constants. The backend owns real pricing; these
// only feed the order summary panel.
var (
	taxRate     = decimal.NewFromFloat(0.20) // TVA
	deliveryFee = decimal.NewFromFloat(3.99)
)

// Summary is the order summary shown next to the cart: subtotal, tax and
// a flat delivery fee.
type Summary struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Quote computes the display summary for the current cart state. An empty
// cart quotes to all zeros, including the delivery fee.
func Quote(c *cart.Cart) Summary {
	subtotal := c.Subtotal()
	if subtotal.IsZero() {
		return Summary{
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			DeliveryFee: decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	tax := subtotal.Mul(taxRate).Round(2)
	return Summary{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(tax).Add(deliveryFee),
	}
}
