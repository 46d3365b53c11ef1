// Package pricing is the single place checkout totals are computed.
// Every view that shows money consumes a Quote from here so the cart,
// the review step and the success screen can never disagree.
package pricing

import (
	"math"

	"storefront/internal/types"
)

const (
	// TaxRate is applied to the merchandise subtotal.
	TaxRate = 0.08
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = 50.0
	// FlatShippingCost applies below the free-shipping threshold.
	FlatShippingCost = 9.99
)

// Quote is the full price breakdown for a set of line items.
type Quote struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

// Round2 rounds to cents. Applied at every derived-value boundary so the
// displayed breakdown always sums exactly.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Subtotal is the merchandise total over the lines, before tax and
// shipping. This is the figure the cart view displays.
func Subtotal(items []types.CartLineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += li.LineTotal()
	}
	return Round2(sum)
}

// Compute derives the checkout breakdown from the line items: 8% tax on
// the subtotal, flat $9.99 shipping waived above $50.
func Compute(items []types.CartLineItem) Quote {
	subtotal := Subtotal(items)
	tax := Round2(subtotal * TaxRate)
	shipping := FlatShippingCost
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    Round2(subtotal + tax + shipping),
	}
}
