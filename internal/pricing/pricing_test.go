package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/types"
)

func TestCompute_BelowFreeShippingThreshold(t *testing.T) {
	// 2 x $20.00 => subtotal $40, tax $3.20, shipping $9.99, total $53.19.
	items := []types.CartLineItem{
		{ID: "p1", Name: "Widget", Price: 20.00, Quantity: 2},
	}
	q := Compute(items)

	assert.Equal(t, 40.00, q.Subtotal)
	assert.Equal(t, 3.20, q.Tax)
	assert.Equal(t, 9.99, q.Shipping)
	assert.Equal(t, 53.19, q.Total)
}

func TestCompute_AboveFreeShippingThreshold(t *testing.T) {
	// 1 x $60.00 => subtotal $60, tax $4.80, shipping free, total $64.80.
	items := []types.CartLineItem{
		{ID: "p1", Name: "Gadget", Price: 60.00, Quantity: 1},
	}
	q := Compute(items)

	assert.Equal(t, 60.00, q.Subtotal)
	assert.Equal(t, 4.80, q.Tax)
	assert.Equal(t, 0.00, q.Shipping)
	assert.Equal(t, 64.80, q.Total)
}

func TestCompute_ThresholdIsExclusive(t *testing.T) {
	// Exactly $50 still pays shipping; only strictly greater is free.
	items := []types.CartLineItem{
		{ID: "p1", Price: 50.00, Quantity: 1},
	}
	assert.Equal(t, 9.99, Compute(items).Shipping)

	items[0].Price = 50.01
	assert.Equal(t, 0.00, Compute(items).Shipping)
}

func TestCompute_EmptyCart(t *testing.T) {
	q := Compute(nil)
	assert.Equal(t, 0.00, q.Subtotal)
	assert.Equal(t, 0.00, q.Tax)
	assert.Equal(t, 9.99, q.Shipping)
}

func TestSubtotal_MatchesLineTotals(t *testing.T) {
	items := []types.CartLineItem{
		{ID: "a", Price: 19.99, Quantity: 3},
		{ID: "b", Price: 5.25, Quantity: 1},
		{ID: "c", Price: 0.10, Quantity: 7},
	}
	assert.Equal(t, Round2(19.99*3+5.25+0.70), Subtotal(items))
}

func TestRound2_CentsDrift(t *testing.T) {
	// 0.1+0.2 style float drift must not leak into displayed totals.
	assert.Equal(t, 0.30, Round2(0.1+0.2))
	assert.Equal(t, 2.68, Round2(33.45*0.08))
}
