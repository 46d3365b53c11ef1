package types

// CartLineItem is one product in the cart with its captured unit price.
// The cart holds at most one line per product id; re-adding a product
// accumulates onto the existing line.
type CartLineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineTotal is price times quantity for this line.
func (li CartLineItem) LineTotal() float64 {
	return li.Price * float64(li.Quantity)
}
