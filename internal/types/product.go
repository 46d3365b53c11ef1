// Package types holds the data model shared by the API client, the local
// stores and the UI: products, cart line items, orders and users.
package types

// Product mirrors the catalog record served by the backend.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// LowStock reports whether the product is below the dashboard's
// low-inventory threshold.
func (p Product) LowStock() bool {
	return p.Quantity < 10
}

// InStock reports whether the product can currently be added to a cart.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
