package api

import (
	"context"

	"storefront/internal/types"
)

// ListProducts fetches the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	return getJSON[[]types.Product](ctx, c, "/products", nil)
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (types.Product, error) {
	return getJSON[types.Product](ctx, c, "/products/"+id, nil)
}

// SearchProducts performs a server-side name search.
func (c *Client) SearchProducts(ctx context.Context, name string) ([]types.Product, error) {
	return getJSON[[]types.Product](ctx, c, "/products/search", map[string]string{"name": name})
}

// ProductsByCategory fetches the products in one category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]types.Product, error) {
	return getJSON[[]types.Product](ctx, c, "/products/category/"+category, nil)
}

// CreateProduct adds a catalog entry. Admin only.
func (c *Client) CreateProduct(ctx context.Context, p types.Product) (types.Product, error) {
	return postJSON[types.Product](ctx, c, "/products", p)
}

// CreateProductsBulk adds several catalog entries in one call. Admin only.
func (c *Client) CreateProductsBulk(ctx context.Context, ps []types.Product) ([]types.Product, error) {
	return postJSON[[]types.Product](ctx, c, "/products/bulk", ps)
}

// UpdateProduct replaces a catalog entry. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, id string, p types.Product) (types.Product, error) {
	return putJSON[types.Product](ctx, c, "/products/"+id, p)
}

// DeleteProduct removes a catalog entry. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.delete(ctx, "/products/"+id)
}
