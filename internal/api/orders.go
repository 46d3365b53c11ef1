package api

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/types"
)

// OrderListQuery selects one page of the my-orders listing.
type OrderListQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// DefaultOrderQuery is the order-history default: newest first, ten per
// page.
func DefaultOrderQuery(page int) OrderListQuery {
	return OrderListQuery{Page: page, Size: 10, SortBy: "orderDate", SortDir: "desc"}
}

func (q OrderListQuery) params() map[string]string {
	size := q.Size
	if size <= 0 {
		size = 10
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "orderDate"
	}
	sortDir := q.SortDir
	if sortDir == "" {
		sortDir = "desc"
	}
	return map[string]string{
		"page":    strconv.Itoa(q.Page),
		"size":    strconv.Itoa(size),
		"sortBy":  sortBy,
		"sortDir": sortDir,
	}
}

// CreateOrder submits the checkout payload and returns the placed order.
func (c *Client) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (types.Order, error) {
	return postJSON[types.Order](ctx, c, "/orders", req)
}

// MyOrders fetches one page of the current user's order history.
func (c *Client) MyOrders(ctx context.Context, q OrderListQuery) (types.OrderPage, error) {
	return getJSON[types.OrderPage](ctx, c, "/orders/my-orders", q.params())
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id string) (types.Order, error) {
	return getJSON[types.Order](ctx, c, "/orders/"+id, nil)
}

// GetOrderByNumber fetches a single order by its human-readable number.
func (c *Client) GetOrderByNumber(ctx context.Context, orderNumber string) (types.Order, error) {
	return getJSON[types.Order](ctx, c, "/orders/order-number/"+orderNumber, nil)
}

// CancelOrder requests the cancellation transition and returns the
// updated order. The backend rejects orders that already shipped.
func (c *Client) CancelOrder(ctx context.Context, id string) (types.Order, error) {
	return putJSON[types.Order](ctx, c, "/orders/"+id+"/cancel", nil)
}

// TrackOrder looks an order up by tracking number. This endpoint needs no
// authentication.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (types.Order, error) {
	return getJSON[types.Order](ctx, c, "/orders/tracking/"+trackingNumber, nil)
}

// --- Admin surface ---

// AllOrders lists every order. Admin only.
func (c *Client) AllOrders(ctx context.Context) ([]types.Order, error) {
	return getJSON[[]types.Order](ctx, c, "/orders/admin/all", nil)
}

// OrdersByStatus lists every order in one status. Admin only.
func (c *Client) OrdersByStatus(ctx context.Context, status types.OrderStatus) ([]types.Order, error) {
	return getJSON[[]types.Order](ctx, c, "/orders/admin/status/"+string(status), nil)
}

// UpdateOrderStatus transitions an order's status. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status types.OrderStatus) (types.Order, error) {
	return putJSON[types.Order](ctx, c, fmt.Sprintf("/orders/admin/%s/status", id),
		map[string]string{"status": string(status)})
}

// SetTrackingNumber attaches a tracking number to an order. Admin only.
func (c *Client) SetTrackingNumber(ctx context.Context, id, trackingNumber string) (types.Order, error) {
	return putJSON[types.Order](ctx, c, fmt.Sprintf("/orders/admin/%s/tracking", id),
		map[string]string{"trackingNumber": trackingNumber})
}

// RecentOrders lists orders placed within the last N days. Admin only.
func (c *Client) RecentOrders(ctx context.Context, days int) ([]types.Order, error) {
	return getJSON[[]types.Order](ctx, c, "/orders/admin/recent",
		map[string]string{"days": strconv.Itoa(days)})
}

// OrderStats fetches the order aggregates. Admin only.
func (c *Client) OrderStats(ctx context.Context) (types.OrderStats, error) {
	return getJSON[types.OrderStats](ctx, c, "/orders/admin/stats", nil)
}
