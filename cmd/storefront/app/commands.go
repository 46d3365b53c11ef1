package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/logging"
	"storefront/internal/session"
	"storefront/internal/types"
)

// Resource names used for the stale-response sequence numbers.
const (
	resProducts    = "products"
	resProduct     = "product"
	resOrders      = "orders"
	resOrder       = "order"
	resTracking    = "tracking"
	resAdminOrders = "admin-orders"
)

type productsMsg struct {
	seq   int
	items []types.Product
	err   error
}

type productMsg struct {
	seq int
	p   types.Product
	err error
}

type ordersMsg struct {
	seq  int
	page types.OrderPage
	err  error
}

type orderMsg struct {
	seq int
	o   types.Order
	err error
}

type trackMsg struct {
	seq int
	o   types.Order
	err error
}

type authMsg struct {
	result   session.Result
	register bool
}

type orderPlacedMsg struct {
	o   types.Order
	err error
}

type orderCancelledMsg struct {
	o   types.Order
	err error
}

type adminStatsMsg struct {
	stats types.OrderStats
	err   error
}

type adminOrdersMsg struct {
	seq    int
	orders []types.Order
	err    error
}

type adminUpdatedMsg struct {
	o   types.Order
	err error
}

type cartChangedMsg struct{}

type sessionChangedMsg struct{}

type storageChangedMsg struct{ key string }

func (m *Model) fetchProducts(search string) tea.Cmd {
	seq := m.nextSeq(resProducts)
	client := m.deps.Client
	return func() tea.Msg {
		var (
			items []types.Product
			err   error
		)
		if search == "" {
			items, err = client.ListProducts(context.Background())
		} else {
			items, err = client.SearchProducts(context.Background(), search)
		}
		return productsMsg{seq: seq, items: items, err: err}
	}
}

func (m *Model) fetchProduct(id string) tea.Cmd {
	seq := m.nextSeq(resProduct)
	client := m.deps.Client
	return func() tea.Msg {
		p, err := client.GetProduct(context.Background(), id)
		return productMsg{seq: seq, p: p, err: err}
	}
}

func (m *Model) fetchOrders(page int) tea.Cmd {
	seq := m.nextSeq(resOrders)
	client := m.deps.Client
	q := api.DefaultOrderQuery(page)
	if m.deps.Config.PageSize > 0 {
		q.Size = m.deps.Config.PageSize
	}
	return func() tea.Msg {
		p, err := client.MyOrders(context.Background(), q)
		return ordersMsg{seq: seq, page: p, err: err}
	}
}

func (m *Model) fetchOrder(id string) tea.Cmd {
	seq := m.nextSeq(resOrder)
	client := m.deps.Client
	return func() tea.Msg {
		o, err := client.GetOrder(context.Background(), id)
		return orderMsg{seq: seq, o: o, err: err}
	}
}

func (m *Model) fetchTracking(trackingNumber string) tea.Cmd {
	seq := m.nextSeq(resTracking)
	client := m.deps.Client
	return func() tea.Msg {
		o, err := client.TrackOrder(context.Background(), trackingNumber)
		return trackMsg{seq: seq, o: o, err: err}
	}
}

func (m *Model) doLogin(creds api.Credentials) tea.Cmd {
	client := m.deps.Client
	sess := m.deps.Session
	return func() tea.Msg {
		res := sess.Login(context.Background(), client, creds)
		return authMsg{result: res}
	}
}

func (m *Model) doRegister(req api.RegisterRequest) tea.Cmd {
	client := m.deps.Client
	sess := m.deps.Session
	return func() tea.Msg {
		res := sess.Register(context.Background(), client, req)
		return authMsg{result: res, register: true}
	}
}

// submitOrder dispatches the checkout request. The wizard's in-flight
// flag was already set on the update goroutine via BeginSubmit.
func (m *Model) submitOrder(w *checkout.Wizard) tea.Cmd {
	client := m.deps.Client
	req := w.OrderRequest()
	return func() tea.Msg {
		o, err := client.CreateOrder(context.Background(), req)
		if err != nil {
			logging.For(logging.CategoryAPI).Warn("order submission failed")
		}
		return orderPlacedMsg{o: o, err: err}
	}
}

func (m *Model) cancelOrder(id string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		o, err := client.CancelOrder(context.Background(), id)
		return orderCancelledMsg{o: o, err: err}
	}
}

func (m *Model) fetchAdminStats() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		stats, err := client.OrderStats(context.Background())
		return adminStatsMsg{stats: stats, err: err}
	}
}

func (m *Model) fetchAdminOrders(statusIdx int) tea.Cmd {
	seq := m.nextSeq(resAdminOrders)
	client := m.deps.Client
	return func() tea.Msg {
		var (
			orders []types.Order
			err    error
		)
		if statusIdx < 0 {
			orders, err = client.AllOrders(context.Background())
		} else {
			orders, err = client.OrdersByStatus(context.Background(), types.AllStatuses[statusIdx])
		}
		return adminOrdersMsg{seq: seq, orders: orders, err: err}
	}
}

func (m *Model) advanceOrderStatus(o types.Order) tea.Cmd {
	client := m.deps.Client
	next, ok := nextStatus(o.Status)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		updated, err := client.UpdateOrderStatus(context.Background(), o.ID, next)
		return adminUpdatedMsg{o: updated, err: err}
	}
}

// nextStatus is the admin's one-key forward transition along the normal
// fulfilment path.
func nextStatus(s types.OrderStatus) (types.OrderStatus, bool) {
	step, ok := s.ProgressStep()
	if !ok || step >= 5 {
		return "", false
	}
	order := []types.OrderStatus{
		types.StatusPending, types.StatusConfirmed, types.StatusProcessing,
		types.StatusShipped, types.StatusOutForDelivery, types.StatusDelivered,
	}
	return order[step+1], true
}

// waitForCart blocks on the cart's change channel and re-arms itself
// after every signal via the update loop.
func waitForCart(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return cartChangedMsg{}
	}
}

func waitForSession(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func waitForStorage(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return storageChangedMsg{key: key}
	}
}
