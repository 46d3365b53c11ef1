package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	sess, err := session.NewStore(store)
	require.NoError(t, err)
	cartStore, err := cart.NewStore(store)
	require.NoError(t, err)

	return New(Deps{
		Config:  config.DefaultConfig(),
		Client:  api.NewClient("http://127.0.0.1:1/api"),
		Session: sess,
		Cart:    cartStore,
	})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestStaleProductResponseDropped(t *testing.T) {
	m := newTestModel(t)

	_ = m.fetchProducts("")     // seq 1
	_ = m.fetchProducts("lamp") // seq 2, now current

	m, _ = apply(t, m, productsMsg{seq: 1, items: []types.Product{{ID: "old"}}})
	assert.Empty(t, m.products, "stale response must be discarded")

	m, _ = apply(t, m, productsMsg{seq: 2, items: []types.Product{{ID: "new", Name: "Lamp"}}})
	require.Len(t, m.products, 1)
	assert.Equal(t, "new", m.products[0].ID)
}

func TestStaleOrderResponseDropped(t *testing.T) {
	m := newTestModel(t)

	_ = m.fetchOrder("o1")
	_ = m.fetchOrder("o2")

	m, _ = apply(t, m, orderMsg{seq: 1, o: types.Order{ID: "o1"}})
	assert.NotEqual(t, PageOrderDetail, m.page)

	m, _ = apply(t, m, orderMsg{seq: 2, o: types.Order{ID: "o2"}})
	assert.Equal(t, PageOrderDetail, m.page)
	assert.Equal(t, "o2", m.order.ID)
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.deps.Cart.AddItem(types.Product{ID: "p1", Name: "Lamp", Price: 20, Quantity: 5}, 1))

	m.page = PageCart
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, PageLogin, m.page)
	assert.Equal(t, PageCheckout, m.returnTo)
}

func TestCheckoutEmptyCartBlocked(t *testing.T) {
	m := newTestModel(t)
	m.page = PageCart
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, PageCart, m.page)
	assert.True(t, m.statusIsErr)
}

func TestAddressValidationKeepsWizardInPlace(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.deps.Cart.AddItem(types.Product{ID: "p1", Name: "Lamp", Price: 20, Quantity: 5}, 2))
	m.startCheckout()
	require.Equal(t, PageCheckout, m.page)

	next, _ := m.advanceWizard()
	m = next.(Model)
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, "first name")
}

func fillAddress(m *Model) {
	values := map[int]string{
		fieldFirstName: "Ada", fieldLastName: "Lovelace",
		fieldAddress1: "1 Main St", fieldCity: "Springfield",
		fieldState: "IL", fieldPostal: "62701",
	}
	for i, v := range values {
		m.addressInputs[i].SetValue(v)
	}
}

func TestPlaceOrderDispatchesOnce(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.deps.Cart.AddItem(types.Product{ID: "p1", Name: "Lamp", Price: 20, Quantity: 5}, 2))
	m.startCheckout()
	fillAddress(&m)

	next, _ := m.advanceWizard()
	m = next.(Model)
	require.False(t, m.statusIsErr, m.status)

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // payment -> review
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyTab})   // focus place-order

	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd, "first enter must dispatch the submission")

	_, cmd = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "second enter while in flight must not dispatch")
}

func TestOrderPlacedClearsCartAndShowsSuccess(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.deps.Cart.AddItem(types.Product{ID: "p1", Name: "Lamp", Price: 20, Quantity: 2}, 1))
	m.startCheckout()

	placed := types.Order{ID: "o1", OrderNumber: "ORD-1", FinalAmount: 53.19}
	m, _ = apply(t, m, orderPlacedMsg{o: placed})

	assert.Equal(t, PageOrderSuccess, m.page)
	assert.Equal(t, "ORD-1", m.placedOrder.OrderNumber)
	assert.Zero(t, m.deps.Cart.Count())
	assert.Nil(t, m.wizard)
}

func TestOrderFailureKeepsWizardForRetry(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.deps.Cart.AddItem(types.Product{ID: "p1", Name: "Lamp", Price: 20, Quantity: 2}, 1))
	m.startCheckout()
	require.NotNil(t, m.wizard)

	m, _ = apply(t, m, orderPlacedMsg{err: errors.New("boom")})

	assert.Equal(t, PageCheckout, m.page)
	assert.True(t, m.statusIsErr)
	assert.NotNil(t, m.wizard)
	assert.Equal(t, 1, m.deps.Cart.Count(), "failed order must not clear the cart")
}

func TestSessionExpiryRedirectsToLogin(t *testing.T) {
	m := newTestModel(t)
	m.page = PageOrders

	m, cmd := apply(t, m, sessionChangedMsg{})

	assert.Equal(t, PageLogin, m.page)
	assert.Equal(t, PageOrders, m.returnTo)
	assert.True(t, m.statusIsErr)
	assert.NotNil(t, cmd, "listener must re-arm")
}

func TestSessionChangeOnPublicPageStaysPut(t *testing.T) {
	m := newTestModel(t)
	m.page = PageProducts

	m, _ = apply(t, m, sessionChangedMsg{})
	assert.Equal(t, PageProducts, m.page)
}

func TestOrderFilterMatchesNumberAndProduct(t *testing.T) {
	m := newTestModel(t)
	m.orders = types.OrderPage{Content: []types.Order{
		{OrderNumber: "ORD-100", Items: []types.OrderItem{{ProductName: "Desk Lamp"}}},
		{OrderNumber: "ORD-200", Items: []types.OrderItem{{ProductName: "Mouse"}}},
	}}

	m.orderFilter = "lamp"
	require.Len(t, m.filteredOrders(), 1)
	assert.Equal(t, "ORD-100", m.filteredOrders()[0].OrderNumber)

	m.orderFilter = "ord-200"
	require.Len(t, m.filteredOrders(), 1)

	m.orderFilter = ""
	assert.Len(t, m.filteredOrders(), 2)
}

func TestNextStatusFollowsFulfilmentPath(t *testing.T) {
	next, ok := nextStatus(types.StatusPending)
	require.True(t, ok)
	assert.Equal(t, types.StatusConfirmed, next)

	next, ok = nextStatus(types.StatusOutForDelivery)
	require.True(t, ok)
	assert.Equal(t, types.StatusDelivered, next)

	_, ok = nextStatus(types.StatusDelivered)
	assert.False(t, ok)

	_, ok = nextStatus(types.StatusCancelled)
	assert.False(t, ok)
}

func TestAdminShortcutGatedByRole(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, keyRune('5'))

	assert.NotEqual(t, PageAdmin, m.page)
	assert.True(t, m.statusIsErr)
}

func TestOutOfStockCannotBeAdded(t *testing.T) {
	m := newTestModel(t)
	m.products = []types.Product{{ID: "p1", Name: "Lamp", Quantity: 0}}
	m.page = PageProducts

	m, _ = apply(t, m, keyRune('a'))

	assert.True(t, m.statusIsErr)
	assert.Zero(t, m.deps.Cart.Count())
}

func TestTrackingNotFoundMessage(t *testing.T) {
	m := newTestModel(t)
	_ = m.fetchTracking("TRK-1")

	m, _ = apply(t, m, trackMsg{seq: 1, err: &api.Error{StatusCode: 404}})

	assert.Nil(t, m.trackedOrder)
	assert.Equal(t, "No order found for that tracking number", m.status)
}

func TestFocusFieldWraps(t *testing.T) {
	inputs := newLoginInputs()
	focus := 0
	focus = focusField(inputs, focus, -1)
	assert.Equal(t, len(inputs)-1, focus)
	focus = focusField(inputs, focus, 1)
	assert.Equal(t, 0, focus)
}

func TestPriceSortCycles(t *testing.T) {
	m := newTestModel(t)
	m.page = PageProducts
	m.priceSort = 1
	m, _ = apply(t, m, productsMsg{seq: m.seq[resProducts], items: []types.Product{
		{ID: "a", Price: 30}, {ID: "b", Price: 10}, {ID: "c", Price: 20},
	}})

	require.Len(t, m.products, 3)
	assert.Equal(t, "b", m.products[0].ID)

	m, _ = apply(t, m, keyRune('p')) // ascending -> descending
	assert.Equal(t, "a", m.products[0].ID)
}

func TestViewRendersWithoutSession(t *testing.T) {
	m := newTestModel(t)
	m.width = 100
	m.height = 40
	out := m.View()
	assert.Contains(t, out, "STOREFRONT")
	assert.Contains(t, out, "not signed in")
	assert.Contains(t, out, "Cart 0")
}
