package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/storage"
	"storefront/internal/types"
)

// Update is the bubbletea message dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case cartChangedMsg:
		// Badge and cart view read the store on render; re-arm only.
		return m, waitForCart(m.cartCh)

	case sessionChangedMsg:
		cmd := waitForSession(m.sessionCh)
		if !m.deps.Session.IsAuthenticated() && m.authRequired(m.page) {
			m.returnTo = m.page
			m.goTo(PageLogin)
			m.setError("Your session has expired. Please sign in again.")
		}
		return m, cmd

	case storageChangedMsg:
		if msg.key == storage.KeyCart {
			_ = m.deps.Cart.Reload()
		}
		return m, waitForStorage(m.deps.StorageEvents)

	case productsMsg:
		return m.onProducts(msg)
	case productMsg:
		return m.onProduct(msg)
	case ordersMsg:
		return m.onOrders(msg)
	case orderMsg:
		return m.onOrder(msg)
	case trackMsg:
		return m.onTrack(msg)
	case authMsg:
		return m.onAuth(msg)
	case orderPlacedMsg:
		return m.onOrderPlaced(msg)
	case orderCancelledMsg:
		return m.onOrderCancelled(msg)
	case adminStatsMsg:
		m.statsKnown = msg.err == nil
		if msg.err == nil {
			m.stats = msg.stats
		}
		return m, nil
	case adminOrdersMsg:
		return m.onAdminOrders(msg)
	case adminUpdatedMsg:
		return m.onAdminUpdated(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// authRequired lists the pages that need a signed-in user.
func (m Model) authRequired(page Page) bool {
	switch page {
	case PageCheckout, PageOrderSuccess, PageOrders, PageOrderDetail, PageAdmin:
		return true
	}
	return false
}

// inputActive reports whether a text input currently owns the keyboard,
// which suppresses the single-key global shortcuts.
func (m Model) inputActive() bool {
	switch m.page {
	case PageLogin, PageRegister, PageTracking:
		return true
	case PageCheckout:
		return true
	case PageAdmin:
		return m.adminEditing
	case PageProducts:
		return m.searching
	case PageOrders:
		return m.filtering
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.inputActive() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.goTo(PageHelp)
			return m, nil
		case "1":
			m.goTo(PageProducts)
			return m, m.fetchProducts(m.activeSearch)
		case "2":
			m.goTo(PageCart)
			return m, nil
		case "3":
			if m.requireAuth(PageOrders) {
				return m.openPage(PageOrders)
			}
			return m, nil
		case "4":
			m.trackedOrder = nil
			m.trackInput.Focus()
			m.goTo(PageTracking)
			return m, nil
		case "5":
			if !m.deps.Session.IsAdmin() {
				m.setError("Admin access required")
				return m, nil
			}
			return m.openPage(PageAdmin)
		case "s":
			if m.deps.Session.IsAuthenticated() {
				return m.signOut()
			}
			m.returnTo = m.page
			m.goTo(PageLogin)
			return m, nil
		}
	}

	switch m.page {
	case PageProducts:
		return m.handleProductsKey(msg)
	case PageProductDetail:
		return m.handleDetailKey(msg)
	case PageCart:
		return m.handleCartKey(msg)
	case PageCheckout:
		return m.handleCheckoutKey(msg)
	case PageOrderSuccess:
		return m.handleSuccessKey(msg)
	case PageOrders:
		return m.handleOrdersKey(msg)
	case PageOrderDetail:
		return m.handleOrderDetailKey(msg)
	case PageTracking:
		return m.handleTrackingKey(msg)
	case PageLogin:
		return m.handleLoginKey(msg)
	case PageRegister:
		return m.handleRegisterKey(msg)
	case PageAdmin:
		return m.handleAdminKey(msg)
	case PageHelp:
		m.goTo(PageProducts)
		return m, nil
	}
	return m, nil
}

// openPage navigates and kicks off the page's fetch.
func (m Model) openPage(page Page) (tea.Model, tea.Cmd) {
	switch page {
	case PageOrders:
		m.goTo(PageOrders)
		m.loading = true
		return m, m.fetchOrders(0)
	case PageAdmin:
		m.goTo(PageAdmin)
		m.loading = true
		return m, tea.Batch(m.fetchAdminStats(), m.fetchAdminOrders(m.adminStatusIdx), m.fetchProducts(""))
	case PageCheckout:
		m.startCheckout()
		return m, nil
	case PageProducts:
		m.goTo(PageProducts)
		m.loading = true
		return m, m.fetchProducts(m.activeSearch)
	}
	m.goTo(page)
	return m, nil
}

func (m *Model) startCheckout() {
	w, err := checkout.New(m.deps.Cart.Items())
	if err != nil {
		m.setError("Your cart is empty")
		return
	}
	m.wizard = w
	m.addressInputs = newAddressInputs(w.Address)
	m.notesInput = newInput("order notes (optional)")
	m.formFocus = 0
	m.payCursor = 0
	m.goTo(PageCheckout)
}

func (m Model) signOut() (tea.Model, tea.Cmd) {
	client := m.deps.Client
	m.deps.Session.Logout()
	m.goTo(PageProducts)
	m.setInfo("Signed out")
	return m, tea.Batch(
		func() tea.Msg {
			// Best effort server-side invalidation; local state is already
			// cleared.
			_ = client.SignOut(context.Background())
			return nil
		},
		m.fetchProducts(""),
	)
}

// --- Response handlers ---

func (m Model) onProducts(msg productsMsg) (tea.Model, tea.Cmd) {
	if m.stale(resProducts, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Could not load products"))
		return m, nil
	}
	m.products = msg.items
	m.applyPriceSort()
	if m.productCursor >= len(m.products) {
		m.productCursor = 0
	}
	return m, nil
}

// applyPriceSort reorders the loaded catalog client-side. Backend order
// is restored on the next fetch when sorting is off.
func (m *Model) applyPriceSort() {
	switch m.priceSort {
	case 1:
		sort.SliceStable(m.products, func(i, j int) bool { return m.products[i].Price < m.products[j].Price })
	case 2:
		sort.SliceStable(m.products, func(i, j int) bool { return m.products[i].Price > m.products[j].Price })
	}
}

func (m Model) onProduct(msg productMsg) (tea.Model, tea.Cmd) {
	if m.stale(resProduct, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if api.IsNotFound(msg.err) {
			m.setError("Product not found")
		} else {
			m.setError(api.Message(msg.err, "Could not load product"))
		}
		return m, nil
	}
	m.product = msg.p
	m.detailQty = 1
	m.goTo(PageProductDetail)
	return m, nil
}

func (m Model) onOrders(msg ordersMsg) (tea.Model, tea.Cmd) {
	if m.stale(resOrders, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Could not load orders"))
		return m, nil
	}
	m.orders = msg.page
	if m.orderCursor >= len(m.orders.Content) {
		m.orderCursor = 0
	}
	return m, nil
}

func (m Model) onOrder(msg orderMsg) (tea.Model, tea.Cmd) {
	if m.stale(resOrder, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if api.IsNotFound(msg.err) {
			m.setError("Order not found")
		} else {
			m.setError(api.Message(msg.err, "Could not load order"))
		}
		return m, nil
	}
	m.order = msg.o
	m.goTo(PageOrderDetail)
	return m, nil
}

func (m Model) onTrack(msg trackMsg) (tea.Model, tea.Cmd) {
	if m.stale(resTracking, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.trackedOrder = nil
		if api.IsNotFound(msg.err) {
			m.setError("No order found for that tracking number")
		} else {
			m.setError(api.Message(msg.err, "Tracking lookup failed"))
		}
		return m, nil
	}
	o := msg.o
	m.trackedOrder = &o
	m.clearStatus()
	return m, nil
}

func (m Model) onAuth(msg authMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if !msg.result.Success {
		m.setError(msg.result.Error)
		return m, nil
	}
	resetInputs(m.loginInputs)
	resetInputs(m.registerInputs)
	m.authFocus = 0

	target := m.returnTo
	if target == PageAdmin && !m.deps.Session.IsAdmin() {
		target = PageProducts
	}
	model, cmd := m.openPage(target)
	next := model.(Model)
	greeting := "Welcome back, " + msg.result.User.DisplayName()
	if msg.register {
		greeting = "Welcome, " + msg.result.User.DisplayName()
	}
	if msg.result.Error != "" {
		// Signed in, but the session did not persist to disk.
		greeting += " (" + msg.result.Error + ")"
	}
	next.setInfo(greeting)
	return next, cmd
}

func (m Model) onOrderPlaced(msg orderPlacedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if m.wizard != nil {
		m.wizard.FinishSubmit(msg.err == nil)
	}
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Order could not be placed. Please try again."))
		return m, nil
	}
	m.placedOrder = msg.o
	m.wizard = nil
	_ = m.deps.Cart.Clear()
	m.goTo(PageOrderSuccess)
	return m, nil
}

func (m Model) onOrderCancelled(msg orderCancelledMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Order could not be cancelled"))
		return m, nil
	}
	m.order = msg.o
	m.setInfo("Order cancelled")
	return m, nil
}

func (m Model) onAdminOrders(msg adminOrdersMsg) (tea.Model, tea.Cmd) {
	if m.stale(resAdminOrders, msg.seq) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Could not load orders"))
		return m, nil
	}
	m.adminOrders = msg.orders
	if m.adminCursor >= len(m.adminOrders) {
		m.adminCursor = 0
	}
	return m, nil
}

func (m Model) onAdminUpdated(msg adminUpdatedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setError(api.Message(msg.err, "Update failed"))
		return m, nil
	}
	for i := range m.adminOrders {
		if m.adminOrders[i].ID == msg.o.ID {
			m.adminOrders[i] = msg.o
		}
	}
	m.setInfo(fmt.Sprintf("Order %s updated", msg.o.OrderNumber))
	return m, nil
}

// --- Per-page key handlers ---

func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			m.activeSearch = strings.TrimSpace(m.searchInput.Value())
			m.loading = true
			return m, m.fetchProducts(m.activeSearch)
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue(m.activeSearch)
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.productCursor > 0 {
			m.productCursor--
		}
	case "down", "j":
		if m.productCursor < len(m.products)-1 {
			m.productCursor++
		}
	case "/":
		m.searching = true
		m.searchInput.Focus()
	case "enter":
		if p, ok := m.selectedProduct(); ok {
			m.loading = true
			return m, m.fetchProduct(p.ID)
		}
	case "a":
		if p, ok := m.selectedProduct(); ok {
			return m.addToCart(p, 1)
		}
	case "r":
		m.loading = true
		return m, m.fetchProducts(m.activeSearch)
	case "p":
		m.priceSort = (m.priceSort + 1) % 3
		if m.priceSort == 0 {
			m.loading = true
			return m, m.fetchProducts(m.activeSearch)
		}
		m.applyPriceSort()
	case "esc":
		if m.activeSearch != "" {
			m.activeSearch = ""
			m.searchInput.SetValue("")
			m.loading = true
			return m, m.fetchProducts("")
		}
	}
	return m, nil
}

func (m Model) selectedProduct() (types.Product, bool) {
	if m.productCursor < 0 || m.productCursor >= len(m.products) {
		return types.Product{}, false
	}
	return m.products[m.productCursor], true
}

func (m Model) addToCart(p types.Product, qty int) (tea.Model, tea.Cmd) {
	if !p.InStock() {
		m.setError(fmt.Sprintf("%s is out of stock", p.Name))
		return m, nil
	}
	if err := m.deps.Cart.AddItem(p, qty); err != nil {
		m.setError("Cart could not be saved")
		return m, nil
	}
	m.setInfo(fmt.Sprintf("Added %s to cart", p.Name))
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "+", "=":
		m.detailQty++
	case "-":
		if m.detailQty > 1 {
			m.detailQty--
		}
	case "a", "enter":
		return m.addToCart(m.product, m.detailQty)
	case "esc", "backspace":
		m.goTo(PageProducts)
	}
	return m, nil
}

func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.deps.Cart.Items()
	if m.cartCursor >= len(items) {
		m.cartCursor = 0
	}
	switch msg.String() {
	case "up", "k":
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case "down", "j":
		if m.cartCursor < len(items)-1 {
			m.cartCursor++
		}
	case "+", "=":
		if m.cartCursor < len(items) {
			li := items[m.cartCursor]
			_ = m.deps.Cart.SetQuantity(li.ID, li.Quantity+1)
		}
	case "-":
		if m.cartCursor < len(items) {
			li := items[m.cartCursor]
			_ = m.deps.Cart.SetQuantity(li.ID, li.Quantity-1)
		}
	case "x", "delete":
		if m.cartCursor < len(items) {
			_ = m.deps.Cart.RemoveItem(items[m.cartCursor].ID)
		}
	case "X":
		_ = m.deps.Cart.Clear()
	case "enter", "c":
		if len(items) == 0 {
			m.setError("Your cart is empty")
			return m, nil
		}
		if m.requireAuth(PageCheckout) {
			m.startCheckout()
		}
	case "esc":
		m.goTo(PageProducts)
	}
	return m, nil
}

func (m Model) handleSuccessKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.loading = true
		return m, m.fetchOrder(m.placedOrder.ID)
	case "o":
		return m.openPage(PageOrders)
	case "p", "esc":
		return m.openPage(PageProducts)
	}
	return m, nil
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			if msg.String() == "esc" {
				m.filterInput.SetValue(m.orderFilter)
			} else {
				m.orderFilter = strings.TrimSpace(m.filterInput.Value())
			}
			m.orderCursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	visible := m.filteredOrders()
	switch msg.String() {
	case "up", "k":
		if m.orderCursor > 0 {
			m.orderCursor--
		}
	case "down", "j":
		if m.orderCursor < len(visible)-1 {
			m.orderCursor++
		}
	case "left", "h":
		if m.orders.Number > 0 {
			m.loading = true
			return m, m.fetchOrders(m.orders.Number - 1)
		}
	case "right", "l":
		if m.orders.Number < m.orders.TotalPages-1 {
			m.loading = true
			return m, m.fetchOrders(m.orders.Number + 1)
		}
	case "/":
		m.filtering = true
		m.filterInput.Focus()
	case "enter":
		if m.orderCursor < len(visible) {
			m.loading = true
			return m, m.fetchOrder(visible[m.orderCursor].ID)
		}
	case "r":
		m.loading = true
		return m, m.fetchOrders(m.orders.Number)
	case "esc":
		if m.orderFilter != "" {
			m.orderFilter = ""
			m.filterInput.SetValue("")
			m.orderCursor = 0
			return m, nil
		}
		m.goTo(PageProducts)
	}
	return m, nil
}

// filteredOrders applies the client-side filter to the loaded page.
func (m Model) filteredOrders() []types.Order {
	if m.orderFilter == "" {
		return m.orders.Content
	}
	var out []types.Order
	for _, o := range m.orders.Content {
		if o.MatchesFilter(m.orderFilter) {
			out = append(out, o)
		}
	}
	return out
}

func (m Model) handleOrderDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x":
		if m.order.Status.CanCancel() {
			m.loading = true
			return m, m.cancelOrder(m.order.ID)
		}
		m.setError(fmt.Sprintf("Orders in status %s cannot be cancelled", m.order.Status.Label()))
	case "r":
		m.loading = true
		return m, m.fetchOrder(m.order.ID)
	case "esc", "backspace":
		return m.openPage(PageOrders)
	}
	return m, nil
}

func (m Model) handleTrackingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		number := strings.TrimSpace(m.trackInput.Value())
		if number == "" {
			m.setError("Enter a tracking number")
			return m, nil
		}
		m.loading = true
		return m, m.fetchTracking(number)
	case "esc":
		m.trackInput.Blur()
		m.goTo(PageProducts)
		return m, nil
	}
	var cmd tea.Cmd
	m.trackInput, cmd = m.trackInput.Update(msg)
	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.authFocus = focusField(m.loginInputs, m.authFocus, 1)
		return m, nil
	case "shift+tab", "up":
		m.authFocus = focusField(m.loginInputs, m.authFocus, -1)
		return m, nil
	case "enter":
		if m.authFocus < len(m.loginInputs)-1 {
			m.authFocus = focusField(m.loginInputs, m.authFocus, 1)
			return m, nil
		}
		creds := m.loginRequest()
		if creds.Username == "" || creds.Password == "" {
			m.setError("Username and password are required")
			return m, nil
		}
		m.loading = true
		return m, m.doLogin(creds)
	case "ctrl+r":
		m.authFocus = 0
		m.goTo(PageRegister)
		return m, nil
	case "esc":
		m.goTo(PageProducts)
		return m, nil
	}
	return m, updateInputs(m.loginInputs, msg)
}

func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.authFocus = focusField(m.registerInputs, m.authFocus, 1)
		return m, nil
	case "shift+tab", "up":
		m.authFocus = focusField(m.registerInputs, m.authFocus, -1)
		return m, nil
	case "enter":
		if m.authFocus < len(m.registerInputs)-1 {
			m.authFocus = focusField(m.registerInputs, m.authFocus, 1)
			return m, nil
		}
		req := m.registerRequest()
		if req.Username == "" || req.Email == "" || req.Password == "" {
			m.setError("Username, email and password are required")
			return m, nil
		}
		m.loading = true
		return m, m.doRegister(req)
	case "ctrl+r", "esc":
		m.authFocus = 0
		m.goTo(PageLogin)
		return m, nil
	}
	return m, updateInputs(m.registerInputs, msg)
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adminEditing {
		switch msg.String() {
		case "enter":
			number := strings.TrimSpace(m.adminInput.Value())
			m.adminEditing = false
			m.adminInput.Blur()
			m.adminInput.SetValue("")
			if number == "" || m.adminCursor >= len(m.adminOrders) {
				return m, nil
			}
			id := m.adminOrders[m.adminCursor].ID
			client := m.deps.Client
			m.loading = true
			return m, func() tea.Msg {
				o, err := client.SetTrackingNumber(context.Background(), id, number)
				return adminUpdatedMsg{o: o, err: err}
			}
		case "esc":
			m.adminEditing = false
			m.adminInput.Blur()
			m.adminInput.SetValue("")
			return m, nil
		}
		var cmd tea.Cmd
		m.adminInput, cmd = m.adminInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.adminCursor > 0 {
			m.adminCursor--
		}
	case "down", "j":
		if m.adminCursor < len(m.adminOrders)-1 {
			m.adminCursor++
		}
	case "left", "h":
		if m.adminStatusIdx >= 0 {
			m.adminStatusIdx--
			m.loading = true
			return m, m.fetchAdminOrders(m.adminStatusIdx)
		}
	case "right", "l":
		if m.adminStatusIdx < len(types.AllStatuses)-1 {
			m.adminStatusIdx++
			m.loading = true
			return m, m.fetchAdminOrders(m.adminStatusIdx)
		}
	case "n":
		if m.adminCursor < len(m.adminOrders) {
			if cmd := m.advanceOrderStatus(m.adminOrders[m.adminCursor]); cmd != nil {
				m.loading = true
				return m, cmd
			}
			m.setError("No forward transition from this status")
		}
	case "t":
		if m.adminCursor < len(m.adminOrders) {
			m.adminEditing = true
			m.adminInput.Focus()
		}
	case "r":
		m.loading = true
		return m, tea.Batch(m.fetchAdminStats(), m.fetchAdminOrders(m.adminStatusIdx))
	case "esc":
		m.goTo(PageProducts)
	}
	return m, nil
}
