package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"storefront/cmd/storefront/ui"
	"storefront/internal/checkout"
	"storefront/internal/pricing"
	"storefront/internal/types"
)

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// View renders the whole screen: header, status line, the active page
// and the contextual key help.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.Info
		if m.statusIsErr {
			style = m.styles.Error
		}
		b.WriteString(m.styles.Content.Render(style.Render(m.status)))
		b.WriteString("\n")
	}

	var body string
	switch m.page {
	case PageProducts:
		body = m.viewProducts()
	case PageProductDetail:
		body = m.viewProductDetail()
	case PageCart:
		body = m.viewCart()
	case PageCheckout:
		body = m.viewCheckout()
	case PageOrderSuccess:
		body = m.viewOrderSuccess()
	case PageOrders:
		body = m.viewOrders()
	case PageOrderDetail:
		body = m.viewOrderDetail()
	case PageTracking:
		body = m.viewTracking()
	case PageLogin:
		body = m.viewLogin()
	case PageRegister:
		body = m.viewRegister()
	case PageAdmin:
		body = m.viewAdmin()
	case PageHelp:
		body = m.viewHelp()
	}
	b.WriteString(m.styles.Content.Render(body))
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewHeader() string {
	left := m.styles.Header.Render(" STOREFRONT ") + " " +
		m.styles.Title.MarginBottom(0).Render(pageTitles[m.page])

	badge := m.styles.Badge.Render(fmt.Sprintf("Cart %d", m.deps.Cart.Count()))

	var who string
	if u, ok := m.deps.Session.CurrentUser(); ok {
		who = m.styles.Muted.Render(u.DisplayName())
		if u.Role == types.RoleAdmin {
			who += " " + m.styles.Warning.Render("[admin]")
		}
	} else {
		who = m.styles.Muted.Render("not signed in")
	}

	right := badge + "  " + who
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) viewFooter() string {
	var help string
	switch m.page {
	case PageProducts:
		help = "↑/↓ select · enter details · a add to cart · / search · p price sort · r refresh"
	case PageProductDetail:
		help = "+/- quantity · enter add to cart · esc back"
	case PageCart:
		help = "↑/↓ select · +/- quantity · x remove · X clear · enter checkout"
	case PageCheckout:
		switch {
		case m.wizard == nil:
		case m.wizard.Step() == checkout.StepAddress:
			help = "tab next field · enter continue · esc back to cart"
		case m.wizard.Step() == checkout.StepPayment:
			help = "↑/↓ select · enter continue · esc back"
		default:
			help = "tab notes/place order · enter confirm · esc back"
		}
	case PageOrderSuccess:
		help = "enter view order · o my orders · p keep shopping"
	case PageOrders:
		help = "↑/↓ select · ←/→ page · enter details · / filter · r refresh"
	case PageOrderDetail:
		help = "x cancel order · r refresh · esc back"
	case PageTracking:
		help = "enter look up · esc back"
	case PageLogin:
		help = "tab next field · enter sign in · ctrl+r create account · esc back"
	case PageRegister:
		help = "tab next field · enter create account · esc back"
	case PageAdmin:
		help = "←/→ status filter · n advance status · t set tracking · r refresh"
	case PageHelp:
		help = "any key to go back"
	}
	global := "1 products · 2 cart · 3 orders · 4 tracking"
	if m.deps.Session.IsAdmin() {
		global += " · 5 admin"
	}
	if m.deps.Session.IsAuthenticated() {
		global += " · s sign out"
	} else {
		global += " · s sign in"
	}
	global += " · ? help · q quit"

	lines := []string{}
	if help != "" {
		lines = append(lines, help)
	}
	if !m.inputActive() {
		lines = append(lines, global)
	}
	return m.styles.Footer.Render(strings.Join(lines, "\n"))
}

func (m Model) loadingLine() string {
	if !m.loading {
		return ""
	}
	return m.spinner.View() + m.styles.Muted.Render(" loading...") + "\n"
}

// --- Pages ---

func (m Model) viewProducts() string {
	var b strings.Builder
	if m.searching || m.activeSearch != "" {
		b.WriteString(m.styles.Prompt.Render("Search: ") + m.searchInput.View() + "\n\n")
	}
	b.WriteString(m.loadingLine())

	tbl := ui.NewTable("", "Name", "Category", "Price", "Stock")
	tbl.Empty = "No products found."
	tbl.Selected = m.productCursor
	for _, p := range m.products {
		stock := fmt.Sprintf("%d", p.Quantity)
		if !p.InStock() {
			stock = "out of stock"
		} else if p.LowStock() {
			stock = fmt.Sprintf("%d (low)", p.Quantity)
		}
		tbl.AddRow(p.Name, p.Category, money(p.Price), stock)
	}
	b.WriteString(tbl.View(m.styles))
	return b.String()
}

func (m Model) viewProductDetail() string {
	p := m.product
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(m.styles.Body.Render(p.Description) + "\n\n")
	}
	if p.SKU != "" {
		b.WriteString(m.styles.Muted.Render("SKU: "+p.SKU) + "\n")
	}
	if p.Category != "" {
		b.WriteString(m.styles.Muted.Render("Category: "+p.Category) + "\n")
	}
	b.WriteString(m.styles.Price.Render(money(p.Price)) + "\n\n")

	switch {
	case !p.InStock():
		b.WriteString(m.styles.Error.Render("Out of stock") + "\n")
	case p.LowStock():
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Only %d left", p.Quantity)) + "\n")
	default:
		b.WriteString(m.styles.Success.Render("In stock") + "\n")
	}
	b.WriteString("\n" + m.styles.Body.Render(fmt.Sprintf("Quantity: %d", m.detailQty)))
	return b.String()
}

func (m Model) viewCart() string {
	items := m.deps.Cart.Items()
	var b strings.Builder

	tbl := ui.NewTable("", "Item", "Unit Price", "Qty", "Line Total")
	tbl.Empty = "Your cart is empty. Press 1 to browse products."
	tbl.Selected = m.cartCursor
	for _, li := range items {
		tbl.AddRow(li.Name, money(li.Price), fmt.Sprintf("%d", li.Quantity), money(li.LineTotal()))
	}
	b.WriteString(tbl.View(m.styles))

	if len(items) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderQuote(pricing.Compute(items)))
	}
	return b.String()
}

func (m Model) renderQuote(q pricing.Quote) string {
	var b strings.Builder
	b.WriteString(m.styles.Muted.Render("Subtotal  ") + m.styles.Body.Render(money(q.Subtotal)) + "\n")
	b.WriteString(m.styles.Muted.Render("Tax (8%)  ") + m.styles.Body.Render(money(q.Tax)) + "\n")
	shipping := money(q.Shipping)
	if q.Shipping == 0 {
		shipping = "FREE"
	}
	b.WriteString(m.styles.Muted.Render("Shipping  ") + m.styles.Body.Render(shipping) + "\n")
	b.WriteString(m.styles.Bold.Render("Total     ") + m.styles.Price.Render(money(q.Total)))
	return b.String()
}

func (m Model) viewCheckout() string {
	if m.wizard == nil {
		return m.styles.Muted.Render("No checkout in progress.")
	}
	var b strings.Builder
	b.WriteString(m.renderSteps() + "\n\n")

	switch m.wizard.Step() {
	case checkout.StepAddress:
		for i, in := range m.addressInputs {
			marker := "  "
			if i == m.formFocus {
				marker = m.styles.Prompt.Render("> ")
			}
			b.WriteString(marker + in.View() + "\n")
		}
	case checkout.StepPayment:
		for i, pm := range types.PaymentMethods {
			marker := "  "
			label := m.styles.Body.Render(pm.Label())
			if i == m.payCursor {
				marker = m.styles.Prompt.Render("> ")
				label = m.styles.Bold.Render(pm.Label())
			}
			b.WriteString(marker + label + "\n")
		}
	case checkout.StepReview:
		b.WriteString(m.renderReview())
	}
	return b.String()
}

// renderSteps is the wizard's progress header.
func (m Model) renderSteps() string {
	parts := make([]string, len(checkout.StepLabels))
	for i, label := range checkout.StepLabels {
		text := fmt.Sprintf("%d. %s", i+1, label)
		switch {
		case checkout.Step(i) < m.wizard.Step():
			parts[i] = m.styles.Success.Render(text)
		case checkout.Step(i) == m.wizard.Step():
			parts[i] = m.styles.Bold.Render(text)
		default:
			parts[i] = m.styles.Muted.Render(text)
		}
	}
	return strings.Join(parts, m.styles.Muted.Render("  >  "))
}

func (m Model) renderReview() string {
	var b strings.Builder

	tbl := ui.NewTable("Items", "Item", "Qty", "Line Total")
	for _, li := range m.wizard.Items() {
		tbl.AddRow(li.Name, fmt.Sprintf("%d", li.Quantity), money(li.LineTotal()))
	}
	b.WriteString(tbl.View(m.styles) + "\n")

	b.WriteString(m.styles.Title.Render("Ship to") + "\n")
	for _, line := range m.wizard.Address.Lines() {
		b.WriteString(m.styles.Body.Render(line) + "\n")
	}
	b.WriteString("\n" + m.styles.Title.Render("Payment") + "\n")
	b.WriteString(m.styles.Body.Render(m.wizard.PaymentMethod.Label()) + "\n\n")

	b.WriteString(m.renderQuote(m.wizard.Quote()) + "\n\n")

	b.WriteString(m.styles.Muted.Render("Notes: ") + m.notesInput.View() + "\n\n")

	place := "[ Place Order ]"
	if m.formFocus == reviewFocusPlace {
		b.WriteString(m.styles.Badge.Render(place))
	} else {
		b.WriteString(m.styles.Muted.Render(place))
	}
	b.WriteString(m.loadingSuffix())
	return b.String()
}

func (m Model) loadingSuffix() string {
	if !m.loading {
		return ""
	}
	return "  " + m.spinner.View()
}

func (m Model) viewOrderSuccess() string {
	o := m.placedOrder
	var b strings.Builder
	b.WriteString(m.styles.Success.Render("✓ Order placed") + "\n\n")
	b.WriteString(m.styles.Body.Render("Order number: ") + m.styles.Bold.Render(o.OrderNumber) + "\n")
	b.WriteString(m.styles.Body.Render("Total: ") + m.styles.Price.Render(money(o.FinalAmount)) + "\n")
	if !o.EstimatedDeliveryDate.IsZero() {
		b.WriteString(m.styles.Body.Render("Estimated delivery: "+o.EstimatedDeliveryDate.Display()) + "\n")
	}
	return b.String()
}

func (m Model) viewOrders() string {
	var b strings.Builder
	if m.filtering || m.orderFilter != "" {
		b.WriteString(m.styles.Prompt.Render("Filter: ") + m.filterInput.View() + "\n\n")
	}
	b.WriteString(m.loadingLine())

	visible := m.filteredOrders()
	tbl := ui.NewTable("", "Order #", "Date", "Status", "Total")
	tbl.Empty = "No orders yet."
	tbl.Selected = m.orderCursor
	for _, o := range visible {
		tbl.AddRow(o.OrderNumber, o.OrderDate.Display(),
			m.styles.StatusStyle(o.Status).Render(o.Status.Label()), money(o.FinalAmount))
	}
	b.WriteString(tbl.View(m.styles))

	if m.orders.TotalPages > 1 {
		b.WriteString("\n" + m.styles.Muted.Render(
			fmt.Sprintf("Page %d of %d (%d orders)", m.orders.Number+1, m.orders.TotalPages, m.orders.TotalElements)))
	}
	return b.String()
}

func (m Model) viewOrderDetail() string {
	return m.renderOrder(m.order, true)
}

// renderOrder is shared by the order detail and tracking views.
func (m Model) renderOrder(o types.Order, showCancel bool) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Order "+o.OrderNumber) + "\n")
	b.WriteString(m.styles.StatusStyle(o.Status).Render(o.Status.Label()) + "\n\n")
	b.WriteString(ui.RenderProgress(m.styles, o.Status) + "\n\n")

	tbl := ui.NewTable("Items", "Item", "Unit Price", "Qty", "Subtotal")
	for _, item := range o.Items {
		tbl.AddRow(item.ProductName, money(item.Price), fmt.Sprintf("%d", item.Quantity), money(item.Subtotal))
	}
	b.WriteString(tbl.View(m.styles) + "\n")

	b.WriteString(m.styles.Muted.Render("Subtotal  ") + money(o.TotalAmount) + "\n")
	b.WriteString(m.styles.Muted.Render("Tax       ") + money(o.TaxAmount) + "\n")
	shipping := money(o.ShippingCost)
	if o.ShippingCost == 0 {
		shipping = "FREE"
	}
	b.WriteString(m.styles.Muted.Render("Shipping  ") + shipping + "\n")
	b.WriteString(m.styles.Bold.Render("Total     ") + m.styles.Price.Render(money(o.FinalAmount)) + "\n\n")

	b.WriteString(m.styles.Title.Render("Ship to") + "\n")
	for _, line := range o.ShippingAddress.Lines() {
		b.WriteString(m.styles.Body.Render(line) + "\n")
	}
	if o.PaymentInfo != nil {
		b.WriteString("\n" + m.styles.Muted.Render("Paid with "+o.PaymentInfo.PaymentMethod.Label()) + "\n")
	}
	if o.TrackingNumber != "" {
		b.WriteString(m.styles.Muted.Render("Tracking: ") + m.styles.Bold.Render(o.TrackingNumber) + "\n")
	}
	if !o.OrderDate.IsZero() {
		b.WriteString(m.styles.Muted.Render("Placed: "+o.OrderDate.Display()) + "\n")
	}
	if !o.EstimatedDeliveryDate.IsZero() && !o.Status.TerminalException() {
		b.WriteString(m.styles.Muted.Render("Estimated delivery: "+o.EstimatedDeliveryDate.Display()) + "\n")
	}
	if !o.DeliveredDate.IsZero() {
		b.WriteString(m.styles.Success.Render("Delivered "+o.DeliveredDate.Display()) + "\n")
	}
	if o.Notes != "" {
		b.WriteString("\n" + m.styles.Muted.Render("Notes: "+o.Notes) + "\n")
	}
	if showCancel && o.Status.CanCancel() {
		b.WriteString("\n" + m.styles.Warning.Render("This order can still be cancelled (x)."))
	}
	return b.String()
}

func (m Model) viewTracking() string {
	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render("Tracking number: ") + m.trackInput.View() + "\n\n")
	b.WriteString(m.loadingLine())
	if m.trackedOrder != nil {
		b.WriteString(m.renderOrder(*m.trackedOrder, false))
	}
	return b.String()
}

func (m Model) viewLogin() string {
	var b strings.Builder
	labels := []string{"Username", "Password"}
	for i, in := range m.loginInputs {
		marker := "  "
		if i == m.authFocus {
			marker = m.styles.Prompt.Render("> ")
		}
		b.WriteString(marker + m.styles.Muted.Render(labels[i]+": ") + in.View() + "\n")
	}
	b.WriteString(m.loadingLine())
	b.WriteString("\n" + m.styles.Muted.Render("No account? Press ctrl+r to create one."))
	return b.String()
}

func (m Model) viewRegister() string {
	var b strings.Builder
	labels := []string{"Username", "Email", "Password", "First name", "Last name"}
	for i, in := range m.registerInputs {
		marker := "  "
		if i == m.authFocus {
			marker = m.styles.Prompt.Render("> ")
		}
		b.WriteString(marker + m.styles.Muted.Render(labels[i]+": ") + in.View() + "\n")
	}
	b.WriteString(m.loadingLine())
	return b.String()
}

func (m Model) viewAdmin() string {
	var b strings.Builder
	b.WriteString(m.loadingLine())

	totalOrders := "unavailable"
	if m.statsKnown {
		totalOrders = fmt.Sprintf("%d", m.stats.TotalOrders)
	}
	lowStock := 0
	for _, p := range m.products {
		if p.LowStock() {
			lowStock++
		}
	}
	b.WriteString(m.styles.Card.Render(
		m.styles.Muted.Render("Total orders: ")+m.styles.Bold.Render(totalOrders)+
			"   "+m.styles.Muted.Render("Products: ")+m.styles.Bold.Render(fmt.Sprintf("%d", len(m.products)))+
			"   "+m.styles.Muted.Render("Low stock: ")+m.styles.Bold.Render(fmt.Sprintf("%d", lowStock))+
			"   "+m.styles.Muted.Render("Total users: ")+m.styles.Bold.Render("unavailable")) + "\n\n")

	filter := "All"
	if m.adminStatusIdx >= 0 {
		filter = types.AllStatuses[m.adminStatusIdx].Label()
	}
	b.WriteString(m.styles.Muted.Render("Status filter: ") + m.styles.Bold.Render(filter) + "\n\n")

	tbl := ui.NewTable("", "Order #", "Date", "Status", "Total", "Tracking")
	tbl.Empty = "No orders in this view."
	tbl.Selected = m.adminCursor
	for _, o := range m.adminOrders {
		tracking := o.TrackingNumber
		if tracking == "" {
			tracking = "-"
		}
		tbl.AddRow(o.OrderNumber, o.OrderDate.Display(),
			m.styles.StatusStyle(o.Status).Render(o.Status.Label()), money(o.FinalAmount), tracking)
	}
	b.WriteString(tbl.View(m.styles))

	if m.adminEditing {
		b.WriteString("\n" + m.styles.Prompt.Render("Tracking number: ") + m.adminInput.View())
	}
	return b.String()
}

const helpMarkdown = `# Storefront

A terminal client for the product and order backend.

## Browsing

Browse the catalog on the products page, search it with ` + "`/`" + `,
and open a product for details. Adding a product to the cart keeps
your cart on this machine until you check out.

## Checkout

Checkout is a three step wizard: shipping address, payment method,
review. Totals include 8% tax; orders over $50 ship free, otherwise
shipping is a flat $9.99. Placing the order clears the cart.

## Orders

The orders page lists your order history, newest first. Open an order
to see its fulfilment progress; orders that have not shipped yet can
be cancelled. Anyone with a tracking number can look an order up on
the tracking page without signing in.

## Admin

Admins get a dashboard with order aggregates, a status filter, and
keys to advance an order's status or attach a tracking number.
`

func (m Model) viewHelp() string {
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	width := m.width - 4
	if width < 20 || width > 100 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
