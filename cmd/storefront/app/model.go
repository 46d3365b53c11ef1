// Package app is the interactive storefront TUI: product browsing, the
// cart, the checkout wizard, order history and tracking, and the admin
// dashboard, all against the REST backend.
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"storefront/cmd/storefront/ui"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/session"
	"storefront/internal/types"
)

// Page identifies which view has the screen.
type Page int

const (
	PageProducts Page = iota
	PageProductDetail
	PageCart
	PageCheckout
	PageOrderSuccess
	PageOrders
	PageOrderDetail
	PageTracking
	PageLogin
	PageRegister
	PageAdmin
	PageHelp
)

// pageTitles name the pages for the header.
var pageTitles = map[Page]string{
	PageProducts:      "Products",
	PageProductDetail: "Product",
	PageCart:          "Cart",
	PageCheckout:      "Checkout",
	PageOrderSuccess:  "Order Placed",
	PageOrders:        "My Orders",
	PageOrderDetail:   "Order",
	PageTracking:      "Track Order",
	PageLogin:         "Sign In",
	PageRegister:      "Create Account",
	PageAdmin:         "Admin Dashboard",
	PageHelp:          "Help",
}

// Deps are the wired-up stores and client the TUI runs against.
type Deps struct {
	Config  config.Config
	Client  *api.Client
	Session *session.Store
	Cart    *cart.Store

	// StorageEvents delivers keys changed on disk by another process.
	// Nil disables cross-process refresh.
	StorageEvents <-chan string
}

// Model is the bubbletea model for the whole storefront.
type Model struct {
	deps   Deps
	styles ui.Styles

	page     Page
	returnTo Page // where a successful sign-in goes back to

	width  int
	height int

	spinner spinner.Model
	loading bool

	// status is a transient one-line message under the header.
	status      string
	statusIsErr bool

	// seq holds per-resource request sequence numbers. A response whose
	// sequence no longer matches is stale and gets dropped.
	seq map[string]int

	// Products
	products      []types.Product
	productCursor int
	searchInput   textinput.Model
	searching     bool
	activeSearch  string
	priceSort     int // 0 backend order, 1 ascending, 2 descending

	// Product detail
	product    types.Product
	detailQty  int
	cartCursor int

	// Checkout
	wizard        *checkout.Wizard
	addressInputs []textinput.Model
	notesInput    textinput.Model
	formFocus     int
	payCursor     int

	// Orders
	placedOrder types.Order
	orders      types.OrderPage
	orderCursor int
	filterInput textinput.Model
	filtering   bool
	orderFilter string
	order       types.Order

	// Tracking
	trackInput   textinput.Model
	trackedOrder *types.Order

	// Auth forms
	loginInputs    []textinput.Model
	registerInputs []textinput.Model
	authFocus      int

	// Admin
	stats          types.OrderStats
	statsKnown     bool
	adminOrders    []types.Order
	adminCursor    int
	adminStatusIdx int // index into types.AllStatuses, -1 for all
	adminInput     textinput.Model
	adminEditing   bool

	// Change channels, held so the listeners can re-arm after each signal.
	cartCh    <-chan struct{}
	sessionCh <-chan struct{}
}

// New builds the model. The initial page is the product catalog.
func New(deps Deps) Model {
	styles := ui.NewStyles(ui.ThemeFor(deps.Config.Theme))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	search := textinput.New()
	search.Placeholder = "search products"
	search.CharLimit = 64

	filter := textinput.New()
	filter.Placeholder = "filter by order # or product"
	filter.CharLimit = 64

	track := textinput.New()
	track.Placeholder = "tracking number"
	track.CharLimit = 64

	adminTrack := textinput.New()
	adminTrack.Placeholder = "tracking number"
	adminTrack.CharLimit = 64

	return Model{
		deps:           deps,
		styles:         styles,
		page:           PageProducts,
		returnTo:       PageProducts,
		spinner:        sp,
		seq:            make(map[string]int),
		detailQty:      1,
		searchInput:    search,
		filterInput:    filter,
		trackInput:     track,
		loginInputs:    newLoginInputs(),
		registerInputs: newRegisterInputs(),
		adminStatusIdx: -1,
		adminInput:     adminTrack,
		cartCh:         deps.Cart.Subscribe(),
		sessionCh:      deps.Session.Subscribe(),
	}
}

// Init starts the catalog fetch and the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.fetchProducts(""),
		waitForCart(m.cartCh),
		waitForSession(m.sessionCh),
	}
	if m.deps.StorageEvents != nil {
		cmds = append(cmds, waitForStorage(m.deps.StorageEvents))
	}
	return tea.Batch(cmds...)
}

// nextSeq bumps and returns the sequence number for a resource. The
// matching response must carry the same number to be applied.
func (m *Model) nextSeq(resource string) int {
	m.seq[resource]++
	return m.seq[resource]
}

func (m *Model) stale(resource string, seq int) bool {
	return m.seq[resource] != seq
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusIsErr = true
}

func (m *Model) setInfo(msg string) {
	m.status = msg
	m.statusIsErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusIsErr = false
}

// goTo switches pages, clearing the transient status line.
func (m *Model) goTo(page Page) {
	m.page = page
	m.clearStatus()
}

// requireAuth redirects to sign-in when no session is active, remembering
// where to return. It reports whether navigation may proceed.
func (m *Model) requireAuth(target Page) bool {
	if m.deps.Session.IsAuthenticated() {
		return true
	}
	m.returnTo = target
	m.goTo(PageLogin)
	m.setInfo("Sign in to continue")
	return false
}
