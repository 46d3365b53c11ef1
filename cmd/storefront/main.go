// Command storefront is the terminal client for the product and order
// backend. Run without arguments for the interactive UI; subcommands
// cover the same operations for scripting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/cmd/storefront/app"
	"storefront/cmd/storefront/ui"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/types"
)

var (
	// Global flags
	verbose bool
	baseURL string

	logger *zap.Logger

	// Wired on PersistentPreRunE, shared by every subcommand.
	env struct {
		cfg     config.Config
		store   *storage.Store
		session *session.Store
		cart    *cart.Store
		client  *api.Client
	}
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Terminal storefront for the product and order backend",
	Long: `storefront is a terminal client for the e-commerce backend: browse
the catalog, keep a cart on this machine, check out, and follow your
orders through fulfilment. Admins get order management on top.

Run without arguments to start the interactive UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return wireEnv()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// wireEnv loads config and connects the stores and the API client.
func wireEnv() error {
	dir, err := storage.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve storefront home: %w", err)
	}
	store, err := storage.Open(dir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.DefaultPath(dir))
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	if err := logging.Initialize(dir, cfg.Debug); err != nil {
		return err
	}

	sess, err := session.NewStore(store)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithTokenProvider(sess.Token),
		api.WithUnauthorizedHook(sess.Logout),
	)
	cartStore, err := cart.NewStore(store)
	if err != nil {
		return err
	}

	env.cfg = cfg
	env.store = store
	env.session = sess
	env.cart = cartStore
	env.client = client
	return nil
}

func runInteractive() error {
	ctx, cancel := context.WithTimeout(context.Background(), env.cfg.RequestTimeout)
	env.session.Validate(ctx, env.client)
	cancel()

	watcher, err := env.store.Watch()
	if err != nil {
		logging.For(logging.CategoryBoot).Warn("storage watcher unavailable", zap.Error(err))
	}

	deps := app.Deps{
		Config:  env.cfg,
		Client:  env.client,
		Session: env.session,
		Cart:    env.cart,
	}
	if watcher != nil {
		deps.StorageEvents = watcher.Events
		defer watcher.Close()
	}

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := env.session.Login(cmd.Context(), env.client, api.Credentials{
			Username: loginUsername,
			Password: loginPassword,
		})
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		fmt.Printf("Signed in as %s (%s)\n", res.User.DisplayName(), res.User.Role)
		return nil
	},
}

var (
	regEmail string
	regFirst string
	regLast  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := env.session.Register(cmd.Context(), env.client, api.RegisterRequest{
			Username:  loginUsername,
			Email:     regEmail,
			Password:  loginPassword,
			FirstName: regFirst,
			LastName:  regLast,
		})
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		fmt.Printf("Account created. Signed in as %s\n", res.User.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if env.session.IsAuthenticated() {
			_ = env.client.SignOut(cmd.Context())
		}
		env.session.Logout()
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, ok := env.session.CurrentUser()
		if !ok {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", u.DisplayName(), u.Email, u.Role)
		return nil
	},
}

var (
	productSearch   string
	productCategory string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			items []types.Product
			err   error
		)
		switch {
		case productSearch != "":
			items, err = env.client.SearchProducts(cmd.Context(), productSearch)
		case productCategory != "":
			items, err = env.client.ProductsByCategory(cmd.Context(), productCategory)
		default:
			items, err = env.client.ListProducts(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load products"))
		}
		tbl := ui.NewTable("", "ID", "Name", "Category", "Price", "Stock")
		tbl.Empty = "No products found."
		for _, p := range items {
			tbl.AddRow(p.ID, p.Name, p.Category, fmt.Sprintf("$%.2f", p.Price), fmt.Sprintf("%d", p.Quantity))
		}
		fmt.Print(tbl.View(ui.DefaultStyles()))
		return nil
	},
}

var ordersPage int

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := api.DefaultOrderQuery(ordersPage)
		q.Size = env.cfg.PageSize
		page, err := env.client.MyOrders(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load orders"))
		}
		tbl := ui.NewTable("", "Order #", "Date", "Status", "Total")
		tbl.Empty = "No orders yet."
		for _, o := range page.Content {
			tbl.AddRow(o.OrderNumber, o.OrderDate.Display(), o.Status.Label(), fmt.Sprintf("$%.2f", o.FinalAmount))
		}
		fmt.Print(tbl.View(ui.DefaultStyles()))
		if page.TotalPages > 1 {
			fmt.Printf("Page %d of %d (%d orders)\n", page.Number+1, page.TotalPages, page.TotalElements)
		}
		return nil
	},
}

var cancelOrder bool

var orderCmd = &cobra.Command{
	Use:   "order [id-or-number]",
	Short: "Show one order, by id or order number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		o, err := env.client.GetOrder(cmd.Context(), ref)
		if err != nil && api.IsNotFound(err) {
			o, err = env.client.GetOrderByNumber(cmd.Context(), ref)
		}
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load order"))
		}
		if cancelOrder {
			if !o.Status.CanCancel() {
				return fmt.Errorf("orders in status %s cannot be cancelled", o.Status.Label())
			}
			o, err = env.client.CancelOrder(cmd.Context(), o.ID)
			if err != nil {
				return fmt.Errorf("%s", api.Message(err, "order could not be cancelled"))
			}
			fmt.Println("Order cancelled")
		}
		printOrder(o)
		return nil
	},
}

var trackCmd = &cobra.Command{
	Use:   "track [tracking-number]",
	Short: "Look an order up by tracking number (no sign-in needed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := env.client.TrackOrder(cmd.Context(), args[0])
		if err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("no order found for tracking number %s", args[0])
			}
			return fmt.Errorf("%s", api.Message(err, "tracking lookup failed"))
		}
		printOrder(o)
		return nil
	},
}

func printOrder(o types.Order) {
	fmt.Printf("Order %s  [%s]\n", o.OrderNumber, o.Status.Label())
	if step, ok := o.Status.ProgressStep(); ok {
		fmt.Printf("Progress: %s (%d/%d)\n", types.ProgressSteps[step], step+1, len(types.ProgressSteps))
	}
	tbl := ui.NewTable("", "Item", "Unit Price", "Qty", "Subtotal")
	for _, item := range o.Items {
		tbl.AddRow(item.ProductName, fmt.Sprintf("$%.2f", item.Price),
			fmt.Sprintf("%d", item.Quantity), fmt.Sprintf("$%.2f", item.Subtotal))
	}
	fmt.Print(tbl.View(ui.DefaultStyles()))
	fmt.Printf("Subtotal $%.2f  Tax $%.2f  Shipping $%.2f  Total $%.2f\n",
		o.TotalAmount, o.TaxAmount, o.ShippingCost, o.FinalAmount)
	for _, line := range o.ShippingAddress.Lines() {
		fmt.Println(line)
	}
	if o.TrackingNumber != "" {
		fmt.Printf("Tracking: %s\n", o.TrackingNumber)
	}
	if !o.EstimatedDeliveryDate.IsZero() && !o.Status.TerminalException() {
		fmt.Printf("Estimated delivery: %s\n", o.EstimatedDeliveryDate.Display())
	}
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the locally persisted cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		items := env.cart.Items()
		tbl := ui.NewTable("", "Product", "Unit Price", "Qty", "Line Total")
		tbl.Empty = "Your cart is empty."
		for _, li := range items {
			tbl.AddRow(li.Name, fmt.Sprintf("$%.2f", li.Price),
				fmt.Sprintf("%d", li.Quantity), fmt.Sprintf("$%.2f", li.LineTotal()))
		}
		fmt.Print(tbl.View(ui.DefaultStyles()))
		if len(items) > 0 {
			fmt.Printf("Subtotal: $%.2f\n", env.cart.Subtotal())
		}
		return nil
	},
}

var cartQty int

var cartAddCmd = &cobra.Command{
	Use:   "add [product-id]",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := env.client.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load product"))
		}
		if !p.InStock() {
			return fmt.Errorf("%s is out of stock", p.Name)
		}
		if err := env.cart.AddItem(p, cartQty); err != nil {
			return err
		}
		fmt.Printf("Added %s to cart (%d items total)\n", p.Name, env.cart.Count())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [product-id]",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.cart.RemoveItem(args[0])
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.cart.Clear()
	},
}

var checkoutQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Show the checkout totals for the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		items := env.cart.Items()
		if len(items) == 0 {
			return checkout.ErrEmptyCart
		}
		q := pricing.Compute(items)
		fmt.Printf("Subtotal $%.2f\nTax (8%%) $%.2f\nShipping $%.2f\nTotal    $%.2f\n",
			q.Subtotal, q.Tax, q.Shipping, q.Total)
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin order management",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show order aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := env.client.OrderStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load stats"))
		}
		fmt.Printf("Total orders: %d\nTotal users:  unavailable\n", stats.TotalOrders)
		return nil
	},
}

var (
	adminStatus string
	adminRecent int
)

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders across all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			orders []types.Order
			err    error
		)
		switch {
		case adminStatus != "":
			orders, err = env.client.OrdersByStatus(cmd.Context(), types.OrderStatus(strings.ToUpper(adminStatus)))
		case adminRecent > 0:
			orders, err = env.client.RecentOrders(cmd.Context(), adminRecent)
		default:
			orders, err = env.client.AllOrders(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "could not load orders"))
		}
		tbl := ui.NewTable("", "ID", "Order #", "Date", "Status", "Total")
		tbl.Empty = "No orders."
		for _, o := range orders {
			tbl.AddRow(o.ID, o.OrderNumber, o.OrderDate.Display(), o.Status.Label(), fmt.Sprintf("$%.2f", o.FinalAmount))
		}
		fmt.Print(tbl.View(ui.DefaultStyles()))
		return nil
	},
}

var adminSetStatusCmd = &cobra.Command{
	Use:   "set-status [order-id] [status]",
	Short: "Transition an order's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := env.client.UpdateOrderStatus(cmd.Context(), args[0], types.OrderStatus(strings.ToUpper(args[1])))
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "update failed"))
		}
		fmt.Printf("Order %s is now %s\n", o.OrderNumber, o.Status.Label())
		return nil
	},
}

var newProduct types.Product

var adminAddProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Add a catalog entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := env.client.CreateProduct(cmd.Context(), newProduct)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "product could not be created"))
		}
		fmt.Printf("Created product %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var adminUpdateProductCmd = &cobra.Command{
	Use:   "update-product [product-id]",
	Short: "Replace a catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := env.client.UpdateProduct(cmd.Context(), args[0], newProduct)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "product could not be updated"))
		}
		fmt.Printf("Updated product %s\n", p.Name)
		return nil
	},
}

var adminDeleteProductCmd = &cobra.Command{
	Use:   "delete-product [product-id]",
	Short: "Remove a catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.client.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("%s", api.Message(err, "product could not be deleted"))
		}
		fmt.Println("Product deleted")
		return nil
	},
}

var adminImportProductsCmd = &cobra.Command{
	Use:   "import-products [file.json]",
	Short: "Bulk-create catalog entries from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var products []types.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		created, err := env.client.CreateProductsBulk(cmd.Context(), products)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "bulk create failed"))
		}
		fmt.Printf("Created %d products\n", len(created))
		return nil
	},
}

var adminSetTrackingCmd = &cobra.Command{
	Use:   "set-tracking [order-id] [tracking-number]",
	Short: "Attach a tracking number to an order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := env.client.SetTrackingNumber(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "update failed"))
		}
		fmt.Printf("Order %s tracking set to %s\n", o.OrderNumber, o.TrackingNumber)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "api-url", "", "backend base URL (overrides config)")

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	registerCmd.Flags().StringVarP(&regEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&regFirst, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&regLast, "last-name", "", "last name")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("email")

	productsCmd.Flags().StringVar(&productSearch, "search", "", "name search")
	productsCmd.Flags().StringVar(&productCategory, "category", "", "filter by category")

	ordersCmd.Flags().IntVar(&ordersPage, "page", 0, "page number, starting at 0")

	orderCmd.Flags().BoolVar(&cancelOrder, "cancel", false, "request cancellation")

	adminOrdersCmd.Flags().StringVar(&adminStatus, "status", "", "filter by status")
	adminOrdersCmd.Flags().IntVar(&adminRecent, "recent", 0, "orders from the last N days")

	cartAddCmd.Flags().IntVarP(&cartQty, "quantity", "q", 1, "quantity to add")

	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	for _, c := range []*cobra.Command{adminAddProductCmd, adminUpdateProductCmd} {
		c.Flags().StringVar(&newProduct.Name, "name", "", "product name")
		c.Flags().StringVar(&newProduct.Description, "description", "", "product description")
		c.Flags().StringVar(&newProduct.SKU, "sku", "", "product SKU")
		c.Flags().StringVar(&newProduct.Category, "category", "", "product category")
		c.Flags().Float64Var(&newProduct.Price, "price", 0, "unit price")
		c.Flags().IntVar(&newProduct.Quantity, "quantity", 0, "stock quantity")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("price")
	}

	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminOrdersCmd)
	adminCmd.AddCommand(adminSetStatusCmd)
	adminCmd.AddCommand(adminSetTrackingCmd)
	adminCmd.AddCommand(adminAddProductCmd)
	adminCmd.AddCommand(adminUpdateProductCmd)
	adminCmd.AddCommand(adminDeleteProductCmd)
	adminCmd.AddCommand(adminImportProductsCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutQuoteCmd)
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
