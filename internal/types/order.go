package types

import (
	"fmt"
	"strings"
)

// OrderStatus is the server-driven lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusReturned       OrderStatus = "RETURNED"
	StatusRefunded       OrderStatus = "REFUNDED"
)

// ProgressSteps are the labels of the fixed six-step fulfilment indicator,
// in order.
var ProgressSteps = []string{
	"Order Placed",
	"Confirmed",
	"Processing",
	"Shipped",
	"Out for Delivery",
	"Delivered",
}

// Label renders the status for display ("OUT_FOR_DELIVERY" -> "OUT FOR DELIVERY").
func (s OrderStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// CanCancel reports whether the client may request cancellation. Only
// orders that have not yet shipped are cancellable.
func (s OrderStatus) CanCancel() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	}
	return false
}

// TerminalException reports whether the order left the normal fulfilment
// path. These statuses suppress the progress indicator entirely.
func (s OrderStatus) TerminalException() bool {
	switch s {
	case StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// ProgressStep maps a status to its index on the six-step indicator.
// The second return is false for terminal-exception statuses, which have
// no position on the indicator.
func (s OrderStatus) ProgressStep() (int, bool) {
	switch s {
	case StatusPending:
		return 0, true
	case StatusConfirmed:
		return 1, true
	case StatusProcessing:
		return 2, true
	case StatusShipped:
		return 3, true
	case StatusOutForDelivery:
		return 4, true
	case StatusDelivered:
		return 5, true
	}
	return 0, false
}

// AllStatuses lists every order status the backend can report, in
// lifecycle order. Used by the admin status filter and update views.
var AllStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
	StatusOutForDelivery, StatusDelivered, StatusCancelled,
	StatusReturned, StatusRefunded,
}

// PaymentMethod is the buyer-selected payment option. Payment is a label
// only; no processing happens client-side.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentPayPal         PaymentMethod = "PAYPAL"
	PaymentApplePay       PaymentMethod = "APPLE_PAY"
	PaymentGooglePay      PaymentMethod = "GOOGLE_PAY"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// PaymentMethods lists the selectable options in display order. The first
// entry is the checkout default.
var PaymentMethods = []PaymentMethod{
	PaymentCreditCard, PaymentDebitCard, PaymentPayPal,
	PaymentApplePay, PaymentGooglePay, PaymentCashOnDelivery,
}

var paymentLabels = map[PaymentMethod]string{
	PaymentCreditCard:     "Credit Card",
	PaymentDebitCard:      "Debit Card",
	PaymentPayPal:         "PayPal",
	PaymentApplePay:       "Apple Pay",
	PaymentGooglePay:      "Google Pay",
	PaymentCashOnDelivery: "Cash on Delivery",
}

// Label returns the human-readable name of the payment method.
func (m PaymentMethod) Label() string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return strings.ReplaceAll(string(m), "_", " ")
}

// ShippingAddress is the delivery address captured during checkout and
// snapshotted onto placed orders.
type ShippingAddress struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// requiredAddressFields pairs each mandatory field with its display label,
// in form order.
var requiredAddressFields = []struct {
	label string
	value func(ShippingAddress) string
}{
	{"first name", func(a ShippingAddress) string { return a.FirstName }},
	{"last name", func(a ShippingAddress) string { return a.LastName }},
	{"address line 1", func(a ShippingAddress) string { return a.AddressLine1 }},
	{"city", func(a ShippingAddress) string { return a.City }},
	{"state", func(a ShippingAddress) string { return a.State }},
	{"postal code", func(a ShippingAddress) string { return a.PostalCode }},
}

// Validate checks the required fields and returns one aggregate error
// naming everything that is missing.
func (a ShippingAddress) Validate() error {
	var missing []string
	for _, f := range requiredAddressFields {
		if strings.TrimSpace(f.value(a)) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required address fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Lines renders the address as display lines, skipping empty optionals.
func (a ShippingAddress) Lines() []string {
	lines := []string{a.FirstName + " " + a.LastName}
	if a.Company != "" {
		lines = append(lines, a.Company)
	}
	lines = append(lines, a.AddressLine1)
	if a.AddressLine2 != "" {
		lines = append(lines, a.AddressLine2)
	}
	lines = append(lines, fmt.Sprintf("%s, %s %s", a.City, a.State, a.PostalCode))
	if a.Country != "" {
		lines = append(lines, a.Country)
	}
	if a.PhoneNumber != "" {
		lines = append(lines, "Phone: "+a.PhoneNumber)
	}
	return lines
}

// OrderItem is a per-item product snapshot on a placed order.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	ProductSKU  string  `json:"productSku,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// PaymentInfo is the backend's record of how an order was (to be) paid.
type PaymentInfo struct {
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus string        `json:"paymentStatus,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// Order is the server-owned order record. The client reads it and may
// request a cancellation transition; everything else is backend-driven.
type Order struct {
	ID                    string          `json:"id"`
	OrderNumber           string          `json:"orderNumber"`
	Items                 []OrderItem     `json:"items"`
	Status                OrderStatus     `json:"status"`
	TotalAmount           float64         `json:"totalAmount"`
	TaxAmount             float64         `json:"taxAmount"`
	ShippingCost          float64         `json:"shippingCost"`
	FinalAmount           float64         `json:"finalAmount"`
	ShippingAddress       ShippingAddress `json:"shippingAddress"`
	PaymentInfo           *PaymentInfo    `json:"paymentInfo,omitempty"`
	TrackingNumber        string          `json:"trackingNumber,omitempty"`
	OrderDate             Time            `json:"orderDate"`
	EstimatedDeliveryDate Time            `json:"estimatedDeliveryDate,omitzero"`
	DeliveredDate         Time            `json:"deliveredDate,omitzero"`
	Notes                 string          `json:"notes,omitempty"`
}

// MatchesFilter reports whether the order matches a case-insensitive
// substring filter over its order number and item product names.
func (o Order) MatchesFilter(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.OrderNumber), term) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.ProductName), term) {
			return true
		}
	}
	return false
}

// OrderItemRequest is one line of an order submission.
type OrderItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CreateOrderRequest is the checkout submission payload.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	Notes           string             `json:"notes,omitempty"`
}

// OrderPage is one page of the paginated my-orders listing.
type OrderPage struct {
	Content       []Order `json:"content"`
	TotalPages    int     `json:"totalPages"`
	TotalElements int     `json:"totalElements"`
	Number        int     `json:"number"`
	Size          int     `json:"size"`
}

// OrderStats is the admin aggregate from /orders/admin/stats.
type OrderStats struct {
	TotalOrders int64 `json:"totalOrders"`
}
