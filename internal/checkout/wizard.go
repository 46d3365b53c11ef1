// Package checkout implements the three-step checkout wizard: shipping
// address, payment method, review. The wizard owns an immutable snapshot
// of the cart taken when checkout begins, so cart edits in another view
// cannot change an order mid-flight.
package checkout

import (
	"context"
	"errors"

	"storefront/internal/api"
	"storefront/internal/pricing"
	"storefront/internal/types"
)

// Step is the wizard's position. Transitions are strictly linear.
type Step int

const (
	StepAddress Step = iota
	StepPayment
	StepReview
)

// StepLabels name the steps for the progress header, in order.
var StepLabels = []string{"Shipping Address", "Payment Method", "Review Order"}

func (s Step) String() string {
	if int(s) < len(StepLabels) {
		return StepLabels[s]
	}
	return "Unknown"
}

// ErrEmptyCart rejects starting checkout with nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// ErrSubmitInFlight rejects a second PlaceOrder while one is running.
var ErrSubmitInFlight = errors.New("order submission already in flight")

// Wizard is the checkout working state. It is not persisted; abandoning
// checkout loses the draft but never the cart.
type Wizard struct {
	items []types.CartLineItem

	Address       types.ShippingAddress
	PaymentMethod types.PaymentMethod
	Notes         string

	step      Step
	inFlight  bool
	submitted bool
}

// New snapshots the cart and positions the wizard on the address step.
func New(items []types.CartLineItem) (*Wizard, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	snapshot := make([]types.CartLineItem, len(items))
	copy(snapshot, items)
	return &Wizard{
		items:         snapshot,
		PaymentMethod: types.PaymentCreditCard,
		Address:       types.ShippingAddress{Country: "United States"},
		step:          StepAddress,
	}, nil
}

// Step returns the wizard's current position.
func (w *Wizard) Step() Step {
	return w.step
}

// Items returns the cart snapshot the order will be built from.
func (w *Wizard) Items() []types.CartLineItem {
	return w.items
}

// Quote computes the totals breakdown for the snapshot.
func (w *Wizard) Quote() pricing.Quote {
	return pricing.Compute(w.items)
}

// Next advances one step. Leaving the address step requires the address
// to validate; the failure is returned as one aggregate error and the
// wizard stays put. The payment step always has a selection, so it
// advances unconditionally. Next from review is a no-op.
func (w *Wizard) Next() error {
	switch w.step {
	case StepAddress:
		if err := w.Address.Validate(); err != nil {
			return err
		}
		w.step = StepPayment
	case StepPayment:
		w.step = StepReview
	}
	return nil
}

// Back moves one step toward the address step. The boolean is false when
// already on the first step, which the caller treats as "back to cart".
func (w *Wizard) Back() bool {
	if w.step == StepAddress {
		return false
	}
	w.step--
	return true
}

// CanPlaceOrder reports whether the terminal action is available: on the
// review step, with no submission in flight and none already succeeded.
func (w *Wizard) CanPlaceOrder() bool {
	return w.step == StepReview && !w.inFlight && !w.submitted
}

// OrderRequest assembles the submission payload from the snapshot and
// the collected form state.
func (w *Wizard) OrderRequest() types.CreateOrderRequest {
	items := make([]types.OrderItemRequest, len(w.items))
	for i, li := range w.items {
		items[i] = types.OrderItemRequest{
			ProductID: li.ID,
			Quantity:  li.Quantity,
			Price:     li.Price,
		}
	}
	return types.CreateOrderRequest{
		Items:           items,
		ShippingAddress: w.Address,
		PaymentMethod:   w.PaymentMethod,
		Notes:           w.Notes,
	}
}

// BeginSubmit marks a submission as in flight. It returns false when the
// terminal action is unavailable, closing the double-submit window from
// rapid repeated activation. The TUI calls this on its update goroutine
// before dispatching the request, then FinishSubmit when the result
// arrives, so all wizard state changes stay single-threaded.
func (w *Wizard) BeginSubmit() bool {
	if !w.CanPlaceOrder() {
		return false
	}
	w.inFlight = true
	return true
}

// FinishSubmit records the outcome of a submission started with
// BeginSubmit. On failure the wizard stays on review for a retry; on
// success it is spent and cannot submit again.
func (w *Wizard) FinishSubmit(success bool) {
	w.inFlight = false
	if success {
		w.submitted = true
	}
}

// PlaceOrder submits the order synchronously, guarding against overlap
// with the same in-flight flag. Sequential callers (the one-shot CLI
// path, tests) use this instead of the BeginSubmit/FinishSubmit pair.
func (w *Wizard) PlaceOrder(ctx context.Context, client *api.Client) (types.Order, error) {
	if w.step != StepReview {
		return types.Order{}, errors.New("order can only be placed from the review step")
	}
	if w.submitted {
		return types.Order{}, errors.New("order already placed")
	}
	if w.inFlight {
		return types.Order{}, ErrSubmitInFlight
	}
	w.inFlight = true
	defer func() { w.inFlight = false }()

	order, err := client.CreateOrder(ctx, w.OrderRequest())
	if err != nil {
		return types.Order{}, err
	}
	w.submitted = true
	return order, nil
}
