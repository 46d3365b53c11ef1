package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/checkout"
	"storefront/internal/types"
)

// Review-step focus targets: the notes field, then the place-order action.
const (
	reviewFocusNotes = iota
	reviewFocusPlace
)

func (m Model) handleCheckoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.wizard == nil {
		m.goTo(PageCart)
		return m, nil
	}

	switch m.wizard.Step() {
	case checkout.StepAddress:
		return m.handleAddressKey(msg)
	case checkout.StepPayment:
		return m.handlePaymentKey(msg)
	case checkout.StepReview:
		return m.handleReviewKey(msg)
	}
	return m, nil
}

func (m Model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.formFocus = focusField(m.addressInputs, m.formFocus, 1)
		return m, nil
	case "shift+tab", "up":
		m.formFocus = focusField(m.addressInputs, m.formFocus, -1)
		return m, nil
	case "enter":
		if m.formFocus < len(m.addressInputs)-1 {
			m.formFocus = focusField(m.addressInputs, m.formFocus, 1)
			return m, nil
		}
		return m.advanceWizard()
	case "ctrl+n":
		return m.advanceWizard()
	case "esc":
		m.leaveCheckout()
		return m, nil
	}
	return m, updateInputs(m.addressInputs, msg)
}

// advanceWizard writes the form back and tries to move off the address
// step. A validation failure keeps the wizard in place with the
// aggregate message on the status line.
func (m Model) advanceWizard() (tea.Model, tea.Cmd) {
	m.wizard.Address = collectAddress(m.addressInputs)
	if err := m.wizard.Next(); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.clearStatus()
	m.payCursor = indexOfPayment(m.wizard.PaymentMethod)
	return m, nil
}

func indexOfPayment(method types.PaymentMethod) int {
	for i, pm := range types.PaymentMethods {
		if pm == method {
			return i
		}
	}
	return 0
}

func (m Model) handlePaymentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.payCursor > 0 {
			m.payCursor--
		}
	case "down", "j":
		if m.payCursor < len(types.PaymentMethods)-1 {
			m.payCursor++
		}
	case "enter":
		m.wizard.PaymentMethod = types.PaymentMethods[m.payCursor]
		_ = m.wizard.Next()
		m.formFocus = reviewFocusNotes
		m.notesInput.SetValue(m.wizard.Notes)
		m.notesInput.Focus()
		m.clearStatus()
	case "esc", "backspace":
		m.wizard.Back()
		m.formFocus = len(m.addressInputs) - 1
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.formFocus == reviewFocusNotes {
			m.formFocus = reviewFocusPlace
			m.notesInput.Blur()
		} else {
			m.formFocus = reviewFocusNotes
			m.notesInput.Focus()
		}
		return m, nil
	case "enter":
		if m.formFocus == reviewFocusNotes {
			m.formFocus = reviewFocusPlace
			m.notesInput.Blur()
			return m, nil
		}
		return m.placeOrder()
	case "esc":
		if m.wizard.Back() {
			m.notesInput.Blur()
		}
		return m, nil
	}
	if m.formFocus == reviewFocusNotes {
		var cmd tea.Cmd
		m.notesInput, cmd = m.notesInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// placeOrder closes the double-submit window on the update goroutine:
// BeginSubmit refuses while a submission is in flight or already done,
// so mashing enter dispatches exactly one request.
func (m Model) placeOrder() (tea.Model, tea.Cmd) {
	m.wizard.Notes = m.notesInput.Value()
	if !m.wizard.BeginSubmit() {
		return m, nil
	}
	m.loading = true
	m.setInfo("Placing order...")
	return m, m.submitOrder(m.wizard)
}

// leaveCheckout abandons the draft. The cart is untouched.
func (m *Model) leaveCheckout() {
	m.wizard = nil
	m.goTo(PageCart)
}
