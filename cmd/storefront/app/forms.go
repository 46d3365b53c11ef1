package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/api"
	"storefront/internal/types"
)

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	return ti
}

func newLoginInputs() []textinput.Model {
	username := newInput("username")
	username.Focus()
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	return []textinput.Model{username, password}
}

func newRegisterInputs() []textinput.Model {
	username := newInput("username")
	username.Focus()
	email := newInput("email")
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	first := newInput("first name (optional)")
	last := newInput("last name (optional)")
	return []textinput.Model{username, email, password, first, last}
}

// Address form field order. Mirrors the checkout form top to bottom.
const (
	fieldFirstName = iota
	fieldLastName
	fieldCompany
	fieldAddress1
	fieldAddress2
	fieldCity
	fieldState
	fieldPostal
	fieldCountry
	fieldPhone
	addressFieldCount
)

var addressPlaceholders = [addressFieldCount]string{
	"first name", "last name", "company (optional)",
	"address line 1", "address line 2 (optional)",
	"city", "state", "postal code", "country", "phone (optional)",
}

func newAddressInputs(addr types.ShippingAddress) []textinput.Model {
	inputs := make([]textinput.Model, addressFieldCount)
	values := [addressFieldCount]string{
		addr.FirstName, addr.LastName, addr.Company,
		addr.AddressLine1, addr.AddressLine2,
		addr.City, addr.State, addr.PostalCode, addr.Country, addr.PhoneNumber,
	}
	for i := range inputs {
		inputs[i] = newInput(addressPlaceholders[i])
		inputs[i].SetValue(values[i])
	}
	inputs[0].Focus()
	return inputs
}

// collectAddress reads the form back into the wizard's address.
func collectAddress(inputs []textinput.Model) types.ShippingAddress {
	v := func(i int) string { return strings.TrimSpace(inputs[i].Value()) }
	return types.ShippingAddress{
		FirstName:    v(fieldFirstName),
		LastName:     v(fieldLastName),
		Company:      v(fieldCompany),
		AddressLine1: v(fieldAddress1),
		AddressLine2: v(fieldAddress2),
		City:         v(fieldCity),
		State:        v(fieldState),
		PostalCode:   v(fieldPostal),
		Country:      v(fieldCountry),
		PhoneNumber:  v(fieldPhone),
	}
}

func (m *Model) loginRequest() api.Credentials {
	return api.Credentials{
		Username: strings.TrimSpace(m.loginInputs[0].Value()),
		Password: m.loginInputs[1].Value(),
	}
}

func (m *Model) registerRequest() api.RegisterRequest {
	return api.RegisterRequest{
		Username:  strings.TrimSpace(m.registerInputs[0].Value()),
		Email:     strings.TrimSpace(m.registerInputs[1].Value()),
		Password:  m.registerInputs[2].Value(),
		FirstName: strings.TrimSpace(m.registerInputs[3].Value()),
		LastName:  strings.TrimSpace(m.registerInputs[4].Value()),
	}
}

// focusField moves focus within a form, wrapping at both ends.
func focusField(inputs []textinput.Model, focus, delta int) int {
	if len(inputs) == 0 {
		return 0
	}
	inputs[focus].Blur()
	focus = (focus + delta + len(inputs)) % len(inputs)
	inputs[focus].Focus()
	return focus
}

// updateInputs forwards a message to every input; only the focused one
// reacts to keys.
func updateInputs(inputs []textinput.Model, msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(inputs))
	for i := range inputs {
		inputs[i], cmds[i] = inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func resetInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Blur()
		inputs[i].SetValue("")
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
}
