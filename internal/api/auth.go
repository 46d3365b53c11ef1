package api

import (
	"context"

	"storefront/internal/types"
)

// Credentials is the signin payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SignIn exchanges credentials for a token and the authenticated account.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (types.AuthResponse, error) {
	return postJSON[types.AuthResponse](ctx, c, "/auth/signin", creds)
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, req RegisterRequest) (types.AuthResponse, error) {
	return postJSON[types.AuthResponse](ctx, c, "/auth/signup", req)
}

// Me returns the account the current token authenticates. Used once at
// startup to validate a persisted token.
func (c *Client) Me(ctx context.Context) (types.User, error) {
	return getJSON[types.User](ctx, c, "/auth/me", nil)
}

// SignOut tells the backend to invalidate the current token. Local
// session state is cleared regardless of the outcome.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := postJSON[struct{}](ctx, c, "/auth/logout", nil)
	return err
}
