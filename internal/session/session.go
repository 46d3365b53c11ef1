// Package session owns the client's authenticated session: the current
// user and bearer token, persisted to durable storage and cleared on
// logout or on any authorization failure anywhere in the client.
package session

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/api"
	"storefront/internal/storage"
	"storefront/internal/types"
)

// Result is the structured outcome of a login or register attempt.
// Failures carry the backend's message; neither operation panics or
// returns a bare error to the UI.
type Result struct {
	Success bool
	User    types.User
	Error   string
}

// Store holds the in-memory session and keeps the persisted copy in sync.
type Store struct {
	mu      sync.RWMutex
	user    *types.User
	token   string
	backing *storage.Store

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewStore reads any persisted session from backing. The token is not yet
// validated; call Validate once a client is wired up.
func NewStore(backing *storage.Store) (*Store, error) {
	s := &Store{backing: backing}

	var token string
	if _, err := backing.Get(storage.KeyToken, &token); err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}
	var user types.User
	found, err := backing.Get(storage.KeyUser, &user)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}

	// A token without a user record (or vice versa) is a half-written
	// session; treat it as signed out.
	if token != "" && found {
		s.token = token
		s.user = &user
	}
	return s, nil
}

// Token returns the current bearer token, empty when signed out. Wired
// into the API client as its token provider.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// IsAdmin reports whether the current user holds the admin role.
func (s *Store) IsAdmin() bool {
	u, ok := s.CurrentUser()
	return ok && u.Role == types.RoleAdmin
}

// IsUser reports whether the current user holds at least the user role.
// Admins count as users.
func (s *Store) IsUser() bool {
	u, ok := s.CurrentUser()
	return ok && (u.Role == types.RoleUser || u.Role == types.RoleAdmin)
}

// Validate checks a restored token against the current-user endpoint and
// forces a logout when the backend rejects it. Called once at startup;
// a client with no persisted session skips the round trip.
func (s *Store) Validate(ctx context.Context, client *api.Client) {
	if !s.IsAuthenticated() {
		return
	}
	if _, err := client.Me(ctx); err != nil {
		s.Logout()
	}
}

// Login exchanges credentials for a session. On success both token and
// user are persisted and in-memory state updates.
func (s *Store) Login(ctx context.Context, client *api.Client, creds api.Credentials) Result {
	resp, err := client.SignIn(ctx, creds)
	if err != nil {
		return Result{Error: api.Message(err, "Login failed")}
	}
	return s.establish(resp)
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, client *api.Client, req api.RegisterRequest) Result {
	resp, err := client.SignUp(ctx, req)
	if err != nil {
		return Result{Error: api.Message(err, "Registration failed")}
	}
	return s.establish(resp)
}

func (s *Store) establish(resp types.AuthResponse) Result {
	if resp.Token == "" {
		return Result{Error: "Login failed"}
	}
	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	tokenErr := s.backing.Put(storage.KeyToken, resp.Token)
	userErr := s.backing.Put(storage.KeyUser, user)
	s.mu.Unlock()
	s.notify()

	if tokenErr != nil || userErr != nil {
		// The session is live in memory; it just won't survive a restart.
		return Result{Success: true, User: user, Error: "session could not be persisted"}
	}
	return Result{Success: true, User: user}
}

// Logout clears persisted and in-memory session state unconditionally.
// Also invoked by the API client's global 401 hook.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	_ = s.backing.Delete(storage.KeyToken)
	_ = s.backing.Delete(storage.KeyUser)
	s.mu.Unlock()
	s.notify()
}

// Subscribe returns a channel signalled on every session change (login,
// logout, forced logout).
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
