package types

// Role gates access to the admin views.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the authenticated account record returned by the auth endpoints
// and persisted alongside the bearer token.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Enabled   bool   `json:"enabled"`
	CreatedAt Time   `json:"createdAt,omitzero"`
	UpdatedAt Time   `json:"updatedAt,omitzero"`
}

// DisplayName prefers the full name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return u.Username
}

// AuthResponse is the signin/signup payload: a bearer token plus the
// account it authenticates.
type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
	User
}
