package models

import (
	"time"
)

// Role is the closed set of roles a user can hold. There is no role
// table; unknown values are rejected at the boundary.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleReadonly Role = "readonly"
)

// Scope is a named permission unit an operation requires and a role grants.
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
	ScopeAdmin Scope = "admin"
)

var roleScopes = map[Role][]Scope{
	RoleAdmin:    {ScopeRead, ScopeWrite, ScopeAdmin},
	RoleUser:     {ScopeRead, ScopeWrite},
	RoleReadonly: {ScopeRead},
}

// ParseRole validates a raw role value against the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if _, ok := roleScopes[r]; !ok {
		return "", false
	}

	return r, true
}

// Scopes returns the scope set the role grants. Unknown roles grant nothing.
func (r Role) Scopes() []Scope {
	return roleScopes[r]
}

// Authorize reports whether the role grants the required scope.
// Pure lookup, never touches storage.
func Authorize(r Role, required Scope) bool {
	for _, s := range roleScopes[r] {
		if s == required {
			return true
		}
	}

	return false
}

type User struct {
	ID                 int        `json:"user_id"` //nolint:tagliatelle
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	DisplayName        string     `json:"display_name,omitempty"`  //nolint:tagliatelle
	Role               Role       `json:"role"`
	VisibleTags        []string   `json:"visible_tags,omitempty"`  //nolint:tagliatelle
	HiddenTags         []string   `json:"hidden_tags,omitempty"`   //nolint:tagliatelle
	IsFirstLogin       bool       `json:"is_first_login"`          //nolint:tagliatelle
	MustChangePassword bool       `json:"must_change_password"`    //nolint:tagliatelle
	CreatedAt          time.Time  `json:"created_at"`              //nolint:tagliatelle
	UpdatedAt          time.Time  `json:"updated_at"`              //nolint:tagliatelle
	LastLogin          *time.Time `json:"last_login,omitempty"`    //nolint:tagliatelle
}

// UserPrefs is the per-user preferences row that accompanies every
// user record. Created with the user, removed before the user.
type UserPrefs struct {
	UserID    int       `json:"user_id"` //nolint:tagliatelle
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
	UpdatedAt time.Time `json:"updated_at"` //nolint:tagliatelle
}

const DefaultTheme = "dark"

// Principal is the authenticated actor attached to a request.
type Principal struct {
	UserID   int    `json:"user_id"` //nolint:tagliatelle
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// RoleDescriptor is static configuration exposed for UI population.
type RoleDescriptor struct {
	ID          Role    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Scopes      []Scope `json:"scopes"`
}

// RoleDescriptors returns the fixed, read-only role list.
func RoleDescriptors() []RoleDescriptor {
	return []RoleDescriptor{
		{
			ID:          RoleAdmin,
			Name:        "Administrator",
			Description: "Full access - can manage users, hosts, containers, and all settings",
			Scopes:      roleScopes[RoleAdmin],
		},
		{
			ID:          RoleUser,
			Name:        "Standard User",
			Description: "Can manage containers and hosts but cannot manage users",
			Scopes:      roleScopes[RoleUser],
		},
		{
			ID:          RoleReadonly,
			Name:        "Read Only",
			Description: "View-only access - cannot make any modifications",
			Scopes:      roleScopes[RoleReadonly],
		},
	}
}
