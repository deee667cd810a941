// Package domain contains the core business entities for Task Flow.
// These are plain Go structs shared by the store, the persistence layer
// and the outer surfaces (HTTP API, admin CLI).
package domain

// Role is the access level of a user.
type Role string

// Supported roles.
const (
	RoleAdmin          Role = "Admin"
	RoleProjectManager Role = "Project Manager"
	RoleMember         Role = "Member"
)

// Valid returns true if r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleMember:
		return true
	}
	return false
}

// User represents an account that can log in to the dashboard.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Username is the unique, case-sensitive login name.
	Username string `json:"username" validate:"required,max=255"`

	// Password holds the lowercase hex digest of the password, or a
	// legacy plaintext value that is migrated on the next successful login.
	Password string `json:"password,omitempty"`

	// Role controls what the user can see and manage.
	Role Role `json:"role" validate:"required,oneof='Admin' 'Project Manager' 'Member'"`

	// FullName is the display name.
	FullName string `json:"fullName"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Public returns a copy of the user without the password field.
func (u User) Public() User {
	u.Password = ""
	return u
}
