package user

import "time"

// Status enumerates the lifecycle states of a back-office user.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Role enumerates the access levels granted to a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// User represents an administrative account able to sign in to the
// back-office.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string `json:"-"`
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidStatus reports whether s is a known user status.
func ValidStatus(s Status) bool {
	return s == StatusActive || s == StatusDisabled
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}
