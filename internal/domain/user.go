package domain

import "time"

// UserRole enumerates account roles. The set is closed: adding a variant
// must update every switch over it.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Valid reports whether the role is one of the declared variants.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
