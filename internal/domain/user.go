package domain

import (
	"strings"
	"time"
)

// UserRole enumerates the roles available in the system.
type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

// Valid reports whether the role is a known value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for anyone who can act on tickets.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name, falling back to the email.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Email
	}
	return full
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModeratorOrAdmin reports whether the user holds a staff role.
func (u *User) IsModeratorOrAdmin() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
