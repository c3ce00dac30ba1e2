package models

import (
	"strings"
	"time"
)

// UserRole represents the roles the marketplace backend assigns to accounts.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// Legacy spellings returned by the backend for student accounts.
const (
	legacyRoleUser    = "USER"
	legacyRoleStudent = "STUDENT"
)

// NormalizeRole maps a raw backend role onto the closed role set. Both USER and STUDENT
// mean "student"; unknown values are returned upper-cased but unchanged so that they never
// satisfy a role requirement by accident.
func NormalizeRole(raw string) UserRole {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleInstructor):
		return RoleInstructor
	case legacyRoleUser, legacyRoleStudent:
		return RoleStudent
	default:
		return UserRole(value)
	}
}

// Valid reports whether the role belongs to the closed role set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// User is the cached user record returned by the backend at login/register time.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              UserRole  `json:"role"`
	LegacyRole        string    `json:"legacyRole,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Normalize rewrites Role onto the closed set and remembers the raw spelling.
func (u *User) Normalize() {
	if u == nil {
		return
	}
	raw := string(u.Role)
	if u.LegacyRole != "" {
		raw = u.LegacyRole
	}
	u.Role = NormalizeRole(raw)
	if !strings.EqualFold(strings.TrimSpace(raw), string(u.Role)) {
		u.LegacyRole = strings.ToUpper(strings.TrimSpace(raw))
	} else {
		u.LegacyRole = ""
	}
}

// Clone returns a copy safe to hand to subscribers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
