package domain

import (
	"errors"
	"slices"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrAdminExists is returned when a second admin account would be created.
	ErrAdminExists = errors.New("an admin user already exists")
	// ErrForbidden is returned when an operation targets the protected admin
	// record or the caller lacks the required role.
	ErrForbidden          = errors.New("access forbidden")
	ErrValidationFailed   = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the only entity managed by the system. At most one User in the
// store may have IsAdmin set; that record is never edited, demoted or deleted.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsProtected reports whether the record is the admin account, judged by
// either the admin flag or the admin role tag.
func (u *User) IsProtected() bool {
	return u.IsAdmin || u.HasRole(RoleAdmin)
}

// PrimaryRole is the role placed in access tokens.
func (u *User) PrimaryRole() string {
	if u.IsProtected() {
		return RoleAdmin
	}
	return RoleUser
}
