package ports

import (
	"context"

	"github.com/sirpyerre/useradmin/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Every finder returns domain.ErrUserNotFound when nothing matches, including
// when id is not a well-formed identifier for the backing store.
type UserRepository interface {
	// FindAdmin returns the admin record, if any.
	FindAdmin(ctx context.Context) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ListNonAdmins returns every user with IsAdmin == false in insertion order.
	ListNonAdmins(ctx context.Context) ([]*domain.User, error)

	// Create inserts user and returns it with its store-assigned ID. A second
	// admin fails with domain.ErrAdminExists, a taken username with
	// domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update overwrites the profile and credential fields of a non-admin user.
	// Role and admin flags are never written.
	Update(ctx context.Context, user *domain.User) error
	// Delete removes a non-admin user.
	Delete(ctx context.Context, id string) error
}
