package ports

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/pkg/validation"
)

// BootstrapInput carries the credentials of the first admin account.
type BootstrapInput struct {
	Username string `json:"username" validate:"required,max=180"`
	Password string `json:"password" validate:"required,max=72"`
}

// NewBootstrapInput trims and validates the admin credentials.
func NewBootstrapInput(username, password string) (BootstrapInput, error) {
	in := BootstrapInput{Username: strings.TrimSpace(username), Password: password}
	if err := validate(in); err != nil {
		return BootstrapInput{}, err
	}
	return in, nil
}

// CreateUserInput carries the fields of a new regular user.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=180"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// NewCreateUserInput trims and validates the fields of a new regular user.
func NewCreateUserInput(username, email, password string) (CreateUserInput, error) {
	in := CreateUserInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validate(in); err != nil {
		return CreateUserInput{}, err
	}
	return in, nil
}

// UpdateUserInput carries the editable fields of a regular user. A nil
// Password leaves the stored credential untouched.
type UpdateUserInput struct {
	ID       string  `json:"id"       validate:"required"`
	Username string  `json:"username" validate:"required,max=180"`
	Email    string  `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,max=72"`
}

// NewUpdateUserInput trims and validates an edit. An empty password is
// treated as "not supplied".
func NewUpdateUserInput(id, username, email string, password *string) (UpdateUserInput, error) {
	if password != nil && *password == "" {
		password = nil
	}
	in := UpdateUserInput{
		ID:       strings.TrimSpace(id),
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validate(in); err != nil {
		return UpdateUserInput{}, err
	}
	return in, nil
}

// DeleteUserInput identifies the user to delete and the anti-forgery token
// rendered for that user.
type DeleteUserInput struct {
	ID    string
	Token string
}

func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	return nil
}

// UserService defines the guarded user lifecycle operations. Callers are
// expected to be authenticated administrators.
type UserService interface {
	Bootstrap(ctx context.Context, input BootstrapInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	IssueDeleteToken(ctx context.Context, id string) (string, error)
	// Delete reports whether the user was removed. A token that does not
	// match the target yields (false, nil).
	Delete(ctx context.Context, input DeleteUserInput) (bool, error)
}
