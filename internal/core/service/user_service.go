package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/internal/core/ports"
)

// UserService implements the guarded user lifecycle. It holds no state of its
// own; every decision is taken against the repository at call time.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.DeleteTokens
	log    zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.DeleteTokens,
	log zerolog.Logger,
) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Bootstrap creates the sole admin account. It refuses with
// domain.ErrAdminExists whenever an admin is already stored.
func (s *UserService) Bootstrap(ctx context.Context, in ports.BootstrapInput) (*domain.User, error) {
	exists, err := s.adminExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if exists {
		s.log.Warn().Str("username", in.Username).Msg("admin bootstrap refused, admin already exists")
		return nil, domain.ErrAdminExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Roles:        []string{domain.RoleAdmin},
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The store rejects a concurrent second admin with ErrAdminExists.
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("admin created")
	return created, nil
}

// List returns every regular user in store order.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListNonAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.IsProtected() {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// Get loads a regular user for editing.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.regularUser(ctx, id, "edit")
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Create persists a new regular user. The admin flag and roles are forced,
// whatever the caller supplied elsewhere.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// Update edits a regular user. The admin record is refused with
// domain.ErrForbidden, including when the caller is that admin.
func (s *UserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.regularUser(ctx, in.ID, "edit")
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.Username = in.Username
	user.Email = in.Email
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info().
		Str("user_id", user.ID).
		Bool("password_changed", in.Password != nil).
		Msg("user updated")
	return user, nil
}

// IssueDeleteToken mints the anti-forgery token a delete request for id must
// carry.
func (s *UserService) IssueDeleteToken(ctx context.Context, id string) (string, error) {
	user, err := s.regularUser(ctx, id, "delete")
	if err != nil {
		return "", fmt.Errorf("issue delete token: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("issue delete token: %w", err)
	}
	return token, nil
}

// Delete removes a regular user. The admin guard is evaluated before the
// token; a token that does not match the target is a silent no-op.
func (s *UserService) Delete(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
	user, err := s.regularUser(ctx, in.ID, "delete")
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	ok, err := s.tokens.Verify(ctx, in.Token, user.ID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		s.log.Warn().Str("user_id", user.ID).Msg("delete skipped, anti-forgery token mismatch")
		return false, nil
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user deleted")
	return true, nil
}

func (s *UserService) adminExists(ctx context.Context) (bool, error) {
	_, err := s.repo.FindAdmin(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// regularUser loads id and refuses the admin record for the named action.
func (s *UserService) regularUser(ctx context.Context, id, action string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsProtected() {
		s.log.Warn().Str("user_id", user.ID).Str("action", action).Msg("admin account is protected")
		return nil, fmt.Errorf("%w: cannot %s an admin account", domain.ErrForbidden, action)
	}
	return user, nil
}
