package ports

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirpyerre/useradmin/internal/core/domain"
)

func TestNewBootstrapInput(t *testing.T) {
	in, err := NewBootstrapInput("  alice ", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Username != "alice" {
		t.Errorf("expected trimmed username, got %q", in.Username)
	}

	if _, err := NewBootstrapInput("", "secret"); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("empty username: expected ErrValidationFailed, got %v", err)
	}
	if _, err := NewBootstrapInput("alice", ""); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("empty password: expected ErrValidationFailed, got %v", err)
	}
}

func TestNewCreateUserInput(t *testing.T) {
	if _, err := NewCreateUserInput("carol", "", "pw"); err != nil {
		t.Fatalf("email is optional, got %v", err)
	}

	_, err := NewCreateUserInput("carol", "not-an-email", "pw")
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "email must be a valid email") {
		t.Errorf("unexpected message: %v", err)
	}

	long := strings.Repeat("x", 73)
	if _, err := NewCreateUserInput("carol", "", long); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("password over bcrypt limit: expected ErrValidationFailed, got %v", err)
	}
}

func TestNewUpdateUserInput_EmptyPasswordMeansUnchanged(t *testing.T) {
	empty := ""
	in, err := NewUpdateUserInput("abc", "carol", "", &empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Password != nil {
		t.Errorf("expected nil password, got %q", *in.Password)
	}

	pw := "new"
	in, err = NewUpdateUserInput("abc", "carol", "", &pw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Password == nil || *in.Password != "new" {
		t.Errorf("expected password to be kept")
	}
}

func TestNewUpdateUserInput_RequiresIDAndUsername(t *testing.T) {
	if _, err := NewUpdateUserInput("", "carol", "", nil); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("missing id: expected ErrValidationFailed, got %v", err)
	}
	if _, err := NewUpdateUserInput("abc", " ", "", nil); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("blank username: expected ErrValidationFailed, got %v", err)
	}
}
