package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestService_Register(t *testing.T) {
	svc := setupTestService(t)

	user, err := svc.Register("  alice  ", " alice@example.com ", " secret ", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected user ID to be set")
	}
	if user.Username != "alice" {
		t.Errorf("Expected trimmed username 'alice', got %q", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected trimmed email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret" {
		t.Error("Expected password to be hashed")
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := setupTestService(t)
	if _, err := svc.Register("taken", "", "pw", "pw"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		want     error
	}{
		{"blank username", "   ", "pw", "pw", ErrUsernameRequired},
		{"blank password", "bob", "  ", "  ", ErrPasswordRequired},
		{"mismatch", "bob", "pw1", "pw2", ErrPasswordMismatch},
		{"taken", "taken", "pw", "pw", ErrUserExists},
		{"too long", "bob", strings.Repeat("p", 73), strings.Repeat("p", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, "", tt.password, tt.confirm)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	count, err := svc.users.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected only the setup user to exist, got %d users", count)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupTestService(t)
	if _, err := svc.Register("alice", "", "secret", "secret"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(" alice ", "secret ")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.LastLoginAt == nil {
			t.Error("Expected LastLoginAt to be set")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "nope")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("mallory", "secret")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.Authenticate("", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestService_GetUserByID(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.GetUserByID(99)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	hasUsers, err := svc.HasUsers()
	if err != nil || hasUsers {
		t.Errorf("Expected no users, got %v (err %v)", hasUsers, err)
	}
}
