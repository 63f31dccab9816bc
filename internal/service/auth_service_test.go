package service

import (
	"errors"
	"os"
	"testing"
)

func setupAuthTest(t *testing.T) (*AuthService, *MockUserRepository, *MockRefreshTokenRepository) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	userRepo := NewMockUserRepository()
	refreshRepo := NewMockRefreshTokenRepository()
	return NewAuthService(userRepo, refreshRepo), userRepo, refreshRepo
}

func TestRegister(t *testing.T) {
	svc, userRepo, _ := setupAuthTest(t)

	result, err := svc.Register(RegisterInput{
		Username:    "john_doe",
		Email:       "john@example.com",
		Password:    "supersecretpw",
		DisplayName: "John",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("Register() returned empty tokens")
	}
	if result.User.Username != "john_doe" {
		t.Errorf("username = %q, want john_doe", result.User.Username)
	}

	stored, err := userRepo.FindByEmail("john@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "supersecretpw" {
		t.Error("password stored in plaintext")
	}
	if !stored.NotifyMessages || !stored.NotifyFriendRequests {
		t.Error("notification preferences should default to on")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	input := RegisterInput{Username: "john_doe", Email: "john@example.com", Password: "supersecretpw"}
	if _, err := svc.Register(input); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Register(input); err == nil {
		t.Error("duplicate email registration succeeded")
	}
	if _, err := svc.Register(RegisterInput{
		Username: "john_doe", Email: "other@example.com", Password: "supersecretpw",
	}); err == nil {
		t.Error("duplicate username registration succeeded")
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	if _, err := svc.Register(RegisterInput{
		Username: "john_doe", Email: "john@example.com", Password: "supersecretpw",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(LoginInput{Email: "john@example.com", Password: "supersecretpw"}); err != nil {
		t.Errorf("Login() error = %v", err)
	}

	if _, err := svc.Login(LoginInput{Email: "john@example.com", Password: "wrongpassword"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(LoginInput{Email: "nobody@example.com", Password: "supersecretpw"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	registered, err := svc.Register(RegisterInput{
		Username: "john_doe", Email: "john@example.com", Password: "supersecretpw",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	refreshed, err := svc.Refresh(registered.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Error("refresh token not rotated")
	}

	// The presented token was revoked by the rotation.
	if _, err := svc.Refresh(registered.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("reused token error = %v, want ErrInvalidCredentials", err)
	}

	// The freshly issued one works.
	if _, err := svc.Refresh(refreshed.RefreshToken); err != nil {
		t.Errorf("Refresh() with rotated token error = %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	registered, err := svc.Register(RegisterInput{
		Username: "john_doe", Email: "john@example.com", Password: "supersecretpw",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(registered.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Refresh(registered.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("post-logout refresh error = %v, want ErrInvalidCredentials", err)
	}

	// Logging out without a token is a no-op.
	if err := svc.Logout(""); err != nil {
		t.Errorf("Logout(\"\") error = %v", err)
	}
}
