package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/store"
)

const testSecret = "secret"

func newAuthService(t *testing.T, throttle LoginThrottle) (*AuthService, *store.UserStore) {
	t.Helper()
	users, _ := newStores(t)
	svc := NewAuthService(users, throttle, TokenConfig{Secret: testSecret, Issuer: "identity-store", TTL: time.Hour}, testLog)
	return svc, users
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users := newAuthService(t, nil)

	token, user, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user.NormalizedUserName != "ALICE@EXAMPLE.COM" {
		t.Fatalf("unexpected normalized name: %s", user.NormalizedUserName)
	}
	if !user.HasRole(domain.DefaultRole) {
		t.Fatalf("expected default role, got %v", user.Roles)
	}

	stored, err := users.FindByName(context.Background(), "ALICE@EXAMPLE.COM")
	if err != nil || stored == nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	if _, _, err := svc.Register(context.Background(), "", "pass123"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty email, got %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "a@example.com", "123"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	if _, _, err := svc.Register(context.Background(), "alice@example.com", "pass123"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Names differing only in case collide on the normalized name.
	_, _, err := svc.Register(context.Background(), "ALICE@example.com", "pass123")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	_, registered, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "Alice@Example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("logged in as %s, want %s", user.ID, registered.ID)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("invalid token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["nameid"] != registered.ID {
		t.Fatalf("unexpected nameid claim: %v", claims["nameid"])
	}
	if claims["sub"] != "alice@example.com" {
		t.Fatalf("unexpected sub claim: %v", claims["sub"])
	}
	roles, ok := claims["roles"].([]any)
	if !ok || len(roles) != 1 || roles[0] != domain.DefaultRole {
		t.Fatalf("unexpected roles claim: %v", claims["roles"])
	}
	if claims["iss"] != "identity-store" {
		t.Fatalf("unexpected iss claim: %v", claims["iss"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	if _, _, err := svc.Register(context.Background(), "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	var compared [][]byte
	orig := compareHashAndPassword
	compareHashAndPassword = func(hash, password []byte) error {
		compared = append(compared, hash)
		return orig(hash, password)
	}
	t.Cleanup(func() { compareHashAndPassword = orig })

	svc, _ := newAuthService(t, nil)
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(compared) != 1 {
		t.Fatalf("expected one bcrypt comparison for an unknown account, got %d", len(compared))
	}
	if cost, err := bcrypt.Cost(compared[0]); err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("expected a bcrypt hash at default cost, got cost %d: %v", cost, err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	throttle := newStubThrottle(2)
	svc, _ := newAuthService(t, throttle)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "pass123"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	_ = throttle.Reset(ctx, "ALICE@EXAMPLE.COM")
	if _, _, err := svc.Login(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Login after reset: %v", err)
	}
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	throttle := newStubThrottle(3)
	svc, _ := newAuthService(t, throttle)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, _ = svc.Login(ctx, "alice@example.com", "wrong")
	if _, _, err := svc.Login(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if n := throttle.failures["ALICE@EXAMPLE.COM"]; n != 0 {
		t.Fatalf("expected failures reset, got %d", n)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	_, user, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", got.Email)
	}

	missing := domain.NewUser("x", "X").ID
	if _, err := svc.Profile(context.Background(), missing); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()
	_, user, err := svc.Register(ctx, "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "pass123", "new"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "pass123", "newpass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "newpass"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
}
