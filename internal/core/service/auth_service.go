package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-store/internal/api/metrics"
	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const minPasswordLength = 6

var compareHashAndPassword = bcrypt.CompareHashAndPassword

// dummyPasswordHash is compared against when the account does not exist.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Locked(ctx context.Context, account string) (bool, error)
	RecordFailure(ctx context.Context, account string) error
	Reset(ctx context.Context, account string) error
}

// TokenConfig controls the JWTs issued on register and login.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// AuthService implements registration, login and password changes on top of
// the user store.
type AuthService struct {
	store    ports.AccountStore
	throttle LoginThrottle
	tokens   TokenConfig
	log      zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService returns an AuthService. A nil throttle disables lockout.
func NewAuthService(store ports.AccountStore, throttle LoginThrottle, tokens TokenConfig, log zerolog.Logger) *AuthService {
	if tokens.TTL <= 0 {
		tokens.TTL = 24 * time.Hour
	}
	if throttle == nil {
		throttle = noThrottle{}
	}
	return &AuthService{store: store, throttle: throttle, tokens: tokens, log: log}
}

// Register creates an account named after email with the default role and
// returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.register(ctx, email, password)
	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("account registered")
	return token, user, nil
}

func (s *AuthService) register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, domain.InvalidArgument("email")
	}
	if len(password) < minPasswordLength {
		return nil, domain.InvalidArgument("password")
	}

	normalized := NormalizeName(email)
	existing, err := s.store.FindByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(email, normalized)
	user.Email = email
	if err := s.store.SetPasswordHash(ctx, user, string(hash)); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown accounts and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	token, user, err := s.login(ctx, email, password)
	metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	account := NormalizeName(email)

	locked, err := s.throttle.Locked(ctx, account)
	if err != nil {
		s.log.Warn().Err(err).Str("account", account).Msg("throttle check failed, continuing")
	} else if locked {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.store.FindByName(ctx, account)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		// Spend the same bcrypt work as a real comparison.
		_ = compareHashAndPassword(dummyPasswordHash(), []byte(password))
	}
	if user == nil || !s.passwordMatches(ctx, user, password) {
		if ferr := s.throttle.RecordFailure(ctx, account); ferr != nil {
			s.log.Warn().Err(ferr).Str("account", account).Msg("failed to record login failure")
		}
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, account); err != nil {
		s.log.Warn().Err(err).Str("account", account).Msg("failed to reset login failures")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) passwordMatches(ctx context.Context, user *domain.User, password string) bool {
	has, err := s.store.HasPassword(ctx, user)
	if err != nil || !has {
		return false
	}
	hash, err := s.store.GetPasswordHash(ctx, user)
	if err != nil {
		return false
	}
	return compareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Profile returns the account with userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one. The
// password store only stages the hash, so the user is written explicitly.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.InvalidArgument("password")
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordMatches(ctx, user, current) {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.SetPasswordHash(ctx, user, string(hash)); err != nil {
		return err
	}
	if err := s.store.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.UserName,
		"jti":    uuid.NewString(),
		"nameid": user.ID,
		"roles":  user.Roles,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokens.TTL).Unix(),
	}
	if s.tokens.Issuer != "" {
		claims["iss"] = s.tokens.Issuer
		claims["aud"] = s.tokens.Issuer
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.tokens.Secret))
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "locked"
	default:
		return "error"
	}
}

type noThrottle struct{}

func (noThrottle) Locked(context.Context, string) (bool, error) { return false, nil }
func (noThrottle) RecordFailure(context.Context, string) error  { return nil }
func (noThrottle) Reset(context.Context, string) error          { return nil }
