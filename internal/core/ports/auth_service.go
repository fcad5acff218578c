package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// AccountStore is the full set of user capabilities the account service
// depends on.
type AccountStore interface {
	UserStore
	UserPasswordStore
	UserRoleStore
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}
