package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// RoleStore is the role persistence capability set.
type RoleStore interface {
	Create(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	FindByID(ctx context.Context, roleID string) (*domain.Role, error)
	FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error)
	GetID(ctx context.Context, role *domain.Role) (string, error)
	GetName(ctx context.Context, role *domain.Role) (string, error)
	SetName(ctx context.Context, role *domain.Role, name string) error
	GetNormalizedName(ctx context.Context, role *domain.Role) (string, error)
	SetNormalizedName(ctx context.Context, role *domain.Role, normalizedName string) error
}

// UserStore is the user persistence capability set.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error)
	GetID(ctx context.Context, user *domain.User) (string, error)
	GetUserName(ctx context.Context, user *domain.User) (string, error)
	SetUserName(ctx context.Context, user *domain.User, userName string) error
	GetNormalizedName(ctx context.Context, user *domain.User) (string, error)
	SetNormalizedName(ctx context.Context, user *domain.User, normalizedName string) error
}

// UserPasswordStore manages password hashes. SetPasswordHash only stages the
// hash on the in-memory user; callers persist it with UserStore.Update or
// UserStore.Create.
type UserPasswordStore interface {
	SetPasswordHash(ctx context.Context, user *domain.User, hash string) error
	GetPasswordHash(ctx context.Context, user *domain.User) (string, error)
	HasPassword(ctx context.Context, user *domain.User) (bool, error)
}

// UserRoleStore manages the role names embedded in user documents.
type UserRoleStore interface {
	AddToRole(ctx context.Context, user *domain.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error
	GetRoles(ctx context.Context, user *domain.User) ([]string, error)
	IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error)
	GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User, error)
}
