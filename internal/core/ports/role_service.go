package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// MembershipOp is the kind of role membership change.
type MembershipOp string

const (
	MembershipAdd    MembershipOp = "add"
	MembershipRemove MembershipOp = "remove"
)

// MembershipChange adds a user to, or removes a user from, a role by name.
type MembershipChange struct {
	UserID   string
	RoleName string
	Op       MembershipOp
}

// RoleService covers role administration and membership management.
type RoleService interface {
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	GetRole(ctx context.Context, name string) (*domain.Role, error)
	RenameRole(ctx context.Context, roleID, name string) (*domain.Role, error)
	DeleteRole(ctx context.Context, roleID string) error
	EnsureRoles(ctx context.Context, names ...string) error

	AddUserToRole(ctx context.Context, userID, roleName string) error
	RemoveUserFromRole(ctx context.Context, userID, roleName string) error
	UsersInRole(ctx context.Context, roleName string) ([]*domain.User, error)
	MembershipName(ctx context.Context, roleName string) (string, error)
	ApplyMembership(ctx context.Context, change MembershipChange) error
}
