package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// RoleService administers roles and user membership. Membership is stored as
// the role's display name on each user; deleting or renaming a role does not
// rewrite existing memberships.
type RoleService struct {
	roles ports.RoleStore
	users ports.AccountStore
	log   zerolog.Logger
}

var _ ports.RoleService = (*RoleService)(nil)

func NewRoleService(roles ports.RoleStore, users ports.AccountStore, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, log: log}
}

// CreateRole stores a new role named name.
func (s *RoleService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	if name == "" {
		return nil, domain.InvalidArgument("name")
	}
	normalized := NormalizeName(name)

	existing, err := s.roles.FindByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrRoleExists
	}

	role := domain.NewRole(name, normalized)
	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrRoleExists
		}
		return nil, err
	}
	s.log.Info().Str("role", role.Name).Str("role_id", role.ID).Msg("role created")
	return role, nil
}

// GetRole looks a role up by any casing of its name.
func (s *RoleService) GetRole(ctx context.Context, name string) (*domain.Role, error) {
	if name == "" {
		return nil, domain.InvalidArgument("name")
	}
	role, err := s.roles.FindByName(ctx, NormalizeName(name))
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

func (s *RoleService) findByID(ctx context.Context, roleID string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

// RenameRole changes both the display and normalized name. Each setter
// persists on its own, so a failure on the second leaves the first applied.
func (s *RoleService) RenameRole(ctx context.Context, roleID, name string) (*domain.Role, error) {
	if name == "" {
		return nil, domain.InvalidArgument("name")
	}
	role, err := s.findByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.SetName(ctx, role, name); err != nil {
		return nil, err
	}
	if err := s.roles.SetNormalizedName(ctx, role, NormalizeName(name)); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrRoleExists
		}
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role. Users keep the role name in their lists.
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	role, err := s.findByID(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, role); err != nil {
		return err
	}
	s.log.Info().Str("role", role.Name).Str("role_id", role.ID).Msg("role deleted")
	return nil
}

// EnsureRoles creates any of names that do not exist yet.
func (s *RoleService) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		_, err := s.CreateRole(ctx, name)
		if err != nil && !errors.Is(err, domain.ErrRoleExists) {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	return nil
}

func (s *RoleService) findUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// AddUserToRole adds the user to an existing role. Adding a user who already
// holds the role is a no-op.
func (s *RoleService) AddUserToRole(ctx context.Context, userID, roleName string) error {
	role, err := s.GetRole(ctx, roleName)
	if err != nil {
		return err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	in, err := s.users.IsInRole(ctx, user, role.Name)
	if err != nil || in {
		return err
	}
	return s.users.AddToRole(ctx, user, role.Name)
}

// RemoveUserFromRole drops the role from the user's roles. The role itself
// need not exist.
func (s *RoleService) RemoveUserFromRole(ctx context.Context, userID, roleName string) error {
	name, err := s.MembershipName(ctx, roleName)
	if err != nil {
		return err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.RemoveFromRole(ctx, user, name)
}

// UsersInRole lists the users holding the role, matched like
// RemoveUserFromRole.
func (s *RoleService) UsersInRole(ctx context.Context, roleName string) ([]*domain.User, error) {
	name, err := s.MembershipName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	return s.users.GetUsersInRole(ctx, name)
}

// MembershipName returns the name memberships record for roleName: the
// display name of the role matching it in any casing, or roleName unchanged
// when no such role exists.
func (s *RoleService) MembershipName(ctx context.Context, roleName string) (string, error) {
	role, err := s.GetRole(ctx, roleName)
	switch {
	case err == nil:
		return role.Name, nil
	case errors.Is(err, domain.ErrRoleNotFound):
		return roleName, nil
	default:
		return "", err
	}
}

// ApplyMembership applies a queued membership change.
func (s *RoleService) ApplyMembership(ctx context.Context, change ports.MembershipChange) error {
	switch change.Op {
	case ports.MembershipAdd:
		return s.AddUserToRole(ctx, change.UserID, change.RoleName)
	case ports.MembershipRemove:
		return s.RemoveUserFromRole(ctx, change.UserID, change.RoleName)
	default:
		return fmt.Errorf("%w: membership op %q", domain.ErrInvalidArgument, change.Op)
	}
}
