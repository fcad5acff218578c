package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

var roleIndexes = []index{
	{field: domain.FieldID, unique: true},
	{field: domain.FieldNormalizedRoleName, unique: true},
}

// RoleStore persists roles. Name setters write through immediately.
type RoleStore struct {
	coll ports.Collection[domain.Role]
}

var _ ports.RoleStore = (*RoleStore)(nil)

// NewRoleStore declares the role indexes on coll and returns the store.
func NewRoleStore(ctx context.Context, coll ports.Collection[domain.Role]) (*RoleStore, error) {
	if err := ensureIndexes(ctx, coll, roleIndexes); err != nil {
		return nil, fmt.Errorf("role store: %w", err)
	}
	return &RoleStore{coll: coll}, nil
}

// Create inserts role. A role without an ID gets one assigned.
func (s *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if role == nil {
		return domain.InvalidArgument("role")
	}
	if err := assignID(&role.ID, uuid.NewString); err != nil {
		return err
	}
	if err := s.coll.Insert(ctx, role.ID, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Delete removes role by ID. Deleting a role that is not stored succeeds;
// user documents that still list the role name are left untouched.
func (s *RoleStore) Delete(ctx context.Context, role *domain.Role) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if role == nil {
		return domain.InvalidArgument("role")
	}
	if err := s.coll.Delete(ctx, role.ID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// Update overwrites the stored role with the same ID.
func (s *RoleStore) Update(ctx context.Context, role *domain.Role) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if role == nil {
		return domain.InvalidArgument("role")
	}
	return s.update(ctx, role)
}

func (s *RoleStore) update(ctx context.Context, role *domain.Role) error {
	if err := s.coll.Update(ctx, role.ID, role); err != nil {
		return fmt.Errorf("update role %s: %w", role.ID, err)
	}
	return nil
}

// FindByID returns the role with roleID, or nil when there is none.
func (s *RoleStore) FindByID(ctx context.Context, roleID string) (*domain.Role, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	id, err := domain.ParseID(roleID)
	if err != nil {
		return nil, err
	}
	return findOne(ctx, s.coll, ports.Filter{Field: domain.FieldID, Value: id})
}

// FindByName returns the role with the exact normalized name, or nil.
func (s *RoleStore) FindByName(ctx context.Context, normalizedRoleName string) (*domain.Role, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	if normalizedRoleName == "" {
		return nil, domain.InvalidArgument("normalizedRoleName")
	}
	return findOne(ctx, s.coll, ports.Filter{Field: domain.FieldNormalizedRoleName, Value: normalizedRoleName})
}

func (s *RoleStore) GetID(ctx context.Context, role *domain.Role) (string, error) {
	if err := checkCanceled(ctx); err != nil {
		return "", err
	}
	if role == nil {
		return "", domain.InvalidArgument("role")
	}
	return role.ID, nil
}

func (s *RoleStore) GetName(ctx context.Context, role *domain.Role) (string, error) {
	if err := checkCanceled(ctx); err != nil {
		return "", err
	}
	if role == nil {
		return "", domain.InvalidArgument("role")
	}
	return role.Name, nil
}

func (s *RoleStore) GetNormalizedName(ctx context.Context, role *domain.Role) (string, error) {
	if err := checkCanceled(ctx); err != nil {
		return "", err
	}
	if role == nil {
		return "", domain.InvalidArgument("role")
	}
	return role.NormalizedRoleName, nil
}

// SetName changes the display name and persists the role.
func (s *RoleStore) SetName(ctx context.Context, role *domain.Role, name string) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if role == nil {
		return domain.InvalidArgument("role")
	}
	if name == "" {
		return domain.InvalidArgument("name")
	}
	role.Name = name
	return s.update(ctx, role)
}

// SetNormalizedName changes the lookup key and persists the role. Collisions
// with another role surface as domain.ErrDuplicateKey.
func (s *RoleStore) SetNormalizedName(ctx context.Context, role *domain.Role, normalizedName string) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if role == nil {
		return domain.InvalidArgument("role")
	}
	if normalizedName == "" {
		return domain.InvalidArgument("normalizedName")
	}
	role.NormalizedRoleName = normalizedName
	return s.update(ctx, role)
}
