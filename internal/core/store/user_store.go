package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

var userIndexes = []index{
	{field: domain.FieldID, unique: true},
	{field: domain.FieldNormalizedUserName, unique: true},
	{field: domain.FieldRoles, unique: false},
}

// UserStore persists users, their password hashes and role memberships.
//
// Name setters and role membership changes write the whole document back
// immediately. SetPasswordHash does not; callers persist it with Update.
type UserStore struct {
	coll ports.Collection[domain.User]
}

var (
	_ ports.UserStore         = (*UserStore)(nil)
	_ ports.UserPasswordStore = (*UserStore)(nil)
	_ ports.UserRoleStore     = (*UserStore)(nil)
)

// NewUserStore declares the user indexes on coll and returns the store.
func NewUserStore(ctx context.Context, coll ports.Collection[domain.User]) (*UserStore, error) {
	if err := ensureIndexes(ctx, coll, userIndexes); err != nil {
		return nil, fmt.Errorf("user store: %w", err)
	}
	return &UserStore{coll: coll}, nil
}

// guard runs the entry checks shared by every user operation.
func guard(ctx context.Context, user *domain.User) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if user == nil {
		return domain.InvalidArgument("user")
	}
	return nil
}

// Create inserts user. A user without an ID gets one assigned.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if err := assignID(&user.ID, uuid.NewString); err != nil {
		return err
	}
	if err := s.coll.Insert(ctx, user.ID, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Delete removes user by ID. Deleting a user that is not stored succeeds.
func (s *UserStore) Delete(ctx context.Context, user *domain.User) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if err := s.coll.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Update overwrites the stored user with the same ID. Concurrent updates of
// the same user are last-writer-wins.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	return s.update(ctx, user)
}

func (s *UserStore) update(ctx context.Context, user *domain.User) error {
	if err := s.coll.Update(ctx, user.ID, user); err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	return nil
}

// FindByID returns the user with userID, or nil when there is none.
func (s *UserStore) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	id, err := domain.ParseID(userID)
	if err != nil {
		return nil, err
	}
	return findOne(ctx, s.coll, ports.Filter{Field: domain.FieldID, Value: id})
}

// FindByName returns the first user with the normalized name, or nil. The
// unique index guarantees at most one match.
func (s *UserStore) FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	if normalizedUserName == "" {
		return nil, domain.InvalidArgument("normalizedUserName")
	}
	return findOne(ctx, s.coll, ports.Filter{Field: domain.FieldNormalizedUserName, Value: normalizedUserName})
}

func (s *UserStore) GetID(ctx context.Context, user *domain.User) (string, error) {
	if err := guard(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *UserStore) GetUserName(ctx context.Context, user *domain.User) (string, error) {
	if err := guard(ctx, user); err != nil {
		return "", err
	}
	return user.UserName, nil
}

func (s *UserStore) GetNormalizedName(ctx context.Context, user *domain.User) (string, error) {
	if err := guard(ctx, user); err != nil {
		return "", err
	}
	return user.NormalizedUserName, nil
}

// SetUserName changes the display user name and persists the user. The
// normalized name is left alone.
func (s *UserStore) SetUserName(ctx context.Context, user *domain.User, userName string) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if userName == "" {
		return domain.InvalidArgument("userName")
	}
	user.UserName = userName
	return s.update(ctx, user)
}

// SetNormalizedName changes the lookup key and persists the user.
func (s *UserStore) SetNormalizedName(ctx context.Context, user *domain.User, normalizedName string) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if normalizedName == "" {
		return domain.InvalidArgument("normalizedName")
	}
	user.NormalizedUserName = normalizedName
	return s.update(ctx, user)
}

// SetPasswordHash stages hash on user without writing it. An empty hash
// clears the password.
func (s *UserStore) SetPasswordHash(ctx context.Context, user *domain.User, hash string) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (s *UserStore) GetPasswordHash(ctx context.Context, user *domain.User) (string, error) {
	if err := guard(ctx, user); err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func (s *UserStore) HasPassword(ctx context.Context, user *domain.User) (bool, error) {
	if err := guard(ctx, user); err != nil {
		return false, err
	}
	return user.PasswordHash != "", nil
}

// AddToRole appends roleName to the user's roles and persists the user.
// Duplicates are not filtered and the role is not checked for existence.
func (s *UserStore) AddToRole(ctx context.Context, user *domain.User, roleName string) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if roleName == "" {
		return domain.InvalidArgument("roleName")
	}
	user.Roles = append(user.Roles, roleName)
	return s.update(ctx, user)
}

// RemoveFromRole drops every occurrence of roleName and persists the user.
func (s *UserStore) RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error {
	if err := guard(ctx, user); err != nil {
		return err
	}
	if roleName == "" {
		return domain.InvalidArgument("roleName")
	}
	user.Roles = slices.DeleteFunc(user.Roles, func(r string) bool { return r == roleName })
	return s.update(ctx, user)
}

// GetRoles returns a copy of the user's role names in stored order.
func (s *UserStore) GetRoles(ctx context.Context, user *domain.User) ([]string, error) {
	if err := guard(ctx, user); err != nil {
		return nil, err
	}
	return slices.Clone(user.Roles), nil
}

func (s *UserStore) IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error) {
	if err := guard(ctx, user); err != nil {
		return false, err
	}
	return user.HasRole(roleName), nil
}

// GetUsersInRole returns every stored user whose roles contain roleName.
func (s *UserStore) GetUsersInRole(ctx context.Context, roleName string) ([]*domain.User, error) {
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	if roleName == "" {
		return nil, domain.InvalidArgument("roleName")
	}
	users, err := s.coll.Find(ctx, ports.Filter{Field: domain.FieldRoles, Value: roleName})
	if err != nil {
		return nil, fmt.Errorf("users in role %s: %w", roleName, err)
	}
	return users, nil
}
