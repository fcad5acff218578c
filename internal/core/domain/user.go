package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// DefaultRole is the role every new user starts with.
const DefaultRole = "User"

// Well-known role names used by the HTTP layer.
const (
	RoleAdmin = "Admin"
	RoleUser  = DefaultRole
)

// User models an authentication principal.
//
// Roles holds role names, not role IDs; there is no referential integrity
// against the role collection, so a user may reference a role that no longer
// exists.
type User struct {
	ID                 string   `json:"id" bson:"_id"`
	UserName           string   `json:"user_name" bson:"user_name"`
	NormalizedUserName string   `json:"normalized_user_name" bson:"normalized_user_name"`
	Email              string   `json:"email,omitempty" bson:"email,omitempty"`
	EmailConfirmed     bool     `json:"email_confirmed" bson:"email_confirmed"`
	PasswordHash       string   `json:"-" bson:"password_hash,omitempty"`
	Roles              []string `json:"roles" bson:"roles"`
}

// Bson field names used for user lookups and indexes.
const (
	FieldNormalizedUserName = "normalized_user_name"
	FieldRoles              = "roles"
)

// NewUser returns a user with a freshly generated ID and the default role.
func NewUser(userName, normalizedUserName string) *User {
	return &User{
		ID:                 uuid.NewString(),
		UserName:           userName,
		NormalizedUserName: normalizedUserName,
		Roles:              []string{DefaultRole},
	}
}

// HasRole reports whether roleName is in the user's role list (exact match).
func (u *User) HasRole(roleName string) bool {
	return slices.Contains(u.Roles, roleName)
}

// ParseID validates an identifier crossing the API boundary and returns its
// canonical string form.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: id %q: %v", ErrInvalidArgument, id, err)
	}
	return parsed.String(), nil
}
