package domain

import "github.com/google/uuid"

// Role is a named group of users. Membership is tracked on the user side by
// name, so renaming or deleting a role never touches user documents.
type Role struct {
	ID                 string `json:"id" bson:"_id"`
	Name               string `json:"name" bson:"name"`
	NormalizedRoleName string `json:"normalized_role_name" bson:"normalized_role_name"`
}

// Bson field names used for role lookups and indexes.
const (
	FieldID                 = "_id"
	FieldNormalizedRoleName = "normalized_role_name"
)

// NewRole returns a role with a freshly generated ID. The caller is
// responsible for setting a normalized name consistent with name.
func NewRole(name, normalizedName string) *Role {
	return &Role{
		ID:                 uuid.NewString(),
		Name:               name,
		NormalizedRoleName: normalizedName,
	}
}
