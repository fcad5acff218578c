package ports

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// Filter selects documents whose Field equals Value. When the stored field is
// an array, a document matches if any element equals Value.
type Filter struct {
	Field string
	Value string
}

// Collection is a typed document collection keyed by a string ID.
//
// Implementations must never retain the pointers they are given or hand out
// pointers they keep: every returned document is a fresh copy.
type Collection[T any] interface {
	// Insert stores doc under id. It fails with domain.ErrDuplicateKey when id
	// or any unique-indexed field collides with an existing document.
	Insert(ctx context.Context, id string, doc *T) error
	// Update replaces the document stored under id. It fails with
	// domain.ErrNotFound when no such document exists.
	Update(ctx context.Context, id string, doc *T) error
	// Delete removes the document stored under id. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error
	// FindOne returns the first document matching f, or domain.ErrNotFound.
	FindOne(ctx context.Context, f Filter) (*T, error)
	// Find returns every document matching f.
	Find(ctx context.Context, f Filter) ([]*T, error)
	// EnsureIndex declares an index on field. It is idempotent.
	EnsureIndex(ctx context.Context, field string, unique bool) error
}

// CollectionProvider owns the storage handle behind the user and role
// collections. Close releases it; collections must not be used afterwards.
type CollectionProvider interface {
	Users() Collection[domain.User]
	Roles() Collection[domain.Role]
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
