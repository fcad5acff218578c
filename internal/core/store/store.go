// Package store implements the user and role stores on top of a generic
// document collection. Stores keep no state besides the collection handle;
// every operation reads or writes through it.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// index describes an index a store declares on its collection at construction.
type index struct {
	field  string
	unique bool
}

func ensureIndexes[T any](ctx context.Context, coll ports.Collection[T], indexes []index) error {
	for _, idx := range indexes {
		if err := coll.EnsureIndex(ctx, idx.field, idx.unique); err != nil {
			return fmt.Errorf("ensure index %s: %w", idx.field, err)
		}
	}
	return nil
}

// checkCanceled fails fast when ctx is already done, before any storage access.
func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCanceled, err)
	}
	return nil
}

// assignID fills in a missing ID and rejects one that is not a valid identifier.
func assignID(id *string, newID func() string) error {
	if *id == "" {
		*id = newID()
		return nil
	}
	parsed, err := domain.ParseID(*id)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// findOne returns nil without error when nothing matches.
func findOne[T any](ctx context.Context, coll ports.Collection[T], f ports.Filter) (*T, error) {
	doc, err := coll.FindOne(ctx, f)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
