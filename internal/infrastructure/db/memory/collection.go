// Package memory provides an in-process document collection with the same
// contract as the MongoDB one. Documents are kept BSON-encoded so nothing the
// caller holds is shared with the collection.
package memory

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const idField = "_id"

type entry struct {
	raw    []byte
	fields bson.M
}

// Collection is a mutex-guarded map of encoded documents. Unique indexes are
// checked under the same lock as the write, so concurrent inserts of the same
// key see exactly one winner.
type Collection[T any] struct {
	name string

	mu      sync.RWMutex
	docs    map[string]entry
	order   []string
	indexes map[string]bool // field -> unique
}

var _ ports.Collection[domain.User] = (*Collection[domain.User])(nil)

func NewCollection[T any](name string) *Collection[T] {
	return &Collection[T]{
		name:    name,
		docs:    make(map[string]entry),
		indexes: make(map[string]bool),
	}
}

func (c *Collection[T]) Insert(ctx context.Context, id string, doc *T) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	e, err := encode(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; exists {
		return fmt.Errorf("%w: %s %s=%s", domain.ErrDuplicateKey, c.name, idField, id)
	}
	if err := c.checkUnique(id, e.fields); err != nil {
		return err
	}
	c.docs[id] = e
	c.order = append(c.order, id)
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, doc *T) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	e, err := encode(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return fmt.Errorf("%w: %s %s=%s", domain.ErrNotFound, c.name, idField, id)
	}
	if err := c.checkUnique(id, e.fields); err != nil {
		return err
	}
	c.docs[id] = e
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return nil
	}
	delete(c.docs, id)
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Collection[T]) FindOne(ctx context.Context, f ports.Filter) (*T, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		e := c.docs[id]
		if matches(e.fields, f) {
			return decode[T](e.raw)
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Collection[T]) Find(ctx context.Context, f ports.Filter) ([]*T, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*T
	for _, id := range c.order {
		e := c.docs[id]
		if !matches(e.fields, f) {
			continue
		}
		doc, err := decode[T](e.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// EnsureIndex records the index. Declaring a unique index over documents that
// already collide fails, as it does in MongoDB.
func (c *Collection[T]) EnsureIndex(ctx context.Context, field string, unique bool) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if field == idField {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if unique && !c.indexes[field] {
		seen := make(map[any]string)
		for _, id := range c.order {
			for _, v := range values(c.docs[id].fields, field) {
				if other, dup := seen[v]; dup {
					return fmt.Errorf("%w: %s %s=%v (ids %s, %s)", domain.ErrDuplicateKey, c.name, field, v, other, id)
				}
				seen[v] = id
			}
		}
	}
	c.indexes[field] = c.indexes[field] || unique
	return nil
}

// Len reports the number of stored documents.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// checkUnique must be called with mu held.
func (c *Collection[T]) checkUnique(id string, fields bson.M) error {
	for field, unique := range c.indexes {
		if !unique {
			continue
		}
		for _, v := range values(fields, field) {
			for otherID, other := range c.docs {
				if otherID == id {
					continue
				}
				for _, ov := range values(other.fields, field) {
					if ov == v {
						return fmt.Errorf("%w: %s %s=%v", domain.ErrDuplicateKey, c.name, field, v)
					}
				}
			}
		}
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCanceled, err)
	}
	return nil
}

func encode[T any](doc *T) (entry, error) {
	if doc == nil {
		return entry{}, domain.InvalidArgument("document")
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return entry{}, fmt.Errorf("encode document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return entry{}, fmt.Errorf("index document: %w", err)
	}
	return entry{raw: raw, fields: fields}, nil
}

func decode[T any](raw []byte) (*T, error) {
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// values returns the comparable values stored under field: the scalar itself,
// or every element when the field is an array. A missing field indexes as nil.
func values(fields bson.M, field string) []any {
	v, ok := fields[field]
	if !ok {
		return []any{nil}
	}
	if arr, isArr := v.(bson.A); isArr {
		return []any(arr)
	}
	return []any{v}
}

func matches(fields bson.M, f ports.Filter) bool {
	v, ok := fields[f.Field]
	if !ok {
		return false
	}
	if arr, isArr := v.(bson.A); isArr {
		for _, el := range arr {
			if s, isStr := el.(string); isStr && s == f.Value {
				return true
			}
		}
		return false
	}
	s, isStr := v.(string)
	return isStr && s == f.Value
}
