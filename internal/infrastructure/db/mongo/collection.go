package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-store/internal/api/metrics"
	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// Collection implements ports.Collection on a MongoDB collection. Documents
// carry their key in the "_id" field.
type Collection[T any] struct {
	col *mongo.Collection
}

var _ ports.Collection[domain.Role] = (*Collection[domain.Role])(nil)

// NewCollection wraps the named collection of db.
func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name)}
}

// Insert stores doc; its "_id" must equal id.
func (c *Collection[T]) Insert(ctx context.Context, id string, doc *T) (err error) {
	defer c.observe("insert", time.Now(), &err)

	if _, err = c.col.InsertOne(ctx, doc); err != nil {
		return c.wrap("insert", id, err)
	}
	return nil
}

// Update replaces the document with id as a whole.
func (c *Collection[T]) Update(ctx context.Context, id string, doc *T) (err error) {
	defer c.observe("update", time.Now(), &err)

	res, err := c.col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return c.wrap("update", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s %s: %w", c.col.Name(), id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the document with id. A missing document is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) (err error) {
	defer c.observe("delete", time.Now(), &err)

	if _, err = c.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return c.wrap("delete", id, err)
	}
	return nil
}

func (c *Collection[T]) FindOne(ctx context.Context, f ports.Filter) (_ *T, err error) {
	defer c.observe("find_one", time.Now(), &err)

	doc := new(T)
	if err = c.col.FindOne(ctx, bson.M{f.Field: f.Value}).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, c.wrap("find one", f.Field, err)
	}
	return doc, nil
}

// Find matches array fields by element, so a roles filter returns every user
// holding that role.
func (c *Collection[T]) Find(ctx context.Context, f ports.Filter) (_ []*T, err error) {
	defer c.observe("find", time.Now(), &err)

	cur, err := c.col.Find(ctx, bson.M{f.Field: f.Value})
	if err != nil {
		return nil, c.wrap("find", f.Field, err)
	}
	defer cur.Close(ctx)

	var out []*T
	for cur.Next(ctx) {
		doc := new(T)
		if err = cur.Decode(doc); err != nil {
			return nil, fmt.Errorf("find %s: decode: %w", c.col.Name(), err)
		}
		out = append(out, doc)
	}
	if err = cur.Err(); err != nil {
		return nil, c.wrap("find", f.Field, err)
	}
	return out, nil
}

// EnsureIndex creates an ascending single-field index. MongoDB treats an
// identical index definition as a no-op, and "_id" is always unique, so
// it is skipped.
func (c *Collection[T]) EnsureIndex(ctx context.Context, field string, unique bool) (err error) {
	defer c.observe("ensure_index", time.Now(), &err)

	if field == "_id" {
		return nil
	}
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(unique),
	}
	if _, err = c.col.Indexes().CreateOne(ctx, model); err != nil {
		return c.wrap("ensure index", field, err)
	}
	return nil
}

func (c *Collection[T]) wrap(op, key string, err error) error {
	return fmt.Errorf("%s %s %s: %w", op, c.col.Name(), key, translate(err))
}

func (c *Collection[T]) observe(op string, start time.Time, errp *error) {
	metrics.StoreOperationDuration.WithLabelValues(c.col.Name(), op).Observe(time.Since(start).Seconds())
	metrics.StoreOperationsTotal.WithLabelValues(c.col.Name(), op, metrics.ResultLabel(*errp)).Inc()
}
