package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

type doc struct {
	ID   string   `bson:"_id"`
	Key  string   `bson:"key"`
	Tags []string `bson:"tags"`
}

func newDocs(t *testing.T) *Collection[doc] {
	t.Helper()
	c := NewCollection[doc]("docs")
	require.NoError(t, c.EnsureIndex(context.Background(), idField, true))
	require.NoError(t, c.EnsureIndex(context.Background(), "key", true))
	require.NoError(t, c.EnsureIndex(context.Background(), "tags", false))
	return c
}

func TestCollection_InsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	c := newDocs(t)

	in := &doc{ID: "1", Key: "a", Tags: []string{"x"}}
	require.NoError(t, c.Insert(ctx, in.ID, in))

	got, err := c.FindOne(ctx, ports.Filter{Field: "key", Value: "a"})
	require.NoError(t, err)
	assert.Equal(t, in, got)

	// Stored documents do not alias the caller's value.
	in.Tags[0] = "mutated"
	got, err = c.FindOne(ctx, ports.Filter{Field: idField, Value: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)

	_, err = c.FindOne(ctx, ports.Filter{Field: "key", Value: "b"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	c := newDocs(t)

	require.NoError(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "a"}))
	assert.ErrorIs(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "b"}), domain.ErrDuplicateKey)
	assert.ErrorIs(t, c.Insert(ctx, "2", &doc{ID: "2", Key: "a"}), domain.ErrDuplicateKey)
	assert.Equal(t, 1, c.Len())

	// Rewriting a document with its own key is not a collision.
	require.NoError(t, c.Update(ctx, "1", &doc{ID: "1", Key: "a", Tags: []string{"y"}}))
}

func TestCollection_NonUniqueArrayIndex(t *testing.T) {
	ctx := context.Background()
	c := newDocs(t)

	require.NoError(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "a", Tags: []string{"x", "y"}}))
	require.NoError(t, c.Insert(ctx, "2", &doc{ID: "2", Key: "b", Tags: []string{"y"}}))
	require.NoError(t, c.Insert(ctx, "3", &doc{ID: "3", Key: "c"}))

	found, err := c.Find(ctx, ports.Filter{Field: "tags", Value: "y"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "1", found[0].ID)
	assert.Equal(t, "2", found[1].ID)

	found, err = c.Find(ctx, ports.Filter{Field: "tags", Value: "z"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCollection_UpdateMissing(t *testing.T) {
	c := newDocs(t)
	err := c.Update(context.Background(), "1", &doc{ID: "1", Key: "a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestCollection_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	c := newDocs(t)
	require.NoError(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "a"}))

	require.NoError(t, c.Delete(ctx, "2"))
	require.NoError(t, c.Delete(ctx, "1"))
	require.NoError(t, c.Delete(ctx, "1"))
	assert.Equal(t, 0, c.Len())
}

func TestCollection_EnsureUniqueIndexOverDuplicates(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[doc]("docs")
	require.NoError(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "a"}))
	require.NoError(t, c.Insert(ctx, "2", &doc{ID: "2", Key: "a"}))

	assert.ErrorIs(t, c.EnsureIndex(ctx, "key", true), domain.ErrDuplicateKey)
	require.NoError(t, c.EnsureIndex(ctx, "key", false))
}

func TestCollection_CanceledContext(t *testing.T) {
	c := newDocs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Insert(ctx, "1", &doc{ID: "1", Key: "a"}), domain.ErrCanceled)
	_, err := c.Find(ctx, ports.Filter{Field: "key", Value: "a"})
	assert.ErrorIs(t, err, domain.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Len())
}

func TestCollection_NilDocument(t *testing.T) {
	c := newDocs(t)
	assert.ErrorIs(t, c.Insert(context.Background(), "1", nil), domain.ErrInvalidArgument)
}

func TestProvider(t *testing.T) {
	p := NewProvider()
	require.NoError(t, p.Ping(context.Background()))
	assert.NotNil(t, p.Users())
	assert.NotNil(t, p.Roles())
	require.NoError(t, p.Close(context.Background()))
}
