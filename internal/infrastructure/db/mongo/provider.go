package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const (
	collectionUsers = "users"
	collectionRoles = "roles"
)

// Provider owns the MongoDB client backing the user and role collections.
// It is the only place the connection is released.
type Provider struct {
	client *mongo.Client
	db     *mongo.Database
	users  *Collection[domain.User]
	roles  *Collection[domain.Role]
}

var _ ports.CollectionProvider = (*Provider)(nil)

// Open connects using cfg and returns a provider owning the connection.
func Open(ctx context.Context, cfg Config) (*Provider, error) {
	client, db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewProvider(client, db), nil
}

// NewProvider wraps an already connected client.
func NewProvider(client *mongo.Client, db *mongo.Database) *Provider {
	return &Provider{
		client: client,
		db:     db,
		users:  NewCollection[domain.User](db, collectionUsers),
		roles:  NewCollection[domain.Role](db, collectionRoles),
	}
}

func (p *Provider) Users() ports.Collection[domain.User] { return p.users }
func (p *Provider) Roles() ports.Collection[domain.Role] { return p.roles }

func (p *Provider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: mongo ping: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (p *Provider) Close(ctx context.Context) error {
	if err := p.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
