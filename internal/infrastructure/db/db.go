// Package db selects the document store backend for the identity stores.
package db

import (
	"context"
	"fmt"

	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/infrastructure/config"
	"github.com/99minutos/identity-store/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-store/internal/infrastructure/db/mongo"
)

// Open returns the collection provider configured by cfg. The caller owns
// the provider and must Close it.
func Open(ctx context.Context, cfg config.StoreConfig) (ports.CollectionProvider, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewProvider(), nil
	case config.BackendMongo:
		p, err := mongo.Open(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("db: unknown backend %q", cfg.Backend)
	}
}
