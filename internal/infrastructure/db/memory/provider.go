package memory

import (
	"context"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// Provider hands out process-local user and role collections.
type Provider struct {
	users *Collection[domain.User]
	roles *Collection[domain.Role]
}

var _ ports.CollectionProvider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		users: NewCollection[domain.User]("users"),
		roles: NewCollection[domain.Role]("roles"),
	}
}

func (p *Provider) Users() ports.Collection[domain.User] { return p.users }
func (p *Provider) Roles() ports.Collection[domain.Role] { return p.roles }

func (p *Provider) Ping(context.Context) error  { return nil }
func (p *Provider) Close(context.Context) error { return nil }
