package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/store"
	"github.com/99minutos/identity-store/internal/infrastructure/db/memory"
)

var testLog = zerolog.New(io.Discard)

func newStores(t *testing.T) (*store.UserStore, *store.RoleStore) {
	t.Helper()
	ctx := context.Background()
	users, err := store.NewUserStore(ctx, memory.NewCollection[domain.User]("users"))
	if err != nil {
		t.Fatalf("NewUserStore: %v", err)
	}
	roles, err := store.NewRoleStore(ctx, memory.NewCollection[domain.Role]("roles"))
	if err != nil {
		t.Fatalf("NewRoleStore: %v", err)
	}
	return users, roles
}

// stubThrottle counts failures in memory and locks at max.
type stubThrottle struct {
	max      int
	failures map[string]int
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, failures: make(map[string]int)}
}

func (s *stubThrottle) Locked(_ context.Context, account string) (bool, error) {
	return s.failures[account] >= s.max, nil
}

func (s *stubThrottle) RecordFailure(_ context.Context, account string) error {
	s.failures[account]++
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, account string) error {
	delete(s.failures, account)
	return nil
}
