package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied map[string][]ports.MembershipChange
	done    chan struct{}
	want    int
	count   int
}

func newRecordingApplier(want int) *recordingApplier {
	return &recordingApplier{
		applied: make(map[string][]ports.MembershipChange),
		done:    make(chan struct{}),
		want:    want,
	}
}

func (r *recordingApplier) ApplyMembership(_ context.Context, change ports.MembershipChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[change.UserID] = append(r.applied[change.UserID], change)
	r.count++
	if r.count == r.want {
		close(r.done)
	}
	if change.RoleName == "fail" {
		return errors.New("boom")
	}
	return nil
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	var changes []ports.MembershipChange
	for i := 0; i < 50; i++ {
		for _, user := range []string{"u1", "u2", "u3"} {
			op := ports.MembershipAdd
			if i%2 == 1 {
				op = ports.MembershipRemove
			}
			changes = append(changes, ports.MembershipChange{UserID: user, RoleName: "Admin", Op: op})
		}
	}

	applier := newRecordingApplier(len(changes))
	d := NewDispatcher(4, applier, zerolog.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	if err := d.EnqueueBatch(ctx, changes); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}

	select {
	case <-applier.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for changes to apply")
	}
	cancel()
	d.Wait()

	for _, user := range []string{"u1", "u2", "u3"} {
		got := applier.applied[user]
		if len(got) != 50 {
			t.Fatalf("user %s: expected 50 changes, got %d", user, len(got))
		}
		for i, c := range got {
			want := ports.MembershipAdd
			if i%2 == 1 {
				want = ports.MembershipRemove
			}
			if c.Op != want {
				t.Fatalf("user %s change %d: got %s, want %s", user, i, c.Op, want)
			}
		}
	}
}

func TestDispatcher_ContinuesAfterFailure(t *testing.T) {
	applier := newRecordingApplier(2)
	d := NewDispatcher(1, applier, zerolog.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, role := range []string{"fail", "Admin"} {
		if err := d.Enqueue(ctx, ports.MembershipChange{UserID: "u1", RoleName: role, Op: ports.MembershipAdd}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	select {
	case <-applier.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker stopped after a failed change")
	}
}

func TestDispatcher_EnqueueStopsWhenContextDone(t *testing.T) {
	// Workers are not started, so the single shard fills up.
	d := NewDispatcher(1, newRecordingApplier(0), zerolog.New(io.Discard))
	change := ports.MembershipChange{UserID: "u1", RoleName: "Admin", Op: ports.MembershipAdd}
	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(context.Background(), change); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- d.EnqueueBatch(ctx, []ports.MembershipChange{change, change}) }()

	select {
	case err := <-errc:
		if !errors.Is(err, domain.ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("EnqueueBatch blocked past its context")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected %d queued changes, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.New(io.Discard))
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard index changed: %d != %d", got, first)
		}
	}
}
