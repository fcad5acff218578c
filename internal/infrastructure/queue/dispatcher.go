package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/api/metrics"
	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// MembershipApplier applies a single role membership change.
type MembershipApplier interface {
	ApplyMembership(ctx context.Context, change ports.MembershipChange) error
}

// Dispatcher routes membership changes to a fixed set of workers using
// consistent hashing on the user ID. Membership changes rewrite the whole
// user document, so changes for one user must not run concurrently; sharding
// by user keeps them ordered without any locking in the store.
type Dispatcher struct {
	workers []chan ports.MembershipChange
	applier MembershipApplier
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, applier MembershipApplier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.MembershipChange, numWorkers),
		applier: applier,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MembershipChange, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends a change to the worker responsible for its user. It blocks
// while that worker's buffer is full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, change ports.MembershipChange) error {
	idx := d.shardIndex(change.UserID)
	select {
	case d.workers[idx] <- change:
	case <-ctx.Done():
		return fmt.Errorf("%w: enqueue membership change: %v", domain.ErrCanceled, ctx.Err())
	}
	metrics.MembershipQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// EnqueueBatch enqueues multiple changes preserving per-user ordering. It
// stops at the first change that cannot be queued; earlier changes stay queued.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, changes []ports.MembershipChange) error {
	for _, c := range changes {
		if err := d.Enqueue(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MembershipChange) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			metrics.MembershipQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			err := d.applier.ApplyMembership(ctx, change)
			metrics.MembershipChangesTotal.WithLabelValues(string(change.Op), metrics.ResultLabel(err)).Inc()
			if err != nil {
				d.log.Error().Err(err).
					Str("user_id", change.UserID).
					Str("role", change.RoleName).
					Int("worker_id", id).
					Msg("membership change failed")
			}
		}
	}
}
