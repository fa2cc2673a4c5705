package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/linguameet/linguameet-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes chat profile-sync jobs to a fixed set of workers using
// consistent hashing on the user id, guaranteeing per-user ordering when
// signup and onboarding updates land close together. Jobs are fire and
// forget: failures are logged by the syncer and never surface to the
// mutation that enqueued them.
type Dispatcher struct {
	workers []chan ports.ProfileSyncInput
	syncer  ports.ProfileSyncer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, syncer ports.ProfileSyncer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ProfileSyncInput, numWorkers),
		syncer:  syncer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ProfileSyncInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its user id. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(input ports.ProfileSyncInput) {
	d.workers[d.shardIndex(input.UserID)] <- input
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ProfileSyncInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case input, ok := <-ch:
			if !ok {
				return
			}
			if err := d.syncer.Sync(ctx, input); err != nil {
				d.log.Warn().Err(err).
					Str("user_id", input.UserID).
					Int("worker_id", id).
					Msg("profile sync job failed")
			}
		}
	}
}
