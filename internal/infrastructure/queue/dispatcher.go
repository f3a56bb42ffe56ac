package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/api/metrics"
	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes rider location pings to a fixed set of workers using
// consistent hashing on the rider id, guaranteeing per-rider write ordering
// into the location store.
type Dispatcher struct {
	workers []chan ports.LocationPing
	store   ports.LocationStore
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.LocationStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.LocationPing, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LocationPing, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a ping to the worker responsible for its rider.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(ping ports.LocationPing) {
	idx := d.shardIndex(ping.RiderID)
	d.workers[idx] <- ping
	metrics.LocationPingsTotal.Inc()
	metrics.LocationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a rider id deterministically to a worker index.
func (d *Dispatcher) shardIndex(riderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(riderID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LocationPing) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ping, ok := <-ch:
			if !ok {
				return
			}
			metrics.LocationQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			err := d.store.Set(ctx, domain.RiderLocation{
				RiderID:    ping.RiderID,
				Lat:        ping.Lat,
				Lng:        ping.Lng,
				RecordedAt: ping.RecordedAt,
			})
			if err != nil {
				d.log.Error().Err(err).
					Str("rider_id", ping.RiderID).
					Int("worker_id", id).
					Msg("location write failed")
			}
		}
	}
}
