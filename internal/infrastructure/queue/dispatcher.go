package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	jobTimeout     = 30 * time.Second
)

// Dispatcher routes aggregate recalculations to a fixed set of workers using
// consistent hashing on the bootcamp id, so recalculations for one bootcamp
// never run concurrently.
type Dispatcher struct {
	workers []chan string
	service ports.AggregateService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AggregateService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Schedule queues a recalculation for bootcampID. When the worker's queue is
// full the request is dropped; the next write to the bootcamp schedules a
// fresh one.
func (d *Dispatcher) Schedule(bootcampID string) {
	idx := d.shardIndex(bootcampID)
	select {
	case d.workers[idx] <- bootcampID:
		metrics.AggregateQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AggregateErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().Str("bootcamp_id", bootcampID).Int("worker_id", idx).Msg("aggregate queue full, dropping")
	}
}

// shardIndex maps a bootcamp id deterministically to a worker index.
func (d *Dispatcher) shardIndex(bootcampID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(bootcampID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	depth := metrics.AggregateQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case bootcampID := <-ch:
			depth.Dec()
			d.process(ctx, id, bootcampID)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, worker int, bootcampID string) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := d.service.Recalculate(ctx, bootcampID)
	metrics.AggregateDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AggregateErrorsTotal.WithLabelValues("recalculate_failed").Inc()
		d.log.Error().Err(err).
			Str("bootcamp_id", bootcampID).
			Int("worker_id", worker).
			Msg("aggregate recalculation failed")
		return
	}
	metrics.AggregatesRecalculatedTotal.Inc()
}
