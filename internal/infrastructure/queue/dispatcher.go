package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the owning worker is saturated.
var ErrQueueFull = errors.New("location queue full")

// Dispatcher routes location reports to a fixed set of workers using
// consistent hashing on the agent id, guaranteeing per-agent ordering.
type Dispatcher struct {
	workers []chan ports.LocationReport
	service ports.LocationService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.LocationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.LocationReport, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LocationReport, channelBuffer)
	}
	return d
}

// Run starts all workers and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	done := make(chan struct{}, len(d.workers))
	for i, ch := range d.workers {
		go func(id int, ch <-chan ports.LocationReport) {
			d.runWorker(ctx, id, ch)
			done <- struct{}{}
		}(i, ch)
	}
	for range d.workers {
		<-done
	}
	return nil
}

// Enqueue hands a report to the worker responsible for its agent without
// blocking the caller.
func (d *Dispatcher) Enqueue(report ports.LocationReport) error {
	idx := d.shardIndex(report.AgentID)
	select {
	case d.workers[idx] <- report:
		metrics.LocationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.LocationReportsTotal.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps an agent id deterministically to a worker index.
func (d *Dispatcher) shardIndex(agentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(agentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LocationReport) {
	depth := metrics.LocationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case report := <-ch:
			depth.Set(float64(len(ch)))
			if _, err := d.service.Report(ctx, report); err != nil {
				d.log.Error().Err(err).
					Str("agent_id", report.AgentID).
					Int("worker_id", id).
					Msg("location processing failed")
			}
		}
	}
}
