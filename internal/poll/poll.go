// ABOUTME: Polling coordinator running one ticker per pulled resource.
// ABOUTME: Cadence lives in a single schedule map; Stop tears down synchronously.

package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Resource names one pulled query kind.
type Resource string

const (
	ResourceAgents Resource = "agents"
	ResourceTasks  Resource = "tasks"
	ResourceEvents Resource = "events"
	ResourceHealth Resource = "health"
)

// Schedule maps each resource to its polling interval. Resources absent from
// the schedule are not polled.
type Schedule map[Resource]time.Duration

// DefaultSchedule returns the standard polling cadence. Tasks change most
// often and poll fastest; event history and health are cheap to lag behind.
func DefaultSchedule() Schedule {
	return Schedule{
		ResourceAgents: 5 * time.Second,
		ResourceTasks:  3 * time.Second,
		ResourceEvents: 10 * time.Second,
		ResourceHealth: 10 * time.Second,
	}
}

// FetchFunc performs one pull cycle for a resource. Errors are the fetcher's
// concern; the coordinator only drives cadence.
type FetchFunc func(ctx context.Context, resource Resource)

// Coordinator runs one goroutine per scheduled resource. The tickers are
// independent and uncoordinated; races between them are resolved downstream
// by idempotent snapshot application and dedup-by-ID.
type Coordinator struct {
	schedule Schedule
	fetch    FetchFunc
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a Coordinator that invokes fetch on each tick.
func New(schedule Schedule, fetch FetchFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		schedule: schedule,
		fetch:    fetch,
		logger:   logger,
	}
}

// Start launches the pollers. Each resource is fetched once immediately and
// then on every interval tick. Calling Start on a running coordinator is a
// no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	for resource, interval := range c.schedule {
		if interval <= 0 {
			c.logger.Warn("skipping resource with non-positive interval",
				"resource", string(resource),
			)
			continue
		}
		c.wg.Add(1)
		go c.runPoller(ctx, resource, interval)
	}
}

// Stop cancels all pollers and blocks until every in-flight fetch has
// returned. No fetch callback fires after Stop returns. Idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
}

func (c *Coordinator) runPoller(ctx context.Context, resource Resource, interval time.Duration) {
	defer c.wg.Done()

	c.logger.Debug("poller started",
		"resource", string(resource),
		"interval", interval,
	)

	// Prime the cache before the first tick.
	c.fetch(ctx, resource)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.fetch(ctx, resource)
		}
	}
}
