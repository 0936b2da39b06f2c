// ABOUTME: Dashboard client facade wiring the transport connector, normalizer,
// ABOUTME: state store, pull API, and polling coordinator behind one surface.

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/event"
	"github.com/fleetdeck/fleetdeck/internal/poll"
	"github.com/fleetdeck/fleetdeck/internal/reconcile"
	"github.com/fleetdeck/fleetdeck/internal/state"
	"github.com/fleetdeck/fleetdeck/internal/transport"
)

// eventHistoryLimit bounds each polled history fetch. It matches the event
// log capacity: older history would be evicted immediately anyway.
const eventHistoryLimit = state.EventLogCapacity

// TimelineWindow is the most entries one Timeline call can return: a full
// history fetch plus a full live log, before deduplication.
const TimelineWindow = eventHistoryLimit + state.EventLogCapacity

// Client is the consumer-facing surface of the dashboard core. It maintains
// a near-real-time view of the fleet from two racing sources: periodic pull
// snapshots and the push event stream. Everything it exposes is read-only
// except Acknowledge and the Connect/Disconnect pair.
type Client struct {
	logger     *slog.Logger
	store      *state.Store
	api        *api.Client
	connector  *transport.Connector
	poller     *poll.Coordinator
	normalizer *event.Normalizer

	mu           sync.RWMutex
	pulledEvents []event.Event
	health       *api.HealthReport
}

// New creates a dashboard client for the orchestrator described by cfg,
// using a WebSocket push channel.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	dial := transport.WebSocketDialer(cfg.Server.StreamURL, cfg.Server.Token)
	return newClient(cfg, dial, logger)
}

// newClient wires the client with an explicit dialer so tests can substitute
// an in-memory channel for the WebSocket.
func newClient(cfg *config.Config, dial transport.Dialer, logger *slog.Logger) *Client {
	c := &Client{
		logger:     logger,
		store:      state.New(logger),
		api:        api.New(cfg.Server.BaseURL, cfg.Server.Token),
		normalizer: event.NewNormalizer(logger),
	}

	c.connector = transport.New(dial, transport.Options{
		MaxAttempts: cfg.Reconnect.MaxAttempts,
		BaseDelay:   cfg.Reconnect.BaseDelay,
		MaxDelay:    cfg.Reconnect.MaxDelay,
	}, logger)
	c.connector.OnMessage(c.handleFrame)
	c.connector.OnRestored(func() {
		logger.Info("event stream restored")
	})

	c.poller = poll.New(cfg.Schedule(), c.fetch, logger)

	return c
}

// Start connects the push channel and launches the pull pollers.
func (c *Client) Start() {
	c.connector.Connect()
	c.poller.Start()
}

// Close tears the client down: pollers stop synchronously and the push
// channel is closed without scheduling a reconnect. Nothing fires after
// Close returns.
func (c *Client) Close() {
	c.poller.Stop()
	c.connector.Disconnect()
}

// Connect re-establishes the push channel, e.g. after the reconnect budget
// was exhausted. Idempotent.
func (c *Client) Connect() {
	c.connector.Connect()
}

// Disconnect closes the push channel and suppresses reconnection. The pull
// pollers keep running. Idempotent.
func (c *Client) Disconnect() {
	c.connector.Disconnect()
}

// ConnectionState reports the push channel state.
func (c *Client) ConnectionState() transport.State {
	return c.connector.State()
}

// Resolve returns the merged current view of an agent or task: canonical
// snapshot fields overlaid with any fresher fields seen on the push stream.
func (c *Client) Resolve(entityID string) (map[string]any, bool) {
	return c.store.Resolve(entityID)
}

// EventLog returns the bounded live activity feed in arrival order.
func (c *Client) EventLog() []event.Event {
	return c.store.EventLog()
}

// Timeline returns the deduplicated union of polled event history and the
// live feed, newest first.
func (c *Client) Timeline() []event.Event {
	c.mu.RLock()
	pulled := c.pulledEvents
	c.mu.RUnlock()
	return reconcile.Merge(pulled, c.store.EventLog())
}

// Notifications returns the queued user-facing alerts in arrival order.
func (c *Client) Notifications() []state.Notification {
	return c.store.Notifications()
}

// Acknowledge marks a notification as acknowledged. Returns false when the
// ID is unknown (e.g. already evicted).
func (c *Client) Acknowledge(notificationID string) bool {
	return c.store.Acknowledge(notificationID)
}

// Health returns the last successfully pulled health report, or nil before
// the first one arrives.
func (c *Client) Health() *api.HealthReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// handleFrame is the single dispatch callback registered on the connector.
// Frames that do not normalize are dropped inside the normalizer.
func (c *Client) handleFrame(f event.Frame) {
	e := c.normalizer.Normalize(f)
	if e == nil {
		return
	}
	c.store.Dispatch(*e)
}

// fetch performs one pull cycle for a resource. A failed pull logs and
// leaves all state untouched; the view goes stale rather than empty.
func (c *Client) fetch(ctx context.Context, resource poll.Resource) {
	switch resource {
	case poll.ResourceAgents:
		list, err := c.api.ListAgents(ctx)
		if err != nil {
			c.logPullFailure(resource, err)
			return
		}
		snapshots := make([]state.Snapshot, 0, len(list.Items))
		for _, agent := range list.Items {
			snapshots = append(snapshots, state.Snapshot{ID: agent.ID, Fields: agent.Fields()})
		}
		c.store.ApplyAgentSnapshots(snapshots)

	case poll.ResourceTasks:
		list, err := c.api.ListTasks(ctx)
		if err != nil {
			c.logPullFailure(resource, err)
			return
		}
		snapshots := make([]state.Snapshot, 0, len(list.Items))
		for _, task := range list.Items {
			snapshots = append(snapshots, state.Snapshot{ID: task.ID, Fields: task.Fields()})
		}
		c.store.ApplyTaskSnapshots(snapshots)

	case poll.ResourceEvents:
		list, err := c.api.ListEvents(ctx, eventHistoryLimit)
		if err != nil {
			c.logPullFailure(resource, err)
			return
		}
		c.mu.Lock()
		c.pulledEvents = list.Events
		c.mu.Unlock()

	case poll.ResourceHealth:
		report, err := c.api.Health(ctx)
		if err != nil {
			c.logPullFailure(resource, err)
			return
		}
		c.mu.Lock()
		c.health = report
		c.mu.Unlock()

	default:
		c.logger.Warn("unknown poll resource", "resource", string(resource))
	}
}

func (c *Client) logPullFailure(resource poll.Resource, err error) {
	// Context cancellation during teardown is not worth a warning.
	if errors.Is(err, context.Canceled) {
		return
	}
	c.logger.Warn("pull cycle failed",
		"resource", string(resource),
		"error", err,
	)
}
