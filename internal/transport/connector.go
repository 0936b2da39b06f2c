// ABOUTME: Owns the push connection lifecycle: connect, receive, reconnect with
// ABOUTME: bounded backoff, and user-initiated teardown that suppresses retries.

package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

const (
	// DefaultMaxAttempts is how many consecutive transport failures are
	// tolerated before the connector gives up until Connect is called again.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay is the delay before the first retry; it grows
	// linearly per attempt.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps the retry delay.
	DefaultMaxDelay = 5 * time.Second
)

// Options tunes the reconnect policy. Zero values select the defaults.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Connector manages the single push connection. Connect and Disconnect are
// idempotent; transport failures trigger automatic reconnection with
// increasing delay unless the user closed the connection or the attempt
// budget is exhausted. Frames that fail to decode are logged and dropped so
// one bad frame never tears down the channel.
type Connector struct {
	dial   Dialer
	logger *slog.Logger

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	mu         sync.Mutex
	state      State
	attempts   int
	handler    func(event.Frame)
	onRestored func()
	channel    Channel
	cancel     context.CancelFunc
	userClosed bool
	// gen identifies the current Connect cycle. A run loop whose gen no
	// longer matches has been superseded and must exit without dialing or
	// touching shared state, so two cycles can never hold channels at once.
	gen int
}

// New creates a Connector that dials the push channel with dial.
func New(dial Dialer, opts Options, logger *slog.Logger) *Connector {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	return &Connector{
		dial:        dial,
		logger:      logger,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		maxDelay:    opts.MaxDelay,
	}
}

// OnMessage registers the dispatch callback for incoming frames. There is at
// most one active handler; registering again replaces the previous one.
func (c *Connector) OnMessage(handler func(event.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// OnRestored registers a callback invoked every time the channel opens,
// including after automatic reconnection.
func (c *Connector) OnRestored(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRestored = fn
}

// State returns the current connection state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect establishes the push channel. Calling it while already connecting
// or connected is a no-op. It also rearms the connector after the retry
// budget has been exhausted, and supersedes a cycle that is sleeping out a
// retry backoff: the old cycle exits instead of dialing again.
func (c *Connector) Connect() {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.state = StateConnecting
	c.userClosed = false
	c.attempts = 0
	prevCancel := c.cancel
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}
	go c.run(ctx, gen)
}

// Disconnect tears down the channel unconditionally and suppresses any
// automatic reconnection. Idempotent.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	c.userClosed = true
	c.state = StateDisconnected
	cancel := c.cancel
	c.cancel = nil
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ch != nil {
		ch.Close()
	}
}

// run drives one Connect cycle: dial, receive until failure, retry while the
// attempt budget lasts. It exits on user disconnect, context cancellation,
// budget exhaustion, or when a newer Connect cycle supersedes it.
func (c *Connector) run(ctx context.Context, gen int) {
	for {
		ch, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !c.scheduleRetry(ctx, gen, err) {
				return
			}
			continue
		}

		c.mu.Lock()
		if c.userClosed || gen != c.gen {
			c.mu.Unlock()
			ch.Close()
			return
		}
		c.channel = ch
		c.state = StateConnected
		c.attempts = 0
		restored := c.onRestored
		c.mu.Unlock()

		c.logger.Info("push channel connected")
		if restored != nil {
			restored()
		}

		err = c.receiveLoop(ctx, ch)

		c.mu.Lock()
		stale := gen != c.gen
		if !stale {
			c.channel = nil
			c.state = StateDisconnected
		}
		closed := c.userClosed
		c.mu.Unlock()
		ch.Close()

		if ctx.Err() != nil || closed || stale {
			return
		}
		c.logger.Warn("push channel lost", "error", err)
		if !c.scheduleRetry(ctx, gen, err) {
			return
		}
	}
}

// receiveLoop reads frames until the channel fails. Messages that are not
// valid frame JSON are dropped here, before dispatch.
func (c *Connector) receiveLoop(ctx context.Context, ch Channel) error {
	for {
		data, err := ch.Receive(ctx)
		if err != nil {
			return err
		}

		var frame event.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(frame)
		}
	}
}

// scheduleRetry counts one transport failure and, if the budget allows,
// waits out the backoff delay and moves the state to connecting. It returns
// false when the calling cycle should stop retrying.
func (c *Connector) scheduleRetry(ctx context.Context, gen int, cause error) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.state = StateDisconnected
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	if attempt >= c.maxAttempts {
		c.logger.Error("reconnect attempts exhausted, staying disconnected",
			"attempts", attempt,
			"error", cause,
		)
		return false
	}

	delay := min(c.baseDelay*time.Duration(attempt), c.maxDelay)
	c.logger.Info("scheduling reconnect",
		"attempt", attempt,
		"delay", delay,
	)

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userClosed || gen != c.gen {
		return false
	}
	c.state = StateConnecting
	return true
}
