// ABOUTME: Push-channel abstraction decoupling transport framing from dispatch.
// ABOUTME: A Dialer opens a Channel; the connector owns reconnection, not the channel.

package transport

import "context"

// Channel is one established push connection. Receive blocks until the next
// discrete message arrives, the context is cancelled, or the connection
// fails; any error is terminal for this channel.
type Channel interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a new Channel. The connector calls it for the initial connect
// and again for every reconnection attempt.
type Dialer func(ctx context.Context) (Channel, error)
