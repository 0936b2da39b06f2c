// ABOUTME: WebSocket implementation of the push channel.
// ABOUTME: The orchestrator emits JSON frames {kind, payload} as discrete messages.

package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

// WebSocketDialer returns a Dialer that connects to the orchestrator's event
// stream endpoint. A non-empty token is sent as a bearer Authorization
// header on the handshake; the transport carries no other authentication.
func WebSocketDialer(url, token string) Dialer {
	return func(ctx context.Context) (Channel, error) {
		opts := &websocket.DialOptions{}
		if token != "" {
			opts.HTTPHeader = http.Header{
				"Authorization": []string{"Bearer " + token},
			}
		}

		conn, _, err := websocket.Dial(ctx, url, opts)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", url, err)
		}
		return &wsChannel{conn: conn}, nil
	}
}

type wsChannel struct {
	conn *websocket.Conn
}

func (c *wsChannel) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "client closing")
}
