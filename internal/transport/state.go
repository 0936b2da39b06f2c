// ABOUTME: Connection state enum for the push channel lifecycle.
// ABOUTME: Transitions are disconnected -> connecting -> connected -> disconnected only.

package transport

// State describes the push connection lifecycle. There is a single
// process-wide connection, so consumers observe one State at a time.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
