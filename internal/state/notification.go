// ABOUTME: User-facing notifications derived from notify-worthy lifecycle events.
// ABOUTME: Notifications are mutated only by acknowledgement, never deleted directly.

package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

// Notification is a user-facing alert derived from a task completion, task
// failure, or system alert event. It lives in the bounded notification queue
// until evicted by capacity.
type Notification struct {
	ID           string         `json:"id"`
	Kind         event.Severity `json:"kind"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Timestamp    time.Time      `json:"timestamp"`
	Acknowledged bool           `json:"acknowledged"`
}

var notificationTitles = map[string]string{
	event.KindTaskCompleted: "Task completed",
	event.KindTaskFailed:    "Task failed",
	event.KindSystemAlert:   "System alert",
}

// newNotification builds a Notification from a notify-worthy event.
func newNotification(e event.Event) Notification {
	title, ok := notificationTitles[e.Kind]
	if !ok {
		title = e.Kind
	}
	return Notification{
		ID:        uuid.New().String(),
		Kind:      e.Severity,
		Title:     title,
		Body:      e.Message,
		Timestamp: e.Timestamp,
	}
}
