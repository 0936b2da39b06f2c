// ABOUTME: Derives sparse overlay field updates from lifecycle events.
// ABOUTME: Only a fixed subset of attributes may be written from the push stream.

package state

import "github.com/fleetdeck/fleetdeck/internal/event"

// Status values implied by lifecycle kinds. These mirror the orchestrator's
// own status enums so overlay values line up with pulled snapshots.
var agentStatusForKind = map[string]string{
	event.KindAgentSpawned: "starting",
	event.KindAgentStarted: "idle",
	event.KindAgentStopped: "offline",
	event.KindAgentFailed:  "failed",
}

var taskStatusForKind = map[string]string{
	event.KindTaskCreated:   "pending",
	event.KindTaskAssigned:  "queued",
	event.KindTaskStarted:   "in_progress",
	event.KindTaskCompleted: "completed",
	event.KindTaskFailed:    "failed",
	event.KindTaskCancelled: "cancelled",
}

// Attributes the push stream is allowed to touch. Anything else in the event
// metadata is display detail, not entity state, and stays out of the overlay.
var agentAttributes = map[string]bool{
	"status":         true,
	"name":           true,
	"type":           true,
	"capabilities":   true,
	"last_heartbeat": true,
}

var taskAttributes = map[string]bool{
	"status":      true,
	"description": true,
	"priority":    true,
	"progress":    true,
	"agent_id":    true,
	"error":       true,
}

// agentOverlayFields extracts the agent attribute updates an event implies:
// the status its kind encodes, the heartbeat time for heartbeats, and any
// whitelisted attributes carried in the metadata.
func agentOverlayFields(e event.Event) map[string]any {
	fields := make(map[string]any)
	if status, ok := agentStatusForKind[e.Kind]; ok {
		fields["status"] = status
	}
	if e.Kind == event.KindAgentHeartbeat {
		fields["last_heartbeat"] = e.Timestamp
	}
	copyAttributes(fields, e.Metadata, agentAttributes)
	return fields
}

// taskOverlayFields is the task-side counterpart of agentOverlayFields.
func taskOverlayFields(e event.Event) map[string]any {
	fields := make(map[string]any)
	if status, ok := taskStatusForKind[e.Kind]; ok {
		fields["status"] = status
	}
	if e.AgentID != "" {
		fields["agent_id"] = e.AgentID
	}
	copyAttributes(fields, e.Metadata, taskAttributes)
	return fields
}

// copyAttributes copies whitelisted metadata keys into fields. Metadata wins
// over kind-implied values: it is the more specific statement.
func copyAttributes(fields map[string]any, metadata map[string]any, allowed map[string]bool) {
	for k, v := range metadata {
		if allowed[k] {
			fields[k] = v
		}
	}
}
