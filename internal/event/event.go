// ABOUTME: Canonical event record and kind taxonomy for the fleet lifecycle stream.
// ABOUTME: Events are immutable once created; identity is the ID field regardless of source.

package event

import "time"

// Severity classifies an event for display and notification purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Recognized event kinds. The orchestrator may emit other kinds; anything
// not listed here is dropped by the normalizer.
const (
	KindAgentSpawned   = "agent.spawned"
	KindAgentStarted   = "agent.started"
	KindAgentStopped   = "agent.stopped"
	KindAgentFailed    = "agent.failed"
	KindAgentHeartbeat = "agent.heartbeat"
	KindTaskCreated    = "task.created"
	KindTaskAssigned   = "task.assigned"
	KindTaskStarted    = "task.started"
	KindTaskProgress   = "task.progress"
	KindTaskCompleted  = "task.completed"
	KindTaskFailed     = "task.failed"
	KindTaskCancelled  = "task.cancelled"
	KindSystemAlert    = "system.alert"
)

// Event is the canonical shape every lifecycle occurrence is normalized to,
// whether it arrived over the push stream or from a polled history query.
// Two events with the same ID are the same logical occurrence.
type Event struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	AgentID   string         `json:"agent_id,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// recognizedKinds maps each known kind to its default severity.
var recognizedKinds = map[string]Severity{
	KindAgentSpawned:   SeverityInfo,
	KindAgentStarted:   SeveritySuccess,
	KindAgentStopped:   SeverityInfo,
	KindAgentFailed:    SeverityError,
	KindAgentHeartbeat: SeverityInfo,
	KindTaskCreated:    SeverityInfo,
	KindTaskAssigned:   SeverityInfo,
	KindTaskStarted:    SeverityInfo,
	KindTaskProgress:   SeverityInfo,
	KindTaskCompleted:  SeveritySuccess,
	KindTaskFailed:     SeverityError,
	KindTaskCancelled:  SeverityWarning,
	KindSystemAlert:    SeverityWarning,
}

// notifyKinds are the kinds that produce a user-facing notification when
// dispatched. Everything else only lands in the activity log.
var notifyKinds = map[string]bool{
	KindTaskCompleted: true,
	KindTaskFailed:    true,
	KindSystemAlert:   true,
}

// Recognized reports whether kind is part of the known taxonomy.
func Recognized(kind string) bool {
	_, ok := recognizedKinds[kind]
	return ok
}

// DefaultSeverity returns the severity assigned to a kind when the payload
// does not carry an explicit one. Unknown kinds default to info.
func DefaultSeverity(kind string) Severity {
	if sev, ok := recognizedKinds[kind]; ok {
		return sev
	}
	return SeverityInfo
}

// NotifyWorthy reports whether events of this kind should be surfaced as
// notifications in addition to the activity log.
func NotifyWorthy(kind string) bool {
	return notifyKinds[kind]
}

// validSeverity reports whether s is one of the four severity levels.
func validSeverity(s Severity) bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}
