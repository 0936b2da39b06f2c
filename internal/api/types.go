// ABOUTME: Entity and response types returned by the orchestrator REST API.
// ABOUTME: Each entity flattens to attribute fields for the dashboard's entity cache.

package api

import (
	"time"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

// Agent is a canonical agent snapshot as returned by the orchestrator.
type Agent struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Capabilities  []string   `json:"capabilities,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
}

// Fields flattens the snapshot to the attribute map used by the entity cache.
func (a Agent) Fields() map[string]any {
	fields := map[string]any{
		"name":       a.Name,
		"type":       a.Type,
		"status":     a.Status,
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
	}
	if len(a.Capabilities) > 0 {
		fields["capabilities"] = a.Capabilities
	}
	if a.LastHeartbeat != nil {
		fields["last_heartbeat"] = *a.LastHeartbeat
	}
	return fields
}

// Task is a canonical task snapshot as returned by the orchestrator.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Status      string     `json:"status"`
	AgentID     string     `json:"agent_id,omitempty"`
	Progress    float64    `json:"progress,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Fields flattens the snapshot to the attribute map used by the entity cache.
func (t Task) Fields() map[string]any {
	fields := map[string]any{
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
		"progress":    t.Progress,
		"created_at":  t.CreatedAt,
	}
	if t.AgentID != "" {
		fields["agent_id"] = t.AgentID
	}
	if t.StartedAt != nil {
		fields["started_at"] = *t.StartedAt
	}
	if t.CompletedAt != nil {
		fields["completed_at"] = *t.CompletedAt
	}
	return fields
}

// EventList is the response from GET /api/events. Polled events use the same
// canonical shape as pushed ones, keyed by the same IDs.
type EventList struct {
	Events []event.Event `json:"events"`
	Total  int           `json:"total"`
}

// ComponentHealth is one component's entry in the health summary.
type ComponentHealth struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// HealthReport is the response from GET /health.
type HealthReport struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Components []ComponentHealth `json:"components,omitempty"`
}
