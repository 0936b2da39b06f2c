// ABOUTME: Normalizes raw transport frames into canonical Event records.
// ABOUTME: Unknown kinds and malformed payloads are dropped, never propagated as errors.

package event

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frame is the wire shape of a single push message: a kind discriminator and
// an opaque payload. The transport layer hands frames to the normalizer
// without interpreting the payload.
type Frame struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// framePayload is the superset of fields a lifecycle payload may carry.
type framePayload struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	AgentID   string         `json:"agent_id"`
	TaskID    string         `json:"task_id"`
	Metadata  map[string]any `json:"metadata"`
}

// Normalizer maps transport frames onto canonical Events. Frames outside the
// recognized taxonomy or with unparseable payloads are logged and dropped so
// a single bad frame never disturbs the dispatch path.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer that logs dropped frames to logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a frame into an Event. It returns nil when the frame
// should be dropped: unrecognized kind, or a payload that cannot be parsed.
func (n *Normalizer) Normalize(f Frame) *Event {
	if !Recognized(f.Kind) {
		n.logger.Debug("dropping frame with unrecognized kind", "kind", f.Kind)
		return nil
	}

	var p framePayload
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			n.logger.Warn("dropping malformed frame",
				"kind", f.Kind,
				"error", err,
			)
			return nil
		}
	}

	e := &Event{
		ID:       p.ID,
		Kind:     f.Kind,
		Severity: p.Severity,
		Message:  p.Message,
		AgentID:  p.AgentID,
		TaskID:   p.TaskID,
		Metadata: p.Metadata,
	}

	// Events without a server-assigned ID can still be displayed, but they
	// cannot be deduplicated against the polled history.
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	if !validSeverity(e.Severity) {
		e.Severity = DefaultSeverity(f.Kind)
	}

	e.Timestamp = parseTimestamp(p.Timestamp)

	if e.Message == "" {
		e.Message = defaultMessage(e)
	}

	return e
}

// parseTimestamp accepts RFC3339 (with or without sub-second precision) and
// falls back to the arrival time when the payload carries none.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}

// defaultMessage builds a human-readable message for payloads that omit one,
// e.g. "task completed (task-42)".
func defaultMessage(e *Event) string {
	verb := strings.ReplaceAll(e.Kind, ".", " ")
	switch {
	case e.TaskID != "":
		return fmt.Sprintf("%s (%s)", verb, e.TaskID)
	case e.AgentID != "":
		return fmt.Sprintf("%s (%s)", verb, e.AgentID)
	}
	return verb
}
