// ABOUTME: Tests for the dashboard state container.
// ABOUTME: Validates bounded logs, overlay merges, snapshots, and notifications.

package state

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeEvent(id, kind string, ts int64) event.Event {
	return event.Event{
		ID:        id,
		Kind:      kind,
		Timestamp: time.UnixMilli(ts).UTC(),
		Severity:  event.DefaultSeverity(kind),
		Message:   kind,
	}
}

func TestStore_EventLogBoundedGrowth(t *testing.T) {
	s := New(testLogger())

	// Dispatch more events than the log holds
	total := EventLogCapacity + 50
	for i := 0; i < total; i++ {
		s.Dispatch(makeEvent(fmt.Sprintf("evt-%d", i), event.KindTaskProgress, int64(i)))
	}

	log := s.EventLog()
	require.Len(t, log, EventLogCapacity)

	// The log holds exactly the most recent events, in arrival order
	for i, e := range log {
		assert.Equal(t, fmt.Sprintf("evt-%d", total-EventLogCapacity+i), e.ID)
	}
}

func TestStore_NotificationQueueBounded(t *testing.T) {
	s := New(testLogger())

	total := NotificationCapacity + 20
	for i := 0; i < total; i++ {
		e := makeEvent(fmt.Sprintf("evt-%d", i), event.KindTaskCompleted, int64(i))
		e.TaskID = fmt.Sprintf("task-%d", i)
		s.Dispatch(e)
	}

	notifications := s.Notifications()
	require.Len(t, notifications, NotificationCapacity)

	// Oldest evicted first: the survivors are the most recent ones
	assert.Equal(t, time.UnixMilli(int64(total-NotificationCapacity)).UTC(), notifications[0].Timestamp)
	assert.Equal(t, time.UnixMilli(int64(total-1)).UTC(), notifications[len(notifications)-1].Timestamp)
}

func TestStore_OnlyNotifyWorthyKindsEnqueue(t *testing.T) {
	s := New(testLogger())

	s.Dispatch(makeEvent("e1", event.KindTaskCompleted, 1))
	s.Dispatch(makeEvent("e2", event.KindTaskFailed, 2))
	s.Dispatch(makeEvent("e3", event.KindSystemAlert, 3))
	s.Dispatch(makeEvent("e4", event.KindTaskProgress, 4))
	s.Dispatch(makeEvent("e5", event.KindAgentHeartbeat, 5))

	assert.Len(t, s.EventLog(), 5)
	assert.Len(t, s.Notifications(), 3)
}

func TestStore_NotificationContent(t *testing.T) {
	s := New(testLogger())

	e := makeEvent("e1", event.KindTaskFailed, 42)
	e.Message = "task task-7 failed: timeout"
	s.Dispatch(e)

	notifications := s.Notifications()
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, event.SeverityError, n.Kind)
	assert.Equal(t, "Task failed", n.Title)
	assert.Equal(t, "task task-7 failed: timeout", n.Body)
	assert.Equal(t, e.Timestamp, n.Timestamp)
	assert.False(t, n.Acknowledged)
}

func TestStore_Acknowledge(t *testing.T) {
	s := New(testLogger())

	s.Dispatch(makeEvent("e1", event.KindTaskCompleted, 1))
	notifications := s.Notifications()
	require.Len(t, notifications, 1)

	// Acknowledging mutates in place, never removes
	assert.True(t, s.Acknowledge(notifications[0].ID))
	notifications = s.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Acknowledged)

	// Unknown IDs are reported
	assert.False(t, s.Acknowledge("no-such-notification"))
}

func TestStore_OverlayMergeIsIdempotent(t *testing.T) {
	s := New(testLogger())

	e := makeEvent("e1", event.KindTaskStarted, 1)
	e.TaskID = "task-1"

	s.Dispatch(e)
	first, ok := s.Resolve("task-1")
	require.True(t, ok)

	// Applying the same partial twice yields the same resolution
	s.Dispatch(e)
	second, ok := s.Resolve("task-1")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestStore_OverlayAccumulatesFieldLevel(t *testing.T) {
	s := New(testLogger())

	// First event carries a progress field
	progress := makeEvent("e1", event.KindTaskProgress, 1)
	progress.TaskID = "task-1"
	progress.Metadata = map[string]any{"progress": 0.5}
	s.Dispatch(progress)

	// A later sparse update must not wipe the earlier field
	started := makeEvent("e2", event.KindTaskStarted, 2)
	started.TaskID = "task-1"
	s.Dispatch(started)

	merged, ok := s.Resolve("task-1")
	require.True(t, ok)
	assert.Equal(t, "in_progress", merged["status"])
	assert.Equal(t, 0.5, merged["progress"])
}

func TestStore_ResolveOverlaysCanonical(t *testing.T) {
	s := New(testLogger())

	s.ApplyTaskSnapshots([]Snapshot{{
		ID: "task-1",
		Fields: map[string]any{
			"status":      "in_progress",
			"description": "summarize the fleet report",
			"priority":    3,
		},
	}})

	// A push update changes status; snapshot fields it does not mention survive
	e := makeEvent("e1", event.KindTaskCompleted, 10)
	e.TaskID = "task-1"
	s.Dispatch(e)

	merged, ok := s.Resolve("task-1")
	require.True(t, ok)
	assert.Equal(t, "completed", merged["status"], "overlay field takes precedence")
	assert.Equal(t, "summarize the fleet report", merged["description"])
	assert.Equal(t, 3, merged["priority"])
}

func TestStore_SnapshotClearsOverlayForThatIDOnly(t *testing.T) {
	s := New(testLogger())

	// Push events create overlays for two tasks
	for _, id := range []string{"task-1", "task-2"} {
		e := makeEvent("evt-"+id, event.KindTaskCompleted, 5)
		e.TaskID = id
		s.Dispatch(e)
	}

	// A fresh snapshot arrives for task-1 with an authoritative status
	s.ApplyTaskSnapshots([]Snapshot{{
		ID:     "task-1",
		Fields: map[string]any{"status": "completed"},
	}})

	// task-1 resolves from the snapshot; its stale overlay is gone
	merged, ok := s.Resolve("task-1")
	require.True(t, ok)
	assert.Equal(t, "completed", merged["status"])

	// task-2's overlay is untouched
	merged, ok = s.Resolve("task-2")
	require.True(t, ok)
	assert.Equal(t, "completed", merged["status"])
}

func TestStore_PushThenPullScenario(t *testing.T) {
	s := New(testLogger())

	// Live completion event arrives first
	e := makeEvent("e1", event.KindTaskCompleted, 100)
	e.TaskID = "t1"
	s.Dispatch(e)

	merged, ok := s.Resolve("t1")
	require.True(t, ok)
	assert.Equal(t, "completed", merged["status"], "overlay answers before the pull lands")

	// The confirming snapshot arrives later
	s.ApplyTaskSnapshots([]Snapshot{{
		ID:     "t1",
		Fields: map[string]any{"status": "completed", "progress": 1.0},
	}})

	merged, ok = s.Resolve("t1")
	require.True(t, ok)
	assert.Equal(t, "completed", merged["status"])
	assert.Equal(t, 1.0, merged["progress"])

	// The overlay for t1 was discarded: a conflicting snapshot now wins outright
	s.ApplyTaskSnapshots([]Snapshot{{
		ID:     "t1",
		Fields: map[string]any{"status": "retrying"},
	}})
	merged, _ = s.Resolve("t1")
	assert.Equal(t, "retrying", merged["status"])
}

func TestStore_EmptySnapshotListIsNoOp(t *testing.T) {
	s := New(testLogger())

	e := makeEvent("e1", event.KindAgentStarted, 1)
	e.AgentID = "agent-1"
	s.Dispatch(e)

	// A failed pull yields no data; existing state must survive
	s.ApplyAgentSnapshots(nil)
	s.ApplyAgentSnapshots([]Snapshot{})

	merged, ok := s.Resolve("agent-1")
	require.True(t, ok)
	assert.Equal(t, "idle", merged["status"])
}

func TestStore_ResolveUnknownID(t *testing.T) {
	s := New(testLogger())

	_, ok := s.Resolve("nothing-here")
	assert.False(t, ok)
}

func TestStore_HeartbeatUpdatesAgentOverlay(t *testing.T) {
	s := New(testLogger())

	e := makeEvent("e1", event.KindAgentHeartbeat, 5000)
	e.AgentID = "agent-1"
	s.Dispatch(e)

	merged, ok := s.Resolve("agent-1")
	require.True(t, ok)
	assert.Equal(t, e.Timestamp, merged["last_heartbeat"])
	_, hasStatus := merged["status"]
	assert.False(t, hasStatus, "heartbeats do not imply a status change")
}

func TestStore_MetadataOutsideAllowlistIgnored(t *testing.T) {
	s := New(testLogger())

	e := makeEvent("e1", event.KindTaskProgress, 1)
	e.TaskID = "task-1"
	e.Metadata = map[string]any{
		"progress":       0.7,
		"internal_debug": "not an entity attribute",
	}
	s.Dispatch(e)

	merged, ok := s.Resolve("task-1")
	require.True(t, ok)
	assert.Equal(t, 0.7, merged["progress"])
	_, leaked := merged["internal_debug"]
	assert.False(t, leaked)
}
