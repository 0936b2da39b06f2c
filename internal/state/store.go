// ABOUTME: Single owned state container for the dashboard: entity cache, partial
// ABOUTME: overlay, bounded event log, and notification queue behind one narrow API.

package state

import (
	"log/slog"
	"sync"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

const (
	// EventLogCapacity bounds the activity feed.
	EventLogCapacity = 100
	// NotificationCapacity bounds the notification queue.
	NotificationCapacity = 50
)

// Snapshot is a full, authoritative entity representation obtained from a
// pull query, flattened to attribute fields.
type Snapshot struct {
	ID     string
	Fields map[string]any
}

// Store holds everything the dashboard knows about the fleet. Canonical
// snapshots come from pull queries; the overlay accumulates sparse field
// updates observed on the push stream until the next snapshot for that
// entity confirms or supersedes them.
//
// All methods are safe for concurrent use. Each mutation runs to completion
// under the store mutex, so interleaved pull and push updates cannot observe
// each other mid-write.
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger

	agents       map[string]map[string]any
	tasks        map[string]map[string]any
	agentOverlay map[string]map[string]any
	taskOverlay  map[string]map[string]any

	events        *ring[event.Event]
	notifications *ring[Notification]
}

// New creates an empty store with the standard capacity bounds.
func New(logger *slog.Logger) *Store {
	return &Store{
		logger:        logger,
		agents:        make(map[string]map[string]any),
		tasks:         make(map[string]map[string]any),
		agentOverlay:  make(map[string]map[string]any),
		taskOverlay:   make(map[string]map[string]any),
		events:        newRing[event.Event](EventLogCapacity),
		notifications: newRing[Notification](NotificationCapacity),
	}
}

// Dispatch routes one normalized event into the store: merges its relevant
// fields into the agent/task overlays, appends it to the bounded event log,
// and enqueues a notification for notify-worthy kinds. Its only side effects
// are on those three sinks.
func (s *Store) Dispatch(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.AgentID != "" {
		mergeOverlay(s.agentOverlay, e.AgentID, agentOverlayFields(e))
	}
	if e.TaskID != "" {
		mergeOverlay(s.taskOverlay, e.TaskID, taskOverlayFields(e))
	}

	s.events.push(e)

	if event.NotifyWorthy(e.Kind) {
		s.notifications.push(newNotification(e))
	}
}

// Resolve returns the merged view of an entity: canonical snapshot fields
// with any pending overlay fields applied on top, field by field. The second
// return is false when the store knows nothing about the ID.
func (s *Store) Resolve(entityID string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if merged, ok := resolveFrom(s.agents, s.agentOverlay, entityID); ok {
		return merged, true
	}
	return resolveFrom(s.tasks, s.taskOverlay, entityID)
}

// ApplyAgentSnapshots accepts a freshly pulled agent list. Each snapshot
// replaces the canonical entry for its ID and discards that ID's overlay,
// which the snapshot now supersedes. Other overlays are untouched, and an
// empty list is a no-op.
func (s *Store) ApplyAgentSnapshots(snapshots []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applySnapshots(s.agents, s.agentOverlay, snapshots)
}

// ApplyTaskSnapshots is the task-side counterpart of ApplyAgentSnapshots.
func (s *Store) ApplyTaskSnapshots(snapshots []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	applySnapshots(s.tasks, s.taskOverlay, snapshots)
}

// EventLog returns the bounded activity feed in arrival order, oldest first.
func (s *Store) EventLog() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.snapshot()
}

// Notifications returns the notification queue in arrival order, oldest first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications.snapshot()
}

// Acknowledge marks the notification with the given ID as acknowledged.
// Returns false if no such notification is queued.
func (s *Store) Acknowledge(notificationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	s.notifications.each(func(n *Notification) bool {
		if n.ID == notificationID {
			n.Acknowledged = true
			found = true
			return true
		}
		return false
	})
	return found
}

// resolveFrom merges canonical fields with overlay fields for one ID.
// An entity is resolvable from either layer alone: push events can describe
// an entity before its first snapshot arrives.
func resolveFrom(canonical, overlay map[string]map[string]any, id string) (map[string]any, bool) {
	snap, haveSnap := canonical[id]
	part, havePart := overlay[id]
	if !haveSnap && !havePart {
		return nil, false
	}

	merged := make(map[string]any, len(snap)+len(part))
	for k, v := range snap {
		merged[k] = v
	}
	for k, v := range part {
		merged[k] = v
	}
	return merged, true
}

// mergeOverlay accumulates fields into the overlay entry for id, last write
// wins per field. The entry as a whole is never replaced, so fields learned
// from earlier events survive later sparse updates.
func mergeOverlay(overlay map[string]map[string]any, id string, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	entry, ok := overlay[id]
	if !ok {
		entry = make(map[string]any, len(fields))
		overlay[id] = entry
	}
	for k, v := range fields {
		entry[k] = v
	}
}

func applySnapshots(canonical, overlay map[string]map[string]any, snapshots []Snapshot) {
	for _, snap := range snapshots {
		if snap.ID == "" {
			continue
		}
		fields := make(map[string]any, len(snap.Fields))
		for k, v := range snap.Fields {
			fields[k] = v
		}
		canonical[snap.ID] = fields
		delete(overlay, snap.ID)
	}
}
