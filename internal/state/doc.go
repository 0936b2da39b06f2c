// Package state holds the dashboard's in-memory view of the fleet.
//
// The view is fed by two racing sources: authoritative pull snapshots and
// partial push updates. Canonical entities and the partial-update overlay are
// kept separate; Resolve merges them on read, with overlay fields taking
// precedence. An accepted snapshot for an entity discards that entity's
// overlay, since the snapshot already reflects everything the overlay knew.
//
// The event log and notification queue are fixed-capacity rings that evict
// oldest-first, so memory stays bounded no matter how long a session runs.
package state
