// ABOUTME: Merges polled event history with live pushed events into one view.
// ABOUTME: Pure function: dedup by ID, push wins on collision, sorted newest first.

package reconcile

import (
	"slices"
	"strings"

	"github.com/fleetdeck/fleetdeck/internal/event"
)

// Merge combines events obtained from the pull API with events received on
// the push stream into a single deduplicated timeline, newest first.
//
// On an ID collision the pushed record wins, since it reflects the most
// recent live occurrence, unless the pulled record carries a strictly later
// timestamp, in which case the pulled one is kept. Duplicate IDs within one
// input keep the record with the latest timestamp. Neither input slice is
// mutated, and either may be empty or nil. The result is deterministic for a
// given pair of inputs regardless of the inputs' internal ordering.
func Merge(pulled, pushed []event.Event) []event.Event {
	byID := make(map[string]event.Event, len(pulled)+len(pushed))
	for _, e := range pulled {
		if existing, ok := byID[e.ID]; ok && existing.Timestamp.After(e.Timestamp) {
			continue
		}
		byID[e.ID] = e
	}
	for _, e := range pushed {
		if existing, ok := byID[e.ID]; ok && existing.Timestamp.After(e.Timestamp) {
			continue
		}
		byID[e.ID] = e
	}

	merged := make([]event.Event, 0, len(byID))
	for _, e := range byID {
		merged = append(merged, e)
	}

	slices.SortFunc(merged, func(a, b event.Event) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		// Equal timestamps: order by ID so the output is stable.
		return strings.Compare(a.ID, b.ID)
	})

	return merged
}
