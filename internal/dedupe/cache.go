// ABOUTME: Size-bounded cache of already-seen event IDs.
// ABOUTME: Insertion-ordered with O(1) oldest-first eviction.

package dedupe

import (
	"container/list"
	"sync"
)

// Cache remembers which event IDs a consumer has already handled. The
// reconciled timeline re-delivers the same occurrences on every merge, so
// display loops use the cache to act on each ID once. Capacity-bounded:
// when full, the oldest remembered ID is forgotten first.
type Cache struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // IDs in insertion order, oldest at front
	maxSize int
}

// New creates a cache remembering at most maxSize IDs.
func New(maxSize int) *Cache {
	return &Cache{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Seen atomically checks whether id was handled before and marks it if not.
// Returns true for a duplicate, false for a first sighting.
func (c *Cache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return true
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}
	c.seen[id] = c.order.PushBack(id)
	return false
}

// Len returns the number of remembered IDs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// evictOldest forgets the oldest remembered ID. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.seen, id)
}
