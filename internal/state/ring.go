// ABOUTME: Fixed-capacity ring buffer with oldest-first eviction.
// ABOUTME: Backs the bounded event log and notification queue.

package state

// ring is an insertion-ordered, capacity-limited sequence. Pushing onto a
// full ring overwrites the oldest entry in O(1). The capacity bound is
// structural: the backing slice never grows past it.
type ring[T any] struct {
	items []T
	start int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{items: make([]T, capacity)}
}

// push appends item, evicting the oldest entry if the ring is full.
func (r *ring[T]) push(item T) {
	if r.count < len(r.items) {
		r.items[(r.start+r.count)%len(r.items)] = item
		r.count++
		return
	}
	r.items[r.start] = item
	r.start = (r.start + 1) % len(r.items)
}

// snapshot returns the current contents in insertion order, oldest first.
func (r *ring[T]) snapshot() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(r.start+i)%len(r.items)]
	}
	return out
}

func (r *ring[T]) len() int {
	return r.count
}

// each visits entries oldest first, handing out a pointer so callers can
// mutate in place. Iteration stops when fn returns true.
func (r *ring[T]) each(fn func(*T) bool) {
	for i := 0; i < r.count; i++ {
		if fn(&r.items[(r.start+i)%len(r.items)]) {
			return
		}
	}
}
