package world

import "errors"

// ErrHeapFull is returned when a pool has no free slot left.
var ErrHeapFull = errors.New("heap full")

// Heap is a fixed-capacity object pool. Slot numbers are stable for the life of an object and
// double as its ID; the active list keeps allocation order, which is the order every per-tick
// loop walks.
type Heap[T any] struct {
	slots  []T
	used   []bool
	active []int
}

// NewHeap returns an empty pool holding at most capacity objects.
func NewHeap[T any](capacity int) *Heap[T] {
	return &Heap[T]{
		slots: make([]T, capacity),
		used:  make([]bool, capacity),
	}
}

// Allocate zeroes the lowest free slot and returns it with its ID.
func (h *Heap[T]) Allocate() (*T, int, error) {
	for id := range h.used {
		if h.used[id] {
			continue
		}
		var zero T
		h.slots[id] = zero
		h.used[id] = true
		h.active = append(h.active, id)
		return &h.slots[id], id, nil
	}
	return nil, -1, ErrHeapFull
}

// Free releases the slot with the given ID. Unused IDs are ignored.
func (h *Heap[T]) Free(id int) {
	if id < 0 || id >= len(h.used) || !h.used[id] {
		return
	}
	h.used[id] = false
	for i, a := range h.active {
		if a == id {
			h.active = append(h.active[:i], h.active[i+1:]...)
			break
		}
	}
}

// Count returns the number of live objects.
func (h *Heap[T]) Count() int { return len(h.active) }

// Cap returns the pool capacity.
func (h *Heap[T]) Cap() int { return len(h.slots) }

// Ptr returns the i'th live object in allocation order.
func (h *Heap[T]) Ptr(i int) *T {
	return &h.slots[h.active[i]]
}

// ByID returns the object in slot id, or nil when the slot is free.
func (h *Heap[T]) ByID(id int) *T {
	if id < 0 || id >= len(h.used) || !h.used[id] {
		return nil
	}
	return &h.slots[id]
}

// IDs returns a snapshot of the live IDs in allocation order.
func (h *Heap[T]) IDs() []int {
	out := make([]int, len(h.active))
	copy(out, h.active)
	return out
}

// Items returns a snapshot of the live objects in allocation order. Freeing objects while
// ranging over the snapshot is safe.
func (h *Heap[T]) Items() []*T {
	out := make([]*T, len(h.active))
	for i, id := range h.active {
		out[i] = &h.slots[id]
	}
	return out
}

// Clear frees every slot.
func (h *Heap[T]) Clear() {
	var zero T
	for i := range h.slots {
		h.slots[i] = zero
		h.used[i] = false
	}
	h.active = h.active[:0]
}
