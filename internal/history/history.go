// Package history keeps a bounded linear undo/redo log of document snapshots.
package history

import "reflect"

// History is an ordered list of snapshots with a cursor on the current one.
// It always holds at least one entry. Not safe for concurrent use.
type History[T any] struct {
	entries  []T
	cursor   int
	equal    func(a, b T) bool
	capacity int
}

// Option configures a History.
type Option[T any] func(*History[T])

// WithEqual replaces the default reflect.DeepEqual comparison used to
// coalesce commits.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(h *History[T]) { h.equal = eq }
}

// WithCapacity bounds the number of entries. Zero means unbounded.
func WithCapacity[T any](n int) Option[T] {
	return func(h *History[T]) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// New creates a history whose only entry is initial.
func New[T any](initial T, opts ...Option[T]) *History[T] {
	h := &History[T]{
		entries: []T{initial},
		equal:   func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Current returns the snapshot under the cursor.
func (h *History[T]) Current() T {
	return h.entries[h.cursor]
}

// Commit records s. With overwrite the history collapses to [s]. Otherwise a
// snapshot equal to the current one is ignored, and any redo branch is
// discarded before s is appended. It reports whether anything changed.
func (h *History[T]) Commit(s T, overwrite bool) bool {
	if overwrite {
		h.Reset(s)
		return true
	}
	if h.equal(h.entries[h.cursor], s) {
		return false
	}
	// Clear the tail so dropped snapshots can be collected.
	var zero T
	for i := h.cursor + 1; i < len(h.entries); i++ {
		h.entries[i] = zero
	}
	h.entries = append(h.entries[:h.cursor+1], s)
	h.cursor = len(h.entries) - 1

	if h.capacity > 0 && len(h.entries) > h.capacity {
		drop := len(h.entries) - h.capacity
		kept := make([]T, h.capacity)
		copy(kept, h.entries[drop:])
		h.entries = kept
		h.cursor -= drop
	}
	return true
}

// Undo moves the cursor back one entry.
func (h *History[T]) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one entry.
func (h *History[T]) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

// Reset discards all entries and starts over from s.
func (h *History[T]) Reset(s T) {
	h.entries = []T{s}
	h.cursor = 0
}

func (h *History[T]) CanUndo() bool { return h.cursor > 0 }

func (h *History[T]) CanRedo() bool { return h.cursor < len(h.entries)-1 }

func (h *History[T]) Len() int { return len(h.entries) }

func (h *History[T]) Cursor() int { return h.cursor }
