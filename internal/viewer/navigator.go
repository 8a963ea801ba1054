// Package viewer implements the slide-mode engine: navigation over an
// ordered item list, zoom/pan transform math and asynchronous resolution of
// displayable sources.
package viewer

import (
	"sync"

	"allusion/internal/library"

	"github.com/google/uuid"
)

// Navigator tracks the current position in an externally owned item list.
// Navigation is total: every call succeeds and leaves the index inside
// [0, Len-1], clamping at both ends with no wraparound.
type Navigator struct {
	mu    sync.Mutex
	list  *library.List
	index int
}

// NewNavigator creates a Navigator over list, positioned at the first item.
func NewNavigator(list *library.List) *Navigator {
	return &Navigator{list: list}
}

// Index returns the current index. Zero when the list is empty.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clampLocked()
}

// Current returns the current item, or false when the list is empty.
func (n *Navigator) Current() (library.Item, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.list.At(n.clampLocked())
}

// Next advances by one, clamped at the last item, and returns the new index.
// At the last index it is a no-op.
func (n *Navigator) Next() int {
	return n.step(1)
}

// Prev steps back by one, clamped at the first item, and returns the new index.
func (n *Navigator) Prev() int {
	return n.step(-1)
}

// Skip moves by delta in either direction, clamped into range.
func (n *Navigator) Skip(delta int) int {
	return n.step(delta)
}

// First jumps to the first item.
func (n *Navigator) First() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = 0
	return n.index
}

// Last jumps to the last item.
func (n *Navigator) Last() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = n.list.Len() - 1
	return n.clampLocked()
}

// SetIndex moves to i, clamped into range, and returns the resulting index.
func (n *Navigator) SetIndex(i int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = i
	return n.clampLocked()
}

// JumpTo positions the navigator on the item with the given id. An id that is
// not in the list leaves the viewport untouched and returns false.
func (n *Navigator) JumpTo(id uuid.UUID) bool {
	idx := n.list.IndexOf(id)
	if idx < 0 {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = idx
	return true
}

// Reconcile clamps the index back into range after the underlying list has
// been mutated, and returns the resulting index. Removing the current item
// lands on the item that took its place, or the new last item.
func (n *Navigator) Reconcile() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clampLocked()
}

func (n *Navigator) step(delta int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = n.clampLocked() + delta
	return n.clampLocked()
}

// clampLocked forces index into [0, Len-1] and returns it. The caller must
// hold n.mu.
func (n *Navigator) clampLocked() int {
	last := n.list.Len() - 1
	if n.index > last {
		n.index = last
	}
	if n.index < 0 {
		n.index = 0
	}
	return n.index
}
