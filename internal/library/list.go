package library

import (
	"sync"

	"github.com/google/uuid"
)

// List is an ordered, externally mutable collection of Items. It is safe for
// concurrent use; the viewer's navigator holds an index into it and
// reconciles after mutations.
type List struct {
	mu    sync.RWMutex
	items []Item
}

// NewList creates a List seeded with the given items.
func NewList(items ...Item) *List {
	l := &List{}
	l.items = append(l.items, items...)
	return l
}

// Len returns the number of items.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the item at index i, or false if i is out of range.
func (l *List) At(i int) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		return Item{}, false
	}
	return l.items[i], true
}

// Items returns a copy of the current item slice.
func (l *List) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// IndexOf returns the index of the item with the given id, or -1.
func (l *List) IndexOf(id uuid.UUID) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// IndexOfPath returns the index of the item with the given path, or -1.
func (l *List) IndexOfPath(path string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, it := range l.items {
		if it.Path == path {
			return i
		}
	}
	return -1
}

// Append adds items to the end of the list.
func (l *List) Append(items ...Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

// Remove deletes the item with the given id, preserving order.
// It reports whether an item was removed.
func (l *List) Remove(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemovePath deletes the first item with the given path, preserving order.
// It reports whether an item was removed.
func (l *List) RemovePath(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.Path == path {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}
