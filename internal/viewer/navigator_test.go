package viewer

import (
	"testing"

	"allusion/internal/library"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList(paths ...string) *library.List {
	items := make([]library.Item, len(paths))
	for i, p := range paths {
		items[i] = library.NewItem(p)
	}
	return library.NewList(items...)
}

func TestNavigatorClamping(t *testing.T) {
	list := newTestList("/a.jpg", "/b.jpg", "/c.jpg")
	nav := NewNavigator(list)

	nav.SetIndex(1)
	assert.Equal(t, 0, nav.Prev())
	assert.Equal(t, 0, nav.Prev(), "prev at the first item stays put")
	assert.Equal(t, 1, nav.Next())

	nav.Last()
	assert.Equal(t, 2, nav.Next(), "next at the last item stays put")

	assert.Equal(t, 0, nav.Skip(-100))
	assert.Equal(t, 2, nav.Skip(100))
}

func TestNavigatorCurrent(t *testing.T) {
	list := newTestList("/a.jpg", "/b.jpg")
	nav := NewNavigator(list)

	item, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, "/a.jpg", item.Path)

	nav.Next()
	item, ok = nav.Current()
	require.True(t, ok)
	assert.Equal(t, "/b.jpg", item.Path)
}

func TestNavigatorEmptyList(t *testing.T) {
	nav := NewNavigator(library.NewList())

	assert.Equal(t, 0, nav.Index())
	assert.Equal(t, 0, nav.Next())
	assert.Equal(t, 0, nav.Prev())
	_, ok := nav.Current()
	assert.False(t, ok)
}

func TestNavigatorJumpTo(t *testing.T) {
	list := newTestList("/a.jpg", "/b.jpg", "/c.jpg")
	nav := NewNavigator(list)

	target, ok := list.At(2)
	require.True(t, ok)

	assert.True(t, nav.JumpTo(target.ID))
	assert.Equal(t, 2, nav.Index())

	assert.False(t, nav.JumpTo(uuid.New()), "unknown id leaves the position untouched")
	assert.Equal(t, 2, nav.Index())
}

func TestNavigatorReconcile(t *testing.T) {
	list := newTestList("/a.jpg", "/b.jpg", "/c.jpg")
	nav := NewNavigator(list)

	t.Run("removing a middle item lands on its successor", func(t *testing.T) {
		nav.SetIndex(1)
		current, ok := nav.Current()
		require.True(t, ok)
		require.True(t, list.Remove(current.ID))

		assert.Equal(t, 1, nav.Reconcile())
		item, ok := nav.Current()
		require.True(t, ok)
		assert.Equal(t, "/c.jpg", item.Path)
	})

	t.Run("removing the last item clamps to the new last", func(t *testing.T) {
		nav.Last()
		current, ok := nav.Current()
		require.True(t, ok)
		require.True(t, list.Remove(current.ID))

		assert.Equal(t, 0, nav.Reconcile())
		item, ok := nav.Current()
		require.True(t, ok)
		assert.Equal(t, "/a.jpg", item.Path)
	})

	t.Run("emptying the list reconciles to zero", func(t *testing.T) {
		current, ok := nav.Current()
		require.True(t, ok)
		require.True(t, list.Remove(current.ID))

		assert.Equal(t, 0, nav.Reconcile())
		_, ok = nav.Current()
		assert.False(t, ok)
	})
}
