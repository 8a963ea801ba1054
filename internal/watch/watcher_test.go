package watch

import (
	"os"
	"path/filepath"
	"testing"

	"allusion/internal/library"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReconciler struct{ calls int }

func (r *countingReconciler) Reconcile() int {
	r.calls++
	return 0
}

// newTestWatcher builds a Watcher whose events are driven by hand through
// handleEvent, keeping the tests independent of inotify timing.
func newTestWatcher(t *testing.T, list *library.List, rec Reconciler, onChange OnChange) *Watcher {
	t.Helper()
	w, err := New(list, rec, nil, onChange)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestRemoveEventDropsItem(t *testing.T) {
	item := library.NewItem("/pics/gone.jpg")
	list := library.NewList(item, library.NewItem("/pics/stays.jpg"))
	rec := &countingReconciler{}
	var changed int

	w := newTestWatcher(t, list, rec, func() { changed++ })
	w.handleEvent(fsnotify.Event{Name: "/pics/gone.jpg", Op: fsnotify.Remove})

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, -1, list.IndexOfPath("/pics/gone.jpg"))
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 1, changed)
}

func TestRenameEventDropsItem(t *testing.T) {
	list := library.NewList(library.NewItem("/pics/moved.jpg"))
	rec := &countingReconciler{}

	w := newTestWatcher(t, list, rec, nil)
	w.handleEvent(fsnotify.Event{Name: "/pics/moved.jpg", Op: fsnotify.Rename})

	assert.Zero(t, list.Len())
	assert.Equal(t, 1, rec.calls)
}

func TestRemoveEventForUnknownPathIsIgnored(t *testing.T) {
	list := library.NewList(library.NewItem("/pics/a.jpg"))
	rec := &countingReconciler{}
	var changed int

	w := newTestWatcher(t, list, rec, func() { changed++ })
	w.handleEvent(fsnotify.Event{Name: "/pics/never-listed.jpg", Op: fsnotify.Remove})

	assert.Equal(t, 1, list.Len())
	assert.Zero(t, rec.calls)
	assert.Zero(t, changed)
}

func TestCreateEventAppendsViewableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.png")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	list := library.NewList()
	var changed int

	w := newTestWatcher(t, list, nil, func() { changed++ })
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	require.Equal(t, 1, list.Len())
	item, _ := list.At(0)
	assert.Equal(t, path, item.Path)
	assert.Equal(t, library.KindImage, item.Kind)
	assert.Equal(t, 1, changed)
}

func TestCreateEventSkipsUnwantedFiles(t *testing.T) {
	dir := t.TempDir()

	unsupported := filepath.Join(dir, "notes.txt")
	empty := filepath.Join(dir, "empty.png")
	missing := filepath.Join(dir, "missing.png")
	require.NoError(t, os.WriteFile(unsupported, []byte("data"), 0644))
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	list := library.NewList()
	w := newTestWatcher(t, list, nil, nil)

	w.handleEvent(fsnotify.Event{Name: unsupported, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: empty, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: missing, Op: fsnotify.Create})

	assert.Zero(t, list.Len())
}

func TestCreateEventDeduplicatesKnownPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known.png")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	list := library.NewList(library.NewItem(path))
	w := newTestWatcher(t, list, nil, nil)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	assert.Equal(t, 1, list.Len())
}
