// Package watch keeps the item list in sync with filesystem changes under
// the library root.
package watch

import (
	"context"
	"fmt"
	"os"

	"allusion/internal/library"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Reconciler is notified after the list mutated so a viewport index can be
// clamped back into range.
type Reconciler interface {
	Reconcile() int
}

// OnChange is called after the watcher mutated the list.
type OnChange func()

// Watcher mirrors filesystem events into a library.List: removed files leave
// the list, newly created viewable files join it.
type Watcher struct {
	list     *library.List
	rec      Reconciler
	log      *logrus.Logger
	onChange OnChange

	fsw *fsnotify.Watcher
}

// New creates a Watcher over list. rec and onChange may be nil; log falls
// back to the standard logger.
func New(list *library.List, rec Reconciler, log *logrus.Logger, onChange OnChange) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	return &Watcher{list: list, rec: rec, log: log, onChange: onChange, fsw: fsw}, nil
}

// Add registers a directory to watch.
func (w *Watcher) Add(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watcher error")
		}
	}
}

// handleEvent applies a single filesystem event to the list.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		if !w.list.RemovePath(ev.Name) {
			return
		}
		w.log.WithField("path", ev.Name).Info("item removed from library")
		if w.rec != nil {
			w.rec.Reconcile()
		}
		w.notify()
	case ev.Op.Has(fsnotify.Create):
		if library.KindOf(ev.Name) == library.KindUnsupported {
			return
		}
		info, err := os.Stat(ev.Name)
		if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
			return
		}
		if w.list.IndexOfPath(ev.Name) >= 0 {
			return
		}
		w.list.Append(library.NewItem(ev.Name))
		w.log.WithField("path", ev.Name).Info("item added to library")
		w.notify()
	}
}

func (w *Watcher) notify() {
	if w.onChange != nil {
		w.onChange()
	}
}
