package viewer

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"allusion/internal/library"
)

// ErrUnsupported is carried by a failed Source when the item's format cannot
// be displayed at all.
var ErrUnsupported = errors.New("unsupported media format")

// State is the lifecycle of a source resolution.
type State int

const (
	// StatePending means resolution is in flight.
	StatePending State = iota
	// StateReady means the source URI is displayable.
	StateReady
	// StateFailed means resolution failed; Err holds the cause.
	StateFailed
)

// Source is the tri-state result of resolving a displayable URI for an item.
// Failures are values; no error ever crosses the resolver boundary as a panic
// or a returned error.
type Source struct {
	State  State
	Item   library.Item
	URI    string
	Width  int
	Height int
	Err    error
}

// Converter produces a natively displayable file for formats that need it.
// Implementations cache their output; Convert may be called concurrently.
type Converter interface {
	// Needed reports whether path requires conversion before display.
	Needed(path string) bool
	// Convert returns the path of a displayable rendition of path.
	Convert(path string) (string, error)
}

// Resolver asynchronously resolves items to displayable sources. Requests
// are keyed by a generation counter: a new request supersedes any in-flight
// one, and a stale completion is discarded without touching state
// (last-requested-wins).
type Resolver struct {
	conv   Converter
	notify func(Source)

	gen uint64

	mu      sync.Mutex
	current Source
}

// NewResolver creates a Resolver. notify is invoked from a resolution
// goroutine each time the current source settles; it may be nil. conv may be
// nil when no conversion backend is available, in which case formats that
// need it fail typed.
func NewResolver(conv Converter, notify func(Source)) *Resolver {
	return &Resolver{conv: conv, notify: notify}
}

// Current returns the most recent source state.
func (r *Resolver) Current() Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Request starts resolving item, superseding any in-flight request. The
// pending state is visible immediately; the settled state arrives via the
// notify callback and Current.
func (r *Resolver) Request(item library.Item) {
	gen := atomic.AddUint64(&r.gen, 1)

	r.mu.Lock()
	r.current = Source{State: StatePending, Item: item}
	r.mu.Unlock()

	go func() {
		src := r.resolve(item)
		r.mu.Lock()
		if atomic.LoadUint64(&r.gen) != gen {
			// Superseded while resolving; the result must not be applied.
			r.mu.Unlock()
			return
		}
		r.current = src
		r.mu.Unlock()
		if r.notify != nil {
			r.notify(src)
		}
	}()
}

// Preload warms the conversion cache for the given items. It is fire and
// forget: failures are swallowed and never affect the current view.
func (r *Resolver) Preload(items ...library.Item) {
	if r.conv == nil {
		return
	}
	for _, it := range items {
		if it.Kind != library.KindImage || !r.conv.Needed(it.Path) {
			continue
		}
		go func(path string) {
			_, _ = r.conv.Convert(path)
		}(it.Path)
	}
}

// resolve produces the settled source for an item. It never panics; every
// failure is folded into a StateFailed value.
func (r *Resolver) resolve(item library.Item) Source {
	switch item.Kind {
	case library.KindVideo:
		return Source{
			State:  StateReady,
			Item:   item,
			URI:    fileURI(item.Path),
			Width:  item.Width,
			Height: item.Height,
		}
	case library.KindImage:
		path := item.Path
		if r.conv != nil && r.conv.Needed(path) {
			converted, err := r.conv.Convert(path)
			if err != nil {
				return Source{State: StateFailed, Item: item, Err: fmt.Errorf("converting %s: %w", item.Path, err)}
			}
			path = converted
		}
		w, h := item.Width, item.Height
		if w == 0 || h == 0 {
			pw, ph, err := probeSize(path)
			if err != nil {
				return Source{State: StateFailed, Item: item, Err: fmt.Errorf("reading %s: %w", item.Path, err)}
			}
			w, h = pw, ph
		}
		return Source{State: StateReady, Item: item, URI: fileURI(path), Width: w, Height: h}
	default:
		return Source{State: StateFailed, Item: item, Err: fmt.Errorf("%s: %w", item.Path, ErrUnsupported)}
	}
}

// probeSize reads just enough of the file to establish its dimensions.
// Decoders beyond the stdlib set are registered by the convert package.
func probeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// fileURI renders an absolute path as a file:// URI.
func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
