package ui

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"allusion/internal/config"
	"allusion/internal/library"
	"allusion/internal/prefs"
	"allusion/internal/service"
	"allusion/internal/slideshow"
	"allusion/internal/viewer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/sirupsen/logrus"
)

const thumbnailWindow = 7 // thumbnails shown in the strip, odd for a center

// App wires the viewer engine, the item list and the storage services into
// the Fyne front end. All state is owned here and passed down explicitly.
type App struct {
	app fyne.App
	win fyne.Window

	cfg      *config.Config
	log      *logrus.Logger
	list     *library.List
	nav      *viewer.Navigator
	engine   *viewer.Engine
	resolver *viewer.Resolver
	shows    *slideshow.Manager
	thumbs   *ThumbnailManager
	svc      *service.Service
	meta     *service.Metadata
	prefs    *prefs.Store

	slideView     *SlideView
	fallbackLabel *widget.Label
	fallbackBox   *fyne.Container
	statusLabel   *widget.Label
	thumbStrip    *fyne.Container
	pauseAction   *widget.ToolbarAction
	toolbar       *widget.Toolbar

	// pendingAnchor holds the thumbnail rectangle to animate from once the
	// next source is ready.
	pendingAnchor *viewer.Rect

	cancel context.CancelFunc
}

// NewApp creates the application. conv may be nil to disable conversion.
func NewApp(cfg *config.Config, list *library.List, svc *service.Service, meta *service.Metadata, conv viewer.Converter, store *prefs.Store, log *logrus.Logger) *App {
	a := &App{
		app:   app.NewWithID("io.allusion.viewer"),
		cfg:   cfg,
		log:   log,
		list:  list,
		svc:   svc,
		meta:  meta,
		prefs: store,
	}
	a.nav = viewer.NewNavigator(list)
	a.engine = viewer.NewEngine()
	a.engine.SetLimits(cfg.Zoom.Floor, cfg.Zoom.Ceiling)
	a.resolver = viewer.NewResolver(conv, func(src viewer.Source) {
		fyne.Do(func() { a.applySource(src) })
	})
	a.shows = slideshow.NewManager(time.Duration(cfg.Slideshow.IntervalSeconds) * time.Second)
	a.shows.SetPaused(store.Bool(prefs.KeySlideshowPaused, true))
	a.thumbs = NewThumbnailManager(meta, func(msg string) { log.Warn(msg) })
	return a
}

// Navigator exposes the navigation controller, e.g. for the watcher.
func (a *App) Navigator() *viewer.Navigator { return a.nav }

// Run builds the window and blocks until it closes.
func (a *App) Run() {
	a.win = a.app.NewWindow("Allusion")
	a.win.Resize(fyne.NewSize(1200, 800))
	a.win.SetMaster()

	a.buildUI()
	a.buildKeyboardShortcuts()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.shows.Run(ctx, func() {
		fyne.Do(a.advanceSlideshow)
	})
	a.win.SetOnClosed(func() {
		cancel()
		if err := a.prefs.SetBool(prefs.KeySlideshowPaused, a.shows.IsPaused()); err != nil {
			a.log.WithError(err).Warn("persisting slideshow state")
		}
	})

	a.loadCurrent()
	a.win.ShowAndRun()
}

func (a *App) buildUI() {
	a.slideView = NewSlideView(a.engine, func() {
		a.shows.Pause(false)
		a.refreshToolbar()
	})
	a.fallbackLabel = widget.NewLabel("")
	a.fallbackLabel.Alignment = fyne.TextAlignCenter
	openBtn := widget.NewButtonWithIcon("Open externally", theme.ComputerIcon(), a.openCurrentExternally)
	a.fallbackBox = container.NewVBox(layout.NewSpacer(), a.fallbackLabel, container.NewCenter(openBtn), layout.NewSpacer())
	a.fallbackBox.Hide()

	a.statusLabel = widget.NewLabel("Ready")
	a.thumbStrip = container.NewHBox()

	a.pauseAction = widget.NewToolbarAction(a.playPauseIcon(), a.togglePlay)
	a.toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaFastRewindIcon(), func() { a.nav.First(); a.loadCurrent() }),
		widget.NewToolbarAction(theme.NavigateBackIcon(), func() { a.nav.Prev(); a.loadCurrent() }),
		widget.NewToolbarAction(theme.NavigateNextIcon(), func() { a.nav.Next(); a.loadCurrent() }),
		widget.NewToolbarAction(theme.MediaFastForwardIcon(), func() { a.nav.Last(); a.loadCurrent() }),
		a.pauseAction,
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.DeleteIcon(), a.deleteCurrent),
	)

	center := container.NewStack(a.slideView, a.fallbackBox)
	bottom := container.NewVBox(a.thumbStrip, widget.NewSeparator(), a.statusLabel)
	a.win.SetContent(container.NewBorder(a.toolbar, bottom, nil, nil, center))
}

// loadCurrent requests resolution of the current item and preloads its
// neighbours.
func (a *App) loadCurrent() {
	item, ok := a.nav.Current()
	if !ok {
		a.slideView.SetImage(nil)
		a.statusLabel.SetText("No viewable files")
		a.refreshThumbnailStrip()
		return
	}
	a.statusLabel.SetText(fmt.Sprintf("%s  |  %d / %d  |  loading", item.Path, a.nav.Index()+1, a.list.Len()))
	a.resolver.Request(item)
	a.preloadNeighbours()
	a.refreshThumbnailStrip()
}

// preloadNeighbours warms the conversion cache for the adjacent items.
// Best effort: failures never affect the current view.
func (a *App) preloadNeighbours() {
	idx := a.nav.Index()
	var neighbours []library.Item
	for _, i := range []int{idx - 1, idx + 1} {
		if it, ok := a.list.At(i); ok {
			neighbours = append(neighbours, it)
		}
	}
	a.resolver.Preload(neighbours...)
}

// applySource reflects a settled source in the UI. Runs on the UI thread.
func (a *App) applySource(src viewer.Source) {
	current, ok := a.nav.Current()
	if !ok || current.ID != src.Item.ID {
		// The viewport moved on while this source resolved.
		return
	}
	switch src.State {
	case viewer.StateReady:
		a.showReady(src)
	case viewer.StateFailed:
		a.showFallback(src)
	}
}

func (a *App) showReady(src viewer.Source) {
	a.fallbackBox.Hide()
	path := pathFromURI(src.URI)
	go func() {
		img, err := decodeFile(path)
		fyne.Do(func() {
			current, ok := a.nav.Current()
			if !ok || current.ID != src.Item.ID {
				return
			}
			if err != nil {
				a.showFallback(viewer.Source{State: viewer.StateFailed, Item: src.Item, Err: err})
				return
			}
			a.slideView.SetImage(img)
			if a.pendingAnchor != nil {
				a.slideView.AnimateEnter(*a.pendingAnchor)
				a.pendingAnchor = nil
			}
			a.win.SetTitle("Allusion - " + filepath.Base(src.Item.Path))
			a.statusLabel.SetText(fmt.Sprintf("%s  |  %d / %d  |  %dx%d",
				src.Item.Path, a.nav.Index()+1, a.list.Len(), src.Width, src.Height))
		})
	}()
}

func (a *App) showFallback(src viewer.Source) {
	a.pendingAnchor = nil
	a.slideView.SetImage(nil)
	a.fallbackLabel.SetText(fmt.Sprintf("Cannot display %s\n%v", filepath.Base(src.Item.Path), src.Err))
	a.fallbackBox.Show()
	a.win.SetTitle("Allusion - error")
	a.statusLabel.SetText(fmt.Sprintf("%s  |  %d / %d  |  error", src.Item.Path, a.nav.Index()+1, a.list.Len()))
	a.log.WithError(src.Err).WithField("path", src.Item.Path).Warn("source resolution failed")
}

// openCurrentExternally hands the current file to the OS default handler.
func (a *App) openCurrentExternally() {
	item, ok := a.nav.Current()
	if !ok {
		return
	}
	u := &url.URL{Scheme: "file", Path: item.Path}
	if err := a.app.OpenURL(u); err != nil {
		a.log.WithError(err).Warn("opening externally")
	}
}

// advanceSlideshow loops over the list while playback runs; unlike user
// navigation it wraps at the end.
func (a *App) advanceSlideshow() {
	if a.list.Len() == 0 {
		return
	}
	before := a.nav.Index()
	if a.nav.Next() == before {
		a.nav.First()
	}
	a.loadCurrent()
}

func (a *App) togglePlay() {
	a.shows.TogglePlayPause()
	a.refreshToolbar()
}

func (a *App) playPauseIcon() fyne.Resource {
	if a.shows.IsPaused() {
		return theme.MediaPlayIcon()
	}
	return theme.MediaPauseIcon()
}

func (a *App) refreshToolbar() {
	if a.pauseAction != nil {
		a.pauseAction.SetIcon(a.playPauseIcon())
		a.toolbar.Refresh()
	}
}

// deleteCurrent removes the current file from disk, its tags and the list,
// then reconciles the viewport.
func (a *App) deleteCurrent() {
	item, ok := a.nav.Current()
	if !ok {
		return
	}
	if err := a.svc.DeleteItemFile(item.Path); err != nil {
		a.log.WithError(err).Warn("deleting item")
		return
	}
	a.list.Remove(item.ID)
	a.nav.Reconcile()
	a.loadCurrent()
}

// refreshThumbnailStrip rebuilds the strip centered on the current item.
func (a *App) refreshThumbnailStrip() {
	if a.thumbStrip == nil {
		return
	}
	a.thumbStrip.RemoveAll()

	count := a.list.Len()
	if count == 0 {
		a.thumbStrip.Refresh()
		return
	}
	center := a.nav.Index()
	start := center - thumbnailWindow/2
	if start < 0 {
		start = 0
	}
	end := start + thumbnailWindow
	if end > count {
		end = count
		if start = end - thumbnailWindow; start < 0 {
			start = 0
		}
	}

	a.thumbStrip.Add(layout.NewSpacer())
	for i := start; i < end; i++ {
		item, ok := a.list.At(i)
		if !ok {
			continue
		}
		idx := i
		var thumb *tappableImage
		thumb = newTappableImage(theme.FileImageIcon(), func() {
			if idx == a.nav.Index() {
				return
			}
			a.shows.Pause(false)
			a.refreshToolbar()
			a.pendingAnchor = a.anchorFor(thumb)
			a.nav.SetIndex(idx)
			a.loadCurrent()
		})
		thumb.SetMinSize(fyne.NewSize(ThumbnailWidth, ThumbnailHeight))
		res := a.thumbs.GetThumbnail(item.Path, thumb.SetResource)
		thumb.SetResource(res)
		a.thumbStrip.Add(thumb)
	}
	a.thumbStrip.Add(layout.NewSpacer())
	a.thumbStrip.Refresh()
}

// anchorFor computes a thumbnail's rectangle in slide-view coordinates, used
// as the transition start.
func (a *App) anchorFor(thumb fyne.CanvasObject) *viewer.Rect {
	drv := a.app.Driver()
	tp := drv.AbsolutePositionForCanvasObject(thumb)
	sp := drv.AbsolutePositionForCanvasObject(a.slideView)
	return &viewer.Rect{
		X: float64(tp.X - sp.X),
		Y: float64(tp.Y - sp.Y),
		W: float64(thumb.Size().Width),
		H: float64(thumb.Size().Height),
	}
}

// decodeFile decodes an image file; decoders beyond the stdlib set are
// registered by the convert package.
func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// pathFromURI strips the file scheme from a URI produced by the resolver.
func pathFromURI(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return uri
}
