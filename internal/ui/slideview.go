// Package ui contains the Fyne front end of the viewer.
package ui

import (
	"image"
	"time"

	"allusion/internal/viewer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	zoomScrollStep  = 0.1
	transitionFrame = 16 * time.Millisecond
)

// SlideView displays a single image with zoom, pan and the thumbnail-to-full
// transition. All transform math lives in viewer.Engine; this widget only
// feeds it input events and rasterizes the result.
type SlideView struct {
	widget.BaseWidget

	engine *viewer.Engine
	img    image.Image
	raster *canvas.Raster

	isPanning    bool
	lastMousePos fyne.Position

	// OnInteraction is called when the user zooms or starts panning.
	OnInteraction func()
}

// NewSlideView creates a SlideView backed by engine.
func NewSlideView(engine *viewer.Engine, onInteraction func()) *SlideView {
	sv := &SlideView{
		engine:        engine,
		OnInteraction: onInteraction,
	}
	sv.raster = canvas.NewRaster(sv.draw)
	sv.ExtendBaseWidget(sv)
	return sv
}

// SetImage installs new content and resets the view to fit.
func (sv *SlideView) SetImage(img image.Image) {
	sv.img = img
	if img != nil {
		b := img.Bounds()
		sv.engine.SetContent(viewer.Dim{W: float64(b.Dx()), H: float64(b.Dy())})
	} else {
		sv.engine.SetContent(viewer.Dim{})
	}
	sv.Refresh()
}

// Image returns the currently displayed image, or nil.
func (sv *SlideView) Image() image.Image { return sv.img }

// CurrentScale returns the engine's current zoom factor.
func (sv *SlideView) CurrentScale() float64 { return sv.engine.Transform().Scale }

// AnimateEnter plays the transition from a thumbnail anchor rectangle to the
// fitted view, refreshing every frame until the engine releases control.
func (sv *SlideView) AnimateEnter(from viewer.Rect) {
	sv.engine.EnterFrom(from, time.Now())
	go sv.runTransition()
}

// runTransition refreshes the raster on a frame tick while a transition is
// active. The engine itself decides when the animation is over.
func (sv *SlideView) runTransition() {
	ticker := time.NewTicker(transitionFrame)
	defer ticker.Stop()
	for range ticker.C {
		done := !sv.engine.InTransition()
		fyne.Do(func() { sv.Refresh() })
		if done {
			return
		}
	}
}

// draw rasterizes the current transform with a nearest-neighbour inverse
// mapping from destination pixels to source pixels.
func (sv *SlideView) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if sv.img == nil || w <= 0 || h <= 0 {
		return dst
	}

	rect, _ := sv.engine.Step(time.Now())
	if rect.W <= 0 || rect.H <= 0 {
		return dst
	}

	// Scale from widget logical size to raster pixels.
	size := sv.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return dst
	}
	pxPerUnitX := float64(w) / float64(size.Width)
	pxPerUnitY := float64(h) / float64(size.Height)

	src := sv.img.Bounds()
	scaleX := rect.W / float64(src.Dx())
	scaleY := rect.H / float64(src.Dy())

	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			ux := float64(dx)/pxPerUnitX - rect.X
			uy := float64(dy)/pxPerUnitY - rect.Y
			sx := ux / scaleX
			sy := uy / scaleY
			if sx >= 0 && sx < float64(src.Dx()) && sy >= 0 && sy < float64(src.Dy()) {
				dst.Set(dx, dy, sv.img.At(src.Min.X+int(sx), src.Min.Y+int(sy)))
			}
		}
	}
	return dst
}

// Resize keeps the engine's container dimensions in sync with the widget.
func (sv *SlideView) Resize(size fyne.Size) {
	sv.BaseWidget.Resize(size)
	sv.engine.SetContainer(viewer.Dim{W: float64(size.Width), H: float64(size.Height)})
}

// CreateRenderer is a Fyne lifecycle method.
func (sv *SlideView) CreateRenderer() fyne.WidgetRenderer {
	return &slideViewRenderer{sv: sv}
}

// Scrolled zooms towards the view center on mouse wheel events.
func (sv *SlideView) Scrolled(ev *fyne.ScrollEvent) {
	if sv.engine.InTransition() {
		return
	}
	sv.interact()
	cx := float64(sv.Size().Width) / 2
	cy := float64(sv.Size().Height) / 2
	if ev.Scrolled.DY > 0 {
		sv.engine.ZoomBy(1+zoomScrollStep, cx, cy)
	} else if ev.Scrolled.DY < 0 {
		sv.engine.ZoomBy(1/(1+zoomScrollStep), cx, cy)
	}
	sv.Refresh()
}

// DoubleTapped toggles between the fitted view and 1:1 around the tap point.
func (sv *SlideView) DoubleTapped(ev *fyne.PointEvent) {
	if sv.engine.InTransition() {
		return
	}
	sv.interact()
	sv.engine.ToggleZoom(float64(ev.Position.X), float64(ev.Position.Y))
	sv.Refresh()
}

// MouseDown starts panning.
func (sv *SlideView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	sv.interact()
	sv.isPanning = true
	sv.lastMousePos = ev.Position
}

// MouseUp stops panning.
func (sv *SlideView) MouseUp(_ *desktop.MouseEvent) {
	sv.isPanning = false
}

// Dragged pans the content.
func (sv *SlideView) Dragged(ev *fyne.DragEvent) {
	if !sv.isPanning || sv.engine.InTransition() {
		return
	}
	delta := ev.Position.Subtract(sv.lastMousePos)
	sv.engine.PanBy(float64(delta.X), float64(delta.Y))
	sv.lastMousePos = ev.Position
	sv.Refresh()
}

// DragEnd finalizes panning.
func (sv *SlideView) DragEnd() {
	sv.isPanning = false
}

func (sv *SlideView) interact() {
	if sv.OnInteraction != nil {
		sv.OnInteraction()
	}
}

type slideViewRenderer struct{ sv *SlideView }

func (r *slideViewRenderer) Layout(size fyne.Size)        { r.sv.raster.Resize(size) }
func (r *slideViewRenderer) MinSize() fyne.Size           { return fyne.NewSize(100, 100) }
func (r *slideViewRenderer) Refresh()                     { canvas.Refresh(r.sv.raster) }
func (r *slideViewRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.sv.raster} }
func (r *slideViewRenderer) Destroy()                     {}

var _ fyne.Widget = (*SlideView)(nil)
var _ fyne.Scrollable = (*SlideView)(nil)
var _ fyne.Draggable = (*SlideView)(nil)
var _ fyne.DoubleTappable = (*SlideView)(nil)
