package viewer

import (
	"math"
	"time"
)

const (
	// DefaultScaleFloor is the fixed lower zoom limit; the effective minimum
	// is the smaller of this and the fit-to-container scale.
	DefaultScaleFloor = 0.1
	// DefaultScaleCeiling is the fixed upper zoom limit.
	DefaultScaleCeiling = 5.0
	// DefaultTransitionDuration is how long the thumbnail-to-full animation runs.
	DefaultTransitionDuration = 300 * time.Millisecond

	scaleEpsilon = 1e-3
)

// Dim is a width/height pair in container coordinates.
type Dim struct {
	W, H float64
}

// Rect is an axis-aligned rectangle in container coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Transform places scaled content inside the container: X/Y is the position
// of the content's top-left corner, Scale the uniform zoom factor.
type Transform struct {
	Scale float64
	X, Y  float64
}

// Rect returns the rectangle the content covers under t.
func (t Transform) Rect(content Dim) Rect {
	return Rect{X: t.X, Y: t.Y, W: content.W * t.Scale, H: content.H * t.Scale}
}

// FitScale returns the scale that fits content inside container while
// preserving aspect ratio. Degenerate dimensions yield 1.
func FitScale(container, content Dim) float64 {
	if container.W <= 0 || container.H <= 0 || content.W <= 0 || content.H <= 0 {
		return 1
	}
	return math.Min(container.W/content.W, container.H/content.H)
}

// ScaleBounds computes the [min, max] zoom interval for the given container
// and content dimensions. For any positive dimensions the result satisfies
// 0 < min <= max; degenerate inputs fall back to [1, 1].
func ScaleBounds(container, content Dim, floor, ceiling float64) (minScale, maxScale float64) {
	if container.W <= 0 || container.H <= 0 || content.W <= 0 || content.H <= 0 {
		return 1, 1
	}
	if floor <= 0 {
		floor = DefaultScaleFloor
	}
	if ceiling <= 0 {
		ceiling = DefaultScaleCeiling
	}
	minScale = math.Min(floor, FitScale(container, content))
	maxScale = math.Max(ceiling, minScale)
	return minScale, maxScale
}

// Lerp linearly interpolates between two rectangles. t=0 yields a exactly,
// t=1 yields b exactly.
func Lerp(a, b Rect, t float64) Rect {
	return Rect{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		W: a.W + (b.W-a.W)*t,
		H: a.H + (b.H-a.H)*t,
	}
}

// easeOutQuad decelerates towards the end of the animation. Its endpoints
// are exact: ease(0)=0 and ease(1)=1.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type transition struct {
	from, to Rect
	start    time.Time
	duration time.Duration
}

// Engine computes the zoom/pan transform for one piece of content inside a
// container. It owns the scale bounds invariant, pan clamping and the
// thumbnail-to-full transition animation. Not safe for concurrent use; the
// UI drives it from the event loop.
type Engine struct {
	container Dim
	content   Dim

	floor   float64
	ceiling float64

	minScale float64
	maxScale float64

	cur   Transform
	trans *transition
}

// NewEngine creates an Engine with the default scale limits.
func NewEngine() *Engine {
	e := &Engine{floor: DefaultScaleFloor, ceiling: DefaultScaleCeiling}
	e.recompute()
	e.Reset()
	return e
}

// SetLimits overrides the fixed scale floor and ceiling. Non-positive values
// keep the defaults.
func (e *Engine) SetLimits(floor, ceiling float64) {
	if floor > 0 {
		e.floor = floor
	}
	if ceiling > 0 {
		e.ceiling = ceiling
	}
	e.recompute()
	e.applyScale(e.cur.Scale)
}

// SetContainer updates the container dimensions, typically on resize, and
// re-clamps the current transform against the new bounds.
func (e *Engine) SetContainer(d Dim) {
	fitted := e.isFitted()
	e.container = d
	e.recompute()
	if fitted {
		e.Reset()
		return
	}
	e.applyScale(e.cur.Scale)
}

// SetContent installs new content dimensions and resets to the auto (fit,
// centered) transform. Any running transition is cancelled.
func (e *Engine) SetContent(d Dim) {
	e.content = d
	e.trans = nil
	e.recompute()
	e.Reset()
}

// Container returns the current container dimensions.
func (e *Engine) Container() Dim { return e.container }

// Content returns the current content dimensions.
func (e *Engine) Content() Dim { return e.content }

// Transform returns the current transform.
func (e *Engine) Transform() Transform { return e.cur }

// ScaleBounds returns the current [min, max] zoom interval.
func (e *Engine) ScaleBounds() (minScale, maxScale float64) {
	return e.minScale, e.maxScale
}

// FitScale returns the fit-to-container scale for the current dimensions.
func (e *Engine) FitScale() float64 {
	return FitScale(e.container, e.content)
}

// Reset restores the auto transform: content fit to the container and centered.
func (e *Engine) Reset() {
	fit := clampFloat(e.FitScale(), e.minScale, e.maxScale)
	e.cur = Transform{
		Scale: fit,
		X:     (e.container.W - e.content.W*fit) / 2,
		Y:     (e.container.H - e.content.H*fit) / 2,
	}
}

// ZoomBy multiplies the scale by factor, keeping the container point (cx, cy)
// anchored over the same content point. The result is clamped to the scale
// bounds and the pan bounds.
func (e *Engine) ZoomBy(factor, cx, cy float64) {
	e.zoomTo(e.cur.Scale*factor, cx, cy)
}

// ToggleZoom implements the double-tap gesture: a fitted view zooms to 1:1
// around the tap point, any other state resets to the fitted view.
func (e *Engine) ToggleZoom(cx, cy float64) {
	if e.isFitted() {
		e.zoomTo(1, cx, cy)
		return
	}
	e.Reset()
}

// PanBy shifts the content by the given delta, clamped so the content cannot
// be dragged out of view.
func (e *Engine) PanBy(dx, dy float64) {
	e.cur.X += dx
	e.cur.Y += dy
	e.clampPan()
}

// StartTransition begins animating the content rectangle from one anchor to
// another over the default duration. Interaction resumes once the animation
// completes.
func (e *Engine) StartTransition(from, to Rect, now time.Time) {
	e.trans = &transition{from: from, to: to, start: now, duration: DefaultTransitionDuration}
}

// EnterFrom animates from a thumbnail anchor rectangle to the centered fitted
// view of the current content.
func (e *Engine) EnterFrom(thumb Rect, now time.Time) {
	e.StartTransition(thumb, e.FitRect(), now)
}

// ExitTo animates from the current content rectangle back to a thumbnail
// anchor rectangle.
func (e *Engine) ExitTo(thumb Rect, now time.Time) {
	e.StartTransition(e.cur.Rect(e.content), thumb, now)
}

// InTransition reports whether a transition animation is running.
func (e *Engine) InTransition() bool { return e.trans != nil }

// Step advances a running transition and returns the rectangle to draw for
// this frame. done is true on the frame the animation finishes; the engine
// then holds the fitted transform and normal zoom/pan applies again. With no
// transition running it returns the current rectangle.
func (e *Engine) Step(now time.Time) (r Rect, done bool) {
	if e.trans == nil {
		return e.cur.Rect(e.content), false
	}
	t := float64(now.Sub(e.trans.start)) / float64(e.trans.duration)
	if t >= 1 {
		to := e.trans.to
		e.trans = nil
		e.setFromRect(to)
		return to, true
	}
	if t < 0 {
		t = 0
	}
	return Lerp(e.trans.from, e.trans.to, easeOutQuad(t)), false
}

// FitRect returns the centered rectangle the content covers at fit scale.
func (e *Engine) FitRect() Rect {
	fit := clampFloat(e.FitScale(), e.minScale, e.maxScale)
	w := e.content.W * fit
	h := e.content.H * fit
	return Rect{X: (e.container.W - w) / 2, Y: (e.container.H - h) / 2, W: w, H: h}
}

func (e *Engine) isFitted() bool {
	return math.Abs(e.cur.Scale-clampFloat(e.FitScale(), e.minScale, e.maxScale)) < scaleEpsilon
}

// zoomTo sets an absolute scale while keeping the container point (cx, cy)
// over the same content point.
func (e *Engine) zoomTo(scale, cx, cy float64) {
	scale = clampFloat(scale, e.minScale, e.maxScale)
	if e.cur.Scale <= 0 {
		e.cur.Scale = 1
	}
	contentX := (cx - e.cur.X) / e.cur.Scale
	contentY := (cy - e.cur.Y) / e.cur.Scale
	e.cur.Scale = scale
	e.cur.X = cx - contentX*scale
	e.cur.Y = cy - contentY*scale
	e.clampPan()
}

// applyScale re-clamps the current scale into the bounds without moving the
// zoom anchor, then re-clamps the pan.
func (e *Engine) applyScale(scale float64) {
	e.cur.Scale = clampFloat(scale, e.minScale, e.maxScale)
	e.clampPan()
}

// clampPan bounds the translation per axis: content smaller than the
// container is locked centered, content larger than the container may pan
// freely but its edges never cross the container's.
func (e *Engine) clampPan() {
	w := e.content.W * e.cur.Scale
	h := e.content.H * e.cur.Scale

	if w <= e.container.W {
		e.cur.X = (e.container.W - w) / 2
	} else {
		e.cur.X = clampFloat(e.cur.X, e.container.W-w, 0)
	}
	if h <= e.container.H {
		e.cur.Y = (e.container.H - h) / 2
	} else {
		e.cur.Y = clampFloat(e.cur.Y, e.container.H-h, 0)
	}
}

// setFromRect adopts a rectangle as the current transform.
func (e *Engine) setFromRect(r Rect) {
	if e.content.W > 0 {
		e.cur.Scale = r.W / e.content.W
	}
	e.cur.X = r.X
	e.cur.Y = r.Y
}

func (e *Engine) recompute() {
	e.minScale, e.maxScale = ScaleBounds(e.container, e.content, e.floor, e.ceiling)
}
