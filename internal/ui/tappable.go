package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// tappableImage displays an image resource and reports taps.
type tappableImage struct {
	widget.BaseWidget
	image    *canvas.Image
	onTapped func()
}

// newTappableImage creates a tappableImage widget.
func newTappableImage(res fyne.Resource, onTapped func()) *tappableImage {
	ti := &tappableImage{
		image:    canvas.NewImageFromResource(res),
		onTapped: onTapped,
	}
	ti.image.FillMode = canvas.ImageFillContain
	ti.ExtendBaseWidget(ti)
	return ti
}

// CreateRenderer is a Fyne lifecycle method.
func (t *tappableImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.image)
}

// Tapped is called when the widget is tapped.
func (t *tappableImage) Tapped(_ *fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}

// SetResource updates the image resource and refreshes.
func (t *tappableImage) SetResource(res fyne.Resource) {
	t.image.Resource = res
	canvas.Refresh(t.image)
}

// SetMinSize sets the minimum size of the tappable image.
func (t *tappableImage) SetMinSize(size fyne.Size) {
	t.image.SetMinSize(size)
}
