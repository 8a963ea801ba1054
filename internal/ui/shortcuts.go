package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const skipCount = 20 // items skipped by PageUp/PageDown

// buildKeyboardShortcuts wires the navigation keys.
func (a *App) buildKeyboardShortcuts() {
	a.win.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: fyne.KeyModifierControl,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	a.win.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight:
			a.nav.Next()
			a.loadCurrent()
		case fyne.KeyLeft:
			a.nav.Prev()
			a.loadCurrent()
		case fyne.KeyPageDown, fyne.KeyDown:
			a.nav.Skip(skipCount)
			a.loadCurrent()
		case fyne.KeyPageUp, fyne.KeyUp:
			a.nav.Skip(-skipCount)
			a.loadCurrent()
		case fyne.KeyHome:
			a.nav.First()
			a.loadCurrent()
		case fyne.KeyEnd:
			a.nav.Last()
			a.loadCurrent()
		case fyne.KeyP, fyne.KeySpace:
			a.togglePlay()
		case fyne.KeyDelete:
			a.deleteCurrent()
		case fyne.KeyQ:
			a.app.Quit()
		case fyne.KeyEscape:
			if len(a.win.Canvas().Overlays().List()) > 0 {
				a.win.Canvas().Overlays().Top().Hide()
			}
		}
	})
}
