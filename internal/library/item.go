// Package library holds the viewable item model shared by the scanner,
// the viewer engine and the UI.
package library

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies how an item can be displayed.
type Kind int

const (
	// KindImage covers still image formats, including ones that need
	// conversion before display (TIFF, WebP).
	KindImage Kind = iota
	// KindVideo covers video container formats the toolkit plays from a URI.
	KindVideo
	// KindUnsupported marks files the viewer cannot display.
	KindUnsupported
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unsupported"
	}
}

// KindOf classifies a path by its extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff":
		return KindImage
	case ".mp4", ".webm", ".mov", ".mkv", ".avi":
		return KindVideo
	default:
		return KindUnsupported
	}
}

// Item is a single viewable file. Immutable once constructed; dimensions are
// zero until a decode has established them.
type Item struct {
	ID     uuid.UUID
	Path   string
	Width  int
	Height int
	Kind   Kind
}

// NewItem creates an Item for the given absolute path, classifying it by
// extension. Dimensions are left at zero.
func NewItem(path string) Item {
	return Item{
		ID:   uuid.New(),
		Path: path,
		Kind: KindOf(path),
	}
}

// NewItemWithSize creates an Item with known natural dimensions.
func NewItemWithSize(path string, width, height int) Item {
	it := NewItem(path)
	it.Width = width
	it.Height = height
	return it
}
