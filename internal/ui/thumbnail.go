package ui

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"sync"

	"allusion/internal/service"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/nfnt/resize"
)

const (
	// ThumbnailWidth is the width of strip thumbnails.
	ThumbnailWidth = 100
	// ThumbnailHeight is the height of strip thumbnails.
	ThumbnailHeight = 100
)

// ThumbnailManager generates and caches strip thumbnails.
type ThumbnailManager struct {
	meta   *service.Metadata
	logger func(string)

	mu    sync.RWMutex
	cache map[string]fyne.Resource
}

// NewThumbnailManager creates a ThumbnailManager. logger may be nil.
func NewThumbnailManager(meta *service.Metadata, logger func(string)) *ThumbnailManager {
	return &ThumbnailManager{
		meta:   meta,
		logger: logger,
		cache:  make(map[string]fyne.Resource),
	}
}

// imageToBytes converts an image to PNG bytes for a Fyne resource.
func imageToBytes(img image.Image) []byte {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// GetThumbnail returns a cached thumbnail for path, or a placeholder while
// one is generated in the background. onComplete receives the generated
// resource on the UI thread.
func (tm *ThumbnailManager) GetThumbnail(path string, onComplete func(fyne.Resource)) fyne.Resource {
	tm.mu.RLock()
	if res, ok := tm.cache[path]; ok {
		tm.mu.RUnlock()
		return res
	}
	tm.mu.RUnlock()

	go func() {
		_, decoded, err := tm.meta.Info(path)
		if err != nil {
			if tm.logger != nil {
				tm.logger("thumbnail error for " + filepath.Base(path) + ": " + err.Error())
			}
			return
		}

		thumb := resize.Thumbnail(ThumbnailWidth, ThumbnailHeight, decoded, resize.Lanczos3)
		data := imageToBytes(thumb)
		if data == nil {
			return
		}
		res := fyne.NewStaticResource(path, data)

		tm.mu.Lock()
		tm.cache[path] = res
		tm.mu.Unlock()

		fyne.Do(func() {
			onComplete(res)
		})
	}()

	return theme.FileImageIcon()
}
