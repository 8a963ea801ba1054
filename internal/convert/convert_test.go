package convert

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBMP(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestNeeded(t *testing.T) {
	s, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	assert.True(t, s.Needed("scan.tiff"))
	assert.True(t, s.Needed("scan.TIF"))
	assert.True(t, s.Needed("photo.webp"))
	assert.True(t, s.Needed("old.bmp"))
	assert.False(t, s.Needed("photo.jpg"))
	assert.False(t, s.Needed("photo.png"))
}

func TestConvertProducesDecodablePNG(t *testing.T) {
	srcDir := t.TempDir()
	source := filepath.Join(srcDir, "picture.bmp")
	writeBMP(t, source, 12, 8)

	s, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	target, err := s.Convert(source)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(target))
	assert.Equal(t, s.Dir(), filepath.Dir(target))

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestConvertReusesCache(t *testing.T) {
	source := filepath.Join(t.TempDir(), "picture.bmp")
	writeBMP(t, source, 4, 4)

	var renders int
	s, err := NewService(t.TempDir(), func(string) { renders++ })
	require.NoError(t, err)

	first, err := s.Convert(source)
	require.NoError(t, err)
	require.Equal(t, 1, renders)

	second, err := s.Convert(source)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, renders, "fresh cache entry must not be re-rendered")
}

func TestConvertRegeneratesStaleCache(t *testing.T) {
	source := filepath.Join(t.TempDir(), "picture.bmp")
	writeBMP(t, source, 4, 4)

	var renders int
	s, err := NewService(t.TempDir(), func(string) { renders++ })
	require.NoError(t, err)

	target, err := s.Convert(source)
	require.NoError(t, err)
	require.Equal(t, 1, renders)

	// Make the source newer than the rendition.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(source, future, future))

	again, err := s.Convert(source)
	require.NoError(t, err)
	assert.Equal(t, target, again)
	assert.Equal(t, 2, renders, "outdated rendition must be regenerated")
}

func TestConvertUndecodableSourceFails(t *testing.T) {
	source := filepath.Join(t.TempDir(), "broken.bmp")
	require.NoError(t, os.WriteFile(source, []byte("not an image"), 0644))

	s, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = s.Convert(source)
	assert.ErrorContains(t, err, "decoding")
}

func TestConvertDistinctSourcesGetDistinctTargets(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bmp")
	b := filepath.Join(dir, "b.bmp")
	writeBMP(t, a, 2, 2)
	writeBMP(t, b, 2, 2)

	s, err := NewService(t.TempDir(), nil)
	require.NoError(t, err)

	ta, err := s.Convert(a)
	require.NoError(t, err)
	tb, err := s.Convert(b)
	require.NoError(t, err)
	assert.NotEqual(t, ta, tb)
}
