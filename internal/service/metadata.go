package service

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Info holds metadata about a media file.
type Info struct {
	Width   int
	Height  int
	Size    int64
	ModTime time.Time
	EXIF    map[string]string
}

// Metadata extracts image information and EXIF fields.
type Metadata struct{}

// NewMetadata creates a Metadata service.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// EXIF extracts a few common EXIF fields from r. A file without EXIF data is
// not an error; it yields a nil map.
func (m *Metadata) EXIF(r io.Reader) (map[string]string, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, nil
	}
	result := make(map[string]string)
	for _, field := range []string{
		"DateTime", "Model", "Make", "ExposureTime", "FNumber", "ISOSpeedRatings", "FocalLength",
	} {
		tag, err := x.Get(exif.FieldName(field))
		if err == nil && tag != nil {
			result[field] = tag.String()
		}
	}
	return result, nil
}

// Info returns dimensions, file size, mod time and EXIF data for path, along
// with the decoded image.
func (m *Metadata) Info(path string) (*Info, image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	exifData, _ := m.EXIF(f)

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seeking in %s: %w", path, err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	return &Info{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		EXIF:    exifData,
	}, img, nil
}
