// Package convert renders image formats the GUI toolkit cannot display
// natively (TIFF, WebP, BMP) into PNG files under a cache directory.
package convert

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoggerFunc receives progress and error messages.
type LoggerFunc func(message string)

// Service converts files into displayable PNG renditions, caching the output
// keyed by source path. Concurrent conversions of the same source are
// deduplicated so the preloader and the resolver never race on one file.
type Service struct {
	dir    string
	logger LoggerFunc

	mu       sync.Mutex
	inflight map[string]*sync.Once
}

// NewService creates a Service writing renditions under dir, which is created
// if missing.
func NewService(dir string, logger LoggerFunc) (*Service, error) {
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating cache dir: %w", err)
		}
		dir = filepath.Join(cacheDir, "allusion", "converted")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating conversion cache %s: %w", dir, err)
	}
	return &Service{dir: dir, logger: logger, inflight: make(map[string]*sync.Once)}, nil
}

// Dir returns the cache directory.
func (s *Service) Dir() string { return s.dir }

// Needed reports whether path requires conversion before display.
func (s *Service) Needed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff", ".webp", ".bmp":
		return true
	default:
		return false
	}
}

// Convert returns the path of a PNG rendition of path, producing it on the
// first call and reusing the cached file afterwards. A cached rendition older
// than the source is regenerated.
func (s *Service) Convert(path string) (string, error) {
	target := s.targetFor(path)

	if fresh, err := s.cacheFresh(path, target); err != nil {
		return "", err
	} else if fresh {
		return target, nil
	}

	// Collapse concurrent converts of the same source into one decode.
	s.mu.Lock()
	once, ok := s.inflight[path]
	if !ok {
		once = &sync.Once{}
		s.inflight[path] = once
	}
	s.mu.Unlock()

	var convErr error
	once.Do(func() {
		convErr = s.render(path, target)
		s.mu.Lock()
		delete(s.inflight, path)
		s.mu.Unlock()
	})
	if convErr != nil {
		return "", convErr
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("conversion of %s produced no output: %w", path, err)
	}
	return target, nil
}

// cacheFresh reports whether target exists and is at least as new as source.
func (s *Service) cacheFresh(source, target string) (bool, error) {
	ti, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking cache for %s: %w", source, err)
	}
	si, err := os.Stat(source)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", source, err)
	}
	return !ti.ModTime().Before(si.ModTime()), nil
}

// render decodes source and writes the PNG rendition atomically.
func (s *Service) render(source, target string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", source, err)
	}
	if s.logger != nil {
		s.logger(fmt.Sprintf("converting %s (%s) -> %s", filepath.Base(source), format, filepath.Base(target)))
	}

	tmp, err := os.CreateTemp(s.dir, "convert-*.png")
	if err != nil {
		return fmt.Errorf("creating rendition: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding rendition of %s: %w", source, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing rendition of %s: %w", source, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("installing rendition of %s: %w", source, err)
	}
	return nil
}

// targetFor maps a source path to its cache file name.
func (s *Service) targetFor(path string) string {
	sum := sha1.Sum([]byte(path))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".png")
}
