// Package scan walks a directory tree and streams viewable files.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"allusion/internal/library"

	"github.com/gobwas/glob"
)

// LoggerFunc receives progress and error messages from a scan.
type LoggerFunc func(message string)

// FileItem is one discovered file.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// FileItems is a slice of FileItem.
type FileItems []FileItem

// NewFileItem creates a FileItem.
func NewFileItem(path string, info os.FileInfo) FileItem {
	return FileItem{Path: path, Info: info}
}

// Options tunes a scan.
type Options struct {
	// Exclude holds glob patterns matched against base names; matching files
	// are skipped and matching directories are not descended into.
	Exclude []string
}

// Run walks dir recursively and streams every viewable, non-empty file on the
// returned channel as an absolute path. The channel is closed when the walk
// finishes. Errors are reported through logger and do not abort the walk.
func Run(dir string, logger LoggerFunc) <-chan FileItem {
	return RunWithOptions(dir, Options{}, logger)
}

// RunWithOptions is Run with exclude patterns.
func RunWithOptions(dir string, opts Options, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem)

	excludes := compilePatterns(opts.Exclude, logger)

	go func() {
		defer close(out)

		root, err := filepath.Abs(dir)
		if err != nil {
			logf(logger, "scan: resolving %s: %v", dir, err)
			return
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logf(logger, "scan: %s: %v", path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(excludes, filepath.Base(path)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if library.KindOf(path) == library.KindUnsupported {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				logf(logger, "scan: stat %s: %v", path, err)
				return nil
			}
			if !info.Mode().IsRegular() || info.Size() == 0 {
				return nil
			}
			out <- NewFileItem(path, info)
			return nil
		})
		if walkErr != nil {
			logf(logger, "scan: walking %s: %v", root, walkErr)
		}
	}()

	return out
}

// Collect drains a scan channel into a slice.
func Collect(items <-chan FileItem) FileItems {
	var out FileItems
	for item := range items {
		out = append(out, item)
	}
	return out
}

func compilePatterns(patterns []string, logger LoggerFunc) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			logf(logger, "scan: bad exclude pattern %q: %v", p, err)
			continue
		}
		out = append(out, g)
	}
	return out
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func logf(logger LoggerFunc, format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	}
}
