package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.1, cfg.Zoom.Floor)
	assert.Equal(t, 5.0, cfg.Zoom.Ceiling)
	assert.Equal(t, 2, cfg.Slideshow.IntervalSeconds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
library:
  root: /pics
  exclude: [".thumbnails", "*.bak"]
zoom:
  ceiling: 8.0
slideshow:
  interval_seconds: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/pics", cfg.Library.Root)
	assert.Equal(t, []string{".thumbnails", "*.bak"}, cfg.Library.Exclude)
	assert.Equal(t, 8.0, cfg.Zoom.Ceiling)
	assert.Equal(t, 0.1, cfg.Zoom.Floor, "unset fields keep their defaults")
	assert.Equal(t, 5, cfg.Slideshow.IntervalSeconds)
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom: ["), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoadFileRejectsInvalidZoom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
zoom:
  floor: 3.0
  ceiling: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "zoom.ceiling")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Zoom.Floor = 0
	assert.ErrorContains(t, cfg.Validate(), "zoom.floor")

	cfg = Default()
	cfg.Zoom.Ceiling = cfg.Zoom.Floor
	assert.NoError(t, cfg.Validate(), "ceiling equal to floor is allowed")
}

func TestStorageDirCreatesConfiguredDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "nested", "storage")

	dir, err := cfg.StorageDir()
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.Dir, dir)
	assert.DirExists(t, dir)
}
