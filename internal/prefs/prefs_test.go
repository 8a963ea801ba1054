package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoolRoundTrip(t *testing.T) {
	s := openTestStore(t)

	assert.True(t, s.Bool(KeySlideshowPaused, true), "unset key yields the fallback")
	assert.False(t, s.Bool(KeySlideshowPaused, false))

	require.NoError(t, s.SetBool(KeySlideshowPaused, true))
	assert.True(t, s.Bool(KeySlideshowPaused, false))

	require.NoError(t, s.SetBool(KeySlideshowPaused, false))
	assert.False(t, s.Bool(KeySlideshowPaused, true))
}

func TestStringRoundTrip(t *testing.T) {
	s := openTestStore(t)

	assert.Equal(t, "/home", s.String(KeyLastDirectory, "/home"))

	require.NoError(t, s.SetString(KeyLastDirectory, "/pics/holiday"))
	assert.Equal(t, "/pics/holiday", s.String(KeyLastDirectory, "/home"))
}

func TestFloatRoundTrip(t *testing.T) {
	s := openTestStore(t)

	assert.Equal(t, 1.0, s.Float(KeyZoomToggleScale, 1.0))

	require.NoError(t, s.SetFloat(KeyZoomToggleScale, 2.5))
	assert.Equal(t, 2.5, s.Float(KeyZoomToggleScale, 1.0))
}

func TestTypeMismatchFallsBack(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetString("mixed", "not a number"))
	assert.Equal(t, 42.0, s.Float("mixed", 42.0))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetBool(KeySlideshowPaused, true))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.Bool(KeySlideshowPaused, false))
}
