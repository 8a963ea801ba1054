package slideshow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerInterval(t *testing.T) {
	assert.Equal(t, 5*time.Second, NewManager(5*time.Second).Interval())
	assert.Equal(t, defaultInterval, NewManager(0).Interval())
	assert.Equal(t, defaultInterval, NewManager(-time.Second).Interval())
}

func TestTogglePlayPause(t *testing.T) {
	m := NewManager(0)
	assert.False(t, m.IsPaused(), "a new slideshow is playing")

	m.TogglePlayPause()
	assert.True(t, m.IsPaused())

	m.TogglePlayPause()
	assert.False(t, m.IsPaused())
}

func TestPauseForOperation(t *testing.T) {
	t.Run("resumes when it was playing", func(t *testing.T) {
		m := NewManager(0)
		m.Pause(true)
		assert.True(t, m.IsPaused())

		m.ResumeAfterOperation()
		assert.False(t, m.IsPaused())
	})

	t.Run("stays paused when it was paused", func(t *testing.T) {
		m := NewManager(0)
		m.SetPaused(true)

		m.Pause(true)
		m.ResumeAfterOperation()
		assert.True(t, m.IsPaused())
	})

	t.Run("explicit toggle clears the pending resume", func(t *testing.T) {
		m := NewManager(0)
		m.Pause(true)
		m.TogglePlayPause() // user resumes by hand
		m.TogglePlayPause() // and pauses again

		m.ResumeAfterOperation()
		assert.True(t, m.IsPaused(), "the user's explicit pause wins")
	})
}

func TestPauseWithoutOperationDoesNotResume(t *testing.T) {
	m := NewManager(0)
	m.Pause(false)
	m.ResumeAfterOperation()
	assert.True(t, m.IsPaused())
}

func TestRunAdvancesWhilePlaying(t *testing.T) {
	m := NewManager(10 * time.Millisecond)

	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, func() { ticks.Add(1) })

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRunSkipsTicksWhilePaused(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	m.SetPaused(true)

	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, func() { ticks.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, ticks.Load())

	m.SetPaused(false)
	require.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, 5*time.Millisecond)
}
