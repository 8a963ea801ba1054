// Package slideshow manages the automatic cycling of content.
package slideshow

import (
	"context"
	"sync"
	"time"
)

const defaultInterval = 2 * time.Second

// Manager holds the play/pause state of the slideshow and drives the
// auto-advance loop.
type Manager struct {
	mu                 sync.Mutex
	isPaused           bool
	wasPlayingBeforeOp bool // set while an operation temporarily pauses playback
	interval           time.Duration
}

// NewManager creates a Manager. A non-positive interval falls back to the
// default.
func NewManager(interval time.Duration) *Manager {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Manager{interval: interval}
}

// TogglePlayPause toggles the play/pause state.
func (m *Manager) TogglePlayPause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isPaused = !m.isPaused
	m.wasPlayingBeforeOp = false
}

// Pause pauses playback. With forOperation set it remembers whether the
// slideshow was playing, so ResumeAfterOperation can restore that state.
func (m *Manager) Pause(forOperation bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if forOperation {
		m.wasPlayingBeforeOp = !m.isPaused
	}
	m.isPaused = true
}

// ResumeAfterOperation resumes playback only if it was playing before
// Pause(true) was called.
func (m *Manager) ResumeAfterOperation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wasPlayingBeforeOp {
		m.isPaused = false
	}
	m.wasPlayingBeforeOp = false
}

// SetPaused forces the paused state, e.g. when restoring persisted
// preferences.
func (m *Manager) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isPaused = paused
	m.wasPlayingBeforeOp = false
}

// IsPaused reports whether the slideshow is paused.
func (m *Manager) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isPaused
}

// Interval returns the configured slideshow interval.
func (m *Manager) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// Run ticks at the configured interval and calls advance on every tick while
// playback is not paused. It blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, advance func()) {
	ticker := time.NewTicker(m.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.IsPaused() {
				advance()
			}
		}
	}
}
