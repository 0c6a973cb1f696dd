package search

import (
	"sync"
	"time"
)

// DefaultQuiet is the debounce quiet period used when none is configured
const DefaultQuiet = 300 * time.Millisecond

// Debouncer delays invocation until input has been quiet for a configured
// period. Scheduling is last-writer-wins: every Trigger cancels the pending
// invocation, so a burst of keystrokes runs the callback once, with whatever
// the final Trigger carried. There is no flush-on-demand; a pending call
// either fires after the quiet period or is superseded.
type Debouncer struct {
	quiet   time.Duration
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn after the quiet period, cancelling any pending call
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, fn)
}

// SetQuiet changes the quiet period for subsequent triggers; non-positive
// values are ignored
func (d *Debouncer) SetQuiet(quiet time.Duration) {
	if quiet <= 0 {
		return
	}
	d.mu.Lock()
	d.quiet = quiet
	d.mu.Unlock()
}

// Stop cancels any pending invocation and rejects further triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Throttle suppresses duplicate query triggers per owner: once a query is
// issued, further requests inside the window are rejected so the caller can
// replay the last result instead of fetching again. This guards against a
// filter chip and a text field both firing on the same user action.
type Throttle struct {
	window time.Duration
	mu     sync.Mutex
	last   map[string]time.Time
	now    func() time.Time
}

// NewThrottle creates a throttle with the given suppression window
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether a query for the owner may be issued now, recording
// the issue time when it may
func (t *Throttle) Allow(ownerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if issued, ok := t.last[ownerID]; ok && now.Sub(issued) < t.window {
		return false
	}
	t.last[ownerID] = now
	return true
}

// SetWindow changes the suppression window for subsequent queries
func (t *Throttle) SetWindow(window time.Duration) {
	if window < 0 {
		return
	}
	t.mu.Lock()
	t.window = window
	t.mu.Unlock()
}

// Reset forgets the owner's last issue time
func (t *Throttle) Reset(ownerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, ownerID)
}
