package search

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending delayed call. Scheduling a new call
// cancels the previous one first. A call cancelled while its timer callback
// is waiting on the debouncer lock does not run; once fn has started,
// Cancel cannot stop it, so callers that need that guarantee check their
// own state inside fn.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	token uint64
}

// NewDebouncer creates a debouncer with a fixed quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending call with fn, to run after the quiet period.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.token++
	token := d.token
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if token != d.token {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call. Returns true if one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.timer != nil
	d.stopLocked()
	d.token++
	return pending
}

// Pending reports whether a call is scheduled and has not run yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
