package realtime

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per key into one delayed call.
// Scheduling a key that is already pending resets its timer; distinct
// keys never interfere with each other.
type Debouncer struct {
	window time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer creates a debouncer with the given window. The window is
// a staleness/churn tradeoff: shorter fires more reloads, longer serves
// stale data for longer after a burst.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms (or re-arms) the timer for key. When the window elapses
// without another Schedule for the same key, fn runs once on a timer
// goroutine. A reload error inside fn does not re-arm the timer; the
// trigger is considered served either way.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A fired timer that lost the race against a re-arm must not
		// run: the newer timer owns the key now.
		if d.closed || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel drops any pending timer for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Close cancels all pending timers. A closed debouncer ignores further
// Schedule calls.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

// Pending reports whether a timer is armed for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}
