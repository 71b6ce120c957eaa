package planner

import (
	"sync"
	"time"
)

// Debouncer restarts a single pending timer on every trigger; only the last
// callback within a quiet window ever fires. Cancel guarantees no residual
// callback runs afterwards.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{
		quiet: quiet,
	}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	my := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		// AfterFunc can race Stop; the generation check makes a stopped or
		// superseded timer a no-op even if its callback already started.
		d.mu.Lock()
		stale := my != d.gen
		d.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
