// Package watch notices edits to the workspace data files and reports them
// in debounced batches.
package watch

import (
	"sync"
	"time"
)

// Debouncer collects changes and delivers them as one batch once window
// has passed without another change. Repeated changes to the same path
// keep only the latest operation.
type Debouncer struct {
	window time.Duration
	flush  func([]Change)

	mu      sync.Mutex
	timer   *time.Timer
	pending []Change
	index   map[string]int
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration, flush func([]Change)) *Debouncer {
	return &Debouncer{
		window: window,
		flush:  flush,
		index:  make(map[string]int),
	}
}

// Add records c and restarts the window.
func (d *Debouncer) Add(c Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i, ok := d.index[c.Path]; ok {
		d.pending[i] = c
	} else {
		d.index[c.Path] = len(d.pending)
		d.pending = append(d.pending, c)
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.index = make(map[string]int)
	d.mu.Unlock()

	if len(batch) > 0 && d.flush != nil {
		d.flush(batch)
	}
}

// Stop cancels any pending batch.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
	d.index = make(map[string]int)
}
