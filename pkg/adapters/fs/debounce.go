package fs

import (
	"sync"
	"time"

	"github.com/aretw0/notebox/pkg/core"
)

// debouncer coalesces bursts of events per key. An atomic write produces
// CREATE+WRITE+RENAME in quick succession; only the last survives.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*time.Timer),
	}
}

// add schedules emit(e) after the delay, replacing any pending event for the
// same key.
func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.pending[e.Key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.pending[e.Key] == timer {
			delete(d.pending, e.Key)
		}
		d.mu.Unlock()
		emit(e)
	})
	d.pending[e.Key] = timer
}

// stopAndWait rejects new events, cancels pending ones and waits up to
// timeout for emissions already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.pending {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
