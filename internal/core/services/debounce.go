package services

import (
	"sync"
	"time"
)

// debouncedRequest is a search that can be superseded by a newer one.
type debouncedRequest struct {
	issued    time.Time
	window    time.Duration
	timer     *time.Timer
	supersede func()
	finished  bool
}

// debouncer tracks the latest search of an engine. A new search arriving
// within the window of the previous unfinished one supersedes it.
type debouncer struct {
	mu     sync.Mutex
	latest *debouncedRequest
	closed bool
	now    func() time.Time
}

func newDebouncer() *debouncer {
	return &debouncer{now: time.Now}
}

// schedule registers a request and runs start after its window elapses.
// supersede is called, outside the lock, if a newer request replaces this
// one before it finishes. A request without a window starts at once and
// cannot itself be superseded, so it never becomes the latest one.
func (d *debouncer) schedule(window time.Duration, start func(*debouncedRequest), supersede func()) {
	req := &debouncedRequest{
		issued:    d.now(),
		window:    window,
		supersede: supersede,
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	prev := d.latest
	var superseded func()
	if prev != nil && !prev.finished && req.issued.Sub(prev.issued) < prev.window {
		prev.finished = true
		if prev.timer != nil {
			prev.timer.Stop()
		}
		superseded = prev.supersede
		d.latest = nil
	}
	if window > 0 {
		d.latest = req
		req.timer = time.AfterFunc(window, func() { start(req) })
	}
	d.mu.Unlock()

	if superseded != nil {
		superseded()
	}
	if window <= 0 {
		start(req)
	}
}

// finish marks req as complete so later requests no longer supersede it.
// It reports false if req was already superseded.
func (d *debouncer) finish(req *debouncedRequest) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if req.finished {
		return false
	}
	req.finished = true
	if d.latest == req {
		d.latest = nil
	}
	return true
}

// stop cancels the pending timer and refuses further requests. The
// stopped request's task is left to the engine to settle.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.latest != nil && d.latest.timer != nil {
		d.latest.timer.Stop()
	}
	d.latest = nil
}
