// Package alarm owns the timer handles for intent lifecycle checks.
//
// The registry maps an intent id to a cancellable one-shot timer and also
// drives the recurring prune loop. Handles are cancelled explicitly when the
// owning intent reaches a terminal state; a timer that fires after its intent
// is gone is the store's problem and is treated there as a silent no-op.
package alarm

import (
	"sync"
	"time"
)

// Scheduler is the surface the intent store uses to arm and disarm the
// per-intent abandonment check.
type Scheduler interface {
	// Schedule arms a one-shot check for id after delay, replacing any
	// pending check for the same id.
	Schedule(id string, delay time.Duration)

	// Cancel disarms the pending check for id. Idempotent.
	Cancel(id string)
}

// Registry is a Scheduler backed by real timers. The fire callback is bound
// at construction and invoked on the timer goroutine.
type Registry struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	tickers []*time.Ticker
	done    chan struct{}
	fire    func(id string)
	stopped bool
}

// NewRegistry creates a Registry that calls fire with the intent id when a
// scheduled check comes due.
func NewRegistry(fire func(id string)) *Registry {
	return &Registry{
		timers: make(map[string]*time.Timer),
		done:   make(chan struct{}),
		fire:   fire,
	}
}

// Schedule implements Scheduler.
func (r *Registry) Schedule(id string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	if t, ok := r.timers[id]; ok {
		t.Stop()
	}
	r.timers[id] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, id)
		stopped := r.stopped
		r.mu.Unlock()
		if !stopped {
			r.fire(id)
		}
	})
}

// Cancel implements Scheduler.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending reports whether a check is armed for id.
func (r *Registry) Pending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[id]
	return ok
}

// Recur runs fn every interval until Stop is called. The first run happens
// after one full interval, matching the browser's periodic alarm behavior.
func (r *Registry) Recur(interval time.Duration, fn func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	ticker := time.NewTicker(interval)
	r.tickers = append(r.tickers, ticker)
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-r.done:
				return
			}
		}
	}()
}

// Stop cancels every pending timer and recurring loop. The registry accepts
// no new work afterwards.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		close(r.done)
	}
	r.stopped = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	for _, ticker := range r.tickers {
		ticker.Stop()
	}
	r.tickers = nil
}

// Nop is a Scheduler for short-lived processes (the CLI) where arming a
// 30-minute timer is pointless: the process exits long before it fires.
type Nop struct{}

// Schedule implements Scheduler.
func (Nop) Schedule(string, time.Duration) {}

// Cancel implements Scheduler.
func (Nop) Cancel(string) {}
