package ideas

import (
	"sync"
	"time"
)

// DefaultFrameInterval is one refresh at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Timer is the part of *time.Timer the Scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func timeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithAfterFunc replaces the timer used to delay publishes. Useful for
// deterministic tests.
func WithAfterFunc(fn AfterFunc) SchedulerOption {
	return func(s *Scheduler) { s.afterFunc = fn }
}

// Scheduler coalesces bursts of change notifications into at most one
// publish per interval.
//
// Mark requests a publish. While one is pending further marks are absorbed,
// so the callback sees only the latest state. Flush publishes immediately and
// cancels anything pending. After Stop returns the callback never runs
// again.
//
// The publish callback runs on the timer goroutine or on the goroutine that
// called Flush, never concurrently with itself. It must not call Flush or
// Stop.
type Scheduler struct {
	interval  time.Duration
	publish   func()
	afterFunc AfterFunc

	// run serializes publishes with each other and with Stop.
	run sync.Mutex

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// NewScheduler creates a Scheduler that calls publish at most once per
// interval. A non-positive interval uses DefaultFrameInterval.
func NewScheduler(interval time.Duration, publish func(), opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	s := &Scheduler{
		interval:  interval,
		publish:   publish,
		afterFunc: timeAfterFunc,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mark requests a publish at the end of the current interval.
func (s *Scheduler) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.timer != nil {
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.afterFunc(s.interval, func() { s.fire(gen) })
}

// Pending reports whether a publish is scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Flush cancels any pending publish and publishes now.
func (s *Scheduler) Flush() {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.mu.Unlock()

	s.publish()
}

// Stop cancels any pending publish and waits for a running one to return.
func (s *Scheduler) Stop() {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelLocked()
}

func (s *Scheduler) fire(gen uint64) {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.Lock()
	if s.stopped || gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.publish()
}

// cancelLocked stops the pending timer. The generation bump also disarms a
// timer callback that already started and is waiting on s.run.
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}
