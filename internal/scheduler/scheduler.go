// Package scheduler holds the single refresh timer of a session.
package scheduler

import (
	"sync"
	"time"

	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/metrics"
)

// DefaultSkew is how long before expiry the refresh fires.
const DefaultSkew = 5 * time.Minute

var log = logger.Named("scheduler")

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler is a single-slot timer: at most one refresh is pending, and every
// Arm replaces the previous one.
type Scheduler struct {
	mu       sync.Mutex
	skew     time.Duration
	now      func() time.Time
	fire     func()
	timer    *time.Timer
	deadline time.Time
	// gen identifies the current slot; a timer whose generation is stale
	// must not fire.
	gen uint64
}

// New creates a scheduler that calls fire skew before each armed expiry.
// A non-positive skew uses DefaultSkew.
func New(skew time.Duration, fire func(), opts ...Option) *Scheduler {
	if skew <= 0 {
		skew = DefaultSkew
	}
	s := &Scheduler{skew: skew, now: time.Now, fire: fire}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Arm cancels any pending timer and schedules fire at expiry-skew. When that
// instant is not in the future nothing is scheduled and Arm returns false; the
// refresh then only happens on an explicit trigger.
func (s *Scheduler) Arm(expiry time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	at := expiry.Add(-s.skew)
	delay := at.Sub(s.now())
	if delay <= 0 {
		log.Debugf("expiry %s is within %s, not scheduling a refresh", expiry.Format(time.RFC3339), s.skew)
		return false
	}
	gen := s.gen
	s.deadline = at
	s.timer = time.AfterFunc(delay, func() { s.run(gen) })
	metrics.RefreshScheduled.Set(1)
	log.Debugf("refresh scheduled in %s", delay.Round(time.Second))
	return true
}

// Disarm cancels the pending timer, if any.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

// Deadline returns when the pending refresh fires.
func (s *Scheduler) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.deadline, true
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
	s.gen++
	metrics.RefreshScheduled.Set(0)
}

func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}
	s.gen++
	metrics.RefreshScheduled.Set(0)
	s.mu.Unlock()

	if s.fire != nil {
		s.fire()
	}
}
