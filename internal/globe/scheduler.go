package globe

import (
	"sync"
	"time"
)

// Scheduler requests and withdraws future animation ticks. At most one tick
// is pending at a time; Request while a tick is pending is a no-op.
type Scheduler interface {
	// Request schedules a tick if none is pending.
	Request()
	// Cancel withdraws a pending tick, if any.
	Cancel()
}

// TimerScheduler is the production Scheduler: a wall-clock timer firing at
// the configured frame interval.
type TimerScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	tick     func()
	timer    *time.Timer
	stopped  bool
}

// NewTimerScheduler returns a scheduler firing tick roughly fps times per
// second while ticks keep being requested.
func NewTimerScheduler(fps int, tick func()) *TimerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TimerScheduler{
		interval: time.Second / time.Duration(fps),
		tick:     tick,
	}
}

// Request arms the timer for one tick unless one is already pending.
func (s *TimerScheduler) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.interval, s.fire)
}

// Cancel withdraws the pending tick.
func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Stop cancels any pending tick and rejects future requests.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.Cancel()
}

// fire clears the pending state before running the tick so the tick may
// request its successor.
func (s *TimerScheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.tick()
}
