package globe

import (
	"testing"
	"time"
)

// fakeScheduler records tick requests and cancellations for tests; tests
// drive Step directly instead of waiting on timers.
type fakeScheduler struct {
	requests int
	cancels  int
	pending  bool
}

// Request records a tick request.
func (f *fakeScheduler) Request() {
	f.requests++
	f.pending = true
}

// Cancel records a tick withdrawal.
func (f *fakeScheduler) Cancel() {
	f.cancels++
	f.pending = false
}

// frameRecorder collects painted views.
type frameRecorder struct {
	frames []View
}

// record is the FrameFunc of the recorder.
func (r *frameRecorder) record(v View, _ Viewport) {
	r.frames = append(r.frames, v)
}

// testController builds a wired controller with an 800x800 viewport and the
// fixed home orientation used throughout the tests.
func testController(t *testing.T) (*Controller, *fakeScheduler, *frameRecorder) {
	t.Helper()
	rec := &frameRecorder{}
	c := NewController(Options{
		Home:  Orientation{Yaw: 98.5795, Pitch: -39.8283, Roll: 0},
		Frame: rec.record,
	})
	sched := &fakeScheduler{}
	c.SetScheduler(sched)
	c.SetViewport(Viewport{W: 800, H: 800, DPR: 1})
	return c, sched, rec
}

// converge drives ticks until the reconciler goes idle or the frame budget
// runs out.
func converge(t *testing.T, c *Controller) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if !c.Running() {
			return
		}
		c.Step()
	}
	t.Fatalf("reconciler did not reach idle within budget: cur=%+v tgt=%+v", c.CurrentView(), c.TargetView())
}

// fixedClock is a manually advanced clock for transition tests.
type fixedClock struct {
	t time.Time
}

// now returns the current fake time.
func (f *fixedClock) now() time.Time {
	return f.t
}

// advance moves the fake time forward.
func (f *fixedClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}
