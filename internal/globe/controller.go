package globe

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbview/orbview/internal/geom"
)

const (
	// lerpFactor is the fraction of the remaining distance to target closed
	// per tick.
	lerpFactor = 0.15

	// scaleThreshold and angleThreshold bound the convergence snap.
	scaleThreshold = 0.01
	angleThreshold = 0.01

	// pitchLimit keeps the view off the projection singularities at the poles.
	pitchLimit = 89.99

	// panSensitivity scales pixel drag deltas into degrees.
	panSensitivity = 0.8

	// forcedFrames is the minimum number of paints after a wake, so a wake
	// always produces at least one correct frame even when targets already
	// match.
	forcedFrames = 3
)

// FrameFunc paints one frame for the given view and viewport.
type FrameFunc func(View, Viewport)

// Controller owns the view state machine: the interaction interpreter
// writes targets, the reconciler moves the current view toward them, and a
// frame callback paints the result. All state is guarded by one mutex so
// input handling and ticks share a single logical timeline.
type Controller struct {
	mu    sync.Mutex
	sched Scheduler
	frame FrameFunc
	log   *zap.Logger
	now   func() time.Time

	vp        Viewport
	baseScale float64
	limits    Limits
	home      Orientation

	cur View
	tgt View

	session    gestureSession
	transition *zoomTransition

	running bool
	forced  int
}

// Options configures a Controller.
type Options struct {
	// Home is the orientation restored by Reset and used as the initial
	// target rotation.
	Home Orientation
	// Frame paints a frame; it is called outside the controller lock.
	Frame FrameFunc
	// Logger may be nil.
	Logger *zap.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewController returns a controller with no viewport yet; callers attach a
// scheduler with SetScheduler and feed geometry through SetViewport before
// input arrives.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	frame := opts.Frame
	if frame == nil {
		frame = func(View, Viewport) {}
	}
	c := &Controller{
		frame:  frame,
		log:    logger,
		now:    now,
		home:   opts.Home,
		limits: ComputeLimits(0),
	}
	c.tgt.Rotation = opts.Home
	c.cur.Rotation = opts.Home
	return c
}

// SetScheduler attaches the tick source. It must be called before input or
// viewport updates arrive.
func (c *Controller) SetScheduler(s Scheduler) {
	c.mu.Lock()
	c.sched = s
	c.mu.Unlock()
}

// SetViewport refreshes the drawing-surface geometry: it recomputes the
// base scale and zoom limits and re-derives the target scale from the
// preserved zoom factor.
func (c *Controller) SetViewport(vp Viewport) {
	c.mu.Lock()
	if vp.W <= 0 || vp.H <= 0 {
		c.mu.Unlock()
		return
	}
	if vp.DPR <= 0 {
		vp.DPR = 1
	}

	k := 1.0
	if c.baseScale > 0 && c.tgt.Scale > 0 {
		k = c.tgt.Scale / c.baseScale
	}

	c.vp = vp
	c.baseScale = vp.BaseScale()
	c.limits = ComputeLimits(vp.H)
	c.tgt.Scale = c.limits.Clamp(k) * c.baseScale
	if c.cur.Scale <= 0 {
		// First geometry: nothing rendered yet, start at the target.
		c.cur.Scale = c.tgt.Scale
	}
	c.wakeLocked()
	c.mu.Unlock()
}

// CurrentView returns the view used for the most recent paint.
func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// TargetView returns the view requested by the latest input.
func (c *Controller) TargetView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tgt
}

// Viewport returns the current drawing-surface geometry.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp
}

// ZoomLimits returns the permitted zoom-factor interval.
func (c *Controller) ZoomLimits() Limits {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limits
}

// BaseScale returns the scale of a full-hemisphere view.
func (c *Controller) BaseScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseScale
}

// Running reports whether the reconciler is between wake and convergence.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// wakeLocked transitions the reconciler from Idle to Running. A target left
// without a running loop would be stranded, so every target mutation ends
// here.
func (c *Controller) wakeLocked() {
	if c.running {
		return
	}
	c.running = true
	c.forced = forcedFrames
	if c.sched != nil {
		c.sched.Request()
	}
}

// projectionLocked builds a projection matching the current rendered view,
// used to test pointer positions against the visible sphere.
func (c *Controller) projectionLocked() *geom.Orthographic {
	p := geom.NewOrthographic()
	p.Scale(c.cur.Scale)
	p.Translate(float64(c.vp.W)/2, float64(c.vp.H)/2)
	p.Rotate(c.cur.Rotation.Yaw, c.cur.Rotation.Pitch, c.cur.Rotation.Roll)
	return p
}
