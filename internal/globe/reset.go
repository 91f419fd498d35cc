package globe

import "time"

// resetDuration bounds the reset zoom transition in wall-clock time.
const resetDuration = 750 * time.Millisecond

// zoomTransition eases the zoom factor back to identity over a fixed
// duration, feeding the programmatic zoom path on every reconciler tick.
type zoomTransition struct {
	start time.Time
	dur   time.Duration
	fromK float64
}

// Reset drives the view back to the initial configuration: target rotation
// snaps to the home orientation immediately, while the zoom factor eases
// from its current value to 1 over the transition duration.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	fromK := 1.0
	if c.baseScale > 0 && c.tgt.Scale > 0 {
		fromK = c.limits.Clamp(c.tgt.Scale / c.baseScale)
	}

	c.tgt.Rotation = c.home
	c.tgt.Scale = c.baseScale
	c.session = gestureSession{}

	if fromK != 1 && c.dur() > 0 {
		c.transition = &zoomTransition{start: c.now(), dur: c.dur(), fromK: fromK}
	} else {
		c.transition = nil
	}
	c.wakeLocked()
}

// Home returns the orientation restored by Reset.
func (c *Controller) Home() Orientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.home
}

// dur returns the reset transition duration.
func (c *Controller) dur() time.Duration {
	return resetDuration
}

// stepTransitionLocked advances the reset transition, emitting one
// programmatic zoom-factor update per tick and converging exactly on the
// identity factor when the duration elapses.
func (c *Controller) stepTransitionLocked() {
	if c.transition == nil {
		return
	}
	tr := c.transition

	elapsed := c.now().Sub(tr.start)
	if elapsed >= tr.dur {
		c.transition = nil
		c.zoomLocked(1)
		return
	}

	t := easeInOutCubic(float64(elapsed) / float64(tr.dur))
	c.zoomLocked(tr.fromK + (1-tr.fromK)*t)
}

// easeInOutCubic is a symmetric cubic easing over [0, 1].
func easeInOutCubic(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
