package globe

import "math"

// Step runs one reconciler tick: heal invalid targets, advance any reset
// transition, interpolate the current view toward the target, paint when
// something moved, and either schedule the next tick or fall back to Idle
// after one final exact-target paint. Step never fails; inconsistent
// targets are corrected in place rather than surfaced.
func (c *Controller) Step() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}

	c.stepTransitionLocked()
	c.healTargetsLocked()

	changed := c.interpolateLocked()
	paint := changed
	if c.forced > 0 {
		c.forced--
		paint = true
	}

	idle := c.withinThresholdLocked() && c.forced == 0 && c.transition == nil
	if idle {
		// Final paint lands exactly on target before the loop stops.
		c.cur = c.tgt
		c.running = false
		paint = true
		if c.sched != nil {
			c.sched.Cancel()
		}
	} else if c.sched != nil {
		c.sched.Request()
	}

	view, vp := c.cur, c.vp
	c.mu.Unlock()

	if paint {
		c.frame(view, vp)
	}
}

// healTargetsLocked replaces corrupt target state with the current view. A
// broken target must never freeze the visible globe.
func (c *Controller) healTargetsLocked() {
	if !isFinite(c.tgt.Scale) || c.tgt.Scale <= 0 {
		c.tgt.Scale = c.cur.Scale
	}
	r := c.tgt.Rotation
	if !isFinite(r.Yaw) || !isFinite(r.Pitch) || !isFinite(r.Roll) {
		c.tgt.Rotation = c.cur.Rotation
	}
}

// interpolateLocked moves every component of the current view toward its
// target by exponential smoothing, snapping once within threshold. Yaw and
// roll travel the shortest wrapped path; pitch is clamped, never wrapped.
func (c *Controller) interpolateLocked() bool {
	changed := false

	if d := c.tgt.Scale - c.cur.Scale; math.Abs(d) > scaleThreshold {
		c.cur.Scale += d * lerpFactor
		changed = true
	} else if c.cur.Scale != c.tgt.Scale {
		c.cur.Scale = c.tgt.Scale
		changed = true
	}

	if step(&c.cur.Rotation.Yaw, c.tgt.Rotation.Yaw, true) {
		changed = true
	}
	if step(&c.cur.Rotation.Pitch, c.tgt.Rotation.Pitch, false) {
		changed = true
	}
	if step(&c.cur.Rotation.Roll, c.tgt.Rotation.Roll, true) {
		changed = true
	}
	return changed
}

// withinThresholdLocked reports whether every component is within its
// convergence threshold of the target.
func (c *Controller) withinThresholdLocked() bool {
	if math.Abs(c.tgt.Scale-c.cur.Scale) > scaleThreshold {
		return false
	}
	if math.Abs(angleDelta(c.cur.Rotation.Yaw, c.tgt.Rotation.Yaw, true)) > angleThreshold {
		return false
	}
	if math.Abs(angleDelta(c.cur.Rotation.Pitch, c.tgt.Rotation.Pitch, false)) > angleThreshold {
		return false
	}
	if math.Abs(angleDelta(c.cur.Rotation.Roll, c.tgt.Rotation.Roll, true)) > angleThreshold {
		return false
	}
	return true
}

// step advances one angular component, returning whether it moved.
func step(cur *float64, tgt float64, wrap bool) bool {
	d := angleDelta(*cur, tgt, wrap)
	if math.Abs(d) > angleThreshold {
		*cur += d * lerpFactor
		return true
	}
	if *cur != tgt {
		*cur = tgt
		return true
	}
	return false
}

// angleDelta returns the signed distance from cur to tgt. Wrap-sensitive
// components reduce the difference into (-180, 180] so interpolation takes
// the shortest path around the circle.
func angleDelta(cur, tgt float64, wrap bool) float64 {
	d := tgt - cur
	if !wrap {
		return d
	}
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}
