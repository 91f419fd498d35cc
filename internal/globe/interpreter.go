package globe

import "math"

// BeginGesture opens an interaction session. A rotate gesture (modifier key
// or multi-touch) adjusts roll; everything else pans. The start roll is
// taken from the current target, not the rendered view, so a gesture
// composes consistently with an in-flight animation. Any pending tick is
// withdrawn and re-requested so a stale scheduled frame never races the
// fresh gesture.
func (c *Controller) BeginGesture(x, y float64, rotate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sched != nil {
		c.sched.Cancel()
	}
	c.session = gestureSession{
		active:    true,
		rotate:    rotate,
		startX:    x,
		startY:    y,
		startRoll: c.tgt.Rotation.Roll,
	}
	if c.running && c.sched != nil {
		c.sched.Request()
	}
}

// Move advances the active gesture. Rotate gestures set the target roll
// from the polar-angle delta about the viewport center; pan gestures turn
// pixel deltas into yaw/pitch deltas scaled inversely with the current
// projection scale.
func (c *Controller) Move(x, y, dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.active {
		return
	}
	if c.session.rotate {
		c.moveRotateLocked(x, y)
		return
	}
	c.movePanLocked(x, y, dx, dy)
}

// EndGesture closes the interaction session. Targets are left as the last
// move set them.
func (c *Controller) EndGesture() {
	c.mu.Lock()
	c.session = gestureSession{}
	c.mu.Unlock()
}

// Zoom sets the target scale from a zoom factor relative to the base scale.
// This is also the programmatic path used by the reset transition; rotation
// is never touched here.
func (c *Controller) Zoom(k float64) {
	c.mu.Lock()
	c.zoomLocked(k)
	c.mu.Unlock()
}

// SetTarget requests an explicit view: rotation plus zoom factor. Used by
// the programmatic fly-to API.
func (c *Controller) SetTarget(rot Orientation, k float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !isFinite(rot.Yaw) || !isFinite(rot.Pitch) || !isFinite(rot.Roll) {
		return
	}
	rot.Pitch = clampPitch(rot.Pitch)
	c.tgt.Rotation = rot
	c.zoomLocked(k)
}

// zoomLocked clamps the factor to the permitted interval and applies it.
func (c *Controller) zoomLocked(k float64) {
	if c.baseScale <= 0 {
		return
	}
	c.tgt.Scale = c.limits.Clamp(k) * c.baseScale
	c.wakeLocked()
}

// moveRotateLocked updates the target roll from the polar angle swept
// between the gesture start point and the current point.
func (c *Controller) moveRotateLocked(x, y float64) {
	cx := float64(c.vp.W) / 2
	cy := float64(c.vp.H) / 2

	a0 := math.Atan2(c.session.startY-cy, c.session.startX-cx)
	a1 := math.Atan2(y-cy, x-cx)
	delta := (a1 - a0) * 180 / math.Pi

	c.tgt.Rotation.Roll = c.session.startRoll + delta
	c.wakeLocked()
}

// movePanLocked updates the target yaw and pitch from pixel movement
// deltas. Sensitivity shrinks as the projection scale grows, so one pixel
// of drag rotates the globe less when zoomed in. A pointer off the visible
// sphere, or a move with no delta, leaves the target unchanged.
func (c *Controller) movePanLocked(x, y, dx, dy float64) {
	if dx == 0 && dy == 0 {
		c.wakeLocked()
		return
	}
	if c.cur.Scale <= 0 {
		return
	}
	if _, _, ok := c.projectionLocked().Invert(x, y); !ok {
		c.wakeLocked()
		return
	}

	factor := (180 / c.cur.Scale) * panSensitivity
	c.tgt.Rotation.Yaw += dx * factor
	c.tgt.Rotation.Pitch = clampPitch(c.tgt.Rotation.Pitch - dy*factor)
	c.wakeLocked()
}

// clampPitch bounds pitch strictly inside the poles.
func clampPitch(pitch float64) float64 {
	if pitch > pitchLimit {
		return pitchLimit
	}
	if pitch < -pitchLimit {
		return -pitchLimit
	}
	return pitch
}
