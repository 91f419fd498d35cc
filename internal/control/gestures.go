package control

import (
	"math"
	"time"
)

const (
	minMoveInterval = 16 * time.Millisecond
	minMoveDelta    = 2.0
)

// GestureState tracks drag state for pointer interactions and coalesces
// high-frequency move events. Throttled moves keep the last emitted
// position, so the next emitted drag carries the full accumulated delta.
type GestureState struct {
	dragActive  bool
	dragPointer int
	rotating    bool
	lastMoveAt  time.Time
	lastX       float64
	lastY       float64
	now         func() time.Time
}

// NewGestureState returns a ready-to-use gesture tracker.
func NewGestureState() *GestureState {
	return &GestureState{now: time.Now}
}

// SetNowFunc overrides the clock used for throttling.
func (g *GestureState) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		g.now = fn
	}
}

// HandleDown processes a pointer down event. Ctrl-drag and two-finger
// touch select the roll gesture; everything else pans.
func (g *GestureState) HandleDown(inputEnabled bool, pointerID int, x, y float64, rotate bool) []Action {
	if !inputEnabled || !finite(x) || !finite(y) {
		return nil
	}
	g.dragActive = true
	g.dragPointer = pointerID
	g.rotating = rotate
	g.lastMoveAt = g.now()
	g.lastX = x
	g.lastY = y
	return []Action{{Type: ActBegin, X: x, Y: y, Rotate: rotate}}
}

// HandleMove processes a pointer move event.
func (g *GestureState) HandleMove(inputEnabled bool, pointerID int, x, y float64) []Action {
	if !inputEnabled || !finite(x) || !finite(y) {
		return nil
	}
	if !g.dragActive || g.dragPointer != pointerID {
		return nil
	}

	now := g.now()
	if !g.lastMoveAt.IsZero() && now.Sub(g.lastMoveAt) < minMoveInterval {
		return nil
	}
	dx := x - g.lastX
	dy := y - g.lastY
	if math.Abs(dx) < minMoveDelta && math.Abs(dy) < minMoveDelta {
		return nil
	}

	g.lastMoveAt = now
	g.lastX = x
	g.lastY = y
	return []Action{{Type: ActDrag, X: x, Y: y, DX: dx, DY: dy, Rotate: g.rotating}}
}

// HandleUp processes a pointer up event.
func (g *GestureState) HandleUp(inputEnabled bool, pointerID int) []Action {
	if !g.dragActive || g.dragPointer != pointerID {
		return nil
	}
	g.dragActive = false
	if !inputEnabled {
		return nil
	}
	return []Action{{Type: ActEnd}}
}

// HandleZoom processes a wheel or pinch zoom carrying the desired zoom
// factor. Out-of-range factors are clamped downstream.
func (g *GestureState) HandleZoom(inputEnabled bool, k float64) []Action {
	if !inputEnabled || !finite(k) || k <= 0 {
		return nil
	}
	return []Action{{Type: ActZoom, K: k}}
}

// HandleDoubleClick processes a double click, which always resets the
// view, even mid-drag.
func (g *GestureState) HandleDoubleClick(inputEnabled bool) []Action {
	if !inputEnabled {
		return nil
	}
	g.dragActive = false
	return []Action{{Type: ActReset}}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
