// Package globe owns the interaction-to-projection state machine: it turns
// gesture input into target view state and reconciles the rendered view
// toward it frame by frame.
package globe

// Orientation is a rotation triple in degrees. Yaw rotates about the polar
// axis, pitch about the horizontal screen axis, roll about the viewing axis.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// View is a projection state: a pixel scale plus an orientation.
type View struct {
	Scale    float64     `json:"scale"`
	Rotation Orientation `json:"rotation"`
}

// Viewport describes the client drawing surface.
type Viewport struct {
	W   int     `json:"w"`
	H   int     `json:"h"`
	DPR float64 `json:"dpr"`
}

// BaseScale returns the projection scale of a full-hemisphere view, the
// zoom-factor identity for this viewport.
func (v Viewport) BaseScale() float64 {
	return float64(v.H) / 2
}

// gestureSession is the transient state of one active pointer gesture.
type gestureSession struct {
	active    bool
	rotate    bool
	startX    float64
	startY    float64
	startRoll float64
}
