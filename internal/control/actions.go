package control

// ActionType identifies the kind of globe operation to execute.
type ActionType string

const (
	// ActBegin starts a drag gesture.
	ActBegin ActionType = "begin"
	// ActDrag continues an active drag.
	ActDrag ActionType = "drag"
	// ActEnd finishes a drag gesture.
	ActEnd ActionType = "end"
	// ActZoom sets the zoom factor.
	ActZoom ActionType = "zoom"
	// ActReset flies the view back to the home orientation.
	ActReset ActionType = "reset"
)

// Action describes a normalized globe operation to apply.
type Action struct {
	Type   ActionType
	X      float64
	Y      float64
	DX     float64
	DY     float64
	K      float64
	Rotate bool
}
