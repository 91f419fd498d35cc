// Package control handles pointer input protocol and gesture mapping.
package control

import "github.com/orbview/orbview/internal/globe"

// Message is a control websocket payload. Client events carry viewport
// pixel coordinates; the server owns all projection state.
type Message struct {
	T       string  `json:"t"`
	ID      int     `json:"id,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	K       float64 `json:"k,omitempty"`
	Ctrl    bool    `json:"ctrl,omitempty"`
	Touches int     `json:"touches,omitempty"`
	W       int     `json:"w,omitempty"`
	H       int     `json:"h,omitempty"`
	DPR     float64 `json:"dpr,omitempty"`
	Video   string  `json:"video,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`

	// Fly-to fields for the view message. Omitted parts keep their
	// current target value.
	Rotation *globe.Orientation `json:"rotation,omitempty"`
	Zoom     float64            `json:"zoom,omitempty"`

	// Server-to-client fields.
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}
