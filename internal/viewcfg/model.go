// Package viewcfg persists the saved home view between runs.
package viewcfg

import (
	"math"

	"github.com/orbview/orbview/internal/globe"
)

// Marker is an optional geographic point highlighted on the globe.
type Marker struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ViewConfig stores the saved home orientation, an optional marker
// position, and the dataset path.
type ViewConfig struct {
	Rotation globe.Orientation `json:"rotation"`
	Marker   *Marker           `json:"marker,omitempty"`
	Dataset  string            `json:"dataset,omitempty"`
}

// Default returns the out-of-the-box home view.
func Default() ViewConfig {
	return ViewConfig{
		Rotation: globe.Orientation{Yaw: 98.5795, Pitch: -39.8283, Roll: 0},
	}
}

// Normalize replaces non-finite rotation components with the default
// home view and drops marker positions that are not valid coordinates.
func Normalize(v ViewConfig) ViewConfig {
	if !finite(v.Rotation.Yaw) || !finite(v.Rotation.Pitch) || !finite(v.Rotation.Roll) {
		v.Rotation = Default().Rotation
	}
	if v.Marker != nil {
		if !finite(v.Marker.Lon) || !finite(v.Marker.Lat) || math.Abs(v.Marker.Lat) > 90 {
			v.Marker = nil
		}
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
