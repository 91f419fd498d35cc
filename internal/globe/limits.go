package globe

import "math"

const (
	// sphereRadiusKm is the real radius represented by the globe.
	sphereRadiusKm = 6371.0

	// minVisibleDiameterKm is the smallest stretch of the sphere the view may
	// be zoomed down to; it bounds the maximum magnification.
	minVisibleDiameterKm = 1000.0

	// fallbackMaxFactor caps the zoom range when the geometry degenerates.
	fallbackMaxFactor = 20.0
)

// Limits is the closed interval of permitted zoom factors relative to the
// viewport base scale.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp bounds a zoom factor to the interval.
func (l Limits) Clamp(k float64) float64 {
	if !isFinite(k) {
		return l.Min
	}
	if k < l.Min {
		return l.Min
	}
	if k > l.Max {
		return l.Max
	}
	return k
}

// ComputeLimits derives the zoom-factor interval for a viewport height. The
// minimum is always 1 (a full hemisphere); the maximum follows from the
// angular diameter of the smallest permitted visible stretch of the sphere.
// Degenerate geometry falls back to a finite default range so downstream
// interaction code never sees an unbounded interval.
func ComputeLimits(viewportHeight int) Limits {
	fallback := Limits{Min: 1, Max: fallbackMaxFactor}
	if viewportHeight <= 0 {
		return fallback
	}

	half := minVisibleDiameterKm / 2
	ratio := half / sphereRadiusKm
	if ratio > 1 {
		ratio = 1
	}
	if ratio < -1 {
		ratio = -1
	}
	angle := 2 * math.Asin(ratio)
	if !isFinite(angle) || angle <= 0 {
		return fallback
	}

	max := math.Pi / angle
	if !isFinite(max) || max <= 0 {
		return fallback
	}
	if max < 1 {
		max = 1
	}
	return Limits{Min: 1, Max: max}
}

// isFinite reports whether v is a usable finite number.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
