// Package geom implements the orthographic globe projection.
package geom

import "math"

const (
	// DefaultClipAngle is the great-circle clip distance of the visible hemisphere.
	DefaultClipAngle = 90.0

	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Orthographic projects geographic coordinates onto the viewing plane of a
// globe seen from infinite distance. The projection carries a rotation
// triple (yaw, pitch, roll), a pixel scale, and a screen translation.
// It is not safe for concurrent mutation; callers serialize access.
type Orthographic struct {
	scale  float64
	tx, ty float64

	yaw, pitch, roll float64

	// cached rotation terms, radians
	dLam               float64
	sinDPhi, cosDPhi   float64
	sinDGam, cosDGam   float64
}

// NewOrthographic returns a projection with unit scale, zero translation,
// and identity rotation.
func NewOrthographic() *Orthographic {
	o := &Orthographic{scale: 1}
	o.Rotate(0, 0, 0)
	return o
}

// Rotate sets the rotation triple in degrees. Yaw rotates about the polar
// axis, pitch about the horizontal screen axis, roll about the viewing axis.
func (o *Orthographic) Rotate(yaw, pitch, roll float64) {
	o.yaw, o.pitch, o.roll = yaw, pitch, roll
	o.dLam = yaw * deg2rad
	o.sinDPhi, o.cosDPhi = math.Sincos(pitch * deg2rad)
	o.sinDGam, o.cosDGam = math.Sincos(roll * deg2rad)
}

// Angles returns the current rotation triple in degrees.
func (o *Orthographic) Angles() (yaw, pitch, roll float64) {
	return o.yaw, o.pitch, o.roll
}

// Scale sets the pixel scale.
func (o *Orthographic) Scale(k float64) {
	o.scale = k
}

// ScaleValue returns the current pixel scale.
func (o *Orthographic) ScaleValue() float64 {
	return o.scale
}

// Translate sets the screen-space center of the projection.
func (o *Orthographic) Translate(x, y float64) {
	o.tx, o.ty = x, y
}

// Project maps a geographic coordinate (degrees) to screen space. The
// visible flag is false when the point lies on the far hemisphere; the
// returned coordinates are still the plane projection of the point.
func (o *Orthographic) Project(lon, lat float64) (x, y float64, visible bool) {
	lam, phi := o.rotateForward(lon*deg2rad, lat*deg2rad)
	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)

	x = o.tx + o.scale*cosPhi*sinLam
	y = o.ty - o.scale*sinPhi
	visible = cosPhi*cosLam >= 0
	return x, y, visible
}

// Invert maps a screen coordinate back to a geographic coordinate. It
// returns ok=false when the pixel lies off the projected unit disc.
func (o *Orthographic) Invert(x, y float64) (lon, lat float64, ok bool) {
	if o.scale <= 0 {
		return 0, 0, false
	}
	px := (x - o.tx) / o.scale
	py := (o.ty - y) / o.scale
	rho2 := px*px + py*py
	if rho2 > 1 {
		return 0, 0, false
	}

	phi := math.Asin(py)
	lam := math.Atan2(px, math.Sqrt(1-rho2))
	rlam, rphi := o.rotateInverse(lam, phi)
	return wrapLongitude(rlam * rad2deg), rphi * rad2deg, true
}

// rotateForward applies the yaw/pitch/roll rotation to a spherical
// coordinate in radians.
func (o *Orthographic) rotateForward(lam, phi float64) (float64, float64) {
	lam += o.dLam
	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)
	x := cosLam * cosPhi
	y := sinLam * cosPhi
	z := sinPhi

	k := z*o.cosDPhi + x*o.sinDPhi
	outLam := math.Atan2(y*o.cosDGam-k*o.sinDGam, x*o.cosDPhi-z*o.sinDPhi)
	outPhi := math.Asin(k*o.cosDGam + y*o.sinDGam)
	return outLam, outPhi
}

// rotateInverse undoes the yaw/pitch/roll rotation for a rotated spherical
// coordinate in radians.
func (o *Orthographic) rotateInverse(lam, phi float64) (float64, float64) {
	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)
	x := cosLam * cosPhi
	y := sinLam * cosPhi
	z := sinPhi

	k := z*o.cosDGam - y*o.sinDGam
	outLam := math.Atan2(y*o.cosDGam+z*o.sinDGam, x*o.cosDPhi+k*o.sinDPhi)
	outPhi := math.Asin(k*o.cosDPhi - x*o.sinDPhi)
	return outLam - o.dLam, outPhi
}

// wrapLongitude reduces a longitude in degrees into [-180, 180).
func wrapLongitude(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon >= 180 {
		lon -= 360
	}
	return lon
}
