package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// circleSegments controls the polygonal approximation of filled discs.
const circleSegments = 128

// point is a projected screen coordinate; visible is false for points on
// the far hemisphere.
type point struct {
	x, y    float64
	visible bool
}

// fillRect floods the whole image with one color.
func fillRect(img *image.RGBA, col color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Pix[i+0] = col.R
			img.Pix[i+1] = col.G
			img.Pix[i+2] = col.B
			img.Pix[i+3] = col.A
			i += 4
		}
	}
}

// fillCircle rasterizes a filled disc.
func fillCircle(img *image.RGBA, cx, cy, radius float64, col color.RGBA) {
	if radius <= 0 {
		return
	}
	pts := make([]point, 0, circleSegments)
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts = append(pts, point{
			x:       cx + radius*math.Cos(a),
			y:       cy + radius*math.Sin(a),
			visible: true,
		})
	}
	fillVisibleRuns(img, pts, col)
}

// fillVisibleRuns fills the consecutive visible stretches of a projected
// ring through the vector rasterizer. Returns whether anything was drawn.
func fillVisibleRuns(img *image.RGBA, pts []point, col color.RGBA) bool {
	b := img.Bounds()
	ras := vector.NewRasterizer(b.Dx(), b.Dy())

	drawn := false
	open := false
	for _, p := range pts {
		if !p.visible || !finitePoint(p) {
			if open {
				ras.ClosePath()
				open = false
			}
			continue
		}
		if !open {
			ras.MoveTo(float32(p.x), float32(p.y))
			open = true
			continue
		}
		ras.LineTo(float32(p.x), float32(p.y))
		drawn = true
	}
	if open {
		ras.ClosePath()
	}
	if !drawn {
		return false
	}
	ras.Draw(img, b, image.NewUniform(col), image.Point{})
	return true
}

// strokeRuns draws the visible stretches of a projected polyline as thin
// line segments.
func strokeRuns(img *image.RGBA, pts []point, col color.RGBA) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if !a.visible || !b.visible || !finitePoint(a) || !finitePoint(b) {
			continue
		}
		drawLine(img, a.x, a.y, b.x, b.y, col)
	}
}

// drawLine paints a one-pixel line with simple uniform stepping and alpha
// blending. Thin strokes do not go through the vector rasterizer, which
// only fills closed paths.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, col color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		blendPixel(img, int(math.Round(x0+dx*t)), int(math.Round(y0+dy*t)), col)
	}
}

// blendPixel alpha-blends one pixel into the image.
func blendPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	i := img.PixOffset(x, y)
	a := uint32(col.A)
	inv := 255 - a
	img.Pix[i+0] = uint8((uint32(col.R)*a + uint32(img.Pix[i+0])*inv) / 255)
	img.Pix[i+1] = uint8((uint32(col.G)*a + uint32(img.Pix[i+1])*inv) / 255)
	img.Pix[i+2] = uint8((uint32(col.B)*a + uint32(img.Pix[i+2])*inv) / 255)
	img.Pix[i+3] = uint8(minU32(255, a+(uint32(img.Pix[i+3])*inv)/255))
}

// finitePoint reports whether both coordinates are finite.
func finitePoint(p point) bool {
	return !math.IsNaN(p.x) && !math.IsInf(p.x, 0) && !math.IsNaN(p.y) && !math.IsInf(p.y, 0)
}

// minU32 returns the smaller of two uint32 values.
func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
