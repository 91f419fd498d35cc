// Package render rasterizes globe frames: background, sphere, graticule,
// land polygons, and the marker, with per-stage fault isolation.
package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/orbview/orbview/internal/geom"
	"github.com/orbview/orbview/internal/globe"
)

// graticuleStep is the spacing of grid meridians and parallels in degrees;
// sampleStep is the sampling resolution along each grid line.
const (
	graticuleStep = 10.0
	sampleStep    = 2.0
	markerRadius  = 4.0
)

// Frame colors.
var (
	colorBackground = color.RGBA{16, 18, 24, 255}
	colorOcean      = color.RGBA{24, 48, 84, 255}
	colorGraticule  = color.RGBA{255, 255, 255, 36}
	colorLand       = color.RGBA{72, 130, 86, 255}
	colorMarker     = color.RGBA{240, 82, 60, 255}
)

// StageError records the failure of one drawing stage.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e StageError) Error() string {
	return fmt.Sprintf("render stage %s: %v", e.Stage, e.Err)
}

// Marker is a geographic point to highlight on the globe.
type Marker struct {
	Lon float64
	Lat float64
}

// Renderer paints frames for a view. A failing stage never aborts the
// remaining stages: a partial frame beats a blank one.
type Renderer struct {
	log *zap.Logger

	mu     sync.Mutex
	marker *Marker
}

// New returns a renderer reporting stage failures to the given logger.
func New(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{log: logger}
}

// SetMarker pins the marker to a geographic position. A nil marker
// reverts it to the viewport center.
func (r *Renderer) SetMarker(m *Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == nil {
		r.marker = nil
		return
	}
	copied := *m
	r.marker = &copied
}

func (r *Renderer) markerPosition() *Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marker
}

// Render paints one frame of the given view. The dataset may be nil, in
// which case the land stage is skipped silently. All stage failures are
// collected and logged; the returned image is always usable.
func (r *Renderer) Render(view globe.View, vp globe.Viewport, fc *geojson.FeatureCollection) (*image.RGBA, []StageError) {
	dpr := vp.DPR
	if dpr <= 0 {
		dpr = 1
	}
	w := int(float64(vp.W) * dpr)
	h := int(float64(vp.H) * dpr)
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	proj := geom.NewOrthographic()
	proj.Scale(view.Scale * dpr)
	proj.Translate(float64(w)/2, float64(h)/2)
	proj.Rotate(view.Rotation.Yaw, view.Rotation.Pitch, view.Rotation.Roll)

	var failures []StageError
	run := func(name string, fn func() error) {
		if err := r.runStage(name, fn); err != nil {
			failures = append(failures, StageError{Stage: name, Err: err})
		}
	}

	run("background", func() error { return drawBackground(img) })
	run("sphere", func() error { return drawSphere(img, proj) })
	run("graticule", func() error { return drawGraticule(img, proj) })
	if fc != nil {
		run("land", func() error { return drawLand(img, proj, fc) })
	}
	run("marker", func() error { return drawMarker(img, proj, r.markerPosition(), dpr) })

	for _, f := range failures {
		r.log.Warn("render stage failed", zap.String("stage", f.Stage), zap.Error(f.Err))
	}
	return img, failures
}

// runStage executes one drawing stage, converting panics from malformed
// geometry into stage errors.
func (r *Renderer) runStage(name string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", name, rec)
		}
	}()
	return fn()
}

// drawBackground fills the frame with the page color.
func drawBackground(img *image.RGBA) error {
	fillRect(img, colorBackground)
	return nil
}

// drawSphere paints the globe disc.
func drawSphere(img *image.RGBA, proj *geom.Orthographic) error {
	cx, cy := center(img)
	fillCircle(img, cx, cy, proj.ScaleValue(), colorOcean)
	return nil
}

// drawGraticule strokes meridians and parallels at the grid spacing,
// breaking each line into its visible runs.
func drawGraticule(img *image.RGBA, proj *geom.Orthographic) error {
	for lon := -180.0; lon < 180; lon += graticuleStep {
		var line []point
		for lat := -90.0; lat <= 90; lat += sampleStep {
			line = appendSample(line, proj, lon, lat)
		}
		strokeRuns(img, line, colorGraticule)
	}
	for lat := -80.0; lat <= 80; lat += graticuleStep {
		var line []point
		for lon := -180.0; lon <= 180; lon += sampleStep {
			line = appendSample(line, proj, lon, lat)
		}
		strokeRuns(img, line, colorGraticule)
	}
	return nil
}

// drawLand fills the dataset's polygons, clipped per point to the visible
// hemisphere.
func drawLand(img *image.RGBA, proj *geom.Orthographic, fc *geojson.FeatureCollection) error {
	count := 0
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		count += fillGeometry(img, proj, f.Geometry)
	}
	if count == 0 && len(fc.Features) > 0 {
		// All geometry on the far hemisphere is normal; completely
		// unusable geometry is not.
		if !hasPolygons(fc) {
			return fmt.Errorf("no polygon geometry in %d features", len(fc.Features))
		}
	}
	return nil
}

// fillGeometry fills one geometry, returning the number of rings drawn.
func fillGeometry(img *image.RGBA, proj *geom.Orthographic, g *geojson.Geometry) int {
	switch g.Type {
	case geojson.GeometryPolygon:
		return fillPolygon(img, proj, g.Polygon)
	case geojson.GeometryMultiPolygon:
		n := 0
		for _, poly := range g.MultiPolygon {
			n += fillPolygon(img, proj, poly)
		}
		return n
	case geojson.GeometryCollection:
		n := 0
		for _, sub := range g.Geometries {
			if sub != nil {
				n += fillGeometry(img, proj, sub)
			}
		}
		return n
	default:
		return 0
	}
}

// fillPolygon projects a polygon's rings and fills the visible runs.
func fillPolygon(img *image.RGBA, proj *geom.Orthographic, rings [][][]float64) int {
	drawn := 0
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		var pts []point
		for _, coord := range ring {
			if len(coord) < 2 {
				continue
			}
			pts = appendSample(pts, proj, coord[0], coord[1])
		}
		if fillVisibleRuns(img, pts, colorLand) {
			drawn++
		}
	}
	return drawn
}

// drawMarker paints the marker. A configured position is projected onto
// the globe and skipped while on the far hemisphere; without one the
// marker sits at the viewport center.
func drawMarker(img *image.RGBA, proj *geom.Orthographic, m *Marker, dpr float64) error {
	cx, cy := center(img)
	if m != nil {
		x, y, visible := proj.Project(m.Lon, m.Lat)
		if !visible {
			return nil
		}
		cx, cy = x, y
	}
	fillCircle(img, cx, cy, markerRadius*dpr, colorMarker)
	return nil
}

// hasPolygons reports whether the collection contains any polygonal
// geometry at all.
func hasPolygons(fc *geojson.FeatureCollection) bool {
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch f.Geometry.Type {
		case geojson.GeometryPolygon, geojson.GeometryMultiPolygon, geojson.GeometryCollection:
			return true
		}
	}
	return false
}

// appendSample projects one coordinate and appends it to a line, tagging
// far-hemisphere points as breaks.
func appendSample(line []point, proj *geom.Orthographic, lon, lat float64) []point {
	x, y, visible := proj.Project(lon, lat)
	return append(line, point{x: x, y: y, visible: visible})
}

// center returns the midpoint of the image.
func center(img *image.RGBA) (float64, float64) {
	b := img.Bounds()
	return float64(b.Dx()) / 2, float64(b.Dy()) / 2
}
