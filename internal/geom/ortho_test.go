package geom

import (
	"math"
	"testing"
)

// TestProject_CenterMapsToTranslation verifies the rotation center lands on
// the screen translation point.
func TestProject_CenterMapsToTranslation(t *testing.T) {
	o := NewOrthographic()
	o.Scale(400)
	o.Translate(400, 400)
	o.Rotate(98.5795, -39.8283, 0)

	x, y, visible := o.Project(-98.5795, 39.8283)
	if !visible {
		t.Fatalf("expected center to be visible")
	}
	if math.Abs(x-400) > 1e-6 || math.Abs(y-400) > 1e-6 {
		t.Fatalf("expected (400,400), got (%v,%v)", x, y)
	}
}

// TestProject_FarHemisphereNotVisible verifies antipodal points are clipped.
func TestProject_FarHemisphereNotVisible(t *testing.T) {
	o := NewOrthographic()
	o.Scale(200)
	o.Translate(200, 200)

	if _, _, visible := o.Project(179, 0); visible {
		t.Fatalf("expected far-side point to be clipped")
	}
	if _, _, visible := o.Project(10, 20); !visible {
		t.Fatalf("expected near-side point to be visible")
	}
}

// TestInvert_RoundTrip verifies Invert undoes Project inside the disc.
func TestInvert_RoundTrip(t *testing.T) {
	o := NewOrthographic()
	o.Scale(300)
	o.Translate(400, 300)
	o.Rotate(45, -20, 15)

	coords := [][2]float64{{0, 0}, {-98.5795, 39.8283}, {12.5, -33.1}, {100, 60}}
	for _, c := range coords {
		x, y, visible := o.Project(c[0], c[1])
		if !visible {
			continue
		}
		lon, lat, ok := o.Invert(x, y)
		if !ok {
			t.Fatalf("invert failed for %v", c)
		}
		if math.Abs(lon-c[0]) > 1e-6 || math.Abs(lat-c[1]) > 1e-6 {
			t.Fatalf("round trip for %v gave (%v,%v)", c, lon, lat)
		}
	}
}

// TestInvert_OffDisc verifies pixels outside the globe disc report not ok.
func TestInvert_OffDisc(t *testing.T) {
	o := NewOrthographic()
	o.Scale(100)
	o.Translate(100, 100)

	if _, _, ok := o.Invert(250, 100); ok {
		t.Fatalf("expected off-disc pixel to fail inversion")
	}
	if _, _, ok := o.Invert(100, 100); !ok {
		t.Fatalf("expected center pixel to invert")
	}
}

// TestRoll_RotatesScreenSpace verifies a 90 degree roll swaps the screen axes.
func TestRoll_RotatesScreenSpace(t *testing.T) {
	o := NewOrthographic()
	o.Scale(100)
	o.Translate(0, 0)
	o.Rotate(0, 0, 90)

	// Without roll, (10E, 0N) projects right of center. With a 90 degree
	// roll it should move onto the vertical axis.
	x, y, _ := o.Project(10, 0)
	if math.Abs(x) > 1e-6 {
		t.Fatalf("expected x near 0 after roll, got %v", x)
	}
	if math.Abs(y) < 1 {
		t.Fatalf("expected y displaced after roll, got %v", y)
	}
}
