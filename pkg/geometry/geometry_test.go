package geometry

import (
	"math"
	"testing"
)

func TestRectFromCorners(t *testing.T) {
	cases := []struct {
		name string
		a, b Point2D
		want Rect
	}{
		{"top-left to bottom-right", Point2D{10, 10}, Point2D{50, 40}, Rect{10, 10, 40, 30}},
		{"bottom-right to top-left", Point2D{50, 40}, Point2D{10, 10}, Rect{10, 10, 40, 30}},
		{"degenerate", Point2D{5, 5}, Point2D{5, 5}, Rect{5, 5, 0, 0}},
	}
	for _, c := range cases {
		if got := RectFromCorners(c.a, c.b); got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestRectIntersectsPartialOverlap(t *testing.T) {
	band := NewRect(10, 10, 40, 40)

	overlapping := NewRect(40, 40, 20, 20)
	if !band.Intersects(overlapping) {
		t.Errorf("expected %+v to intersect %+v", band, overlapping)
	}

	disjoint := NewRect(60, 60, 20, 20)
	if band.Intersects(disjoint) {
		t.Errorf("expected %+v not to intersect %+v", band, disjoint)
	}

	// Shared edge only is not an overlap.
	touching := NewRect(50, 10, 10, 10)
	if band.Intersects(touching) {
		t.Errorf("edge-touching rectangles should not count as intersecting")
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{10, 60}, {110, 10}, {50, 200}}
	got := BoundingBox(pts)
	want := Rect{10, 10, 100, 190}
	if got != want {
		t.Fatalf("BoundingBox = %+v, want %+v", got, want)
	}

	if bb := BoundingBox(nil); bb != (Rect{}) {
		t.Fatalf("empty input should yield zero rect, got %+v", bb)
	}
}

func TestPointInPolygon(t *testing.T) {
	// Non-convex "L" shape, open ring.
	poly := []Point2D{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}}

	inside := []Point2D{{2, 2}, {8, 2}, {2, 8}}
	for _, p := range inside {
		if !PointInPolygon(p, poly) {
			t.Errorf("expected %+v to be inside", p)
		}
	}

	outside := []Point2D{{8, 8}, {-1, 5}, {11, 2}}
	for _, p := range outside {
		if PointInPolygon(p, poly) {
			t.Errorf("expected %+v to be outside", p)
		}
	}

	if PointInPolygon(Point2D{1, 1}, poly[:2]) {
		t.Error("two points are not a polygon")
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Point2D{0, 0}, Point2D{10, 0}

	if d := SegmentDistance(Point2D{5, 3}, a, b); math.Abs(d-3) > 1e-9 {
		t.Errorf("perpendicular distance = %v, want 3", d)
	}
	if d := SegmentDistance(Point2D{-4, 3}, a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("distance past segment end = %v, want 5", d)
	}
	if d := SegmentDistance(Point2D{3, 4}, a, a); math.Abs(d-5) > 1e-9 {
		t.Errorf("zero-length segment distance = %v, want 5", d)
	}
}
