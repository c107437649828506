package annotation

import (
	"testing"

	"ocr-labeler/pkg/geometry"
)

func TestNewRectCornerOrder(t *testing.T) {
	// Corner order is TL,TR,BR,BL no matter which way the rect was dragged.
	cases := []struct {
		name string
		a, b geometry.Point2D
	}{
		{"down-right", geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{X: 110, Y: 60}},
		{"up-left", geometry.Point2D{X: 110, Y: 60}, geometry.Point2D{X: 10, Y: 10}},
		{"down-left", geometry.Point2D{X: 110, Y: 10}, geometry.Point2D{X: 10, Y: 60}},
		{"up-right", geometry.Point2D{X: 10, Y: 60}, geometry.Point2D{X: 110, Y: 10}},
	}
	want := []geometry.Point2D{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60}}
	for _, c := range cases {
		s := NewRect(c.a, c.b)
		if len(s.Points) != 4 {
			t.Fatalf("%s: rect must have 4 points, got %d", c.name, len(s.Points))
		}
		for i, p := range want {
			if s.Points[i] != p {
				t.Errorf("%s: point %d = %+v, want %+v", c.name, i, s.Points[i], p)
			}
		}
	}
}

func TestShapeHitTest(t *testing.T) {
	rect := NewRect(geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{X: 50, Y: 50})
	if !rect.HitTest(geometry.Point2D{X: 30, Y: 30}) {
		t.Error("point inside rect should hit")
	}
	if rect.HitTest(geometry.Point2D{X: 60, Y: 30}) {
		t.Error("point outside rect should miss")
	}

	tri := NewPolygon([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}})
	if !tri.HitTest(geometry.Point2D{X: 5, Y: 3}) {
		t.Error("point inside triangle should hit")
	}
	if tri.HitTest(geometry.Point2D{X: 0, Y: 9}) {
		t.Error("point outside triangle should miss")
	}
}

func TestShapeCornerAt(t *testing.T) {
	rect := NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 100, Y: 100})

	if got := rect.CornerAt(geometry.Point2D{X: 98, Y: 3}, 5); got != CornerTopRight {
		t.Errorf("CornerAt near top-right = %d, want %d", got, CornerTopRight)
	}
	if got := rect.CornerAt(geometry.Point2D{X: 50, Y: 50}, 5); got != -1 {
		t.Errorf("CornerAt in body = %d, want -1", got)
	}
	// Closest corner wins when two are within tolerance.
	small := NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 4, Y: 0})
	if got := small.CornerAt(geometry.Point2D{X: 1, Y: 0}, 10); got != CornerTopLeft {
		t.Errorf("closest corner = %d, want %d", got, CornerTopLeft)
	}
}

func TestShapeCloneIndependence(t *testing.T) {
	orig := NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 10, Y: 10})
	orig.ID = "s1"
	cp := orig.Clone()
	cp.Points[0].X = 99
	if orig.Points[0].X == 99 {
		t.Fatal("Clone must deep-copy points")
	}
}

func TestShapesEqual(t *testing.T) {
	a := NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 10, Y: 10})
	a.ID = "a"
	b := NewRect(geometry.Point2D{X: 20, Y: 20}, geometry.Point2D{X: 30, Y: 30})
	b.ID = "b"

	// Order must not matter.
	if !ShapesEqual([]Shape{a, b}, []Shape{b, a}) {
		t.Error("set equality should ignore order")
	}
	if ShapesEqual([]Shape{a}, []Shape{a, b}) {
		t.Error("different lengths are never equal")
	}

	moved := a.Clone()
	moved.Points[2].X += 0.5
	if ShapesEqual([]Shape{a, b}, []Shape{moved, b}) {
		t.Error("point coordinates compare exactly")
	}

	retexted := a.Clone()
	retexted.Text = "DM74LS244N"
	if ShapesEqual([]Shape{a}, []Shape{retexted}) {
		t.Error("text differences must be detected")
	}
}

func TestShapesEqualUnsavedShapes(t *testing.T) {
	// Shapes not yet persisted all share an empty ID; equality must
	// still behave as set equality over their geometry.
	p := NewRect(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 10, Y: 10})
	q := NewRect(geometry.Point2D{X: 20, Y: 20}, geometry.Point2D{X: 30, Y: 30})
	r := NewRect(geometry.Point2D{X: 40, Y: 40}, geometry.Point2D{X: 50, Y: 50})

	if !ShapesEqual([]Shape{p, q, r}, []Shape{r, p, q}) {
		t.Error("reordered unsaved shapes should compare equal")
	}
	if ShapesEqual([]Shape{p, q}, []Shape{p, r}) {
		t.Error("distinct unsaved shapes must not compare equal")
	}
	if ShapesEqual([]Shape{p, p}, []Shape{p, q}) {
		t.Error("multiset semantics: duplicates count")
	}
}

func TestRenameCategoryPropagates(t *testing.T) {
	shapes := []Shape{
		{ID: "1", Kind: KindRect, Category: "date"},
		{ID: "2", Kind: KindRect, Category: "total"},
		{ID: "3", Kind: KindPolygon, Category: "date"},
	}
	masks := []SegmentationMask{
		{Category: "date"},
		{Category: "vendor"},
	}

	n := RenameCategory(shapes, masks, "date", "invoice_date")
	if n != 3 {
		t.Fatalf("updated %d references, want 3", n)
	}
	if shapes[0].Category != "invoice_date" || shapes[2].Category != "invoice_date" {
		t.Error("shape references not rewritten")
	}
	if shapes[1].Category != "total" {
		t.Error("unrelated shape touched")
	}
	if masks[0].Category != "invoice_date" || masks[1].Category != "vendor" {
		t.Error("mask references wrong after rename")
	}

	if n := RenameCategory(shapes, masks, "same", "same"); n != 0 {
		t.Error("identity rename should be a no-op")
	}
}
