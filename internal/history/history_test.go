package history

import (
	"testing"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/geometry"
)

func shape(id string, x float64) annotation.Shape {
	s := annotation.NewRect(geometry.Point2D{X: x, Y: 0}, geometry.Point2D{X: x + 10, Y: 10})
	s.ID = id
	return s
}

func TestRecordAndUndoRedo(t *testing.T) {
	h := New()
	empty := []annotation.Shape{}
	one := []annotation.Shape{shape("a", 0)}
	two := []annotation.Shape{shape("a", 0), shape("b", 20)}

	h.Record("img1", empty, one)
	h.Record("img1", one, two)

	snap, ok := h.Undo("img1", two)
	if !ok {
		t.Fatal("expected undo to succeed")
	}
	if !annotation.ShapesEqual(snap, one) {
		t.Fatalf("undo snapshot = %+v, want one-shape state", snap)
	}

	snap, ok = h.Redo("img1", snap)
	if !ok {
		t.Fatal("expected redo to succeed")
	}
	if !annotation.ShapesEqual(snap, two) {
		t.Fatalf("redo snapshot = %+v, want two-shape state", snap)
	}
}

func TestUndoRedoRestoreIdentical(t *testing.T) {
	h := New()
	before := []annotation.Shape{shape("a", 0)}
	before[0].Text = "hello"
	before[0].Category = "word"
	after := annotation.CloneShapes(before)
	after[0].Points[2] = geometry.Point2D{X: 200, Y: 200}

	h.Record("img", before, after)

	snap, _ := h.Undo("img", after)
	redone, _ := h.Redo("img", snap)
	if !annotation.ShapesEqual(redone, after) {
		t.Fatal("undo then redo must restore the exact collection")
	}
	if !annotation.ShapesEqual(snap, before) {
		t.Fatal("undo must restore the exact prior collection")
	}
}

func TestRecordIdempotence(t *testing.T) {
	h := New()
	a := []annotation.Shape{shape("a", 0)}
	b := []annotation.Shape{shape("a", 5)}

	// Identical before/after records nothing.
	h.Record("img", a, annotation.CloneShapes(a))
	if past, _ := h.Depths("img"); past != 0 {
		t.Fatalf("no-op edit recorded: depth %d", past)
	}

	// Same before twice in a row yields one entry, not two.
	h.Record("img", a, b)
	h.Record("img", a, b)
	if past, _ := h.Depths("img"); past != 1 {
		t.Fatalf("duplicate snapshot recorded: depth %d, want 1", past)
	}
}

func TestNewEditClearsFuture(t *testing.T) {
	h := New()
	s0 := []annotation.Shape{}
	s1 := []annotation.Shape{shape("a", 0)}
	s2 := []annotation.Shape{shape("a", 10)}

	h.Record("img", s0, s1)
	cur, _ := h.Undo("img", s1)
	if !h.CanRedo("img") {
		t.Fatal("expected redo available after undo")
	}

	// A fresh edit kills the redo branch.
	h.Record("img", cur, s2)
	if h.CanRedo("img") {
		t.Fatal("new edit must clear future stack")
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	h := New()
	if _, ok := h.Undo("missing", nil); ok {
		t.Error("undo on empty stack must fail")
	}
	if _, ok := h.Redo("missing", nil); ok {
		t.Error("redo on empty stack must fail")
	}
}

func TestSuppression(t *testing.T) {
	h := New()
	a := []annotation.Shape{shape("a", 0)}
	b := []annotation.Shape{shape("a", 5)}

	h.SetSuppressed(true)
	h.Record("img", a, b)
	h.SetSuppressed(false)
	if past, _ := h.Depths("img"); past != 0 {
		t.Fatal("suppressed record must not push")
	}
}

func TestSnapshotsAreIndependentCopies(t *testing.T) {
	h := New()
	before := []annotation.Shape{shape("a", 0)}
	after := []annotation.Shape{shape("a", 50)}
	h.Record("img", before, after)

	// Mutating the caller's slice must not corrupt the stored snapshot.
	before[0].Points[0].X = 999

	snap, _ := h.Undo("img", after)
	if snap[0].Points[0].X == 999 {
		t.Fatal("stack stored a shallow copy")
	}
}

func TestPerImageIsolationAndReset(t *testing.T) {
	h := New()
	h.Record("img1", []annotation.Shape{}, []annotation.Shape{shape("a", 0)})
	if h.CanUndo("img2") {
		t.Fatal("history leaked across image ids")
	}
	h.Reset()
	if h.CanUndo("img1") {
		t.Fatal("reset must drop all entries")
	}
}
