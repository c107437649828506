package backend

import (
	"context"
	"path/filepath"
	"testing"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/geometry"
)

func rect(id string, x, y, w, h float64) annotation.Shape {
	s := annotation.NewRect(geometry.Point2D{X: x, Y: y}, geometry.Point2D{X: x + w, Y: y + h})
	s.ID = id
	return s
}

func TestSaveAssignsIDs(t *testing.T) {
	s := NewLocalStore()
	ctx := context.Background()

	saved, err := s.SaveShapes(ctx, "img1", []annotation.Shape{
		rect("", 0, 0, 10, 10),
		rect("keep", 5, 5, 10, 10),
		rect("", 20, 20, 10, 10),
	})
	if err != nil {
		t.Fatalf("SaveShapes: %v", err)
	}
	if saved[0].ID == "" || saved[2].ID == "" {
		t.Fatal("empty IDs must be assigned")
	}
	if saved[0].ID == saved[2].ID {
		t.Fatalf("assigned IDs must be distinct, both %q", saved[0].ID)
	}
	if saved[1].ID != "keep" {
		t.Errorf("existing ID rewritten to %q", saved[1].ID)
	}
	if got := len(s.Shapes("img1")); got != 3 {
		t.Errorf("stored %d shapes, want 3", got)
	}
}

func TestSaveUpsertsByID(t *testing.T) {
	s := NewLocalStore()
	ctx := context.Background()

	if _, err := s.SaveShapes(ctx, "img1", []annotation.Shape{rect("a", 0, 0, 10, 10)}); err != nil {
		t.Fatalf("SaveShapes: %v", err)
	}
	moved := rect("a", 50, 50, 10, 10)
	if _, err := s.SaveShapes(ctx, "img1", []annotation.Shape{moved}); err != nil {
		t.Fatalf("SaveShapes: %v", err)
	}

	stored := s.Shapes("img1")
	if len(stored) != 1 {
		t.Fatalf("upsert produced %d shapes, want 1", len(stored))
	}
	if stored[0].Points[0] != (geometry.Point2D{X: 50, Y: 50}) {
		t.Errorf("upsert did not replace points: %+v", stored[0].Points)
	}
}

func TestDelete(t *testing.T) {
	s := NewLocalStore()
	ctx := context.Background()
	s.SaveShapes(ctx, "img1", []annotation.Shape{rect("a", 0, 0, 1, 1), rect("b", 2, 2, 1, 1)})

	// Empty list and unknown ids are no-ops.
	if err := s.DeleteShapes(ctx, "img1", nil); err != nil {
		t.Fatalf("empty delete: %v", err)
	}
	if err := s.DeleteShapes(ctx, "img1", []string{"nope"}); err != nil {
		t.Fatalf("unknown-id delete: %v", err)
	}
	if got := len(s.Shapes("img1")); got != 2 {
		t.Fatalf("no-op deletes removed shapes, %d left", got)
	}

	if err := s.DeleteShapes(ctx, "img1", []string{"a"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stored := s.Shapes("img1")
	if len(stored) != 1 || stored[0].ID != "b" {
		t.Errorf("after delete: %+v", stored)
	}
}

func TestImagesAreIsolated(t *testing.T) {
	s := NewLocalStore()
	ctx := context.Background()
	s.SaveShapes(ctx, "img1", []annotation.Shape{rect("a", 0, 0, 1, 1)})
	s.SaveShapes(ctx, "img2", []annotation.Shape{rect("a", 9, 9, 1, 1)})

	s.DeleteShapes(ctx, "img1", []string{"a"})
	if got := len(s.Shapes("img2")); got != 1 {
		t.Errorf("delete on img1 touched img2, %d shapes left", got)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := OpenLocalStore(path)
	if err != nil {
		t.Fatalf("OpenLocalStore: %v", err)
	}
	saved, err := s.SaveShapes(ctx, "img1", []annotation.Shape{rect("", 3, 4, 10, 10)})
	if err != nil {
		t.Fatalf("SaveShapes: %v", err)
	}

	reopened, err := OpenLocalStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	stored := reopened.Shapes("img1")
	if len(stored) != 1 || stored[0].ID != saved[0].ID {
		t.Fatalf("reloaded shapes = %+v, want the saved shape", stored)
	}

	// ID counter survives the round trip: the next assignment must not
	// collide with the persisted shape.
	more, err := reopened.SaveShapes(ctx, "img1", []annotation.Shape{rect("", 0, 0, 1, 1)})
	if err != nil {
		t.Fatalf("SaveShapes after reload: %v", err)
	}
	if more[0].ID == saved[0].ID {
		t.Errorf("reloaded store reissued ID %q", more[0].ID)
	}
}

func TestGenerateMaskEchoesPoints(t *testing.T) {
	s := NewLocalStore()
	pts := []annotation.PromptPoint{
		{Point2D: geometry.Point2D{X: 1, Y: 2}, Include: true},
		{Point2D: geometry.Point2D{X: 3, Y: 4}, Include: false},
	}
	res, err := s.GenerateMask(context.Background(), "img1", pts, "text")
	if err != nil {
		t.Fatalf("GenerateMask: %v", err)
	}
	if res.Category != "text" || len(res.Points) != 2 || res.RasterRef != "" {
		t.Errorf("result = %+v", res)
	}
}

type fixedRecognizer struct{ text string }

func (f fixedRecognizer) RecognizeShape(imageID string, shape annotation.Shape) (string, error) {
	return f.text, nil
}

func TestRecognizeText(t *testing.T) {
	s := NewLocalStore()
	ctx := context.Background()

	if _, err := s.RecognizeText(ctx, "img1", []annotation.Shape{rect("a", 0, 0, 1, 1)}); err == nil {
		t.Fatal("RecognizeText without a recognizer must fail")
	}

	s.SetRecognizer(fixedRecognizer{text: "R42"})
	in := []annotation.Shape{rect("a", 0, 0, 1, 1)}
	out, err := s.RecognizeText(ctx, "img1", in)
	if err != nil {
		t.Fatalf("RecognizeText: %v", err)
	}
	if out[0].Text != "R42" {
		t.Errorf("text = %q, want R42", out[0].Text)
	}
	if in[0].Text != "" {
		t.Error("input slice must not be mutated")
	}
}

func TestCancelledContext(t *testing.T) {
	s := NewLocalStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.SaveShapes(ctx, "img1", []annotation.Shape{rect("a", 0, 0, 1, 1)}); err == nil {
		t.Error("SaveShapes with a cancelled context must fail")
	}
	if got := len(s.Shapes("img1")); got != 0 {
		t.Errorf("cancelled save stored %d shapes", got)
	}
}
