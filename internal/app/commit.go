package app

import (
	"context"
	"log"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/geometry"
)

// handleCommit is the editor's save intent: apply the edit locally,
// record it, then push it to the collaborator in the background. Local
// state is never rolled back when the push fails.
func (s *State) handleCommit(before, after, changed []annotation.Shape) {
	imageID := s.imageID
	s.shapes[imageID] = annotation.CloneShapes(after)
	s.History.Record(imageID, before, after)
	s.Emit(EventShapesChanged, s.Shapes())
	s.Emit(EventHistoryChanged, nil)

	submitted := annotation.CloneShapes(changed)
	s.RunAsync(func() {
		saved, err := s.collab.SaveShapes(context.Background(), imageID, submitted)
		s.RunOnUI(func() {
			if err != nil {
				log.Printf("save failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
				return
			}
			s.reconcile(imageID, submitted, saved)
		})
	})
}

// handleDelete is the editor's delete intent.
func (s *State) handleDelete(before []annotation.Shape, ids []string) {
	imageID := s.imageID
	after := annotation.CloneShapes(s.Editor.Shapes())
	s.shapes[imageID] = after
	s.History.Record(imageID, before, after)
	s.Emit(EventShapesChanged, s.Shapes())
	s.Emit(EventHistoryChanged, nil)

	removed := append([]string(nil), ids...)
	s.RunAsync(func() {
		err := s.collab.DeleteShapes(context.Background(), imageID, removed)
		s.RunOnUI(func() {
			if err != nil {
				log.Printf("delete failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
			}
		})
	})
}

// reconcile folds the collaborator's authoritative shapes back into the
// local collection. The main effect is replacing draft shapes that were
// submitted without an ID with their assigned-ID versions.
func (s *State) reconcile(imageID string, submitted, saved []annotation.Shape) {
	if len(submitted) != len(saved) {
		return
	}
	cur := annotation.CloneShapes(s.shapes[imageID])
	dirty := false
	for i := range saved {
		idx := indexOfSubmitted(cur, submitted[i])
		if idx < 0 {
			continue // shape edited or deleted since the save went out
		}
		if !cur[idx].Equal(saved[i]) {
			cur[idx] = saved[i].Clone()
			dirty = true
		}
	}
	if !dirty {
		return
	}
	s.shapes[imageID] = cur
	if imageID == s.imageID {
		s.Editor.SetShapes(annotation.CloneShapes(cur))
		s.Emit(EventShapesChanged, s.Shapes())
	}
}

// indexOfSubmitted locates the submitted shape in the collection: by ID
// when it had one, otherwise by matching an ID-less shape's geometry.
func indexOfSubmitted(shapes []annotation.Shape, submitted annotation.Shape) int {
	if submitted.ID != "" {
		return annotation.IndexOf(shapes, submitted.ID)
	}
	for i, sh := range shapes {
		if sh.ID == "" && sh.Kind == submitted.Kind && pointsEqual(sh.Points, submitted.Points) {
			return i
		}
	}
	return -1
}

func pointsEqual(a, b []geometry.Point2D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
