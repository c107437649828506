package app

import (
	"context"
	"log"

	"ocr-labeler/internal/annotation"
)

// RecognizeSelection runs text recognition over the selected shapes and
// folds the recognized text back into the collection as a normal,
// undoable edit.
func (s *State) RecognizeSelection() {
	ids := s.Editor.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	imageID := s.imageID
	cur := s.shapes[imageID]
	var picked []annotation.Shape
	for _, id := range ids {
		if i := annotation.IndexOf(cur, id); i >= 0 {
			picked = append(picked, cur[i].Clone())
		}
	}
	if len(picked) == 0 {
		return
	}

	s.RunAsync(func() {
		recognized, err := s.collab.RecognizeText(context.Background(), imageID, picked)
		s.RunOnUI(func() {
			if err != nil {
				log.Printf("text recognition failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
				return
			}
			s.applyRecognized(imageID, recognized)
		})
	})
}

func (s *State) applyRecognized(imageID string, recognized []annotation.Shape) {
	before := annotation.CloneShapes(s.shapes[imageID])
	cur := annotation.CloneShapes(s.shapes[imageID])
	var changed []annotation.Shape
	for _, r := range recognized {
		i := annotation.IndexOf(cur, r.ID)
		if i < 0 || cur[i].Text == r.Text {
			continue
		}
		cur[i].Text = r.Text
		changed = append(changed, cur[i].Clone())
	}
	if len(changed) == 0 {
		return
	}

	s.shapes[imageID] = cur
	s.History.Record(imageID, before, cur)
	if imageID == s.imageID {
		s.Editor.SetShapes(annotation.CloneShapes(cur))
		s.Emit(EventShapesChanged, s.Shapes())
	}
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventRecognitionDone, changed)

	submitted := annotation.CloneShapes(changed)
	s.RunAsync(func() {
		_, err := s.collab.SaveShapes(context.Background(), imageID, submitted)
		s.RunOnUI(func() {
			if err != nil {
				log.Printf("save failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
			}
		})
	})
}
