package app

import (
	"context"
	"log"

	"ocr-labeler/internal/annotation"
)

// Undo restores the previous snapshot of the current image and re-syncs
// the collaborator with the difference. Ignored while a previous undo or
// redo is still syncing.
func (s *State) Undo() { s.replay(s.History.Undo) }

// Redo restores the next snapshot of the current image.
func (s *State) Redo() { s.replay(s.History.Redo) }

// CanUndo reports whether an undo is available for the current image.
func (s *State) CanUndo() bool { return !s.syncing && s.History.CanUndo(s.imageID) }

// CanRedo reports whether a redo is available for the current image.
func (s *State) CanRedo() bool { return !s.syncing && s.History.CanRedo(s.imageID) }

func (s *State) replay(pop func(string, []annotation.Shape) ([]annotation.Shape, bool)) {
	if s.syncing {
		return
	}
	imageID := s.imageID
	before := s.shapes[imageID]
	snap, ok := pop(imageID, before)
	if !ok {
		return
	}

	// The replay must not record itself as a new edit.
	s.History.SetSuppressed(true)
	s.shapes[imageID] = annotation.CloneShapes(snap)
	s.Editor.SetShapes(annotation.CloneShapes(snap))
	s.History.SetSuppressed(false)

	s.Emit(EventShapesChanged, s.Shapes())
	s.Emit(EventHistoryChanged, nil)

	// Re-sync the collaborator diff-wise: delete what the snapshot no
	// longer has, upsert everything it does.
	var deleted []string
	for _, sh := range before {
		if sh.ID != "" && annotation.IndexOf(snap, sh.ID) < 0 {
			deleted = append(deleted, sh.ID)
		}
	}
	upserts := annotation.CloneShapes(snap)

	s.syncing = true
	s.RunAsync(func() {
		ctx := context.Background()
		err := s.collab.DeleteShapes(ctx, imageID, deleted)
		if err == nil && len(upserts) > 0 {
			_, err = s.collab.SaveShapes(ctx, imageID, upserts)
		}
		s.RunOnUI(func() {
			s.syncing = false
			if err != nil {
				log.Printf("history sync failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
			}
			s.Emit(EventHistoryChanged, nil)
		})
	})
}
