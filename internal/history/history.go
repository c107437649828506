// Package history implements snapshot-based undo/redo over annotation
// collections, keyed by image id. There are no commands: every record
// stores a deep copy of the full shape collection, and undo/redo replace
// the live collection wholesale.
package history

import (
	"ocr-labeler/internal/annotation"
)

type entry struct {
	past   [][]annotation.Shape
	future [][]annotation.Shape
}

// Stack holds per-image undo/redo snapshots. Entries are created lazily on
// first edit and discarded by Reset when the image context changes.
//
// Stack is not safe for concurrent use: all mutation happens on the UI
// thread, matching the rest of the engine.
type Stack struct {
	entries map[string]*entry

	// suppress is set while a recorded snapshot is being replayed so the
	// replay's own record call does not pollute the stack.
	suppress bool
}

// New creates an empty history stack.
func New() *Stack {
	return &Stack{entries: make(map[string]*entry)}
}

// Suppressed reports whether recording is currently suppressed.
func (h *Stack) Suppressed() bool { return h.suppress }

// SetSuppressed toggles recording suppression. The app layer sets it while
// installing an undo/redo snapshot.
func (h *Stack) SetSuppressed(on bool) { h.suppress = on }

// Record pushes before onto the image's past stack and clears its future.
// It is a no-op while suppressed, when before and after are set-equal, or
// when the past top already equals before (rapid intermediate updates must
// not produce duplicate consecutive snapshots).
func (h *Stack) Record(imageID string, before, after []annotation.Shape) {
	if h.suppress {
		return
	}
	if annotation.ShapesEqual(before, after) {
		return
	}

	e := h.entries[imageID]
	if e == nil {
		e = &entry{}
		h.entries[imageID] = e
	}
	if n := len(e.past); n > 0 && annotation.ShapesEqual(e.past[n-1], before) {
		return
	}

	e.past = append(e.past, annotation.CloneShapes(before))
	e.future = nil
}

// Undo pops the most recent past snapshot, pushing current onto future.
// Returns the snapshot to install and true, or nil and false when there is
// nothing to undo.
func (h *Stack) Undo(imageID string, current []annotation.Shape) ([]annotation.Shape, bool) {
	e := h.entries[imageID]
	if e == nil || len(e.past) == 0 {
		return nil, false
	}
	snapshot := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append(e.future, annotation.CloneShapes(current))
	return snapshot, true
}

// Redo is symmetric to Undo over the future stack.
func (h *Stack) Redo(imageID string, current []annotation.Shape) ([]annotation.Shape, bool) {
	e := h.entries[imageID]
	if e == nil || len(e.future) == 0 {
		return nil, false
	}
	snapshot := e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]
	e.past = append(e.past, annotation.CloneShapes(current))
	return snapshot, true
}

// CanUndo reports whether the image has undoable snapshots.
func (h *Stack) CanUndo(imageID string) bool {
	e := h.entries[imageID]
	return e != nil && len(e.past) > 0
}

// CanRedo reports whether the image has redoable snapshots.
func (h *Stack) CanRedo(imageID string) bool {
	e := h.entries[imageID]
	return e != nil && len(e.future) > 0
}

// Depths returns the past and future stack depths for an image.
func (h *Stack) Depths(imageID string) (past, future int) {
	e := h.entries[imageID]
	if e == nil {
		return 0, 0
	}
	return len(e.past), len(e.future)
}

// Drop discards the history of a single image.
func (h *Stack) Drop(imageID string) {
	delete(h.entries, imageID)
}

// Reset discards all history, for when the image identity context changes
// (project reload).
func (h *Stack) Reset() {
	h.entries = make(map[string]*entry)
	h.suppress = false
}
