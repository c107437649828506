package editor

import (
	"ocr-labeler/pkg/geometry"
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRect
	ToolPolygon
)

// Modifiers carries the keyboard modifier state relevant to an input event.
// It is passed explicitly into every pointer call so the editor never reads
// ambient key state.
type Modifiers struct {
	// Pan is held when the pan modifier (shift or ctrl/meta, configurable
	// at the UI layer) is down; pan takes priority and such events never
	// reach the editor.
	Pan bool
	// MultiSelect toggles selection membership instead of replacing it.
	MultiSelect bool
}

// state is the editor's mode. Exactly one variant is active at a time and
// each carries only the data relevant to that mode, so impossible
// combinations (a drag target while drafting, a draft anchor while
// rubber-banding) cannot be represented.
type state interface {
	editorState()
}

// idle: no interaction in progress.
type idle struct{}

// draftingRect: first rectangle corner placed, awaiting the second.
type draftingRect struct {
	anchor geometry.Point2D
	cursor geometry.Point2D
}

// draftingPolygon: vertices placed so far plus the live preview cursor.
type draftingPolygon struct {
	points []geometry.Point2D
	cursor geometry.Point2D
}

// draggingShape: a body drag moving every point of one shape.
type draggingShape struct {
	id    string
	last  geometry.Point2D
	moved bool
}

// draggingCorner: a resize drag holding one corner of one shape.
type draggingCorner struct {
	id     string
	corner int
	moved  bool
}

// rubberBand: drag-defined selection rectangle on empty canvas.
type rubberBand struct {
	start geometry.Point2D
	end   geometry.Point2D
}

func (idle) editorState()            {}
func (draftingRect) editorState()    {}
func (draftingPolygon) editorState() {}
func (draggingShape) editorState()   {}
func (draggingCorner) editorState()  {}
func (rubberBand) editorState()      {}
