// Package editor implements the shape editing state machine: creation,
// selection, drag-move, and per-corner resize of rectangle and polygon
// annotations. All coordinates entering the editor are image-space; the
// caller (UI layer) converts from screen space via the viewport.
//
// The editor owns the live shape collection for the current image and
// mutates it optimistically. Completed edits are announced as intents
// through callbacks; the editor never talks to the network and local state
// reflects every edit regardless of collaborator outcome.
package editor

import (
	"sort"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/geometry"
)

// defaultCornerTolerance is the image-space pick radius for corner handles
// at zoom 1. The UI divides the on-screen handle radius by the current
// zoom before each event batch.
const defaultCornerTolerance = 8.0

// CommitFunc receives a completed edit: the collection before the edit,
// the full collection after, and the shapes that changed (new or mutated).
type CommitFunc func(before, after []annotation.Shape, changed []annotation.Shape)

// DeleteFunc receives a completed delete: the collection before, and the
// ids removed.
type DeleteFunc func(before []annotation.Shape, ids []string)

// Editor is the shape editing state machine for one image surface.
type Editor struct {
	tool  Tool
	state state

	shapes    []annotation.Shape
	selection map[string]bool

	// snapshot of the collection at drag/draft start, for commit intents
	// and history recording.
	before []annotation.Shape

	cornerTolerance float64

	// OnCommit fires exactly once per completed displacement or draft
	// finalization. Zero-displacement pointer-ups fire nothing.
	OnCommit CommitFunc
	// OnDelete fires once per delete action covering all selected ids.
	OnDelete DeleteFunc
	// OnSelectionChanged fires whenever the selected set changes.
	OnSelectionChanged func()
}

// New creates an idle editor with the select tool active.
func New() *Editor {
	return &Editor{
		tool:            ToolSelect,
		state:           idle{},
		selection:       make(map[string]bool),
		cornerTolerance: defaultCornerTolerance,
	}
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools, discarding any draft in progress.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	e.state = idle{}
}

// SetCornerTolerance sets the image-space pick radius for corner handles.
// The UI keeps the on-screen radius constant by dividing by zoom.
func (e *Editor) SetCornerTolerance(tol float64) {
	if tol > 0 {
		e.cornerTolerance = tol
	}
}

// Shapes returns the live shape collection.
func (e *Editor) Shapes() []annotation.Shape { return e.shapes }

// SetShapes replaces the live collection wholesale (image switch, undo
// replay, authoritative refresh). Any in-progress interaction is dropped
// and stale selection entries are pruned.
func (e *Editor) SetShapes(shapes []annotation.Shape) {
	e.shapes = shapes
	e.state = idle{}
	changed := false
	for id := range e.selection {
		if annotation.IndexOf(shapes, id) < 0 {
			delete(e.selection, id)
			changed = true
		}
	}
	if changed {
		e.selectionChanged()
	}
}

// SelectedIDs returns the selected shape ids in stable order.
func (e *Editor) SelectedIDs() []string {
	ids := make([]string, 0, len(e.selection))
	for id := range e.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether the shape id is selected.
func (e *Editor) IsSelected(id string) bool { return e.selection[id] }

// ClearSelection empties the selected set.
func (e *Editor) ClearSelection() {
	if len(e.selection) == 0 {
		return
	}
	e.selection = make(map[string]bool)
	e.selectionChanged()
}

// DraftRect returns the live rectangle preview while drafting, and whether
// one is active.
func (e *Editor) DraftRect() (geometry.Rect, bool) {
	if s, ok := e.state.(draftingRect); ok {
		return geometry.RectFromCorners(s.anchor, s.cursor), true
	}
	return geometry.Rect{}, false
}

// DraftPolygon returns the draft vertices plus preview cursor while a
// polygon draft is active.
func (e *Editor) DraftPolygon() ([]geometry.Point2D, geometry.Point2D, bool) {
	if s, ok := e.state.(draftingPolygon); ok {
		return s.points, s.cursor, true
	}
	return nil, geometry.Point2D{}, false
}

// RubberBand returns the selection rectangle while rubber-band selecting.
func (e *Editor) RubberBand() (geometry.Rect, bool) {
	if s, ok := e.state.(rubberBand); ok {
		return geometry.RectFromCorners(s.start, s.end), true
	}
	return geometry.Rect{}, false
}

// Dragging reports whether a body or corner drag is in progress. Container
// resizes must not reset drag state; the UI checks this before refitting.
func (e *Editor) Dragging() bool {
	switch e.state.(type) {
	case draggingShape, draggingCorner:
		return true
	}
	return false
}

// PointerDown handles a press at image-space point p.
func (e *Editor) PointerDown(p geometry.Point2D, mods Modifiers) {
	switch e.tool {
	case ToolRect:
		e.rectDown(p)
	case ToolPolygon:
		e.polygonDown(p)
	default:
		e.selectDown(p, mods)
	}
}

func (e *Editor) rectDown(p geometry.Point2D) {
	switch s := e.state.(type) {
	case idle:
		// First corner; preview follows the cursor until the second click.
		e.state = draftingRect{anchor: p, cursor: p}
	case draftingRect:
		e.finalizeRect(s.anchor, p)
	}
}

func (e *Editor) polygonDown(p geometry.Point2D) {
	switch s := e.state.(type) {
	case idle:
		e.state = draftingPolygon{points: []geometry.Point2D{p}, cursor: p}
	case draftingPolygon:
		s.points = append(s.points, p)
		s.cursor = p
		e.state = s
	}
}

func (e *Editor) selectDown(p geometry.Point2D, mods Modifiers) {
	// A corner handle of a selected shape wins over body hits.
	if id, corner, ok := e.cornerHit(p); ok {
		e.before = annotation.CloneShapes(e.shapes)
		e.state = draggingCorner{id: id, corner: corner}
		return
	}

	if id, ok := e.bodyHit(p); ok {
		if mods.MultiSelect {
			if e.selection[id] {
				delete(e.selection, id)
			} else {
				e.selection[id] = true
			}
			e.selectionChanged()
			return
		}
		if !e.selection[id] || len(e.selection) != 1 {
			e.selection = map[string]bool{id: true}
			e.selectionChanged()
		}
		e.before = annotation.CloneShapes(e.shapes)
		e.state = draggingShape{id: id, last: p}
		return
	}

	// Empty canvas: rubber-band selection.
	e.state = rubberBand{start: p, end: p}
}

// PointerMove handles cursor motion at image-space point p.
func (e *Editor) PointerMove(p geometry.Point2D) {
	switch s := e.state.(type) {
	case draftingRect:
		s.cursor = p
		e.state = s
	case draftingPolygon:
		s.cursor = p
		e.state = s
	case draggingShape:
		delta := p.Sub(s.last)
		if delta.X == 0 && delta.Y == 0 {
			return
		}
		if i := annotation.IndexOf(e.shapes, s.id); i >= 0 {
			e.shapes[i].Translate(delta)
		}
		s.last = p
		s.moved = true
		e.state = s
	case draggingCorner:
		i := annotation.IndexOf(e.shapes, s.id)
		if i < 0 {
			e.state = idle{}
			return
		}
		shape := &e.shapes[i]
		switch shape.Kind {
		case annotation.KindRect:
			resizeRectCorner(shape.Points, s.corner, p)
		case annotation.KindPolygon:
			if s.corner < len(shape.Points) {
				shape.Points[s.corner] = p
			}
		}
		s.moved = true
		e.state = s
	case rubberBand:
		s.end = p
		e.state = s
	}
}

// PointerUp handles a release at image-space point p.
func (e *Editor) PointerUp(p geometry.Point2D) {
	switch s := e.state.(type) {
	case draggingShape:
		e.state = idle{}
		e.commitDrag(s.id, s.moved)
	case draggingCorner:
		e.state = idle{}
		e.commitDrag(s.id, s.moved)
	case rubberBand:
		band := geometry.RectFromCorners(s.start, s.end)
		e.state = idle{}
		e.applyRubberBand(band)
	}
}

// DoubleClick finalizes a polygon draft with at least three vertices.
// The presses that make up the double-click have already appended vertices
// at the finish position, so the trailing run of vertices coincident with p
// is collapsed to a single one before finalizing.
func (e *Editor) DoubleClick(p geometry.Point2D) {
	s, ok := e.state.(draftingPolygon)
	if !ok {
		return
	}
	pts := s.points
	for len(pts) >= 2 &&
		pts[len(pts)-1].Distance(p) <= e.cornerTolerance &&
		pts[len(pts)-2].Distance(p) <= e.cornerTolerance {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return
	}
	e.state = idle{}
	before := annotation.CloneShapes(e.shapes)
	shape := annotation.NewPolygon(pts)
	e.shapes = append(e.shapes, shape)
	e.commit(before, []annotation.Shape{shape})
}

// Escape discards any draft without creating a shape. The UI also routes
// pointer-downs outside the canvas here.
func (e *Editor) Escape() {
	switch e.state.(type) {
	case draftingRect, draftingPolygon, rubberBand:
		e.state = idle{}
	}
}

// DeleteSelection removes every selected shape in one intent and clears
// the selection. With an empty selection it does nothing.
func (e *Editor) DeleteSelection() {
	ids := e.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	before := annotation.CloneShapes(e.shapes)
	kept := e.shapes[:0]
	for _, s := range e.shapes {
		if !e.selection[s.ID] {
			kept = append(kept, s)
		}
	}
	e.shapes = kept
	e.selection = make(map[string]bool)
	e.selectionChanged()
	if e.OnDelete != nil {
		e.OnDelete(before, ids)
	}
}

func (e *Editor) finalizeRect(a, b geometry.Point2D) {
	e.state = idle{}
	before := annotation.CloneShapes(e.shapes)
	shape := annotation.NewRect(a, b)
	e.shapes = append(e.shapes, shape)
	e.commit(before, []annotation.Shape{shape})
}

// commitDrag fires a save intent for a finished drag, but only when the
// pointer actually displaced the shape (idempotence on plain clicks).
func (e *Editor) commitDrag(id string, moved bool) {
	before := e.before
	e.before = nil
	if !moved {
		return
	}
	if i := annotation.IndexOf(e.shapes, id); i >= 0 {
		e.commit(before, []annotation.Shape{e.shapes[i]})
	}
}

func (e *Editor) commit(before []annotation.Shape, changed []annotation.Shape) {
	if e.OnCommit != nil {
		e.OnCommit(before, e.shapes, annotation.CloneShapes(changed))
	}
}

// applyRubberBand selects every shape whose bounding box overlaps the band
// (any overlap, not containment).
func (e *Editor) applyRubberBand(band geometry.Rect) {
	selection := make(map[string]bool)
	for _, s := range e.shapes {
		if s.BoundingBox().Intersects(band) {
			selection[s.ID] = true
		}
	}
	e.selection = selection
	e.selectionChanged()
}

// cornerHit finds a corner handle of a selected shape near p. Topmost
// (last drawn) selected shape wins.
func (e *Editor) cornerHit(p geometry.Point2D) (id string, corner int, ok bool) {
	for i := len(e.shapes) - 1; i >= 0; i-- {
		s := e.shapes[i]
		if !e.selection[s.ID] {
			continue
		}
		if c := s.CornerAt(p, e.cornerTolerance); c >= 0 {
			return s.ID, c, true
		}
	}
	return "", 0, false
}

// bodyHit finds the topmost shape whose body contains p.
func (e *Editor) bodyHit(p geometry.Point2D) (string, bool) {
	for i := len(e.shapes) - 1; i >= 0; i-- {
		if e.shapes[i].HitTest(p) {
			return e.shapes[i].ID, true
		}
	}
	return "", false
}

func (e *Editor) selectionChanged() {
	if e.OnSelectionChanged != nil {
		e.OnSelectionChanged()
	}
}
