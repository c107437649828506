// Package annotation defines the shape, category, and segmentation mask
// model shared by the editor, history, and compositor.
package annotation

import (
	"sort"

	"ocr-labeler/pkg/geometry"
)

// Kind identifies the shape variant.
type Kind string

const (
	KindRect    Kind = "rect"
	KindPolygon Kind = "polygon"
)

// Rectangle corner indices. A rect shape always holds exactly four points
// in this order; the editor's corner-role reassignment keeps the ordering
// consistent under arbitrary drags.
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Shape is a single annotation: an axis-aligned rectangle or a polygon with
// an optional transcription and category reference.
//
// ID is assigned by the collaborator on first persistence and never changes
// across edits; an empty ID marks a shape not yet persisted. Category holds
// a category name (not an id): renaming a category rewrites every shape
// that references the old name.
type Shape struct {
	ID       string             `json:"id"`
	Kind     Kind               `json:"kind"`
	Points   []geometry.Point2D `json:"points"`
	Text     string             `json:"text"`
	Category string             `json:"category,omitempty"`
}

// NewRect creates a rectangle shape spanning the two given corners. The
// four points are generated in top-left, top-right, bottom-right,
// bottom-left order regardless of drag direction.
func NewRect(a, b geometry.Point2D) Shape {
	r := geometry.RectFromCorners(a, b)
	return Shape{
		Kind: KindRect,
		Points: []geometry.Point2D{
			{X: r.X, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y + r.Height},
			{X: r.X, Y: r.Y + r.Height},
		},
	}
}

// NewPolygon creates a polygon shape from an open ring of vertices. The
// input slice is copied.
func NewPolygon(points []geometry.Point2D) Shape {
	return Shape{
		Kind:   KindPolygon,
		Points: append([]geometry.Point2D(nil), points...),
	}
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	out := s
	out.Points = append([]geometry.Point2D(nil), s.Points...)
	return out
}

// BoundingBox returns the axis-aligned bounding box of the shape's points.
func (s Shape) BoundingBox() geometry.Rect {
	return geometry.BoundingBox(s.Points)
}

// HitTest returns true if the image-space point falls on the shape body.
func (s Shape) HitTest(p geometry.Point2D) bool {
	switch s.Kind {
	case KindRect:
		return s.BoundingBox().Contains(p)
	case KindPolygon:
		return geometry.PointInPolygon(p, s.Points)
	default:
		return false
	}
}

// CornerAt returns the index of the corner within tolerance of p, or -1.
// When several corners are in range the closest wins.
func (s Shape) CornerAt(p geometry.Point2D, tolerance float64) int {
	best := -1
	bestDist := tolerance
	for i, c := range s.Points {
		if d := c.Distance(p); d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Translate moves every point of the shape by the same image-space delta.
func (s *Shape) Translate(delta geometry.Point2D) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(delta)
	}
}

// Equal compares two shapes on id, kind, text, category, and exact point
// coordinates.
func (s Shape) Equal(other Shape) bool {
	if s.ID != other.ID || s.Kind != other.Kind ||
		s.Text != other.Text || s.Category != other.Category {
		return false
	}
	if len(s.Points) != len(other.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// CloneShapes deep-copies a shape collection.
func CloneShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// shapeLess is a total order over shapes. The ID alone is not enough:
// shapes not yet persisted all carry an empty ID, so ties break on the
// remaining fields and finally the vertex coordinates.
func shapeLess(a, b Shape) bool {
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.Text != b.Text {
		return a.Text < b.Text
	}
	if len(a.Points) != len(b.Points) {
		return len(a.Points) < len(b.Points)
	}
	for i := range a.Points {
		if a.Points[i].X != b.Points[i].X {
			return a.Points[i].X < b.Points[i].X
		}
		if a.Points[i].Y != b.Points[i].Y {
			return a.Points[i].Y < b.Points[i].Y
		}
	}
	return false
}

// ShapesEqual compares two shape collections as sets: same length and,
// after sorting both into a canonical order, pairwise Equal.
func ShapesEqual(a, b []Shape) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]Shape(nil), a...)
	bs := append([]Shape(nil), b...)
	sort.Slice(as, func(i, j int) bool { return shapeLess(as[i], as[j]) })
	sort.Slice(bs, func(i, j int) bool { return shapeLess(bs[i], bs[j]) })
	for i := range as {
		if !as[i].Equal(bs[i]) {
			return false
		}
	}
	return true
}

// IndexOf returns the index of the shape with the given id, or -1.
func IndexOf(shapes []Shape, id string) int {
	for i, s := range shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}
