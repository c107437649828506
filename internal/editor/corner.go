package editor

import (
	"math"

	"ocr-labeler/pkg/geometry"
)

// resizeRectCorner drags corner index i of a 4-point rectangle to p,
// keeping the opposite corner fixed and reassigning corner roles so the
// four indices always form a non-self-intersecting axis-aligned rectangle.
//
// Dragging a corner across the rectangle's other axis must flip which
// index is visually top-left vs bottom-left without discarding the other
// two points; without the reassignment the quad self-intersects.
func resizeRectCorner(points []geometry.Point2D, i int, p geometry.Point2D) {
	if len(points) != 4 {
		return
	}
	opp := points[(i+2)%4]

	left := math.Min(p.X, opp.X)
	right := math.Max(p.X, opp.X)
	top := math.Min(p.Y, opp.Y)
	bottom := math.Max(p.Y, opp.Y)

	// Role of the dragged corner, from which side of the fixed opposite
	// corner it now falls on. Roles cycle tl(0) tr(1) br(2) bl(3).
	onRight := p.X >= opp.X
	onBottom := p.Y >= opp.Y
	var role int
	switch {
	case onRight && onBottom:
		role = 2 // br
	case onRight:
		role = 1 // tr
	case onBottom:
		role = 3 // bl
	default:
		role = 0 // tl
	}

	coord := func(role int) geometry.Point2D {
		switch role {
		case 0:
			return geometry.Point2D{X: left, Y: top}
		case 1:
			return geometry.Point2D{X: right, Y: top}
		case 2:
			return geometry.Point2D{X: right, Y: bottom}
		default:
			return geometry.Point2D{X: left, Y: bottom}
		}
	}

	// The opposite corner takes the diagonal role; the two untouched
	// indices take the remaining roles in cyclic order, which preserves
	// their original relative order around the rectangle.
	points[i] = coord(role)
	points[(i+1)%4] = coord((role + 1) % 4)
	points[(i+2)%4] = coord((role + 2) % 4)
	points[(i+3)%4] = coord((role + 3) % 4)
}
