package canvas

import (
	"image"
	"image/color"

	"ocr-labeler/pkg/colorutil"
	"ocr-labeler/pkg/geometry"
)

var (
	defaultShapeColor = color.RGBA{R: 80, G: 170, B: 255, A: 255}
	selectionColor    = color.RGBA{R: 255, G: 220, B: 60, A: 255}
	bandColor         = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	draftColor        = color.RGBA{R: 120, G: 255, B: 140, A: 255}
	includeColor      = color.RGBA{R: 60, G: 220, B: 60, A: 255}
	excludeColor      = color.RGBA{R: 230, G: 60, B: 60, A: 255}
)

// draw renders the whole canvas into a w x h frame: base image through
// the viewport transform, mask overlay, then the vector layer (shapes,
// drafts, rubber band, prompt markers) in screen space.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = background.R
		out.Pix[i+1] = background.G
		out.Pix[i+2] = background.B
		out.Pix[i+3] = background.A
	}
	if ac.baseImage == nil {
		return out
	}

	ac.drawBase(out, w, h)
	ac.drawShapes(out)
	ac.drawDrafts(out)
	ac.drawPrompts(out)
	return out
}

// drawBase samples the base image and mask overlay per output pixel via
// the inverse viewport transform (nearest neighbor).
func (ac *AnnotationCanvas) drawBase(out *image.RGBA, w, h int) {
	bounds := ac.baseImage.Bounds()
	zoom := ac.view.Zoom()
	pan := ac.view.Pan()
	if zoom <= 0 {
		return
	}

	for y := 0; y < h; y++ {
		iy := int((float64(y) - pan.Y) / zoom)
		if iy < 0 || iy >= bounds.Dy() {
			continue
		}
		for x := 0; x < w; x++ {
			ix := int((float64(x) - pan.X) / zoom)
			if ix < 0 || ix >= bounds.Dx() {
				continue
			}
			r, g, b, _ := ac.baseImage.At(bounds.Min.X+ix, bounds.Min.Y+iy).RGBA()
			px := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
			if ac.overlay != nil {
				px = blendRGBA(px, ac.overlay.RGBAAt(ix, iy))
			}
			out.SetRGBA(x, y, px)
		}
	}
}

func (ac *AnnotationCanvas) drawShapes(out *image.RGBA) {
	ed := ac.state.Editor
	for _, shape := range ed.Shapes() {
		col := defaultShapeColor
		if cat, ok := ac.state.CategoryByName(shape.Category); ok {
			col = cat.Color
			col.A = 255
		}
		selected := ed.IsSelected(shape.ID)
		if selected {
			col = colorutil.Brighten(col, 0.4)
		}

		pts := ac.screenPoints(shape.Points)
		closed := true
		ac.drawOutline(out, pts, closed, col, thicknessFor(selected))

		if selected {
			for _, p := range pts {
				ac.drawHandle(out, p)
			}
		}
	}
}

func (ac *AnnotationCanvas) drawDrafts(out *image.RGBA) {
	ed := ac.state.Editor

	if r, ok := ed.DraftRect(); ok {
		tl := ac.view.ImageToScreen(r.TopLeft())
		br := ac.view.ImageToScreen(r.BottomRight())
		ac.drawDashedRect(out, tl, br, draftColor)
	}
	if pts, cursor, ok := ed.DraftPolygon(); ok {
		screen := ac.screenPoints(pts)
		ac.drawOutline(out, screen, false, draftColor, 1)
		if len(screen) > 0 {
			ac.drawSegment(out, screen[len(screen)-1], ac.view.ImageToScreen(cursor), draftColor, 1)
		}
		for _, p := range screen {
			ac.drawHandle(out, p)
		}
	}
	if band, ok := ed.RubberBand(); ok {
		tl := ac.view.ImageToScreen(band.TopLeft())
		br := ac.view.ImageToScreen(band.BottomRight())
		ac.drawDashedRect(out, tl, br, bandColor)
	}
}

func (ac *AnnotationCanvas) drawPrompts(out *image.RGBA) {
	for _, p := range ac.state.PromptPoints() {
		col := includeColor
		if !p.Include {
			col = excludeColor
		}
		s := ac.view.ImageToScreen(p.Point2D)
		ac.drawMarker(out, s, col)
	}
}

func (ac *AnnotationCanvas) screenPoints(pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = ac.view.ImageToScreen(p)
	}
	return out
}

func (ac *AnnotationCanvas) drawOutline(out *image.RGBA, pts []geometry.Point2D, closed bool, col color.RGBA, thickness int) {
	if len(pts) < 2 {
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		ac.drawSegment(out, pts[i], pts[i+1], col, thickness)
	}
	if closed && len(pts) > 2 {
		ac.drawSegment(out, pts[len(pts)-1], pts[0], col, thickness)
	}
}

// drawSegment draws a Bresenham line with the given thickness.
func (ac *AnnotationCanvas) drawSegment(out *image.RGBA, a, b geometry.Point2D, col color.RGBA, thickness int) {
	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(b.X), int(b.Y)
	bounds := out.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					out.SetRGBA(px, py, col)
				}
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawDashedRect draws a rectangle outline with alternating pixels, for
// drafts and the rubber band.
func (ac *AnnotationCanvas) drawDashedRect(out *image.RGBA, tl, br geometry.Point2D, col color.RGBA) {
	x1, y1 := int(tl.X), int(tl.Y)
	x2, y2 := int(br.X), int(br.Y)
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	bounds := out.Bounds()

	set := func(x, y int) {
		if (x+y)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			out.SetRGBA(x, y, col)
		}
	}
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// drawHandle draws a corner handle square centered on p.
func (ac *AnnotationCanvas) drawHandle(out *image.RGBA, p geometry.Point2D) {
	r := int(handleRadius) / 2
	cx, cy := int(p.X), int(p.Y)
	bounds := out.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				edge := x == cx-r || x == cx+r || y == cy-r || y == cy+r
				if edge {
					out.SetRGBA(x, y, color.RGBA{A: 255})
				} else {
					out.SetRGBA(x, y, selectionColor)
				}
			}
		}
	}
}

// drawMarker draws a prompt point: a small filled diamond.
func (ac *AnnotationCanvas) drawMarker(out *image.RGBA, p geometry.Point2D, col color.RGBA) {
	cx, cy := int(p.X), int(p.Y)
	bounds := out.Bounds()
	const r = 5
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if abs(dx)+abs(dy) > r {
				continue
			}
			x, y := cx+dx, cy+dy
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				out.SetRGBA(x, y, col)
			}
		}
	}
}

func thicknessFor(selected bool) int {
	if selected {
		return 3
	}
	return 2
}

// blendRGBA composites src over dst assuming an opaque destination.
func blendRGBA(dst, src color.RGBA) color.RGBA {
	if src.A == 0 {
		return dst
	}
	if src.A == 255 {
		return src
	}
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
