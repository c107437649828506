// Package viewport owns the zoom/pan coordinate transform for one image
// surface. It converts between container (screen) pixels and image-space
// coordinates and knows nothing about shapes.
package viewport

import (
	"ocr-labeler/pkg/geometry"
)

const (
	// MinZoom and MaxZoom bound the zoom level under all operations.
	MinZoom = 0.05
	MaxZoom = 5.0

	// WheelZoomIn and WheelZoomOut are the per-notch wheel factors.
	WheelZoomIn  = 1.15
	WheelZoomOut = 0.85
)

// FitMode selects how Fit scales the image to the container.
type FitMode int

const (
	// FitInside scales so the whole image is visible (letterboxed).
	FitInside FitMode = iota
	// FitOutside scales so the whole container is covered (cropped).
	FitOutside
)

// Viewport holds the zoom level and pan offset for one displayed image.
// Zoom is clamped to [MinZoom, MaxZoom]; pan is unbounded under free
// pan/zoom and only recomputed when Fit is applied.
type Viewport struct {
	zoom      float64
	pan       geometry.Point2D
	container geometry.Size
	image     geometry.Size

	// KeepView suppresses automatic refits on image change and container
	// resize when the user wants their zoom/pan preserved.
	KeepView bool
}

// New creates a viewport at identity zoom with no pan.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

// Zoom returns the current zoom level.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() geometry.Point2D { return v.pan }

// ContainerSize returns the container size last set.
func (v *Viewport) ContainerSize() geometry.Size { return v.container }

// ImageSize returns the image natural size last set.
func (v *Viewport) ImageSize() geometry.Size { return v.image }

// SetContainerSize records the visible container dimensions. The caller
// decides whether to refit afterwards (resize refits are debounced at the
// UI layer and suppressed by KeepView).
func (v *Viewport) SetContainerSize(s geometry.Size) {
	v.container = s
}

// SetImageSize records the natural pixel dimensions of the displayed image.
func (v *Viewport) SetImageSize(s geometry.Size) {
	v.image = s
}

// Reset restores identity zoom and zero pan.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.pan = geometry.Point2D{}
}

// Fit computes the zoom that fits the image inside (or outside) the
// container and centers it. A zero-sized container or image degrades to
// identity zoom and zero pan rather than dividing by zero.
func (v *Viewport) Fit(mode FitMode) {
	if v.container.IsZero() || v.image.IsZero() {
		v.Reset()
		return
	}

	zx := v.container.Width / v.image.Width
	zy := v.container.Height / v.image.Height

	zoom := zx
	if mode == FitInside {
		if zy < zx {
			zoom = zy
		}
	} else {
		if zy > zx {
			zoom = zy
		}
	}
	v.zoom = clampZoom(zoom)

	v.pan = geometry.Point2D{
		X: (v.container.Width - v.image.Width*v.zoom) / 2,
		Y: (v.container.Height - v.image.Height*v.zoom) / 2,
	}
}

// ZoomAtPoint rescales by factor while keeping the image point under
// screenOrigin stationary on screen. Wheel events pass the cursor
// position; toolbar buttons pass the container center.
func (v *Viewport) ZoomAtPoint(factor float64, screenOrigin geometry.Point2D) {
	newZoom := clampZoom(v.zoom * factor)
	if newZoom == v.zoom {
		return
	}

	// imagePoint = (origin - pan)/zoom must be preserved, so solve for
	// the new pan with the new zoom.
	imagePoint := screenOrigin.Sub(v.pan).Scale(1 / v.zoom)
	v.zoom = newZoom
	v.pan = screenOrigin.Sub(imagePoint.Scale(v.zoom))
}

// ZoomAtCenter is ZoomAtPoint anchored at the container center.
func (v *Viewport) ZoomAtCenter(factor float64) {
	v.ZoomAtPoint(factor, geometry.Point2D{
		X: v.container.Width / 2,
		Y: v.container.Height / 2,
	})
}

// ScreenToImage converts a container-relative point to image space.
func (v *Viewport) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	return p.Sub(v.pan).Scale(1 / v.zoom)
}

// ImageToScreen converts an image-space point to container coordinates.
func (v *Viewport) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	return p.Scale(v.zoom).Add(v.pan)
}

// PanBy shifts the view by a screen-space delta. The delta is already in
// screen pixels, so it accumulates verbatim, not scaled by zoom.
func (v *Viewport) PanBy(deltaScreen geometry.Point2D) {
	v.pan = v.pan.Add(deltaScreen)
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
