// Package canvas provides the annotation surface: a widget drawing the
// base image, segmentation overlay, and shape annotations through the
// viewport transform, and routing pointer input into the editor.
package canvas

import (
	"image"
	"image/color"
	"time"

	"ocr-labeler/internal/app"
	"ocr-labeler/internal/compositor"
	"ocr-labeler/internal/editor"
	"ocr-labeler/internal/viewport"
	"ocr-labeler/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	// handleRadius is the on-screen corner handle size in pixels; the
	// editor's image-space pick tolerance is this divided by zoom.
	handleRadius = 6.0

	// resizeDebounce delays refit after a window resize so a live drag
	// of the window edge does not refit on every event.
	resizeDebounce = 100 * time.Millisecond
)

// AnnotationCanvas displays one image with its annotations and masks.
type AnnotationCanvas struct {
	widget.BaseWidget

	state *app.State
	view  *viewport.Viewport

	raster *fynecanvas.Raster

	baseImage image.Image
	overlay   *image.RGBA // composited masks at natural size

	panning bool
	lastPan geometry.Point2D

	promptMode bool

	resizeTimer *time.Timer
	fitMode     viewport.FitMode

	panModifier fyne.KeyModifier

	// OnCursorMoved reports the pointer's image-space position for the
	// status bar.
	OnCursorMoved func(p geometry.Point2D)
}

// New creates the canvas bound to the engine state.
func New(state *app.State) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		state:       state,
		view:        viewport.New(),
		fitMode:     viewport.FitInside,
		panModifier: fyne.KeyModifierAlt,
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.ExtendBaseWidget(ac)

	state.On(app.EventShapesChanged, func(interface{}) { ac.Refresh() })
	state.On(app.EventSelectionChanged, func(interface{}) { ac.Refresh() })
	state.On(app.EventPromptsChanged, func(interface{}) { ac.Refresh() })
	state.On(app.EventMaskLayersReady, func(data interface{}) {
		layers, _ := data.([]compositor.MaskLayer)
		ac.rebuildOverlay(layers)
		ac.Refresh()
	})
	return ac
}

// Viewport exposes the canvas viewport to the toolbar.
func (ac *AnnotationCanvas) Viewport() *viewport.Viewport { return ac.view }

// SetPanModifier selects which held key pans with the primary button.
func (ac *AnnotationCanvas) SetPanModifier(mod fyne.KeyModifier) {
	ac.panModifier = mod
}

// SetImage installs the base image and fits it to the container.
func (ac *AnnotationCanvas) SetImage(img image.Image) {
	ac.baseImage = img
	ac.overlay = nil
	if img != nil {
		b := img.Bounds()
		ac.view.SetImageSize(geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	} else {
		ac.view.SetImageSize(geometry.Size{})
	}
	ac.Fit(ac.fitMode)
}

// SetPromptMode toggles segmentation prompt clicks. While active, presses
// place include (primary) and exclude (secondary) points instead of
// reaching the editor.
func (ac *AnnotationCanvas) SetPromptMode(on bool) {
	ac.promptMode = on
	ac.state.Editor.Escape()
	ac.Refresh()
}

// Fit fits the image per the mode, unless the keep-view flag holds the
// current zoom and pan.
func (ac *AnnotationCanvas) Fit(mode viewport.FitMode) {
	ac.fitMode = mode
	ac.view.Fit(mode)
	ac.Refresh()
}

// ZoomAtCenter zooms around the container center (toolbar buttons).
func (ac *AnnotationCanvas) ZoomAtCenter(factor float64) {
	ac.view.ZoomAtCenter(factor)
	ac.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

// Resize applies the new container size on a debounce. Refits only when
// keep-view is off and no drag is in progress; the editor's drag state
// survives the resize either way.
func (ac *AnnotationCanvas) Resize(size fyne.Size) {
	ac.BaseWidget.Resize(size)
	if ac.resizeTimer != nil {
		ac.resizeTimer.Stop()
	}
	ac.resizeTimer = time.AfterFunc(resizeDebounce, func() {
		// The timer fires off-thread; the viewport belongs to the UI thread.
		fyne.Do(func() {
			ac.view.SetContainerSize(geometry.Size{
				Width:  float64(ac.Size().Width),
				Height: float64(ac.Size().Height),
			})
			if !ac.view.KeepView && !ac.state.Editor.Dragging() {
				ac.view.Fit(ac.fitMode)
			}
			ac.Refresh()
		})
	})
}

// MouseDown implements desktop.Mouseable.
func (ac *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	screen := eventPoint(ev.PointEvent)
	mods := modifiersFor(ev, ac.panModifier)

	if ev.Button == desktop.MouseButtonTertiary || mods.Pan {
		ac.panning = true
		ac.lastPan = screen
		return
	}

	img := ac.view.ScreenToImage(screen)
	if ac.promptMode {
		ac.state.AddPromptPoint(img, ev.Button == desktop.MouseButtonPrimary)
		return
	}

	ac.syncCornerTolerance()
	ac.state.Editor.PointerDown(img, mods)
	ac.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (ac *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ac.panning {
		ac.panning = false
		return
	}
	if ac.promptMode {
		return
	}
	ac.state.Editor.PointerUp(ac.view.ScreenToImage(eventPoint(ev.PointEvent)))
	ac.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseOut() {}

// MouseMoved implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	screen := eventPoint(ev.PointEvent)

	if ac.panning {
		ac.view.PanBy(screen.Sub(ac.lastPan))
		ac.lastPan = screen
		ac.Refresh()
		return
	}

	img := ac.view.ScreenToImage(screen)
	if ac.OnCursorMoved != nil {
		ac.OnCursorMoved(img)
	}
	if !ac.promptMode {
		ac.state.Editor.PointerMove(img)
		ac.Refresh()
	}
}

// DoubleTapped finalizes a polygon draft.
func (ac *AnnotationCanvas) DoubleTapped(ev *fyne.PointEvent) {
	if ac.promptMode {
		return
	}
	ac.state.Editor.DoubleClick(ac.view.ScreenToImage(eventPoint(*ev)))
	ac.Refresh()
}

// Tapped is required alongside DoubleTapped; presses are already handled
// in MouseDown.
func (ac *AnnotationCanvas) Tapped(*fyne.PointEvent) {}

// Scrolled zooms at the cursor.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	factor := viewport.WheelZoomIn
	if ev.Scrolled.DY < 0 {
		factor = viewport.WheelZoomOut
	}
	ac.view.ZoomAtPoint(factor, eventPoint(ev.PointEvent))
	ac.Refresh()
}

// rebuildOverlay composites the mask layers at natural dimensions.
func (ac *AnnotationCanvas) rebuildOverlay(layers []compositor.MaskLayer) {
	if len(layers) == 0 {
		ac.overlay = nil
		return
	}
	size := ac.state.NaturalSize()
	ac.overlay = compositor.Render(int(size.Width), int(size.Height), layers)
}

// syncCornerTolerance keeps the on-screen handle pick radius constant
// across zoom levels.
func (ac *AnnotationCanvas) syncCornerTolerance() {
	if z := ac.view.Zoom(); z > 0 {
		ac.state.Editor.SetCornerTolerance(handleRadius / z)
	}
}

func eventPoint(ev fyne.PointEvent) geometry.Point2D {
	return geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
}

// modifiersFor maps held keys to editor modifiers. The pan key is
// configurable; whichever of Ctrl/Shift it claims no longer multi-selects.
func modifiersFor(ev *desktop.MouseEvent, pan fyne.KeyModifier) editor.Modifiers {
	return editor.Modifiers{
		Pan:         ev.Modifier&pan != 0,
		MultiSelect: ev.Modifier&((fyne.KeyModifierControl|fyne.KeyModifierShift)&^pan) != 0,
	}
}

var background = color.RGBA{R: 38, G: 38, B: 42, A: 255}
