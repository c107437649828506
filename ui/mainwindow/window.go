// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"log"
	"path/filepath"

	"ocr-labeler/internal/app"
	"ocr-labeler/internal/compositor"
	"ocr-labeler/internal/editor"
	"ocr-labeler/internal/version"
	"ocr-labeler/internal/viewport"
	"ocr-labeler/pkg/geometry"
	"ocr-labeler/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyLastDir     = "lastDirectory"
	prefKeyKeepView    = "keepView"
	prefKeyPanModifier = "panModifier"
)

// panModifierNames lists the selectable pan keys in menu order.
var panModifierNames = []string{"Alt", "Control", "Shift", "Super"}

// PanModifierFromName maps a stored preference value to the key mask.
// Unknown values fall back to Alt.
func PanModifierFromName(name string) fyne.KeyModifier {
	switch name {
	case "Control":
		return fyne.KeyModifierControl
	case "Shift":
		return fyne.KeyModifierShift
	case "Super":
		return fyne.KeyModifierSuper
	default:
		return fyne.KeyModifierAlt
	}
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	canvas *canvas.AnnotationCanvas

	statusBar    *widget.Label
	categoryList *widget.List
	undoBtn      *widget.Button
	redoBtn      *widget.Button

	cursor geometry.Point2D
	stats  string
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow("OCR Labeler " + version.Short())

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1200, 800))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.state)
	mw.canvas.Viewport().KeepView = mw.app.Preferences().Bool(prefKeyKeepView)
	mw.canvas.SetPanModifier(PanModifierFromName(
		mw.app.Preferences().StringWithFallback(prefKeyPanModifier, "Alt")))
	mw.canvas.OnCursorMoved = func(p geometry.Point2D) {
		mw.cursor = p
		mw.updateStatus()
	}

	mw.statusBar = widget.NewLabel("Ready")
	mw.categoryList = mw.createCategoryList()

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	side := container.NewBorder(
		widget.NewLabel("Categories"),
		widget.NewButton("Add Category", mw.onAddCategory),
		nil, nil,
		mw.categoryList,
	)

	split := container.NewHSplit(side, canvasArea)
	split.SetOffset(0.2)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the tool and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	selectBtn := widget.NewButton("Select", func() {
		mw.canvas.SetPromptMode(false)
		mw.state.Editor.SetTool(editor.ToolSelect)
	})
	rectBtn := widget.NewButton("Rect", func() {
		mw.canvas.SetPromptMode(false)
		mw.state.Editor.SetTool(editor.ToolRect)
	})
	polyBtn := widget.NewButton("Polygon", func() {
		mw.canvas.SetPromptMode(false)
		mw.state.Editor.SetTool(editor.ToolPolygon)
	})
	promptBtn := widget.NewButton("Prompt", func() {
		mw.canvas.SetPromptMode(true)
	})

	mw.undoBtn = widget.NewButton("Undo", mw.onUndo)
	mw.redoBtn = widget.NewButton("Redo", mw.onRedo)
	mw.syncHistoryButtons()

	keepView := widget.NewCheck("Keep view", func(on bool) {
		mw.canvas.Viewport().KeepView = on
		mw.app.Preferences().SetBool(prefKeyKeepView, on)
	})
	keepView.SetChecked(mw.app.Preferences().Bool(prefKeyKeepView))

	return container.NewHBox(
		selectBtn, rectBtn, polyBtn, promptBtn,
		widget.NewSeparator(),
		widget.NewButton("-", func() { mw.canvas.ZoomAtCenter(viewport.WheelZoomOut) }),
		widget.NewButton("+", func() { mw.canvas.ZoomAtCenter(viewport.WheelZoomIn) }),
		widget.NewButton("Fit", func() { mw.canvas.Fit(viewport.FitInside) }),
		widget.NewButton("Fill", func() { mw.canvas.Fit(viewport.FitOutside) }),
		keepView,
		widget.NewSeparator(),
		mw.undoBtn, mw.redoBtn,
		widget.NewButton("Delete", mw.state.Editor.DeleteSelection),
	)
}

func (mw *MainWindow) createCategoryList() *widget.List {
	list := widget.NewList(
		func() int { return len(mw.state.Categories()) },
		func() fyne.CanvasObject { return widget.NewLabel("category") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			cats := mw.state.Categories()
			if i < len(cats) {
				obj.(*widget.Label).SetText(cats[i].Name)
			}
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		cats := mw.state.Categories()
		if i < len(cats) {
			mw.state.FlashCategory(cats[i].Name)
		}
	}
	return list
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Selection", mw.state.Editor.DeleteSelection),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.canvas.ZoomAtCenter(viewport.WheelZoomIn) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.canvas.ZoomAtCenter(viewport.WheelZoomOut) }),
		fyne.NewMenuItem("Fit Inside", func() { mw.canvas.Fit(viewport.FitInside) }),
		fyne.NewMenuItem("Fit Outside", func() { mw.canvas.Fit(viewport.FitOutside) }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Recognize Text", mw.state.RecognizeSelection),
		fyne.NewMenuItem("Generate Mask", mw.onGenerateMask),
		fyne.NewMenuItem("Clear Prompt Points", mw.state.ClearPromptPoints),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupShortcuts wires the keyboard: Esc discards drafts, Delete and
// Backspace remove the selection, Ctrl+Z / Ctrl+Y drive history.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.state.Editor.Escape()
			mw.canvas.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.state.Editor.DeleteSelection()
		}
	})
	mw.Canvas().AddShortcut(&fyne.ShortcutUndo{}, func(fyne.Shortcut) { mw.onUndo() })
	mw.Canvas().AddShortcut(&fyne.ShortcutRedo{}, func(fyne.Shortcut) { mw.onRedo() })
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventSaveFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.statusBar.SetText(fmt.Sprintf("Save failed: %v (kept locally)", err))
		}
	})
	mw.state.On(app.EventHistoryChanged, func(interface{}) {
		mw.syncHistoryButtons()
	})
	mw.state.On(app.EventShapesChanged, func(interface{}) {
		mw.updateStatus()
	})
	mw.state.On(app.EventCategoriesChanged, func(interface{}) {
		mw.categoryList.Refresh()
	})
	mw.state.On(app.EventMaskLayersReady, func(data interface{}) {
		layers, _ := data.([]compositor.MaskLayer)
		mw.stats = maskSummary(layers)
		mw.updateStatus()
	})
	mw.state.On(app.EventImageChanged, func(data interface{}) {
		if id, ok := data.(string); ok && id != "" {
			mw.SetTitle("OCR Labeler - " + filepath.Base(id))
		} else {
			mw.SetTitle("OCR Labeler " + version.Short())
		}
		mw.syncHistoryButtons()
	})
}

func (mw *MainWindow) onUndo() {
	mw.state.Undo()
	mw.syncHistoryButtons()
}

func (mw *MainWindow) onRedo() {
	mw.state.Redo()
	mw.syncHistoryButtons()
}

func (mw *MainWindow) syncHistoryButtons() {
	if mw.undoBtn == nil {
		return
	}
	setEnabled(mw.undoBtn, mw.state.CanUndo())
	setEnabled(mw.redoBtn, mw.state.CanRedo())
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// ShowImage installs an already-decoded base image on the canvas (used
// for images passed on the command line).
func (mw *MainWindow) ShowImage(img image.Image) {
	mw.canvas.SetImage(img)
}

// onOpenImage picks and loads a base image.
func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		img, _, err := image.Decode(reader)
		if err != nil {
			dialog.ShowError(fmt.Errorf("decode %s: %w", path, err), mw.Window)
			return
		}

		mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(path))
		b := img.Bounds()
		mw.state.SetImage(path, geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
		mw.canvas.SetImage(img)
		mw.statusBar.SetText(fmt.Sprintf("Loaded %s (%dx%d)", filepath.Base(path), b.Dx(), b.Dy()))
		log.Printf("Loaded image %s (%dx%d)", path, b.Dx(), b.Dy())
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp"}))
	if dir := mw.app.Preferences().String(prefKeyLastDir); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

func (mw *MainWindow) onAddCategory() {
	entry := widget.NewEntry()
	dialog.ShowForm("Add Category", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			if _, err := mw.state.AddCategory(entry.Text); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}, mw.Window)
}

func (mw *MainWindow) onPreferences() {
	sel := widget.NewSelect(panModifierNames, nil)
	sel.SetSelected(mw.app.Preferences().StringWithFallback(prefKeyPanModifier, "Alt"))
	dialog.ShowForm("Preferences", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Pan with held key", sel)},
		func(ok bool) {
			if !ok || sel.Selected == "" {
				return
			}
			mw.app.Preferences().SetString(prefKeyPanModifier, sel.Selected)
			mw.canvas.SetPanModifier(PanModifierFromName(sel.Selected))
		}, mw.Window)
}

func (mw *MainWindow) onGenerateMask() {
	cats := mw.state.Categories()
	if len(cats) == 0 {
		dialog.ShowInformation("Generate Mask", "Create a category first.", mw.Window)
		return
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	sel := widget.NewSelect(names, nil)
	sel.SetSelectedIndex(0)
	dialog.ShowForm("Generate Mask", "Generate", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Category", sel)},
		func(ok bool) {
			if ok && sel.Selected != "" {
				mw.state.GenerateMask(sel.Selected)
			}
		}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("OCR Labeler %s\nAnnotation canvas for OCR and segmentation labeling.", version.Short()),
		mw.Window)
}

func (mw *MainWindow) updateStatus() {
	zoom := mw.canvas.Viewport().Zoom()
	text := fmt.Sprintf("Zoom %.0f%%  (%.0f, %.0f)  %d shapes",
		zoom*100, mw.cursor.X, mw.cursor.Y, len(mw.state.Shapes()))
	if mw.stats != "" {
		text += "  " + mw.stats
	}
	mw.statusBar.SetText(text)
}

// maskSummary formats per-layer coverage for the status bar.
func maskSummary(layers []compositor.MaskLayer) string {
	if len(layers) == 0 {
		return ""
	}
	total := 0.0
	for _, l := range layers {
		total += compositor.Stats(l).Coverage
	}
	return fmt.Sprintf("masks: %d (%.1f%% covered)", len(layers), total*100/float64(len(layers)))
}
