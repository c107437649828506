// Package app provides the engine state, events, and the commit pipeline
// tying the editor, history stack, compositor, and collaborator together.
package app

import (
	"sync"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/internal/backend"
	"ocr-labeler/internal/compositor"
	"ocr-labeler/internal/editor"
	"ocr-labeler/internal/history"
	"ocr-labeler/pkg/geometry"
)

// EventType identifies different application events.
type EventType int

const (
	EventImageChanged EventType = iota
	EventShapesChanged
	EventSelectionChanged
	EventCategoriesChanged
	EventMasksChanged
	EventMaskLayersReady
	EventPromptsChanged
	EventSaveFailed
	EventRecognitionDone
	EventHistoryChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the annotation session: the current image, per-image shape
// collections, categories, segmentation masks, and the machinery wiring
// editor intents to the collaborator.
//
// All fields except the listener table are mutated only on the UI thread.
// Collaborator calls and raster decodes run in goroutines; their
// completions are marshalled back through RunOnUI.
type State struct {
	Editor  *editor.Editor
	History *history.Stack
	Loader  *compositor.Loader

	collab backend.Collaborator

	imageID string
	natural geometry.Size

	shapes     map[string][]annotation.Shape
	categories []annotation.Category
	masks      map[string][]annotation.SegmentationMask
	prompts    []annotation.PromptPoint

	flashing map[string]bool
	layers   []compositor.MaskLayer

	// one undo/redo collaborator sync at a time
	syncing bool

	// RunAsync starts background work; RunOnUI marshals a completion
	// back onto the UI thread. main installs go f() and fyne.Do; the
	// defaults run work synchronously for tests and CLI use.
	RunAsync func(func())
	RunOnUI  func(func())

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// NewState creates the engine state around a collaborator.
func NewState(collab backend.Collaborator) *State {
	s := &State{
		Editor:    editor.New(),
		History:   history.New(),
		Loader:    compositor.NewLoader(),
		collab:    collab,
		shapes:    make(map[string][]annotation.Shape),
		masks:     make(map[string][]annotation.SegmentationMask),
		flashing:  make(map[string]bool),
		RunAsync:  func(f func()) { f() },
		RunOnUI:   func(f func()) { f() },
		listeners: make(map[EventType][]EventListener),
	}
	s.Editor.OnCommit = s.handleCommit
	s.Editor.OnDelete = s.handleDelete
	s.Editor.OnSelectionChanged = func() { s.Emit(EventSelectionChanged, s.Editor.SelectedIDs()) }
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// ImageID returns the current image's identifier.
func (s *State) ImageID() string { return s.imageID }

// NaturalSize returns the current image's natural pixel dimensions.
func (s *State) NaturalSize() geometry.Size { return s.natural }

// SetImage switches the annotation surface to another image. Shapes,
// history, and masks of the previous image are kept; drafts, selection,
// and prompt points are not.
func (s *State) SetImage(imageID string, natural geometry.Size) {
	if imageID == s.imageID {
		return
	}
	s.imageID = imageID
	s.natural = natural
	s.prompts = nil
	s.Editor.ClearSelection()
	s.Editor.SetShapes(annotation.CloneShapes(s.shapes[imageID]))
	s.Emit(EventImageChanged, imageID)
	s.Emit(EventShapesChanged, s.Shapes())
	s.reloadMasks()
}

// Shapes returns the current image's shape collection.
func (s *State) Shapes() []annotation.Shape {
	return s.shapes[s.imageID]
}

// Masks returns the current image's segmentation masks.
func (s *State) Masks() []annotation.SegmentationMask {
	return s.masks[s.imageID]
}

// MaskLayers returns the most recently loaded compositor input.
func (s *State) MaskLayers() []compositor.MaskLayer {
	return s.layers
}

// Reset drops all session state (project close / reopen).
func (s *State) Reset() {
	s.imageID = ""
	s.natural = geometry.Size{}
	s.shapes = make(map[string][]annotation.Shape)
	s.masks = make(map[string][]annotation.SegmentationMask)
	s.prompts = nil
	s.layers = nil
	s.History.Reset()
	s.Loader.Cancel()
	s.Editor.ClearSelection()
	s.Editor.SetShapes(nil)
	s.Emit(EventImageChanged, "")
}
