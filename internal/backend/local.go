package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"ocr-labeler/internal/annotation"
)

// Recognizer is the optional OCR hook a LocalStore delegates
// RecognizeText to. Nil means recognition is unavailable.
type Recognizer interface {
	RecognizeShape(imageID string, shape annotation.Shape) (string, error)
}

// LocalStore is an in-process Collaborator for standalone runs and tests.
// Shapes live in a per-image map; IDs are assigned from a monotonic
// counter. Optionally persists to a JSON file so standalone sessions keep
// their work between runs.
type LocalStore struct {
	mu sync.Mutex

	nextID uint64
	images map[string]map[string]annotation.Shape
	masks  map[string][]MaskResult
	path   string // "" means memory-only
	recog  Recognizer
}

// NewLocalStore creates a memory-only store.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		nextID: 1,
		images: make(map[string]map[string]annotation.Shape),
		masks:  make(map[string][]MaskResult),
	}
}

// OpenLocalStore creates a store backed by a JSON file, loading any
// existing contents. A missing file is an empty store.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := NewLocalStore()
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	s.restore(&file)
	return s, nil
}

// SetRecognizer installs the OCR hook used by RecognizeText.
func (s *LocalStore) SetRecognizer(r Recognizer) {
	s.mu.Lock()
	s.recog = r
	s.mu.Unlock()
}

// storeFile is the on-disk shape of a LocalStore.
type storeFile struct {
	Version int                           `json:"version"`
	NextID  uint64                        `json:"next_id"`
	Images  map[string][]annotation.Shape `json:"images"`
	Masks   map[string][]MaskResult       `json:"masks,omitempty"`
}

func (s *LocalStore) restore(file *storeFile) {
	s.nextID = file.NextID
	if s.nextID == 0 {
		s.nextID = 1
	}
	for imageID, shapes := range file.Images {
		m := make(map[string]annotation.Shape, len(shapes))
		for _, sh := range shapes {
			m[sh.ID] = sh
		}
		s.images[imageID] = m
	}
	for imageID, masks := range file.Masks {
		s.masks[imageID] = masks
	}
}

// flush writes the store to its backing file. Caller holds s.mu.
func (s *LocalStore) flush() error {
	if s.path == "" {
		return nil
	}
	out := storeFile{Version: 1, NextID: s.nextID,
		Images: make(map[string][]annotation.Shape, len(s.images)),
		Masks:  s.masks,
	}
	for imageID, m := range s.images {
		shapes := make([]annotation.Shape, 0, len(m))
		for _, sh := range m {
			shapes = append(shapes, sh)
		}
		out.Images[imageID] = shapes
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// SaveShapes upserts shapes by ID, assigning IDs to shapes that lack one,
// and returns the authoritative copies.
func (s *LocalStore) SaveShapes(ctx context.Context, imageID string, shapes []annotation.Shape) ([]annotation.Shape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.images[imageID]
	if m == nil {
		m = make(map[string]annotation.Shape)
		s.images[imageID] = m
	}

	out := make([]annotation.Shape, 0, len(shapes))
	for _, sh := range shapes {
		sh = sh.Clone()
		if sh.ID == "" {
			sh.ID = fmt.Sprintf("s%d", s.nextID)
			s.nextID++
		}
		m[sh.ID] = sh
		out = append(out, sh)
	}

	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("save shapes: %w", err)
	}
	return out, nil
}

// DeleteShapes removes ids that exist; unknown ids and an empty list are
// no-ops.
func (s *LocalStore) DeleteShapes(ctx context.Context, imageID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.images[imageID]
	for _, id := range ids {
		delete(m, id)
	}
	if err := s.flush(); err != nil {
		return fmt.Errorf("delete shapes: %w", err)
	}
	return nil
}

// GenerateMask records the prompt points as-is. The local store has no
// segmentation model; it returns the points unchanged with no raster so
// the compositor treats the category as "no mask".
func (s *LocalStore) GenerateMask(ctx context.Context, imageID string, points []annotation.PromptPoint, categoryID string) (*MaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := MaskResult{
		Category: categoryID,
		Points:   append([]annotation.PromptPoint(nil), points...),
	}
	s.masks[imageID] = append(s.masks[imageID], res)
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("generate mask: %w", err)
	}
	return &res, nil
}

// RecognizeText fills Text on each shape via the installed Recognizer. A
// shape the recognizer fails on keeps its existing text.
func (s *LocalStore) RecognizeText(ctx context.Context, imageID string, shapes []annotation.Shape) ([]annotation.Shape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	recog := s.recog
	s.mu.Unlock()
	if recog == nil {
		return nil, fmt.Errorf("text recognition unavailable")
	}

	out := annotation.CloneShapes(shapes)
	for i := range out {
		text, err := recog.RecognizeShape(imageID, out[i])
		if err != nil {
			continue
		}
		out[i].Text = text
	}
	return out, nil
}

// Shapes returns the stored shapes for an image, mainly for tests.
func (s *LocalStore) Shapes(imageID string) []annotation.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.images[imageID]
	out := make([]annotation.Shape, 0, len(m))
	for _, sh := range m {
		out = append(out, sh)
	}
	return out
}
