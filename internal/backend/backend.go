// Package backend defines the collaborator contract: the asynchronous
// peer the engine hands save, delete, mask-generation and text-recognition
// requests to. The engine applies edits locally first and reconciles the
// collaborator's authoritative reply afterwards; a failed call never rolls
// the local state back.
package backend

import (
	"context"

	"ocr-labeler/internal/annotation"
)

// MaskResult is the collaborator's reply to a mask generation request:
// the canonical prompt points it settled on and a handle to the raster
// it produced.
type MaskResult struct {
	Category  string                   `json:"category"`
	Points    []annotation.PromptPoint `json:"points"`
	RasterRef string                   `json:"raster_ref"`
}

// Collaborator is the engine's save/compute peer. Implementations upsert
// shapes by ID and assign an ID to any shape submitted with an empty one.
// Calls run to completion or failure once; retry policy belongs to the
// implementation, not the engine.
type Collaborator interface {
	// SaveShapes upserts the given shapes for an image and returns the
	// authoritative versions, with collaborator-assigned IDs filled in.
	SaveShapes(ctx context.Context, imageID string, shapes []annotation.Shape) ([]annotation.Shape, error)

	// DeleteShapes removes the identified shapes. An empty id list is a
	// valid no-op.
	DeleteShapes(ctx context.Context, imageID string, ids []string) error

	// GenerateMask turns the accumulated prompt points into a
	// segmentation raster for the category.
	GenerateMask(ctx context.Context, imageID string, points []annotation.PromptPoint, categoryID string) (*MaskResult, error)

	// RecognizeText runs text recognition over the given shapes and
	// returns them with their Text fields populated.
	RecognizeText(ctx context.Context, imageID string, shapes []annotation.Shape) ([]annotation.Shape, error)
}
