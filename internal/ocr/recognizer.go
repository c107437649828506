package ocr

import (
	"fmt"
	"sync"

	"ocr-labeler/internal/annotation"

	"gocv.io/x/gocv"
)

// ImageRecognizer resolves image IDs to pixel data and recognizes shape
// text, caching the most recently opened image since recognition requests
// arrive in per-image bursts.
type ImageRecognizer struct {
	engine *Engine

	mu       sync.Mutex
	cachedID string
	cached   gocv.Mat

	// Open turns an image ID into a decoded Mat. Defaults to reading the
	// ID as a file path.
	Open func(imageID string) (gocv.Mat, error)
}

// NewImageRecognizer wraps an engine with filesystem image resolution.
func NewImageRecognizer(engine *Engine) *ImageRecognizer {
	return &ImageRecognizer{
		engine: engine,
		Open:   openImageFile,
	}
}

func openImageFile(imageID string) (gocv.Mat, error) {
	mat := gocv.IMRead(imageID, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("read image %s", imageID)
	}
	return mat, nil
}

// RecognizeShape recognizes the text inside one shape of the image.
func (r *ImageRecognizer) RecognizeShape(imageID string, shape annotation.Shape) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cachedID != imageID {
		mat, err := r.Open(imageID)
		if err != nil {
			return "", fmt.Errorf("open image for OCR: %w", err)
		}
		if r.cachedID != "" {
			r.cached.Close()
		}
		r.cached = mat
		r.cachedID = imageID
	}
	return r.engine.RecognizeShape(r.cached, shape)
}

// Close releases the cached image and the engine.
func (r *ImageRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cachedID != "" {
		r.cached.Close()
		r.cachedID = ""
	}
	return r.engine.Close()
}
