package annotation

import (
	"ocr-labeler/pkg/geometry"
)

// PromptPoint is a segmentation prompt: a click that includes (green) or
// excludes (red) a region from the generated mask.
type PromptPoint struct {
	geometry.Point2D
	Include bool `json:"include"`
}

// SegmentationMask ties a category to the raster produced from its prompt
// points. RasterRef is an opaque handle (file path or URL) to a
// single-channel image whose luminance encodes membership: pixel value >0
// marks "in mask".
type SegmentationMask struct {
	Category  string        `json:"category"`
	Points    []PromptPoint `json:"points"`
	RasterRef string        `json:"raster"`
}

// Clone returns a deep copy of the mask.
func (m SegmentationMask) Clone() SegmentationMask {
	out := m
	out.Points = append([]PromptPoint(nil), m.Points...)
	return out
}
