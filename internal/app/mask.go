package app

import (
	"context"
	"log"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/internal/compositor"
	"ocr-labeler/pkg/geometry"
)

// PromptPoints returns the prompt clicks accumulated since the last mask
// generation or image switch.
func (s *State) PromptPoints() []annotation.PromptPoint {
	return s.prompts
}

// AddPromptPoint records a segmentation prompt click in image space.
func (s *State) AddPromptPoint(p geometry.Point2D, include bool) {
	s.prompts = append(s.prompts, annotation.PromptPoint{Point2D: p, Include: include})
	s.Emit(EventPromptsChanged, s.prompts)
}

// ClearPromptPoints discards accumulated prompt clicks.
func (s *State) ClearPromptPoints() {
	if s.prompts == nil {
		return
	}
	s.prompts = nil
	s.Emit(EventPromptsChanged, s.prompts)
}

// GenerateMask sends the accumulated prompt points to the collaborator
// and installs the resulting mask for the category, replacing any
// previous mask of the same category on this image. The prompt list is
// cleared once the result arrives; the canonical points come back with it.
func (s *State) GenerateMask(category string) {
	if len(s.prompts) == 0 {
		return
	}
	imageID := s.imageID
	points := append([]annotation.PromptPoint(nil), s.prompts...)

	s.RunAsync(func() {
		res, err := s.collab.GenerateMask(context.Background(), imageID, points, category)
		s.RunOnUI(func() {
			if err != nil {
				log.Printf("mask generation failed for %s: %v", imageID, err)
				s.Emit(EventSaveFailed, err)
				return
			}
			s.installMask(imageID, annotation.SegmentationMask{
				Category:  res.Category,
				Points:    res.Points,
				RasterRef: res.RasterRef,
			})
		})
	})
}

func (s *State) installMask(imageID string, mask annotation.SegmentationMask) {
	masks := s.masks[imageID]
	replaced := false
	for i := range masks {
		if masks[i].Category == mask.Category {
			masks[i] = mask
			replaced = true
			break
		}
	}
	if !replaced {
		masks = append(masks, mask)
	}
	s.masks[imageID] = masks

	if imageID == s.imageID {
		s.prompts = nil
		s.Emit(EventPromptsChanged, s.prompts)
		s.Emit(EventMasksChanged, masks)
		s.reloadMasks()
	}
}

// reloadMasks starts an asynchronous raster load for the current image's
// masks. A newer reload supersedes any in-flight one; the layers land via
// EventMaskLayersReady.
func (s *State) reloadMasks() {
	w := int(s.natural.Width)
	h := int(s.natural.Height)
	if w <= 0 || h <= 0 {
		s.layers = nil
		s.Loader.Cancel()
		s.Emit(EventMaskLayersReady, s.layers)
		return
	}

	var sources []compositor.Source
	for _, mask := range s.Masks() {
		if mask.RasterRef == "" {
			continue
		}
		cat, ok := s.CategoryByName(mask.Category)
		if !ok {
			continue
		}
		sources = append(sources, compositor.Source{
			Ref:     mask.RasterRef,
			Color:   cat.Color,
			Opacity: cat.Opacity,
			Flash:   s.flashing[cat.Name],
		})
	}
	if len(sources) == 0 {
		s.layers = nil
		s.Loader.Cancel()
		s.Emit(EventMaskLayersReady, s.layers)
		return
	}

	s.Loader.Begin(sources, w, h, func(layers []compositor.MaskLayer) {
		s.RunOnUI(func() {
			s.layers = layers
			s.Emit(EventMaskLayersReady, layers)
		})
	})
}
