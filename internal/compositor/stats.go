package compositor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaskStats summarizes one mask layer for display in the status bar.
type MaskStats struct {
	// Coverage is the fraction of raster pixels with alpha > 0.
	Coverage float64
	// MeanAlpha is the mean luminance over covered pixels (0-255).
	MeanAlpha float64
	// CentroidX, CentroidY is the alpha-weighted centroid in raster
	// coordinates. Zero when the mask is empty.
	CentroidX float64
	CentroidY float64
}

// Stats computes coverage statistics for a mask layer.
func Stats(layer MaskLayer) MaskStats {
	if layer.Alpha == nil {
		return MaskStats{}
	}
	b := layer.Alpha.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return MaskStats{}
	}

	var alphas []float64
	var weights []float64
	var xs, ys []float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := layer.Alpha.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			if a == 0 {
				continue
			}
			af := float64(a)
			alphas = append(alphas, af)
			weights = append(weights, af)
			xs = append(xs, float64(x))
			ys = append(ys, float64(y))
		}
	}
	if len(alphas) == 0 {
		return MaskStats{}
	}

	total := floats.Sum(weights)
	return MaskStats{
		Coverage:  float64(len(alphas)) / float64(w*h),
		MeanAlpha: stat.Mean(alphas, nil),
		CentroidX: floats.Dot(xs, weights) / total,
		CentroidY: floats.Dot(ys, weights) / total,
	}
}
