// Package compositor renders category masks into a single overlay image.
// Each mask is a single-channel raster whose luminance acts as per-pixel
// alpha; the compositor tints it with the category color, outlines its
// edges, and alpha-composites all masks back-to-front at the base image's
// natural pixel dimensions.
package compositor

import (
	"image"
	"image/color"

	"ocr-labeler/pkg/colorutil"
)

const (
	// edgeAlpha is the outline alpha, deliberately independent of the
	// category's fill opacity so outlines stay visible at low opacities.
	edgeAlpha = 230

	// edgeBrighten is how far the outline color is pushed toward white.
	edgeBrighten = 0.5

	// FlashFactor is the transient opacity multiplier applied to a
	// flashed category for the duration of the flash (~200ms).
	FlashFactor = 2.0
)

// MaskLayer is one category mask ready for compositing: the raster scaled
// to output dimensions, plus the category's display parameters.
type MaskLayer struct {
	// Alpha holds the raster's luminance channel; 0 means fully
	// transparent (background shows through), anything >0 is "in mask".
	Alpha *image.Gray

	Color   color.RGBA
	Opacity float64

	// Flash doubles the opacity multiplier while set.
	Flash bool
}

// Render composites the mask layers into a w x h RGBA image. Layers are
// drawn back-to-front in input order with plain alpha-over composition;
// later masks are not occluded by earlier ones.
func Render(w, h int, layers []MaskLayer) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return out
	}
	for i := range layers {
		renderLayer(out, &layers[i])
	}
	return out
}

func renderLayer(dst *image.RGBA, layer *MaskLayer) {
	if layer.Alpha == nil {
		return
	}
	opacity := layer.Opacity
	if layer.Flash {
		opacity *= FlashFactor
	}

	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	edgeColor := colorutil.Brighten(layer.Color, edgeBrighten)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := maskAlphaAt(layer.Alpha, x, y)
			if a == 0 {
				// Fully transparent regardless of opacity.
				continue
			}

			fill := scaleAlpha(a, opacity)
			blendOver(dst, x, y, layer.Color, fill)

			if isEdge(layer.Alpha, x, y) {
				blendOver(dst, x, y, edgeColor, edgeAlpha)
			}
		}
	}
}

// maskAlphaAt reads the luminance of the raster at (x, y); coordinates
// outside the raster read as 0.
func maskAlphaAt(m *image.Gray, x, y int) uint8 {
	b := m.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return 0
	}
	return m.GrayAt(x, y).Y
}

// isEdge reports whether (x, y) is an outline pixel: it carries alpha and
// either lies on the raster border or has a 4-neighbor with zero alpha.
func isEdge(m *image.Gray, x, y int) bool {
	if maskAlphaAt(m, x, y) == 0 {
		return false
	}
	b := m.Bounds()
	if x == b.Min.X || x == b.Max.X-1 || y == b.Min.Y || y == b.Max.Y-1 {
		return true
	}
	return maskAlphaAt(m, x-1, y) == 0 || maskAlphaAt(m, x+1, y) == 0 ||
		maskAlphaAt(m, x, y-1) == 0 || maskAlphaAt(m, x, y+1) == 0
}

// scaleAlpha applies the category opacity to a raster alpha value,
// saturating at 255: alpha=200 at opacity 0.5 yields 100.
func scaleAlpha(a uint8, opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	v := float64(a) * opacity
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// blendOver composites src (with the given alpha) over the destination
// pixel using the standard over operator.
func blendOver(dst *image.RGBA, x, y int, src color.RGBA, srcAlpha uint8) {
	if srcAlpha == 0 {
		return
	}
	d := dst.RGBAAt(x, y)

	sa := float64(srcAlpha) / 255
	da := float64(d.A) / 255
	outA := sa + da*(1-sa)
	if outA == 0 {
		dst.SetRGBA(x, y, color.RGBA{})
		return
	}

	blend := func(s, dc uint8) uint8 {
		v := (float64(s)*sa + float64(dc)*da*(1-sa)) / outA
		if v > 255 {
			v = 255
		}
		return uint8(v + 0.5)
	}
	dst.SetRGBA(x, y, color.RGBA{
		R: blend(src.R, d.R),
		G: blend(src.G, d.G),
		B: blend(src.B, d.B),
		A: uint8(outA*255 + 0.5),
	})
}
