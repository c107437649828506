package compositor

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"sync/atomic"

	"github.com/disintegration/imaging"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/tiff"
)

// Source describes one mask awaiting load: an opaque raster handle plus
// the display parameters carried through to the resulting MaskLayer.
type Source struct {
	Ref     string
	Color   color.RGBA
	Opacity float64
	Flash   bool
}

// Loader decodes mask rasters asynchronously. Loads may complete out of
// order; a generation counter discards results superseded by a newer
// request so stale rasters are never drawn over newer state. This is the
// only cancellable operation in the engine.
type Loader struct {
	generation atomic.Uint64

	// Fetch decodes a raster handle. Defaults to opening a local file;
	// tests and the network layer substitute their own.
	Fetch func(ref string) (image.Image, error)
}

// NewLoader creates a Loader reading rasters from the filesystem.
func NewLoader() *Loader {
	return &Loader{Fetch: fetchFile}
}

func fetchFile(ref string) (image.Image, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open mask raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mask raster %s: %w", ref, err)
	}
	return img, nil
}

// Begin starts loading the given sources, scaled to w x h, and invokes
// done with the decoded layers unless a newer Begin supersedes this one
// first. done runs on the loader goroutine; callers marshal back onto the
// UI thread themselves. A source that fails to decode is treated as "no
// mask" for that category and skipped.
func (l *Loader) Begin(sources []Source, w, h int, done func([]MaskLayer)) {
	gen := l.generation.Add(1)

	srcs := append([]Source(nil), sources...)
	go func() {
		layers := make([]MaskLayer, 0, len(srcs))
		for _, s := range srcs {
			if l.generation.Load() != gen {
				return // superseded mid-load
			}
			img, err := l.Fetch(s.Ref)
			if err != nil {
				log.Printf("mask load failed, clearing %s: %v", s.Ref, err)
				continue
			}
			layers = append(layers, MaskLayer{
				Alpha:   toAlphaRaster(img, w, h),
				Color:   s.Color,
				Opacity: s.Opacity,
				Flash:   s.Flash,
			})
		}
		if l.generation.Load() != gen {
			return
		}
		done(layers)
	}()
}

// Cancel invalidates any in-flight load without starting a new one.
func (l *Loader) Cancel() {
	l.generation.Add(1)
}

// toAlphaRaster scales the raster to the output dimensions and extracts
// its luminance channel. Nearest-neighbor keeps mask membership binary
// rather than smearing edges.
func toAlphaRaster(img image.Image, w, h int) *image.Gray {
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}
