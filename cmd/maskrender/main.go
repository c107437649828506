// Command maskrender composites segmentation masks over a base image and
// writes the result to a PNG, for inspecting masks outside the UI.
//
// Masks are given as ref:color:opacity triples, e.g.
//
//	maskrender -image page.png -mask text.png:#ff0000:0.5 -mask table.png:#00ff00:0.4 -out overlay.png
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strconv"
	"strings"

	"ocr-labeler/internal/compositor"
	"ocr-labeler/pkg/colorutil"

	"github.com/disintegration/imaging"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/tiff"
)

type maskFlags []string

func (m *maskFlags) String() string { return strings.Join(*m, ",") }

func (m *maskFlags) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	imagePath := flag.String("image", "", "Path to base image (PNG, JPEG, TIFF, or WebP)")
	outPath := flag.String("out", "overlay.png", "Output PNG path")
	width := flag.Int("width", 0, "Downscale output to this width (0 keeps natural size)")
	var masks maskFlags
	flag.Var(&masks, "mask", "Mask as ref:#rrggbb:opacity (repeatable)")
	flag.Parse()

	if *imagePath == "" || len(masks) == 0 {
		fmt.Println("Usage: maskrender -image <path> -mask ref:#rrggbb:opacity [-mask ...] [-out overlay.png]")
		os.Exit(1)
	}

	base, err := loadImage(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load base image: %v\n", err)
		os.Exit(1)
	}
	bounds := base.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	fmt.Printf("Loaded %s: %dx%d pixels\n", *imagePath, w, h)

	sources := make([]compositor.Source, 0, len(masks))
	for _, spec := range masks {
		src, err := parseMask(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad -mask %q: %v\n", spec, err)
			os.Exit(1)
		}
		sources = append(sources, src)
	}

	loader := compositor.NewLoader()
	done := make(chan []compositor.MaskLayer, 1)
	loader.Begin(sources, w, h, func(layers []compositor.MaskLayer) {
		done <- layers
	})
	layers := <-done

	overlay := compositor.Render(w, h, layers)
	for i, layer := range layers {
		s := compositor.Stats(layer)
		fmt.Printf("  mask %d: %.1f%% covered, mean alpha %.0f, centroid (%.0f, %.0f)\n",
			i, s.Coverage*100, s.MeanAlpha, s.CentroidX, s.CentroidY)
	}

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, base, bounds.Min, draw.Src)
	draw.Draw(out, bounds, overlay, image.Point{}, draw.Over)

	result := image.Image(out)
	if *width > 0 && *width < w {
		result = imaging.Resize(result, *width, 0, imaging.Lanczos)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// parseMask splits a ref:#rrggbb:opacity triple. The ref may itself
// contain colons only if it has no # in it, so the color is located from
// the right.
func parseMask(spec string) (compositor.Source, error) {
	last := strings.LastIndex(spec, ":")
	if last < 0 {
		return compositor.Source{}, fmt.Errorf("want ref:#rrggbb:opacity")
	}
	opacity, err := strconv.ParseFloat(spec[last+1:], 64)
	if err != nil {
		return compositor.Source{}, fmt.Errorf("opacity: %w", err)
	}
	rest := spec[:last]

	mid := strings.LastIndex(rest, ":")
	if mid < 0 {
		return compositor.Source{}, fmt.Errorf("want ref:#rrggbb:opacity")
	}
	col, err := colorutil.ParseHex(rest[mid+1:])
	if err != nil {
		return compositor.Source{}, fmt.Errorf("color: %w", err)
	}

	return compositor.Source{Ref: rest[:mid], Color: col, Opacity: opacity}, nil
}
