package compositor

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
)

// grayRaster builds a w x h alpha raster with the given filled region.
func grayRaster(w, h int, fill image.Rectangle, value uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := fill.Min.Y; y < fill.Max.Y; y++ {
		for x := fill.Min.X; x < fill.Max.X; x++ {
			g.SetGray(x, y, color.Gray{Y: value})
		}
	}
	return g
}

func TestAlphaLaw(t *testing.T) {
	// A raster pixel with alpha=200 at categoryOpacity=0.5 composites to
	// output alpha 100.
	raster := grayRaster(8, 8, image.Rect(0, 0, 8, 8), 200)
	out := Render(8, 8, []MaskLayer{{
		Alpha:   raster,
		Color:   color.RGBA{255, 0, 0, 255},
		Opacity: 0.5,
	}})

	// Pick an interior pixel to avoid the edge outline.
	got := out.RGBAAt(4, 4)
	if got.A != 100 {
		t.Errorf("interior alpha = %d, want 100", got.A)
	}
	if got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("interior color = %+v, want pure category color", got)
	}
}

func TestZeroAlphaIsTransparent(t *testing.T) {
	raster := grayRaster(8, 8, image.Rect(2, 2, 6, 6), 255)
	out := Render(8, 8, []MaskLayer{{
		Alpha:   raster,
		Color:   color.RGBA{0, 255, 0, 255},
		Opacity: 1,
	}})

	if got := out.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("alpha=0 pixel composited to %+v, want fully transparent", got)
	}
}

func TestAlphaSaturates(t *testing.T) {
	raster := grayRaster(8, 8, image.Rect(0, 0, 8, 8), 200)
	out := Render(8, 8, []MaskLayer{{
		Alpha:   raster,
		Color:   color.RGBA{0, 0, 255, 255},
		Opacity: 3,
	}})
	if got := out.RGBAAt(4, 4); got.A != 255 {
		t.Errorf("saturated alpha = %d, want 255", got.A)
	}
}

func TestEdgeDetection(t *testing.T) {
	raster := grayRaster(10, 10, image.Rect(3, 3, 7, 7), 255)

	if !isEdge(raster, 3, 5) || !isEdge(raster, 6, 5) || !isEdge(raster, 5, 3) || !isEdge(raster, 5, 6) {
		t.Error("pixels bordering a zero-alpha 4-neighbor must be edges")
	}
	if isEdge(raster, 5, 5) {
		t.Error("interior pixel must not be an edge")
	}
	if isEdge(raster, 0, 0) {
		t.Error("zero-alpha pixel is never an edge")
	}

	// Raster border pixels with alpha are edges even without a zero
	// neighbor.
	full := grayRaster(4, 4, image.Rect(0, 0, 4, 4), 255)
	if !isEdge(full, 0, 2) || !isEdge(full, 3, 2) || !isEdge(full, 2, 0) || !isEdge(full, 2, 3) {
		t.Error("raster border pixels must be edges")
	}
	if isEdge(full, 1, 1) {
		t.Error("interior of a full raster is not an edge")
	}
}

func TestEdgeOutlineVisibleAtLowOpacity(t *testing.T) {
	raster := grayRaster(10, 10, image.Rect(3, 3, 7, 7), 255)
	out := Render(10, 10, []MaskLayer{{
		Alpha:   raster,
		Color:   color.RGBA{200, 0, 0, 255},
		Opacity: 0.1,
	}})

	interior := out.RGBAAt(5, 5)
	edge := out.RGBAAt(3, 5)
	if edge.A <= interior.A {
		t.Errorf("edge alpha %d should exceed interior alpha %d regardless of fill opacity",
			edge.A, interior.A)
	}
	// Outline is brightened toward white.
	if edge.R <= interior.R && edge.G <= interior.G {
		t.Errorf("edge %+v should be brighter than interior %+v", edge, interior)
	}
}

func TestFlashDoublesOpacity(t *testing.T) {
	raster := grayRaster(8, 8, image.Rect(0, 0, 8, 8), 100)
	base := Render(8, 8, []MaskLayer{{Alpha: raster, Color: color.RGBA{255, 0, 0, 255}, Opacity: 0.4}})
	flashed := Render(8, 8, []MaskLayer{{Alpha: raster, Color: color.RGBA{255, 0, 0, 255}, Opacity: 0.4, Flash: true}})

	b := base.RGBAAt(4, 4).A
	f := flashed.RGBAAt(4, 4).A
	if f != 2*b {
		t.Errorf("flashed alpha = %d, want %d", f, 2*b)
	}
}

func TestLaterMasksDrawOverEarlier(t *testing.T) {
	full := image.Rect(0, 0, 8, 8)
	red := MaskLayer{Alpha: grayRaster(8, 8, full, 255), Color: color.RGBA{255, 0, 0, 255}, Opacity: 1}
	green := MaskLayer{Alpha: grayRaster(8, 8, full, 255), Color: color.RGBA{0, 255, 0, 255}, Opacity: 1}

	out := Render(8, 8, []MaskLayer{red, green})
	got := out.RGBAAt(4, 4)
	if got.G != 255 || got.R != 0 {
		t.Errorf("later mask must win at full opacity, got %+v", got)
	}
}

func TestRenderDegenerateSize(t *testing.T) {
	out := Render(0, 0, nil)
	if out == nil {
		t.Fatal("Render must always return an image")
	}
}

func TestLoaderDiscardsSupersededGeneration(t *testing.T) {
	release := make(chan struct{})
	l := &Loader{Fetch: func(ref string) (image.Image, error) {
		if ref == "slow" {
			<-release
		}
		return grayRaster(4, 4, image.Rect(0, 0, 4, 4), 255), nil
	}}

	var mu sync.Mutex
	var results []int
	done := make(chan struct{}, 2)

	l.Begin([]Source{{Ref: "slow", Opacity: 1}}, 4, 4, func(layers []MaskLayer) {
		mu.Lock()
		results = append(results, 1)
		mu.Unlock()
		done <- struct{}{}
	})
	l.Begin([]Source{{Ref: "fast", Opacity: 1}}, 4, 4, func(layers []MaskLayer) {
		mu.Lock()
		results = append(results, 2)
		mu.Unlock()
		done <- struct{}{}
	})

	<-done         // newer load completes
	close(release) // stale load finishes afterwards

	mu.Lock()
	got := append([]int(nil), results...)
	mu.Unlock()
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("results = %v, want only the newer generation", got)
	}
}

func TestLoaderSkipsFailedDecodes(t *testing.T) {
	l := &Loader{Fetch: func(ref string) (image.Image, error) {
		if ref == "bad" {
			return nil, image.ErrFormat
		}
		return grayRaster(4, 4, image.Rect(0, 0, 4, 4), 255), nil
	}}

	ch := make(chan []MaskLayer, 1)
	l.Begin([]Source{{Ref: "bad"}, {Ref: "good", Opacity: 1}}, 4, 4, func(layers []MaskLayer) {
		ch <- layers
	})
	layers := <-ch
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want the failed raster treated as no mask", len(layers))
	}
}

func TestStats(t *testing.T) {
	// 4 of 16 pixels covered at alpha 200; the filled block spans
	// x,y in [1,3) so its centroid sits at (1.5, 1.5).
	raster := grayRaster(4, 4, image.Rect(1, 1, 3, 3), 200)
	s := Stats(MaskLayer{Alpha: raster})

	if math.Abs(s.Coverage-0.25) > 1e-9 {
		t.Errorf("coverage = %v, want 0.25", s.Coverage)
	}
	if math.Abs(s.MeanAlpha-200) > 1e-9 {
		t.Errorf("mean alpha = %v, want 200", s.MeanAlpha)
	}
	if math.Abs(s.CentroidX-1.5) > 1e-9 || math.Abs(s.CentroidY-1.5) > 1e-9 {
		t.Errorf("centroid = (%v,%v), want (1.5,1.5)", s.CentroidX, s.CentroidY)
	}

	if empty := Stats(MaskLayer{}); empty != (MaskStats{}) {
		t.Errorf("nil raster stats = %+v, want zero", empty)
	}
}
