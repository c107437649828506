package colorutil

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"#ff800080", color.RGBA{255, 128, 0, 128}, false},
		{"#fff", color.RGBA{}, true},
		{"not-a-color", color.RGBA{}, true},
	}
	for _, c := range cases {
		got, err := ParseHex(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseHex(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHex(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseHex(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := color.RGBA{18, 52, 86, 255}
	parsed, err := ParseHex(Hex(c))
	if err != nil {
		t.Fatal(err)
	}
	if parsed != c {
		t.Fatalf("round trip = %+v, want %+v", parsed, c)
	}
}

func TestBrighten(t *testing.T) {
	c := color.RGBA{100, 0, 200, 255}

	if got := Brighten(c, 0); got != c {
		t.Errorf("Brighten(0) should be identity, got %+v", got)
	}
	if got := Brighten(c, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Brighten(1) should be white, got %+v", got)
	}

	half := Brighten(c, 0.5)
	if half.R != 177 || half.G != 127 || half.B != 227 {
		t.Errorf("Brighten(0.5) = %+v", half)
	}
	if half.A != c.A {
		t.Errorf("Brighten must not change alpha")
	}

	// Out-of-range fractions clamp.
	if got := Brighten(c, -2); got != c {
		t.Errorf("negative fraction should clamp to identity, got %+v", got)
	}
}

func TestPaletteColorWraps(t *testing.T) {
	if PaletteColor(0) != PaletteColor(len(Palette)) {
		t.Error("palette should wrap around")
	}
	if PaletteColor(3) != Palette[3] {
		t.Error("in-range index should map directly")
	}
}
