package palette

import (
	"testing"

	"github.com/kiesman99/backdrop/pkg/tile"
)

func TestPresets(t *testing.T) {
	all := Presets()
	if len(all) != 20 {
		t.Fatalf("Expected 20 presets, got %d", len(all))
	}
	for _, p := range all {
		if _, err := tile.ParseColor(p.Color); err != nil {
			t.Errorf("Preset %s has invalid color %s: %v", p.Name, p.Color, err)
		}
	}

	all[0].Color = "#000000"
	if Presets()[0].Color != "#b8d4a0" {
		t.Error("Expected Presets to return a copy")
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"Sage Green", "sage-green", "SAGE_GREEN", "sagegreen"} {
		p, ok := Lookup(name)
		if !ok || p.Color != "#b8d4a0" {
			t.Errorf("Lookup(%q) = %v, %v", name, p, ok)
		}
	}
	if _, ok := Lookup("chartreuse explosion"); ok {
		t.Error("Expected unknown preset to be missing")
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod("kmeans"); err != nil || m != MethodKMeans {
		t.Errorf("Expected kmeans, got %v, %v", m, err)
	}
	if m, err := ParseMethod(""); err != nil || m != MethodDominantColor {
		t.Errorf("Expected dominantcolor default, got %v, %v", m, err)
	}
	if _, err := ParseMethod("median-cut"); err == nil {
		t.Error("Expected error for unknown method")
	}
}

// halves is a source whose left half is a and right half is b.
func halves(a, b tile.RGB) *tile.SourceImage {
	const w, h = 32, 32
	img := &tile.SourceImage{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := a
			if x >= w/2 {
				c = b
			}
			i := (y*w + x) * 4
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 255
		}
	}
	return img
}

func TestSuggest(t *testing.T) {
	src := halves(tile.RGB{R: 200, G: 30, B: 30}, tile.RGB{R: 20, G: 40, B: 200})

	for _, method := range []Method{MethodDominantColor, MethodKMeans} {
		t.Run(method.String(), func(t *testing.T) {
			s, err := Suggest([]*tile.SourceImage{src}, 2, method)
			if err != nil {
				t.Fatalf("Suggest failed: %v", err)
			}
			if len(s.Swatches) == 0 || len(s.Swatches) > 2 {
				t.Fatalf("Expected 1-2 swatches, got %d", len(s.Swatches))
			}
			for i := 1; i < len(s.Swatches); i++ {
				if tile.Brightness(s.Swatches[i-1].Color) > tile.Brightness(s.Swatches[i].Color) {
					t.Errorf("Swatches not sorted by brightness: %v", s.Swatches)
				}
			}
			if tile.Brightness(s.Background) <= float64(tile.DefaultMinBrightness) {
				t.Errorf("Expected a light background, got %v", s.Background)
			}
		})
	}
}

func TestSuggest_NoOpaquePixels(t *testing.T) {
	empty := &tile.SourceImage{Width: 4, Height: 4, Pix: make([]byte, 64)}
	if _, err := Suggest([]*tile.SourceImage{empty}, 3, MethodDominantColor); err == nil {
		t.Error("Expected error for transparent sources")
	}
	if _, err := Suggest(nil, 0, MethodKMeans); err == nil {
		t.Error("Expected error for non-positive palette size")
	}
}
