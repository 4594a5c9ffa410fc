package tile

import (
	"bytes"
	"testing"
)

// newSource builds a w×h source where fill decides every pixel.
func newSource(w, h int, fill func(x, y int) [4]byte) *SourceImage {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := fill(x, y)
			copy(pix[(y*w+x)*4:], p[:])
		}
	}
	return &SourceImage{URL: "test", Width: w, Height: h, Pix: pix}
}

// disc is opaque inside a centered circle of radius r and transparent outside.
func disc(w, h, r int) *SourceImage {
	cx, cy := w/2, h/2
	return newSource(w, h, func(x, y int) [4]byte {
		dx, dy := x-cx, y-cy
		if dx*dx+dy*dy <= r*r {
			return [4]byte{10, 20, 30, 255}
		}
		return [4]byte{}
	})
}

func countOpaque(s *Silhouette) int {
	n := 0
	for i := 3; i < len(s.Pix); i += 4 {
		if s.Pix[i] == 255 {
			n++
		}
	}
	return n
}

func TestExtract_AlphaThreshold(t *testing.T) {
	src := newSource(16, 16, func(x, y int) [4]byte {
		switch {
		case x < 4:
			return [4]byte{255, 255, 255, 200}
		case x < 8:
			return [4]byte{0, 0, 0, 11}
		case x < 12:
			return [4]byte{0, 0, 0, 10}
		default:
			return [4]byte{}
		}
	})
	tint := RGB{156, 180, 136}

	sil := Extract(src, tint, EmbossParams{})

	if sil.Solid {
		t.Fatal("Expected alpha pass to find shape pixels")
	}
	if got, want := countOpaque(sil), 8*16; got != want {
		t.Errorf("Expected %d opaque pixels, got %d", want, got)
	}

	for i := 0; i < len(sil.Pix); i += 4 {
		p := sil.Pix[i : i+4]
		if p[3] == 255 {
			if p[0] != tint.R || p[1] != tint.G || p[2] != tint.B {
				t.Fatalf("Shape pixel %v is not tint colored", p)
			}
		} else if p[0] != 0 || p[1] != 0 || p[2] != 0 || p[3] != 0 {
			t.Fatalf("Background pixel %v is not fully transparent", p)
		}
	}
}

func TestExtract_OpaqueCountMatchesSource(t *testing.T) {
	src := disc(40, 30, 12)
	want := 0
	for i := 3; i < len(src.Pix); i += 4 {
		if src.Pix[i] > 10 {
			want++
		}
	}

	sil := Extract(src, RGB{1, 2, 3}, EmbossParams{})
	if got := countOpaque(sil); got != want {
		t.Errorf("Expected %d opaque pixels, got %d", want, got)
	}
	if sil.Width != 40 || sil.Height != 30 {
		t.Errorf("Expected 40x30 silhouette, got %dx%d", sil.Width, sil.Height)
	}
}

func TestShapeByBrightness_DarkOnOpaqueField(t *testing.T) {
	src := newSource(10, 10, func(x, y int) [4]byte {
		if x >= 3 && x < 7 {
			return [4]byte{20, 20, 20, 255}
		}
		return [4]byte{250, 250, 250, 255}
	})

	mask, found := shapeByBrightness(src)
	if !found {
		t.Fatal("Expected dark pixels to be found")
	}

	n := 0
	for i, shape := range mask {
		if shape {
			n++
			if x := i % 10; x < 3 || x >= 7 {
				t.Errorf("Bright pixel at x=%d marked as shape", x)
			}
		}
	}
	if n != 40 {
		t.Errorf("Expected 40 shape pixels, got %d", n)
	}
}

func TestShapeByBrightness_IgnoresTranslucent(t *testing.T) {
	src := newSource(4, 4, func(x, y int) [4]byte {
		return [4]byte{0, 0, 0, 50}
	})
	if _, found := shapeByBrightness(src); found {
		t.Error("Expected pixels with alpha <= 50 to be ignored")
	}
}

func TestExtract_FaintAlphaFallsThrough(t *testing.T) {
	// Every alpha is <= 10, so neither pass can find a shape.
	src := newSource(10, 10, func(x, y int) [4]byte {
		if x >= 3 && x < 7 {
			return [4]byte{20, 20, 20, 8}
		}
		return [4]byte{250, 250, 250, 8}
	})
	sil := Extract(src, RGB{9, 9, 9}, EmbossParams{})
	if !sil.Solid || countOpaque(sil) != 100 {
		t.Errorf("Expected solid 100 pixel silhouette, got %d (solid=%v)", countOpaque(sil), sil.Solid)
	}
}

func TestExtract_UltimateFallback(t *testing.T) {
	src := newSource(12, 9, func(x, y int) [4]byte {
		return [4]byte{255, 255, 255, 0}
	})
	tint := RGB{100, 110, 120}

	sil := Extract(src, tint, EmbossParams{Intensity: 100, Direction: 45, Depth: 3})

	if !sil.Solid {
		t.Fatal("Expected solid fallback")
	}
	if got := countOpaque(sil); got != 12*9 {
		t.Fatalf("Expected full coverage of %d pixels, got %d", 12*9, got)
	}
	for i := 0; i < len(sil.Pix); i += 4 {
		if sil.Pix[i] != tint.R || sil.Pix[i+1] != tint.G || sil.Pix[i+2] != tint.B {
			t.Fatalf("Expected untouched tint at %d, got %v", i/4, sil.Pix[i:i+4])
		}
	}
}

func TestExtract_ZeroSize(t *testing.T) {
	sil := Extract(&SourceImage{}, RGB{1, 2, 3}, EmbossParams{Intensity: 50, Depth: 1})
	if !sil.Empty() {
		t.Errorf("Expected empty silhouette, got %dx%d", sil.Width, sil.Height)
	}
}

func TestEmboss_ZeroIntensityIsIdentity(t *testing.T) {
	src := disc(32, 32, 10)
	tint := RGB{156, 180, 136}

	plain := Extract(src, tint, EmbossParams{})
	zero := Extract(src, tint, EmbossParams{Intensity: 0, Direction: 225, Depth: 4})

	if !bytes.Equal(plain.Pix, zero.Pix) {
		t.Error("Expected zero intensity emboss to leave pixels byte-identical")
	}
}

func TestEmboss_ChangesOnlyEdges(t *testing.T) {
	src := disc(32, 32, 10)
	tint := RGB{156, 180, 136}

	plain := Extract(src, tint, EmbossParams{})
	lit := Extract(src, tint, EmbossParams{Intensity: 100, Direction: 225, Depth: 1})

	changed := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			i := (y*32 + x) * 4
			if plain.Pix[i+3] != lit.Pix[i+3] {
				t.Fatalf("Alpha changed at %d,%d", x, y)
			}
			if bytes.Equal(plain.Pix[i:i+4], lit.Pix[i:i+4]) {
				continue
			}
			changed++

			// Every changed pixel must touch the background within radius 1.
			touches := false
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					j := ((y+dy)*32 + x + dx) * 4
					if plain.Pix[j+3] == 0 {
						touches = true
					}
				}
			}
			if !touches {
				t.Fatalf("Interior pixel %d,%d was shaded", x, y)
			}
		}
	}
	if changed == 0 {
		t.Error("Expected emboss to shade some edge pixels")
	}

	// The center is interior and must keep the tint.
	c := (16*32 + 16) * 4
	if lit.Pix[c] != tint.R || lit.Pix[c+1] != tint.G || lit.Pix[c+2] != tint.B {
		t.Errorf("Expected interior pixel to keep tint, got %v", lit.Pix[c:c+4])
	}
}

func TestEmboss_LightDirection(t *testing.T) {
	// A horizontal band: the top edge has background above (dy = -1), so its
	// normal points down (+y). Light at 90 degrees is (0, 1) and brightens it.
	src := newSource(9, 9, func(x, y int) [4]byte {
		if y >= 3 && y <= 5 {
			return [4]byte{0, 0, 0, 255}
		}
		return [4]byte{}
	})
	tint := RGB{100, 100, 100}

	sil := Extract(src, tint, EmbossParams{Intensity: 100, Direction: 90, Depth: 1})

	top := (3*9 + 4) * 4
	bottom := (5*9 + 4) * 4
	// factor = 1 * 1.0 * 0.4 -> 140, and -0.4 -> 60
	if got := sil.Pix[top]; got != 140 {
		t.Errorf("Expected top edge 140, got %d", got)
	}
	if got := sil.Pix[bottom]; got != 60 {
		t.Errorf("Expected bottom edge 60, got %d", got)
	}
	middle := (4*9 + 4) * 4
	if got := sil.Pix[middle]; got != 100 {
		t.Errorf("Expected middle row untouched, got %d", got)
	}
}

func TestEmboss_BorderPixelsSkipped(t *testing.T) {
	src := newSource(6, 6, func(x, y int) [4]byte {
		if x == 0 || x == 5 {
			return [4]byte{}
		}
		return [4]byte{0, 0, 0, 255}
	})
	tint := RGB{100, 100, 100}
	sil := Extract(src, tint, EmbossParams{Intensity: 100, Direction: 0, Depth: 1})

	for x := 1; x < 5; x++ {
		for _, y := range []int{0, 5} {
			i := (y*6 + x) * 4
			if sil.Pix[i] != 100 {
				t.Errorf("Expected border pixel %d,%d untouched, got %d", x, y, sil.Pix[i])
			}
		}
	}
}

func TestEmboss_ClampRange(t *testing.T) {
	tints := []RGB{{80, 80, 80}, {255, 255, 255}, {30, 200, 90}}
	for _, tint := range tints {
		for _, depth := range []float64{0.5, 1, 2.7, 10} {
			for dir := 0.0; dir < 360; dir += 45 {
				sil := Extract(disc(24, 24, 7), tint, EmbossParams{Intensity: 100, Direction: dir, Depth: depth})
				for i := 0; i < len(sil.Pix); i += 4 {
					if sil.Pix[i+3] != 255 {
						continue
					}
					for c := 0; c < 3; c++ {
						if v := sil.Pix[i+c]; v < 20 {
							t.Fatalf("Channel below clamp: %d (tint %v, depth %g, dir %g)", v, tint, depth, dir)
						}
					}
				}
			}
		}
	}
}
