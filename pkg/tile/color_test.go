package tile

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  RGB
	}{
		{"hex", "#b8d4a0", RGB{184, 212, 160}},
		{"hex without hash", "b8d4a0", RGB{184, 212, 160}},
		{"hex upper case", "#B8D4A0", RGB{184, 212, 160}},
		{"short hex", "#fff", RGB{255, 255, 255}},
		{"rgb", "rgb(156, 180, 136)", RGB{156, 180, 136}},
		{"rgb tight", "RGB(1,2,3)", RGB{1, 2, 3}},
		{"hsl red", "hsl(0, 100%, 50%)", RGB{255, 0, 0}},
		{"hsl gray", "hsl(200, 0%, 50%)", RGB{128, 128, 128}},
		{"padded", "  #000000 ", RGB{0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseColor(tc.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseColor_Fallback(t *testing.T) {
	for _, input := range []string{"", "banana", "#12345", "rgb(300, 0, 0)", "hsl(10, 120%, 50%)"} {
		got, err := ParseColor(input)
		if got != FallbackColor {
			t.Errorf("%q: expected fallback color, got %v", input, got)
		}
		var pce *ParseColorError
		if !errors.As(err, &pce) {
			t.Errorf("%q: expected *ParseColorError, got %v", input, err)
		}
	}
}

func TestDeriveTint(t *testing.T) {
	testCases := []struct {
		name string
		bg   RGB
		want RGB
	}{
		{"sage green darkens", RGB{184, 212, 160}, RGB{156, 180, 136}},
		{"white darkens", RGB{255, 255, 255}, RGB{217, 217, 217}},
		{"dark background brightens", RGB{47, 79, 79}, RGB{127, 159, 159}},
		{"black brightens", RGB{0, 0, 0}, RGB{80, 80, 80}},
		{"saturated channel floored", RGB{255, 40, 40}, RGB{217, 80, 80}},
		{"bright channel capped", RGB{230, 10, 10}, RGB{255, 90, 90}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTint(tc.bg); got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDeriveTint_Deterministic(t *testing.T) {
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				bg := RGB{uint8(r), uint8(g), uint8(b)}
				first, second := DeriveTint(bg), DeriveTint(bg)
				if first != second {
					t.Fatalf("Tint for %v not deterministic: %v vs %v", bg, first, second)
				}
				for _, c := range []uint8{first.R, first.G, first.B} {
					if c < 20 {
						t.Fatalf("Tint channel %d for %v below 20", c, bg)
					}
				}
			}
		}
	}
}
