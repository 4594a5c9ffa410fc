package tile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Tint derivation defaults
const (
	DefaultDarkness      = 0.15
	DefaultMinBrightness = 80
)

// FallbackColor is used whenever a color string cannot be parsed (cornflower blue).
var FallbackColor = RGB{R: 100, G: 149, B: 237}

var (
	hexPattern = regexp.MustCompile(`^#?([0-9a-f]{6}|[0-9a-f]{3})$`)
	rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	hslPattern = regexp.MustCompile(`^hsl\(\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)%\s*,\s*(\d+(?:\.\d+)?)%\s*\)$`)
)

// ParseColor parses hex, rgb() and hsl() notations.
// On failure it returns FallbackColor together with a *ParseColorError.
func ParseColor(s string) (RGB, error) {
	in := strings.ToLower(strings.TrimSpace(s))

	if m := hexPattern.FindStringSubmatch(in); m != nil {
		c, err := colorful.Hex("#" + m[1])
		if err == nil {
			r, g, b := c.RGB255()
			return RGB{R: r, G: g, B: b}, nil
		}
	}

	if m := rgbPattern.FindStringSubmatch(in); m != nil {
		var ch [3]uint8
		ok := true
		for i := range ch {
			v, err := strconv.Atoi(m[i+1])
			if err != nil || v > 255 {
				ok = false
				break
			}
			ch[i] = uint8(v)
		}
		if ok {
			return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
		}
	}

	if m := hslPattern.FindStringSubmatch(in); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		if sat <= 100 && l <= 100 {
			c := colorful.Hsl(math.Mod(h, 360), sat/100, l/100).Clamped()
			r, g, b := c.RGB255()
			return RGB{R: r, G: g, B: b}, nil
		}
	}

	return FallbackColor, &ParseColorError{Input: s}
}

// Brightness returns the perceptual luma of c on a 0-255 scale.
func Brightness(c RGB) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// DeriveTint computes the silhouette color for a background with the default parameters.
func DeriveTint(bg RGB) RGB {
	return DeriveTintWith(bg, DefaultDarkness, DefaultMinBrightness)
}

// DeriveTintWith darkens bright backgrounds (never below floor) and brightens
// dark ones so that tiles stay distinguishable from the background.
func DeriveTintWith(bg RGB, darkness float64, floor uint8) RGB {
	if Brightness(bg) > float64(floor) {
		darken := func(c uint8) uint8 {
			v := math.Round(float64(c) * (1 - darkness))
			return uint8(math.Min(255, math.Max(float64(floor), v)))
		}
		return RGB{R: darken(bg.R), G: darken(bg.G), B: darken(bg.B)}
	}

	brighten := func(c uint8) uint8 {
		return uint8(min(255, int(c)+80))
	}
	return RGB{R: brighten(bg.R), G: brighten(bg.G), B: brighten(bg.B)}
}
