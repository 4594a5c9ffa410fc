package tile

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// Output canvas dimensions shared by the preview and export buffers
const (
	CanvasWidth  = 2560
	CanvasHeight = 1440
)

// Layout limits. A tile may span the whole canvas a few times over but no
// more, and the grid stays far below a pixel per cell.
const (
	MaxGridSize       = 200
	MaxTilePixelScale = 8192
)

// RGB is an opaque color. Tints and backgrounds never carry alpha.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SourceImage holds a decoded source raster
type SourceImage struct {
	URL    string
	Width  int
	Height int
	Pix    []byte // non-premultiplied RGBA, row-major
}

// Silhouette is a tint-colored, binary-alpha rendition of a SourceImage
type Silhouette struct {
	Width  int
	Height int
	Pix    []byte
	// Solid is set when no shape could be found and the whole image was filled.
	Solid bool
}

// NRGBA exposes the silhouette pixels as an image without copying.
func (s *Silhouette) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: s.Width * 4,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

// Empty reports whether the silhouette has no drawable area.
func (s *Silhouette) Empty() bool {
	return s == nil || s.Width <= 0 || s.Height <= 0
}

// EmbossParams controls the edge lighting applied after tinting
type EmbossParams struct {
	Intensity float64 // 0-100
	Direction float64 // degrees
	Depth     float64 // neighbor radius, floored
}

// LayoutConfig contains all parameters of one render pass
type LayoutConfig struct {
	BackgroundColor  string
	GridSize         int
	Density          float64
	TilePixelScale   float64
	Spacing          float64
	RowOffsetPercent float64
	EmbossIntensity  float64
	EmbossDirection  float64
	EmbossDepth      float64
	ImageURLs        []string
}

// DefaultLayout returns the settings a fresh session starts with.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		BackgroundColor:  "#b8d4a0",
		GridSize:         7,
		Density:          100,
		TilePixelScale:   120,
		Spacing:          20,
		RowOffsetPercent: 50,
		EmbossIntensity:  30,
		EmbossDirection:  225,
		EmbossDepth:      1,
	}
}

// Emboss returns the emboss portion of the layout.
func (c LayoutConfig) Emboss() EmbossParams {
	return EmbossParams{
		Intensity: c.EmbossIntensity,
		Direction: c.EmbossDirection,
		Depth:     c.EmbossDepth,
	}
}

// Normalize wraps the emboss direction into [0,360).
func (c LayoutConfig) Normalize() LayoutConfig {
	d := math.Mod(c.EmbossDirection, 360)
	if d < 0 {
		d += 360
	}
	c.EmbossDirection = d
	return c
}

// Validate checks every field and reports all violations at once.
func (c LayoutConfig) Validate() error {
	var errs []error

	if c.GridSize < 1 || c.GridSize > MaxGridSize {
		errs = append(errs, fmt.Errorf("grid size must be between 1 and %d, got %d", MaxGridSize, c.GridSize))
	}
	if !inRange(c.Density, 0, 100) {
		errs = append(errs, fmt.Errorf("density must be between 0 and 100, got %g", c.Density))
	}
	if !(c.TilePixelScale > 0 && c.TilePixelScale <= MaxTilePixelScale) {
		errs = append(errs, fmt.Errorf("tile pixel scale must be in (0, %d], got %g", MaxTilePixelScale, c.TilePixelScale))
	}
	if !(c.Spacing >= 0) || math.IsInf(c.Spacing, 0) {
		errs = append(errs, fmt.Errorf("spacing must be a finite non-negative number, got %g", c.Spacing))
	}
	if !inRange(c.RowOffsetPercent, 0, 100) {
		errs = append(errs, fmt.Errorf("row offset must be between 0 and 100, got %g", c.RowOffsetPercent))
	}
	if !inRange(c.EmbossIntensity, 0, 100) {
		errs = append(errs, fmt.Errorf("emboss intensity must be between 0 and 100, got %g", c.EmbossIntensity))
	}
	if math.IsNaN(c.EmbossDirection) || math.IsInf(c.EmbossDirection, 0) {
		errs = append(errs, fmt.Errorf("emboss direction must be a finite angle"))
	}
	if !inRange(c.EmbossDepth, 0, 10) {
		errs = append(errs, fmt.Errorf("emboss depth must be between 0 and 10, got %g", c.EmbossDepth))
	}
	for i, u := range c.ImageURLs {
		if strings.TrimSpace(u) == "" {
			errs = append(errs, fmt.Errorf("image url %d is empty", i))
		}
	}

	return errors.Join(errs...)
}

// inRange is false for NaN
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// LoadError reports a source image that could not be fetched or decoded
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseColorError reports a color string that could not be understood
type ParseColorError struct {
	Input string
}

func (e *ParseColorError) Error() string {
	return fmt.Sprintf("unable to parse color %q", e.Input)
}
