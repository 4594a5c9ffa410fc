package compositor

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/kiesman99/backdrop/pkg/tile"
	xdraw "golang.org/x/image/draw"
)

// Rand is the random source used for cell skipping and image selection.
// *rand.Rand satisfies it; tests inject deterministic implementations.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Placement describes one tile drawn onto the canvas
type Placement struct {
	Row, Col int
	// Center of the cell including the row offset, in canvas pixels.
	CenterX, CenterY float64
	Rect             image.Rectangle
	Index            int // index into the silhouette pool
}

// Stats summarizes a compositing pass
type Stats struct {
	Cells      int
	Filled     int
	Skipped    int
	Placements []Placement
}

// Compositor scatters silhouettes over a grid
type Compositor struct {
	rand Rand
}

// New creates a compositor drawing randomness from r
func New(r Rand) *Compositor {
	return &Compositor{rand: r}
}

// NewSeeded creates a compositor with a reproducible random stream
func NewSeeded(seed uint64) *Compositor {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandom creates a compositor with a freshly seeded random stream
func NewRandom() *Compositor {
	return NewSeeded(rand.Uint64())
}

// Compose overwrites dst with the background and the tiled silhouettes.
// Tiles are not clipped to their cell, only to the canvas.
func (c *Compositor) Compose(dst *image.RGBA, pool []*tile.Silhouette, bg tile.RGB, cfg tile.LayoutConfig) Stats {
	stats, _ := c.ComposeContext(context.Background(), dst, pool, bg, cfg)
	return stats
}

// ComposeContext is Compose with cancellation checked once per row. On
// cancellation dst holds a partial composite and ctx.Err() is returned.
func (c *Compositor) ComposeContext(ctx context.Context, dst *image.RGBA, pool []*tile.Silhouette, bg tile.RGB, cfg tile.LayoutConfig) (Stats, error) {
	bounds := dst.Bounds()
	fill(dst, bg)

	grid := min(max(cfg.GridSize, 1), tile.MaxGridSize)
	scale := math.Min(cfg.TilePixelScale, tile.MaxTilePixelScale)
	if !(scale > 0) {
		scale = 0
	}
	rowOffset := cfg.RowOffsetPercent
	if math.IsNaN(rowOffset) {
		rowOffset = 0
	}
	stats := Stats{Cells: grid * grid}

	cellWidth := float64(bounds.Dx()) / float64(grid)
	cellHeight := float64(bounds.Dy()) / float64(grid)

	for row := 0; row < grid; row++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for col := 0; col < grid; col++ {
			roll := c.rand.Float64() * 100
			if cfg.Density <= 0 || !(roll <= cfg.Density) || len(pool) == 0 {
				stats.Skipped++
				continue
			}

			idx := c.rand.IntN(len(pool))
			sil := pool[idx]
			if sil.Empty() {
				stats.Skipped++
				continue
			}

			offsetX := 0.0
			if row%2 == 1 {
				offsetX = cellWidth * rowOffset / 100
			}
			x := float64(col)*cellWidth + offsetX + cellWidth/2
			y := float64(row)*cellHeight + cellHeight/2

			r := drawRect(sil, x, y, scale).Add(bounds.Min)
			if r.Overlaps(bounds) {
				xdraw.NearestNeighbor.Scale(dst, r, sil.NRGBA(), image.Rect(0, 0, sil.Width, sil.Height), xdraw.Over, nil)
			}

			stats.Filled++
			stats.Placements = append(stats.Placements, Placement{
				Row:     row,
				Col:     col,
				CenterX: x,
				CenterY: y,
				Rect:    r,
				Index:   idx,
			})
		}
	}

	return stats, nil
}

// drawRect scales sil so its larger side spans scale pixels, centered on (x, y).
func drawRect(sil *tile.Silhouette, x, y, scale float64) image.Rectangle {
	w, h := float64(sil.Width), float64(sil.Height)
	k := math.Min(scale/w, scale/h)
	dw, dh := w*k, h*k

	x0, y0 := x-dw/2, y-dh/2
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+dw)),
		int(math.Round(y0+dh)),
	)
}

func fill(dst *image.RGBA, bg tile.RGB) {
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 255}), image.Point{}, xdraw.Src)
}
