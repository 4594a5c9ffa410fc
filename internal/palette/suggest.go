package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"github.com/kiesman99/backdrop/pkg/tile"
)

// Method selects the palette extraction algorithm
type Method int

const (
	MethodDominantColor Method = iota
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParseMethod accepts "dominantcolor" (or "dominant") and "kmeans"
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "dominant", "dominantcolor":
		return MethodDominantColor, nil
	case "kmeans":
		return MethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

// Swatch is a suggested color with its share of the sampled pixels
type Swatch struct {
	Color  tile.RGB
	Weight float64
}

// Suggestion is the outcome of Suggest
type Suggestion struct {
	Swatches []Swatch
	// Background is a pastel built from the weighted mean of the swatches.
	Background tile.RGB
}

// Suggest extracts k diverse colors from the opaque pixels of the sources
// and derives a background color from them.
func Suggest(sources []*tile.SourceImage, k int, method Method) (*Suggestion, error) {
	if k <= 0 {
		return nil, fmt.Errorf("palette size must be positive, got %d", k)
	}

	img := mosaic(sources)
	if img == nil {
		return nil, fmt.Errorf("no opaque pixels to sample")
	}

	var cands []Swatch
	if method == MethodKMeans {
		cands = kmeansCandidates(img, k)
	}
	if len(cands) == 0 {
		cands = dominantCandidates(img, k)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("no colors found")
	}

	swatches := selectDiverse(cands, k)
	sortByBrightness(swatches)

	return &Suggestion{
		Swatches:   swatches,
		Background: background(swatches),
	}, nil
}

// mosaic packs the opaque pixels of every source into a square image,
// repeating pixels to fill the last row.
func mosaic(sources []*tile.SourceImage) *image.NRGBA {
	var opaque []byte
	for _, src := range sources {
		for i := 0; i+3 < len(src.Pix); i += 4 {
			if src.Pix[i+3] > 10 {
				opaque = append(opaque, src.Pix[i], src.Pix[i+1], src.Pix[i+2], 255)
			}
		}
	}
	n := len(opaque) / 4
	if n == 0 {
		return nil
	}

	side := int(math.Ceil(math.Sqrt(float64(n))))
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < side*side; i++ {
		j := (i % n) * 4
		copy(img.Pix[i*4:i*4+4], opaque[j:j+4])
	}
	return img
}

func dominantCandidates(img image.Image, k int) []Swatch {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	out := make([]Swatch, 0, len(found))
	for _, c := range found {
		out = append(out, Swatch{
			Color:  tile.RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B},
			Weight: math.Max(c.Weight, 1e-6),
		})
	}
	return out
}

func kmeansCandidates(img *image.NRGBA, k int) []Swatch {
	const maxSamples = 12000
	n := len(img.Pix) / 4
	step := 1
	if n > maxSamples {
		step = n/maxSamples + 1
	}

	dataset := make(clusters.Observations, 0, min(n, maxSamples))
	for i := 0; i < n; i += step {
		p := img.Pix[i*4 : i*4+3]
		dataset = append(dataset, clusters.Coordinates{
			float64(p[0]) / 255,
			float64(p[1]) / 255,
			float64(p[2]) / 255,
		})
	}

	workK := min(max(k*4, k+2), len(dataset))
	if workK <= 0 {
		return nil
	}
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil {
		return nil
	}

	out := make([]Swatch, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := col.RGB255()
		out = append(out, Swatch{Color: tile.RGB{R: r, G: g, B: b}, Weight: float64(len(c.Observations))})
	}
	return out
}

// selectDiverse greedily picks colors far apart in Lab space, seeded by the
// heaviest candidate and biased toward well represented colors.
func selectDiverse(cands []Swatch, k int) []Swatch {
	k = min(k, len(cands))
	maxW := 0.0
	labs := make([]colorful.Color, len(cands))
	for i, c := range cands {
		labs[i] = toColorful(c.Color)
		maxW = math.Max(maxW, c.Weight)
	}

	seed := 0
	for i := range cands {
		if cands[i].Weight > cands[seed].Weight {
			seed = i
		}
	}

	selected := []int{seed}
	taken := map[int]bool{seed: true}
	for len(selected) < k {
		best, bestScore := -1, -1.0
		for i := range cands {
			if taken[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range selected {
				minD = math.Min(minD, labs[i].DistanceLab(labs[s]))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(cands[i].Weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		taken[best] = true
		selected = append(selected, best)
	}

	out := make([]Swatch, 0, len(selected))
	for _, i := range selected {
		out = append(out, cands[i])
	}
	return out
}

func sortByBrightness(s []Swatch) {
	slices.SortStableFunc(s, func(a, b Swatch) int {
		ya, yb := tile.Brightness(a.Color), tile.Brightness(b.Color)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

// background lightens the weighted mean swatch toward a pastel so that the
// derived tint darkens it rather than brightening it.
func background(swatches []Swatch) tile.RGB {
	r := make([]float64, len(swatches))
	g := make([]float64, len(swatches))
	b := make([]float64, len(swatches))
	w := make([]float64, len(swatches))
	for i, s := range swatches {
		r[i], g[i], b[i], w[i] = float64(s.Color.R)/255, float64(s.Color.G)/255, float64(s.Color.B)/255, s.Weight
	}

	mean := colorful.Color{R: stat.Mean(r, w), G: stat.Mean(g, w), B: stat.Mean(b, w)}.Clamped()
	h, c, l := mean.Hcl()
	pastel := colorful.Hcl(h, math.Min(c, 0.25), math.Max(l, 0.82)).Clamped()

	pr, pg, pb := pastel.RGB255()
	return tile.RGB{R: pr, G: pg, B: pb}
}

func toColorful(c tile.RGB) colorful.Color {
	col, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return col
}
