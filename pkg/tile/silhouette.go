package tile

import "math"

// Extraction thresholds
const (
	alphaThreshold      = 10
	brightnessThreshold = 200
	brightnessMinAlpha  = 50
)

// Emboss limits
const (
	embossStrength = 0.4
	embossMinValue = 20
	embossMaxValue = 255
)

// Extract converts src into a tint-colored silhouette.
//
// Shape pixels are found by alpha first, then by darkness on an opaque field,
// and if both find nothing the whole image becomes shape. Extract never fails:
// a zero-size source yields a zero-size silhouette.
func Extract(src *SourceImage, tint RGB, emboss EmbossParams) *Silhouette {
	w, h := src.Width, src.Height
	if w <= 0 || h <= 0 || len(src.Pix) < w*h*4 {
		return &Silhouette{}
	}

	mask, found := shapeByAlpha(src)
	if !found {
		mask, found = shapeByBrightness(src)
	}

	sil := &Silhouette{
		Width:  w,
		Height: h,
		Pix:    make([]byte, w*h*4),
		Solid:  !found,
	}

	for i, shape := range mask {
		if shape || !found {
			sil.Pix[i*4] = tint.R
			sil.Pix[i*4+1] = tint.G
			sil.Pix[i*4+2] = tint.B
			sil.Pix[i*4+3] = 255
		}
	}

	if emboss.Intensity > 0 && found {
		applyEmboss(sil, tint, emboss)
	}

	return sil
}

// shapeByAlpha marks every pixel whose alpha exceeds the threshold.
func shapeByAlpha(src *SourceImage) ([]bool, bool) {
	mask := make([]bool, src.Width*src.Height)
	found := false
	for i := range mask {
		if src.Pix[i*4+3] > alphaThreshold {
			mask[i] = true
			found = true
		}
	}
	return mask, found
}

// shapeByBrightness marks dark pixels on an opaque field, for sources that
// draw their shape in ink rather than in the alpha channel.
func shapeByBrightness(src *SourceImage) ([]bool, bool) {
	mask := make([]bool, src.Width*src.Height)
	found := false
	for i := range mask {
		p := src.Pix[i*4 : i*4+4]
		brightness := float64(int(p[0])+int(p[1])+int(p[2])) / 3
		if brightness < brightnessThreshold && p[3] > brightnessMinAlpha {
			mask[i] = true
			found = true
		}
	}
	return mask, found
}

// applyEmboss shades boundary pixels by how their local background normal
// faces the light. It reads the unmodified pixels and writes into a copy.
func applyEmboss(sil *Silhouette, tint RGB, p EmbossParams) {
	w, h := sil.Width, sil.Height
	data := sil.Pix
	out := make([]byte, len(data))
	copy(out, data)

	angle := p.Direction * math.Pi / 180
	lightX, lightY := math.Cos(angle), math.Sin(angle)
	radius := int(math.Floor(p.Depth))
	factorScale := p.Intensity / 100 * embossStrength
	base := [3]float64{float64(tint.R), float64(tint.G), float64(tint.B)}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			idx := (y*w + x) * 4
			if data[idx+3] != 255 {
				continue
			}

			var nx, ny int
			edge := false
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					sx, sy := x+dx, y+dy
					if sx < 0 || sx >= w || sy < 0 || sy >= h {
						continue
					}
					if data[(sy*w+sx)*4+3] == 0 {
						edge = true
						nx -= dx
						ny -= dy
					}
				}
			}
			if !edge {
				continue
			}

			length := math.Hypot(float64(nx), float64(ny))
			if length == 0 {
				continue
			}

			dot := (float64(nx)*lightX + float64(ny)*lightY) / length
			dot = math.Max(-1, math.Min(1, dot))
			factor := dot * factorScale

			for c := 0; c < 3; c++ {
				v := math.Round(base[c] * (1 + factor))
				out[idx+c] = uint8(math.Max(embossMinValue, math.Min(embossMaxValue, v)))
			}
		}
	}

	sil.Pix = out
}
