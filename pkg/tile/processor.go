package tile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultUserAgent is sent with every remote image request
const DefaultUserAgent = "backdrop/1.0.0"

// maxSourceBytes caps a single source download
const maxSourceBytes = 32 << 20

// MaxSourcePixels caps the declared size of a source image before it is
// decoded (128 MiB as NRGBA).
const MaxSourcePixels = 32 << 20

// ErrTooLarge is returned for images whose declared size exceeds the budget
var ErrTooLarge = errors.New("image dimensions exceed the pixel budget")

// Processor handles source image fetching and decoding
type Processor struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	maxPixels int
}

// NewProcessor creates a new source image processor
func NewProcessor(userAgent string, headers map[string]string) *Processor {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Processor{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
		headers:   headers,
		maxPixels: MaxSourcePixels,
	}
}

// Load fetches and decodes a source image. Any failure is a *LoadError.
func (p *Processor) Load(ctx context.Context, src string) (*SourceImage, error) {
	data, err := p.Fetch(ctx, src)
	if err != nil {
		return nil, &LoadError{URL: src, Err: err}
	}

	img, err := DecodeLimit(data, p.maxPixels)
	if err != nil {
		return nil, &LoadError{URL: src, Err: fmt.Errorf("decode: %w", err)}
	}
	img.URL = src

	return img, nil
}

// Fetch reads the raw bytes behind an http(s) URL, a file URL or a local path
func (p *Processor) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return p.download(ctx, src)
		case "file":
			return os.ReadFile(u.Path)
		}
	}

	return os.ReadFile(src)
}

func (p *Processor) download(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", p.userAgent)
	for key, value := range p.headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
}

// Decode detects the image format and converts it to non-premultiplied RGBA.
// Images larger than MaxSourcePixels are rejected with ErrTooLarge.
func Decode(data []byte) (*SourceImage, error) {
	return DecodeLimit(data, MaxSourcePixels)
}

// DecodeLimit is Decode with a custom pixel budget. The header is checked
// before any pixel memory is allocated.
func DecodeLimit(data []byte, maxPixels int) (*SourceImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width < 0 || cfg.Height < 0 || (cfg.Height > 0 && cfg.Width > maxPixels/cfg.Height) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return FromImage(img), nil
}

// FromImage copies any image into a SourceImage
func FromImage(img image.Image) *SourceImage {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	return &SourceImage{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    nrgba.Pix,
	}
}

// HasContent reports whether any pixel of img is not fully transparent
func HasContent(img *image.RGBA) bool {
	if img == nil {
		return false
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			return true
		}
	}
	return false
}

// EncodePNG encodes the buffer as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var output bytes.Buffer
	if err := png.Encode(&output, img); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// WritePNG writes PNG output to filename, or stdout when filename is empty
func WritePNG(filename string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}

	if filename == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	return os.WriteFile(filename, data, 0o644)
}

// Filename builds the default export name, e.g. tiled-background-2024-05-01T10-20-30.png
func Filename(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "tiled-background"
	}
	stamp := strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04:05"), ":", "-")
	return prefix + "-" + stamp + ".png"
}
