package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/kiesman99/backdrop/internal/compositor"
	"github.com/kiesman99/backdrop/pkg/tile"
)

var (
	// ErrEmptyPool is reported when no source image could be loaded. The pass
	// still renders the background.
	ErrEmptyPool = errors.New("no source images could be loaded")

	// ErrEmptyExport is returned when there is nothing drawable to export.
	ErrEmptyExport = errors.New("nothing to export: canvas is empty")

	// ErrSuperseded is returned by a pass that finished after a newer one started.
	ErrSuperseded = errors.New("render superseded by a newer pass")
)

// Source loads decoded images by URL or path
type Source interface {
	Load(ctx context.Context, url string) (*tile.SourceImage, error)
}

// Options configures a Renderer
type Options struct {
	Source Source
	Cache  *Cache
	Logger logrus.FieldLogger
	// Seed makes every pass reproducible. Nil draws a fresh stream per pass.
	Seed *uint64
	// Concurrency bounds parallel source loads.
	Concurrency int
	Width       int
	Height      int
}

// Result summarizes one render pass
type Result struct {
	Generation uint64
	Background tile.RGB
	Tint       tile.RGB
	Loaded     int
	Stats      compositor.Stats
	// Warnings holds the non-fatal problems of the pass: *tile.LoadError,
	// *tile.ParseColorError and ErrEmptyPool.
	Warnings []error
}

// Failed counts the sources that could not be loaded
func (r *Result) Failed() int {
	n := 0
	for _, w := range r.Warnings {
		var le *tile.LoadError
		if errors.As(w, &le) {
			n++
		}
	}
	return n
}

// Renderer runs the load, extract, compose pipeline and owns the output buffers
type Renderer struct {
	opts Options
	log  logrus.FieldLogger

	gen atomic.Uint64

	mu      sync.Mutex
	export  *image.RGBA
	preview *image.RGBA
	// keys used by the last published pass, for eviction
	urls map[string]struct{}
	keys map[string]struct{}
}

// New creates a renderer
func New(opts Options) (*Renderer, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("render: a source is required")
	}
	if opts.Cache == nil {
		c, err := NewCache(DefaultCacheBytes)
		if err != nil {
			return nil, err
		}
		opts.Cache = c
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = tile.CanvasWidth, tile.CanvasHeight
	}

	return &Renderer{
		opts: opts,
		log:  opts.Logger,
		urls: map[string]struct{}{},
		keys: map[string]struct{}{},
	}, nil
}

// Render performs a full pass. Only the most recently started pass may
// publish its buffers; older passes return ErrSuperseded.
func (r *Renderer) Render(ctx context.Context, cfg tile.LayoutConfig) (*Result, error) {
	gen := r.gen.Add(1)

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	res := &Result{Generation: gen}
	log := r.log.WithField("generation", gen)

	bg, err := tile.ParseColor(cfg.BackgroundColor)
	if err != nil {
		log.WithError(err).Warn("Using fallback background color")
		res.Warnings = append(res.Warnings, err)
	}
	res.Background = bg
	res.Tint = tile.DeriveTint(bg)

	sources := r.load(ctx, cfg.ImageURLs, res)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.gen.Load() != gen {
		return nil, ErrSuperseded
	}

	emboss := cfg.Emboss()
	silhouettes := make([]*tile.Silhouette, 0, len(sources))
	keys := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		key := silhouetteKey(src.URL, res.Tint, emboss)
		keys[key] = struct{}{}

		sil, ok := r.opts.Cache.silhouette(key)
		if !ok {
			sil = tile.Extract(src, res.Tint, emboss)
			r.opts.Cache.putSilhouette(key, sil)
		}
		silhouettes = append(silhouettes, sil)
	}
	res.Loaded = len(silhouettes)

	if len(silhouettes) == 0 {
		log.Warn("No source images loaded, rendering background only")
		res.Warnings = append(res.Warnings, ErrEmptyPool)
	}

	comp := compositor.NewRandom()
	if r.opts.Seed != nil {
		comp = compositor.NewSeeded(*r.opts.Seed)
	}

	buf := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	res.Stats, err = comp.ComposeContext(ctx, buf, silhouettes, bg, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Spacing != 0 {
		log.WithField("spacing", cfg.Spacing).Debug("Spacing does not affect the layout")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen.Load() != gen {
		return nil, ErrSuperseded
	}

	r.export = buf
	r.preview = clone(buf)
	r.evict(cfg.ImageURLs, keys)

	log.WithFields(logrus.Fields{
		"cells":   res.Stats.Cells,
		"filled":  res.Stats.Filled,
		"loaded":  res.Loaded,
		"failed":  res.Failed(),
		"tint":    res.Tint.String(),
		"density": cfg.Density,
	}).Info("Render complete")

	return res, nil
}

// load fetches every URL concurrently; results keep the URL order and
// failed URLs are left out.
func (r *Renderer) load(ctx context.Context, urls []string, res *Result) []*tile.SourceImage {
	loaded, errs := r.opts.Cache.LoadAll(ctx, r.opts.Source, urls, r.opts.Concurrency)

	out := make([]*tile.SourceImage, 0, len(urls))
	for i := range urls {
		if errs[i] != nil {
			r.log.WithError(errs[i]).WithField("url", urls[i]).Warn("Skipping source image")
			res.Warnings = append(res.Warnings, errs[i])
			continue
		}
		out = append(out, loaded[i])
	}
	return out
}

// evict drops cache entries that the previous pass used and this one did not.
// Callers hold r.mu.
func (r *Renderer) evict(urls []string, keys map[string]struct{}) {
	current := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		current[u] = struct{}{}
	}

	for u := range r.urls {
		if _, ok := current[u]; !ok {
			r.opts.Cache.dropSource(u)
		}
	}
	for k := range r.keys {
		if _, ok := keys[k]; !ok {
			r.opts.Cache.dropSilhouette(k)
		}
	}

	r.urls = current
	r.keys = keys
}

// Preview returns a copy of the preview buffer of the last completed pass
func (r *Renderer) Preview() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.preview == nil {
		return nil
	}
	return clone(r.preview)
}

// Export writes the export buffer of the last completed pass as PNG
func (r *Renderer) Export(w io.Writer) error {
	data, err := r.encode()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// ExportFile writes the last completed pass to filename. The file is not
// created when the export is refused.
func (r *Renderer) ExportFile(filename string) error {
	data, err := r.encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	r.log.WithField("file", filename).Info("Exported PNG")
	return nil
}

func (r *Renderer) encode() ([]byte, error) {
	r.mu.Lock()
	buf := r.export
	r.mu.Unlock()

	if !tile.HasContent(buf) {
		return nil, ErrEmptyExport
	}

	data, err := tile.EncodePNG(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return data, nil
}

func clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
