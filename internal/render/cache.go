package render

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/kiesman99/backdrop/pkg/tile"
)

// DefaultCacheBytes bounds the decoded sources plus silhouettes kept in memory
const DefaultCacheBytes = 512 << 20

// Cache holds decoded sources keyed by URL and silhouettes keyed by
// URL plus every parameter that affects extraction.
type Cache struct {
	sources     *ristretto.Cache[string, *tile.SourceImage]
	silhouettes *ristretto.Cache[string, *tile.Silhouette]
}

// NewCache creates a cache; half of maxBytes goes to each tier
func NewCache(maxBytes int64) (*Cache, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultCacheBytes
	}

	sources, err := ristretto.NewCache(&ristretto.Config[string, *tile.SourceImage]{
		NumCounters: 10000,
		MaxCost:     maxBytes / 2,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("source cache: %w", err)
	}

	silhouettes, err := ristretto.NewCache(&ristretto.Config[string, *tile.Silhouette]{
		NumCounters: 100000,
		MaxCost:     maxBytes / 2,
		BufferItems: 64,
	})
	if err != nil {
		sources.Close()
		return nil, fmt.Errorf("silhouette cache: %w", err)
	}

	return &Cache{sources: sources, silhouettes: silhouettes}, nil
}

// Close releases the cache goroutines
func (c *Cache) Close() {
	c.sources.Close()
	c.silhouettes.Close()
}

func (c *Cache) source(url string) (*tile.SourceImage, bool) {
	return c.sources.Get(url)
}

func (c *Cache) putSource(img *tile.SourceImage) {
	c.sources.Set(img.URL, img, int64(len(img.Pix))+1)
	c.sources.Wait()
}

func (c *Cache) dropSource(url string) {
	c.sources.Del(url)
}

func (c *Cache) silhouette(key string) (*tile.Silhouette, bool) {
	return c.silhouettes.Get(key)
}

func (c *Cache) putSilhouette(key string, sil *tile.Silhouette) {
	c.silhouettes.Set(key, sil, int64(len(sil.Pix))+1)
	c.silhouettes.Wait()
}

func (c *Cache) dropSilhouette(key string) {
	c.silhouettes.Del(key)
}

// LoadAll fetches every URL concurrently, reusing cached sources. Images
// keep the URL order; a failed URL leaves a nil image and a *tile.LoadError
// at its index.
func (c *Cache) LoadAll(ctx context.Context, src Source, urls []string, concurrency int) ([]*tile.SourceImage, []error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	loaded := make([]*tile.SourceImage, len(urls))
	errs := make([]error, len(urls))

	p := pool.New().WithMaxGoroutines(concurrency)
	for i, u := range urls {
		p.Go(func() {
			if img, ok := c.source(u); ok {
				loaded[i] = img
				return
			}

			img, err := src.Load(ctx, u)
			if err != nil {
				var le *tile.LoadError
				if !errors.As(err, &le) {
					err = &tile.LoadError{URL: u, Err: err}
				}
				errs[i] = err
				return
			}
			img.URL = u
			c.putSource(img)
			loaded[i] = img
		})
	}
	p.Wait()

	return loaded, errs
}

// silhouetteKey identifies a silhouette by source and the parameters that
// change its pixels. Emboss is skipped at zero intensity and only the integer
// part of depth is used as a radius, so those variants share an entry.
func silhouetteKey(url string, tint tile.RGB, p tile.EmbossParams) string {
	if !(p.Intensity > 0) {
		return fmt.Sprintf("%s|%s", url, tint)
	}
	return fmt.Sprintf("%s|%s|%g|%g|%g", url, tint, p.Intensity, p.Direction, math.Floor(p.Depth))
}
