// Package render turns engine pages into bitmaps and keeps the most recent
// bitmap per page. Bitmaps are derived state: fully recomputable, never
// persisted, invalidated whenever scale or view mode changes.
package render

import (
	"errors"
	"image"

	"github.com/rs/zerolog"

	"github.com/foliops/folio/internal/engine"
)

// Bitmap is one page's rendered image, tagged with the parameters it was
// produced under so downstream scaling stays correct on high-density
// displays.
type Bitmap struct {
	Image   image.Image
	Scale   float64
	Density float64
}

// PixelsPerUnit is the number of bitmap pixels covering one page-local
// unit.
func (b Bitmap) PixelsPerUnit() float64 {
	return b.Scale * b.Density
}

// Cache renders pages on demand and remembers the last good bitmap for
// each. A failed render never evicts a previous bitmap: the page keeps its
// stale image (or stays blank) and other pages are unaffected.
type Cache struct {
	doc     engine.Document
	log     zerolog.Logger
	bitmaps map[int]Bitmap
}

// NewCache creates a cache for doc.
func NewCache(doc engine.Document, log zerolog.Logger) *Cache {
	return &Cache{
		doc:     doc,
		log:     log.With().Str("component", "render").Logger(),
		bitmaps: make(map[int]Bitmap),
	}
}

// Render rasterizes page index at the given scale and pixel density and
// stores the result. Engine failures are logged per page and reported via
// ok=false; the caller continues with the remaining pages.
func (c *Cache) Render(index int, scale, density float64) (Bitmap, bool) {
	if cached, ok := c.bitmaps[index]; ok && cached.Scale == scale && cached.Density == density {
		return cached, true
	}

	page, err := c.doc.Page(index)
	if err != nil {
		c.log.Error().Err(err).Int("page", index).Msg("page lookup failed")
		return c.bitmaps[index], false
	}

	img, err := page.Rasterize(scale, density)
	if err != nil {
		if errors.Is(err, engine.ErrNoPixels) {
			// empty or corrupt page: keep whatever bitmap we had
			c.log.Debug().Int("page", index).Msg("engine returned no pixel data")
		} else {
			c.log.Error().Err(err).Int("page", index).Msg("render failed")
		}
		return c.bitmaps[index], false
	}

	bm := Bitmap{Image: img, Scale: scale, Density: density}
	c.bitmaps[index] = bm
	return bm, true
}

// Get returns the cached bitmap for a page without rendering.
func (c *Cache) Get(index int) (Bitmap, bool) {
	bm, ok := c.bitmaps[index]
	return bm, ok
}

// Invalidate drops the bitmap of a single page, forcing a re-render on the
// next Render call.
func (c *Cache) Invalidate(index int) {
	delete(c.bitmaps, index)
}

// InvalidateAll drops every cached bitmap.
func (c *Cache) InvalidateAll() {
	c.bitmaps = make(map[int]Bitmap)
}
