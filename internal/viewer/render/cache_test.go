package render

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliops/folio/internal/engine/enginetest"
)

func TestCache_Render_caches_per_parameters(t *testing.T) {
	page := enginetest.NewPage(100, 200)
	doc := enginetest.NewDoc("test.pdf", page)
	c := NewCache(doc, zerolog.Nop())

	bm, ok := c.Render(0, 1.0, 2.0)
	require.True(t, ok)
	assert.Equal(t, 1.0, bm.Scale)
	assert.Equal(t, 2.0, bm.Density)
	assert.Equal(t, 2.0, bm.PixelsPerUnit())
	assert.Equal(t, 1, page.Renders)

	// same parameters: served from cache
	_, ok = c.Render(0, 1.0, 2.0)
	require.True(t, ok)
	assert.Equal(t, 1, page.Renders)

	// scale change: re-rendered
	_, ok = c.Render(0, 1.2, 2.0)
	require.True(t, ok)
	assert.Equal(t, 2, page.Renders)
}

func TestCache_Render_no_pixels_keeps_previous_bitmap(t *testing.T) {
	page := enginetest.NewPage(100, 200)
	doc := enginetest.NewDoc("test.pdf", page)
	c := NewCache(doc, zerolog.Nop())

	bm, ok := c.Render(0, 1.0, 1.0)
	require.True(t, ok)

	page.Img = nil
	got, ok := c.Render(0, 1.2, 1.0)
	assert.False(t, ok)
	assert.Equal(t, bm.Image, got.Image, "stale bitmap is not evicted")
}

func TestCache_Render_error_does_not_affect_other_pages(t *testing.T) {
	bad := enginetest.NewPage(100, 200)
	bad.RasterErr = errors.New("decode failure")
	good := enginetest.NewPage(100, 200)
	doc := enginetest.NewDoc("test.pdf", bad, good)
	c := NewCache(doc, zerolog.Nop())

	_, ok := c.Render(0, 1.0, 1.0)
	assert.False(t, ok)

	_, ok = c.Render(1, 1.0, 1.0)
	assert.True(t, ok)
}

func TestCache_InvalidateAll(t *testing.T) {
	page := enginetest.NewPage(100, 200)
	doc := enginetest.NewDoc("test.pdf", page)
	c := NewCache(doc, zerolog.Nop())

	_, _ = c.Render(0, 1.0, 1.0)
	c.InvalidateAll()

	_, ok := c.Get(0)
	assert.False(t, ok)
}
