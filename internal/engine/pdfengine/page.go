package pdfengine

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
)

// baseDPI is the rasterizer DPI corresponding to a logical scale of 1.0.
// One page unit (PDF point) maps to one pixel at this DPI.
const baseDPI = 72

// Page is one page of a Document.
type Page struct {
	doc   *Document
	index int

	size    geom.Rect
	sizeSet bool
}

var _ engine.Page = (*Page)(nil)

// Index implements engine.Page.
func (p *Page) Index() int { return p.index }

// Size implements engine.Page.
func (p *Page) Size() geom.Rect {
	if p.sizeSet {
		return p.size
	}
	bounds, err := p.doc.raster.Bound(p.index)
	if err != nil {
		return geom.Rect{}
	}
	p.size = geom.Rect{X1: float64(bounds.Dx()), Y1: float64(bounds.Dy())}
	p.sizeSet = true
	return p.size
}

// Rasterize implements engine.Page.
func (p *Page) Rasterize(scale, density float64) (image.Image, error) {
	if p.doc.isClosed() {
		return nil, engine.ErrClosed
	}
	if scale <= 0 {
		return nil, fmt.Errorf("rasterize page %d: non-positive scale %v", p.index, scale)
	}
	if density <= 0 {
		density = 1
	}

	img, err := p.doc.raster.ImageDPI(p.index, baseDPI*scale*density)
	if err != nil {
		if errors.Is(err, fitz.ErrPixmapSamples) {
			return nil, engine.ErrNoPixels
		}
		return nil, fmt.Errorf("rasterize page %d: %w", p.index, err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, engine.ErrNoPixels
	}
	return img, nil
}

// Quads implements engine.Page. Results are cached per page; the cache is
// shared with TextIn and survives until the document is closed.
func (p *Page) Quads() ([]engine.TextQuad, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, engine.ErrClosed
	}

	if res, ok := p.doc.quadCache[p.index]; ok {
		return res.quads, res.err
	}

	quads, err := extractQuads(p.doc.model, p.doc.pageRefs, p.index, p.Size())
	if err == nil && len(quads) == 0 {
		err = engine.ErrNoQuads
		quads = nil
	}
	p.doc.quadCache[p.index] = quadResult{quads: quads, err: err}
	return quads, err
}

// Text implements engine.Page.
func (p *Page) Text() (string, error) {
	if p.doc.isClosed() {
		return "", engine.ErrClosed
	}
	text, err := p.doc.raster.Text(p.index)
	if err != nil {
		return "", fmt.Errorf("text of page %d: %w", p.index, err)
	}
	return text, nil
}

// TextIn implements engine.Page.
func (p *Page) TextIn(clip geom.Rect) (string, error) {
	quads, err := p.Quads()
	if err != nil {
		return "", err
	}
	clip = clip.Canon()

	var parts []string
	for _, q := range quads {
		if q.Quad.Bounds().Intersects(clip) {
			parts = append(parts, q.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
