// Package enginetest provides an in-memory engine implementation for
// viewer tests.
package enginetest

import (
	"fmt"
	"image"
	"strings"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
)

// Doc is a scriptable engine.Document.
type Doc struct {
	Lbl      string
	PageList []*Page
	Meta     map[string]string

	SaveErr  error
	SavedTo  []string
	Closed   bool
	modified bool
}

// NewDoc builds a fake document and wires the pages to it.
func NewDoc(label string, pages ...*Page) *Doc {
	d := &Doc{Lbl: label, PageList: pages}
	for i, p := range pages {
		p.Idx = i
		p.doc = d
	}
	return d
}

// NewPage builds a page with the given intrinsic size.
func NewPage(w, h float64) *Page {
	return &Page{
		W: w, H: h,
		Img: image.NewRGBA(image.Rect(0, 0, int(w), int(h))),
	}
}

func (d *Doc) Label() string               { return d.Lbl }
func (d *Doc) PageCount() int              { return len(d.PageList) }
func (d *Doc) Metadata() map[string]string { return d.Meta }
func (d *Doc) Modified() bool              { return d.modified }

func (d *Doc) Page(i int) (engine.Page, error) {
	if d.Closed {
		return nil, engine.ErrClosed
	}
	if i < 0 || i >= len(d.PageList) {
		return nil, engine.ErrPageOutOfRange
	}
	return d.PageList[i], nil
}

func (d *Doc) Save(path string) error {
	if d.SaveErr != nil {
		return d.SaveErr
	}
	d.SavedTo = append(d.SavedTo, path)
	d.Lbl = path
	d.modified = false
	return nil
}

func (d *Doc) Close() error {
	d.Closed = true
	return nil
}

// Page is a scriptable engine.Page.
type Page struct {
	Idx  int
	W, H float64

	Img       image.Image // nil means the engine yields no pixels
	RasterErr error
	Renders   int

	TextQuads []engine.TextQuad
	QuadsErr  error

	Annots []engine.Annotation
	nextID int

	doc *Doc
}

func (p *Page) Index() int { return p.Idx }

func (p *Page) Size() geom.Rect {
	return geom.Rect{X1: p.W, Y1: p.H}
}

func (p *Page) Rasterize(scale, density float64) (image.Image, error) {
	p.Renders++
	if p.RasterErr != nil {
		return nil, p.RasterErr
	}
	if p.Img == nil {
		return nil, engine.ErrNoPixels
	}
	return p.Img, nil
}

func (p *Page) Quads() ([]engine.TextQuad, error) {
	if p.QuadsErr != nil {
		return nil, p.QuadsErr
	}
	if len(p.TextQuads) == 0 {
		return nil, engine.ErrNoQuads
	}
	return p.TextQuads, nil
}

func (p *Page) Text() (string, error) {
	var parts []string
	for _, q := range p.TextQuads {
		parts = append(parts, q.Text)
	}
	return strings.Join(parts, " "), nil
}

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

func (p *Page) AddHighlight(quads []geom.Quad, rect geom.Rect, color engine.RGB) (engine.Annotation, error) {
	bounds := rect.Canon()
	if len(quads) > 0 {
		bounds = quads[0].Bounds()
		for _, q := range quads[1:] {
			bounds = bounds.Union(q.Bounds())
		}
	}
	p.nextID++
	a := engine.Annotation{
		ID:    fmt.Sprintf("a%d", p.nextID),
		Kind:  engine.KindHighlight,
		Rect:  bounds,
		Quads: quads,
		Color: color,
	}
	p.Annots = append(p.Annots, a)
	if p.doc != nil {
		p.doc.modified = true
	}
	return a, nil
}

func (p *Page) Annotations() ([]engine.Annotation, error) {
	return append([]engine.Annotation(nil), p.Annots...), nil
}

func (p *Page) RemoveAnnotation(id string) error {
	for i, a := range p.Annots {
		if a.ID == id {
			p.Annots = append(p.Annots[:i], p.Annots[i+1:]...)
			return nil
		}
	}
	return engine.ErrAnnotationNotFound
}

var (
	_ engine.Document = (*Doc)(nil)
	_ engine.Page     = (*Page)(nil)
)
