package pdfengine

import (
	"fmt"

	"seehuhn.de/go/pdf"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
)

// Highlight annotations are stored as standard text markup dictionaries
// (PDF 32000-1, 12.5.6.10): /Subtype /Highlight with /QuadPoints in
// bottom-up user space. Until the document is saved a new highlight only
// exists in the session overlay; Save gives each one its own indirect
// object.

// AddHighlight implements engine.Page.
func (p *Page) AddHighlight(quads []geom.Quad, rect geom.Rect, color engine.RGB) (engine.Annotation, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return engine.Annotation{}, engine.ErrClosed
	}

	var bounds geom.Rect
	if len(quads) > 0 {
		bounds = quads[0].Bounds()
		for _, q := range quads[1:] {
			bounds = bounds.Union(q.Bounds())
		}
	} else {
		bounds = rect.Canon()
		if bounds.IsEmpty() {
			return engine.Annotation{}, fmt.Errorf("add highlight: empty region")
		}
		quads = []geom.Quad{geom.QuadFromRect(bounds)}
	}

	p.doc.annotSeq++
	a := engine.Annotation{
		ID:    fmt.Sprintf("s%d", p.doc.annotSeq),
		Kind:  engine.KindHighlight,
		Rect:  bounds,
		Quads: quads,
		Color: color,
	}
	p.doc.added[p.index] = append(p.doc.added[p.index], a)
	p.doc.modified = true
	return a, nil
}

// Annotations implements engine.Page. Stored annotations come first, in
// file order, followed by the session's additions.
func (p *Page) Annotations() ([]engine.Annotation, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, engine.ErrClosed
	}

	stored, err := p.storedAnnotations()
	if err != nil {
		return nil, err
	}
	out := make([]engine.Annotation, 0, len(stored)+len(p.doc.added[p.index]))
	for _, a := range stored {
		if p.doc.removed[p.index][a.ID] {
			continue
		}
		out = append(out, a)
	}
	out = append(out, p.doc.added[p.index]...)
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// storedAnnotations reads the annotations persisted in the file, ignoring
// the session overlay. The caller must hold the document lock.
func (p *Page) storedAnnotations() ([]engine.Annotation, error) {
	_, pageDict, err := p.doc.pageDict(p.index)
	if err != nil {
		return nil, err
	}
	annots, err := pdf.GetArray(p.doc.model, pageDict["Annots"])
	if err != nil || annots == nil {
		return nil, nil
	}

	pageH := p.Size().Height()
	out := make([]engine.Annotation, 0, len(annots))
	for i, obj := range annots {
		dict, err := pdf.GetDict(p.doc.model, obj)
		if err != nil || dict == nil {
			continue
		}
		a := engine.Annotation{ID: annotID(obj, p.index, i), Kind: engine.KindOther}

		if subtype, _ := pdf.GetName(p.doc.model, dict["Subtype"]); subtype == "Highlight" {
			a.Kind = engine.KindHighlight
		}
		if r, err := pdf.GetRectangle(p.doc.model, dict["Rect"]); err == nil && r != nil {
			a.Rect = geom.Rect{X0: r.LLx, Y0: pageH - r.URy, X1: r.URx, Y1: pageH - r.LLy}
		}
		a.Quads = readQuadPoints(p.doc.model, dict["QuadPoints"], pageH)
		a.Color = readColor(p.doc.model, dict["C"])
		out = append(out, a)
	}
	return out, nil
}

// RemoveAnnotation implements engine.Page. Session highlights vanish from
// the overlay; stored annotations are marked for omission on the next
// save.
func (p *Page) RemoveAnnotation(id string) error {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return engine.ErrClosed
	}

	session := p.doc.added[p.index]
	for i, a := range session {
		if a.ID != id {
			continue
		}
		p.doc.added[p.index] = append(session[:i:i], session[i+1:]...)
		p.doc.modified = true
		return nil
	}

	stored, err := p.storedAnnotations()
	if err != nil {
		return err
	}
	for _, a := range stored {
		if a.ID != id || p.doc.removed[p.index][a.ID] {
			continue
		}
		if p.doc.removed[p.index] == nil {
			p.doc.removed[p.index] = make(map[string]bool)
		}
		p.doc.removed[p.index][id] = true
		p.doc.modified = true
		return nil
	}
	return engine.ErrAnnotationNotFound
}

// annotID derives a stable id for an entry of a page's Annots array.
// Indirect annotations use their reference; direct dictionaries fall back
// to their array position. Session ids ("s1", "s2", ...) never collide
// with either form.
func annotID(obj pdf.Object, pageIndex, arrayIndex int) string {
	if ref, ok := obj.(pdf.Reference); ok {
		return ref.String()
	}
	return fmt.Sprintf("p%d#%d", pageIndex, arrayIndex)
}

// highlightDict builds the stored form of a session highlight, flipped
// back into bottom-up user space.
func highlightDict(a engine.Annotation, pageH float64) pdf.Dict {
	quadPoints := make(pdf.Array, 0, len(a.Quads)*8)
	for _, q := range a.Quads {
		// QuadPoints corner order: upper-left, upper-right, lower-left,
		// lower-right.
		for _, c := range [4]geom.Point{q.UL, q.UR, q.LL, q.LR} {
			quadPoints = append(quadPoints, pdf.Real(c.X), pdf.Real(pageH-c.Y))
		}
	}
	return pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Highlight"),
		"Rect": pdf.Array{
			pdf.Real(a.Rect.X0), pdf.Real(pageH - a.Rect.Y1),
			pdf.Real(a.Rect.X1), pdf.Real(pageH - a.Rect.Y0),
		},
		"QuadPoints": quadPoints,
		"C":          pdf.Array{pdf.Real(a.Color.R), pdf.Real(a.Color.G), pdf.Real(a.Color.B)},
		"F":          pdf.Integer(4), // print flag
	}
}

func readQuadPoints(r pdf.Getter, obj pdf.Object, pageH float64) []geom.Quad {
	arr, err := pdf.GetArray(r, obj)
	if err != nil || len(arr) < 8 {
		return nil
	}
	nums := make([]float64, 0, len(arr))
	for _, o := range arr {
		n, err := pdf.GetNumber(r, o)
		if err != nil {
			return nil
		}
		nums = append(nums, float64(n))
	}

	var quads []geom.Quad
	for i := 0; i+8 <= len(nums); i += 8 {
		flip := func(j int) geom.Point {
			return geom.Point{X: nums[i+2*j], Y: pageH - nums[i+2*j+1]}
		}
		// stored order: UL, UR, LL, LR
		quads = append(quads, geom.Quad{
			UL: flip(0), UR: flip(1), LL: flip(2), LR: flip(3),
		})
	}
	return quads
}

func readColor(r pdf.Getter, obj pdf.Object) engine.RGB {
	arr, err := pdf.GetArray(r, obj)
	if err != nil || len(arr) != 3 {
		return engine.RGB{}
	}
	var c [3]float64
	for i, o := range arr {
		n, err := pdf.GetNumber(r, o)
		if err != nil {
			return engine.RGB{}
		}
		c[i] = float64(n)
	}
	return engine.RGB{R: c[0], G: c[1], B: c[2]}
}
