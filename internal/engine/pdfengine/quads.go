package pdfengine

import (
	"fmt"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/reader"
	"seehuhn.de/go/postscript/cid"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
)

// Glyph box heuristics relative to the font size. Exact ascender and
// descender values live in the font programs; for selection geometry the
// conventional 80/20 split is accurate enough.
const (
	ascentFactor  = 0.8
	descentFactor = 0.2
)

// wordGapThousandths is the TJ displacement, in thousandths of an em,
// beyond which a gap separates words. Smaller adjustments are kerning.
const wordGapThousandths = 150.0

// extractQuads walks page index's content stream and groups the shown
// glyphs into word-level text quads, in content-stream order. The returned
// quads are in top-down page-local units.
//
// Content stream parsers choke on all sorts of real-world files, and the
// walker panics on constructs it does not model. Any such failure is
// converted into an error so the caller can fall back to box selection.
func extractQuads(model pdf.Getter, refs []pdf.Reference, index int, size geom.Rect) (quads []engine.TextQuad, err error) {
	if index >= len(refs) {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			quads = nil
			err = fmt.Errorf("quad extraction on page %d: %v", index, r)
		}
	}()

	walker := reader.New(model, nil)
	b := newQuadBuilder(size.Height())

	// Character fires once per shown glyph, before the text matrix
	// advances past it, so the pen marks the glyph's leading edge. The
	// trailing edge is picked up when the next glyph, or the EveryOp hook
	// below, extends the word to the new pen position.
	walker.Character = func(_ cid.CID, text string) error {
		box := penBox(walker.State)
		if strings.TrimSpace(text) == "" {
			b.extend(box)
			b.flush()
			return nil
		}
		b.glyph(box, text)
		return nil
	}
	walker.TextEvent = func(ev reader.TextEvent, arg float64) {
		switch ev {
		case reader.TextEventSpace:
			// TJ gap, reported before the pen moves
			if arg > wordGapThousandths {
				b.extend(penBox(walker.State))
				b.flush()
			}
		case reader.TextEventNL, reader.TextEventMove:
			// the pen already jumped, so only close the word
			b.flush()
		}
	}
	walker.EveryOp = func(op string, _ []pdf.Object) error {
		switch op {
		case "Tj", "'", "\"", "TJ":
			// the pen now sits past the run's last glyph
			b.extend(penBox(walker.State))
		case "ET":
			b.flush()
		}
		return nil
	}

	if perr := walker.ParsePage(refs[index], matrix.Identity); perr != nil {
		return nil, fmt.Errorf("parse page %d content: %w", index, perr)
	}
	return b.finish(), nil
}

// penBox is the vertical glyph extent at the current text position, mapped
// to user space. The box is a zero-width segment; word boxes grow by
// unioning successive pen positions.
func penBox(s graphics.State) geom.Rect {
	m := matrix.Matrix{s.TextFontSize * s.TextHorizontalScaling, 0, 0, s.TextFontSize, 0, s.TextRise}
	m = m.Mul(s.TextMatrix).Mul(s.CTM)

	x0, y0 := m.Apply(0, -descentFactor)
	x1, y1 := m.Apply(0, ascentFactor)
	return geom.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}.Canon()
}

// quadBuilder accumulates per-glyph pen boxes into word quads. Input
// coordinates are bottom-up PDF user space; finish flips them into the
// top-down page-local space the rest of the viewer uses.
type quadBuilder struct {
	pageH float64

	words []userWord

	active bool
	word   strings.Builder
	box    geom.Rect
}

type userWord struct {
	box  geom.Rect
	text string
}

func newQuadBuilder(pageHeight float64) *quadBuilder {
	return &quadBuilder{pageH: pageHeight}
}

// glyph appends one shown glyph, starting a new word when none is active.
func (b *quadBuilder) glyph(box geom.Rect, text string) {
	if !b.active {
		b.active = true
		b.box = box
	} else {
		b.box = b.box.Union(box)
	}
	b.word.WriteString(text)
}

// extend widens the active word to cover box without adding text. No-op
// between words.
func (b *quadBuilder) extend(box geom.Rect) {
	if b.active {
		b.box = b.box.Union(box)
	}
}

func (b *quadBuilder) flush() {
	if !b.active {
		return
	}
	text := b.word.String()
	if strings.TrimSpace(text) != "" && !b.box.IsEmpty() {
		b.words = append(b.words, userWord{box: b.box, text: text})
	}
	b.word.Reset()
	b.active = false
}

// finish flushes the pending word and returns all words as top-down quads.
func (b *quadBuilder) finish() []engine.TextQuad {
	b.flush()
	if len(b.words) == 0 {
		return nil
	}
	out := make([]engine.TextQuad, 0, len(b.words))
	for _, w := range b.words {
		flipped := geom.Rect{
			X0: w.box.X0,
			Y0: b.pageH - w.box.Y1,
			X1: w.box.X1,
			Y1: b.pageH - w.box.Y0,
		}
		out = append(out, engine.TextQuad{Quad: geom.QuadFromRect(flipped), Text: w.text})
	}
	return out
}
