package pdfengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliops/folio/internal/core/geom"
)

// glyphBox is the pen box of one glyph at x on baseline y in bottom-up
// user space, sized like the content stream walker produces for font
// size 10.
func glyphBox(x, y float64) geom.Rect {
	return geom.Rect{X0: x, Y0: y - 2, X1: x, Y1: y + 8}
}

// feedWord pushes a run of glyphs starting at x on baseline y, each
// advancing 6 units, then extends the word to the final pen position the
// way the end-of-run hook does. Returns the pen x after the run.
func feedWord(b *quadBuilder, text string, x, y float64) float64 {
	for _, r := range text {
		b.glyph(glyphBox(x, y), string(r))
		x += 6
	}
	b.extend(glyphBox(x, y))
	return x
}

func TestQuadBuilder_separates_words(t *testing.T) {
	b := newQuadBuilder(100)

	end := feedWord(b, "lorem", 10, 50)
	b.flush()
	feedWord(b, "ipsum", end+4, 50)

	quads := b.finish()
	require.Len(t, quads, 2)
	assert.Equal(t, "lorem", quads[0].Text)
	assert.Equal(t, "ipsum", quads[1].Text)
}

func TestQuadBuilder_extend_covers_final_advance(t *testing.T) {
	b := newQuadBuilder(100)

	feedWord(b, "word", 10, 50) // pen ends at 34

	quads := b.finish()
	require.Len(t, quads, 1)
	bounds := quads[0].Quad.Bounds()
	assert.InDelta(t, 10, bounds.X0, 1e-9)
	assert.InDelta(t, 34, bounds.X1, 1e-9)
}

func TestQuadBuilder_flips_to_topdown(t *testing.T) {
	b := newQuadBuilder(100)

	// word near the bottom of a 100-unit page, user-space y in [8, 18]
	feedWord(b, "low", 0, 10)

	quads := b.finish()
	require.Len(t, quads, 1)

	bounds := quads[0].Quad.Bounds()
	assert.InDelta(t, 82, bounds.Y0, 1e-9) // 100 - 18
	assert.InDelta(t, 92, bounds.Y1, 1e-9) // 100 - 8
	assert.InDelta(t, 0, bounds.X0, 1e-9)
	assert.InDelta(t, 18, bounds.X1, 1e-9)
}

func TestQuadBuilder_extend_without_active_word(t *testing.T) {
	b := newQuadBuilder(100)

	b.extend(glyphBox(10, 50))
	b.flush()

	assert.Nil(t, b.finish())
}

func TestQuadBuilder_discards_whitespace_only_runs(t *testing.T) {
	b := newQuadBuilder(100)

	b.glyph(glyphBox(10, 50), " ")
	b.extend(glyphBox(16, 50))

	assert.Nil(t, b.finish())
}

func TestQuadBuilder_empty_input(t *testing.T) {
	b := newQuadBuilder(100)

	assert.Nil(t, b.finish())
}
