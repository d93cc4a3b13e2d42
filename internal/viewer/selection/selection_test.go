package selection

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/engine/enginetest"
	"github.com/foliops/folio/internal/viewer/layout"
)

// wordQuad places a 40x10 text run at (x, y) in page-local units.
func wordQuad(text string, x, y float64) engine.TextQuad {
	return engine.TextQuad{
		Quad: geom.QuadFromRect(geom.Rect{X0: x, Y0: y, X1: x + 40, Y1: y + 10}),
		Text: text,
	}
}

// textDoc is a single 200x400 page with three words on one line.
func textDoc() (*enginetest.Doc, *enginetest.Page) {
	page := enginetest.NewPage(200, 400)
	page.TextQuads = []engine.TextQuad{
		wordQuad("alpha", 10, 50),
		wordQuad("beta", 60, 50),
		wordQuad("gamma", 110, 50),
	}
	return enginetest.NewDoc("text.pdf", page), page
}

func newMapper(t *testing.T, doc engine.Document, scale float64) *Mapper {
	t.Helper()
	sizes := make([]geom.Rect, doc.PageCount())
	for i := range sizes {
		p, err := doc.Page(i)
		require.NoError(t, err)
		sizes[i] = p.Size()
	}
	m := NewMapper(doc, zerolog.Nop())
	m.SetView(layout.Compute(sizes, scale, layout.Single, 200*scale), scale)
	return m
}

func TestFindClosestQuad(t *testing.T) {
	quads := []engine.TextQuad{
		wordQuad("alpha", 10, 50),
		wordQuad("beta", 60, 50),
		wordQuad("gamma", 110, 50),
	}

	t.Run("containment wins", func(t *testing.T) {
		assert.Equal(t, 1, FindClosestQuad(quads, geom.Point{X: 70, Y: 55}))
	})

	t.Run("nearest center otherwise", func(t *testing.T) {
		assert.Equal(t, 2, FindClosestQuad(quads, geom.Point{X: 180, Y: 55}))
		assert.Equal(t, 0, FindClosestQuad(quads, geom.Point{X: 0, Y: 0}))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, -1, FindClosestQuad(nil, geom.Point{}))
	})
}

func TestMapper_linear_drag_selects_inclusive_range(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 15, Y: 55})
	m.Move(geom.Point{X: 130, Y: 55})
	res := m.Release(geom.Point{X: 130, Y: 55})

	require.True(t, res.Committed)
	assert.True(t, res.Linear)
	assert.Equal(t, 0, res.PageIndex)
	require.Len(t, res.Quads, 3)
	assert.Equal(t, "alpha beta gamma", res.Text())
}

func TestMapper_linear_drag_backwards_normalizes(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 130, Y: 55})
	m.Move(geom.Point{X: 15, Y: 55})
	res := m.Release(geom.Point{X: 15, Y: 55})

	require.True(t, res.Committed)
	assert.Equal(t, "alpha beta gamma", res.Text())
}

func TestMapper_linear_respects_scale(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 2.0)

	// canvas points (30, 110) and (34, 112) stay inside the first word's
	// page-local box at scale 2
	m.Press(geom.Point{X: 30, Y: 110})
	m.Move(geom.Point{X: 34, Y: 112})
	res := m.Release(geom.Point{X: 34, Y: 112})

	require.True(t, res.Committed)
	require.Len(t, res.Quads, 1)
	assert.Equal(t, "alpha", res.Quads[0].Text)
}

func TestMapper_linear_click_without_drag_commits_nothing(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 1.0)

	// press and release on a word with no motion in between
	m.Press(geom.Point{X: 15, Y: 55})
	res := m.Release(geom.Point{X: 15, Y: 55})

	assert.False(t, res.Committed)
	assert.Empty(t, res.Quads)
	assert.Equal(t, Idle, m.Phase())
}

func TestMapper_box_fallback_without_quads(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("scan.pdf", page)
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 20, Y: 20})
	m.Move(geom.Point{X: 120, Y: 90})
	res := m.Release(geom.Point{X: 120, Y: 90})

	require.True(t, res.Committed)
	assert.False(t, res.Linear)
	assert.Empty(t, res.Quads)
	assert.Equal(t, geom.Rect{X0: 20, Y0: 20, X1: 120, Y1: 90}, res.Rect)
}

func TestMapper_box_narrow_gesture_discarded(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("scan.pdf", page)
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 20, Y: 20})
	res := m.Release(geom.Point{X: 23, Y: 90})

	assert.False(t, res.Committed)
	assert.Equal(t, Idle, m.Phase())
}

func TestMapper_press_release_same_point_commits_nothing_on_scan(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("scan.pdf", page)
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 50, Y: 50})
	res := m.Release(geom.Point{X: 50, Y: 50})

	assert.False(t, res.Committed)
}

func TestMapper_press_outside_pages_is_noop(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 1.0)

	// y=405 falls into the padding gap below the page
	m.Press(geom.Point{X: 50, Y: 405})
	m.Move(geom.Point{X: 150, Y: 500})
	res := m.Release(geom.Point{X: 150, Y: 500})

	assert.False(t, res.Committed)
}

func TestMapper_quad_error_degrades_to_box(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	page.QuadsErr = assert.AnError
	doc := enginetest.NewDoc("bad.pdf", page)
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 20, Y: 20})
	m.Move(geom.Point{X: 120, Y: 90})
	res := m.Release(geom.Point{X: 120, Y: 90})

	require.True(t, res.Committed)
	assert.False(t, res.Linear)
}

func TestMapper_box_resolves_intersecting_quads(t *testing.T) {
	doc, page := textDoc()
	// no quads at press time, quads available at release: simulates an
	// engine that fails once and recovers
	saved := page.TextQuads
	page.TextQuads = nil
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 5, Y: 40})
	page.TextQuads = saved
	m.Move(geom.Point{X: 105, Y: 70})
	res := m.Release(geom.Point{X: 105, Y: 70})

	require.True(t, res.Committed)
	assert.False(t, res.Linear)
	require.Len(t, res.Quads, 2, "alpha and beta intersect the box")
	assert.Equal(t, "alpha beta", res.Text())
}

func TestMapper_overlay_transforms_to_canvas(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 2.0)

	m.Press(geom.Point{X: 30, Y: 110})
	m.Move(geom.Point{X: 30, Y: 110})

	overlay := m.Overlay()
	require.Len(t, overlay, 1)
	// page-local quad (10,50)-(50,60) scaled by 2
	assert.Equal(t, geom.Point{X: 20, Y: 100}, overlay[0].UL)
	assert.Equal(t, geom.Point{X: 100, Y: 120}, overlay[0].LR)
}

func TestMapper_SetView_abandons_gesture(t *testing.T) {
	doc, _ := textDoc()
	m := newMapper(t, doc, 1.0)

	m.Press(geom.Point{X: 15, Y: 55})
	m.SetView(layout.Result{}, 1.0)

	res := m.Release(geom.Point{X: 130, Y: 55})
	assert.False(t, res.Committed)
}

func TestResult_Text_empty_without_quads(t *testing.T) {
	assert.Equal(t, "", Result{Committed: true}.Text())
}
