package viewer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/engine/enginetest"
	"github.com/foliops/folio/internal/viewer/layout"
)

func wordQuad(text string, x, y float64) engine.TextQuad {
	return engine.TextQuad{
		Quad: geom.QuadFromRect(geom.Rect{X0: x, Y0: y, X1: x + 40, Y1: y + 10}),
		Text: text,
	}
}

func textTab(t *testing.T) (*Tab, *enginetest.Page) {
	t.Helper()
	page := enginetest.NewPage(200, 400)
	page.TextQuads = []engine.TextQuad{
		wordQuad("alpha", 10, 50),
		wordQuad("beta", 60, 50),
		wordQuad("gamma", 110, 50),
	}
	doc := enginetest.NewDoc("text.pdf", page)
	tab := NewTab(doc, "/tmp/text.pdf", zerolog.Nop())
	tab.SetViewport(200, 100)
	return tab, page
}

func TestTab_zoom_clamps_to_limits(t *testing.T) {
	tab, _ := textTab(t)

	for i := 0; i < 24; i++ {
		tab.ZoomIn()
	}
	assert.Equal(t, MaxScale, tab.Scale())

	for i := 0; i < 30; i++ {
		tab.ZoomOut()
	}
	assert.Equal(t, MinScale, tab.Scale())
}

func TestTab_zoom_invalidates_bitmaps(t *testing.T) {
	tab, page := textTab(t)

	_, ok := tab.Cache().Render(0, tab.Scale(), 1.0)
	require.True(t, ok)
	assert.Equal(t, 1, page.Renders)

	tab.ZoomIn()
	_, ok = tab.Cache().Render(0, tab.Scale(), 1.0)
	require.True(t, ok)
	assert.Equal(t, 2, page.Renders)
}

func TestTab_FitWidth(t *testing.T) {
	tab, _ := textTab(t)
	tab.SetViewport(430, 100)

	tab.FitWidth()
	assert.InDelta(t, 2.05, tab.Scale(), 1e-9)
}

func TestTab_FitWidth_respects_clamp(t *testing.T) {
	tab, _ := textTab(t)
	tab.SetViewport(5000, 100)

	tab.FitWidth()
	assert.Equal(t, MaxScale, tab.Scale())
}

func TestTab_view_mode_switch_relayouts(t *testing.T) {
	p1 := enginetest.NewPage(200, 400)
	p2 := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("two.pdf", p1, p2)
	tab := NewTab(doc, "", zerolog.Nop())
	tab.SetViewport(500, 100)

	tab.SetViewMode(layout.Dual)
	require.Len(t, tab.View().Pages, 2)
	assert.Equal(t, 0.0, tab.View().Pages[1].Offset.Y, "dual mode pairs pages on one row")
	assert.Equal(t, 220.0, tab.View().Pages[1].Offset.X)
}

func TestTab_page_label(t *testing.T) {
	tab, _ := textTab(t)
	assert.Equal(t, 0, tab.CurrentPage())
	assert.Equal(t, "1 / 1", tab.PageLabel())

	empty := NewTab(enginetest.NewDoc("empty.pdf"), "", zerolog.Nop())
	empty.SetViewport(200, 100)
	assert.Equal(t, "- / 0", empty.PageLabel())
}

func TestTab_GoToPage(t *testing.T) {
	p1 := enginetest.NewPage(200, 400)
	p2 := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("two.pdf", p1, p2)
	tab := NewTab(doc, "", zerolog.Nop())
	tab.SetViewport(200, 100)

	require.NoError(t, tab.GoToPage(1))
	assert.Equal(t, 420.0, tab.Scroll().Y, "second page top after height plus padding")
	assert.Equal(t, 1, tab.CurrentPage())

	assert.ErrorIs(t, tab.GoToPage(2), engine.ErrPageOutOfRange)
	assert.ErrorIs(t, tab.GoToPage(-1), engine.ErrPageOutOfRange)
}

func TestTab_browse_drag_pans(t *testing.T) {
	tab, _ := textTab(t)

	tab.PointerPress(geom.Point{X: 50, Y: 50})
	tab.PointerMove(geom.Point{X: 40, Y: 30})
	tab.PointerRelease(geom.Point{X: 40, Y: 30})

	// x clamps to 0: the page fills the viewport width
	assert.Equal(t, geom.Point{X: 0, Y: 20}, tab.Scroll())

	// released: further motion does not pan
	tab.PointerMove(geom.Point{X: 0, Y: 0})
	assert.Equal(t, geom.Point{X: 0, Y: 20}, tab.Scroll())
}

func TestTab_select_release_reports_selection(t *testing.T) {
	tab, _ := textTab(t)
	tab.SetTool(Select)

	tab.PointerPress(geom.Point{X: 15, Y: 55})
	tab.PointerMove(geom.Point{X: 130, Y: 55})
	g := tab.PointerRelease(geom.Point{X: 130, Y: 55})

	require.True(t, g.Selection.Committed)
	assert.Equal(t, "alpha beta gamma", g.Selection.Text())
	assert.False(t, g.Highlighted)
}

func TestTab_selection_accounts_for_scroll(t *testing.T) {
	tab, _ := textTab(t)
	tab.SetTool(Select)
	tab.ScrollBy(0, 20)

	tab.PointerPress(geom.Point{X: 15, Y: 35})

	overlay := tab.SelectionOverlay()
	require.Len(t, overlay, 1)
	assert.Equal(t, geom.Point{X: 10, Y: 30}, overlay[0].UL)
	assert.Equal(t, geom.Point{X: 50, Y: 40}, overlay[0].LR)
}

func TestTab_highlight_gesture_commits_annotation(t *testing.T) {
	tab, page := textTab(t)
	tab.SetTool(Highlight)
	tab.SetHighlightColor(engine.RGB{G: 1})

	_, ok := tab.Cache().Render(0, tab.Scale(), 1.0)
	require.True(t, ok)

	tab.PointerPress(geom.Point{X: 15, Y: 55})
	tab.PointerMove(geom.Point{X: 70, Y: 55})
	g := tab.PointerRelease(geom.Point{X: 70, Y: 55})

	require.True(t, g.Highlighted)
	assert.Equal(t, engine.RGB{G: 1}, g.Annotation.Color)
	assert.Len(t, page.Annots, 1)
	assert.True(t, tab.Modified())

	// the page bitmap was dropped so the highlight becomes visible
	_, cached := tab.Cache().Get(0)
	assert.False(t, cached)
}

func TestTab_highlight_click_without_drag_adds_nothing(t *testing.T) {
	tab, page := textTab(t)
	tab.SetTool(Highlight)

	tab.PointerPress(geom.Point{X: 15, Y: 55})
	g := tab.PointerRelease(geom.Point{X: 15, Y: 55})

	assert.False(t, g.Highlighted)
	assert.Empty(t, page.Annots)
	assert.False(t, tab.Modified())
}

func TestTab_highlight_gesture_reports_page_index(t *testing.T) {
	p1 := enginetest.NewPage(200, 400)
	p2 := enginetest.NewPage(200, 400)
	p2.TextQuads = []engine.TextQuad{wordQuad("delta", 10, 50)}
	doc := enginetest.NewDoc("two.pdf", p1, p2)
	tab := NewTab(doc, "", zerolog.Nop())
	tab.SetViewport(200, 100)
	tab.SetTool(Highlight)

	// second page starts at canvas y 420; scroll its top to the viewport
	require.NoError(t, tab.GoToPage(1))
	tab.PointerPress(geom.Point{X: 15, Y: 55})
	tab.PointerMove(geom.Point{X: 30, Y: 55})
	g := tab.PointerRelease(geom.Point{X: 30, Y: 55})

	require.True(t, g.Highlighted)
	assert.Equal(t, 1, g.Selection.PageIndex)
	assert.Equal(t, "delta", g.Selection.Text())
}

func TestTab_highlight_degenerate_gesture_is_discarded(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("scan.pdf", page)
	tab := NewTab(doc, "", zerolog.Nop())
	tab.SetViewport(200, 100)
	tab.SetTool(Highlight)

	tab.PointerPress(geom.Point{X: 50, Y: 50})
	g := tab.PointerRelease(geom.Point{X: 52, Y: 90})

	assert.False(t, g.Highlighted)
	assert.Empty(t, page.Annots)
	assert.False(t, tab.Modified())
}

func TestTab_erase_removes_first_containing_highlight(t *testing.T) {
	tab, page := textTab(t)

	_, err := page.AddHighlight(nil, geom.Rect{X0: 40, Y0: 40, X1: 120, Y1: 70}, engine.RGB{R: 1, G: 1})
	require.NoError(t, err)

	tab.SetTool(Erase)
	tab.PointerPress(geom.Point{X: 70, Y: 55})
	assert.Empty(t, page.Annots)

	// erasing again where nothing remains is a no-op
	tab.PointerPress(geom.Point{X: 70, Y: 55})
	assert.Empty(t, page.Annots)
}

func TestTab_erase_ignores_points_outside_highlights(t *testing.T) {
	tab, page := textTab(t)
	_, err := page.AddHighlight(nil, geom.Rect{X0: 40, Y0: 40, X1: 120, Y1: 70}, engine.RGB{R: 1})
	require.NoError(t, err)

	tab.SetTool(Erase)
	tab.PointerPress(geom.Point{X: 5, Y: 5})
	assert.Len(t, page.Annots, 1)
}

func TestTab_switching_to_browse_clears_selection(t *testing.T) {
	tab, _ := textTab(t)
	tab.SetTool(Select)
	tab.PointerPress(geom.Point{X: 15, Y: 55})
	require.NotEmpty(t, tab.SelectionOverlay())

	tab.SetTool(Browse)
	assert.Empty(t, tab.SelectionOverlay())
}

func TestTab_save(t *testing.T) {
	page := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("doc.pdf", page)

	remote := NewTab(doc, "", zerolog.Nop())
	assert.ErrorIs(t, remote.Save(), ErrNoFilePath)

	require.NoError(t, remote.SaveAs("/tmp/out.pdf"))
	assert.Equal(t, "/tmp/out.pdf", remote.Path())
	assert.Equal(t, []string{"/tmp/out.pdf"}, doc.SavedTo)

	// with a path, Save targets it
	require.NoError(t, remote.Save())
	assert.Equal(t, []string{"/tmp/out.pdf", "/tmp/out.pdf"}, doc.SavedTo)
}

func TestTab_generation_invalidates_async_results(t *testing.T) {
	tab, _ := textTab(t)

	gen := tab.Generation()
	assert.False(t, tab.Expired(gen))

	require.NoError(t, tab.Close())
	assert.True(t, tab.Expired(gen))
	assert.True(t, tab.Doc().(*enginetest.Doc).Closed)

	// closing twice is safe
	require.NoError(t, tab.Close())
}

func TestTab_PreExtract(t *testing.T) {
	text := enginetest.NewPage(200, 400)
	text.TextQuads = []engine.TextQuad{wordQuad("alpha", 10, 50)}
	scan := enginetest.NewPage(200, 400)
	doc := enginetest.NewDoc("mixed.pdf", text, scan)
	tab := NewTab(doc, "", zerolog.Nop())

	require.NoError(t, tab.PreExtract(context.Background()))
}
