package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/core/styles"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/viewer"
	"github.com/foliops/folio/internal/viewer/layout"
)

const (
	annotationTintAlpha = 0.45
	selectionTintAlpha  = 0.35
)

// renderCanvas paints the visible slice of the active tab into terminal
// cells. Each cell is one canvas unit wide and two tall: the upper half
// block glyph carries the top unit in its foreground color and the bottom
// unit in its background color.
func (m *Model) renderCanvas() string {
	cols := m.width
	rows := max(m.height-2, 0)
	if cols <= 0 || rows <= 0 {
		return ""
	}

	bg := paletteColor(string(styles.CurrentPalette.Background))
	fb := newFrameBuffer(cols, rows*2, bg)

	tab := m.Tab()
	if tab == nil {
		return fb.String()
	}

	scroll := tab.Scroll()
	viewRect := geom.Rect{
		X0: scroll.X,
		Y0: scroll.Y,
		X1: scroll.X + float64(cols),
		Y1: scroll.Y + float64(rows*2),
	}

	for _, p := range tab.View().Pages {
		if !p.Bounds().Intersects(viewRect) {
			continue
		}
		dst := p.Bounds().Translate(-scroll.X, -scroll.Y)

		bm, ok := tab.Cache().Render(p.Index, tab.Scale(), m.density)
		if bm.Image == nil {
			if !ok {
				fb.fill(dst, paletteColor(string(styles.CurrentPalette.Surface)))
			}
			continue
		}
		fb.drawImage(bm.Image, dst)
		m.tintAnnotations(fb, tab, p, scroll)
	}

	sel := paletteColor(string(styles.CurrentPalette.Secondary))
	for _, q := range tab.SelectionOverlay() {
		fb.tint(q.Bounds(), sel, selectionTintAlpha)
	}

	return fb.String()
}

// tintAnnotations overlays highlight annotations. The rasterizer works
// from the bytes the document was opened with, so annotations added this
// session are painted here rather than by the engine.
func (m *Model) tintAnnotations(fb *frameBuffer, tab *viewer.Tab, p layout.Placement, scroll geom.Point) {
	page, err := tab.Doc().Page(p.Index)
	if err != nil {
		return
	}
	annots, err := page.Annotations()
	if err != nil {
		return
	}
	for _, a := range annots {
		if a.Kind != engine.KindHighlight {
			continue
		}
		r := a.Rect.Scale(tab.Scale()).
			Translate(p.Offset.X-scroll.X, p.Offset.Y-scroll.Y)
		fb.tint(r, colorful.Color{R: a.Color.R, G: a.Color.G, B: a.Color.B}, annotationTintAlpha)
	}
}

func paletteColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// frameBuffer is an RGBA canvas sized in canvas units, flattened to half
// block cells at the end.
type frameBuffer struct {
	w, h int
	img  *image.RGBA
}

func newFrameBuffer(w, h int, bg colorful.Color) *frameBuffer {
	fb := &frameBuffer{w: w, h: h, img: image.NewRGBA(image.Rect(0, 0, w, h))}
	fb.fill(geom.Rect{X1: float64(w), Y1: float64(h)}, bg)
	return fb
}

func (f *frameBuffer) clip(r geom.Rect) image.Rectangle {
	out := image.Rect(int(r.X0), int(r.Y0), int(r.X1+0.5), int(r.Y1+0.5))
	return out.Intersect(f.img.Bounds())
}

func (f *frameBuffer) fill(r geom.Rect, c colorful.Color) {
	cr, cg, cb := c.RGB255()
	px := color.RGBA{R: cr, G: cg, B: cb, A: 255}
	b := f.clip(r)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			f.img.SetRGBA(x, y, px)
		}
	}
}

// drawImage scales src into the destination rectangle. Bilinear keeps
// text legible when the bitmap was rendered at a higher density than the
// cell grid.
func (f *frameBuffer) drawImage(src image.Image, dst geom.Rect) {
	b := image.Rect(int(dst.X0), int(dst.Y0), int(dst.X1+0.5), int(dst.Y1+0.5))
	if b.Empty() {
		return
	}
	xdraw.ApproxBiLinear.Scale(f.img, b, src, src.Bounds(), xdraw.Src, nil)
}

// tint alpha-blends a color over the rectangle.
func (f *frameBuffer) tint(r geom.Rect, c colorful.Color, alpha float64) {
	b := f.clip(r)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			old := f.img.RGBAAt(x, y)
			base := colorful.Color{
				R: float64(old.R) / 255,
				G: float64(old.G) / 255,
				B: float64(old.B) / 255,
			}
			cr, cg, cb := base.BlendRgb(c, alpha).RGB255()
			f.img.SetRGBA(x, y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
}

// String flattens the buffer into rows of half block cells with 24-bit
// color escapes. Consecutive cells with identical colors reuse the
// escape.
func (f *frameBuffer) String() string {
	var b strings.Builder
	b.Grow(f.w * f.h * 8)

	for y := 0; y+1 < f.h; y += 2 {
		prevFg, prevBg := "", ""
		for x := 0; x < f.w; x++ {
			top := f.img.RGBAAt(x, y)
			bot := f.img.RGBAAt(x, y+1)
			fg := fmt.Sprintf("\x1b[38;2;%d;%d;%dm", top.R, top.G, top.B)
			bg := fmt.Sprintf("\x1b[48;2;%d;%d;%dm", bot.R, bot.G, bot.B)
			if fg != prevFg {
				b.WriteString(fg)
				prevFg = fg
			}
			if bg != prevBg {
				b.WriteString(bg)
				prevBg = bg
			}
			b.WriteRune('▀')
		}
		b.WriteString("\x1b[0m")
		if y+2 < f.h {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
