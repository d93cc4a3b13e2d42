// Package layout arranges rendered pages on a 2D canvas. All coordinates
// are canvas units: page-local units multiplied by the current scale.
package layout

import (
	"math"

	"github.com/foliops/folio/internal/core/geom"
)

// Padding separates pages on the canvas, in canvas units.
const Padding = 20.0

// Mode selects the placement strategy.
type Mode int

const (
	// Single stacks pages vertically, centered when narrower than the
	// viewport.
	Single Mode = iota
	// Dual places pages two per row.
	Dual
)

func (m Mode) String() string {
	if m == Dual {
		return "dual"
	}
	return "single"
}

// Placement is one page's position on the canvas.
type Placement struct {
	Index  int
	Offset geom.Point // top-left corner, canvas units
	Width  float64    // scaled page width
	Height float64    // scaled page height
}

// Bounds is the page's canvas rectangle.
func (p Placement) Bounds() geom.Rect {
	return geom.Rect{
		X0: p.Offset.X,
		Y0: p.Offset.Y,
		X1: p.Offset.X + p.Width,
		Y1: p.Offset.Y + p.Height,
	}
}

// Result is a full canvas layout.
type Result struct {
	Pages  []Placement
	Bounds geom.Rect // overall canvas size, canvas units
}

// PageAt returns the first page whose canvas rectangle contains pt, in page
// order.
func (r Result) PageAt(pt geom.Point) (Placement, bool) {
	for _, p := range r.Pages {
		if p.Bounds().Contains(pt) {
			return p, true
		}
	}
	return Placement{}, false
}

// CurrentPage returns the index of the first page whose canvas rectangle
// vertically straddles centerY, or -1 when no page does.
func (r Result) CurrentPage(centerY float64) int {
	for _, p := range r.Pages {
		b := p.Bounds()
		if b.Y0 <= centerY && centerY <= b.Y1 {
			return p.Index
		}
	}
	return -1
}

// Compute lays out pages with the given intrinsic sizes at scale. The
// layout is recomputed in full on every scale or mode change; there is no
// incremental path.
func Compute(sizes []geom.Rect, scale float64, mode Mode, viewportWidth float64) Result {
	res := Result{Pages: make([]Placement, 0, len(sizes))}

	var yOffset float64
	var rowX float64 // x position for the odd page of the current dual row

	for i, size := range sizes {
		w := size.Width() * scale
		h := size.Height() * scale

		var pos geom.Point
		switch mode {
		case Dual:
			if i%2 == 0 {
				pos = geom.Point{X: 0, Y: yOffset}
				rowX = w + Padding
				// an odd final page closes its own row
				if i == len(sizes)-1 {
					yOffset += h + Padding
				}
			} else {
				pos = geom.Point{X: rowX, Y: yOffset}
				prev := res.Pages[i-1].Height
				yOffset += math.Max(h, prev) + Padding
			}
		default:
			x := 0.0
			if w < viewportWidth {
				x = (viewportWidth - w) / 2
			}
			pos = geom.Point{X: x, Y: yOffset}
			yOffset += h + Padding
		}

		p := Placement{Index: i, Offset: pos, Width: w, Height: h}
		res.Pages = append(res.Pages, p)
		res.Bounds = res.Bounds.Union(p.Bounds())
	}
	return res
}
