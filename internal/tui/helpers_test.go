package tui

import (
	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/fetch"
)

// quadAt is a 40x10 word box at (x, y) in page-local units.
func quadAt(x, y float64) geom.Quad {
	return geom.QuadFromRect(geom.Rect{X0: x, Y0: y, X1: x + 40, Y1: y + 10})
}

func fetchedDoc(label string) fetch.Document {
	return fetch.Document{Label: label, Data: []byte("%PDF-1.7")}
}
