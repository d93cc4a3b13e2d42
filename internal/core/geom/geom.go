// Package geom provides the 2D primitives shared by the layout, selection,
// and engine packages. All values are in page-local units unless a function
// says otherwise.
package geom

import "math"

// Point is a location in page-local units.
type Point struct {
	X float64
	Y float64
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p with both coordinates multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle. A Rect is normalized when X0 <= X1 and
// Y0 <= Y1; use Canon to normalize.
type Rect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// RectFromPoints returns the normalized rectangle spanning p and q.
func RectFromPoints(p, q Point) Rect {
	return Rect{X0: p.X, Y0: p.Y, X1: q.X, Y1: q.Y}.Canon()
}

// Canon returns r with its corners swapped as needed so that X0 <= X1 and
// Y0 <= Y1.
func (r Rect) Canon() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Intersects reports whether r and s overlap. Touching edges count as an
// intersection.
func (r Rect) Intersects(s Rect) bool {
	return r.X0 <= s.X1 && s.X0 <= r.X1 && r.Y0 <= s.Y1 && s.Y0 <= r.Y1
}

// Union returns the smallest rectangle covering both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, s.X0),
		Y0: math.Min(r.Y0, s.Y0),
		X1: math.Max(r.X1, s.X1),
		Y1: math.Max(r.Y1, s.Y1),
	}
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Scale returns r with all coordinates multiplied by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X0: r.X0 * s, Y0: r.Y0 * s, X1: r.X1 * s, Y1: r.Y1 * s}
}

// IsEmpty reports whether r has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Quad is one atomic selectable text run: four corners in the order
// upper-left, upper-right, lower-right, lower-left.
type Quad struct {
	UL, UR, LR, LL Point
}

// QuadFromRect returns the axis-aligned quad covering r.
func QuadFromRect(r Rect) Quad {
	r = r.Canon()
	return Quad{
		UL: Point{X: r.X0, Y: r.Y0},
		UR: Point{X: r.X1, Y: r.Y0},
		LR: Point{X: r.X1, Y: r.Y1},
		LL: Point{X: r.X0, Y: r.Y1},
	}
}

// Bounds returns the bounding rectangle of q.
func (q Quad) Bounds() Rect {
	minX := math.Min(math.Min(q.UL.X, q.UR.X), math.Min(q.LR.X, q.LL.X))
	maxX := math.Max(math.Max(q.UL.X, q.UR.X), math.Max(q.LR.X, q.LL.X))
	minY := math.Min(math.Min(q.UL.Y, q.UR.Y), math.Min(q.LR.Y, q.LL.Y))
	maxY := math.Max(math.Max(q.UL.Y, q.UR.Y), math.Max(q.LR.Y, q.LL.Y))
	return Rect{X0: minX, Y0: minY, X1: maxX, Y1: maxY}
}

// Contains reports whether p falls inside the bounding rectangle of q.
// Selection hit testing works on bounding boxes, not the exact polygon.
func (q Quad) Contains(p Point) bool {
	return q.Bounds().Contains(p)
}

// Center returns the midpoint of the quad's bounding rectangle.
func (q Quad) Center() Point {
	return q.Bounds().Center()
}

// Transform returns q scaled by s and then shifted by off.
func (q Quad) Transform(s float64, off Point) Quad {
	return Quad{
		UL: q.UL.Scale(s).Add(off),
		UR: q.UR.Scale(s).Add(off),
		LR: q.LR.Scale(s).Add(off),
		LL: q.LL.Scale(s).Add(off),
	}
}
