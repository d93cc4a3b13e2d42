package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Canon(t *testing.T) {
	r := Rect{X0: 10, Y0: 20, X1: 2, Y1: 4}.Canon()

	assert.Equal(t, Rect{X0: 2, Y0: 4, X1: 10, Y1: 20}, r)
}

func TestRect_Contains_borders(t *testing.T) {
	r := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}

	assert.True(t, r.Contains(Point{X: 0, Y: 0}))
	assert.True(t, r.Contains(Point{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point{X: 5, Y: 5}))
	assert.False(t, r.Contains(Point{X: 10.01, Y: 5}))
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}

	assert.True(t, a.Intersects(Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}))
	assert.True(t, a.Intersects(Rect{X0: 10, Y0: 0, X1: 20, Y1: 10}), "touching edges intersect")
	assert.False(t, a.Intersects(Rect{X0: 11, Y0: 11, X1: 20, Y1: 20}))
}

func TestQuad_Bounds_skewed(t *testing.T) {
	q := Quad{
		UL: Point{X: 1, Y: 0},
		UR: Point{X: 11, Y: 1},
		LR: Point{X: 10, Y: 6},
		LL: Point{X: 0, Y: 5},
	}

	b := q.Bounds()
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 11, Y1: 6}, b)
	assert.Equal(t, Point{X: 5.5, Y: 3}, q.Center())
}

func TestQuad_Transform(t *testing.T) {
	q := QuadFromRect(Rect{X0: 1, Y0: 2, X1: 3, Y1: 4})

	got := q.Transform(2, Point{X: 10, Y: 20})

	assert.Equal(t, Point{X: 12, Y: 24}, got.UL)
	assert.Equal(t, Point{X: 16, Y: 28}, got.LR)
}

func TestPoint_DistSq(t *testing.T) {
	assert.Equal(t, 25.0, Point{X: 0, Y: 0}.DistSq(Point{X: 3, Y: 4}))
}
