package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDegenerate(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, Normalize(mgl32.Vec3{}))
	n := Normalize(mgl32.Vec3{0, 3, 4})
	assert.InDelta(t, 1.0, float64(n.Len()), 1e-6)
}

func TestClosestPointOnSegment(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{10, 0, 0}

	tests := []struct {
		name   string
		p      mgl32.Vec3
		expect mgl32.Vec3
		distSq float32
	}{
		{"middle", mgl32.Vec3{5, 2, 0}, mgl32.Vec3{5, 0, 0}, 4},
		{"before start", mgl32.Vec3{-3, 0, 0}, a, 9},
		{"past end", mgl32.Vec3{12, 1, 0}, b, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, d := ClosestPointOnSegment(tt.p, a, b)
			assert.InDelta(t, float64(tt.expect.X()), float64(q.X()), 1e-5)
			assert.InDelta(t, float64(tt.expect.Y()), float64(q.Y()), 1e-5)
			assert.InDelta(t, float64(tt.distSq), float64(d), 1e-4)
		})
	}
}

func TestBoxOverlapAndClip(t *testing.T) {
	b := Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	assert.True(t, b.Overlaps(Box{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{2, 2, 2}}))
	assert.False(t, b.Overlaps(Box{Min: mgl32.Vec3{1.1, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}))
	assert.True(t, EmptyBox().IsEmpty())
	assert.Equal(t, 1, BoxFromPoints(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 5, 2}).LongestAxis())

	t0, t1, ok := b.ClipSegment(mgl32.Vec3{-1, 0.5, 0.5}, mgl32.Vec3{3, 0, 0}, 0, 1)
	assert.True(t, ok)
	assert.InDelta(t, 1.0/3.0, float64(t0), 1e-5)
	assert.InDelta(t, 2.0/3.0, float64(t1), 1e-5)

	_, _, ok = b.ClipSegment(mgl32.Vec3{-1, 2, 0.5}, mgl32.Vec3{3, 0, 0}, 0, 1)
	assert.False(t, ok)
}

func TestIntersectSegmentTriangle(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{1, 0, 0}
	c := mgl32.Vec3{0, 1, 0}

	hit, ok := IntersectSegmentTriangle(mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{0, 0, -2}, a, b, c, 0, 1)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, float64(hit), 1e-6)

	// segment stops short of the triangle
	_, ok = IntersectSegmentTriangle(mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{0, 0, -0.5}, a, b, c, 0, 1)
	assert.False(t, ok)

	// passes outside
	_, ok = IntersectSegmentTriangle(mgl32.Vec3{0.8, 0.8, 1}, mgl32.Vec3{0, 0, -2}, a, b, c, 0, 1)
	assert.False(t, ok)
}

func TestNewellNormalMatchesCross(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{2, 0, 0}
	c := mgl32.Vec3{0, 3, 0}
	n := NewellNormal(a, b, c)
	cross := b.Sub(a).Cross(c.Sub(a))
	assert.InDelta(t, float64(cross.Z()), float64(n.Z()), 1e-5)
	assert.InDelta(t, 3.0, float64(TriangleArea(a, b, c)), 1e-6)
}

func TestClipPolygonToRect(t *testing.T) {
	tri := []mgl32.Vec2{{0, 0}, {2, 0}, {0, 2}}

	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float32
		area                   float32
	}{
		{"cell fully inside", 0, 0, 1, 1, 1},
		{"cell on hypotenuse", 1, 0, 2, 1, 0.5},
		{"cell outside", 1, 1, 2, 2, 0},
		{"rect contains triangle", -1, -1, 3, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clipped := ClipPolygonToRect(tri, tt.minX, tt.minY, tt.maxX, tt.maxY, nil)
			assert.InDelta(t, float64(tt.area), float64(PolygonArea2D(clipped)), 1e-5)
		})
	}
}

func TestColor(t *testing.T) {
	c := Color{1, 2, 3}.Mul(Gray(0.5)).Add(Color{0, 0, 1}).Scale(2)
	assert.Equal(t, Color{1, 2, 5}, c)
	assert.Equal(t, float32(5), c.MaxComponent())
	assert.True(t, Black.IsBlack())
	assert.True(t, c.IsValid())
}
