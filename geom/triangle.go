package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewellNormal computes the (unnormalized) polygon normal with Newell's
// method. For a triangle this matches (v1-v0)x(v2-v0) but stays stable
// for slivers.
func NewellNormal(points ...mgl32.Vec3) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	return n
}

// TriangleArea returns the world-space area of a triangle
func TriangleArea(a, b, c mgl32.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Len() * 0.5
}

// IntersectSegmentTriangle intersects the segment from + t*dir, t in
// [tMin, tMax], with triangle (a, b, c) using Moller-Trumbore. Both faces
// count as hits.
func IntersectSegmentTriangle(from, dir, a, b, c mgl32.Vec3, tMin, tMax float32) (float32, bool) {
	const eps = 1e-9

	edge1 := b.Sub(a)
	edge2 := c.Sub(a)

	h := dir.Cross(edge2)
	det := edge1.Dot(h)
	if det > -eps && det < eps {
		return 0, false
	}

	f := 1 / det
	s := from.Sub(a)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}

// PolygonArea2D returns the unsigned area of a simple 2D polygon
func PolygonArea2D(poly []mgl32.Vec2) float32 {
	if len(poly) < 3 {
		return 0
	}
	var sum float32
	for i := range poly {
		p := poly[i]
		q := poly[(i+1)%len(poly)]
		sum += p[0]*q[1] - q[0]*p[1]
	}
	return math32.Abs(sum) * 0.5
}

// ClipPolygonToRect clips a convex 2D polygon against the axis-aligned
// rectangle [minX,maxX]x[minY,maxY] (Sutherland-Hodgman). The result is
// written into buf, which is reused when large enough.
func ClipPolygonToRect(poly []mgl32.Vec2, minX, minY, maxX, maxY float32, buf []mgl32.Vec2) []mgl32.Vec2 {
	out := append(buf[:0], poly...)
	var tmp []mgl32.Vec2

	// left, right, bottom, top
	edges := [4]struct {
		axis  int
		value float32
		keep  float32 // +1 keeps >= value, -1 keeps <= value
	}{
		{0, minX, 1}, {0, maxX, -1}, {1, minY, 1}, {1, maxY, -1},
	}

	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		tmp = tmp[:0]
		inside := func(p mgl32.Vec2) bool {
			return (p[e.axis]-e.value)*e.keep >= 0
		}
		for i := range out {
			cur := out[i]
			prev := out[(i+len(out)-1)%len(out)]
			curIn, prevIn := inside(cur), inside(prev)
			if curIn != prevIn {
				t := (e.value - prev[e.axis]) / (cur[e.axis] - prev[e.axis])
				tmp = append(tmp, prev.Add(cur.Sub(prev).Mul(t)))
			}
			if curIn {
				tmp = append(tmp, cur)
			}
		}
		out = append(out[:0], tmp...)
	}
	return out
}
