package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for degenerate length and area checks
const Epsilon = float32(1e-6)

// Normalize returns v scaled to unit length, or the zero vector if v is degenerate
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < Epsilon || math32.IsInf(l, 0) || math32.IsNaN(l) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Axis returns the component of v along the given axis (0 = X, 1 = Y, 2 = Z)
func Axis(v mgl32.Vec3, axis int) float32 {
	return v[axis]
}

// DominantAxis returns the axis with the largest absolute component
func DominantAxis(v mgl32.Vec3) int {
	ax, ay, az := math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])
	if ax >= ay && ax >= az {
		return 0
	}
	if ay >= az {
		return 1
	}
	return 2
}

// ClosestPointOnSegment projects p on the segment [a, b] and clamps the
// result to the segment. Also returns the squared distance from p.
func ClosestPointOnSegment(p, a, b mgl32.Vec3) (mgl32.Vec3, float32) {
	d := b.Sub(a)
	length := d.Len()
	if length < Epsilon {
		return a, p.Sub(a).LenSqr()
	}
	dn := d.Mul(1 / length)
	f := p.Sub(a).Dot(dn)
	f = Clamp(f, 0, length)
	q := a.Add(dn.Mul(f))
	return q, p.Sub(q).LenSqr()
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// MinVec returns the component-wise minimum of a and b
func MinVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

// MaxVec returns the component-wise maximum of a and b
func MaxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}
