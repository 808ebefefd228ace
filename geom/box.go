package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns an inverted box that any point will extend
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// BoxFromPoints returns the smallest box containing all points
func BoxFromPoints(points ...mgl32.Vec3) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// BoxAround returns the cube of the given half size centered on c
func BoxAround(c mgl32.Vec3, halfSize float32) Box {
	h := mgl32.Vec3{halfSize, halfSize, halfSize}
	return Box{Min: c.Sub(h), Max: c.Add(h)}
}

// IsEmpty reports whether the box contains no points
func (b Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend returns the box grown to include p
func (b Box) Extend(p mgl32.Vec3) Box {
	return Box{Min: MinVec(b.Min, p), Max: MaxVec(b.Max, p)}
}

// Union returns the box containing both boxes
func (b Box) Union(o Box) Box {
	return Box{Min: MinVec(b.Min, o.Min), Max: MaxVec(b.Max, o.Max)}
}

// Overlaps reports whether the boxes share any point (touching counts)
func (b Box) Overlaps(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether p is inside the box
func (b Box) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Center of the box
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size of the box along each axis
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestAxis returns the axis along which the box is widest
func (b Box) LongestAxis() int {
	s := b.Size()
	if s[0] >= s[1] && s[0] >= s[2] {
		return 0
	}
	if s[1] >= s[2] {
		return 1
	}
	return 2
}

// ClipSegment clips the parametric segment from + t*(to-from) against the box
// using the slab method, starting from the interval [tMin, tMax].
func (b Box) ClipSegment(from, dir mgl32.Vec3, tMin, tMax float32) (float32, float32, bool) {
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < Epsilon {
			if from[i] < b.Min[i] || from[i] > b.Max[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t0 := (b.Min[i] - from[i]) * inv
		t1 := (b.Max[i] - from[i]) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}
