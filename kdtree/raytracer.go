package kdtree

import (
	"github.com/go-gl/mathgl/mgl32"
)

// rayEpsilon keeps shadow rays from hitting their own start and end points
const rayEpsilon = 1e-4

// Raytracer answers visibility questions against one tree
type Raytracer[T Item] struct {
	Tree *Tree[T]
}

func NewRaytracer[T Item](tree *Tree[T]) *Raytracer[T] {
	return &Raytracer[T]{Tree: tree}
}

// Occluded reports whether anything but exclude blocks the segment between
// from and to
func (r *Raytracer[T]) Occluded(from, to mgl32.Vec3, exclude T) bool {
	dir := to.Sub(from)
	if dir.LenSqr() == 0 {
		return false
	}
	return r.Tree.AnyHit(from, dir, rayEpsilon, 1-rayEpsilon, exclude)
}

// vistest5Offsets are the sample positions in units of the element
// footprint: the center and four points around it
var vistest5Offsets = [5][2]float32{
	{0, 0},
	{-0.25, -0.25},
	{0.25, -0.25},
	{-0.25, 0.25},
	{0.25, 0.25},
}

// Vistest5 shoots five rays from an element towards a light: one from
// point and four from positions jittered along the element's uAxis/vAxis
// footprint. Returns the fraction of rays that reached the light.
func (r *Raytracer[T]) Vistest5(point, uAxis, vAxis, lightPos mgl32.Vec3, exclude T) float32 {
	visible := 0
	for _, o := range vistest5Offsets {
		from := point.Add(uAxis.Mul(o[0])).Add(vAxis.Mul(o[1]))
		if !r.Occluded(from, lightPos, exclude) {
			visible++
		}
	}
	return float32(visible) / float32(len(vistest5Offsets))
}
