package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Which side of a plane something lies on
const (
	Behind  = -1
	OnPlane = 0
	InFront = 1
	Split   = 2
)

// Plane in the form Normal . p + D = 0
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// NewPlane builds a plane with the given normal passing through point
func NewPlane(normal, point mgl32.Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// Distance returns the signed distance of p from the plane
// (only a true distance if the normal is unit length)
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// ClassifyPoint reports which side of the plane pt is on
func (p Plane) ClassifyPoint(pt mgl32.Vec3, eps float32) int {
	d := p.Distance(pt)
	if d > eps {
		return InFront
	}
	if d < -eps {
		return Behind
	}
	return OnPlane
}

// Flipped returns the plane facing the other way
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Mul(-1), D: -p.D}
}
