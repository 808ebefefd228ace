package lighter

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
)

// PrimitiveBase is the part shared by factory and instance primitives: a
// triangle of some vertex data and the plane through it
type PrimitiveBase struct {
	// Not owned, belongs to the object
	vertexData *VertexData

	triangle Triangle

	// Computed plane. Its normal points away from the lit side of the face,
	// i.e. opposite to (v1-v0)x(v2-v0) and to the vertex normals.
	plane geom.Plane
}

func (p *PrimitiveBase) Position(i int) mgl32.Vec3 {
	return p.vertexData.Vertices[p.triangle[i]].Position
}

func (p *PrimitiveBase) Normal(i int) mgl32.Vec3 {
	return p.vertexData.Vertices[p.triangle[i]].Normal
}

// Center returns the centroid
func (p *PrimitiveBase) Center() mgl32.Vec3 {
	return p.Position(0).Add(p.Position(1)).Add(p.Position(2)).Mul(1.0 / 3.0)
}

// Area returns the world-space area
func (p *PrimitiveBase) Area() float32 {
	return geom.TriangleArea(p.Position(0), p.Position(1), p.Position(2))
}

// Extent returns the min/max coordinate along one axis
func (p *PrimitiveBase) Extent(axis int) (float32, float32) {
	min := p.Position(0)[axis]
	max := min
	for i := 1; i < 3; i++ {
		c := p.Position(i)[axis]
		min = math32.Min(min, c)
		max = math32.Max(max, c)
	}
	return min, max
}

// Classify reports on which side of plane the primitive lies:
// geom.InFront, geom.Behind, geom.OnPlane or geom.Split
func (p *PrimitiveBase) Classify(plane geom.Plane) int {
	front, back := 0, 0
	for i := 0; i < 3; i++ {
		switch plane.ClassifyPoint(p.Position(i), geom.Epsilon) {
		case geom.InFront:
			front++
		case geom.Behind:
			back++
		}
	}
	switch {
	case front > 0 && back > 0:
		return geom.Split
	case front > 0:
		return geom.InFront
	case back > 0:
		return geom.Behind
	}
	return geom.OnPlane
}

// ComputePlane calculates and saves the primitive plane. Must be called
// again whenever a vertex position changes.
func (p *PrimitiveBase) ComputePlane() {
	p0, p1, p2 := p.Position(0), p.Position(1), p.Position(2)

	n := geom.NewellNormal(p0, p1, p2)
	if n.Len() < geom.Epsilon {
		// Sliver or collapsed triangle, best effort from the vertex normals
		n = p.Normal(0).Add(p.Normal(1)).Add(p.Normal(2))
	}
	n = geom.Normalize(n).Mul(-1)
	p.plane = geom.NewPlane(n, p0)
}

// ComputeMinMaxUV returns the bounding rectangle of the triangle in the
// given uv set
func (p *PrimitiveBase) ComputeMinMaxUV(uvs []mgl32.Vec2) (mgl32.Vec2, mgl32.Vec2) {
	min := uvs[p.triangle[0]]
	max := min
	for i := 1; i < 3; i++ {
		uv := uvs[p.triangle[i]]
		min = mgl32.Vec2{math32.Min(min[0], uv[0]), math32.Min(min[1], uv[1])}
		max = mgl32.Vec2{math32.Max(max[0], uv[0]), math32.Max(max[1], uv[1])}
	}
	return min, max
}

func (p *PrimitiveBase) Triangle() Triangle           { return p.triangle }
func (p *PrimitiveBase) SetTriangle(t Triangle)       { p.triangle = t }
func (p *PrimitiveBase) Plane() geom.Plane            { return p.plane }
func (p *PrimitiveBase) VertexData() *VertexData      { return p.vertexData }
func (p *PrimitiveBase) SetVertexData(vd *VertexData) { p.vertexData = vd }

// FactoryPrimitive is the primitive as authored, carrying the material
type FactoryPrimitive struct {
	PrimitiveBase
	ReflectanceColor geom.Color
}

func NewFactoryPrimitive(vd *VertexData, t Triangle, reflectance geom.Color) *FactoryPrimitive {
	fp := &FactoryPrimitive{
		PrimitiveBase:    PrimitiveBase{vertexData: vd, triangle: t},
		ReflectanceColor: reflectance,
	}
	fp.ComputePlane()
	return fp
}

// GetReflectanceColor returns the diffuse reflectance. A missing primitive
// or an invalid color reads as black.
func (fp *FactoryPrimitive) GetReflectanceColor() geom.Color {
	if fp == nil || !fp.ReflectanceColor.IsValid() {
		return geom.Black
	}
	return fp.ReflectanceColor.ClampNegative()
}

// Primitive is a world-space triangle prepared for lighting. After
// Prepare it is read-only; only its radiosity patches are written while
// shading.
type Primitive struct {
	PrimitiveBase

	elementAreas ElementAreas

	// World-space step of one lightmap texel along u and v
	uFormVector mgl32.Vec3
	vFormVector mgl32.Vec3

	// World position of lightmap coordinate minUV
	minCoord mgl32.Vec3
	// Texel bounding rectangle, floored/ceiled
	minUV mgl32.Vec2
	maxUV mgl32.Vec2

	radObject *Object
	original  *FactoryPrimitive

	globalLightmapID int

	// Barycentric coordinates of p are
	// lambda = (p - v2) . lambdaCoeffTV, my = (p - v2) . myCoeffTV
	lambdaCoeffTV mgl32.Vec3
	myCoeffTV     mgl32.Vec3

	uPatches int
	vPatches int
	patchMu  sync.Mutex
	patches  []RadPatch
}

func NewPrimitive(vd *VertexData, t Triangle) *Primitive {
	return &Primitive{PrimitiveBase: PrimitiveBase{vertexData: vd, triangle: t}}
}

// Prepare computes all derived data and the element coverage. Patches
// are only allocated when patchResU/patchResV are positive.
func (p *Primitive) Prepare(patchResU, patchResV int) {
	p.ComputePlane()
	p.ComputeUVTransform()
	p.ComputeBaryCoeffs()
	p.computeElementAreas()

	p.patches = nil
	p.uPatches, p.vPatches = 0, 0
	if patchResU > 0 && patchResV > 0 {
		uWidth, vHeight := p.elementGridSize()
		p.uPatches = (uWidth + patchResU - 1) / patchResU
		p.vPatches = (vHeight + patchResV - 1) / patchResV
		p.patches = make([]RadPatch, p.uPatches*p.vPatches)
	}
}

// ComputeUVTransform solves for the world-space vectors spanning one
// lightmap texel, so that position = minCoord + u*uFormVector + v*vFormVector
// relative to minUV. Degenerate uv mappings give zero vectors.
func (p *Primitive) ComputeUVTransform() {
	uvs := p.vertexData.LightmapUVs
	min, max := p.ComputeMinMaxUV(uvs)
	p.minUV = mgl32.Vec2{math32.Floor(min[0]), math32.Floor(min[1])}
	p.maxUV = mgl32.Vec2{math32.Ceil(max[0]), math32.Ceil(max[1])}

	p0, p1, p2 := p.Position(0), p.Position(1), p.Position(2)
	t0, t1, t2 := uvs[p.triangle[0]], uvs[p.triangle[1]], uvs[p.triangle[2]]

	du1, dv1 := t1[0]-t0[0], t1[1]-t0[1]
	du2, dv2 := t2[0]-t0[0], t2[1]-t0[1]
	det := du1*dv2 - du2*dv1

	if math32.Abs(det) < geom.Epsilon {
		p.uFormVector = mgl32.Vec3{}
		p.vFormVector = mgl32.Vec3{}
		p.minCoord = p0
		return
	}

	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	invDet := 1 / det
	p.uFormVector = e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(invDet)
	p.vFormVector = e2.Mul(du1).Sub(e1.Mul(du2)).Mul(invDet)

	p.minCoord = p0.
		Add(p.uFormVector.Mul(p.minUV[0] - t0[0])).
		Add(p.vFormVector.Mul(p.minUV[1] - t0[1]))
}

// ComputeBaryCoeffs precomputes the vectors used by ComputeBaryCoords
func (p *Primitive) ComputeBaryCoeffs() {
	v2 := p.Position(2)
	e0 := p.Position(0).Sub(v2)
	e1 := p.Position(1).Sub(v2)

	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	denom := d00*d11 - d01*d01
	if math32.Abs(denom) < geom.Epsilon*geom.Epsilon {
		p.lambdaCoeffTV = mgl32.Vec3{}
		p.myCoeffTV = mgl32.Vec3{}
		return
	}
	inv := 1 / denom
	p.lambdaCoeffTV = e0.Mul(d11).Sub(e1.Mul(d01)).Mul(inv)
	p.myCoeffTV = e1.Mul(d00).Sub(e0.Mul(d01)).Mul(inv)
}

// ComputeBaryCoords returns the weights of vertex 0 and vertex 1 for a
// point on (or near) the triangle plane; vertex 2 gets 1-lambda-my
func (p *Primitive) ComputeBaryCoords(pt mgl32.Vec3) (lambda, my float32) {
	d := pt.Sub(p.Position(2))
	return d.Dot(p.lambdaCoeffTV), d.Dot(p.myCoeffTV)
}

// PointInside reports whether pt projects inside the triangle
func (p *Primitive) PointInside(pt mgl32.Vec3) bool {
	const eps = 1e-5
	lambda, my := p.ComputeBaryCoords(pt)
	return lambda >= -eps && my >= -eps && lambda+my <= 1+eps
}

// SnapToEdges returns the point on the triangle boundary closest to pt
func (p *Primitive) SnapToEdges(pt mgl32.Vec3) mgl32.Vec3 {
	best := pt
	minDistSq := float32(math32.MaxFloat32)
	for i := 0; i < 3; i++ {
		q, distSq := geom.ClosestPointOnSegment(pt, p.Position(i), p.Position((i+1)%3))
		if distSq < minDistSq {
			minDistSq = distSq
			best = q
		}
	}
	return best
}

// ComputeNormal returns the interpolated vertex normal at pt. Points
// outside the triangle use the closest point on its boundary.
func (p *Primitive) ComputeNormal(pt mgl32.Vec3) mgl32.Vec3 {
	if !p.PointInside(pt) {
		pt = p.SnapToEdges(pt)
	}
	lambda, my := p.ComputeBaryCoords(pt)
	n := p.Normal(0).Mul(lambda).
		Add(p.Normal(1).Mul(my)).
		Add(p.Normal(2).Mul(1 - lambda - my))
	return geom.Normalize(n)
}

// ComputeMinMaxUVInt returns the element rectangle in lightmap texels
func (p *Primitive) ComputeMinMaxUVInt() (minU, maxU, minV, maxV int) {
	return int(p.minUV[0]), int(p.maxUV[0]), int(p.minUV[1]), int(p.maxUV[1])
}

func (p *Primitive) elementGridSize() (int, int) {
	minU, maxU, minV, maxV := p.ComputeMinMaxUVInt()
	return maxU - minU + 1, maxV - minV + 1
}

// computeElementAreas rasterizes the uv triangle against the texel grid,
// recording the covered fraction of every texel
func (p *Primitive) computeElementAreas() {
	uvs := p.vertexData.LightmapUVs
	tri := []mgl32.Vec2{uvs[p.triangle[0]], uvs[p.triangle[1]], uvs[p.triangle[2]]}

	minU, maxU, minV, maxV := p.ComputeMinMaxUVInt()
	areas := make([]float32, 0, (maxU-minU+1)*(maxV-minV+1))

	degenerate := p.uFormVector.Cross(p.vFormVector).Len() < geom.Epsilon
	var buf []mgl32.Vec2
	for v := minV; v <= maxV; v++ {
		for u := minU; u <= maxU; u++ {
			if degenerate {
				areas = append(areas, 0)
				continue
			}
			buf = geom.ClipPolygonToRect(tri, float32(u), float32(v), float32(u+1), float32(v+1), buf)
			areas = append(areas, geom.PolygonArea2D(buf))
		}
	}
	p.elementAreas = NewElementAreas(areas)
}

// ElementCount returns the number of elements in the texel rectangle
func (p *Primitive) ElementCount() int {
	return p.elementAreas.Len()
}

// ElementUV returns the element offset from minUV
func (p *Primitive) ElementUV(index int) (u, v int) {
	uWidth, _ := p.elementGridSize()
	return index % uWidth, index / uWidth
}

// ComputeElementCenter returns the world position of an element center
func (p *Primitive) ComputeElementCenter(index int) mgl32.Vec3 {
	u, v := p.ElementUV(index)
	return p.minCoord.
		Add(p.uFormVector.Mul(float32(u) + 0.5)).
		Add(p.vFormVector.Mul(float32(v) + 0.5))
}

// ComputeElementIndex returns the element containing the projection of pt,
// clamped to the element rectangle
func (p *Primitive) ComputeElementIndex(pt mgl32.Vec3) int {
	n := p.uFormVector.Cross(p.vFormVector)
	uDual := p.vFormVector.Cross(n)
	vDual := n.Cross(p.uFormVector)
	uDen := p.uFormVector.Dot(uDual)
	vDen := p.vFormVector.Dot(vDual)
	if math32.Abs(uDen) < geom.Epsilon || math32.Abs(vDen) < geom.Epsilon {
		return 0
	}

	d := pt.Sub(p.minCoord)
	uWidth, vHeight := p.elementGridSize()
	u := clampInt(int(math32.Floor(d.Dot(uDual)/uDen)), 0, uWidth-1)
	v := clampInt(int(math32.Floor(d.Dot(vDual)/vDen)), 0, vHeight-1)
	return v*uWidth + u
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Bounds implements kdtree.Item
func (p *Primitive) Bounds() geom.Box {
	return geom.BoxFromPoints(p.Position(0), p.Position(1), p.Position(2))
}

// IntersectSegment implements kdtree.Item
func (p *Primitive) IntersectSegment(from, dir mgl32.Vec3, tMin, tMax float32) (float32, bool) {
	return geom.IntersectSegmentTriangle(from, dir, p.Position(0), p.Position(1), p.Position(2), tMin, tMax)
}

// Element returns a reference to one element of this primitive
func (p *Primitive) Element(index int) ElementProxy {
	return ElementProxy{Primitive: p, Element: index}
}

// ElementAt returns the element containing pt
func (p *Primitive) ElementAt(pt mgl32.Vec3) ElementProxy {
	return p.Element(p.ComputeElementIndex(pt))
}

// reflectance is the material color used for shading
func (p *Primitive) reflectance() geom.Color {
	return p.original.GetReflectanceColor()
}

// addPatchEnergy accumulates energy into a radiosity patch
func (p *Primitive) addPatchEnergy(index int, energy geom.Color) {
	if index < 0 || index >= len(p.patches) {
		return
	}
	p.patchMu.Lock()
	p.patches[index].Energy = p.patches[index].Energy.Add(energy)
	p.patchMu.Unlock()
}

func (p *Primitive) ElementAreas() *ElementAreas               { return &p.elementAreas }
func (p *Primitive) UFormVector() mgl32.Vec3                   { return p.uFormVector }
func (p *Primitive) VFormVector() mgl32.Vec3                   { return p.vFormVector }
func (p *Primitive) MinCoord() mgl32.Vec3                      { return p.minCoord }
func (p *Primitive) MinUV() mgl32.Vec2                         { return p.minUV }
func (p *Primitive) MaxUV() mgl32.Vec2                         { return p.maxUV }
func (p *Primitive) Object() *Object                           { return p.radObject }
func (p *Primitive) SetObject(o *Object)                       { p.radObject = o }
func (p *Primitive) OriginalPrimitive() *FactoryPrimitive      { return p.original }
func (p *Primitive) SetOriginalPrimitive(fp *FactoryPrimitive) { p.original = fp }
func (p *Primitive) GlobalLightmapID() int                     { return p.globalLightmapID }
func (p *Primitive) SetGlobalLightmapID(id int)                { p.globalLightmapID = id }
func (p *Primitive) UPatches() int                             { return p.uPatches }
func (p *Primitive) VPatches() int                             { return p.vPatches }

// Patches returns a copy of the radiosity patches
func (p *Primitive) Patches() []RadPatch {
	p.patchMu.Lock()
	defer p.patchMu.Unlock()
	return append([]RadPatch(nil), p.patches...)
}

// ElementProxy refers to a single element (texel) of a primitive
type ElementProxy struct {
	Primitive *Primitive
	Element   int
}

// Area returns the covered fraction of the element
func (e ElementProxy) Area() float32 {
	return e.Primitive.elementAreas.Area(e.Element)
}

// Center returns the world position of the element center
func (e ElementProxy) Center() mgl32.Vec3 {
	return e.Primitive.ComputeElementCenter(e.Element)
}
