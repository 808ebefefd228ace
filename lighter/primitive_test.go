package lighter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTriangle returns a prepared primitive with distinct vertex normals
// whose lightmap uvs map one world unit to one texel
func newTestTriangle() *Primitive {
	o := NewObject("tri", 0)
	normals := []mgl32.Vec3{
		geom.Normalize(mgl32.Vec3{0.2, 0, 1}),
		geom.Normalize(mgl32.Vec3{0, 0.3, 1}),
		geom.Normalize(mgl32.Vec3{-0.1, -0.1, 1}),
	}
	o.VertexData.AddVertex(mgl32.Vec3{0, 0, 0}, normals[0], mgl32.Vec2{0, 0})
	o.VertexData.AddVertex(mgl32.Vec3{4, 0, 0}, normals[1], mgl32.Vec2{4, 0})
	o.VertexData.AddVertex(mgl32.Vec3{0, 3, 0}, normals[2], mgl32.Vec2{0, 3})
	prim := o.AddPrimitive(Triangle{0, 1, 2}, geom.Gray(1))
	prim.Prepare(0, 0)
	return prim
}

func TestComputePlanePointsAwayFromLitSide(t *testing.T) {
	prim := newTestTriangle()
	plane := prim.Plane()

	assert.InDelta(t, -1, plane.Normal[2], 1e-6)
	assert.InDelta(t, 0, plane.Distance(mgl32.Vec3{1, 1, 0}), 1e-6)
}

func TestComputePlaneZeroArea(t *testing.T) {
	o := NewObject("sliver", 0)
	n := mgl32.Vec3{0, 1, 0}
	o.VertexData.AddVertex(mgl32.Vec3{0, 0, 0}, n, mgl32.Vec2{0, 0})
	o.VertexData.AddVertex(mgl32.Vec3{1, 0, 0}, n, mgl32.Vec2{1, 0})
	o.VertexData.AddVertex(mgl32.Vec3{2, 0, 0}, n, mgl32.Vec2{2, 0})
	prim := o.AddPrimitive(Triangle{0, 1, 2}, geom.Gray(1))
	prim.Prepare(0, 0)

	assert.InDelta(t, -1, prim.Plane().Normal[1], 1e-6)
	assert.Equal(t, mgl32.Vec3{}, prim.UFormVector())
	assert.Zero(t, prim.ElementAreas().FullArea())
}

func TestComputeUVTransform(t *testing.T) {
	prim := newTestTriangle()

	assert.True(t, prim.UFormVector().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-6))
	assert.True(t, prim.VFormVector().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6))
	assert.True(t, prim.MinCoord().ApproxEqualThreshold(mgl32.Vec3{}, 1e-6))

	minU, maxU, minV, maxV := prim.ComputeMinMaxUVInt()
	assert.Equal(t, []int{0, 4, 0, 3}, []int{minU, maxU, minV, maxV})
}

func TestComputeUVTransformScaledAndOffset(t *testing.T) {
	o := NewObject("scaled", 0)
	n := mgl32.Vec3{0, 0, 1}
	// two texels per world unit, shifted by (10.5, 3.25)
	o.VertexData.AddVertex(mgl32.Vec3{1, 1, 2}, n, mgl32.Vec2{10.5, 3.25})
	o.VertexData.AddVertex(mgl32.Vec3{3, 1, 2}, n, mgl32.Vec2{14.5, 3.25})
	o.VertexData.AddVertex(mgl32.Vec3{1, 4, 2}, n, mgl32.Vec2{10.5, 9.25})
	prim := o.AddPrimitive(Triangle{0, 1, 2}, geom.Gray(1))
	prim.Prepare(0, 0)

	assert.True(t, prim.UFormVector().ApproxEqualThreshold(mgl32.Vec3{0.5, 0, 0}, 1e-6))
	assert.True(t, prim.VFormVector().ApproxEqualThreshold(mgl32.Vec3{0, 0.5, 0}, 1e-6))
	assert.Equal(t, mgl32.Vec2{10, 3}, prim.MinUV())
	assert.Equal(t, mgl32.Vec2{15, 10}, prim.MaxUV())
	// uv (10, 3) lies half a texel left and a quarter texel below vertex 0
	assert.True(t, prim.MinCoord().ApproxEqualThreshold(mgl32.Vec3{0.75, 0.875, 2}, 1e-5))
}

func TestBarycentricRoundTripAtVertices(t *testing.T) {
	prim := newTestTriangle()

	want := [][2]float32{{1, 0}, {0, 1}, {0, 0}}
	for i := 0; i < 3; i++ {
		lambda, my := prim.ComputeBaryCoords(prim.Position(i))
		assert.InDelta(t, want[i][0], lambda, 1e-5, "lambda at vertex %d", i)
		assert.InDelta(t, want[i][1], my, 1e-5, "my at vertex %d", i)

		n := prim.ComputeNormal(prim.Position(i))
		assert.True(t, n.ApproxEqualThreshold(prim.Normal(i), 1e-5), "normal at vertex %d: %v", i, n)
	}
}

func TestPointInsideAndSnap(t *testing.T) {
	prim := newTestTriangle()

	assert.True(t, prim.PointInside(mgl32.Vec3{1, 1, 0}))
	assert.False(t, prim.PointInside(mgl32.Vec3{3, 3, 0}))
	assert.False(t, prim.PointInside(mgl32.Vec3{-1, 1, 0}))

	snapped := prim.SnapToEdges(mgl32.Vec3{-1, 1, 0})
	assert.True(t, snapped.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6))
	assert.True(t, prim.PointInside(snapped))

	// each edge is closest once
	for _, tt := range []struct{ pt, want mgl32.Vec3 }{
		{mgl32.Vec3{2, -1, 0}, mgl32.Vec3{2, 0, 0}},
		{mgl32.Vec3{4, 3, 0}, mgl32.Vec3{2.56, 1.08, 0}},
		{mgl32.Vec3{-2, 2, 0}, mgl32.Vec3{0, 2, 0}},
	} {
		got := prim.SnapToEdges(tt.pt)
		assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-5), "snap %v: got %v", tt.pt, got)
	}

	// outside the hypotenuse, the normal comes from the closest edge point
	outside := mgl32.Vec3{4, 3, 0}
	assert.True(t, prim.ComputeNormal(outside).ApproxEqualThreshold(prim.ComputeNormal(prim.SnapToEdges(outside)), 1e-6))
}

func TestElementAreasMatchTriangle(t *testing.T) {
	prim := newTestTriangle()
	ea := prim.ElementAreas()

	// 5x4 texel rectangle
	assert.Equal(t, 20, ea.Len())
	assert.InDelta(t, 6, ea.FullArea(), 1e-4)

	sum := float32(0)
	for i := 0; i < ea.Len(); i++ {
		a := ea.Area(i)
		assert.GreaterOrEqual(t, a, float32(0))
		assert.LessOrEqual(t, a, float32(1))
		sum += a
	}
	assert.InDelta(t, 6, sum, 1e-4)

	// texel (0, 0) is fully covered, (4, 3) lies outside the hypotenuse
	assert.InDelta(t, 1, ea.Area(0), 1e-5)
	assert.Equal(t, float32(0), ea.Area(3*5+4))
	assert.Equal(t, float32(0), ea.Area(-1))
	assert.Equal(t, float32(0), ea.Area(20))
}

func TestElementAreasEncoding(t *testing.T) {
	dense := make([]float32, 200)
	for i := range dense {
		switch i % 4 {
		case 0:
			dense[i] = 0
		case 1:
			dense[i] = 1
		case 2:
			dense[i] = float32(i) / 400
		case 3:
			dense[i] = 1.5
		}
	}
	ea := NewElementAreas(dense)

	require.Equal(t, len(dense), ea.Len())
	for i, a := range dense {
		want := a
		if want > 1 {
			want = 1
		}
		assert.Equal(t, want, ea.Area(i), "element %d", i)
	}
	assert.Equal(t, 150, ea.CoveredCount())

	var zero ElementAreas
	assert.Equal(t, float32(0), zero.Area(0))
	assert.Equal(t, 0, zero.CoveredCount())
}

func TestElementIndexAndCenter(t *testing.T) {
	prim := newTestTriangle()

	for i := 0; i < prim.ElementCount(); i++ {
		c := prim.ComputeElementCenter(i)
		assert.Equal(t, i, prim.ComputeElementIndex(c), "element %d", i)
	}

	u, v := prim.ElementUV(7)
	assert.Equal(t, 2, u)
	assert.Equal(t, 1, v)
	assert.True(t, prim.Element(7).Center().ApproxEqualThreshold(mgl32.Vec3{2.5, 1.5, 0}, 1e-6))

	// points off the rectangle clamp to the border elements
	assert.Equal(t, 0, prim.ComputeElementIndex(mgl32.Vec3{-10, -10, 0}))
	assert.Equal(t, prim.ElementCount()-1, prim.ComputeElementIndex(mgl32.Vec3{10, 10, 0}))
}

func TestPatchGrid(t *testing.T) {
	prim := newTestTriangle()
	prim.Prepare(2, 2)

	assert.Equal(t, 3, prim.UPatches())
	assert.Equal(t, 2, prim.VPatches())
	assert.Len(t, prim.Patches(), 6)

	prim.addPatchEnergy(PatchIndex(3, 2, 0, 0, 2, 2, prim.UPatches()), geom.Gray(1))
	prim.addPatchEnergy(PatchIndex(2, 3, 0, 0, 2, 2, prim.UPatches()), geom.Gray(1))
	prim.addPatchEnergy(99, geom.Gray(1))

	patches := prim.Patches()
	assert.Equal(t, geom.Gray(2), patches[4].Energy)
	assert.Equal(t, geom.Black, patches[0].Energy)
}

func TestFactoryReflectance(t *testing.T) {
	var fp *FactoryPrimitive
	assert.Equal(t, geom.Black, fp.GetReflectanceColor())

	fp = &FactoryPrimitive{ReflectanceColor: geom.Color{R: -1, G: 0.5, B: 2}}
	assert.Equal(t, geom.Color{R: 0, G: 0.5, B: 2}, fp.GetReflectanceColor())
}
