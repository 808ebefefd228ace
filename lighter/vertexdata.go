// Package lighter computes static direct lighting into lightmaps.
//
// A scene is split into sectors. Every object of a sector owns its vertex
// data and one Primitive per triangle; each primitive covers a block of
// texels ("elements") of a shared lightmap page. Direct lighting walks
// every light of a sector, collects the primitives inside the light's
// bounding box from the sector's k-d tree and accumulates the reflected
// energy of every element into the lightmap.
package lighter

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex of an object
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// VertexData holds the vertices of one object together with their
// lightmap coordinates (in texels of the object's lightmap page)
type VertexData struct {
	Vertices    []Vertex
	LightmapUVs []mgl32.Vec2
}

// AddVertex appends a vertex and returns its index
func (vd *VertexData) AddVertex(position, normal mgl32.Vec3, lightmapUV mgl32.Vec2) int {
	vd.Vertices = append(vd.Vertices, Vertex{Position: position, Normal: normal})
	vd.LightmapUVs = append(vd.LightmapUVs, lightmapUV)
	return len(vd.Vertices) - 1
}

// Triangle indexes three vertices of a VertexData
type Triangle [3]int
