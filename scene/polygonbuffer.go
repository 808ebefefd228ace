package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	LightmapVertexSize = 5
)

// PageRange is the run of vertices drawn with one lightmap page
type PageRange struct {
	Page       int
	VertOffset int32
	VertCount  int32
}

// PolygonBuffer holds triangles ready to be drawn, grouped by page
type PolygonBuffer struct {
	Buffer []float32 // Contains vertices and lightmap UV
	Pages  []PageRange
}

// NewPolygonBuffer triangulates the faces and arranges them by page.
// Lightmap coordinates are normalized to the page size.
func NewPolygonBuffer(faces []*Face, pageSize int) *PolygonBuffer {
	facesByPage := make(map[int][]*Face)
	for _, face := range faces {
		facesByPage[face.Page] = append(facesByPage[face.Page], face)
	}

	// only get the pages that are used
	var pageKeys []int
	for k := range facesByPage {
		pageKeys = append(pageKeys, k)
	}
	sort.Ints(pageKeys)

	// allocate a buffer
	bufferSize := 0
	for _, face := range faces {
		if n := len(face.Positions); n >= 3 {
			bufferSize += (n - 2) * 3 * LightmapVertexSize
		}
	}

	polygonBuffer := &PolygonBuffer{Buffer: make([]float32, 0, bufferSize)}
	scale := 1 / float32(pageSize)
	for _, page := range pageKeys {
		pageRange := PageRange{
			Page:       page,
			VertOffset: int32(len(polygonBuffer.Buffer) / LightmapVertexSize),
		}
		for _, face := range facesByPage[page] {
			// Generate triangle fan from the face
			for i := 2; i < len(face.Positions); i++ {
				for _, j := range [3]int{0, i - 1, i} {
					polygonBuffer.addVertex(face.Positions[j], face.LightmapUVs[j].Mul(scale))
					pageRange.VertCount++
				}
			}
		}
		polygonBuffer.Pages = append(polygonBuffer.Pages, pageRange)
	}
	return polygonBuffer
}

func (polygonBuffer *PolygonBuffer) addVertex(position mgl32.Vec3, lightmapUV mgl32.Vec2) {
	polygonBuffer.Buffer = append(polygonBuffer.Buffer,
		position[0], position[1], position[2],
		lightmapUV[0], lightmapUV[1])
}

// VisibleFaces returns the faces that can be seen from position. Without
// visibility information, or outside the map, that is every face.
func (s *Scene) VisibleFaces(position mgl32.Vec3) []*Face {
	if s.BSPTree == nil {
		return s.Faces
	}
	leaf := s.BSPTree.FindLeaf([3]float32(position))
	if leaf.LeafIndex < 0 || len(leaf.Faces) == 0 {
		return s.Faces
	}
	faces := make([]*Face, 0, len(leaf.Faces))
	for _, index := range leaf.Faces {
		if face, ok := s.faceByIndex[index]; ok {
			faces = append(faces, face)
		}
	}
	return faces
}
