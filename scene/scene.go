package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/lighter"
	"github.com/samuelyuan/go-lighter/lightmap"
	"github.com/samuelyuan/go-lighter/q2file"
)

// Face is one polygon of the source scene as laid out in the lightmaps
type Face struct {
	Index  int // face index in the source (Q2 face number or running count)
	Sector *lighter.Sector
	Object *lighter.Object

	Page int
	Rect lightmap.Rect

	// Polygon in lit-side counterclockwise order, lightmap coordinates
	// in texels of Page
	Positions   []mgl32.Vec3
	LightmapUVs []mgl32.Vec2

	Primitives []*lighter.Primitive
}

// Scene is a loaded lighter scene plus the bookkeeping the viewer needs
type Scene struct {
	Lighter *lighter.Scene
	Atlas   *lightmap.Atlas
	Faces   []*Face

	// Set for Quake 2 maps
	Map     *q2file.MapData
	BSPTree *q2file.BSPTree

	opts        Options
	objects     map[objectKey]*lighter.Object
	faceByIndex map[int]*Face
}

type objectKey struct {
	sector *lighter.Sector
	name   string
	page   int
}

func newScene(opts Options) *Scene {
	return &Scene{
		Lighter:     lighter.NewScene(opts.PageSize, opts.PageSize),
		Atlas:       lightmap.NewAtlas(int32(opts.PageSize), int32(opts.Padding)),
		opts:        opts,
		objects:     make(map[objectKey]*lighter.Object),
		faceByIndex: make(map[int]*Face),
	}
}

// Pages returns the number of lightmap pages
func (s *Scene) Pages() int {
	return len(s.Atlas.Pages)
}

// FaceByIndex looks up a face by its source index
func (s *Scene) FaceByIndex(index int) (*Face, bool) {
	f, ok := s.faceByIndex[index]
	return f, ok
}

// Primitives returns the number of primitives over all sectors
func (s *Scene) Primitives() int {
	n := 0
	for _, sector := range s.Lighter.Sectors {
		for _, o := range sector.Objects {
			n += len(o.Primitives)
		}
	}
	return n
}

// addFace packs a polygon into the atlas and creates its primitives.
// st holds the lightmap parameterization in texels, normal the lit side.
// The polygon is reversed if it winds the other way.
func (s *Scene) addFace(sector *lighter.Sector, objectName string, index int,
	positions []mgl32.Vec3, normals []mgl32.Vec3, st []mgl32.Vec2,
	normal mgl32.Vec3, reflectance geom.Color) (*Face, error) {

	if len(positions) < 3 {
		return nil, fmt.Errorf("face %d: %d vertices", index, len(positions))
	}
	if geom.NewellNormal(positions...).Dot(normal) < 0 {
		positions = reversed(positions)
		st = reversed(st)
		if normals != nil {
			normals = reversed(normals)
		}
	}

	minS, maxS := st[0], st[0]
	for _, p := range st[1:] {
		minS = mgl32.Vec2{math32.Min(minS[0], p[0]), math32.Min(minS[1], p[1])}
		maxS = mgl32.Vec2{math32.Max(maxS[0], p[0]), math32.Max(maxS[1], p[1])}
	}
	width := int32(math32.Ceil(maxS[0]-minS[0])) + 1
	height := int32(math32.Ceil(maxS[1]-minS[1])) + 1

	page, rect, err := s.Atlas.Allocate(width, height)
	if err != nil {
		return nil, fmt.Errorf("face %d: %w", index, err)
	}

	key := objectKey{sector: sector, name: objectName, page: page}
	obj, ok := s.objects[key]
	if !ok {
		obj = lighter.NewObject(fmt.Sprintf("%s@%d", objectName, page), page)
		sector.AddObject(obj)
		s.objects[key] = obj
	}

	face := &Face{
		Index:       index,
		Sector:      sector,
		Object:      obj,
		Page:        page,
		Rect:        rect,
		Positions:   positions,
		LightmapUVs: make([]mgl32.Vec2, len(positions)),
	}

	flat := geom.Normalize(normal)
	indices := make([]int, len(positions))
	for i, p := range positions {
		// Texel centers of the rectangle line up with whole st steps
		uv := mgl32.Vec2{
			float32(rect.X) + 0.5 + st[i][0] - minS[0],
			float32(rect.Y) + 0.5 + st[i][1] - minS[1],
		}
		face.LightmapUVs[i] = uv

		n := flat
		if normals != nil {
			n = geom.Normalize(normals[i])
		}
		indices[i] = obj.VertexData.AddVertex(p, n, uv)
	}
	face.Primitives = obj.AddPolygon(indices, reflectance)

	s.Faces = append(s.Faces, face)
	s.faceByIndex[index] = face
	return face, nil
}

// finish prepares every primitive, allocates the lightmap pages and
// builds the k-d trees
func (s *Scene) finish() {
	for _, sector := range s.Lighter.Sectors {
		for _, o := range sector.Objects {
			o.Prepare(s.opts.PatchResU, s.opts.PatchResV)
		}
	}
	s.Lighter.EnsurePages(s.Pages())
	s.Lighter.BuildKDTrees(s.opts.KDTree)

	logger().Debug("scene ready",
		"sectors", len(s.Lighter.Sectors),
		"faces", len(s.Faces),
		"primitives", s.Primitives(),
		"pages", s.Pages())
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
