// Package q2file reads Quake 2 BSP maps and PAK archives.
package q2file

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unsafe"
)

const (
	LumpEntities   = 0
	LumpPlanes     = 1
	LumpVertices   = 2
	LumpVisibility = 3
	LumpBSPNodes   = 4
	LumpTexInfos   = 5
	LumpFaces      = 6
	LumpLightmaps  = 7
	LumpBSPLeaves  = 8
	LumpLeafFaces  = 9
	LumpEdges      = 11
	LumpFaceEdges  = 12

	NumLumps   = 19
	BSPVersion = 38
)

// Surface flags of a texinfo
const (
	SurfaceLight   = uint32(0x1)
	SurfaceSlick   = uint32(0x2)
	SurfaceSky     = uint32(0x4)
	SurfaceWarp    = uint32(0x8)
	SurfaceTrans33 = uint32(0x10)
	SurfaceTrans66 = uint32(0x20)
	SurfaceFlowing = uint32(0x40)
	SurfaceNoDraw  = uint32(0x80)
)

var (
	ErrBadMagic   = errors.New("q2file: wrong magic")
	ErrBadVersion = errors.New("q2file: unsupported BSP version")
	ErrNotInPAK   = errors.New("q2file: file not found in PAK")
)

// Logger receives the lump counts while loading
var Logger *slog.Logger

func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

type Header struct {
	Magic   [4]byte        // magic number ("IBSP")
	Version uint32         // version of the BSP format (38)
	Lumps   [NumLumps]Lump // directory of the lumps
}

type Lump struct {
	Offset uint32 // offset (in bytes) of the data from the beginning of the file
	Length uint32 // length (in bytes) of the data
}

type Vertex struct {
	X float32
	Y float32
	Z float32
}

// Each edge is stored as a pair of indices into the vertex array
type Edge struct {
	V1 uint16
	V2 uint16
}

type Face struct {
	Plane     uint16 // index of the plane the face is parallel to
	PlaneSide uint16 // set if the normal is opposite to the plane normal

	FirstEdge uint32 // index of the first edge (in the face edge array)
	NumEdges  uint16 // number of consecutive edges (in the face edge array)

	TextureInfo uint16 // index of the texture info structure

	LightmapStyles [4]uint8 // styles (bit flags) for the lightmaps
	LightmapOffset uint32   // offset of the lightmap (in bytes) in the lightmap lump
}

type FaceEdge struct {
	EdgeIndex int32
}

type TexInfo struct {
	UAxis       [3]float32
	UOffset     float32
	VAxis       [3]float32
	VOffset     float32
	Flags       uint32
	Value       uint32
	TextureName [32]byte
	NextTexInfo int32
}

type BSPNode struct {
	Plane uint32 // index of the splitting plane (in the plane array)

	FrontChild int32 // index of the front child node or leaf
	BackChild  int32 // index of the back child node or leaf

	BBoxMin [3]int16 // minimum x, y and z of the bounding box
	BBoxMax [3]int16 // maximum x, y and z of the bounding box

	FirstFace uint16 // index of the first face (in the face array)
	NumFaces  uint16 // number of consecutive faces (in the face array)
}

type Plane struct {
	Normal   [3]float32 // A, B, C components of the plane equation
	Distance float32    // D component of the plane equation
	Type     uint32
}

type BSPLeaf struct {
	BrushOr uint32

	Cluster uint16 // 65535 for cluster indicates no visibility information
	Area    uint16

	BBoxMin [3]int16 // bounding box minimums
	BBoxMax [3]int16 // bounding box maximums

	FirstLeafFace uint16 // index of the first face (in the face leaf array)
	NumLeafFaces  uint16 // number of consecutive faces (in the face leaf array)

	FirstLeafBrush uint16
	NumLeafBrushes uint16
}

type LeafFace int16

type VisibilityOffset struct {
	Pvs uint32 // visibility set offset
	Phs uint32 // hearability set offset
}

type MapData struct {
	Entities          string
	Vertices          []Vertex
	Edges             []Edge
	Faces             []Face
	FaceEdges         []FaceEdge
	TexInfos          []TexInfo
	TextureIds        map[string]int
	LightmapData      []uint8
	Nodes             []BSPNode
	Planes            []Plane
	BSPLeaves         []BSPLeaf
	LeafFaces         []LeafFace
	VisibilityData    []uint8
	VisibilityOffsets []VisibilityOffset
}

// LoadQ2BSP reads the header to verify the file is valid, then loads
// every lump the lighter uses
func LoadQ2BSP(r io.ReaderAt) (*MapData, error) {
	header := Header{}

	headerReader := io.NewSectionReader(r, 0, int64(unsafe.Sizeof(header)))
	if err := binary.Read(headerReader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("BSP header: %w", err)
	}

	if !bytes.Equal([]byte("IBSP"), header.Magic[:]) {
		return nil, fmt.Errorf("BSP header %q: %w", header.Magic[:], ErrBadMagic)
	}
	if header.Version != BSPVersion {
		return nil, fmt.Errorf("BSP header version %v: %w", header.Version, ErrBadVersion)
	}

	mapData := &MapData{}
	var err error

	entities, err := readLump[byte](r, header.Lumps[LumpEntities], "entities")
	if err != nil {
		return nil, err
	}
	mapData.Entities = string(bytes.TrimRight(entities, "\x00"))

	if mapData.Vertices, err = readLump[Vertex](r, header.Lumps[LumpVertices], "vertices"); err != nil {
		return nil, err
	}
	if mapData.Edges, err = readLump[Edge](r, header.Lumps[LumpEdges], "edges"); err != nil {
		return nil, err
	}
	if mapData.Faces, err = readLump[Face](r, header.Lumps[LumpFaces], "faces"); err != nil {
		return nil, err
	}
	if mapData.FaceEdges, err = readLump[FaceEdge](r, header.Lumps[LumpFaceEdges], "face edges"); err != nil {
		return nil, err
	}
	if mapData.TexInfos, err = readLump[TexInfo](r, header.Lumps[LumpTexInfos], "texture info"); err != nil {
		return nil, err
	}
	mapData.TextureIds = getTextureIds(mapData.TexInfos)

	if mapData.LightmapData, err = readLump[uint8](r, header.Lumps[LumpLightmaps], "lightmaps"); err != nil {
		return nil, err
	}
	if mapData.Nodes, err = readLump[BSPNode](r, header.Lumps[LumpBSPNodes], "BSP nodes"); err != nil {
		return nil, err
	}
	if mapData.Planes, err = readLump[Plane](r, header.Lumps[LumpPlanes], "BSP planes"); err != nil {
		return nil, err
	}
	if mapData.BSPLeaves, err = readLump[BSPLeaf](r, header.Lumps[LumpBSPLeaves], "BSP leaves"); err != nil {
		return nil, err
	}
	if mapData.LeafFaces, err = readLump[LeafFace](r, header.Lumps[LumpLeafFaces], "leaf faces"); err != nil {
		return nil, err
	}
	if mapData.VisibilityData, err = readLump[uint8](r, header.Lumps[LumpVisibility], "visibility data"); err != nil {
		return nil, err
	}
	if mapData.VisibilityOffsets, err = loadVisibilityOffsets(header.Lumps[LumpVisibility], r); err != nil {
		return nil, fmt.Errorf("failed to load visibility offsets: %w", err)
	}

	if err := mapData.validate(); err != nil {
		return nil, err
	}
	return mapData, nil
}

// readLump decodes a lump as an array of fixed size records
func readLump[T any](r io.ReaderAt, lump Lump, name string) ([]T, error) {
	var zero T
	size := int(binary.Size(zero))
	num := int(lump.Length) / size

	logger().Debug("lump", "name", name, "count", num)

	data := make([]T, num)
	if num == 0 {
		return data, nil
	}
	reader := io.NewSectionReader(r, int64(lump.Offset), int64(num*size))
	if err := binary.Read(reader, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return data, nil
}

func loadVisibilityOffsets(lump Lump, r io.ReaderAt) ([]VisibilityOffset, error) {
	if lump.Length < 4 {
		return nil, nil
	}
	reader := io.NewSectionReader(r, int64(lump.Offset), int64(lump.Length))

	// Read visibility cluster count at the beginning of the lump
	numClusters := uint32(0)
	if err := binary.Read(reader, binary.LittleEndian, &numClusters); err != nil {
		return nil, err
	}
	if int64(numClusters)*8 > int64(lump.Length)-4 {
		return nil, fmt.Errorf("%d clusters do not fit in %d bytes", numClusters, lump.Length)
	}

	logger().Debug("lump", "name", "visibility clusters", "count", numClusters)

	data := make([]VisibilityOffset, numClusters)
	if err := binary.Read(reader, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return data, nil
}

// validate checks the indices a face walk depends on
func (mapData *MapData) validate() error {
	for i, face := range mapData.Faces {
		if int(face.FirstEdge)+int(face.NumEdges) > len(mapData.FaceEdges) {
			return fmt.Errorf("face %d: edges out of range", i)
		}
		if int(face.TextureInfo) >= len(mapData.TexInfos) {
			return fmt.Errorf("face %d: texinfo %d out of range", i, face.TextureInfo)
		}
		if int(face.Plane) >= len(mapData.Planes) {
			return fmt.Errorf("face %d: plane %d out of range", i, face.Plane)
		}
	}
	for i, faceEdge := range mapData.FaceEdges {
		edgeIdx := int(faceEdge.EdgeIndex)
		if edgeIdx < 0 {
			edgeIdx = -edgeIdx
		}
		if edgeIdx >= len(mapData.Edges) {
			return fmt.Errorf("face edge %d: edge %d out of range", i, edgeIdx)
		}
		edge := mapData.Edges[edgeIdx]
		if int(edge.V1) >= len(mapData.Vertices) || int(edge.V2) >= len(mapData.Vertices) {
			return fmt.Errorf("edge %d: vertex out of range", edgeIdx)
		}
	}
	return nil
}

// FaceVertices returns the polygon of a face in edge order
func (mapData *MapData) FaceVertices(face Face) []Vertex {
	vertices := make([]Vertex, face.NumEdges)
	for i := range vertices {
		vertices[i] = mapData.edgeVertex(int(face.FirstEdge) + i)
	}
	return vertices
}

func (mapData *MapData) edgeVertex(faceEdgeIdx int) Vertex {
	edgeIdx := int(mapData.FaceEdges[faceEdgeIdx].EdgeIndex)

	// A positive index walks the edge from its first vertex
	if edgeIdx >= 0 {
		return mapData.Vertices[mapData.Edges[edgeIdx].V1]
	}
	// A negative one walks it backwards
	return mapData.Vertices[mapData.Edges[-edgeIdx].V2]
}

// FaceNormal returns the normal of the face's plane, flipped for back sides
func (mapData *MapData) FaceNormal(face Face) [3]float32 {
	n := mapData.Planes[face.Plane].Normal
	if face.PlaneSide != 0 {
		return [3]float32{-n[0], -n[1], -n[2]}
	}
	return n
}

// TextureName returns the texture name of a texinfo
func (mapData *MapData) TextureName(texInfo TexInfo) string {
	return byteToString(texInfo.TextureName[:])
}

// Map each texture name to an id
// There could be multiple texinfos with the same name.
func getTextureIds(texInfos []TexInfo) map[string]int {
	textureIds := make(map[string]int)
	nextId := 0
	for _, texInfo := range texInfos {
		filename := byteToString(texInfo.TextureName[:])
		if _, exists := textureIds[filename]; !exists {
			textureIds[filename] = nextId
			nextId++
		}
	}
	return textureIds
}

func byteToString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
