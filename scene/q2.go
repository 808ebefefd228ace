package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/lighter"
	"github.com/samuelyuan/go-lighter/q2file"
)

const (
	// World units per luxel along the texture axes
	q2LuxelSize = 16

	// Faces without a lightmap
	q2Unlit = q2file.SurfaceSky | q2file.SurfaceWarp | q2file.SurfaceNoDraw

	// Intensity of a light entity without a "light" key
	q2DefaultLight = 300
)

// FromQ2 creates a one sector scene from a Quake 2 map. Every lightmapped
// face keeps the luxel grid of its texinfo; light entities become linear
// lights reaching as far as their intensity.
func FromQ2(mapData *q2file.MapData, opts Options) (*Scene, error) {
	s := newScene(opts)
	s.Map = mapData
	sector := s.Lighter.AddSector("world")

	skipped := 0
	for i, face := range mapData.Faces {
		texInfo := mapData.TexInfos[face.TextureInfo]
		if texInfo.Flags&q2Unlit != 0 || face.NumEdges < 3 {
			skipped++
			continue
		}

		vertices := mapData.FaceVertices(face)
		positions := make([]mgl32.Vec3, len(vertices))
		st := make([]mgl32.Vec2, len(vertices))
		for j, v := range vertices {
			positions[j] = mgl32.Vec3{v.X, v.Y, v.Z}
			st[j] = luxelCoords(positions[j], texInfo)
		}

		normal := mgl32.Vec3(mapData.FaceNormal(face))
		name := mapData.TextureName(texInfo)
		reflectance, ok := opts.Materials[name]
		if !ok {
			reflectance = opts.Reflectance
		}
		if _, err := s.addFace(sector, name, i, positions, nil, st, normal, reflectance); err != nil {
			return nil, err
		}
	}

	entities, err := q2file.ParseEntities(mapData.Entities)
	if err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	for _, e := range entities {
		if light, ok := q2Light(e, len(sector.Lights)); ok {
			sector.AddLight(light)
		}
	}

	logger().Info("loaded Quake 2 map",
		"faces", len(mapData.Faces),
		"unlit", skipped,
		"lights", len(sector.Lights))

	s.BSPTree = q2file.NewBSPTree(mapData)
	s.finish()
	return s, nil
}

// luxelCoords returns the texture space position of p in luxels
func luxelCoords(p mgl32.Vec3, texInfo q2file.TexInfo) mgl32.Vec2 {
	u := p.Dot(mgl32.Vec3(texInfo.UAxis)) + texInfo.UOffset
	v := p.Dot(mgl32.Vec3(texInfo.VAxis)) + texInfo.VOffset
	return mgl32.Vec2{u / q2LuxelSize, v / q2LuxelSize}
}

// q2Light converts a light entity. The color is scaled by the luxel area
// so a fully lit luxel right at the light gets light/255 of its color.
func q2Light(e q2file.Entity, index int) (*lighter.Light, bool) {
	if e.Classname() != "light" {
		return nil, false
	}
	origin, ok := e.Vec3("origin")
	if !ok {
		return nil, false
	}
	intensity := e.Float("light", q2DefaultLight)
	if intensity <= 0 {
		return nil, false
	}

	color := geom.Gray(1)
	if c, ok := e.Vec3("_color"); ok {
		color = geom.Color{R: c[0], G: c[1], B: c[2]}
		if m := color.MaxComponent(); m > 0 {
			color = color.Scale(1 / m)
		}
	}
	color = color.Scale(intensity / 255 * q2LuxelSize * q2LuxelSize)

	name := fmt.Sprintf("light%d", index)
	target := e["targetname"]
	if target != "" {
		name += "_" + target
	}
	light := lighter.NewLight(name, mgl32.Vec3(origin), color, lighter.AttnLinear, intensity)
	// Switchable lights get lightmaps of their own
	light.PseudoDynamic = target != ""
	return light, true
}

// Q2Materials derives the reflectance of every texture of a map from the
// average color of its WAL image. Missing textures are left out.
func Q2Materials(pak *q2file.PAK, mapData *q2file.MapData) (map[string]geom.Color, error) {
	palette, err := q2file.LoadPaletteFromPAK(pak)
	if err != nil {
		return nil, err
	}
	materials := make(map[string]geom.Color, len(mapData.TextureIds))
	for name := range mapData.TextureIds {
		img, _, err := q2file.LoadQ2WALFromPAK(pak, name, &palette)
		if err != nil {
			logger().Warn("texture is missing", "texture", name, "err", err)
			continue
		}
		c := q2file.AverageColor(img)
		materials[name] = geom.Color{R: c[0], G: c[1], B: c[2]}
	}
	return materials, nil
}
