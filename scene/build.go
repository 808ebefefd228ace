package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/lighter"
)

// Build creates a scene from a description
func Build(desc *Description, opts Options) (*Scene, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	s := newScene(opts)

	faceIndex := 0
	for si, sd := range desc.Sectors {
		name := sd.Name
		if name == "" {
			name = fmt.Sprintf("sector%d", si)
		}
		sector := s.Lighter.AddSector(name)

		for oi, od := range sd.Objects {
			objName := od.Name
			if objName == "" {
				objName = fmt.Sprintf("object%d", oi)
			}
			reflectance := materialColor(od.Reflectance, opts.Reflectance)

			for _, fd := range od.Faces {
				positions := make([]mgl32.Vec3, len(fd))
				var normals []mgl32.Vec3
				if len(od.Normals) > 0 {
					normals = make([]mgl32.Vec3, len(fd))
				}
				for i, idx := range fd {
					positions[i] = mgl32.Vec3(od.Vertices[idx])
					if normals != nil {
						normals[i] = mgl32.Vec3(od.Normals[idx])
					}
				}

				normal := geom.NewellNormal(positions...)
				st := projectDominantAxis(positions, normal, opts.Density)
				if _, err := s.addFace(sector, objName, faceIndex, positions, normals, st, normal, reflectance); err != nil {
					return nil, fmt.Errorf("sector %q object %q: %w", name, objName, err)
				}
				faceIndex++
			}
		}

		for li, ld := range sd.Lights {
			light, err := newLight(ld, li)
			if err != nil {
				return nil, fmt.Errorf("sector %q: %w", name, err)
			}
			sector.AddLight(light)
		}
	}

	s.finish()
	return s, nil
}

func newLight(ld LightDesc, index int) (*lighter.Light, error) {
	name := ld.Name
	if name == "" {
		name = fmt.Sprintf("light%d", index)
	}
	kind, err := lighter.ParseAttenuation(ld.Attenuation)
	if err != nil {
		return nil, fmt.Errorf("light %q: %w", name, err)
	}
	color := geom.Color{R: ld.Color[0], G: ld.Color[1], B: ld.Color[2]}
	light := lighter.NewLight(name, mgl32.Vec3(ld.Position), color, kind, ld.Radius)
	if ld.CLQ != ([3]float32{}) {
		light.AttenuationConsts = mgl32.Vec3(ld.CLQ)
	}
	if ld.Cutoff > 0 {
		light.SetCutoff(ld.Cutoff)
	}
	light.PseudoDynamic = ld.PseudoDynamic
	return light, nil
}

func materialColor(c []float32, def geom.Color) geom.Color {
	switch len(c) {
	case 1:
		return geom.Gray(c[0])
	case 3:
		return geom.Color{R: c[0], G: c[1], B: c[2]}
	}
	return def
}

// projectDominantAxis maps a planar polygon onto the axis plane its
// normal is closest to, in texels
func projectDominantAxis(positions []mgl32.Vec3, normal mgl32.Vec3, density float32) []mgl32.Vec2 {
	var a, b int
	switch geom.DominantAxis(normal) {
	case 0:
		a, b = 1, 2
	case 1:
		a, b = 0, 2
	default:
		a, b = 0, 1
	}
	st := make([]mgl32.Vec2, len(positions))
	for i, p := range positions {
		st[i] = mgl32.Vec2{p[a] * density, p[b] * density}
	}
	return st
}
