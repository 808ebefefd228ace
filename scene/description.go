package scene

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Description is the file format of hand written scenes
type Description struct {
	Sectors []SectorDesc `toml:"sectors" yaml:"sectors"`
}

type SectorDesc struct {
	Name    string       `toml:"name" yaml:"name"`
	Objects []ObjectDesc `toml:"objects" yaml:"objects"`
	Lights  []LightDesc  `toml:"lights" yaml:"lights"`
}

// ObjectDesc is a mesh of convex polygons. Faces index Vertices and are
// lit on the side they wind counterclockwise on.
type ObjectDesc struct {
	Name        string       `toml:"name" yaml:"name"`
	Reflectance []float32    `toml:"reflectance" yaml:"reflectance"`
	Vertices    [][3]float32 `toml:"vertices" yaml:"vertices"`
	Normals     [][3]float32 `toml:"normals" yaml:"normals"` // optional, one per vertex
	Faces       [][]int      `toml:"faces" yaml:"faces"`
}

type LightDesc struct {
	Name          string     `toml:"name" yaml:"name"`
	Position      [3]float32 `toml:"position" yaml:"position"`
	Color         [3]float32 `toml:"color" yaml:"color"`
	Attenuation   string     `toml:"attenuation" yaml:"attenuation"`
	Radius        float32    `toml:"radius" yaml:"radius"`
	CLQ           [3]float32 `toml:"clq" yaml:"clq"`       // defaults to [1, 0, 0]
	Cutoff        float32    `toml:"cutoff" yaml:"cutoff"` // 0 keeps the default of the attenuation
	PseudoDynamic bool       `toml:"pseudoDynamic" yaml:"pseudoDynamic"`
}

// Format of a description file
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// DecodeDescription parses a description. Unknown keys are errors.
func DecodeDescription(data []byte, format Format) (*Description, error) {
	desc := &Description{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(desc); err != nil {
			return nil, err
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(desc); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, errors.New(strict.String())
			}
			return nil, err
		}
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Validate checks indices and counts
func (desc *Description) Validate() error {
	var errs []error
	for si, sector := range desc.Sectors {
		for oi, obj := range sector.Objects {
			where := fmt.Sprintf("sector %d object %d (%s)", si, oi, obj.Name)
			if len(obj.Normals) != 0 && len(obj.Normals) != len(obj.Vertices) {
				errs = append(errs, fmt.Errorf("%s: %d normals for %d vertices", where, len(obj.Normals), len(obj.Vertices)))
			}
			if n := len(obj.Reflectance); n != 0 && n != 1 && n != 3 {
				errs = append(errs, fmt.Errorf("%s: reflectance needs 1 or 3 components, got %d", where, n))
			}
			for fi, face := range obj.Faces {
				if len(face) < 3 {
					errs = append(errs, fmt.Errorf("%s face %d: needs at least 3 vertices", where, fi))
				}
				for _, idx := range face {
					if idx < 0 || idx >= len(obj.Vertices) {
						errs = append(errs, fmt.Errorf("%s face %d: vertex %d out of range", where, fi, idx))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}
