package lighter

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
)

// AttenuationKind selects the distance falloff of a light
type AttenuationKind int

const (
	AttnNone AttenuationKind = iota
	AttnLinear
	AttnInverse
	AttnRealistic
	AttnCLQ
)

var attenuationNames = map[AttenuationKind]string{
	AttnNone:      "none",
	AttnLinear:    "linear",
	AttnInverse:   "inverse",
	AttnRealistic: "realistic",
	AttnCLQ:       "clq",
}

func (k AttenuationKind) String() string {
	if name, ok := attenuationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AttenuationKind(%d)", int(k))
}

// ParseAttenuation converts a name such as "linear" into its kind.
// The empty string means AttnNone.
func ParseAttenuation(name string) (AttenuationKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AttnNone, nil
	}
	for k, n := range attenuationNames {
		if n == name {
			return k, nil
		}
	}
	return AttnNone, fmt.Errorf("unknown attenuation %q", name)
}

// Light is a point light of a sector
type Light struct {
	Name     string
	Position mgl32.Vec3
	Color    geom.Color

	Attenuation AttenuationKind
	// Falloff radius, meaning depends on Attenuation
	Radius float32
	// Constant, linear and quadratic terms for AttnCLQ
	AttenuationConsts mgl32.Vec3

	// Primitives farther than Cutoff are not lit. Zero or less is unbounded.
	Cutoff float32
	// Only primitives overlapping this box are lit
	BoundingBox geom.Box

	// Energy emitted in the current run, derived from Color
	FreeEnergy geom.Color

	// Pseudo-dynamic lights are baked into lightmaps of their own
	PseudoDynamic bool
}

// DefaultCLQ is a constant falloff of one
var DefaultCLQ = mgl32.Vec3{1, 0, 0}

// NewLight returns a light with its bounding box computed. Linear lights
// are cut off at radius, where they fall to zero; all other kinds reach
// everything until Cutoff is set.
func NewLight(name string, position mgl32.Vec3, color geom.Color, attn AttenuationKind, radius float32) *Light {
	l := &Light{
		Name:              name,
		Position:          position,
		Color:             color,
		Attenuation:       attn,
		Radius:            radius,
		AttenuationConsts: DefaultCLQ,
	}
	if attn == AttnLinear {
		l.Cutoff = radius
	}
	l.ComputeBoundingBox()
	return l
}

// SetCutoff changes the cutoff distance and recomputes the bounding box
func (l *Light) SetCutoff(cutoff float32) {
	l.Cutoff = cutoff
	l.ComputeBoundingBox()
}

// ComputeBoundingBox sets BoundingBox to the cube of half size Cutoff
// around the light
func (l *Light) ComputeBoundingBox() {
	if l.Cutoff <= 0 {
		inf := math32.Inf(1)
		l.BoundingBox = geom.Box{
			Min: mgl32.Vec3{-inf, -inf, -inf},
			Max: mgl32.Vec3{inf, inf, inf},
		}
		return
	}
	l.BoundingBox = geom.BoxAround(l.Position, l.Cutoff)
}
