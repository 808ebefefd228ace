package lighter

import (
	"github.com/samuelyuan/go-lighter/kdtree"
)

// Sector is a part of the scene with its own lights and k-d tree.
// Light never crosses sector borders.
type Sector struct {
	Name  string
	Scene *Scene

	Objects []*Object
	Lights  []*Light

	KDTree *kdtree.Tree[*Primitive]
}

func (s *Sector) AddObject(o *Object) {
	s.Objects = append(s.Objects, o)
}

func (s *Sector) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

// Primitives returns the primitives of all objects in object order
func (s *Sector) Primitives() []*Primitive {
	n := 0
	for _, o := range s.Objects {
		n += len(o.Primitives)
	}
	prims := make([]*Primitive, 0, n)
	for _, o := range s.Objects {
		prims = append(prims, o.Primitives...)
	}
	return prims
}

// BuildKDTree (re)builds the sector's k-d tree. Primitives must be prepared.
func (s *Sector) BuildKDTree(opts kdtree.Options) {
	s.KDTree = kdtree.Build(s.Primitives(), opts)
}
