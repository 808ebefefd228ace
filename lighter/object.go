package lighter

import (
	"github.com/samuelyuan/go-lighter/geom"
)

// Object is a mesh of a sector. All its primitives share one vertex data
// block and are packed into the same lightmap page.
type Object struct {
	Name       string
	VertexData VertexData

	FactoryPrimitives []*FactoryPrimitive
	Primitives        []*Primitive

	LightmapID int
}

func NewObject(name string, lightmapID int) *Object {
	return &Object{Name: name, LightmapID: lightmapID}
}

// AddPrimitive creates the factory and world primitive for a triangle of
// the object's vertex data
func (o *Object) AddPrimitive(t Triangle, reflectance geom.Color) *Primitive {
	fp := NewFactoryPrimitive(&o.VertexData, t, reflectance)
	o.FactoryPrimitives = append(o.FactoryPrimitives, fp)

	prim := NewPrimitive(&o.VertexData, t)
	prim.SetObject(o)
	prim.SetOriginalPrimitive(fp)
	prim.SetGlobalLightmapID(o.LightmapID)
	o.Primitives = append(o.Primitives, prim)
	return prim
}

// AddPolygon adds a convex polygon given as vertex indices as a triangle fan
func (o *Object) AddPolygon(indices []int, reflectance geom.Color) []*Primitive {
	var prims []*Primitive
	for i := 2; i < len(indices); i++ {
		prims = append(prims, o.AddPrimitive(Triangle{indices[0], indices[i-1], indices[i]}, reflectance))
	}
	return prims
}

// Prepare computes the derived data of every primitive. A zero patch
// resolution skips the radiosity patch grid.
func (o *Object) Prepare(patchResU, patchResV int) {
	for _, prim := range o.Primitives {
		prim.Prepare(patchResU, patchResV)
	}
}
