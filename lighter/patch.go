package lighter

import "github.com/samuelyuan/go-lighter/geom"

// RadPatch is one cell of the coarse radiosity grid of a primitive
type RadPatch struct {
	Energy geom.Color
}

// PatchIndex maps element (u, v) of a primitive with the given texel
// origin to the index of the patch it falls into
func PatchIndex(u, v, minU, minV, uRes, vRes, uPatches int) int {
	return (v-minV)/vRes*uPatches + (u-minU)/uRes
}
