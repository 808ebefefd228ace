package lightmap

import (
	"sync"

	"github.com/samuelyuan/go-lighter/geom"
)

// Lightmap is a 2D grid of accumulated radiance shared by every primitive
// packed into it. Writers only add energy, so contributions from several
// lights sum regardless of order.
type Lightmap struct {
	width  int
	height int

	mu   sync.Mutex
	data []geom.Color
}

func New(width, height int) *Lightmap {
	return &Lightmap{
		width:  width,
		height: height,
		data:   make([]geom.Color, width*height),
	}
}

func (lm *Lightmap) Width() int  { return lm.width }
func (lm *Lightmap) Height() int { return lm.height }

// InBounds reports whether (u, v) addresses a texel of this lightmap
func (lm *Lightmap) InBounds(u, v int) bool {
	return u >= 0 && v >= 0 && u < lm.width && v < lm.height
}

// Add accumulates c into texel (u, v). Out of range texels are ignored.
func (lm *Lightmap) Add(u, v int, c geom.Color) {
	if !lm.InBounds(u, v) {
		return
	}
	lm.mu.Lock()
	i := v*lm.width + u
	lm.data[i] = lm.data[i].Add(c)
	lm.mu.Unlock()
}

// Set overwrites texel (u, v). Only used by debug output modes.
func (lm *Lightmap) Set(u, v int, c geom.Color) {
	if !lm.InBounds(u, v) {
		return
	}
	lm.mu.Lock()
	lm.data[v*lm.width+u] = c
	lm.mu.Unlock()
}

// At returns the current value of texel (u, v)
func (lm *Lightmap) At(u, v int) geom.Color {
	if !lm.InBounds(u, v) {
		return geom.Black
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.data[v*lm.width+u]
}

// Data returns a copy of all texels in row-major order
func (lm *Lightmap) Data() []geom.Color {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]geom.Color, len(lm.data))
	copy(out, lm.data)
	return out
}

// Scale multiplies every texel by f
func (lm *Lightmap) Scale(f float32) {
	lm.mu.Lock()
	for i := range lm.data {
		lm.data[i] = lm.data[i].Scale(f)
	}
	lm.mu.Unlock()
}

// IsEmpty reports whether no texel received any energy
func (lm *Lightmap) IsEmpty() bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, c := range lm.data {
		if !c.IsBlack() {
			return false
		}
	}
	return true
}
