package geom

import (
	"github.com/chewxy/math32"
)

// Color is an unclamped linear RGB triple
type Color struct {
	R, G, B float32
}

// Black is the zero color
var Black = Color{}

// Gray returns a color with all channels set to v
func Gray(v float32) Color {
	return Color{v, v, v}
}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul multiplies component-wise
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f}
}

// MaxComponent returns the largest channel
func (c Color) MaxComponent() float32 {
	return math32.Max(c.R, math32.Max(c.G, c.B))
}

// MinComponent returns the smallest channel
func (c Color) MinComponent() float32 {
	return math32.Min(c.R, math32.Min(c.G, c.B))
}

// ClampNegative returns c with negative channels set to zero
func (c Color) ClampNegative() Color {
	return Color{math32.Max(c.R, 0), math32.Max(c.G, 0), math32.Max(c.B, 0)}
}

func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// IsValid reports whether no channel is NaN or infinite
func (c Color) IsValid() bool {
	for _, v := range [3]float32{c.R, c.G, c.B} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}
