package lighter

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Distances below this are treated as this distance
const minAttenuationDistance = 1e-3

// Attenuation computes the fraction of a light's energy reaching a point
// at squared distance distSq, with the incidence cosine folded in
type Attenuation interface {
	Intensity(cosTheta, distSq float32) float32
}

// NoAttenuation keeps the full energy at every distance
type NoAttenuation struct{}

func (NoAttenuation) Intensity(cosTheta, distSq float32) float32 {
	return cosTheta
}

// LinearAttenuation falls off linearly to zero at the light radius
type LinearAttenuation struct {
	radius float32
}

func NewLinearAttenuation(l *Light) LinearAttenuation {
	return LinearAttenuation{radius: l.Radius}
}

func (a LinearAttenuation) Intensity(cosTheta, distSq float32) float32 {
	if a.radius <= 0 {
		return 0
	}
	d := math32.Sqrt(distSq)
	return math32.Max(0, (a.radius-d)/a.radius) * cosTheta
}

// InverseAttenuation falls off with radius / distance
type InverseAttenuation struct {
	radius float32
}

func NewInverseAttenuation(l *Light) InverseAttenuation {
	return InverseAttenuation{radius: unitRadius(l.Radius)}
}

func (a InverseAttenuation) Intensity(cosTheta, distSq float32) float32 {
	d := math32.Max(math32.Sqrt(distSq), minAttenuationDistance)
	return a.radius / d * cosTheta
}

// RealisticAttenuation falls off with radius^2 / distance^2
type RealisticAttenuation struct {
	radiusSq float32
}

func NewRealisticAttenuation(l *Light) RealisticAttenuation {
	r := unitRadius(l.Radius)
	return RealisticAttenuation{radiusSq: r * r}
}

func (a RealisticAttenuation) Intensity(cosTheta, distSq float32) float32 {
	distSq = math32.Max(distSq, minAttenuationDistance*minAttenuationDistance)
	return a.radiusSq / distSq * cosTheta
}

// CLQAttenuation divides by constant + linear*d + quadratic*d^2
type CLQAttenuation struct {
	c, l, q float32
}

func NewCLQAttenuation(l *Light) CLQAttenuation {
	k := l.AttenuationConsts
	if k == (mgl32.Vec3{}) {
		k = DefaultCLQ
	}
	return CLQAttenuation{c: k[0], l: k[1], q: k[2]}
}

func (a CLQAttenuation) Intensity(cosTheta, distSq float32) float32 {
	d := math32.Sqrt(distSq)
	denom := a.c + a.l*d + a.q*distSq
	if denom < minAttenuationDistance {
		denom = minAttenuationDistance
	}
	return cosTheta / denom
}

func unitRadius(r float32) float32 {
	if r <= 0 {
		return 1
	}
	return r
}
