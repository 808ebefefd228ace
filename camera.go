package main

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	fieldOfView     = 45
	lookSensitivity = 0.0175 // radians per pixel of cursor movement
	maxPitch        = 89 * math32.Pi / 180
)

var worldUp = mgl32.Vec3{0, 0, 1}

// Camera is a Z-up fly camera. Yaw turns around +z starting from +x,
// pitch tilts towards +z.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32 // world units per second
}

func NewCamera(position mgl32.Vec3, speed float32) *Camera {
	return &Camera{Position: position, Speed: speed}
}

func (c *Camera) forward() mgl32.Vec3 {
	cosPitch := math32.Cos(c.Pitch)
	return mgl32.Vec3{
		cosPitch * math32.Cos(c.Yaw),
		cosPitch * math32.Sin(c.Yaw),
		math32.Sin(c.Pitch),
	}
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.forward()), worldUp)
}

// Projection covers depths up to far
func (c *Camera) Projection(aspect, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspect, far/40000, far)
}

// Update turns the camera by the cursor movement and moves it along the
// view direction for dt seconds
func (c *Camera) Update(dt float32, input *InputHandler) {
	look := input.CursorDelta()
	c.Yaw -= float32(look[0]) * lookSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch-float32(look[1])*lookSensitivity, -maxPitch, maxPitch)

	move := input.Movement()
	if move.Len() == 0 {
		return
	}
	fwd := c.forward()
	right := fwd.Cross(worldUp).Normalize()
	step := right.Mul(move[0]).Add(fwd.Mul(move[1])).Normalize()
	c.Position = c.Position.Add(step.Mul(c.Speed * dt))
}
