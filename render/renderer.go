// Package render previews baked lightmaps on the scene geometry with OpenGL.
package render

import (
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type Renderer struct {
	Vao    uint32
	Vbo    uint32
	Shader *Shader
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Init loads the GL functions; a context must be current
func (r *Renderer) Init() error {
	if err := gl.Init(); err != nil {
		return err
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	slog.Info("OpenGL", "version", version)

	shader, err := NewShader()
	if err != nil {
		return err
	}
	r.Shader = shader

	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.Enable(gl.DEPTH_TEST)

	// Faces are wound counterclockwise on their lit side
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	// Create buffers/arrays
	gl.GenVertexArrays(1, &r.Vao)
	gl.GenBuffers(1, &r.Vbo)
	return nil
}

func (r *Renderer) PrepareFrame(viewMatrix mgl32.Mat4, projectionMatrix mgl32.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	programShader := r.Shader.ProgramShader

	gl.UseProgram(programShader)

	// Pass the camera matrices to the shader
	viewLoc := gl.GetUniformLocation(programShader, gl.Str("view\x00"))
	gl.UniformMatrix4fv(viewLoc, 1, false, &viewMatrix[0])

	projectionLoc := gl.GetUniformLocation(programShader, gl.Str("projection\x00"))
	gl.UniformMatrix4fv(projectionLoc, 1, false, &projectionMatrix[0])
}
