package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	vertexShaderSource = `
		#version 410
		layout (location = 0) in vec3 position;
		layout (location = 1) in vec2 vertLightmapCoord;
		out vec2 fragLightmapCoord;

		uniform mat4 view;
		uniform mat4 projection;

		void main() {
			fragLightmapCoord = vertLightmapCoord;

			gl_Position = projection * view * vec4(position, 1.0);
		}
	` + "\x00"

	fragmentShaderSource = `
		#version 410

		uniform sampler2D lightmap;
		in vec2 fragLightmapCoord;
		out vec4 fragColor;

		void main() {
			fragColor = vec4(texture(lightmap, fragLightmapCoord.st).rgb, 1.0);
		}
	` + "\x00"
)

type Shader struct {
	VertexShader   uint32
	FragmentShader uint32
	ProgramShader  uint32
}

func NewShader() (*Shader, error) {
	sh := Shader{}

	// compile shaders
	var err error
	if sh.VertexShader, err = sh.compileShader(vertexShaderSource, gl.VERTEX_SHADER); err != nil {
		return nil, err
	}
	if sh.FragmentShader, err = sh.compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER); err != nil {
		return nil, err
	}

	programShader := gl.CreateProgram()
	gl.AttachShader(programShader, sh.VertexShader)
	gl.AttachShader(programShader, sh.FragmentShader)
	gl.LinkProgram(programShader)

	var status int32
	gl.GetProgramiv(programShader, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(programShader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(programShader, logLength, nil, gl.Str(log))
		return nil, fmt.Errorf("failed to link program: %v", log)
	}
	sh.ProgramShader = programShader

	return &sh, nil
}

func (sh *Shader) compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		return 0, fmt.Errorf("failed to compile %v: %v", source, log)
	}

	return shader, nil
}
