package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/samuelyuan/go-lighter/scene"
)

const (
	FLOAT_SIZE = 4
)

type RenderMap struct {
	Pages        []scene.PageRange
	VertexBuffer []float32
}

// CreateRenderingData builds the vertex buffer of the given faces
func CreateRenderingData(faces []*scene.Face, pageSize int) RenderMap {
	polygonBuffer := scene.NewPolygonBuffer(faces, pageSize)
	return RenderMap{
		Pages:        polygonBuffer.Pages,
		VertexBuffer: polygonBuffer.Buffer,
	}
}

// DrawMap draws every page range with its lightmap texture. Pages
// without a texture are skipped.
func DrawMap(renderer *Renderer, renderMap RenderMap, textures []*PageTexture) {
	programShader := renderer.Shader.ProgramShader
	gl.BindVertexArray(renderer.Vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, renderer.Vbo)

	vertices := renderMap.VertexBuffer
	if len(vertices) == 0 {
		return
	}

	// Fill vertex buffer
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*FLOAT_SIZE, gl.Ptr(vertices), gl.STATIC_DRAW)

	// 3 floats for vertex, 2 floats for lightmap UV
	stride := int32(scene.LightmapVertexSize * FLOAT_SIZE)

	// Position attribute
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	// Lightmap
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*FLOAT_SIZE))
	gl.EnableVertexAttribArray(1)

	lightmapUniform := gl.GetUniformLocation(programShader, gl.Str("lightmap\x00"))
	gl.Uniform1i(lightmapUniform, 0)

	// Faces are sorted by page, so bind each page once
	for _, pageRange := range renderMap.Pages {
		if pageRange.VertCount == 0 || pageRange.Page >= len(textures) || textures[pageRange.Page] == nil {
			continue
		}

		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, textures[pageRange.Page].Texture)

		// Draw all faces for this page
		gl.DrawArrays(gl.TRIANGLES, pageRange.VertOffset, pageRange.VertCount)
	}
}
