package render

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// PageTexture is one lightmap page uploaded to the GPU
type PageTexture struct {
	Texture uint32
	Width   int32
	Height  int32
}

// NewPageTexture uploads an image. A nil image gives a white page so
// geometry without a baked lightmap stays visible.
func NewPageTexture(img *image.RGBA, size int32) *PageTexture {
	page := &PageTexture{Width: size, Height: size}
	if img != nil {
		page.Width = int32(img.Rect.Dx())
		page.Height = int32(img.Rect.Dy())
	}
	page.Texture = generateTexture(page.Width, page.Height)

	pixels := make([]uint8, page.Width*page.Height*4)
	if img != nil {
		// Copy row by row in case the image is a sub image
		rowBytes := int(page.Width) * 4
		for y := 0; y < int(page.Height); y++ {
			start := y * img.Stride
			copy(pixels[y*rowBytes:(y+1)*rowBytes], img.Pix[start:start+rowBytes])
		}
	} else {
		for i := range pixels {
			pixels[i] = 255
		}
	}
	page.updateTexture(pixels)
	page.GenerateMipmaps()
	return page
}

func generateTexture(width, height int32) uint32 {
	var textureId uint32
	gl.GenTextures(1, &textureId)
	gl.BindTexture(gl.TEXTURE_2D, textureId)

	// Initialize empty region to be updated later
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, width, height, 0, uint32(gl.RGBA), uint32(gl.UNSIGNED_BYTE), nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	return textureId
}

func (page *PageTexture) GenerateMipmaps() {
	gl.BindTexture(gl.TEXTURE_2D, page.Texture)
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

func (page *PageTexture) updateTexture(pixels []uint8) {
	gl.BindTexture(gl.TEXTURE_2D, page.Texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, page.Width, page.Height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

// Delete frees the GPU texture
func (page *PageTexture) Delete() {
	gl.DeleteTextures(1, &page.Texture)
}
