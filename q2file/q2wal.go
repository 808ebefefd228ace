package q2file

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
)

const (
	paletteFilename = "pics/colormap.pcx"
	pcxPaletteMark  = 0x0C
)

var ErrNoPalette = errors.New("q2file: PCX file has no 256 color palette")

type WalHeader struct {
	Name     [32]byte
	Width    uint32
	Height   uint32
	Offsets  [4]uint32 // mip levels
	AnimName [32]byte
	Flags    uint32
	Contents uint32
	Value    uint32
}

// Palette maps the color indices of WAL textures to colors
type Palette [256]color.RGBA

// LoadPalette reads the 256 color palette appended to the end of a PCX image
func LoadPalette(r io.ReaderAt, size int64) (Palette, error) {
	var palette Palette
	if size < 769 {
		return palette, ErrNoPalette
	}
	data := make([]byte, 769)
	if _, err := r.ReadAt(data, size-769); err != nil {
		return palette, fmt.Errorf("PCX palette: %w", err)
	}
	if data[0] != pcxPaletteMark {
		return palette, ErrNoPalette
	}
	for i := range palette {
		palette[i] = color.RGBA{data[1+i*3], data[2+i*3], data[3+i*3], 255}
	}
	return palette, nil
}

// LoadPaletteFromPAK reads the palette of pics/colormap.pcx
func LoadPaletteFromPAK(pak *PAK) (Palette, error) {
	r, err := pak.Open(paletteFilename)
	if err != nil {
		return Palette{}, err
	}
	return LoadPalette(r, r.Size())
}

// LoadQ2WAL decodes the full size mip level of a WAL texture
func LoadQ2WAL(r io.ReaderAt, palette *Palette) (*image.RGBA, WalHeader, error) {
	walHeader := WalHeader{}
	headerReader := io.NewSectionReader(r, 0, int64(binary.Size(walHeader)))
	if err := binary.Read(headerReader, binary.LittleEndian, &walHeader); err != nil {
		return nil, walHeader, fmt.Errorf("WAL header: %w", err)
	}
	if walHeader.Width == 0 || walHeader.Height == 0 || walHeader.Width > 4096 || walHeader.Height > 4096 {
		return nil, walHeader, fmt.Errorf("WAL size %dx%d", walHeader.Width, walHeader.Height)
	}

	numPixels := int(walHeader.Width * walHeader.Height)
	indices := make([]uint8, numPixels)
	if _, err := r.ReadAt(indices, int64(walHeader.Offsets[0])); err != nil {
		return nil, walHeader, fmt.Errorf("WAL pixels: %w", err)
	}

	// Save each pixel to the image
	img := image.NewRGBA(image.Rect(0, 0, int(walHeader.Width), int(walHeader.Height)))
	for pixelId, index := range indices {
		c := palette[index]
		img.Pix[pixelId*4+0] = c.R
		img.Pix[pixelId*4+1] = c.G
		img.Pix[pixelId*4+2] = c.B
		img.Pix[pixelId*4+3] = 255
	}
	return img, walHeader, nil
}

// WALFilename returns the PAK path of a texture name
func WALFilename(textureName string) string {
	// stored in different folder
	// append extension (.wal) as default
	return strings.ToLower("textures/" + strings.TrimSpace(textureName) + ".wal")
}

// LoadQ2WALFromPAK loads a texture by its name in the map's texinfo
func LoadQ2WALFromPAK(pak *PAK, textureName string, palette *Palette) (*image.RGBA, WalHeader, error) {
	walReader, err := pak.Open(WALFilename(textureName))
	if err != nil {
		return nil, WalHeader{}, err
	}
	return LoadQ2WAL(walReader, palette)
}

// AverageColor returns the mean color of an image, each channel in [0,1]
func AverageColor(img *image.RGBA) [3]float32 {
	var sum [3]uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sum[0] += uint64(c.R)
			sum[1] += uint64(c.G)
			sum[2] += uint64(c.B)
		}
	}
	n := float32(bounds.Dx()*bounds.Dy()) * 255
	if n == 0 {
		return [3]float32{}
	}
	return [3]float32{float32(sum[0]) / n, float32(sum[1]) / n, float32(sum[2]) / n}
}
