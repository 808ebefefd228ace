package lightmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format of exported lightmap images
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png", "":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return FormatPNG, fmt.Errorf("lightmap: unknown image format %q", name)
}

func (f Format) Extension() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	}
	return "png"
}

func (f Format) String() string {
	return f.Extension()
}

// ToRGBA converts the accumulated radiance to 8 bit color. Each channel is
// multiplied by 255 * scale; if any channel then exceeds the maximum value
// all three are rescaled so the hue is kept.
func ToRGBA(lm *Lightmap, scale float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, lm.Width(), lm.Height()))
	data := lm.Data()
	for i, c := range data {
		x := i % lm.Width()
		y := i / lm.Width()

		r := c.R * 255 * scale
		g := c.G * 255 * scale
		b := c.B * 255 * scale
		max := r
		if g > max {
			max = g
		}
		if b > max {
			max = b
		}
		// Rescale color components if any component exceeds the maximum value (255)
		if max > 255 {
			t := float32(255.0) / max
			r *= t
			g *= t
			b *= t
		}
		img.SetRGBA(x, y, color.RGBA{clampByte(r), clampByte(g), clampByte(b), 255})
	}
	return img
}

func clampByte(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Encode writes the lightmap as an image in the given format
func Encode(w io.Writer, lm *Lightmap, format Format, scale float32) error {
	img := ToRGBA(lm, scale)
	switch format {
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return png.Encode(w, img)
}

// WriteFile encodes the lightmap into filename
func WriteFile(filename string, lm *Lightmap, format Format, scale float32) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Encode(f, lm, format, scale); err != nil {
		f.Close()
		return fmt.Errorf("encode %v: %w", filename, err)
	}
	return f.Close()
}

// ReadFile loads a previously exported lightmap image as RGBA pixels
func ReadFile(filename string) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var img image.Image
	switch ext := strings.ToLower(filename[strings.LastIndex(filename, ".")+1:]); ext {
	case "bmp":
		img, err = bmp.Decode(f)
	case "tif", "tiff":
		img, err = tiff.Decode(f)
	default:
		img, err = png.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", filename, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba, nil
}
