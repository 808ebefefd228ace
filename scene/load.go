package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuelyuan/go-lighter/q2file"
)

// LoadFile loads a scene description (.toml, .yaml, .yml) or a Quake 2
// map (.bsp)
func LoadFile(filename string, opts Options) (*Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".bsp":
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		mapData, err := q2file.LoadQ2BSP(f)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", filename, err)
		}
		return FromQ2(mapData, opts)
	case ".toml", ".yaml", ".yml":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		format := FormatTOML
		if ext != ".toml" {
			format = FormatYAML
		}
		desc, err := DecodeDescription(data, format)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", filename, err)
		}
		return Build(desc, opts)
	default:
		return nil, fmt.Errorf("%v: unknown scene format %q", filename, ext)
	}
}

// LoadPAK loads a Quake 2 map stored in a PAK archive
func LoadPAK(pakFilename, mapName string, opts Options) (*Scene, error) {
	f, err := os.Open(pakFilename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pak, err := q2file.LoadQ2PAK(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", pakFilename, err)
	}
	mapData, err := q2file.LoadQ2BSPFromPAK(pak, mapName)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", pakFilename, err)
	}

	if opts.Materials == nil {
		materials, err := Q2Materials(pak, mapData)
		if err != nil {
			logger().Warn("no texture colors, using the default reflectance", "err", err)
		}
		opts.Materials = materials
	}
	return FromQ2(mapData, opts)
}
