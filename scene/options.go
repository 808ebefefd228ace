// Package scene builds lighter scenes from scene descriptions and Quake 2
// maps: it parameterizes every face into a lightmap atlas page, creates
// the primitives and lights and builds the k-d trees.
package scene

import (
	"log/slog"

	"github.com/samuelyuan/go-lighter/config"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/kdtree"
)

// Logger receives loader progress
var Logger *slog.Logger

func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

// DefaultReflectance is used for faces without a material
var DefaultReflectance = geom.Gray(0.75)

// Options controls how faces are laid out in the lightmaps
type Options struct {
	Density  float32 // texels per world unit, description scenes only
	PageSize int
	Padding  int

	// Radiosity patch size in elements; zero skips the patch grid
	PatchResU int
	PatchResV int

	KDTree      kdtree.Options
	Reflectance geom.Color

	// Reflectance by texture name, for Quake 2 maps
	Materials map[string]geom.Color
}

// NewOptions derives the loader options from a run configuration
func NewOptions(cfg config.Config) Options {
	opts := Options{
		Density:     cfg.Lightmap.Density,
		PageSize:    cfg.Lightmap.PageSize,
		Padding:     cfg.Lightmap.Padding,
		KDTree:      kdtree.DefaultOptions,
		Reflectance: DefaultReflectance,
	}
	if cfg.Lighter.DoRadiosity {
		opts.PatchResU = cfg.Radiosity.UPatchResolution
		opts.PatchResV = cfg.Radiosity.VPatchResolution
	}
	return opts
}
