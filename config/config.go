// Package config holds the settings of a lighting run
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Lighter controls which stages run
type Lighter struct {
	DoDirectLight bool `toml:"doDirectLight"`
	DoRadiosity   bool `toml:"doRadiosity"`
	NumThreads    int  `toml:"numThreads"` // 0 means one per CPU
}

// DirectLight settings
type DirectLight struct {
	// Scales the color of every light into its free energy
	PointLightMultiplier float32 `toml:"pointLightMultiplier"`
}

// Radiosity patch grid settings. Each patch covers
// UPatchResolution x VPatchResolution elements.
type Radiosity struct {
	UPatchResolution int `toml:"uPatchResolution"`
	VPatchResolution int `toml:"vPatchResolution"`
}

// Lightmap layout and output settings
type Lightmap struct {
	Density  float32 `toml:"density"`  // texels per world unit
	PageSize int     `toml:"pageSize"` // texels per page side
	Padding  int     `toml:"padding"`  // free texels around each face
	Format   string  `toml:"format"`   // png, bmp or tiff
	Scale    float32 `toml:"scale"`    // radiance to 8 bit scale on export
}

// Debug output modes
type Debug struct {
	// Write the interpolated shading normal into the lightmap instead of light
	DumpNormals bool `toml:"dumpNormals"`
}

// Config is the full run configuration
type Config struct {
	Lighter     Lighter     `toml:"lighter"`
	DirectLight DirectLight `toml:"directlight"`
	Radiosity   Radiosity   `toml:"radiosity"`
	Lightmap    Lightmap    `toml:"lightmap"`
	Debug       Debug       `toml:"debug"`
}

// Default returns the settings used when no config file is given
func Default() Config {
	return Config{
		Lighter: Lighter{
			DoDirectLight: true,
			DoRadiosity:   false,
			NumThreads:    0,
		},
		DirectLight: DirectLight{
			PointLightMultiplier: 1,
		},
		Radiosity: Radiosity{
			UPatchResolution: 4,
			VPatchResolution: 4,
		},
		Lightmap: Lightmap{
			Density:  4,
			PageSize: 512,
			Padding:  1,
			Format:   "png",
			Scale:    1,
		},
	}
}

// Load reads a TOML file on top of the defaults. Unknown keys are errors.
func Load(filename string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %v: %w", filename, err)
	}
	return cfg, nil
}

// Decode parses TOML data into cfg, keeping fields the data does not set
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}
	return cfg.Validate()
}

// Encode writes cfg as TOML
func (cfg Config) Encode() ([]byte, error) {
	return toml.Marshal(cfg)
}

// Threads returns the number of shading goroutines to use
func (cfg Config) Threads() int {
	if cfg.Lighter.NumThreads > 0 {
		return cfg.Lighter.NumThreads
	}
	return runtime.NumCPU()
}

// Validate checks the value ranges
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Radiosity.UPatchResolution < 1 || cfg.Radiosity.VPatchResolution < 1 {
		errs = append(errs, fmt.Errorf("radiosity patch resolution must be >= 1, got %dx%d",
			cfg.Radiosity.UPatchResolution, cfg.Radiosity.VPatchResolution))
	}
	if cfg.DirectLight.PointLightMultiplier < 0 {
		errs = append(errs, fmt.Errorf("pointLightMultiplier must not be negative, got %v",
			cfg.DirectLight.PointLightMultiplier))
	}
	if cfg.Lightmap.Density <= 0 {
		errs = append(errs, fmt.Errorf("lightmap density must be positive, got %v", cfg.Lightmap.Density))
	}
	if cfg.Lightmap.PageSize < 8 {
		errs = append(errs, fmt.Errorf("lightmap pageSize must be at least 8, got %d", cfg.Lightmap.PageSize))
	}
	if cfg.Lightmap.Padding < 0 {
		errs = append(errs, fmt.Errorf("lightmap padding must not be negative, got %d", cfg.Lightmap.Padding))
	}
	if cfg.Lighter.NumThreads < 0 {
		errs = append(errs, fmt.Errorf("numThreads must not be negative, got %d", cfg.Lighter.NumThreads))
	}
	return errors.Join(errs...)
}
