package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Lighter.DoDirectLight)
	assert.Equal(t, float32(1), cfg.DirectLight.PointLightMultiplier)
	assert.Greater(t, cfg.Threads(), 0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	name := filepath.Join(t.TempDir(), "lighter.toml")
	data := `
[lighter]
doRadiosity = true
numThreads = 3

[directlight]
pointLightMultiplier = 2.5

[radiosity]
uPatchResolution = 2
`
	require.NoError(t, os.WriteFile(name, []byte(data), 0o644))

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.True(t, cfg.Lighter.DoRadiosity)
	assert.True(t, cfg.Lighter.DoDirectLight)
	assert.Equal(t, 3, cfg.Threads())
	assert.Equal(t, float32(2.5), cfg.DirectLight.PointLightMultiplier)
	assert.Equal(t, 2, cfg.Radiosity.UPatchResolution)
	assert.Equal(t, 4, cfg.Radiosity.VPatchResolution)
	assert.Equal(t, 512, cfg.Lightmap.PageSize)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	err := Decode([]byte("[lighter]\ndoRadiositee = true\n"), &cfg)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero patch resolution", func(c *Config) { c.Radiosity.VPatchResolution = 0 }},
		{"negative multiplier", func(c *Config) { c.DirectLight.PointLightMultiplier = -1 }},
		{"zero density", func(c *Config) { c.Lightmap.Density = 0 }},
		{"tiny page", func(c *Config) { c.Lightmap.PageSize = 4 }},
		{"negative threads", func(c *Config) { c.Lighter.NumThreads = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Debug.DumpNormals = true
	data, err := cfg.Encode()
	require.NoError(t, err)

	decoded := Default()
	require.NoError(t, Decode(data, &decoded))
	assert.Equal(t, cfg, decoded)
}
