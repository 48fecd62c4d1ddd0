package tetraview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate(), "preset %s", name)
	}
}

func TestDefaultConfigMatchesStockViewer(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, Vec3{0.01, 0.01, 0.01}, cfg.ModelScale)
	assert.Equal(t, Vec3{0, -3.5, -0.5}, cfg.ModelOffset)
	assert.Equal(t, []Backend{BackendOpenGL}, cfg.Backends)
	assert.Equal(t, 45.0, cfg.FieldOfView)
	assert.Equal(t, "public/model.gltf", cfg.ModelPath)
	assert.False(t, cfg.EnableZoom)
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("nope")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDecodeConfigOverlaysBase(t *testing.T) {

	data := []byte(`
title = "my model"
backends = ["native", "opengl"]
camera_distance = 9
model_path = "assets/ship.glb"
model_offset = [1, 2, 3]
`)

	cfg, err := DecodeConfig(data, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "my model", cfg.Title)
	assert.Equal(t, []Backend{BackendNative, BackendOpenGL}, cfg.Backends)
	assert.Equal(t, 9.0, cfg.CameraDistance)
	assert.Equal(t, "assets/ship.glb", cfg.ModelPath)
	assert.Equal(t, Vec3{1, 2, 3}, cfg.ModelOffset)

	// Untouched keys keep the base's values.
	assert.Equal(t, Vec3{0.01, 0.01, 0.01}, cfg.ModelScale)
	assert.Equal(t, "#595959", cfg.Background)

}

func TestDecodeConfigRejectsInvalid(t *testing.T) {

	cases := map[string]string{
		"backend":  `backends = ["vulkan"]`,
		"distance": "camera_min_distance = 10\ncamera_max_distance = 5",
		"scale":    `model_scale = [0.01, 0, 0.01]`,
		"color":    `background = "#zz0000"`,
		"model":    `model_path = ""`,
		"planes":   "near = 5\nfar = 1",
		"polar":    "min_polar_angle = 90\nmax_polar_angle = 45",
	}

	for name, data := range cases {
		_, err := DecodeConfig([]byte(data), DefaultConfig())
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

}

func TestDecodeConfigSyntaxError(t *testing.T) {
	_, err := DecodeConfig([]byte("title = "), DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadConfigFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`light_intensity = 1.5`), 0o644))

	cfg, err := LoadConfigFile(path, ShowcaseConfig())
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), cfg.LightIntensity)
	assert.True(t, cfg.EnableZoom)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"), DefaultConfig())
	assert.Error(t, err)

}

func TestSampleConfigsMatchPresets(t *testing.T) {

	data, err := os.ReadFile(filepath.Join("configs", "default.toml"))
	require.NoError(t, err)

	// The default file spells out every key, so it doesn't need a base.
	cfg, err := DecodeConfig(data, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	data, err = os.ReadFile(filepath.Join("configs", "showcase.toml"))
	require.NoError(t, err)

	cfg, err = DecodeConfig(data, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ShowcaseConfig(), cfg)

}
