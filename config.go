package tetraview

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/solarlune/tetraview/colors"
)

// ErrInvalidConfig is wrapped by every error Config.Validate returns.
var ErrInvalidConfig = errors.New("invalid config")

// Vec3 is a plain X, Y, Z triplet as it appears in configuration files (e.g. `model_scale = [0.01, 0.01, 0.01]`).
type Vec3 [3]float64

// Config holds everything that can vary between viewer setups; see Presets for the built-in ones. Anything not listed here
// is fixed by the viewer itself.
type Config struct {
	Title        string `toml:"title"`
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	HiDPI        bool   `toml:"hidpi"` // If the render surface should be scaled by the monitor's device scale factor.

	// Backends is the backend preference order; the first available one is used.
	Backends []Backend `toml:"backends"`

	FieldOfView       float64 `toml:"field_of_view"` // Vertical field of view, in degrees.
	Near              float64 `toml:"near"`
	Far               float64 `toml:"far"`
	CameraDistance    float64 `toml:"camera_distance"` // The camera starts at (d, d, d), looking at the origin.
	CameraMinDistance float64 `toml:"camera_min_distance"`
	CameraMaxDistance float64 `toml:"camera_max_distance"`

	Background       string  `toml:"background"` // Hex color, like "#595959".
	AmbientIntensity float32 `toml:"ambient_intensity"`
	LightIntensity   float32 `toml:"light_intensity"` // Energy of each of the three directional lights.

	AssetDir    string `toml:"asset_dir"`  // Directory ModelPath is resolved against.
	ModelPath   string `toml:"model_path"` // Slash-separated path of the .gltf / .glb file within AssetDir.
	ModelScale  Vec3   `toml:"model_scale"`
	ModelOffset Vec3   `toml:"model_offset"`

	EnableZoom      bool    `toml:"enable_zoom"`
	AutoRotate      bool    `toml:"auto_rotate"`
	AutoRotateSpeed float64 `toml:"auto_rotate_speed"` // 1 is one full revolution per minute at 60 ticks per second.
	EnableDamping   bool    `toml:"enable_damping"`
	DampingFactor   float64 `toml:"damping_factor"`
	MinPolarAngle   float64 `toml:"min_polar_angle"` // How far the camera can orbit up, in degrees down from straight above.
	MaxPolarAngle   float64 `toml:"max_polar_angle"`

	LoadingText string `toml:"loading_text"`
	ErrorText   string `toml:"error_text"`
}

// DefaultConfig returns the default setup: OpenGL only, the camera five units out on each axis, and a model exported in
// centimeters that gets scaled down by 100.
func DefaultConfig() Config {
	return Config{
		Title:        "tetraview",
		WindowWidth:  1280,
		WindowHeight: 720,
		HiDPI:        true,

		Backends: []Backend{BackendOpenGL},

		FieldOfView:       45,
		Near:              0.1,
		Far:               50,
		CameraDistance:    5,
		CameraMinDistance: 1,
		CameraMaxDistance: 20,

		Background:       "#595959",
		AmbientIntensity: 0.5,
		LightIntensity:   3,

		AssetDir:    ".",
		ModelPath:   "public/model.gltf",
		ModelScale:  Vec3{0.01, 0.01, 0.01},
		ModelOffset: Vec3{0, -3.5, -0.5},

		EnableZoom:      false,
		AutoRotate:      true,
		AutoRotateSpeed: 1,
		EnableDamping:   true,
		DampingFactor:   0.05,
		MinPolarAngle:   0,
		MaxPolarAngle:   180,

		LoadingText: "Loading . . . ",
		ErrorText:   "ERROR loading model",
	}
}

// ShowcaseConfig prefers the native backend (falling back to OpenGL), sits further back with dimmer lights, and lets the
// user zoom within a wider range.
func ShowcaseConfig() Config {
	cfg := DefaultConfig()
	cfg.Title = "tetraview - showcase"
	cfg.Backends = []Backend{BackendNative, BackendOpenGL}
	cfg.CameraDistance = 7
	cfg.CameraMinDistance = 2
	cfg.CameraMaxDistance = 30
	cfg.Background = "#303030"
	cfg.LightIntensity = 2
	cfg.ModelScale = Vec3{0.02, 0.02, 0.02}
	cfg.ModelOffset = Vec3{0, -2, 0}
	cfg.EnableZoom = true
	return cfg
}

// Presets maps preset names to the functions that build them.
var Presets = map[string]func() Config{
	"default":  DefaultConfig,
	"showcase": ShowcaseConfig,
}

// PresetNames returns the names of the known presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named preset configuration.
func Preset(name string) (Config, error) {
	build, ok := Presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalidConfig, name, PresetNames())
	}
	return build(), nil
}

// DecodeConfig decodes TOML data over the provided base configuration, so any keys the data leaves out keep their
// values from base. The result is validated.
func DecodeConfig(data []byte, base Config) (Config, error) {

	cfg := base

	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("decoding config at line %d, column %d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil

}

// LoadConfigFile reads the TOML file at path over base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := DecodeConfig(data, base)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the viewer can't work with.
func (cfg Config) Validate() error {

	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		invalid("window size must be positive, got %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}

	if len(cfg.Backends) == 0 {
		invalid("at least one backend is required")
	}
	for _, b := range cfg.Backends {
		if !b.Known() {
			invalid("unknown backend %q", b)
		}
	}

	if cfg.FieldOfView <= 0 || cfg.FieldOfView >= 180 {
		invalid("field_of_view must be between 0 and 180 degrees, got %v", cfg.FieldOfView)
	}
	if cfg.Near <= 0 || cfg.Far <= cfg.Near {
		invalid("clipping planes must satisfy 0 < near < far, got near=%v far=%v", cfg.Near, cfg.Far)
	}

	if cfg.CameraDistance <= 0 {
		invalid("camera_distance must be positive, got %v", cfg.CameraDistance)
	}
	if cfg.CameraMinDistance < 0 || cfg.CameraMinDistance > cfg.CameraMaxDistance {
		invalid("camera distance range is empty: min=%v max=%v", cfg.CameraMinDistance, cfg.CameraMaxDistance)
	}

	if _, err := colors.FromHex(cfg.Background); err != nil {
		invalid("background: %v", err)
	}

	if cfg.ModelPath == "" {
		invalid("model_path is required")
	}
	for i, s := range cfg.ModelScale {
		if s <= 0 {
			invalid("model_scale[%d] must be positive, got %v", i, s)
		}
	}

	if cfg.EnableDamping && (cfg.DampingFactor <= 0 || cfg.DampingFactor > 1) {
		invalid("damping_factor must be in (0, 1], got %v", cfg.DampingFactor)
	}

	if cfg.MinPolarAngle < 0 || cfg.MaxPolarAngle > 180 || cfg.MinPolarAngle > cfg.MaxPolarAngle {
		invalid("polar angles must satisfy 0 <= min <= max <= 180, got min=%v max=%v", cfg.MinPolarAngle, cfg.MaxPolarAngle)
	}

	return errors.Join(errs...)

}
