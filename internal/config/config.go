// Package config loads the per-run app params.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotJSON is returned by Load for a path without a .json extension.
var ErrNotJSON = errors.New("config file must have .json extension")

const maxFileSize = 1 * 1024 * 1024 // 1MB

// MaxBackgroundObjectDensity bounds background_object_density.
const MaxBackgroundObjectDensity = 100

// AppParams are the tunable inputs of a composition run.
type AppParams struct {
	ScaleFactors                       []float64 `json:"scale_factors"`
	MaxFrames                          int       `json:"max_frames"`
	MaxForegroundObjectsPerFrame       int       `json:"max_foreground_objects_per_frame"`
	NumBackgroundFillPasses            int       `json:"num_background_fill_passes"`
	BackgroundObjectDensity            float64   `json:"background_object_density"`
	ScalingMin                         float64   `json:"scaling_min"`
	ScalingSize                        float64   `json:"scaling_size"`
	LightColorMin                      float64   `json:"light_color_min"`
	LightRotationMax                   float64   `json:"light_rotation_max"`
	BackgroundHueMaxOffset             float64   `json:"background_hue_max_offset"`
	OccludingHueMaxOffset              float64   `json:"occluding_hue_max_offset"`
	BackgroundObjectInForegroundChance float64   `json:"background_object_in_foreground_chance"`
	NoiseStrengthMax                   float64   `json:"noise_strength_max"`
	BlurKernelSizeMax                  float64   `json:"blur_kernel_size_max"`
	BlurStandardDeviationMax           float64   `json:"blur_standard_deviation_max"`

	// Seed offsets the foreground and background stream seeds; 0 keeps the
	// stock seeds.
	Seed uint32 `json:"seed"`
	// FramesPerScale advances the scale index every n frames when non-zero,
	// in addition to advancing it whenever the curriculum wraps.
	FramesPerScale int `json:"frames_per_scale"`
}

// Default returns the stock app params.
func Default() *AppParams {
	return &AppParams{
		ScaleFactors:                       []float64{1.0, 0.5},
		MaxFrames:                          5000,
		MaxForegroundObjectsPerFrame:       500,
		NumBackgroundFillPasses:            1,
		BackgroundObjectDensity:            3,
		ScalingMin:                         0.2,
		ScalingSize:                        0.1,
		LightColorMin:                      0.1,
		LightRotationMax:                   90,
		BackgroundHueMaxOffset:             180,
		OccludingHueMaxOffset:              180,
		BackgroundObjectInForegroundChance: 0.2,
		NoiseStrengthMax:                   0.02,
		BlurKernelSizeMax:                  0.01,
		BlurStandardDeviationMax:           0.5,
	}
}

// Load reads app params from a JSON file. Fields omitted from the file keep
// their Default values, so partial files are valid.
func Load(path string) (*AppParams, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("%w, got %q", ErrNotJSON, ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field against its allowed range.
func (c *AppParams) Validate() error {
	if len(c.ScaleFactors) == 0 {
		return errors.New("scale_factors must not be empty")
	}
	for i, s := range c.ScaleFactors {
		if s <= 0 {
			return fmt.Errorf("scale_factors[%d] must be positive, got %f", i, s)
		}
	}
	if c.MaxFrames <= 0 {
		return fmt.Errorf("max_frames must be positive, got %d", c.MaxFrames)
	}
	if c.MaxForegroundObjectsPerFrame < 0 {
		return fmt.Errorf("max_foreground_objects_per_frame must be non-negative, got %d", c.MaxForegroundObjectsPerFrame)
	}
	if c.NumBackgroundFillPasses < 0 {
		return fmt.Errorf("num_background_fill_passes must be non-negative, got %d", c.NumBackgroundFillPasses)
	}
	if c.BackgroundObjectDensity < 0 || c.BackgroundObjectDensity > MaxBackgroundObjectDensity {
		return fmt.Errorf("background_object_density must be between 0 and %d, got %f", MaxBackgroundObjectDensity, c.BackgroundObjectDensity)
	}
	if c.ScalingMin < 0 || c.ScalingSize < 0 {
		return fmt.Errorf("scaling_min and scaling_size must be non-negative, got %f and %f", c.ScalingMin, c.ScalingSize)
	}
	if c.LightColorMin < 0 || c.LightColorMin > 1 {
		return fmt.Errorf("light_color_min must be between 0 and 1, got %f", c.LightColorMin)
	}
	if c.BackgroundObjectInForegroundChance < 0 || c.BackgroundObjectInForegroundChance > 1 {
		return fmt.Errorf("background_object_in_foreground_chance must be between 0 and 1, got %f", c.BackgroundObjectInForegroundChance)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"light_rotation_max", c.LightRotationMax},
		{"background_hue_max_offset", c.BackgroundHueMaxOffset},
		{"occluding_hue_max_offset", c.OccludingHueMaxOffset},
		{"noise_strength_max", c.NoiseStrengthMax},
		{"blur_kernel_size_max", c.BlurKernelSizeMax},
		{"blur_standard_deviation_max", c.BlurStandardDeviationMax},
	} {
		if f.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", f.name, f.value)
		}
	}
	if c.FramesPerScale < 0 {
		return fmt.Errorf("frames_per_scale must be non-negative, got %d", c.FramesPerScale)
	}
	return nil
}
