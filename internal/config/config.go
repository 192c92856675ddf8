// Package config handles skinning tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all settings shared by skinview and skintool.
type Config struct {
	Skinning   SkinningConfig   `yaml:"skinning"`
	Procedural ProceduralConfig `yaml:"procedural"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SkinningConfig selects how the procedural clip is animated.
type SkinningConfig struct {
	Method    string  `yaml:"method"`     // software, hardware or hardware_without_dq
	FrameRate float32 `yaml:"frame_rate"` // Sampled poses per second
	Duration  float32 `yaml:"duration"`   // Clip length in seconds
}

// ProceduralConfig shapes the generated tube mesh and its bones.
type ProceduralConfig struct {
	Segments       int     `yaml:"segments"` // Rings along the tube axis minus one
	Rings          int     `yaml:"rings"`    // Vertices around each ring
	Bones          int     `yaml:"bones"`
	MaxVertexBones int     `yaml:"max_vertex_bones"` // Influences per vertex
	BendDegrees    float32 `yaml:"bend_degrees"`     // Peak bend of each joint
}

// ViewerConfig holds display settings for skinview.
type ViewerConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	Fullscreen       bool    `yaml:"fullscreen"`
	VSync            bool    `yaml:"vsync"`
	SunLongitude     float32 `yaml:"sun_longitude"` // Degrees around Y
	SunLatitude      float32 `yaml:"sun_latitude"`  // Degrees above the horizon
	ScreenshotDir    string  `yaml:"screenshot_dir"`
	ScreenshotFormat string  `yaml:"screenshot_format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Skinning: SkinningConfig{
			Method:    "hardware",
			FrameRate: 30,
			Duration:  2,
		},
		Procedural: ProceduralConfig{
			Segments:       24,
			Rings:          16,
			Bones:          4,
			MaxVertexBones: 2,
			BendDegrees:    45,
		},
		Viewer: ViewerConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			SunLongitude:     45,
			SunLatitude:      50,
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MaxBones is the bone palette size of the skinned shader.
const MaxBones = 64

var validMethods = []string{"software", "cpu", "hardware", "gpu", "hardware_without_dq"}

// Validate reports every setting that cannot produce a skin or a window.
func (c *Config) Validate() error {
	var errs []error

	method := strings.ToLower(strings.TrimSpace(c.Skinning.Method))
	known := false
	for _, m := range validMethods {
		if method == m {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("skinning.method: unknown %q", c.Skinning.Method))
	}
	if c.Skinning.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("skinning.frame_rate: must be positive, got %v", c.Skinning.FrameRate))
	}
	if c.Skinning.Duration < 0 {
		errs = append(errs, fmt.Errorf("skinning.duration: must not be negative, got %v", c.Skinning.Duration))
	}

	if c.Procedural.Bones > MaxBones {
		errs = append(errs, fmt.Errorf("procedural.bones: at most %d, got %d", MaxBones, c.Procedural.Bones))
	}

	switch strings.ToLower(c.Viewer.ScreenshotFormat) {
	case "png", "bmp":
	default:
		errs = append(errs, fmt.Errorf("viewer.screenshot_format: unknown %q", c.Viewer.ScreenshotFormat))
	}

	positive := []struct {
		name  string
		value int
	}{
		{"procedural.segments", c.Procedural.Segments},
		{"procedural.rings", c.Procedural.Rings},
		{"procedural.bones", c.Procedural.Bones},
		{"procedural.max_vertex_bones", c.Procedural.MaxVertexBones},
		{"viewer.width", c.Viewer.Width},
		{"viewer.height", c.Viewer.Height},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", p.name, p.value))
		}
	}

	return errors.Join(errs...)
}
