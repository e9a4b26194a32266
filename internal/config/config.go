// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Animation AnimationConfig `yaml:"animation"`
	Skinning  SkinningConfig  `yaml:"skinning"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Wireframe  bool   `yaml:"wireframe"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	// Speed scales wall-clock time before it reaches the scene.
	Speed float64 `yaml:"speed"`
	// LoopPeriod restarts the rig clocks after this much scene time. Zero
	// plays the cycle once and holds the last pose.
	LoopPeriod time.Duration `yaml:"loop_period"`
	// RetargetDuration is how long a retarget key press takes to settle.
	RetargetDuration time.Duration `yaml:"retarget_duration"`
	// TurnStep is the turntable angle per key press, in degrees.
	TurnStep float32 `yaml:"turn_step"`
}

// SkinningConfig holds rig tessellation and skinning settings.
type SkinningConfig struct {
	Sections int     `yaml:"sections"`
	Quarters int     `yaml:"quarters"`
	Radius   float32 `yaml:"radius"`
	Workers  int     `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "skinview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Animation: AnimationConfig{
			Speed:            1,
			LoopPeriod:       4 * time.Second,
			RetargetDuration: time.Second,
			TurnStep:         5,
		},
		Skinning: SkinningConfig{
			Sections: 20,
			Quarters: 20,
			Radius:   1,
			Workers:  1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting the viewer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case !(c.Animation.Speed > 0):
		return fmt.Errorf("%w: animation speed %v", ErrInvalid, c.Animation.Speed)
	case c.Animation.LoopPeriod < 0:
		return fmt.Errorf("%w: negative loop period %v", ErrInvalid, c.Animation.LoopPeriod)
	case c.Animation.RetargetDuration <= 0:
		return fmt.Errorf("%w: retarget duration %v", ErrInvalid, c.Animation.RetargetDuration)
	case c.Skinning.Sections < 1 || c.Skinning.Quarters < 3:
		return fmt.Errorf("%w: tessellation %d sections, %d quarters", ErrInvalid, c.Skinning.Sections, c.Skinning.Quarters)
	case !(c.Skinning.Radius > 0):
		return fmt.Errorf("%w: radius %v", ErrInvalid, c.Skinning.Radius)
	case c.Skinning.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Skinning.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
