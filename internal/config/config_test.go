package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate moves the test into an empty working and config directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
	return dir
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Animation.Speed != 1 {
		t.Errorf("expected speed 1, got %v", cfg.Animation.Speed)
	}
	if cfg.Animation.LoopPeriod != 4*time.Second {
		t.Errorf("expected loop period 4s, got %v", cfg.Animation.LoopPeriod)
	}
	if cfg.Skinning.Sections != 20 || cfg.Skinning.Quarters != 20 {
		t.Errorf("expected 20x20 tessellation, got %dx%d", cfg.Skinning.Sections, cfg.Skinning.Quarters)
	}
	if cfg.Skinning.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Skinning.Workers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
window:
  width: 1920
  height: 1080
  fullscreen: true
  wireframe: true
animation:
  speed: 0.5
  loop_period: 8s
skinning:
  sections: 40
  radius: 2.5
  workers: 4
logging:
  level: debug
  log_file: skinview.log
`)

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || !cfg.Window.Fullscreen || !cfg.Window.Wireframe {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Animation.Speed != 0.5 {
		t.Errorf("expected speed 0.5, got %v", cfg.Animation.Speed)
	}
	if cfg.Animation.LoopPeriod != 8*time.Second {
		t.Errorf("expected loop period 8s, got %v", cfg.Animation.LoopPeriod)
	}
	if cfg.Skinning.Sections != 40 || cfg.Skinning.Radius != 2.5 || cfg.Skinning.Workers != 4 {
		t.Errorf("skinning = %+v", cfg.Skinning)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Skinning.Quarters != 20 {
		t.Errorf("expected default quarters 20, got %d", cfg.Skinning.Quarters)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "skinview.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "window:\n  width: not a number\n  invalid syntax here\n"},
		{"unknown key", "window:\n  depth: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content)
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	writeFile(t, path, "")
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty file changed config: %+v", cfg)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	writeFile(t, filepath.Join(dir, "skinview.yaml"), "window:\n  width: 800\n")
	if path := findConfigFile(); path == "" {
		t.Error("expected to find skinview.yaml in current directory")
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{"debug", []string{"-debug"}, func(t *testing.T, cfg *Config) {
			if cfg.Logging.Level != "debug" {
				t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
			}
		}},
		{"fullscreen", []string{"-fullscreen"}, func(t *testing.T, cfg *Config) {
			if !cfg.Window.Fullscreen {
				t.Error("expected fullscreen")
			}
		}},
		{"windowed", []string{"-windowed"}, func(t *testing.T, cfg *Config) {
			if cfg.Window.Fullscreen {
				t.Error("expected windowed")
			}
		}},
		{"size", []string{"-width", "2560", "-height", "1440"}, func(t *testing.T, cfg *Config) {
			if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
				t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
			}
		}},
		{"wireframe", []string{"-wireframe"}, func(t *testing.T, cfg *Config) {
			if !cfg.Window.Wireframe {
				t.Error("expected wireframe")
			}
		}},
		{"speed and workers", []string{"-speed", "2", "-workers", "3"}, func(t *testing.T, cfg *Config) {
			if cfg.Animation.Speed != 2 || cfg.Skinning.Workers != 3 {
				t.Errorf("speed %v workers %d", cfg.Animation.Speed, cfg.Skinning.Workers)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			parseFlags(t, tt.args...).apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "window:\n  width: 1600\n  height: 900\n")

	cfg, err := Load(parseFlags(t, "-config", path, "-width", "1920"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "skinview.yaml"), "animation:\n  speed: -1\n")

	if _, err := Load(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"zero speed", func(c *Config) { c.Animation.Speed = 0 }},
		{"negative loop", func(c *Config) { c.Animation.LoopPeriod = -time.Second }},
		{"zero retarget", func(c *Config) { c.Animation.RetargetDuration = 0 }},
		{"two quarters", func(c *Config) { c.Skinning.Quarters = 2 }},
		{"zero radius", func(c *Config) { c.Skinning.Radius = 0 }},
		{"no workers", func(c *Config) { c.Skinning.Workers = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.Animation.LoopPeriod = 6 * time.Second
	want.Skinning.Workers = 2
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
