package config

import "flag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config     string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Wireframe  bool
	Speed      float64
	Workers    int
}

// RegisterFlags binds the viewer flags to fs and returns their destination.
// Call fs.Parse before Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.BoolVar(&f.Wireframe, "wireframe", false, "Draw polygons as lines")
	fs.Float64Var(&f.Speed, "speed", 0, "Playback speed multiplier")
	fs.IntVar(&f.Workers, "workers", 0, "Meshes skinned in parallel")
	return f
}

// apply copies the set flags over cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Wireframe {
		cfg.Window.Wireframe = true
	}
	if f.Speed > 0 {
		cfg.Animation.Speed = f.Speed
	}
	if f.Workers > 0 {
		cfg.Skinning.Workers = f.Workers
	}
}
