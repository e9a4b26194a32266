// Package viewer implements the interactive skinning viewer main loop.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skinview/internal/config"
	"github.com/Faultbox/skinview/internal/engine/camera"
	"github.com/Faultbox/skinview/internal/engine/input"
	"github.com/Faultbox/skinview/internal/engine/model"
	"github.com/Faultbox/skinview/internal/engine/renderer"
	"github.com/Faultbox/skinview/internal/engine/scene"
	"github.com/Faultbox/skinview/internal/engine/window"
	"github.com/Faultbox/skinview/internal/logger"
	"github.com/Faultbox/skinview/internal/viewer/clock"
	"github.com/Faultbox/skinview/pkg/math"
)

// retargetBone is the bone the retarget key bends.
const retargetBone = 1

// Viewer owns the window, the rig and the loop that animates it.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	clock    *clock.Clock

	rig   *model.Rig
	scene *scene.Scene

	bent bool
}

// New builds the rig, opens the window and uploads the mesh.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("workers", cfg.Skinning.Workers),
	)

	v := &Viewer{cfg: cfg}

	var err error
	v.rig, err = model.Cylinder(model.CylinderOptions{
		Sections: cfg.Skinning.Sections,
		Quarters: cfg.Skinning.Quarters,
		Radius:   cfg.Skinning.Radius,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rig: %w", err)
	}
	v.rig.Control.Step = cfg.Animation.TurnStep

	v.scene, err = scene.New(v.rig.Root, scene.Config{Workers: cfg.Skinning.Workers})
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	if err := v.scene.AddMesh(v.rig.Mesh); err != nil {
		return nil, fmt.Errorf("failed to add mesh: %w", err)
	}

	// Window first: the renderer needs its GL context.
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh, Wireframe: cfg.Window.Wireframe})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if err := v.renderer.Upload(v.rig.Mesh); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to upload mesh: %w", err)
	}

	v.input = input.New(input.DefaultBindings())

	// The arm swings well outside its rest bounds.
	v.camera = camera.NewOrbitCamera()
	v.camera.FitSphere(v.rig.Bounds.Center(), v.rig.Bounds.Radius()*1.5)

	logger.Info("viewer initialized")
	return v, nil
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	start := time.Now()
	v.clock = clock.New(start, v.cfg.Animation.Speed, v.cfg.Animation.LoopPeriod)
	v.restart()

	frames := 0
	fpsTimer := start

	logger.Info("starting main loop")
	for v.running {
		if v.input.Update() {
			break
		}
		for _, e := range v.input.Events() {
			if e.Type == input.EventWindowResize {
				v.renderer.Resize(v.window.DrawableSize())
			}
		}
		if wheel := v.input.Wheel(); wheel != 0 {
			v.camera.HandleZoom(wheel)
		}
		for _, a := range v.input.Actions() {
			if err := v.handle(a); err != nil {
				logger.Warn("action failed", zap.Stringer("action", a), zap.Error(err))
			}
		}

		now := v.clock.Advance(time.Now())
		if v.clock.LoopDue() {
			v.restart()
		}

		frame, err := v.scene.Tick(now, nil)
		if err != nil {
			return fmt.Errorf("tick at %.3fs: %w", now, err)
		}
		v.render(frame)
		v.window.SwapBuffers()

		frames++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frames) / elapsed.Seconds()
			v.window.SetTitle(fmt.Sprintf("%s  %.0f fps  t=%.2fs  x%.2g", v.cfg.Window.Title, fps, v.clock.CycleTime(), v.clock.Speed()))
			logger.Debug("fps", zap.Float64("fps", fps), zap.Float64("scene_time", now))
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// handle applies one input action.
func (v *Viewer) handle(a input.Action) error {
	switch a {
	case input.ActionQuit:
		v.running = false
	case input.ActionRestart:
		v.restart()
	case input.ActionTurnLeft:
		v.rig.Control.Nudge(-1)
	case input.ActionTurnRight:
		v.rig.Control.Nudge(1)
	case input.ActionPause:
		v.clock.TogglePause()
		logger.Info("playback", zap.Bool("paused", v.clock.Paused()))
	case input.ActionFaster:
		v.clock.SetSpeed(v.clock.Speed() * 2)
	case input.ActionSlower:
		v.clock.SetSpeed(v.clock.Speed() / 2)
	case input.ActionWireframe:
		v.renderer.SetWireframe(!v.renderer.Wireframe())
	case input.ActionRetarget:
		v.bent = !v.bent
		target := math.QuatIdentity()
		if v.bent {
			target = math.QuatFromAxisAngle(math.Vec3{Z: 1}, math.Radians(90))
		}
		return v.rig.Retarget(retargetBone, v.clock.Now(), target, v.cfg.Animation.RetargetDuration.Seconds())
	}
	return nil
}

func (v *Viewer) restart() {
	v.clock.Restart()
	v.rig.Restart(v.clock.Now())
}

func (v *Viewer) render(frame *scene.Frame) {
	v.renderer.Begin()
	viewProj := v.camera.ViewProjection(v.renderer.Aspect())
	for _, s := range frame.Skins {
		v.renderer.Draw(s, viewProj)
	}
	v.renderer.End()
}

// Close releases GPU and window resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
