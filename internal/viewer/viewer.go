// Package viewer implements the skinview main loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/engine/camera"
	"github.com/Faultbox/midgard-skin/internal/engine/debug"
	"github.com/Faultbox/midgard-skin/internal/engine/input"
	"github.com/Faultbox/midgard-skin/internal/engine/lighting"
	"github.com/Faultbox/midgard-skin/internal/engine/renderer"
	"github.com/Faultbox/midgard-skin/internal/engine/window"
	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/internal/rig"
)

// Viewer renders the procedural tube and lets the user swap skinning methods.
type Viewer struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture
	lightDir mgl32.Vec3

	screenshotPending bool

	scene     *rig.Scene
	instances []*instance
	active    int
}

// instance is one skinned copy of the tube with its own GPU mesh.
type instance struct {
	*rig.Instance
	mesh  *renderer.Mesh
	color mgl32.Vec3
}

// New opens the window and builds the scene.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{cfg: cfg}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "skinview",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.scene, err = rig.NewScene(cfg, v.renderer.Context(), nil)
	if err != nil {
		v.Close()
		return nil, err
	}

	colors := []mgl32.Vec3{{0.9, 0.55, 0.2}, {0.3, 0.65, 0.95}}
	for i, inst := range v.scene.Instances() {
		mesh, err := v.renderer.NewMesh(inst.Geometry(), v.scene.Mesh().Indices)
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("creating mesh for %s: %w", inst.Skinning.Method(), err)
		}
		v.instances = append(v.instances, &instance{Instance: inst, mesh: mesh, color: colors[i%len(colors)]})
	}

	if err := v.scene.Show(0); err != nil {
		v.Close()
		return nil, err
	}

	v.shots, err = debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "skinview", cfg.Viewer.ScreenshotFormat)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.lightDir = lighting.LightDirection(cfg.Viewer.SunLongitude, cfg.Viewer.SunLatitude)

	v.input = input.New()
	v.camera = camera.NewOrbitCamera()
	min, max := v.scene.Mesh().Bounds()
	v.camera.FitToBounds(min, max)

	v.updateTitle()
	logger.Info("viewer initialized",
		zap.Int("vertices", v.scene.Mesh().NumVertices()),
		zap.Int("bones", v.scene.Skin().NumBones()),
		zap.Int("frames", v.scene.Skin().NumFrames()),
	)
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			if err := v.handle(event); err != nil {
				return err
			}
		}

		if err := v.scene.Manager().NextFrame(); err != nil {
			return fmt.Errorf("frame error: %w", err)
		}

		v.render()
		if v.screenshotPending {
			v.capture()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handle(event input.Event) error {
	switch event.Type {
	case input.EventWindowResize:
		width, height := v.window.GetSize()
		v.renderer.Resize(width, height)
	case input.EventMouseDrag:
		v.camera.HandleDrag(event.DX, event.DY)
	case input.EventMouseWheel:
		v.camera.HandleZoom(event.DY)
	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			v.running = false
		case sdl.SCANCODE_F12:
			v.screenshotPending = true
		case sdl.SCANCODE_H:
			next := (v.active + 1) % len(v.instances)
			if err := v.scene.Show(next); err != nil {
				return fmt.Errorf("switching instance: %w", err)
			}
			v.active = next
			v.updateTitle()
			logger.Info("skinning method switched", zap.Stringer("method", v.instances[next].Skinning.Method()))
		}
	}
	return nil
}

func (v *Viewer) render() {
	projection := v.camera.ProjectionMatrix(v.renderer.AspectRatio())
	v.renderer.Begin(projection, v.camera.ViewMatrix(), v.lightDir)
	inst := v.instances[v.active]
	v.renderer.Draw(inst.mesh, mgl32.Ident4(), inst.color)
	v.renderer.End()
}

// capture saves the frame just rendered, before the buffers are swapped.
func (v *Viewer) capture() {
	v.screenshotPending = false
	pixels, width, height := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) updateTitle() {
	inst := v.instances[v.active]
	v.window.SetTitle(fmt.Sprintf("skinview - %s skinning (H to switch)", inst.Skinning.Method()))
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	for _, inst := range v.instances {
		v.renderer.DeleteMesh(inst.mesh)
	}
	if v.scene != nil {
		v.scene.Dispose()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
