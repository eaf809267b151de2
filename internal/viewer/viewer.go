// Package viewer runs the interactive hex map editor window.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/config"
	"github.com/Faultbox/hexmap/internal/engine/camera"
	"github.com/Faultbox/hexmap/internal/engine/hexrender"
	"github.com/Faultbox/hexmap/internal/engine/input"
	"github.com/Faultbox/hexmap/internal/engine/screenshot"
	"github.com/Faultbox/hexmap/internal/engine/window"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/internal/world"
	"github.com/Faultbox/hexmap/pkg/math"
)

const title = "Hex Map"

// layerKeys maps the number row to mesh layers.
var layerKeys = map[sdl.Scancode]hexmap.Layer{
	sdl.SCANCODE_1: hexmap.LayerTerrain,
	sdl.SCANCODE_2: hexmap.LayerRivers,
	sdl.SCANCODE_3: hexmap.LayerRoads,
	sdl.SCANCODE_4: hexmap.LayerWater,
	sdl.SCANCODE_5: hexmap.LayerWaterShore,
	sdl.SCANCODE_6: hexmap.LayerEstuaries,
	sdl.SCANCODE_7: hexmap.LayerWalls,
}

// brushColors is cycled with C.
var brushColors = []math.Color{
	math.Yellow, math.Green, math.Blue, math.White,
}

// Viewer is the editor window.
type Viewer struct {
	cfg   *config.Config
	world *world.World

	window   *window.Window
	renderer *hexrender.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	editor   *Editor
	shots    *screenshot.Capture

	running    bool
	capture    bool
	colorIndex int
	log        *zap.Logger
}

// New opens the window, uploads the world and positions the camera.
func New(ctx context.Context, cfg *config.Config, w *world.World) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height))

	visibility, err := hexrender.ParseVisibility(cfg.Viewer.HiddenLayers)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:    cfg,
		world:  w,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		editor: NewEditor(w.Grid),
		shots:  screenshot.New(cfg.Viewer.ScreenshotDir, "hexmap"),
		log:    log,
	}

	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.renderer, err = hexrender.New(len(w.Grid.Chunks()))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Visibility = visibility
	v.renderer.Wireframe = cfg.Viewer.Wireframe
	v.renderer.SetSun(cfg.Viewer.SunAzimuth, cfg.Viewer.SunElevation)
	v.renderer.Resize(v.window.DrawableSize())

	w.Grid.Subscribe(v.renderer)
	// the grid starts with every chunk dirty
	if _, err := w.Refresh(ctx, cfg.Grid.Workers); err != nil {
		v.Close()
		return nil, fmt.Errorf("initial refresh: %w", err)
	}

	v.camera.FitToBounds(gridBounds(w.Grid))
	v.editor.Brush = Brush{
		Elevation:    Setting{Enabled: true, Value: 1},
		ColorEnabled: true,
		Color:        brushColors[0],
	}
	v.updateTitle()

	log.Info("viewer initialized", zap.Int("chunks", len(w.Grid.Chunks())))
	return v, nil
}

// Run drives the main loop until the window closes or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting main loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Input and camera
		if v.input.Update() {
			break
		}
		v.handleEvents()
		v.handleHeldKeys(float32(dt))

		// 2. Apply edits
		if _, err := v.world.Refresh(ctx, v.cfg.Grid.Workers); err != nil && ctx.Err() == nil {
			return fmt.Errorf("refresh: %w", err)
		}

		// 3. Render
		width, height := v.window.Size()
		aspect := float32(width) / float32(max(height, 1))
		viewProj := v.camera.ProjectionMatrix(aspect).Mul(v.camera.ViewMatrix())
		v.renderer.Render(viewProj)
		if v.capture {
			v.capture = false
			v.saveScreenshot()
		}

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())

		case input.EventKeyDown:
			v.handleKey(e.Key)

		case input.EventMouseDown:
			if e.Button == sdl.BUTTON_LEFT {
				v.paint(e.MouseX, e.MouseY)
			}

		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_LEFT {
				v.editor.EndStroke()
			}

		case input.EventMouseMove:
			if v.input.IsButtonHeld(sdl.BUTTON_LEFT) {
				v.paint(e.MouseX, e.MouseY)
			}
			if v.input.IsButtonHeld(sdl.BUTTON_RIGHT) {
				v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			}

		case input.EventMouseWheel:
			v.camera.HandleZoom(e.Wheel)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	b := &v.editor.Brush
	if l, ok := layerKeys[key]; ok {
		shown := v.renderer.Visibility.ToggleLayer(l)
		v.log.Debug("layer toggled", zap.Stringer("layer", l), zap.Bool("visible", shown))
		return
	}

	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_8:
		v.renderer.Visibility.ToggleFeatures()
	case sdl.SCANCODE_F:
		v.renderer.Wireframe = !v.renderer.Wireframe
	case sdl.SCANCODE_F12:
		v.capture = true
	case sdl.SCANCODE_LEFTBRACKET:
		b.Elevation = Setting{Enabled: true, Value: max(b.Elevation.Value-1, 0)}
	case sdl.SCANCODE_RIGHTBRACKET:
		b.Elevation = Setting{Enabled: true, Value: b.Elevation.Value + 1}
	case sdl.SCANCODE_SEMICOLON:
		b.Water = Setting{Enabled: true, Value: max(b.Water.Value-1, 0)}
	case sdl.SCANCODE_APOSTROPHE:
		b.Water = Setting{Enabled: true, Value: b.Water.Value + 1}
	case sdl.SCANCODE_COMMA:
		b.Size = max(b.Size-1, 0)
	case sdl.SCANCODE_PERIOD:
		b.Size = min(b.Size+1, 4)
	case sdl.SCANCODE_C:
		v.colorIndex = (v.colorIndex + 1) % len(brushColors)
		b.ColorEnabled = true
		b.Color = brushColors[v.colorIndex]
	case sdl.SCANCODE_U:
		b.Urban = Setting{Enabled: true, Value: (b.Urban.Value + 1) % 4}
	case sdl.SCANCODE_J:
		b.Farm = Setting{Enabled: true, Value: (b.Farm.Value + 1) % 4}
	case sdl.SCANCODE_P:
		b.Plant = Setting{Enabled: true, Value: (b.Plant.Value + 1) % 4}
	case sdl.SCANCODE_R:
		b.River = b.River.Next()
	case sdl.SCANCODE_T:
		b.Road = b.Road.Next()
	case sdl.SCANCODE_G:
		b.Walled = b.Walled.Next()
	case sdl.SCANCODE_BACKSPACE:
		*b = Brush{Size: b.Size}
	default:
		return
	}
	v.updateTitle()
}

func (v *Viewer) handleHeldKeys(dt float32) {
	var forward, right float32
	if v.input.IsKeyHeld(sdl.SCANCODE_W) || v.input.IsKeyHeld(sdl.SCANCODE_UP) {
		forward++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_S) || v.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		forward--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_D) || v.input.IsKeyHeld(sdl.SCANCODE_RIGHT) {
		right++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_A) || v.input.IsKeyHeld(sdl.SCANCODE_LEFT) {
		right--
	}
	if forward != 0 || right != 0 {
		// HandleMovement is tuned per frame at 60 fps
		scale := dt * 60
		v.camera.HandleMovement(forward*scale, right*scale)
	}
}

func (v *Viewer) paint(x, y int) {
	width, height := v.window.Size()
	ray := v.camera.Ray(float32(x), float32(y), float32(width), float32(height))
	v.editor.Stroke(pickCell(v.world.Grid, ray))
}

func (v *Viewer) saveScreenshot() {
	width, height := v.window.DrawableSize()
	name, err := v.shots.SavePixels(v.renderer.ReadPixels(width, height), width, height)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

func (v *Viewer) updateTitle() {
	v.window.SetTitle(fmt.Sprintf("%s [%s]", title, v.editor.Brush))
}

// Close releases GL and window resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
