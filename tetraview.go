// Package tetraview is a small 3D model viewer built on Tetra3D and Ebitengine. It opens a window, loads a single glTF model
// in the background while showing a progress bar, and slowly orbits the camera around the model once it's there.
//
// Everything that differed between viewer setups lives in Config; New builds a Viewer from one, and Viewer.Run runs it.
package tetraview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/tetra3d"
)

// TickRate is the default tick rate of a headless run, and the frame time assumed for the very first tick.
const TickRate = 60

// maxFrameTime caps how far time-based effects advance in one tick, so a stall doesn't skip the progress fade.
const maxFrameTime = 0.25

// Viewer is the viewer application. It implements ebiten.Game; each Update is one frame tick.
type Viewer struct {
	Config   Config
	Backend  Backend
	Viewport *Viewport
	Progress *ProgressIndicator
	Load     *AssetLoad

	logger  *slog.Logger
	prober  Prober
	loader  AssetLoader
	surface Surface

	events <-chan LoadEvent
	ticks  uint64

	clock    func() time.Time
	lastTick time.Time

	dragging     bool
	prevX, prevY int
	outW, outH   int
}

// Option customizes a Viewer created with New.
type Option func(v *Viewer)

// WithLogger sets the logger the Viewer reports to. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) { v.logger = logger }
}

// WithProber sets the Prober used to pick a backend. Defaults to PlatformProber.
func WithProber(prober Prober) Option {
	return func(v *Viewer) { v.prober = prober }
}

// WithLoader sets the AssetLoader used to load the model. Defaults to a GLTFLoader reading from Config.AssetDir.
func WithLoader(loader AssetLoader) Option {
	return func(v *Viewer) { v.loader = loader }
}

// WithAssetFS sets the file system the default GLTFLoader reads from, instead of Config.AssetDir.
func WithAssetFS(fsys fs.FS) Option {
	return func(v *Viewer) { v.loader = NewGLTFLoader(fsys) }
}

// WithSurface makes the Viewer render into the given Surface instead of a Tetra3D camera. The camera is then a plain
// Node, moved by the controls but never rendered through; this is how the viewer runs headless.
func WithSurface(surface Surface) Option {
	return func(v *Viewer) { v.surface = surface }
}

// New bootstraps a Viewer: it picks the rendering backend, then builds the camera, scene, lights, controls, and progress
// indicator. If no backend in cfg.Backends is available, it returns a *CapabilityError and nothing else is set up.
// The model load doesn't begin until Start (or Run) is called.
func New(cfg Config, options ...Option) (*Viewer, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Viewer{
		Config: cfg,
		logger: slog.Default(),
		prober: PlatformProber{},
		clock:  time.Now,
	}

	for _, opt := range options {
		opt(v)
	}

	backend, err := SelectBackend(cfg.Backends, v.prober)
	if err != nil {
		return nil, err
	}
	v.Backend = backend
	v.logger.Info("selected backend", "backend", backend, "library", backend.GraphicsLibrary(runtime.GOOS).String())

	scene, background, err := NewScene(cfg)
	if err != nil {
		return nil, err
	}

	var camera tetra3d.INode

	if v.surface != nil {
		camera = tetra3d.NewNode("Camera")
		v.surface.Resize(cfg.WindowWidth, cfg.WindowHeight)
	} else {
		cam := NewCamera(cfg, cfg.WindowWidth, cfg.WindowHeight)
		camera = cam
		v.surface = NewCameraSurface(cam, scene, background)
	}

	d := cfg.CameraDistance
	controls := NewOrbitControls(camera, tetra3d.NewVector(d, d, d), tetra3d.NewVectorZero())
	controls.EnableZoom = cfg.EnableZoom
	controls.AutoRotate = cfg.AutoRotate
	controls.AutoRotateSpeed = cfg.AutoRotateSpeed
	controls.EnableDamping = cfg.EnableDamping
	controls.DampingFactor = cfg.DampingFactor
	controls.MinDistance = cfg.CameraMinDistance
	controls.MaxDistance = cfg.CameraMaxDistance
	controls.MinPolarAngle = ToRadians(cfg.MinPolarAngle)
	controls.MaxPolarAngle = ToRadians(cfg.MaxPolarAngle)

	v.Viewport = NewViewport(scene, camera, v.surface, controls)
	v.Progress = NewProgressIndicator()
	v.Load = NewAssetLoad(cfg, v.Viewport, v.Progress, v.logger)

	if v.loader == nil {
		v.loader = NewGLTFLoader(os.DirFS(cfg.AssetDir))
	}

	return v, nil

}

// Start begins loading the model in the background. Events from the load are applied on later ticks. Calling Start more
// than once does nothing.
func (v *Viewer) Start(ctx context.Context) {
	if v.events != nil || v.Load.State().Terminal() {
		return
	}
	v.logger.Info("loading model", "path", v.Config.ModelPath)
	v.events = StartLoad(ctx, v.loader, v.Config.ModelPath)
}

// Run starts the model load and opens the viewer's window, blocking until the window is closed. The frame loop has no
// other stop condition; it keeps going for as long as the window is open.
func (v *Viewer) Run(ctx context.Context) error {

	ebiten.SetWindowTitle(v.Config.Title)
	ebiten.SetWindowSize(v.Config.WindowWidth, v.Config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// Tick once per displayed frame.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	v.Start(ctx)

	return ebiten.RunGameWithOptions(v, &ebiten.RunGameOptions{
		GraphicsLibrary: v.Backend.GraphicsLibrary(runtime.GOOS),
	})

}

// Ticks returns the number of frame ticks run so far.
func (v *Viewer) Ticks() uint64 {
	return v.ticks
}

// Tick runs a single frame: pending load events are applied, the controls are updated once, and one frame is rendered.
func (v *Viewer) Tick(input ControlsInput) {

	v.drainLoadEvents()

	v.Viewport.Controls.Update(input)
	v.Viewport.Render()

	v.Progress.Update(v.frameTime())

	v.ticks++

}

// frameTime returns the seconds elapsed since the previous tick. Ticks follow the display's refresh rate, so this isn't
// a constant.
func (v *Viewer) frameTime() float32 {

	now := v.clock()
	dt := 1.0 / TickRate

	if !v.lastTick.IsZero() {
		dt = min(now.Sub(v.lastTick).Seconds(), maxFrameTime)
	}

	v.lastTick = now

	return float32(dt)

}

// drainLoadEvents applies every load event that has arrived since the last tick, without waiting for more.
func (v *Viewer) drainLoadEvents() {
	for v.events != nil {
		select {
		case event, ok := <-v.events:
			if !ok {
				v.events = nil
				return
			}
			v.Load.Handle(event)
		default:
			return
		}
	}
}

// Update implements ebiten.Game.
func (v *Viewer) Update() error {

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	v.Tick(v.pointerInput())

	return nil

}

// pointerInput gathers mouse drags and wheel movement for the controls.
func (v *Viewer) pointerInput() ControlsInput {

	_, h := v.Viewport.Size()
	input := ControlsInput{ViewHeight: float64(h)}

	mx, my := ebiten.CursorPosition()

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if v.dragging {
			input.DragX = float64(mx - v.prevX)
			input.DragY = float64(my - v.prevY)
		}
		v.dragging = true
	} else {
		v.dragging = false
	}

	v.prevX, v.prevY = mx, my

	_, input.Wheel = ebiten.Wheel()

	return input

}

// Draw implements ebiten.Game. Frames are rendered in Update, so Draw only puts the last one on screen, with the progress
// indicator on top.
func (v *Viewer) Draw(screen *ebiten.Image) {

	if img := v.Viewport.Image(); img != nil {
		screen.DrawImage(img, nil)
	}

	v.Progress.Draw(screen)

}

// Layout implements ebiten.Game. When the window's size changes, the Viewport is resized to match (at the monitor's
// device scale if Config.HiDPI is set), which renders a frame right away.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {

	scale := 1.0
	if v.Config.HiDPI {
		scale = ebiten.Monitor().DeviceScaleFactor()
	}

	w := int(float64(outsideWidth) * scale)
	h := int(float64(outsideHeight) * scale)

	if outsideWidth != v.outW || outsideHeight != v.outH {
		v.outW, v.outH = outsideWidth, outsideHeight
		if vw, vh := v.Viewport.Size(); vw != w || vh != h {
			v.logger.Debug("resizing viewport", "width", w, "height", h)
			v.Viewport.Resize(w, h)
		}
	}

	return v.Viewport.Size()

}
