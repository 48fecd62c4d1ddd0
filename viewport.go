package tetraview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/tetra3d"
)

// Surface is what the Viewport renders into.
type Surface interface {
	// Resize resizes the surface's backing buffers to w by h pixels.
	Resize(w, h int)
	// Size returns the surface's size in pixels.
	Size() (w, h int)
	// Render renders the scene once.
	Render()
}

// ImageSurface is a Surface whose latest frame can be drawn to the screen.
type ImageSurface interface {
	Surface
	Image() *ebiten.Image
}

// CameraSurface renders a Scene through a tetra3d Camera; the Camera's color texture is the rendered frame.
type CameraSurface struct {
	Camera     *tetra3d.Camera
	Scene      *tetra3d.Scene
	Background tetra3d.Color // Color the frame is cleared to before rendering.
}

// NewCameraSurface creates a CameraSurface rendering scene through camera.
func NewCameraSurface(camera *tetra3d.Camera, scene *tetra3d.Scene, background tetra3d.Color) *CameraSurface {
	return &CameraSurface{
		Camera:     camera,
		Scene:      scene,
		Background: background,
	}
}

// Resize resizes the Camera's textures, which also updates its aspect ratio.
func (cs *CameraSurface) Resize(w, h int) { cs.Camera.Resize(w, h) }

func (cs *CameraSurface) Size() (int, int) { return cs.Camera.Size() }

func (cs *CameraSurface) Render() {
	cs.Camera.ClearWithColor(cs.Background)
	cs.Camera.RenderScene(cs.Scene)
}

func (cs *CameraSurface) Image() *ebiten.Image { return cs.Camera.ColorTexture() }

// NopSurface is a Surface that only keeps track of its size; rendering to it does nothing. It's used when running
// without a window.
type NopSurface struct {
	W, H int
}

func (ns *NopSurface) Resize(w, h int) { ns.W, ns.H = w, h }

func (ns *NopSurface) Size() (int, int) { return ns.W, ns.H }

func (ns *NopSurface) Render() {}

// Viewport bundles everything needed to put a frame on screen: the scene, the camera node, the surface rendered into,
// and the controls moving the camera. It's owned by a Viewer and lives as long as it does.
type Viewport struct {
	Scene    *tetra3d.Scene
	Camera   tetra3d.INode
	Surface  Surface
	Controls *OrbitControls

	width, height int
	aspect        float64
	renders       uint64
}

// NewViewport creates a new Viewport, taking its initial size from the surface.
func NewViewport(scene *tetra3d.Scene, camera tetra3d.INode, surface Surface, controls *OrbitControls) *Viewport {
	vp := &Viewport{
		Scene:    scene,
		Camera:   camera,
		Surface:  surface,
		Controls: controls,
	}
	vp.setSize(surface.Size())
	return vp
}

func (vp *Viewport) setSize(w, h int) {
	vp.width, vp.height = w, h
	if h > 0 {
		vp.aspect = float64(w) / float64(h)
	}
}

// Resize handles the window changing size: the aspect ratio becomes w / h, the surface is resized to w by h pixels, and a
// frame is rendered immediately rather than waiting for the next tick, so a stale frame isn't shown while resizing.
// Non-positive sizes (like those of a minimized window) are ignored.
func (vp *Viewport) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	vp.setSize(w, h)
	vp.Surface.Resize(w, h)
	vp.Render()
}

// Render renders one frame to the Surface.
func (vp *Viewport) Render() {
	vp.Surface.Render()
	vp.renders++
}

// Renders returns the number of frames rendered so far.
func (vp *Viewport) Renders() uint64 {
	return vp.renders
}

// Size returns the Viewport's size in pixels.
func (vp *Viewport) Size() (w, h int) {
	return vp.width, vp.height
}

// Aspect returns the Viewport's aspect ratio (width / height).
func (vp *Viewport) Aspect() float64 {
	return vp.aspect
}

// Image returns the last rendered frame, or nil if the Surface doesn't produce one.
func (vp *Viewport) Image() *ebiten.Image {
	if is, ok := vp.Surface.(ImageSurface); ok {
		return is.Image()
	}
	return nil
}
