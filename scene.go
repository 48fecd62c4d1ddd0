package tetraview

import (
	"fmt"

	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetraview/colors"
)

// SunPositions are where the three directional lights sit; each of them shines towards the origin.
var SunPositions = []Vec3{
	{1, 1, 0},
	{0, 1, 1},
	{-1, 1, -1},
}

// NewScene creates the viewer's Scene: lighting on, the configured background color, an ambient light, and a
// directional light at each of SunPositions. The background color is returned as well for clearing the frame.
func NewScene(cfg Config) (*tetra3d.Scene, tetra3d.Color, error) {

	background, err := colors.FromHex(cfg.Background)
	if err != nil {
		return nil, background, fmt.Errorf("background: %w", err)
	}

	scene := tetra3d.NewScene("tetraview")

	if scene.World == nil {
		scene.World = tetra3d.NewWorld("tetraview")
	}
	scene.World.ClearColor = background
	scene.World.LightingOn = true

	ambient := tetra3d.NewAmbientLight("ambient", 1, 1, 1, cfg.AmbientIntensity)
	scene.Root.AddChildren(ambient)

	for i, pos := range SunPositions {
		sun := tetra3d.NewDirectionalLight(fmt.Sprintf("sun %d", i+1), 1, 1, 1, cfg.LightIntensity)
		sun.SetLocalPositionVec(pos.vector())
		sun.SetLocalRotation(aimAt(pos.vector(), tetra3d.NewVectorZero()))
		scene.Root.AddChildren(sun)
	}

	return scene, background, nil

}

// NewCamera creates the perspective Camera the viewer renders through, sized w by h pixels.
func NewCamera(cfg Config, w, h int) *tetra3d.Camera {
	camera := tetra3d.NewCamera(w, h)
	camera.SetPerspective(true)
	camera.SetFieldOfView(cfg.FieldOfView)
	camera.SetNear(cfg.Near)
	camera.SetFar(cfg.Far)
	return camera
}
