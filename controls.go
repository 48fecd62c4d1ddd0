package tetraview

import (
	"math"

	"github.com/solarlune/tetra3d"
)

// polarEpsilon keeps the polar angle away from the poles, where the orbit's up vector would flip.
const polarEpsilon = 1e-6

// ControlsInput is the input OrbitControls reads for one update. It's gathered from ebiten by the Viewer; tests fill it
// in by hand.
type ControlsInput struct {
	DragX, DragY float64 // Pointer movement in pixels since the last update while the rotate button is held.
	Wheel        float64 // Vertical wheel movement; positive values scroll up (and zoom in).
	ViewHeight   float64 // Height of the view in pixels, used to turn drag distances into angles.
}

// OrbitControls orbits a Node (usually the Camera) around a target point. The orbit is kept in spherical coordinates
// around the target: Theta is the azimuth around the Y axis (0 being on the +Z side of the target) and Phi is the polar
// angle down from +Y. Rotation can be damped, in which case changes ease in and out over several updates.
type OrbitControls struct {
	Node   tetra3d.INode  // The Node moved by the controls.
	Target tetra3d.Vector // The point orbited around and looked at.

	EnableRotate    bool
	RotateSpeed     float64
	EnableZoom      bool
	ZoomSpeed       float64
	AutoRotate      bool
	AutoRotateSpeed float64 // At 1, one revolution takes 60 seconds at 60 updates per second.
	EnableDamping   bool
	DampingFactor   float64

	MinDistance, MaxDistance     float64
	MinPolarAngle, MaxPolarAngle float64

	radius     float64
	theta, phi float64
	deltaTheta float64
	deltaPhi   float64

	updates uint64
}

// NewOrbitControls creates OrbitControls for the given node, starting at the from position and orbiting target. The
// node is moved to from and turned to face the target immediately.
func NewOrbitControls(node tetra3d.INode, from, target tetra3d.Vector) *OrbitControls {

	oc := &OrbitControls{
		Node:            node,
		Target:          target,
		EnableRotate:    true,
		RotateSpeed:     1,
		EnableZoom:      true,
		ZoomSpeed:       1,
		AutoRotateSpeed: 2,
		DampingFactor:   0.05,
		MinDistance:     0,
		MaxDistance:     math.Inf(1),
		MinPolarAngle:   0,
		MaxPolarAngle:   math.Pi,
	}

	oc.radius, oc.theta, oc.phi = spherical(from.Sub(target))

	oc.apply()

	return oc

}

// Distance returns the current distance from the Node to the Target.
func (oc *OrbitControls) Distance() float64 {
	return oc.radius
}

// Azimuth returns the current azimuthal angle (Theta) in radians.
func (oc *OrbitControls) Azimuth() float64 {
	return oc.theta
}

// Polar returns the current polar angle (Phi) in radians.
func (oc *OrbitControls) Polar() float64 {
	return oc.phi
}

// Updates returns how many times Update has been called.
func (oc *OrbitControls) Updates() uint64 {
	return oc.updates
}

func (oc *OrbitControls) autoRotationAngle() float64 {
	return 2 * math.Pi / 60 / 60 * oc.AutoRotateSpeed
}

// Update advances the controls by one frame: auto-rotation, pointer drags, wheel zoom, and damping are applied,
// and the Node is placed accordingly. Call it once per frame.
func (oc *OrbitControls) Update(input ControlsInput) {

	oc.updates++

	dragging := input.DragX != 0 || input.DragY != 0

	if oc.AutoRotate && !dragging {
		oc.deltaTheta -= oc.autoRotationAngle()
	}

	if oc.EnableRotate && dragging && input.ViewHeight > 0 {
		oc.deltaTheta -= 2 * math.Pi * input.DragX / input.ViewHeight * oc.RotateSpeed
		oc.deltaPhi -= 2 * math.Pi * input.DragY / input.ViewHeight * oc.RotateSpeed
	}

	if oc.EnableDamping {
		oc.theta += oc.deltaTheta * oc.DampingFactor
		oc.phi += oc.deltaPhi * oc.DampingFactor
	} else {
		oc.theta += oc.deltaTheta
		oc.phi += oc.deltaPhi
	}

	// Keep Theta within a single turn so it doesn't grow without bound while auto-rotating forever.
	oc.theta = math.Remainder(oc.theta, 2*math.Pi)

	minPolar := math.Max(oc.MinPolarAngle, polarEpsilon)
	maxPolar := math.Min(oc.MaxPolarAngle, math.Pi-polarEpsilon)
	oc.phi = clamp(oc.phi, minPolar, maxPolar)

	if oc.EnableZoom && input.Wheel != 0 {
		oc.radius *= math.Pow(0.95, oc.ZoomSpeed*input.Wheel)
	}

	oc.radius = clamp(oc.radius, oc.MinDistance, oc.MaxDistance)

	oc.apply()

	if oc.EnableDamping {
		oc.deltaTheta *= 1 - oc.DampingFactor
		oc.deltaPhi *= 1 - oc.DampingFactor
	} else {
		oc.deltaTheta = 0
		oc.deltaPhi = 0
	}

}

// apply places the Node according to the current spherical coordinates and points it at the Target.
func (oc *OrbitControls) apply() {
	if oc.Node == nil {
		return
	}
	oc.Node.SetLocalPositionVec(oc.Target.Add(cartesian(oc.radius, oc.theta, oc.phi)))
	oc.Node.SetLocalRotation(orbitRotation(oc.theta, math.Pi/2-oc.phi))
}

// spherical returns the radius, azimuth (around +Y, from +Z towards +X), and polar angle (down from +Y) of the offset.
func spherical(offset tetra3d.Vector) (radius, theta, phi float64) {
	radius = offset.Magnitude()
	if radius == 0 {
		return 0, 0, math.Pi / 2
	}
	theta = math.Atan2(offset.X, offset.Z)
	phi = math.Acos(clamp(offset.Y/radius, -1, 1))
	return
}

// cartesian is the inverse of spherical.
func cartesian(radius, theta, phi float64) tetra3d.Vector {
	sinPhi := math.Sin(phi)
	return tetra3d.NewVector(
		radius*sinPhi*math.Sin(theta),
		radius*math.Cos(phi),
		radius*sinPhi*math.Cos(theta),
	)
}

// orbitRotation returns the rotation of an object sitting at the given azimuth and elevation around a point while
// facing it. Nodes look down -Z, so the object's +Z axis ends up pointing away from the point.
func orbitRotation(azimuth, elevation float64) tetra3d.Matrix4 {
	tilt := tetra3d.NewMatrix4Rotate(1, 0, 0, -elevation)
	rotate := tetra3d.NewMatrix4Rotate(0, 1, 0, azimuth)
	// Tilt first, then rotate around Y.
	return tilt.Mult(rotate)
}

// aimAt returns the rotation a Node at position needs to face target.
func aimAt(position, target tetra3d.Vector) tetra3d.Matrix4 {
	_, theta, phi := spherical(position.Sub(target))
	return orbitRotation(theta, math.Pi/2-phi)
}
