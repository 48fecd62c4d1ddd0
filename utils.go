package tetraview

import (
	"math"

	"github.com/solarlune/tetra3d"
)

// ToRadians is a helper function to easily convert degrees to radians (which is what the rotation-oriented functions in Tetra3D use).
func ToRadians(degrees float64) float64 {
	return math.Pi * degrees / 180
}

func clamp[V float64 | float32 | int](value, min, max V) V {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

func (v Vec3) vector() tetra3d.Vector {
	return tetra3d.NewVector(v[0], v[1], v[2])
}
