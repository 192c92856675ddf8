// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude/latitude angles in degrees to a unit
// vector pointing towards the sun. Longitude rotates around Y, latitude is
// elevation from the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(longitude))
	lat := float64(mgl32.DegToRad(latitude))

	return mgl32.Vec3{
		float32(gomath.Cos(lat) * gomath.Sin(lon)),
		float32(gomath.Sin(lat)),
		float32(gomath.Cos(lat) * gomath.Cos(lon)),
	}
}

// LightDirection is the direction light travels, the negated sun direction.
func LightDirection(longitude, latitude float32) mgl32.Vec3 {
	return SunDirection(longitude, latitude).Mul(-1)
}
