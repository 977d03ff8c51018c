package geostats

import (
	"math"

	mat2d "github.com/flywave/go3d/float64/mat2"
	vec2d "github.com/flywave/go3d/float64/vec2"
)

// Rotator is a counter-clockwise planar rotation, in radians.
type Rotator struct {
	Angle float64
}

// RotationMatrix returns R indexed as m[row][col].
func (r Rotator) RotationMatrix() (m mat2d.T) {
	c := math.Cos(r.Angle)
	s := math.Sin(r.Angle)

	m[0][0] = c
	m[0][1] = -s
	m[1][0] = s
	m[1][1] = c

	return m
}

// RotateVector returns R·v.
func (r Rotator) RotateVector(v vec2d.T) vec2d.T {
	m := r.RotationMatrix()
	return vec2d.T{
		m[0][0]*v[0] + m[0][1]*v[1],
		m[1][0]*v[0] + m[1][1]*v[1],
	}
}

// InverseRotateVector returns Rᵀ·v, the coordinates of v in the frame whose
// axes are rotated by the receiver.
func (r Rotator) InverseRotateVector(v vec2d.T) vec2d.T {
	m := r.RotationMatrix()
	return vec2d.T{
		m[0][0]*v[0] + m[1][0]*v[1],
		m[0][1]*v[0] + m[1][1]*v[1],
	}
}
