package geostats

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
)

// Coordinate is a location in D-dimensional space.
type Coordinate []float64

// Metric is a distance between two coordinates of equal dimension.
type Metric interface {
	Evaluate(a, b Coordinate) float64
}

// Dimensioned is implemented by metrics that only accept a fixed dimension.
type Dimensioned interface {
	Dim() int
}

type Euclidean struct{}

func (Euclidean) Evaluate(a, b Coordinate) float64 {
	return euclidean(a, b)
}

// Ellipsoidal measures distances in the frame of a rotated ellipsoid, with
// each principal axis scaled by the reciprocal of its semiaxis length.
type Ellipsoidal struct {
	semiaxes  []float64
	angles    []float64
	isotropic bool

	rot   Rotator
	frame [3][3]float64
}

// NewEllipsoidal builds an ellipsoidal metric. Angles are radians: one for
// two semiaxes (counter-clockwise), three for three semiaxes (intrinsic
// rotations about z, y and x), none for one.
func NewEllipsoidal(semiaxes, angles []float64) (*Ellipsoidal, error) {
	var want int
	switch len(semiaxes) {
	case 1:
		want = 0
	case 2:
		want = 1
	case 3:
		want = 3
	default:
		return nil, eris.Wrapf(ErrDimensionMismatch, "ellipsoidal: %d semiaxes, want 1, 2 or 3", len(semiaxes))
	}
	if len(angles) != want {
		return nil, eris.Wrapf(ErrDimensionMismatch, "ellipsoidal: %d semiaxes need %d angles, got %d", len(semiaxes), want, len(angles))
	}

	e := &Ellipsoidal{
		semiaxes:  append([]float64(nil), semiaxes...),
		angles:    append([]float64(nil), angles...),
		isotropic: true,
	}
	for _, s := range semiaxes {
		if !(s > 0) || math.IsInf(s, 0) {
			return nil, eris.Wrapf(ErrConstruction, "ellipsoidal: semiaxis %v must be positive", s)
		}
		if s != semiaxes[0] {
			e.isotropic = false
		}
	}

	switch len(semiaxes) {
	case 2:
		e.rot = Rotator{Angle: angles[0]}
	case 3:
		e.frame = frame3(angles[0], angles[1], angles[2])
	}
	return e, nil
}

// frame3 returns Rᵀ for R = Rz(a)·Ry(b)·Rx(c).
func frame3(a, b, c float64) [3][3]float64 {
	ca, sa := math.Cos(a), math.Sin(a)
	cb, sb := math.Cos(b), math.Sin(b)
	cc, sc := math.Cos(c), math.Sin(c)

	rz := mat.NewDense(3, 3, []float64{
		ca, -sa, 0,
		sa, ca, 0,
		0, 0, 1,
	})
	ry := mat.NewDense(3, 3, []float64{
		cb, 0, sb,
		0, 1, 0,
		-sb, 0, cb,
	})
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cc, -sc,
		0, sc, cc,
	})

	var r mat.Dense
	r.Mul(rz, ry)
	r.Mul(&r, rx)

	var f [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f[i][j] = r.At(j, i)
		}
	}
	return f
}

func (e *Ellipsoidal) Dim() int {
	return len(e.semiaxes)
}

func (e *Ellipsoidal) Semiaxes() []float64 {
	return append([]float64(nil), e.semiaxes...)
}

func (e *Ellipsoidal) Angles() []float64 {
	return append([]float64(nil), e.angles...)
}

// Evaluate expects a and b to have Dim() elements.
func (e *Ellipsoidal) Evaluate(a, b Coordinate) float64 {
	if e.isotropic {
		return euclidean(a, b) / e.semiaxes[0]
	}

	switch len(e.semiaxes) {
	case 2:
		u := e.rot.InverseRotateVector(vec2d.T{b[0] - a[0], b[1] - a[1]})
		return math.Hypot(u[0]/e.semiaxes[0], u[1]/e.semiaxes[1])
	default:
		d := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		var s float64
		for i := 0; i < 3; i++ {
			u := e.frame[i][0]*d[0] + e.frame[i][1]*d[1] + e.frame[i][2]*d[2]
			s += pow2(u / e.semiaxes[i])
		}
		return math.Sqrt(s)
	}
}

func metricDim(m Metric) (int, bool) {
	if d, ok := m.(Dimensioned); ok {
		return d.Dim(), true
	}
	return 0, false
}
