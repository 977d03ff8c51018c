package geostats

import (
	"reflect"
	"strconv"

	"github.com/rotisserie/eris"
)

// Domain is an enumerable set of locations. Location must be a pure, cheap
// lookup; solvers call it once per location.
type Domain interface {
	Dim() int
	Len() int
	Location(i int) Coordinate
	CoordType() reflect.Type
}

var float64Type = reflect.TypeOf(float64(0))

func axisName(i int) string {
	return "x" + strconv.Itoa(i+1)
}

// PointSet is a domain of explicitly stored locations.
type PointSet struct {
	points []Coordinate
	dim    int
}

func NewPointSet(points []Coordinate) (*PointSet, error) {
	if len(points) == 0 {
		return nil, eris.Wrap(ErrConstruction, "point set: no points")
	}
	dim := len(points[0])
	if dim == 0 {
		return nil, eris.Wrap(ErrDimensionMismatch, "point set: zero-dimensional point")
	}
	ps := &PointSet{points: make([]Coordinate, len(points)), dim: dim}
	for i, p := range points {
		if len(p) != dim {
			return nil, eris.Wrapf(ErrDimensionMismatch, "point set: point %d has %d coordinates, want %d", i, len(p), dim)
		}
		ps.points[i] = append(Coordinate(nil), p...)
	}
	return ps, nil
}

// PointSetFromData returns the locations of d as a domain.
func PointSetFromData(d *GeospatialData) (*PointSet, error) {
	return NewPointSet(d.points)
}

func (p *PointSet) Dim() int {
	return p.dim
}

func (p *PointSet) Len() int {
	return len(p.points)
}

// Location returns the stored coordinate; callers must not modify it.
func (p *PointSet) Location(i int) Coordinate {
	return p.points[i]
}

func (p *PointSet) CoordType() reflect.Type {
	return float64Type
}
