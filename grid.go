package geostats

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// RegularGrid is a D-dimensional lattice of evenly spaced locations. The
// first axis varies fastest in the linear location index.
type RegularGrid struct {
	dims    []int
	origin  []float64
	spacing []float64
	count   int
}

func NewRegularGrid(dims []int, origin, spacing []float64) (*RegularGrid, error) {
	if len(dims) == 0 {
		return nil, eris.Wrap(ErrConstruction, "grid: no axes")
	}
	if len(origin) != len(dims) || len(spacing) != len(dims) {
		return nil, eris.Wrapf(ErrDimensionMismatch, "grid: %d axes, %d origin values, %d spacings", len(dims), len(origin), len(spacing))
	}
	count := 1
	for i, n := range dims {
		if n <= 0 {
			return nil, eris.Wrapf(ErrConstruction, "grid: axis %d has %d cells", i, n)
		}
		if !(spacing[i] > 0) {
			return nil, eris.Wrapf(ErrConstruction, "grid: axis %d has spacing %v", i, spacing[i])
		}
		count *= n
	}
	return &RegularGrid{
		dims:    append([]int(nil), dims...),
		origin:  append([]float64(nil), origin...),
		spacing: append([]float64(nil), spacing...),
		count:   count,
	}, nil
}

func caclulateSpacing(dims []int, min, max Coordinate) []float64 {
	spacing := make([]float64, len(dims))
	for i := range dims {
		if dims[i] > 1 {
			spacing[i] = (max[i] - min[i]) / float64(dims[i]-1)
		} else {
			spacing[i] = 1
		}
	}
	return spacing
}

// NewRegularGridFromBounds spans [min, max] with dims nodes per axis, both
// ends included.
func NewRegularGridFromBounds(dims []int, min, max Coordinate) (*RegularGrid, error) {
	if len(min) != len(dims) || len(max) != len(dims) {
		return nil, eris.Wrapf(ErrDimensionMismatch, "grid: %d axes, bounds of %d and %d", len(dims), len(min), len(max))
	}
	return NewRegularGrid(dims, min, caclulateSpacing(dims, min, max))
}

func (g *RegularGrid) Dim() int {
	return len(g.dims)
}

func (g *RegularGrid) Len() int {
	return g.count
}

func (g *RegularGrid) Dims() []int {
	return append([]int(nil), g.dims...)
}

func (g *RegularGrid) Spacing() []float64 {
	return append([]float64(nil), g.spacing...)
}

func (g *RegularGrid) Location(i int) Coordinate {
	c := make(Coordinate, len(g.dims))
	for a, n := range g.dims {
		c[a] = g.origin[a] + float64(i%n)*g.spacing[a]
		i /= n
	}
	return c
}

// Index maps a multi-index to the linear location index.
func (g *RegularGrid) Index(multi ...int) int {
	idx := 0
	stride := 1
	for a, n := range g.dims {
		idx += multi[a] * stride
		stride *= n
	}
	return idx
}

func (g *RegularGrid) Bounds() (min, max Coordinate) {
	min = append(Coordinate(nil), g.origin...)
	max = make(Coordinate, len(g.dims))
	for a, n := range g.dims {
		max[a] = g.origin[a] + float64(n-1)*g.spacing[a]
	}
	return min, max
}

func (g *RegularGrid) CoordType() reflect.Type {
	return float64Type
}
