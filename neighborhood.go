package geostats

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighborhood limits the conditioning points used at each location.
// Distances are Euclidean in coordinate space.
type Neighborhood struct {
	Kind   NeighborhoodKind `mapstructure:"kind"`
	K      int              `mapstructure:"k"`
	Radius float64          `mapstructure:"radius"`
}

func (nb Neighborhood) validate() error {
	switch nb.Kind {
	case "", Unlimited:
	case KNearest:
		if nb.K <= 0 {
			return eris.Wrapf(ErrConstruction, "neighborhood: k=%d must be positive", nb.K)
		}
	case Radius:
		if !(nb.Radius > 0) || math.IsInf(nb.Radius, 0) {
			return eris.Wrapf(ErrConstruction, "neighborhood: radius %v must be positive", nb.Radius)
		}
	default:
		return eris.Wrapf(ErrConstruction, "neighborhood: unknown kind %q", nb.Kind)
	}
	return nil
}

type indexedPoint struct {
	Coordinate
	index int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	return p.Coordinate[d] - q.Coordinate[d]
}

func (p indexedPoint) Dims() int { return len(p.Coordinate) }

// Distance returns the squared Euclidean distance.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	var s float64
	for i := range p.Coordinate {
		s += pow2(p.Coordinate[i] - q.Coordinate[i])
	}
	return s
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	plane := indexedPlane{indexedPoints: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfRandoms(plane, 100))
}

type indexedPlane struct {
	indexedPoints
	kdtree.Dim
}

func (p indexedPlane) Less(i, j int) bool {
	return p.indexedPoints[i].Coordinate[p.Dim] < p.indexedPoints[j].Coordinate[p.Dim]
}

func (p indexedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

func (p indexedPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

// neighborSearcher answers neighborhood queries over a fixed point set. It
// is safe for concurrent use.
type neighborSearcher struct {
	nb   Neighborhood
	n    int
	tree *kdtree.Tree
}

func newNeighborSearcher(points []Coordinate, nb Neighborhood) (*neighborSearcher, error) {
	if err := nb.validate(); err != nil {
		return nil, err
	}
	s := &neighborSearcher{nb: nb, n: len(points)}
	if nb.Kind == "" || nb.Kind == Unlimited || len(points) == 0 {
		return s, nil
	}
	if nb.Kind == KNearest && nb.K >= len(points) {
		return s, nil
	}
	ip := make(indexedPoints, len(points))
	for i, p := range points {
		ip[i] = indexedPoint{Coordinate: p, index: i}
	}
	s.tree = kdtree.New(ip, false)
	return s, nil
}

// Search returns the indices of the conditioning points for u0, nearest
// first when a tree is in use.
func (s *neighborSearcher) Search(u0 Coordinate) []int {
	if s.tree == nil {
		idx := make([]int, s.n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	var keeper kdtree.Keeper
	switch s.nb.Kind {
	case KNearest:
		keeper = kdtree.NewNKeeper(s.nb.K)
	default:
		keeper = kdtree.NewDistKeeper(pow2(s.nb.Radius))
	}
	s.tree.NearestSet(keeper, indexedPoint{Coordinate: u0, index: -1})

	idx := make([]int, 0, keeper.Len())
	for keeper.Len() > 0 {
		cd := keeper.Pop().(kdtree.ComparableDist)
		if cd.Comparable == nil {
			continue
		}
		idx = append(idx, cd.Comparable.(indexedPoint).index)
	}
	// Pop takes from the back of the sorted heap, farthest first.
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}
