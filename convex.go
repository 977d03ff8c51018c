package geostats

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	"github.com/rotisserie/eris"
)

// Convex is the planar convex hull of a set of 2-D points, counter-clockwise.
type Convex struct {
	vertices []vec2d.T
	hull     []vec2d.T
	edges    []Edge
	rect     *vec2d.Rect
}

type Edge struct {
	Start  vec2d.T
	End    vec2d.T
	Normal vec2d.T
}

func NewConvex(points []Coordinate) (*Convex, error) {
	vertices := make([]vec2d.T, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, eris.Wrapf(ErrDimensionMismatch, "convex hull: point %d has %d coordinates, want 2", i, len(p))
		}
		vertices[i] = vec2d.T{p[0], p[1]}
	}
	if len(vertices) == 0 {
		return nil, eris.Wrap(ErrInsufficientData, "convex hull: no points")
	}
	return &Convex{vertices: vertices}, nil
}

func vec2(c Coordinate) vec2d.T {
	return vec2d.T{c[0], c[1]}
}

// Rect is the bounding box of the input points, computed once.
func (c *Convex) Rect() vec2d.Rect {
	if c.rect == nil {
		r := vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}
		for i := range c.vertices {
			r.Extend(&c.vertices[i])
		}
		c.rect = &r
	}
	return *c.rect
}

func (c *Convex) Hull() []vec2d.T {
	if c.hull == nil {
		minX, maxX := c.getExtremePoints()
		if minX == maxX {
			c.hull = []vec2d.T{minX}
		} else {
			c.hull = append(c.quickHull(c.vertices, maxX, minX), c.quickHull(c.vertices, minX, maxX)...)
		}
	}
	return c.hull
}

func (c *Convex) Edges() []Edge {
	if c.edges == nil {
		hull := c.Hull()
		r := Rotator{math.Pi / 2}
		for i, start := range hull {
			end := hull[(i+1)%len(hull)]
			normal := r.RotateVector(vec2d.Sub(&start, &end))
			if normal != (vec2d.T{}) {
				normal.Normalize()
			}
			c.edges = append(c.edges, Edge{start, end, normal})
		}
	}
	return c.edges
}

// Contains reports whether p lies inside or on the hull.
func (c *Convex) Contains(p vec2d.T) bool {
	r := c.Rect()
	eps := 1e-9 * math.Max(1, math.Max(r.Max[0]-r.Min[0], r.Max[1]-r.Min[1]))
	if p[0] < r.Min[0]-eps || p[0] > r.Max[0]+eps || p[1] < r.Min[1]-eps || p[1] > r.Max[1]+eps {
		return false
	}
	for _, edge := range c.Edges() {
		v := Subtract2(p, edge.Start)
		o := Subtract2(edge.End, edge.Start)
		if Cross(v, o) > eps*math.Max(1, math.Hypot(o[0], o[1])) {
			return false
		}
	}
	return true
}

func (c *Convex) quickHull(points []vec2d.T, start, end vec2d.T) []vec2d.T {
	pointDistanceIndicators := c.getLhsPointDistanceIndicatorMap(points, start, end)
	if len(pointDistanceIndicators) == 0 {
		return []vec2d.T{end}
	}

	farthestPoint := c.getFarthestPoint(pointDistanceIndicators)

	newPoints := make([]vec2d.T, 0, len(pointDistanceIndicators))
	for point := range pointDistanceIndicators {
		newPoints = append(newPoints, point)
	}

	return append(
		c.quickHull(newPoints, farthestPoint, end),
		c.quickHull(newPoints, start, farthestPoint)...)
}

func Subtract2(lhs vec2d.T, rhs vec2d.T) vec2d.T {
	return vec2d.T{lhs[0] - rhs[0], lhs[1] - rhs[1]}
}

func OnTheRight(v vec2d.T, o vec2d.T) bool {
	return Cross(v, o) < 0
}

func Cross(lhs, rhs vec2d.T) float64 {
	return (lhs[0] * rhs[1]) - (lhs[1] * rhs[0])
}

func (c *Convex) getExtremePoints() (minX, maxX vec2d.T) {
	minX = c.vertices[0]
	maxX = c.vertices[0]

	for _, p := range c.vertices {
		if p[0] < minX[0] || (p[0] == minX[0] && p[1] < minX[1]) {
			minX = p
		}
		if maxX[0] < p[0] || (p[0] == maxX[0] && maxX[1] < p[1]) {
			maxX = p
		}
	}

	return minX, maxX
}

func (c *Convex) getLhsPointDistanceIndicatorMap(points []vec2d.T, start, end vec2d.T) map[vec2d.T]float64 {
	pointDistanceIndicatorMap := make(map[vec2d.T]float64)

	for _, point := range points {
		distanceIndicator := c.getDistanceIndicator(point, start, end)
		if distanceIndicator > 0 {
			pointDistanceIndicatorMap[point] = distanceIndicator
		}
	}

	return pointDistanceIndicatorMap
}

func (c *Convex) getDistanceIndicator(point vec2d.T, start, end vec2d.T) float64 {
	vLine := vec2d.Sub(&end, &start)
	vPoint := vec2d.Sub(&point, &start)
	return Cross(vLine, vPoint)
}

func (c *Convex) getFarthestPoint(pointDistanceIndicatorMap map[vec2d.T]float64) (farthestPoint vec2d.T) {
	maxDistanceIndicator := -math.MaxFloat64
	for point, distanceIndicator := range pointDistanceIndicatorMap {
		if maxDistanceIndicator < distanceIndicator ||
			(maxDistanceIndicator == distanceIndicator && lessVec2(point, farthestPoint)) {
			maxDistanceIndicator = distanceIndicator
			farthestPoint = point
		}
	}

	return farthestPoint
}

func lessVec2(a, b vec2d.T) bool {
	if a[0] == b[0] {
		return a[1] < b[1]
	}
	return a[0] < b[0]
}
