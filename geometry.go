package geostats

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// GeospatialDataFromPoints locates the rows of columns at points. Coordinate
// columns are named x, y and, for layouts with Z, z; an M ordinate becomes
// the numeric column m.
func GeospatialDataFromPoints(points []*geom.Point, columns ...Column) (*GeospatialData, error) {
	if len(points) == 0 {
		return nil, eris.Wrap(ErrInsufficientData, "geometry: no points")
	}
	if points[0] == nil {
		return nil, eris.Wrap(ErrConstruction, "geometry: nil point")
	}
	layout := points[0].Layout()
	if layout == geom.NoLayout {
		return nil, eris.Wrap(ErrDimensionMismatch, "geometry: point without layout")
	}

	coordnames := []string{"x", "y"}
	if layout.ZIndex() != -1 {
		coordnames = append(coordnames, "z")
	}
	axes := make([][]float64, len(coordnames))
	var m []float64
	for i, p := range points {
		if p == nil {
			return nil, eris.Wrapf(ErrConstruction, "geometry: point %d is nil", i)
		}
		if p.Layout() != layout {
			return nil, eris.Wrapf(ErrDimensionMismatch, "geometry: point %d has layout %v, want %v", i, p.Layout(), layout)
		}
		if len(p.FlatCoords()) < layout.Stride() {
			return nil, eris.Wrapf(ErrConstruction, "geometry: point %d is empty", i)
		}
		axes[0] = append(axes[0], p.X())
		axes[1] = append(axes[1], p.Y())
		if layout.ZIndex() != -1 {
			axes[2] = append(axes[2], p.Z())
		}
		if layout.MIndex() != -1 {
			m = append(m, p.M())
		}
	}

	cols := make([]Column, 0, len(coordnames)+1+len(columns))
	for j, name := range coordnames {
		cols = append(cols, FloatColumn(name, axes[j]))
	}
	if m != nil {
		cols = append(cols, FloatColumn("m", m))
	}
	cols = append(cols, columns...)

	table, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	return NewGeospatialData(table, coordnames...)
}

// Polygon returns the hull as a closed XY polygon.
func (c *Convex) Polygon() (*geom.Polygon, error) {
	hull := c.Hull()
	flat := make([]float64, 0, 2*(len(hull)+1))
	for _, v := range hull {
		flat = append(flat, v[0], v[1])
	}
	flat = append(flat, hull[0][0], hull[0][1])

	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
		return nil, eris.Wrap(err, "convex hull: polygon")
	}
	return poly, nil
}
