package geostats

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

type voxelGrid struct {
	LeafSize []float64
}

func newVoxelGrid(leafSize []float64) *voxelGrid {
	return &voxelGrid{LeafSize: leafSize}
}

func minMaxCoords(ra []Coordinate) (Coordinate, Coordinate, error) {
	if len(ra) == 0 {
		return nil, nil, eris.Wrap(ErrInsufficientData, "no point")
	}
	min := append(Coordinate(nil), ra[0]...)
	max := append(Coordinate(nil), ra[0]...)
	for _, v := range ra[1:] {
		for i := range v {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max, nil
}

// groups returns row indices sharing a voxel, in order of first appearance.
func (f *voxelGrid) groups(pc []Coordinate) ([][]int, error) {
	min, _, err := minMaxCoords(pc)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var out [][]int
	var sb strings.Builder
	for i, p := range pc {
		sb.Reset()
		for j := range p {
			cell := int(math.Floor((p[j] - min[j]) / f.LeafSize[j]))
			sb.WriteString(strconv.Itoa(cell))
			sb.WriteByte(',')
		}
		key := sb.String()
		if g, ok := index[key]; ok {
			out[g] = append(out[g], i)
			continue
		}
		index[key] = len(out)
		out = append(out, []int{i})
	}
	return out, nil
}

// coordKey identifies a location by the bits of its coordinates.
func coordKey(p Coordinate) string {
	var sb strings.Builder
	for _, x := range p {
		if x == 0 {
			x = 0 // fold -0
		}
		sb.WriteString(strconv.FormatUint(math.Float64bits(x), 16))
		sb.WriteByte(',')
	}
	return sb.String()
}

func exactGroups(pc []Coordinate) [][]int {
	index := make(map[string]int)
	var out [][]int
	for i, p := range pc {
		key := coordKey(p)
		if g, ok := index[key]; ok {
			out[g] = append(out[g], i)
			continue
		}
		index[key] = len(out)
		out = append(out, []int{i})
	}
	return out
}

// Decimate merges rows falling in the same voxel of the given per-axis
// size. Numeric columns, coordinates included, are averaged; categorical
// columns keep the first row's value.
func (d *GeospatialData) Decimate(leafSize []float64) (*GeospatialData, error) {
	if len(leafSize) != d.Dim() {
		return nil, eris.Wrapf(ErrDimensionMismatch, "decimate: %d leaf sizes for %d coordinates", len(leafSize), d.Dim())
	}
	for _, l := range leafSize {
		if !(l > 0) {
			return nil, eris.Wrapf(ErrConstruction, "decimate: leaf size %v must be positive", l)
		}
	}
	if d.NPoints() == 0 {
		return d, nil
	}
	groups, err := newVoxelGrid(leafSize).groups(d.points)
	if err != nil {
		return nil, err
	}
	return d.merge(groups)
}

// Deduplicate merges rows with identical coordinates, averaging numeric
// attributes.
func (d *GeospatialData) Deduplicate() (*GeospatialData, error) {
	if d.NPoints() == 0 {
		return d, nil
	}
	return d.merge(exactGroups(d.points))
}

func (d *GeospatialData) merge(groups [][]int) (*GeospatialData, error) {
	if len(groups) == d.NPoints() {
		return d, nil
	}

	names := d.table.Names()
	cols := make([]Column, len(names))
	for k, name := range names {
		c, _ := d.table.Column(name)
		if c.IsNumeric() {
			v := make([]float64, len(groups))
			for g, rows := range groups {
				var s float64
				for _, r := range rows {
					s += c.Floats[r]
				}
				v[g] = s / float64(len(rows))
			}
			cols[k] = FloatColumn(name, v)
		} else {
			v := make([]string, len(groups))
			for g, rows := range groups {
				v[g] = c.Strings[rows[0]]
			}
			cols[k] = StringColumn(name, v)
		}
	}

	table, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	return NewGeospatialData(table, d.coordnames...)
}
