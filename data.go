package geostats

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
)

// Column is a named numeric or categorical column. Exactly one of Floats and
// Strings is used; a column with a nil Strings slice is numeric.
type Column struct {
	Name    string
	Floats  []float64
	Strings []string
}

func FloatColumn(name string, values []float64) Column {
	if values == nil {
		values = []float64{}
	}
	return Column{Name: name, Floats: values}
}

func StringColumn(name string, values []string) Column {
	if values == nil {
		values = []string{}
	}
	return Column{Name: name, Strings: values}
}

func (c Column) IsNumeric() bool {
	return c.Strings == nil
}

func (c Column) Len() int {
	if c.IsNumeric() {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Table is an in-memory column store with a fixed column order.
type Table struct {
	names []string
	cols  map[string]Column
	nrows int
}

func NewTable(cols ...Column) (*Table, error) {
	t := &Table{cols: make(map[string]Column, len(cols))}
	for i, c := range cols {
		if c.Name == "" {
			return nil, eris.Wrapf(ErrSchema, "table: column %d has no name", i)
		}
		if _, ok := t.cols[c.Name]; ok {
			return nil, eris.Wrapf(ErrSchema, "table: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, eris.Wrapf(ErrSchema, "table: column %q has %d rows, want %d", c.Name, c.Len(), t.nrows)
		}
		t.names = append(t.names, c.Name)
		t.cols[c.Name] = c
	}
	return t, nil
}

func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) NRows() int {
	return t.nrows
}

func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// GeospatialData is a table whose coordinate columns locate each row.
// It is read-only once built.
type GeospatialData struct {
	table      *Table
	coordnames []string
	points     []Coordinate
}

func NewGeospatialData(table *Table, coordnames ...string) (*GeospatialData, error) {
	if table == nil {
		return nil, eris.Wrap(ErrSchema, "geospatial data: nil table")
	}
	if len(coordnames) == 0 {
		return nil, eris.Wrap(ErrSchema, "geospatial data: no coordinate columns")
	}

	axes := make([][]float64, len(coordnames))
	seen := make(map[string]bool, len(coordnames))
	for j, name := range coordnames {
		if seen[name] {
			return nil, eris.Wrapf(ErrSchema, "geospatial data: coordinate %q listed twice", name)
		}
		seen[name] = true
		c, ok := table.Column(name)
		if !ok {
			return nil, eris.Wrapf(ErrSchema, "geospatial data: coordinate column %q not found", name)
		}
		if !c.IsNumeric() {
			return nil, eris.Wrapf(ErrSchema, "geospatial data: coordinate column %q is not numeric", name)
		}
		axes[j] = c.Floats
	}

	points := make([]Coordinate, table.NRows())
	for i := range points {
		p := make(Coordinate, len(axes))
		for j := range axes {
			p[j] = axes[j][i]
		}
		points[i] = p
	}

	return &GeospatialData{
		table:      table,
		coordnames: append([]string(nil), coordnames...),
		points:     points,
	}, nil
}

func (d *GeospatialData) Table() *Table {
	return d.table
}

func (d *GeospatialData) CoordNames() []string {
	return append([]string(nil), d.coordnames...)
}

func (d *GeospatialData) Dim() int {
	return len(d.coordnames)
}

func (d *GeospatialData) NPoints() int {
	return len(d.points)
}

func (d *GeospatialData) IsCoordinate(name string) bool {
	for _, c := range d.coordnames {
		if c == name {
			return true
		}
	}
	return false
}

// Coordinates returns a copy of the location of row i.
func (d *GeospatialData) Coordinates(i int) Coordinate {
	return append(Coordinate(nil), d.points[i]...)
}

// Values returns a copy of the numeric column name.
func (d *GeospatialData) Values(name string) ([]float64, error) {
	v, err := d.values(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), v...), nil
}

func (d *GeospatialData) values(name string) ([]float64, error) {
	c, ok := d.table.Column(name)
	if !ok {
		return nil, eris.Wrapf(ErrSchema, "column %q not found", name)
	}
	if !c.IsNumeric() {
		return nil, eris.Wrapf(ErrSchema, "column %q is not numeric", name)
	}
	return c.Floats, nil
}

func (d *GeospatialData) Strings(name string) ([]string, error) {
	c, ok := d.table.Column(name)
	if !ok {
		return nil, eris.Wrapf(ErrSchema, "column %q not found", name)
	}
	if c.IsNumeric() {
		return nil, eris.Wrapf(ErrSchema, "column %q is not categorical", name)
	}
	return append([]string(nil), c.Strings...), nil
}

// Mean is the arithmetic mean of a numeric column.
func (d *GeospatialData) Mean(name string) (float64, error) {
	v, err := d.values(name)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, eris.Wrapf(ErrInsufficientData, "mean of empty column %q", name)
	}
	return floats.Sum(v) / float64(len(v)), nil
}

// emptyData is a zero-row data set with columns x1..xD followed by vars.
func emptyData(dim int, vars []string) (*GeospatialData, error) {
	cols := make([]Column, 0, dim+len(vars))
	names := make([]string, dim)
	for i := range names {
		names[i] = axisName(i)
		cols = append(cols, FloatColumn(names[i], nil))
	}
	for _, v := range vars {
		cols = append(cols, FloatColumn(v, nil))
	}
	table, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	return NewGeospatialData(table, names...)
}
