package dataset

import (
	"riskhypo/domain/core"
)

// Dataset is an ordered set of equally long columns. Rows are positional.
//
// A Dataset is treated as a value: every transformation returns a new Dataset
// and leaves the receiver untouched. Columns are shared between versions
// because they are immutable.
type Dataset struct {
	order   []string
	columns map[string]*Column
	rows    int
	version int
}

// New builds a dataset from columns, which must all have the same length
// and distinct names.
func New(columns ...*Column) (*Dataset, error) {
	ds := &Dataset{columns: make(map[string]*Column, len(columns))}
	for i, col := range columns {
		if i == 0 {
			ds.rows = col.Len()
		}
		if col.Len() != ds.rows {
			return nil, core.NewRowCountError(col.Name(), col.Len(), ds.rows)
		}
		if _, dup := ds.columns[col.Name()]; dup {
			return nil, core.ErrDuplicateColumn
		}
		ds.order = append(ds.order, col.Name())
		ds.columns[col.Name()] = col
	}
	return ds, nil
}

// MustNew is New for fixtures; it panics on malformed input
func MustNew(columns ...*Column) *Dataset {
	ds, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return ds
}

// Rows returns the shared row count
func (d *Dataset) Rows() int { return d.rows }

// Version counts the transformations applied since the dataset was loaded
func (d *Dataset) Version() int { return d.version }

// ColumnNames returns column names in order
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Has reports whether a column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	col, ok := d.columns[name]
	return col, ok
}

// MustColumn returns a column or a ColumnNotFound error
func (d *Dataset) MustColumn(name string) (*Column, error) {
	col, ok := d.columns[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return col, nil
}

// Columns returns the columns in order
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.columns[name])
	}
	return out
}

func (d *Dataset) next() *Dataset {
	cp := &Dataset{
		order:   make([]string, len(d.order)),
		columns: make(map[string]*Column, len(d.columns)),
		rows:    d.rows,
		version: d.version + 1,
	}
	copy(cp.order, d.order)
	for k, v := range d.columns {
		cp.columns[k] = v
	}
	return cp
}

// WithColumn returns a new dataset in which col replaces the column of the
// same name, or is appended when no such column exists.
func (d *Dataset) WithColumn(col *Column) (*Dataset, error) {
	if len(d.order) > 0 && col.Len() != d.rows {
		return nil, core.NewRowCountError(col.Name(), col.Len(), d.rows)
	}
	cp := d.next()
	if len(d.order) == 0 {
		cp.rows = col.Len()
	}
	if _, exists := cp.columns[col.Name()]; !exists {
		cp.order = append(cp.order, col.Name())
	}
	cp.columns[col.Name()] = col
	return cp, nil
}

// WithColumns applies WithColumn for each column in turn
func (d *Dataset) WithColumns(cols ...*Column) (*Dataset, error) {
	out := d
	for _, col := range cols {
		next, err := out.WithColumn(col)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Without returns a new dataset lacking the named columns. Unknown names are ignored.
func (d *Dataset) Without(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cp := d.next()
	cp.order = cp.order[:0]
	for _, name := range d.order {
		if drop[name] {
			delete(cp.columns, name)
			continue
		}
		cp.order = append(cp.order, name)
	}
	return cp
}

// Select returns a new dataset with exactly the named columns, in the given order
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		col, err := d.MustColumn(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.version = d.version + 1
	if len(cols) == 0 {
		out.rows = d.rows
	}
	return out, nil
}

// Row returns the values of row i keyed by column name
func (d *Dataset) Row(i int) map[string]Value {
	row := make(map[string]Value, len(d.order))
	for _, name := range d.order {
		row[name] = d.columns[name].At(i)
	}
	return row
}

// Equal reports whether two datasets hold the same columns in the same order
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.order) != len(o.order) {
		return false
	}
	for i, name := range d.order {
		if o.order[i] != name {
			return false
		}
		if !d.columns[name].Equal(o.columns[name]) {
			return false
		}
	}
	return true
}
