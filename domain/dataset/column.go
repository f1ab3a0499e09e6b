package dataset

import "math"

// Column is a named, immutable sequence of values of one logical type.
// Missing cells may appear in a column of any type.
type Column struct {
	name   string
	typ    ValueType
	values []Value
}

// NewColumn builds a column from a copy of values
func NewColumn(name string, typ ValueType, values []Value) *Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	return &Column{name: name, typ: typ, values: cp}
}

// NumericColumn builds a numeric column; NaN and ±Inf become missing.
func NumericColumn(name string, nums []float64) *Column {
	values := make([]Value, len(nums))
	for i, n := range nums {
		values[i] = Number(n)
	}
	return &Column{name: name, typ: ValueTypeNumeric, values: values}
}

// TextColumn builds a text column; empty strings become missing.
func TextColumn(name string, texts []string) *Column {
	values := make([]Value, len(texts))
	for i, s := range texts {
		values[i] = Text(s)
	}
	return &Column{name: name, typ: ValueTypeText, values: values}
}

// BoolColumn builds a boolean column
func BoolColumn(name string, flags []bool) *Column {
	values := make([]Value, len(flags))
	for i, b := range flags {
		values[i] = Boolean(b)
	}
	return &Column{name: name, typ: ValueTypeBoolean, values: values}
}

func (c *Column) Name() string    { return c.name }
func (c *Column) Type() ValueType { return c.typ }
func (c *Column) Len() int        { return len(c.values) }

// At returns the value at row i
func (c *Column) At(i int) Value { return c.values[i] }

// Values returns a copy of the column's values
func (c *Column) Values() []Value {
	cp := make([]Value, len(c.values))
	copy(cp, c.values)
	return cp
}

// Renamed returns the same data under a new name
func (c *Column) Renamed(name string) *Column {
	return &Column{name: name, typ: c.typ, values: c.values}
}

// MissingCount counts missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// IsNumeric reports whether the column can be read as numbers
func (c *Column) IsNumeric() bool {
	return c.typ == ValueTypeNumeric || c.typ == ValueTypeBoolean
}

// Floats returns the column as float64 with NaN marking missing or non-numeric cells
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	for i, v := range c.values {
		if f, ok := v.Float(); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// NonMissingFloats returns only the present numeric values, in row order
func (c *Column) NonMissingFloats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Map builds a new column of the given type by transforming every value
func (c *Column) Map(typ ValueType, fn func(i int, v Value) Value) *Column {
	values := make([]Value, len(c.values))
	for i, v := range c.values {
		values[i] = fn(i, v)
	}
	return &Column{name: c.name, typ: typ, values: values}
}

// Equal reports whether two columns hold the same name, type and values
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.typ != o.typ || len(c.values) != len(o.values) {
		return false
	}
	for i := range c.values {
		if !c.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}
