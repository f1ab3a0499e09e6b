package dataset

import (
	"math"
	"strconv"
	"time"
)

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeDate    ValueType = "date"
	ValueTypeMissing ValueType = "missing"
)

// Value is one typed cell. A missing value is distinct from every valid value,
// including zero and the empty string.
type Value struct {
	Type    ValueType
	Num     float64
	Str     string
	Time    time.Time
	Bool    bool
	Missing bool
}

// Missing creates a missing value
func Missing() Value {
	return Value{Type: ValueTypeMissing, Missing: true}
}

// Text creates a text value. Empty text is treated as missing.
func Text(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Type: ValueTypeText, Str: s}
}

// Number creates a numeric value. NaN and ±Inf are stored as missing.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Missing()
	}
	return Value{Type: ValueTypeNumeric, Num: n}
}

// Boolean creates a boolean value
func Boolean(b bool) Value {
	return Value{Type: ValueTypeBoolean, Bool: b}
}

// Date creates a date value. The zero time is stored as missing.
func Date(t time.Time) Value {
	if t.IsZero() {
		return Missing()
	}
	return Value{Type: ValueTypeDate, Time: t}
}

// IsMissing reports whether the value is absent
func (v Value) IsMissing() bool {
	return v.Missing || v.Type == ValueTypeMissing
}

// Float returns the value as float64. Booleans map to 0/1.
// ok is false for missing, text and date values.
func (v Value) Float() (float64, bool) {
	if v.IsMissing() {
		return 0, false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.Num, true
	case ValueTypeBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// String returns a canonical text form, used for group labels and exports
func (v Value) String() string {
	if v.IsMissing() {
		return ""
	}
	switch v.Type {
	case ValueTypeText:
		return v.Str
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Equal compares two values by type and content
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.Num == o.Num
	case ValueTypeText:
		return v.Str == o.Str
	case ValueTypeBoolean:
		return v.Bool == o.Bool
	case ValueTypeDate:
		return v.Time.Equal(o.Time)
	}
	return false
}
