package confly

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnType is one of the three microdata field types the schema supports.
type ColumnType int

const (
	Long ColumnType = iota
	String
	Decimal
)

func (t ColumnType) String() string {
	switch t {
	case Long:
		return "long"
	case String:
		return "string"
	case Decimal:
		return "decimal"
	}
	return "unknown"
}

// ParseColumnType accepts the configuration file's spelling ("int",
// "integer", "string", "decimal") and returns the internal ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "int", "integer":
		return Long, nil
	case "string":
		return String, nil
	case "decimal":
		return Decimal, nil
	default:
		return 0, fmt.Errorf("%w: unknown micro type %q", ErrConfigMissingOrMalformed, s)
	}
}

// TotalCode returns the type-specific sentinel standing for "aggregated
// over this column". No legitimate category value may equal it; this is
// enforced at ingest (see Micro.Ingest).
func (t ColumnType) TotalCode() Value {
	switch t {
	case Long:
		return Value{Kind: Long, I: -1}
	case String:
		return Value{Kind: String, S: "T"}
	case Decimal:
		return Value{Kind: Decimal, D: -math.MaxFloat64}
	}
	panic("confly: unknown column type")
}

// Value is a tagged-union cell: one of the three column types, carried
// with a runtime type tag. It is a plain comparable struct so it can
// serve directly as a map key.
type Value struct {
	Kind ColumnType
	I    int64
	S    string
	D    float64
}

// LongValue, StringValue, DecimalValue construct typed Values.
func LongValue(v int64) Value    { return Value{Kind: Long, I: v} }
func StringValue(v string) Value { return Value{Kind: String, S: v} }
func DecimalValue(v float64) Value {
	return Value{Kind: Decimal, D: v}
}

// IsTotalCode reports whether v equals its type's total code.
func (v Value) IsTotalCode() bool {
	return v == v.Kind.TotalCode()
}

// Less provides the natural ordering of the column's type, used to make
// cube emission order (and therefore output) deterministic.
func (v Value) Less(o Value) bool {
	switch v.Kind {
	case Long:
		return v.I < o.I
	case String:
		return v.S < o.S
	case Decimal:
		return v.D < o.D
	}
	return false
}

// String renders v using the type's natural spelling, so total codes
// print as "-1" for long, "T" for string, and the minimum decimal
// literal for decimal.
func (v Value) String() string {
	switch v.Kind {
	case Long:
		return strconv.FormatInt(v.I, 10)
	case String:
		return v.S
	case Decimal:
		return strconv.FormatFloat(v.D, 'g', -1, 64)
	}
	return ""
}

// ParseValue parses a trimmed field of the declared type.
func ParseValue(t ColumnType, field string) (Value, error) {
	field = strings.TrimSpace(field)
	switch t {
	case Long:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a long", ErrSchemaMismatch, field)
		}
		return LongValue(i), nil
	case String:
		return StringValue(field), nil
	case Decimal:
		d, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a decimal", ErrSchemaMismatch, field)
		}
		return DecimalValue(d), nil
	}
	return Value{}, fmt.Errorf("%w: unknown column type", ErrSchemaMismatch)
}

// zeroValue returns the default ("empty") value for t, used by the
// empty-tuple test at ingest (a row whose every coordinate is the zero
// value is treated as blank and skipped).
func zeroValue(t ColumnType) Value {
	switch t {
	case Long:
		return LongValue(0)
	case String:
		return StringValue("")
	case Decimal:
		return DecimalValue(0)
	}
	return Value{}
}

// Column describes one field of the schema.
type Column struct {
	Name string
	Type ColumnType
	// Cube marks whether this column's categories are reported in the
	// cube output (true) or only aggregated away (false). Column 0 (the
	// record id) never sets this meaningfully.
	Cube bool
}

// Schema is an ordered list of columns. Column 0 is always the opaque row
// identifier; it never participates in aggregation.
type Schema []Column

// Dims returns the number of category columns (all columns but column 0).
func (s Schema) Dims() int {
	return len(s) - 1
}

// Mask returns the in-cube mask implied by the schema's Cube flags: bit i
// (0-based over columns 1..d-1) is 1 when column i+1 is aggregation-only.
func (s Schema) Mask() uint64 {
	var m uint64
	for i := 1; i < len(s); i++ {
		if !s[i].Cube {
			m |= 1 << uint(i-1)
		}
	}
	return m
}
