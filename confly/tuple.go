package confly

import (
	"fmt"
	"io"
	"strings"
)

// Tuple is one schema-conformant row: tuple[0] is the opaque record id
// (later overwritten with the drawn record-key), tuple[1:] are the
// category columns.
type Tuple []Value

// ReadTuple splits line on sep and parses each field per schema. A tuple
// whose every coordinate equals its type's default value is "empty"; the
// caller (Micro.Ingest) skips such rows (blank-line tolerance).
func ReadTuple(schema Schema, line string, sep byte) (Tuple, bool, error) {
	fields := strings.Split(line, string(sep))
	if len(fields) != len(schema) {
		return nil, false, fmt.Errorf("%w: expected %d fields, got %d", ErrSchemaMismatch, len(schema), len(fields))
	}

	tup := make(Tuple, len(schema))
	empty := true
	for i, col := range schema {
		v, err := ParseValue(col.Type, fields[i])
		if err != nil {
			return nil, false, err
		}
		tup[i] = v
		if v != zeroValue(col.Type) {
			empty = false
		}
	}
	return tup, empty, nil
}

// WriteTuple writes tup to w, separating fields with sep and never
// emitting a leading, trailing, or terminating separator/newline.
func WriteTuple(w io.Writer, tup Tuple, sep byte) error {
	for i, v := range tup {
		if i > 0 {
			if _, err := w.Write([]byte{sep}); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, v.String()); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMask overwrites tup[i+1] with the total code of its type for every
// bit i of mask that is set, returning a new tuple (the input is left
// untouched so callers can reuse the original record across expansions).
func ApplyMask(schema Schema, tup Tuple, mask uint64) Tuple {
	out := make(Tuple, len(tup))
	copy(out, tup)
	for i := 1; i < len(schema); i++ {
		bit := uint64(1) << uint(i-1)
		if mask&bit != 0 {
			out[i] = schema[i].Type.TotalCode()
		}
	}
	return out
}

// TotalCodeTuple produces the coordinate whose every column (i >= 1) is
// the total code of its type. Used to guarantee the total code is always
// present in metadata even when the mask is zero or the value is absent
// from the input.
func TotalCodeTuple(schema Schema) Tuple {
	tup := make(Tuple, len(schema))
	for i, col := range schema {
		if i == 0 {
			continue
		}
		tup[i] = col.Type.TotalCode()
	}
	return tup
}

// Metadata holds, for each category column i >= 1, the set of distinct
// values observed (plus the column's total code, inserted separately).
type Metadata []map[Value]struct{}

// NewMetadata allocates an empty Metadata sized to schema.
func NewMetadata(schema Schema) Metadata {
	m := make(Metadata, len(schema))
	for i := 1; i < len(schema); i++ {
		m[i] = make(map[Value]struct{})
	}
	return m
}

// Accumulate inserts tup[i] into the category set for every column i >= 1.
func (m Metadata) Accumulate(tup Tuple) {
	for i := 1; i < len(tup); i++ {
		m[i][tup[i]] = struct{}{}
	}
}

// SortedValues returns the category set of column i in the type's natural
// ordering, so cube traversal (and therefore output) is deterministic.
func (m Metadata) SortedValues(i int) []Value {
	vals := make([]Value, 0, len(m[i]))
	for v := range m[i] {
		vals = append(vals, v)
	}
	sortValues(vals)
	return vals
}

func sortValues(vals []Value) {
	// insertion sort: category sets are small (distinct values per
	// column), so this avoids pulling in sort.Slice's reflection-based
	// comparator on a path called at every level of every emitted cube.
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j].Less(vals[j-1]); j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}
}

// validateNoTotalCodeCollision ensures no legitimate category value equals
// its type's total code, a precondition of marginal expansion.
func validateNoTotalCodeCollision(schema Schema, tup Tuple) error {
	for i := 1; i < len(tup); i++ {
		if tup[i] == schema[i].Type.TotalCode() {
			return fmt.Errorf("%w: column %q value %s equals its total code", ErrTotalCodeCollision, schema[i].Name, tup[i])
		}
	}
	return nil
}
