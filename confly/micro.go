package confly

import (
	"bufio"
	"fmt"
	"io"
)

// Micro is the microdata store: a vector of typed records plus, per
// column, the set of categories observed. Accessors expose
// the raw record vector, the metadata, and the mask, all read-only;
// nothing about a Micro mutates after Ingest returns.
type Micro struct {
	schema  Schema
	mask    uint64
	records []Tuple
	meta    Metadata
}

// NewMicro allocates an empty store for schema, with the in-cube mask
// derived from the schema's Cube flags.
func NewMicro(schema Schema) *Micro {
	return &Micro{
		schema: schema,
		mask:   schema.Mask(),
		meta:   NewMetadata(schema),
	}
}

// Records returns the ingested record vector (read-only).
func (m *Micro) Records() []Tuple { return m.records }

// Meta returns the accumulated metadata (read-only).
func (m *Micro) Meta() Metadata { return m.meta }

// Mask returns the in-cube aggregation mask.
func (m *Micro) Mask() uint64 { return m.mask }

// Schema returns the schema this store was built against.
func (m *Micro) Schema() Schema { return m.schema }

// Ingest reads rows from r until EOF, separated by sep. For each
// non-empty row: column 0 is overwritten with a freshly drawn uniform
// 32-bit record-key, the row is stored, and a masked copy's categories are
// accumulated into the metadata. Metadata over-counts "total" positions,
// which is required because marginal expansion visits total-code
// positions. Blank lines are skipped. After ingest, the pure
// total-code tuple is accumulated too, guaranteeing every column's total
// code is present in its category set even when the mask is zero.
func (m *Micro) Ingest(r io.Reader, sep byte, rng *Engine) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		tup, empty, err := ReadTuple(m.schema, line, sep)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMicroRead, err)
		}
		if empty {
			continue
		}

		if err := validateNoTotalCodeCollision(m.schema, tup); err != nil {
			return err
		}

		tup[0] = LongValue(int64(rng.Uint32()))
		m.records = append(m.records, tup)

		masked := ApplyMask(m.schema, tup, m.mask)
		m.meta.Accumulate(masked)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMicroRead, err)
	}

	m.meta.Accumulate(TotalCodeTuple(m.schema))
	return nil
}
