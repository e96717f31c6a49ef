package confly

import (
	"bufio"
	"fmt"
	"io"
)

// PTableRecord is one row of a pre-computed Cell-Key perturbation table:
// for category index I, cell-key interval [PLb, PUb] maps to noise value V.
type PTableRecord struct {
	I, J int64
	P    float64
	V    int64
	PLb  float64
	PUb  float64
}

// PTable is a multi-map keyed by category index, used to look up the
// Cell-Key noise value for a given (count, cellkey) pair. Records are
// accepted in any order; intervals for the same index are assumed
// disjoint and to union to [0,1], not re-validated here: the table is an
// external, pre-computed artefact.
type PTable struct {
	nCat    int64
	records map[int64][]PTableRecord
}

// NewPTable constructs an empty table.
func NewPTable() *PTable {
	return &PTable{records: make(map[int64][]PTableRecord)}
}

// Insert adds rec to the table and tracks the running maximum category
// index.
func (p *PTable) Insert(rec PTableRecord) {
	p.records[rec.I] = append(p.records[rec.I], rec)
	if rec.I > p.nCat {
		p.nCat = rec.I
	}
}

// NCat returns the largest category index inserted so far.
func (p *PTable) NCat() int64 { return p.nCat }

// Size returns the total number of records in the table.
func (p *PTable) Size() int {
	n := 0
	for _, recs := range p.records {
		n += len(recs)
	}
	return n
}

// Lookup returns the noise value for category index i and cell key
// cellkey, wrapping i modulo (nCat+1) when it exceeds the table's range.
// Returns 0, not an error, when no interval contains cellkey; that
// indicates a malformed table and is intentionally not fatal.
func (p *PTable) Lookup(i int64, cellkey float64) int64 {
	idx := i
	if idx > p.nCat {
		idx %= p.nCat + 1
	}

	for _, rec := range p.records[idx] {
		if rec.PLb <= cellkey && cellkey <= rec.PUb {
			return rec.V
		}
	}
	return 0
}

// Load reads whitespace-separated "i j p v p_lb p_ub" records, one per
// line, until EOF.
func (p *PTable) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if len(line) == 0 {
			continue
		}
		var rec PTableRecord
		_, err := fmt.Sscan(line, &rec.I, &rec.J, &rec.P, &rec.V, &rec.PLb, &rec.PUb)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPTableRead, err)
		}
		p.Insert(rec)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPTableRead, err)
	}
	return nil
}

// Write serialises the table, one whitespace-separated record per line.
func (p *PTable) Write(w io.Writer) error {
	for _, recs := range p.records {
		for _, rec := range recs {
			if _, err := fmt.Fprintf(w, "%d %d %g %d %g %g\n", rec.I, rec.J, rec.P, rec.V, rec.PLb, rec.PUb); err != nil {
				return err
			}
		}
	}
	return nil
}
