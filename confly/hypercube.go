package confly

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// Hypercube is one cube replica's cell accumulator. The conceptual nested
// map (one level per category column) is flattened to a single map keyed
// by the joined coordinate string: every marginal-expansion target is
// reached by its full category path in one step, so interior nodes would
// carry no information a flat map doesn't already capture, the same
// reasoning behind Coord's key() in the traversing store.
type Hypercube struct {
	id     int
	schema Schema
	mask   uint64
	cells  map[string]*Response
}

// NewHypercube allocates an empty cube replica with the given id and
// in-cube mask.
func NewHypercube(id int, schema Schema, mask uint64) *Hypercube {
	return &Hypercube{id: id, schema: schema, mask: mask, cells: make(map[string]*Response)}
}

// ID returns the cube's global id (first_cube_id + local k).
func (h *Hypercube) ID() int { return h.id }

// Update performs marginal expansion of rec against this cube: every
// expansion index i covering the in-cube mask names one target cell,
// reached by totalizing rec's category columns at i's set bits, and that
// cell's Response is updated with rec's record-key. Indices that leave an
// aggregation-only column unmasked are skipped, so masked columns only
// ever appear as their total code; with a zero mask all 2^(d-1) marginals
// of the record are visited.
func (h *Hypercube) Update(rec Tuple) {
	d := uint(h.schema.Dims())
	rho := float64(rec[0].I) / (float64(mtMaxUint32) + 1)

	for i := uint64(0); i < (uint64(1) << d); i++ {
		if i|h.mask != i {
			continue
		}
		masked := ApplyMask(h.schema, rec, i)
		key := Coord(masked[1:]).key()
		resp, ok := h.cells[key]
		if !ok {
			resp = &Response{}
			h.cells[key] = resp
		}
		resp.Update(rho)
	}
}

// SampleIndices draws round(rate*n) distinct indices in [0,n) uniformly
// without replacement via a partial Fisher-Yates shuffle.
func SampleIndices(rng *Engine, n int, rate float64) []int {
	m := int(math.Round(rate * float64(n)))
	if m > n {
		m = n
	}
	if m < 0 {
		m = 0
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < m; i++ {
		j := i + int(rng.UniformInt(0, int64(n-i)))
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:m]
}

// FinaliseAndEmit traverses the metadata's Cartesian product, not merely
// the map's populated keys, so empty cells still appear with zero counts
// and still receive noise. Each leaf is finalised and written as
// v_1;...;v_{d-1};count;ck;dpf;dpg. When trav is non-nil and enabled,
// every leaf is also inserted into the traversing store at this cube's id.
func (h *Hypercube) FinaliseAndEmit(w io.Writer, meta Metadata, ptab *PTable, noise NoiseParams, rng *Engine, trav *TraversingStore) error {
	d := h.schema.Dims()
	path := make(Coord, d)
	return h.emitDim(1, d, path, w, meta, ptab, noise, rng, trav)
}

func (h *Hypercube) emitDim(col, d int, path Coord, w io.Writer, meta Metadata, ptab *PTable, noise NoiseParams, rng *Engine, trav *TraversingStore) error {
	if col > d {
		key := path.key()
		resp, ok := h.cells[key]
		if !ok {
			resp = &Response{}
		}
		resp.Finalise(ptab, noise, rng)
		rec := resp.Record()

		if err := writeCubeLine(w, path, rec); err != nil {
			return fmt.Errorf("%w: %v", ErrOutputWrite, err)
		}
		if trav != nil && !trav.Disabled() {
			cp := make(Coord, len(path))
			copy(cp, path)
			trav.Insert(h.id, cp, rec)
		}
		return nil
	}

	for _, v := range meta.SortedValues(col) {
		path[col-1] = v
		if err := h.emitDim(col+1, d, path, w, meta, ptab, noise, rng, trav); err != nil {
			return err
		}
	}
	return nil
}

func writeCubeLine(w io.Writer, path Coord, rec ResponseRecord) error {
	for _, v := range path {
		if _, err := fmt.Fprintf(w, "%s;", v.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d;%d;%g;%d\n", rec.Count, rec.CK, rec.DPF, rec.DPG)
	return err
}

// ReadHypercube reconstructs a cube from its on-disk form: each line's
// first Dims() fields are parsed into a coordinate using schema's column
// types, the remaining four fields load directly into the leaf's
// ResponseRecord. Lines with a zero count (empty cells) are not loaded into
// the returned cube's cells. When trav is non-nil and enabled, every parsed
// line, empty cells included, is inserted into it under id.
func ReadHypercube(r io.Reader, id int, schema Schema, sep byte, trav *TraversingStore) (*Hypercube, error) {
	h := NewHypercube(id, schema, schema.Mask())
	d := schema.Dims()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(sep))
		if len(fields) != d+4 {
			return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrCubeRead, d+4, len(fields))
		}

		path := make(Coord, d)
		for i := 0; i < d; i++ {
			v, err := ParseValue(schema[i+1].Type, fields[i])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
			}
			path[i] = v
		}

		resp, err := ReadResponse(fields[d:])
		if err != nil {
			return nil, err
		}
		if resp.rec.Count != 0 {
			h.cells[path.key()] = resp
		}

		if trav != nil && !trav.Disabled() {
			trav.Insert(id, path, resp.Record())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
	}
	return h, nil
}
