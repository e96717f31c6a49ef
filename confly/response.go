package confly

import (
	"fmt"
	"io"
	"math"
)

// NoiseParams bundles the three noise schemes' parameters. The driver
// owns one instance and passes it read-only to every cube task; there is
// no global mutable noise state.
type NoiseParams struct {
	LaplaceMu  float64
	LaplaceB   float64
	GeometricE float64
}

// ResponseRecord is the finalised four-tuple written per cell: the raw
// count plus the three noise draws.
type ResponseRecord struct {
	Count int64
	CK    int64
	DPF   float64
	DPG   int64
}

// Response is a per-cell accumulator: a running count plus a running
// record-key sum, extended after Finalise with the three noise values.
// Record-key summation is associative, so a cell's finalised cellkey is
// independent of update order. Reproducibility under parallel cube
// construction depends on this.
type Response struct {
	rkeySum float64
	rec     ResponseRecord
}

// Update increments the count and accumulates the supplied record-key,
// which must be in [0, 1).
func (r *Response) Update(rkey float64) {
	r.rec.Count++
	r.rkeySum += rkey
}

// Finalise derives the Cell-Key noise (via a P-table lookup keyed on the
// count and the accumulated cellkey) and draws fresh Laplace/Geometric DP
// noise from rng.
func (r *Response) Finalise(ptab *PTable, noise NoiseParams, rng *Engine) {
	cellkey := math.Mod(r.rkeySum, 1.0)
	r.rec.CK = ptab.Lookup(r.rec.Count, cellkey)
	r.rec.DPF = Laplace(rng, noise.LaplaceMu, noise.LaplaceB)
	r.rec.DPG = Geometric(rng, noise.GeometricE)
}

// Record returns the finalised record.
func (r *Response) Record() ResponseRecord { return r.rec }

// Write emits the four fields joined by sep: count;ck;dpf;dpg.
func (r *Response) Write(w io.Writer, sep byte) error {
	_, err := fmt.Fprintf(w, "%d%c%d%c%g%c%d", r.rec.Count, sep, r.rec.CK, sep, r.rec.DPF, sep, r.rec.DPG)
	return err
}

// ReadResponse parses four already-split fields (count, ck, dpf, dpg) into
// a Response, used by hypercube read-back.
func ReadResponse(fields []string) (*Response, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: expected 4 response fields, got %d", ErrCubeRead, len(fields))
	}
	var rec ResponseRecord
	if _, err := fmt.Sscan(fields[0], &rec.Count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
	}
	if _, err := fmt.Sscan(fields[1], &rec.CK); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
	}
	if _, err := fmt.Sscan(fields[2], &rec.DPF); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
	}
	if _, err := fmt.Sscan(fields[3], &rec.DPG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCubeRead, err)
	}
	return &Response{rec: rec}, nil
}
