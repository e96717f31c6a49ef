package confly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func cubeSchema() Schema {
	return Schema{
		{Name: "rowid", Type: Long},
		{Name: "age", Type: Long, Cube: true},
		{Name: "region", Type: String, Cube: false},
	}
}

func TestHypercube_UpdateAlwaysTotalizesMaskedColumns(t *testing.T) {
	schema := cubeSchema()
	mask := schema.Mask() // bit 1 (region) is aggregation-only
	h := NewHypercube(0, schema, mask)

	rec := Tuple{LongValue(1 << 20), LongValue(34), StringValue("north")}
	h.Update(rec)

	// i=0b10 (region totalized) and i=0b11 (both totalized) qualify;
	// i=0b00 and i=0b01 would leave region's concrete value in the cell
	// and must be skipped.
	assert.Len(t, h.cells, 2)
	want := []Coord{
		{LongValue(34), String.TotalCode()},
		{Long.TotalCode(), String.TotalCode()},
	}
	for _, c := range want {
		assert.Contains(t, h.cells, c.key())
	}
}

func TestHypercube_FinaliseAndEmitCoversMetadataCartesianProduct(t *testing.T) {
	schema := cubeSchema()
	mask := schema.Mask()
	h := NewHypercube(0, schema, mask)

	meta := NewMetadata(schema)
	meta.Accumulate(Tuple{LongValue(0), LongValue(20), StringValue("north")})
	meta.Accumulate(Tuple{LongValue(0), LongValue(30), StringValue("south")})
	meta.Accumulate(TotalCodeTuple(schema))

	ptab := NewPTable()
	ptab.Insert(PTableRecord{I: 0, V: 0, PLb: 0.0, PUb: 1.0})
	noise := NoiseParams{LaplaceMu: 0, LaplaceB: 1, GeometricE: 1}

	var sb strings.Builder
	err := h.FinaliseAndEmit(&sb, meta, ptab, noise, NewEngine(1), nil)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	// 3 ages (20, 30, total) x 3 regions (north, south, total) = 9 cells,
	// every combination present even though only two records were seen.
	assert.Len(t, lines, 9)
}

func TestHypercube_ReadBackReconstructsLeaves(t *testing.T) {
	schema := cubeSchema()
	ptab := NewPTable()
	ptab.Insert(PTableRecord{I: 0, V: 0, PLb: 0.0, PUb: 1.0})
	noise := NoiseParams{LaplaceMu: 0, LaplaceB: 1, GeometricE: 1}

	h := NewHypercube(7, schema, schema.Mask())
	h.Update(Tuple{LongValue(1 << 10), LongValue(20), StringValue("north")})

	meta := NewMetadata(schema)
	meta.Accumulate(Tuple{LongValue(0), LongValue(20), StringValue("north")})
	meta.Accumulate(TotalCodeTuple(schema))

	var sb strings.Builder
	assert.NoError(t, h.FinaliseAndEmit(&sb, meta, ptab, noise, NewEngine(1), nil))

	readBack, err := ReadHypercube(strings.NewReader(sb.String()), 7, schema, ';', nil)
	assert.NoError(t, err)
	assert.Equal(t, len(h.cells), len(readBack.cells))
}

func TestSampleIndices_DrawsDistinctIndicesWithoutReplacement(t *testing.T) {
	e := NewEngine(9)
	idx := SampleIndices(e, 100, 0.1)
	assert.Len(t, idx, 10)

	seen := make(map[int]bool)
	for _, i := range idx {
		assert.False(t, seen[i])
		seen[i] = true
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 100)
	}
}

func TestHypercube_TotalMarginalCountEqualsSampleSize(t *testing.T) {
	schema := Schema{
		{Name: "rowid", Type: Long},
		{Name: "age", Type: Long, Cube: true},
		{Name: "region", Type: String, Cube: true},
	}
	h := NewHypercube(0, schema, schema.Mask())

	recs := []Tuple{
		{LongValue(100), LongValue(20), StringValue("north")},
		{LongValue(200), LongValue(20), StringValue("south")},
		{LongValue(300), LongValue(30), StringValue("north")},
		{LongValue(400), LongValue(30), StringValue("north")},
		{LongValue(500), LongValue(45), StringValue("south")},
	}
	for _, r := range recs {
		h.Update(r)
	}

	// The all-total cell aggregates every update once.
	allTotal := Coord{Long.TotalCode(), String.TotalCode()}
	assert.Equal(t, int64(len(recs)), h.cells[allTotal.key()].rec.Count)

	// Summing the age marginal (age=tau, region varying) over every
	// region also recovers the sample size.
	var sum int64
	for _, region := range []Value{StringValue("north"), StringValue("south")} {
		c := Coord{Long.TotalCode(), region}
		if resp, ok := h.cells[c.key()]; ok {
			sum += resp.rec.Count
		}
	}
	assert.Equal(t, int64(len(recs)), sum)
}

func TestHypercube_TrivialSingleColumnCube(t *testing.T) {
	// Three records over one reported column: a=1 twice, a=2 once. The
	// emitted cube has exactly the cells 1, 2, and the total, with counts
	// 2, 1, and 3.
	schema := Schema{
		{Name: "rowid", Type: Long},
		{Name: "a", Type: Long, Cube: true},
	}
	h := NewHypercube(0, schema, schema.Mask())
	h.Update(Tuple{LongValue(10), LongValue(1)})
	h.Update(Tuple{LongValue(20), LongValue(1)})
	h.Update(Tuple{LongValue(30), LongValue(2)})

	meta := NewMetadata(schema)
	meta.Accumulate(Tuple{LongValue(0), LongValue(1)})
	meta.Accumulate(Tuple{LongValue(0), LongValue(2)})
	meta.Accumulate(TotalCodeTuple(schema))

	ptab := NewPTable()
	ptab.Insert(PTableRecord{I: 0, V: 0, PLb: 0.0, PUb: 1.0})
	noise := NoiseParams{LaplaceMu: 0, LaplaceB: 2.0, GeometricE: 0.5}

	var sb strings.Builder
	assert.NoError(t, h.FinaliseAndEmit(&sb, meta, ptab, noise, NewEngine(42), nil))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "-1;3;"))
	assert.True(t, strings.HasPrefix(lines[1], "1;2;"))
	assert.True(t, strings.HasPrefix(lines[2], "2;1;"))
}

func TestHypercube_MaskedColumnNeverAppearsUnaggregated(t *testing.T) {
	// With column b aggregation-only, every expansion lands on (a_i, tau_b)
	// or (tau_a, tau_b); no cell ever carries a concrete b value.
	schema := Schema{
		{Name: "rowid", Type: Long},
		{Name: "a", Type: Long, Cube: true},
		{Name: "b", Type: Long, Cube: false},
	}
	h := NewHypercube(0, schema, schema.Mask())
	h.Update(Tuple{LongValue(10), LongValue(1), LongValue(7)})
	h.Update(Tuple{LongValue(20), LongValue(2), LongValue(8)})

	tauB := Long.TotalCode()
	for key := range h.cells {
		parts := strings.Split(key, "\x00")
		assert.Equal(t, tauB.String(), parts[1])
	}
	assert.Len(t, h.cells, 3) // (1,tau), (2,tau), (tau,tau)
}
