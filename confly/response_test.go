package confly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_UpdateAccumulatesCountAndRecordKeySum(t *testing.T) {
	var r Response
	r.Update(0.25)
	r.Update(0.50)
	assert.Equal(t, int64(2), r.Record().Count)
	assert.Equal(t, 0.75, r.rkeySum)
}

func TestResponse_CellKeyIsOrderIndependent(t *testing.T) {
	var a, b Response
	a.Update(0.2)
	a.Update(0.7)
	a.Update(0.9)

	b.Update(0.9)
	b.Update(0.2)
	b.Update(0.7)

	ptab := NewPTable()
	ptab.Insert(PTableRecord{I: 3, V: 1, PLb: 0.0, PUb: 1.0})
	noise := NoiseParams{LaplaceMu: 0, LaplaceB: 1, GeometricE: 1}

	a.Finalise(ptab, noise, NewEngine(1))
	b.Finalise(ptab, noise, NewEngine(1))
	assert.Equal(t, a.Record().CK, b.Record().CK)
}

func TestReadResponse_RejectsWrongFieldCount(t *testing.T) {
	_, err := ReadResponse([]string{"1", "2", "3"})
	assert.ErrorIs(t, err, ErrCubeRead)
}

func TestReadResponse_ParsesFourFields(t *testing.T) {
	resp, err := ReadResponse([]string{"10", "2", "0.5", "-1"})
	assert.NoError(t, err)
	rec := resp.Record()
	assert.Equal(t, int64(10), rec.Count)
	assert.Equal(t, int64(2), rec.CK)
	assert.Equal(t, 0.5, rec.DPF)
	assert.Equal(t, int64(-1), rec.DPG)
}

func TestResponse_CellKeyWrapsModuloOne(t *testing.T) {
	// Record-keys 0.3 and 0.8 sum to 1.1; the cell key wraps to 0.1 and
	// the Cell-Key lookup is keyed on (count=2, 0.1).
	var r Response
	r.Update(0.3)
	r.Update(0.8)

	ptab := NewPTable()
	ptab.Insert(PTableRecord{I: 2, V: 7, PLb: 0.0, PUb: 0.2})
	ptab.Insert(PTableRecord{I: 2, V: -3, PLb: 0.2, PUb: 1.0})

	r.Finalise(ptab, NoiseParams{LaplaceMu: 0, LaplaceB: 2.0, GeometricE: 0.5}, NewEngine(42))
	assert.Equal(t, int64(7), r.Record().CK)
}
