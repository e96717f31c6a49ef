package confly

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraversingStore_DisabledWhenZeroSlots(t *testing.T) {
	assert.True(t, NewTraversingStore(0, 0).Disabled())
	assert.False(t, NewTraversingStore(3, 0).Disabled())
}

func TestTraversingStore_InsertIsIndexedByCubeID(t *testing.T) {
	trav := NewTraversingStore(3, 0)
	coord := Coord{LongValue(5), StringValue("north")}
	trav.Insert(0, coord, ResponseRecord{Count: 1})
	trav.Insert(2, coord, ResponseRecord{Count: 7})

	tr := trav.byCoord[coord.key()]
	assert.Equal(t, int64(1), tr.recs[0].Count)
	assert.Equal(t, int64(0), tr.recs[1].Count)
	assert.Equal(t, int64(7), tr.recs[2].Count)
}

func TestTraversingStore_InsertOffsetsByRunBegin(t *testing.T) {
	// Cube ids of a run starting at begin=100 land in slots 0..n-1.
	trav := NewTraversingStore(2, 100)
	coord := Coord{LongValue(5)}
	trav.Insert(100, coord, ResponseRecord{Count: 3})
	trav.Insert(101, coord, ResponseRecord{Count: 4})

	tr := trav.byCoord[coord.key()]
	assert.Equal(t, int64(3), tr.recs[0].Count)
	assert.Equal(t, int64(4), tr.recs[1].Count)
}

func TestTraversingStore_FlushWritesOneFilePerCoordinate(t *testing.T) {
	dir := t.TempDir()
	trav := NewTraversingStore(2, 0)
	trav.Insert(0, Coord{LongValue(5), StringValue("north")}, ResponseRecord{Count: 3, CK: 1})
	trav.Insert(1, Coord{LongValue(5), StringValue("north")}, ResponseRecord{Count: 4, CK: 2})

	assert.NoError(t, trav.Flush(dir))

	want := filepath.Join(dir, "trv_5_north.csv")
	data, err := os.ReadFile(want)
	assert.NoError(t, err)
	assert.Equal(t, "3;1;0;0;4;3;3\n4;2;0;0;6;4;4\n", string(data))
}

func TestCoord_KeyJoinsWithUnambiguousSeparator(t *testing.T) {
	a := Coord{LongValue(1), StringValue("ab")}
	b := Coord{LongValue(1), StringValue("a"), StringValue("b")}
	// Without a separator these would collide; with it they must not.
	assert.NotEqual(t, a.key(), b.key())
}
