package confly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() Schema {
	return Schema{
		{Name: "rowid", Type: Long},
		{Name: "age", Type: Long, Cube: true},
		{Name: "region", Type: String, Cube: false},
	}
}

func TestReadTuple_ParsesEachColumnByType(t *testing.T) {
	schema := testSchema()
	tup, empty, err := ReadTuple(schema, "7;34;north", ';')
	assert.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, LongValue(7), tup[0])
	assert.Equal(t, LongValue(34), tup[1])
	assert.Equal(t, StringValue("north"), tup[2])
}

func TestReadTuple_DetectsEmptyRow(t *testing.T) {
	schema := testSchema()
	_, empty, err := ReadTuple(schema, "0;0;", ';')
	assert.NoError(t, err)
	assert.True(t, empty)
}

func TestReadTuple_RejectsWrongFieldCount(t *testing.T) {
	schema := testSchema()
	_, _, err := ReadTuple(schema, "1;2", ';')
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWriteTuple_NoLeadingOrTrailingSeparator(t *testing.T) {
	tup := Tuple{LongValue(1), LongValue(34), StringValue("north")}
	var sb strings.Builder
	assert.NoError(t, WriteTuple(&sb, tup, ';'))
	assert.Equal(t, "1;34;north", sb.String())
}

func TestApplyMask_OverwritesOnlyMaskedColumns(t *testing.T) {
	schema := testSchema()
	tup := Tuple{LongValue(1), LongValue(34), StringValue("north")}

	// bit 0 -> column 1 (age)
	masked := ApplyMask(schema, tup, 0b01)
	assert.Equal(t, Long.TotalCode(), masked[1])
	assert.Equal(t, StringValue("north"), masked[2])

	// original untouched
	assert.Equal(t, LongValue(34), tup[1])
}

func TestTotalCodeTuple_EveryColumnIsItsTotalCode(t *testing.T) {
	schema := testSchema()
	tup := TotalCodeTuple(schema)
	assert.Equal(t, Long.TotalCode(), tup[1])
	assert.Equal(t, String.TotalCode(), tup[2])
}

func TestMetadata_SortedValuesAreOrderedAndDeduplicated(t *testing.T) {
	schema := testSchema()
	meta := NewMetadata(schema)
	meta.Accumulate(Tuple{LongValue(1), LongValue(50), StringValue("north")})
	meta.Accumulate(Tuple{LongValue(2), LongValue(20), StringValue("south")})
	meta.Accumulate(Tuple{LongValue(3), LongValue(20), StringValue("north")})

	ages := meta.SortedValues(1)
	assert.Equal(t, []Value{LongValue(20), LongValue(50)}, ages)

	regions := meta.SortedValues(2)
	assert.Equal(t, []Value{StringValue("north"), StringValue("south")}, regions)
}

func TestValidateNoTotalCodeCollision_RejectsReservedValue(t *testing.T) {
	schema := testSchema()
	tup := Tuple{LongValue(1), Long.TotalCode(), StringValue("north")}
	err := validateNoTotalCodeCollision(schema, tup)
	assert.ErrorIs(t, err, ErrTotalCodeCollision)
}
