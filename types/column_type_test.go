package types

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestIsValidColumnType(t *testing.T) {
	assert.True(t, IsValidColumnType(ColumnTypeInteger))
	assert.True(t, IsValidColumnType(ColumnTypeNumeric))
	assert.False(t, IsValidColumnType("tensor"))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, ColumnTypeSmallInt.IsNumeric())
	assert.True(t, ColumnTypeDouble.IsNumeric())
	assert.False(t, ColumnTypeText.IsNumeric())
	assert.False(t, ColumnTypeTimestamp.IsNumeric())
}

func TestOID(t *testing.T) {
	assert.Equal(t, uint32(pgtype.Int8OID), ColumnTypeBigInt.OID())
	assert.Equal(t, uint32(pgtype.NumericOID), ColumnTypeNumeric.OID())
	assert.Equal(t, uint32(pgtype.TextOID), ColumnTypeText.OID())
	assert.Equal(t, uint32(pgtype.BoolOID), ColumnTypeBoolean.OID())
}

func TestColumnTypeFromName(t *testing.T) {
	typ, ok := ColumnTypeFromName("int4")
	assert.True(t, ok)
	assert.Equal(t, ColumnTypeInteger, typ)

	typ, ok = ColumnTypeFromName("double precision")
	assert.True(t, ok)
	assert.Equal(t, ColumnTypeDouble, typ)

	_, ok = ColumnTypeFromName("tensor")
	assert.False(t, ok)
}
