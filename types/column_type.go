package types

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ColumnType represents the data type of a plan attribute or table column
type ColumnType string

const (
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeSmallInt  ColumnType = "smallint"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeBigInt    ColumnType = "bigint"
	ColumnTypeReal      ColumnType = "real"
	ColumnTypeDouble    ColumnType = "double"
	ColumnTypeNumeric   ColumnType = "numeric"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeVarchar   ColumnType = "varchar"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeUUID      ColumnType = "uuid"
)

// IsValidColumnType checks if a column type is valid
func IsValidColumnType(typ ColumnType) bool {
	switch typ {
	case ColumnTypeBoolean, ColumnTypeSmallInt, ColumnTypeInteger,
		ColumnTypeBigInt, ColumnTypeReal, ColumnTypeDouble,
		ColumnTypeNumeric, ColumnTypeText, ColumnTypeVarchar,
		ColumnTypeDate, ColumnTypeTimestamp, ColumnTypeUUID:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of this type can feed numeric aggregates
func (t ColumnType) IsNumeric() bool {
	switch t {
	case ColumnTypeSmallInt, ColumnTypeInteger, ColumnTypeBigInt,
		ColumnTypeReal, ColumnTypeDouble, ColumnTypeNumeric:
		return true
	default:
		return false
	}
}

// OID returns the PostgreSQL type OID for this column type.
// Used when surfacing plan schemas over the HTTP API so clients see the
// same type identifiers the wire protocol would carry.
func (t ColumnType) OID() uint32 {
	switch t {
	case ColumnTypeBoolean:
		return pgtype.BoolOID
	case ColumnTypeSmallInt:
		return pgtype.Int2OID
	case ColumnTypeInteger:
		return pgtype.Int4OID
	case ColumnTypeBigInt:
		return pgtype.Int8OID
	case ColumnTypeReal:
		return pgtype.Float4OID
	case ColumnTypeDouble:
		return pgtype.Float8OID
	case ColumnTypeNumeric:
		return pgtype.NumericOID
	case ColumnTypeVarchar:
		return pgtype.VarcharOID
	case ColumnTypeDate:
		return pgtype.DateOID
	case ColumnTypeTimestamp:
		return pgtype.TimestampOID
	case ColumnTypeUUID:
		return pgtype.UUIDOID
	default:
		return pgtype.TextOID
	}
}

// ColumnTypeFromName parses a SQL type name into a ColumnType
func ColumnTypeFromName(name string) (ColumnType, bool) {
	switch name {
	case "bool", "boolean":
		return ColumnTypeBoolean, true
	case "int2", "smallint":
		return ColumnTypeSmallInt, true
	case "int", "int4", "integer":
		return ColumnTypeInteger, true
	case "int8", "bigint":
		return ColumnTypeBigInt, true
	case "float4", "real":
		return ColumnTypeReal, true
	case "float8", "double", "double precision":
		return ColumnTypeDouble, true
	case "numeric", "decimal":
		return ColumnTypeNumeric, true
	case "text", "string":
		return ColumnTypeText, true
	case "varchar", "character varying":
		return ColumnTypeVarchar, true
	case "date":
		return ColumnTypeDate, true
	case "timestamp":
		return ColumnTypeTimestamp, true
	case "uuid":
		return ColumnTypeUUID, true
	default:
		return "", false
	}
}
