package duckvec

// Kind is the engine's runtime tag for a column's logical type. The values
// mirror the duckdb_type enumeration of the C API and must not be renumbered.
type Kind uint32

const (
	KindInvalid     Kind = 0
	KindBoolean     Kind = 1
	KindTinyInt     Kind = 2
	KindSmallInt    Kind = 3
	KindInteger     Kind = 4
	KindBigInt      Kind = 5
	KindUTinyInt    Kind = 6
	KindUSmallInt   Kind = 7
	KindUInteger    Kind = 8
	KindUBigInt     Kind = 9
	KindFloat       Kind = 10
	KindDouble      Kind = 11
	KindTimestamp   Kind = 12
	KindDate        Kind = 13
	KindTime        Kind = 14
	KindInterval    Kind = 15
	KindHugeInt     Kind = 16
	KindUHugeInt    Kind = 17
	KindVarchar     Kind = 18
	KindBlob        Kind = 19
	KindDecimal     Kind = 20
	KindTimestampS  Kind = 21
	KindTimestampMS Kind = 22
	KindTimestampNS Kind = 23
	KindEnum        Kind = 24
	KindList        Kind = 25
	KindStruct      Kind = 26
	KindMap         Kind = 27
	KindArray       Kind = 28
	KindUUID        Kind = 29
	KindUnion       Kind = 30
	KindBit         Kind = 31
	KindTimeTZ      Kind = 32
	KindTimestampTZ Kind = 33
	KindAny         Kind = 34
	KindVarInt      Kind = 35
	KindSQLNull     Kind = 36
)

var kindNames = map[Kind]string{
	KindInvalid:     "INVALID",
	KindBoolean:     "BOOLEAN",
	KindTinyInt:     "TINYINT",
	KindSmallInt:    "SMALLINT",
	KindInteger:     "INTEGER",
	KindBigInt:      "BIGINT",
	KindUTinyInt:    "UTINYINT",
	KindUSmallInt:   "USMALLINT",
	KindUInteger:    "UINTEGER",
	KindUBigInt:     "UBIGINT",
	KindFloat:       "FLOAT",
	KindDouble:      "DOUBLE",
	KindTimestamp:   "TIMESTAMP",
	KindDate:        "DATE",
	KindTime:        "TIME",
	KindInterval:    "INTERVAL",
	KindHugeInt:     "HUGEINT",
	KindUHugeInt:    "UHUGEINT",
	KindVarchar:     "VARCHAR",
	KindBlob:        "BLOB",
	KindDecimal:     "DECIMAL",
	KindTimestampS:  "TIMESTAMP_S",
	KindTimestampMS: "TIMESTAMP_MS",
	KindTimestampNS: "TIMESTAMP_NS",
	KindEnum:        "ENUM",
	KindList:        "LIST",
	KindStruct:      "STRUCT",
	KindMap:         "MAP",
	KindArray:       "ARRAY",
	KindUUID:        "UUID",
	KindUnion:       "UNION",
	KindBit:         "BIT",
	KindTimeTZ:      "TIME_TZ",
	KindTimestampTZ: "TIMESTAMP_TZ",
	KindAny:         "ANY",
	KindVarInt:      "VARINT",
	KindSQLNull:     "SQLNULL",
}

// String returns the engine's SQL name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// width returns the fixed element width in bytes for kinds stored as
// contiguous fixed-width cells, or 0 for variable-width and nested kinds.
func (k Kind) width() uintptr {
	switch k {
	case KindBoolean, KindTinyInt, KindUTinyInt:
		return 1
	case KindSmallInt, KindUSmallInt:
		return 2
	case KindInteger, KindUInteger, KindFloat, KindDate:
		return 4
	case KindBigInt, KindUBigInt, KindDouble, KindTime,
		KindTimestamp, KindTimestampS, KindTimestampMS, KindTimestampNS:
		return 8
	case KindHugeInt, KindUHugeInt, KindUUID, KindInterval, KindList,
		KindMap, KindVarchar, KindBlob:
		// hugeint/uuid: two 8-byte halves; interval: months+days+micros;
		// list/map: (offset, length) pair; varchar/blob: duckdb_string_t.
		return 16
	default:
		return 0
	}
}

// integer promotion rank tables. Promotion is offered only between integer
// kinds of identical signedness, from narrower to equal-or-wider; everything
// else is rejected at resolve time.

func signedRank(k Kind) (int, bool) {
	switch k {
	case KindTinyInt:
		return 1, true
	case KindSmallInt:
		return 2, true
	case KindInteger:
		return 4, true
	case KindBigInt:
		return 8, true
	}
	return 0, false
}

func unsignedRank(k Kind) (int, bool) {
	switch k {
	case KindUTinyInt:
		return 1, true
	case KindUSmallInt:
		return 2, true
	case KindUInteger:
		return 4, true
	case KindUBigInt:
		return 8, true
	}
	return 0, false
}
