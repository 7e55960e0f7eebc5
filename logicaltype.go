package duckvec

// ColumnType is a materialized description of a column's logical type:
// the value kind plus whatever metadata the kind carries (decimal width and
// scale, enum dictionary, list element type, struct members). It is built
// once per column from the engine's logical type handle, which is destroyed
// immediately afterwards; everything the converters need lives here.
type ColumnType struct {
	kind Kind

	// decimal
	decWidth   uint8
	decScale   uint8
	decStorage Kind // physical storage of the unscaled integer

	// enum
	enumStorage Kind     // physical storage of the code
	enumNames   []string // code -> display name, engine order

	// nested
	elem   *ColumnType   // list element type
	fields []StructField // struct members, engine child order
}

// StructField is one member of a struct column.
type StructField struct {
	Name string
	Type *ColumnType
}

// Kind returns the column's value kind.
func (t *ColumnType) Kind() Kind { return t.kind }

// DecimalWidth returns the precision of a DECIMAL column.
func (t *ColumnType) DecimalWidth() uint8 { return t.decWidth }

// DecimalScale returns the scale of a DECIMAL column.
func (t *ColumnType) DecimalScale() uint8 { return t.decScale }

// EnumNames returns the enum dictionary in code order.
func (t *ColumnType) EnumNames() []string {
	out := make([]string, len(t.enumNames))
	copy(out, t.enumNames)
	return out
}

// Elem returns the element type of a LIST column, or nil.
func (t *ColumnType) Elem() *ColumnType { return t.elem }

// Fields returns the members of a STRUCT column in engine order.
func (t *ColumnType) Fields() []StructField {
	out := make([]StructField, len(t.fields))
	copy(out, t.fields)
	return out
}

// storageWidth returns the byte width of one cell as laid out in the
// vector's data array, resolving decimal and enum physical storage.
func (t *ColumnType) storageWidth() uintptr {
	switch t.kind {
	case KindDecimal:
		return t.decStorage.width()
	case KindEnum:
		return t.enumStorage.width()
	default:
		return t.kind.width()
	}
}

// typeFromLogical materializes a ColumnType from a native logical type
// handle. The handle remains owned by the caller; child handles created
// during recursion are destroyed here on all paths.
func typeFromLogical(lt logicalTypeHandle) *ColumnType {
	t := &ColumnType{kind: Kind(lib.typeID(lt))}

	switch t.kind {
	case KindDecimal:
		t.decWidth = lib.decimalWidth(lt)
		t.decScale = lib.decimalScale(lt)
		t.decStorage = Kind(lib.decimalInternalType(lt))

	case KindEnum:
		t.enumStorage = Kind(lib.enumInternalType(lt))
		n := lib.enumDictSize(lt)
		t.enumNames = make([]string, n)
		for i := uint32(0); i < n; i++ {
			t.enumNames[i] = takeString(lib.enumDictValue(lt, uint64(i)))
		}

	case KindList, KindMap:
		child := lib.listChildType(lt)
		t.elem = typeFromLogical(child)
		lib.destroyLogicalType(&child)

	case KindStruct, KindUnion:
		n := lib.structChildCount(lt)
		t.fields = make([]StructField, n)
		for i := uint64(0); i < n; i++ {
			name := takeString(lib.structChildName(lt, i))
			child := lib.structChildType(lt, i)
			t.fields[i] = StructField{Name: name, Type: typeFromLogical(child)}
			lib.destroyLogicalType(&child)
		}
	}

	return t
}

// scalarType builds a bare ColumnType for kinds that carry no metadata.
// Used by tests and by bind-time descriptors.
func scalarType(k Kind) *ColumnType {
	return &ColumnType{kind: k}
}
