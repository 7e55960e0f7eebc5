package duckvec

import (
	"unsafe"
)

// Test vectors are built over plain Go memory: the data pointer and
// validity bitmap point into byte slices held by the testVec, so the
// converter and view paths run without a native engine. Handles stay zero;
// nested children are pre-populated the way the engine would resolve them.

type testVec struct {
	vec *Vector
	// refs pins every backing allocation the raw cells point into.
	refs []any
}

func (tv *testVec) pin(ref any) { tv.refs = append(tv.refs, ref) }

// validityBitmap packs a nulls mask (true = NULL) into engine bitmap words,
// where a set bit means valid. A nil mask yields no bitmap at all.
func validityBitmap(length int, nulls []bool) []uint64 {
	if nulls == nil {
		return nil
	}
	words := make([]uint64, (length+63)/64)
	for i := 0; i < length; i++ {
		if !nulls[i] {
			words[i/64] |= 1 << (i % 64)
		}
	}
	return words
}

func newTestVec(typ *ColumnType, cells []byte, length int, nulls []bool) *testVec {
	tv := &testVec{}
	v := &Vector{
		length: uint64(length),
		typ:    typ,
	}
	if len(cells) > 0 {
		v.data = unsafe.Pointer(&cells[0])
		tv.pin(cells)
	}
	if bitmap := validityBitmap(length, nulls); bitmap != nil {
		v.validity = unsafe.Pointer(&bitmap[0])
		tv.pin(bitmap)
	}
	tv.vec = v
	return tv
}

// fixedVec lays out fixed-width cells of type E for kind k.
func fixedVec[E any](k Kind, values []E, nulls []bool) *testVec {
	return fixedVecTyped(scalarType(k), values, nulls)
}

func fixedVecTyped[E any](typ *ColumnType, values []E, nulls []bool) *testVec {
	var zero E
	width := int(unsafe.Sizeof(zero))
	cells := make([]byte, len(values)*width)
	for i, val := range values {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&val)), width)
		copy(cells[i*width:], src)
	}
	return newTestVec(typ, cells, len(values), nulls)
}

// stringVec lays out duckdb_string_t cells: short values inline, long ones
// behind a pinned out-of-band allocation.
func stringVec(k Kind, values []string, nulls []bool) *testVec {
	cells := make([]byte, len(values)*16)
	tv := &testVec{}
	for i, val := range values {
		cell := cells[i*16:]
		*(*uint32)(unsafe.Pointer(&cell[0])) = uint32(len(val))
		if len(val) <= stringInlineLimit {
			copy(cell[4:], val)
			continue
		}
		backing := []byte(val)
		tv.pin(backing)
		*(*unsafe.Pointer)(unsafe.Pointer(&cell[8])) = unsafe.Pointer(&backing[0])
	}
	v := &Vector{
		data:   unsafe.Pointer(&cells[0]),
		length: uint64(len(values)),
		typ:    scalarType(k),
	}
	tv.pin(cells)
	if bitmap := validityBitmap(len(values), nulls); bitmap != nil {
		v.validity = unsafe.Pointer(&bitmap[0])
		tv.pin(bitmap)
	}
	tv.vec = v
	return tv
}

// listVec lays out (offset, length) entries over a pre-built child vector.
func listVec(child *testVec, entries []listEntry, nulls []bool) *testVec {
	tv := fixedVec(KindList, entries, nulls)
	tv.vec.typ = &ColumnType{kind: KindList, elem: child.vec.typ}
	tv.vec.children = []*Vector{child.vec}
	tv.pin(child)
	return tv
}

// structVec builds a struct vector over pre-built member vectors sharing
// the given row count.
func structVec(length int, nulls []bool, names []string, members ...*testVec) *testVec {
	fields := make([]StructField, len(members))
	children := make([]*Vector, len(members))
	for i, m := range members {
		fields[i] = StructField{Name: names[i], Type: m.vec.typ}
		children[i] = m.vec
	}
	tv := newTestVec(&ColumnType{kind: KindStruct, fields: fields}, nil, length, nulls)
	tv.vec.children = children
	for _, m := range members {
		tv.pin(m)
	}
	return tv
}

// enumVec lays out uint8 dictionary codes with the given label dictionary.
func enumVec(names []string, codes []uint8, nulls []bool) *testVec {
	typ := &ColumnType{kind: KindEnum, enumStorage: KindUTinyInt, enumNames: names}
	return fixedVecTyped(typ, codes, nulls)
}

// decimalVec lays out DECIMAL cells with int64 physical storage.
func decimalVec(width, scale uint8, unscaled []int64, nulls []bool) *testVec {
	typ := &ColumnType{
		kind:       KindDecimal,
		decWidth:   width,
		decScale:   scale,
		decStorage: KindBigInt,
	}
	return fixedVecTyped(typ, unscaled, nulls)
}
