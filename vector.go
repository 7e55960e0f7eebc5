package duckvec

import (
	"sync/atomic"
	"unsafe"
)

// chunkState carries the generation stamp shared by a chunk and every view
// derived from it. Releasing the chunk bumps the generation, so any view
// that escaped its scope fails loudly on the next access instead of
// dereferencing freed engine memory.
type chunkState struct {
	gen atomic.Uint64
}

func (s *chunkState) invalidate() {
	s.gen.Add(1)
}

// Vector is a read-only view of one column's data within one chunk: the raw
// data pointer, the validity bitmap (nil means all rows valid), the row
// count and the column type. A Vector never owns memory; it is valid only
// while the chunk that produced it is alive, and every access checks the
// chunk's generation stamp.
type Vector struct {
	data     unsafe.Pointer
	validity unsafe.Pointer // packed uint64 bitmap
	length   uint64
	typ      *ColumnType

	handle vectorHandle // 0 for synthetic vectors
	owner  *chunkState
	stamp  uint64

	// lazily resolved child views: [element] for lists, one per member for
	// structs. Synthetic vectors carry them pre-populated.
	children []*Vector
}

// newNativeVector wraps an engine vector handle.
func newNativeVector(handle vectorHandle, length uint64, typ *ColumnType, owner *chunkState, stamp uint64) *Vector {
	return &Vector{
		data:     lib.vectorData(handle),
		validity: lib.vectorValidity(handle),
		length:   length,
		typ:      typ,
		handle:   handle,
		owner:    owner,
		stamp:    stamp,
	}
}

// Type returns the column's materialized type description.
func (v *Vector) Type() *ColumnType { return v.typ }

// Kind returns the column's value kind.
func (v *Vector) Kind() Kind { return v.typ.kind }

// RowCount returns the number of rows in the view.
func (v *Vector) RowCount() uint64 { return v.length }

// live fails when the owning chunk has been released.
func (v *Vector) live() error {
	if v.owner != nil && v.owner.gen.Load() != v.stamp {
		return errDisposed("vector view (owning chunk released)")
	}
	return nil
}

// bitValid reads bit i of the validity bitmap without bounds or liveness
// checks; callers have already performed both.
func (v *Vector) bitValid(i uint64) bool {
	if v.validity == nil {
		return true
	}
	word := *(*uint64)(unsafe.Add(v.validity, uintptr(i/64)*8))
	return word&(1<<(i%64)) != 0
}

// RowIsValid reports whether row i holds a non-null value. An absent
// bitmap means every row is valid.
func (v *Vector) RowIsValid(i uint64) (bool, error) {
	if err := v.live(); err != nil {
		return false, err
	}
	if i >= v.length {
		return false, errOutOfRange("row", i, v.length)
	}
	return v.bitValid(i), nil
}

// rawRead interprets row i's bytes as T. This is the unsafe escape hatch
// used by converter internals; T's size is checked against the column's
// cell width where the width is fixed, so a converter applied to a column
// of the wrong physical layout fails instead of misreading.
func rawRead[T any](v *Vector, i uint64) (T, error) {
	var zero T
	if err := v.live(); err != nil {
		return zero, err
	}
	if i >= v.length {
		return zero, errOutOfRange("row", i, v.length)
	}
	if w := v.typ.storageWidth(); w != 0 && w != unsafe.Sizeof(zero) {
		return zero, errorf(ErrInvalidStateKind,
			"%d-byte read of a %s column with %d-byte cells", unsafe.Sizeof(zero), v.Kind(), w)
	}
	return *(*T)(unsafe.Add(v.data, uintptr(i)*unsafe.Sizeof(zero))), nil
}

// listEntry is the engine's per-row cell for LIST columns.
type listEntry struct {
	offset uint64
	length uint64
}

// stringCell mirrors duckdb_string_t: strings up to 12 bytes are inlined
// after the length field, longer ones live behind an out-of-band pointer.
const stringInlineLimit = 12

func (v *Vector) stringBytes(i uint64) []byte {
	cell := unsafe.Add(v.data, uintptr(i)*16)
	length := *(*uint32)(cell)
	if length == 0 {
		return nil
	}
	if length <= stringInlineLimit {
		return unsafe.Slice((*byte)(unsafe.Add(cell, 4)), length)
	}
	p := *(*unsafe.Pointer)(unsafe.Add(cell, 8))
	return unsafe.Slice((*byte)(p), length)
}

// stringAt copies row i's VARCHAR cell into a Go string.
func (v *Vector) stringAt(i uint64) string {
	return string(v.stringBytes(i))
}

// blobAt copies row i's BLOB cell into Go memory. Empty cells yield an
// empty, non-nil slice.
func (v *Vector) blobAt(i uint64) []byte {
	b := v.stringBytes(i)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// listChild returns the view over the list column's element vector,
// resolving it from the engine on first use. The child spans the
// concatenated elements of every row in the chunk; individual rows address
// into it through their (offset, length) entries.
func (v *Vector) listChild() (*Vector, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	if v.children != nil {
		return v.children[0], nil
	}
	if v.handle == 0 {
		return nil, errorf(ErrInvalidStateKind, "list vector has no child view")
	}
	child := newNativeVector(lib.listChild(v.handle), lib.listSize(v.handle),
		v.typ.elem, v.owner, v.stamp)
	v.children = []*Vector{child}
	return child, nil
}

// structChild returns the view over struct member idx, resolving members
// from the engine on first use. Member vectors share the parent's row count.
func (v *Vector) structChild(idx int) (*Vector, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	if v.children == nil {
		if v.handle == 0 {
			return nil, errorf(ErrInvalidStateKind, "struct vector has no child views")
		}
		v.children = make([]*Vector, len(v.typ.fields))
		for i := range v.typ.fields {
			v.children[i] = newNativeVector(lib.structChild(v.handle, uint64(i)),
				v.length, v.typ.fields[i].Type, v.owner, v.stamp)
		}
	}
	if idx < 0 || idx >= len(v.children) {
		return nil, errOutOfRange("struct member", uint64(idx), uint64(len(v.children)))
	}
	return v.children[idx], nil
}
