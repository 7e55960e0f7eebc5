package duckvec

import (
	"fmt"
)

// resolveSlice binds a list decoder whose element converter is resolved once
// against the element type. The child view is re-derived from whichever
// vector the converter is applied to, so a converter resolved on one chunk
// decodes the matching column of every later chunk; a vector whose shape
// differs from the resolve-time one is rejected rather than misread.
func resolveSlice[E any](v *Vector) any {
	if v.Kind() != KindList {
		return nil
	}
	child, err := v.listChild()
	if err != nil {
		return nil
	}
	elem, err := ResolveConverter[E](child)
	if err != nil {
		return nil
	}
	elemKind := child.Kind()
	return checkedConv(func(v *Vector, i uint64) ([]E, error) {
		child, err := boundListChild(v, elemKind)
		if err != nil {
			return nil, err
		}
		entry, err := rawRead[listEntry](v, i)
		if err != nil {
			return nil, err
		}
		out := make([]E, entry.length)
		for j := uint64(0); j < entry.length; j++ {
			out[j], err = elem(child, entry.offset+j)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// boundListChild re-derives the element view of the vector a resolved list
// converter is being applied to, checking its shape against the resolve-time
// element kind.
func boundListChild(v *Vector, elemKind Kind) (*Vector, error) {
	if v.Kind() != KindList {
		return nil, errorf(ErrInvalidStateKind,
			"list converter applied to a %s column", v.Kind())
	}
	child, err := v.listChild()
	if err != nil {
		return nil, err
	}
	if child.Kind() != elemKind {
		return nil, errorf(ErrInvalidStateKind,
			"list converter for %s elements applied to %s elements", elemKind, child.Kind())
	}
	return child, nil
}

// resolveStructMap binds a struct decoder producing one map per row, member
// name to boxed value. Resolve time only validates that the members are
// reachable; each call reads the members of the vector it is applied to.
func resolveStructMap(v *Vector) any {
	for i := range v.typ.fields {
		if _, err := v.structChild(i); err != nil {
			return nil
		}
	}
	return checkedConv(func(v *Vector, i uint64) (map[string]any, error) {
		if v.Kind() != KindStruct {
			return nil, errorf(ErrInvalidStateKind,
				"struct converter applied to a %s column", v.Kind())
		}
		return structAnyAt(v, i)
	})
}

// resolveMap binds a MAP decoder. The engine stores a map column as a list
// of (key, value) structs; each row's window becomes one Go map with boxed
// keys and values read from the applied vector's own children.
func resolveMap(v *Vector) any {
	child, err := v.listChild()
	if err != nil || len(child.typ.fields) != 2 {
		return nil
	}
	if _, err := child.structChild(0); err != nil {
		return nil
	}
	if _, err := child.structChild(1); err != nil {
		return nil
	}
	return checkedConv(func(v *Vector, i uint64) (map[any]any, error) {
		if v.Kind() != KindMap {
			return nil, errorf(ErrInvalidStateKind,
				"map converter applied to a %s column", v.Kind())
		}
		return mapAnyAt(v, i)
	})
}

// ResolveEnum binds an ENUM decoder that maps dictionary labels to caller
// values. Every label is looked up once at resolve time; a row whose label
// has no registered member fails at access with an invalid-state error, so
// a partial member map is usable as long as unmapped labels never occur.
func ResolveEnum[T any](v *Vector, members map[string]T) (Converter[T], error) {
	if v.Kind() != KindEnum {
		var zero T
		return nil, errUnsupported(v.Kind(), fmt.Sprintf("enum member type %T", zero))
	}
	type slot struct {
		val T
		ok  bool
	}
	table := make([]slot, len(v.typ.enumNames))
	for code, name := range v.typ.enumNames {
		if val, ok := members[name]; ok {
			table[code] = slot{val: val, ok: true}
		}
	}
	dict := v.typ
	return func(v *Vector, i uint64) (T, error) {
		var zero T
		if err := requireValid(v, i); err != nil {
			return zero, err
		}
		if v.typ != dict {
			return zero, errorf(ErrInvalidStateKind,
				"enum converter applied to a column with a different dictionary")
		}
		code, err := enumCode(v, i)
		if err != nil {
			return zero, err
		}
		if code >= uint64(len(table)) {
			return zero, errorf(ErrInvalidStateKind,
				"enum code %d outside dictionary of %d entries", code, len(table))
		}
		if !table[code].ok {
			return zero, errorf(ErrInvalidStateKind,
				"enum label %q has no registered member", v.typ.enumNames[code])
		}
		return table[code].val, nil
	}, nil
}

// anyAt boxes one cell into its natural Go representation. NULL boxes as a
// nil interface; kinds the package cannot decode fail with an unsupported
// error rather than a partial value.
func anyAt(v *Vector, i uint64) (any, error) {
	valid, err := v.RowIsValid(i)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}

	switch v.Kind() {
	case KindBoolean:
		raw, err := rawRead[uint8](v, i)
		return raw != 0, err
	case KindTinyInt:
		return rawRead[int8](v, i)
	case KindSmallInt:
		return rawRead[int16](v, i)
	case KindInteger:
		return rawRead[int32](v, i)
	case KindBigInt:
		return rawRead[int64](v, i)
	case KindUTinyInt:
		return rawRead[uint8](v, i)
	case KindUSmallInt:
		return rawRead[uint16](v, i)
	case KindUInteger:
		return rawRead[uint32](v, i)
	case KindUBigInt:
		return rawRead[uint64](v, i)
	case KindFloat:
		return rawRead[float32](v, i)
	case KindDouble:
		return rawRead[float64](v, i)
	case KindVarchar:
		return v.stringAt(i), nil
	case KindBlob:
		return v.blobAt(i), nil
	case KindDate:
		raw, err := rawRead[int32](v, i)
		if err != nil {
			return nil, err
		}
		return TimeFromDate(raw), nil
	case KindTimestamp, KindTimestampTZ, KindTimestampS, KindTimestampMS, KindTimestampNS:
		raw, err := rawRead[int64](v, i)
		if err != nil {
			return nil, err
		}
		return timestampToTime(v.Kind(), raw), nil
	case KindTime:
		raw, err := rawRead[int64](v, i)
		if err != nil {
			return nil, err
		}
		return DurationFromTimeCell(raw), nil
	case KindInterval:
		return rawRead[Interval](v, i)
	case KindHugeInt, KindUHugeInt:
		return bigIntAt(v, i)
	case KindDecimal:
		return decimalAt(v, i)
	case KindEnum:
		return enumNameAt(v, i)
	case KindUUID:
		raw, err := rawRead[hugeint](v, i)
		if err != nil {
			return nil, err
		}
		return uuidFromHugeint(raw), nil
	case KindList:
		return listAnyAt(v, i)
	case KindStruct:
		return structAnyAt(v, i)
	case KindMap:
		return mapAnyAt(v, i)
	case KindSQLNull:
		return nil, nil
	default:
		return nil, errUnsupported(v.Kind(), "any")
	}
}

func listAnyAt(v *Vector, i uint64) ([]any, error) {
	child, err := v.listChild()
	if err != nil {
		return nil, err
	}
	entry, err := rawRead[listEntry](v, i)
	if err != nil {
		return nil, err
	}
	out := make([]any, entry.length)
	for j := uint64(0); j < entry.length; j++ {
		out[j], err = anyAt(child, entry.offset+j)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func structAnyAt(v *Vector, i uint64) (map[string]any, error) {
	out := make(map[string]any, len(v.typ.fields))
	for m := range v.typ.fields {
		child, err := v.structChild(m)
		if err != nil {
			return nil, err
		}
		val, err := anyAt(child, i)
		if err != nil {
			return nil, err
		}
		out[v.typ.fields[m].Name] = val
	}
	return out, nil
}

func mapAnyAt(v *Vector, i uint64) (map[any]any, error) {
	child, err := v.listChild()
	if err != nil {
		return nil, err
	}
	if len(child.typ.fields) != 2 {
		return nil, errorf(ErrInvalidStateKind, "map column child is not a key/value struct")
	}
	keys, err := child.structChild(0)
	if err != nil {
		return nil, err
	}
	vals, err := child.structChild(1)
	if err != nil {
		return nil, err
	}
	entry, err := rawRead[listEntry](v, i)
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, entry.length)
	for j := entry.offset; j < entry.offset+entry.length; j++ {
		k, err := anyAt(keys, j)
		if err != nil {
			return nil, err
		}
		val, err := anyAt(vals, j)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}
