package duckvec

import (
	"fmt"
	"math/big"
	"time"
	"unsafe"

	"github.com/shopspring/decimal"
)

// Converter decodes one cell of a vector into T. A converter is resolved
// once per (column type, target type) pair and then applied per row; all
// type compatibility checks happen at resolve time, so the per-row path is
// a validity check plus a raw read.
type Converter[T any] func(v *Vector, row uint64) (T, error)

// ResolveConverter binds a decoder from v's column type to T.
//
// Resolution rules, in priority order:
//   - the target matching the column's native representation decodes
//     directly;
//   - integer targets additionally accept any narrower integer column of
//     the same signedness, and float64 accepts FLOAT;
//   - structured kinds decode through their metadata (DECIMAL through its
//     width and scale, ENUM through its dictionary, temporal kinds to
//     time.Time, LIST and STRUCT recursively);
//   - a pointer target *E decodes NULL as nil and everything else as E;
//   - the any target accepts every kind and boxes NULL as nil.
//
// A pair with no rule fails here with an unsupported-conversion error
// naming both sides; resolved converters never fail on type grounds.
//
// Plain (non-pointer, non-any) targets treat NULL rows as an invalid-state
// error: a missing value has no honest representation in a plain Go value.
func ResolveConverter[T any](v *Vector) (Converter[T], error) {
	var zero T
	fn := resolveTyped(v, any(zero))
	if fn == nil {
		return nil, errUnsupported(v.Kind(), fmt.Sprintf("%T", zero))
	}
	typed, ok := fn.(func(*Vector, uint64) (T, error))
	if !ok {
		return nil, errUnsupported(v.Kind(), fmt.Sprintf("%T", zero))
	}
	return Converter[T](typed), nil
}

// GetValue resolves a converter and applies it to a single cell. For bulk
// access resolve once and reuse the converter.
func GetValue[T any](v *Vector, row uint64) (T, error) {
	conv, err := ResolveConverter[T](v)
	if err != nil {
		var zero T
		return zero, err
	}
	return conv(v, row)
}

// requireValid rejects NULL rows for plain targets. RowIsValid performs the
// liveness and bounds checks.
func requireValid(v *Vector, i uint64) error {
	valid, err := v.RowIsValid(i)
	if err != nil {
		return err
	}
	if !valid {
		return errorf(ErrInvalidStateKind,
			"row %d is NULL; use a pointer or any target to observe NULLs", i)
	}
	return nil
}

// cellConv builds a converter that reinterprets the raw cell as S and maps
// it through conv.
func cellConv[S, T any](conv func(S) T) func(*Vector, uint64) (T, error) {
	return func(v *Vector, i uint64) (T, error) {
		var zero T
		if err := requireValid(v, i); err != nil {
			return zero, err
		}
		raw, err := rawRead[S](v, i)
		if err != nil {
			return zero, err
		}
		return conv(raw), nil
	}
}

// checkedConv builds a converter around a decode step that can itself fail.
func checkedConv[T any](decode func(*Vector, uint64) (T, error)) func(*Vector, uint64) (T, error) {
	return func(v *Vector, i uint64) (T, error) {
		var zero T
		if err := requireValid(v, i); err != nil {
			return zero, err
		}
		return decode(v, i)
	}
}

// optionalOf lifts a plain converter for E into one for *E that reads NULL
// as nil.
func optionalOf[E any](fn any) any {
	typed, ok := fn.(func(*Vector, uint64) (E, error))
	if !ok {
		return nil
	}
	return func(v *Vector, i uint64) (*E, error) {
		valid, err := v.RowIsValid(i)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, nil
		}
		val, err := typed(v, i)
		if err != nil {
			return nil, err
		}
		return &val, nil
	}
}

// resolveTyped returns the converter for the dynamic type of zero, or nil
// when no rule covers the pair.
func resolveTyped(v *Vector, zero any) any {
	switch zero.(type) {
	case bool:
		if v.Kind() == KindBoolean {
			return cellConv(func(x uint8) bool { return x != 0 })
		}

	case int8:
		return resolveSigned[int8](v)
	case int16:
		return resolveSigned[int16](v)
	case int32:
		return resolveSigned[int32](v)
	case int64:
		return resolveSigned[int64](v)
	case int:
		return resolveSigned[int](v)
	case uint8:
		return resolveUnsigned[uint8](v)
	case uint16:
		return resolveUnsigned[uint16](v)
	case uint32:
		return resolveUnsigned[uint32](v)
	case uint64:
		return resolveUnsigned[uint64](v)
	case uint:
		return resolveUnsigned[uint](v)

	case float32:
		if v.Kind() == KindFloat {
			return cellConv(func(x float32) float32 { return x })
		}
	case float64:
		switch v.Kind() {
		case KindDouble:
			return cellConv(func(x float64) float64 { return x })
		case KindFloat:
			return cellConv(func(x float32) float64 { return float64(x) })
		}

	case string:
		switch v.Kind() {
		case KindVarchar:
			return checkedConv(func(v *Vector, i uint64) (string, error) {
				return v.stringAt(i), nil
			})
		case KindEnum:
			return checkedConv(enumNameAt)
		case KindUUID:
			return checkedConv(func(v *Vector, i uint64) (string, error) {
				raw, err := rawRead[hugeint](v, i)
				if err != nil {
					return "", err
				}
				return uuidFromHugeint(raw).String(), nil
			})
		}
	case []byte:
		switch v.Kind() {
		case KindBlob, KindVarchar:
			return checkedConv(func(v *Vector, i uint64) ([]byte, error) {
				return v.blobAt(i), nil
			})
		}

	case time.Time:
		switch v.Kind() {
		case KindDate:
			return cellConv(TimeFromDate)
		case KindTimestamp, KindTimestampTZ, KindTimestampS, KindTimestampMS, KindTimestampNS:
			kind := v.Kind()
			return cellConv(func(raw int64) time.Time { return timestampToTime(kind, raw) })
		}
	case time.Duration:
		if v.Kind() == KindTime {
			return cellConv(DurationFromTimeCell)
		}

	case decimal.Decimal:
		if v.Kind() == KindDecimal {
			return checkedConv(decimalAt)
		}
	case *big.Int:
		switch v.Kind() {
		case KindHugeInt, KindUHugeInt:
			return checkedConv(bigIntAt)
		}
	case Interval:
		if v.Kind() == KindInterval {
			return cellConv(func(x Interval) Interval { return x })
		}
	case UUID:
		if v.Kind() == KindUUID {
			return cellConv(func(x hugeint) UUID { return uuidFromHugeint(x) })
		}

	case map[string]any:
		if v.Kind() == KindStruct {
			return resolveStructMap(v)
		}
	case map[any]any:
		if v.Kind() == KindMap {
			return resolveMap(v)
		}

	case []bool:
		return resolveSlice[bool](v)
	case []int16:
		return resolveSlice[int16](v)
	case []int32:
		return resolveSlice[int32](v)
	case []int64:
		return resolveSlice[int64](v)
	case []int:
		return resolveSlice[int](v)
	case []uint16:
		return resolveSlice[uint16](v)
	case []uint32:
		return resolveSlice[uint32](v)
	case []uint64:
		return resolveSlice[uint64](v)
	case []float32:
		return resolveSlice[float32](v)
	case []float64:
		return resolveSlice[float64](v)
	case []string:
		return resolveSlice[string](v)
	case []time.Time:
		return resolveSlice[time.Time](v)
	case []any:
		return resolveSlice[any](v)

	case *bool:
		return optionalOf[bool](resolveTyped(v, false))
	case *int8:
		return optionalOf[int8](resolveTyped(v, int8(0)))
	case *int16:
		return optionalOf[int16](resolveTyped(v, int16(0)))
	case *int32:
		return optionalOf[int32](resolveTyped(v, int32(0)))
	case *int64:
		return optionalOf[int64](resolveTyped(v, int64(0)))
	case *int:
		return optionalOf[int](resolveTyped(v, int(0)))
	case *uint8:
		return optionalOf[uint8](resolveTyped(v, uint8(0)))
	case *uint16:
		return optionalOf[uint16](resolveTyped(v, uint16(0)))
	case *uint32:
		return optionalOf[uint32](resolveTyped(v, uint32(0)))
	case *uint64:
		return optionalOf[uint64](resolveTyped(v, uint64(0)))
	case *uint:
		return optionalOf[uint](resolveTyped(v, uint(0)))
	case *float32:
		return optionalOf[float32](resolveTyped(v, float32(0)))
	case *float64:
		return optionalOf[float64](resolveTyped(v, float64(0)))
	case *string:
		return optionalOf[string](resolveTyped(v, ""))
	case *time.Time:
		return optionalOf[time.Time](resolveTyped(v, time.Time{}))
	case *time.Duration:
		return optionalOf[time.Duration](resolveTyped(v, time.Duration(0)))
	case *decimal.Decimal:
		return optionalOf[decimal.Decimal](resolveTyped(v, decimal.Decimal{}))
	case *Interval:
		return optionalOf[Interval](resolveTyped(v, Interval{}))
	case *UUID:
		return optionalOf[UUID](resolveTyped(v, UUID{}))

	case nil: // target type is any
		return func(v *Vector, i uint64) (any, error) {
			return anyAt(v, i)
		}
	}
	return nil
}

// resolveSigned accepts the native signed kind of T's width plus any
// narrower signed kind. Unsigned sources never promote into signed targets,
// regardless of width.
func resolveSigned[T int8 | int16 | int32 | int64 | int](v *Vector) any {
	var zero T
	srcRank, ok := signedRank(v.Kind())
	if !ok || srcRank > int(unsafe.Sizeof(zero)) {
		return nil
	}
	switch v.Kind() {
	case KindTinyInt:
		return cellConv(func(x int8) T { return T(x) })
	case KindSmallInt:
		return cellConv(func(x int16) T { return T(x) })
	case KindInteger:
		return cellConv(func(x int32) T { return T(x) })
	default:
		return cellConv(func(x int64) T { return T(x) })
	}
}

// resolveUnsigned mirrors resolveSigned for the unsigned kinds.
func resolveUnsigned[T uint8 | uint16 | uint32 | uint64 | uint](v *Vector) any {
	var zero T
	srcRank, ok := unsignedRank(v.Kind())
	if !ok || srcRank > int(unsafe.Sizeof(zero)) {
		return nil
	}
	switch v.Kind() {
	case KindUTinyInt:
		return cellConv(func(x uint8) T { return T(x) })
	case KindUSmallInt:
		return cellConv(func(x uint16) T { return T(x) })
	case KindUInteger:
		return cellConv(func(x uint32) T { return T(x) })
	default:
		return cellConv(func(x uint64) T { return T(x) })
	}
}
