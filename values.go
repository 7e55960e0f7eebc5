package duckvec

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// hugeint mirrors the engine's 128-bit integer cell: low 64 bits unsigned,
// high 64 bits signed.
type hugeint struct {
	lower uint64
	upper int64
}

// BigInt materializes the 128-bit value.
func (h hugeint) BigInt() *big.Int {
	v := new(big.Int).SetInt64(h.upper)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(h.lower))
}

// uhugeint mirrors the engine's unsigned 128-bit integer cell.
type uhugeint struct {
	lower uint64
	upper uint64
}

func (h uhugeint) BigInt() *big.Int {
	v := new(big.Int).SetUint64(h.upper)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(h.lower))
}

// Interval is an engine interval value. Months, days and microseconds are
// independent components; the engine never normalizes across them.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d months %d days %d us", iv.Months, iv.Days, iv.Micros)
}

// UUID is a 16-byte universally unique identifier in canonical byte order.
type UUID [16]byte

// String formats the UUID in the standard hyphenated form.
func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// uuidFromHugeint rebuilds canonical UUID bytes from the engine's storage.
// The engine keeps UUIDs as hugeints with the most significant bit flipped
// so they order correctly as signed integers; flip it back here.
func uuidFromHugeint(h hugeint) UUID {
	var u UUID
	upper := uint64(h.upper) ^ (1 << 63)
	for i := 0; i < 8; i++ {
		u[i] = byte(upper >> (56 - 8*i))
		u[8+i] = byte(h.lower >> (56 - 8*i))
	}
	return u
}

// decimalAt decodes row i of a DECIMAL column into an exact decimal value.
// The unscaled integer is read at the column's physical storage width.
func decimalAt(v *Vector, i uint64) (decimal.Decimal, error) {
	scale := int32(v.typ.decScale)
	switch v.typ.decStorage {
	case KindSmallInt:
		raw, err := rawRead[int16](v, i)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.New(int64(raw), -scale), nil
	case KindInteger:
		raw, err := rawRead[int32](v, i)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.New(int64(raw), -scale), nil
	case KindBigInt:
		raw, err := rawRead[int64](v, i)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.New(raw, -scale), nil
	case KindHugeInt:
		raw, err := rawRead[hugeint](v, i)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromBigInt(raw.BigInt(), -scale), nil
	default:
		return decimal.Decimal{}, errorf(ErrInvalidStateKind,
			"decimal column has unexpected storage %s", v.typ.decStorage)
	}
}

// bigIntAt decodes row i of a HUGEINT or UHUGEINT column.
func bigIntAt(v *Vector, i uint64) (*big.Int, error) {
	if v.typ.kind == KindUHugeInt {
		raw, err := rawRead[uhugeint](v, i)
		if err != nil {
			return nil, err
		}
		return raw.BigInt(), nil
	}
	raw, err := rawRead[hugeint](v, i)
	if err != nil {
		return nil, err
	}
	return raw.BigInt(), nil
}

// enumCode reads row i's dictionary code at the enum's storage width.
func enumCode(v *Vector, i uint64) (uint64, error) {
	switch v.typ.enumStorage {
	case KindUTinyInt:
		c, err := rawRead[uint8](v, i)
		return uint64(c), err
	case KindUSmallInt:
		c, err := rawRead[uint16](v, i)
		return uint64(c), err
	case KindUInteger:
		c, err := rawRead[uint32](v, i)
		return uint64(c), err
	default:
		return 0, errorf(ErrInvalidStateKind,
			"enum column has unexpected storage %s", v.typ.enumStorage)
	}
}

// enumNameAt resolves row i's code through the dictionary.
func enumNameAt(v *Vector, i uint64) (string, error) {
	code, err := enumCode(v, i)
	if err != nil {
		return "", err
	}
	if code >= uint64(len(v.typ.enumNames)) {
		return "", errorf(ErrInvalidStateKind,
			"enum code %d outside dictionary of %d entries", code, len(v.typ.enumNames))
	}
	return v.typ.enumNames[code], nil
}
