package duckvec

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHugeintBigInt(t *testing.T) {
	cases := []struct {
		h    hugeint
		want string
	}{
		{hugeint{lower: 0, upper: 0}, "0"},
		{hugeint{lower: 42, upper: 0}, "42"},
		{hugeint{lower: math.MaxUint64, upper: 0}, "18446744073709551615"},
		{hugeint{lower: 0, upper: 1}, "18446744073709551616"},
		{hugeint{lower: math.MaxUint64, upper: -1}, "-1"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.h.BigInt().String())
	}
}

func TestUhugeintBigInt(t *testing.T) {
	h := uhugeint{lower: math.MaxUint64, upper: math.MaxUint64}
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	require.Equal(t, want.String(), h.BigInt().String())
}

func TestBigIntConverter(t *testing.T) {
	tv := fixedVec(KindHugeInt, []hugeint{
		{lower: 7, upper: 0},
		{lower: 0, upper: 2},
	}, nil)

	conv, err := ResolveConverter[*big.Int](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "7", got.String())

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, "36893488147419103232", got.String())
}

func TestUUIDString(t *testing.T) {
	u := UUID{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	require.Equal(t, "12345678-9abc-def0-1122-334455667788", u.String())
}

func TestUUIDFromHugeint(t *testing.T) {
	// The engine flips the sign bit so UUIDs sort as signed hugeints; an
	// all-zero UUID is stored with upper = MinInt64.
	u := uuidFromHugeint(hugeint{lower: 0, upper: math.MinInt64})
	require.Equal(t, UUID{}, u)

	u = uuidFromHugeint(hugeint{
		lower: 0x1122334455667788,
		upper: int64(0x123456789abcdef0 - (1 << 63)),
	})
	require.Equal(t, "12345678-9abc-def0-1122-334455667788", u.String())
}

func TestUUIDConverter(t *testing.T) {
	raw := hugeint{lower: 0, upper: math.MinInt64}
	tv := fixedVec(KindUUID, []hugeint{raw}, nil)

	conv, err := ResolveConverter[UUID](tv.vec)
	require.NoError(t, err)
	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, UUID{}, got)

	sconv, err := ResolveConverter[string](tv.vec)
	require.NoError(t, err)
	s, err := sconv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "00000000-0000-0000-0000-000000000000", s)
}

func TestIntervalConverter(t *testing.T) {
	tv := fixedVec(KindInterval, []Interval{
		{Months: 14, Days: 3, Micros: 5_000_000},
	}, nil)

	conv, err := ResolveConverter[Interval](tv.vec)
	require.NoError(t, err)
	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, Interval{Months: 14, Days: 3, Micros: 5_000_000}, got)
	require.Equal(t, "14 months 3 days 5000000 us", got.String())
}

func TestDecimalStorageWidths(t *testing.T) {
	// Scale 1 over int16 storage.
	small := fixedVecTyped(&ColumnType{
		kind: KindDecimal, decWidth: 4, decScale: 1, decStorage: KindSmallInt,
	}, []int16{-123}, nil)
	d, err := decimalAt(small.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "-12.3", d.String())

	// Scale 4 over int32 storage.
	medium := fixedVecTyped(&ColumnType{
		kind: KindDecimal, decWidth: 9, decScale: 4, decStorage: KindInteger,
	}, []int32{98765}, nil)
	d, err = decimalAt(medium.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "9.8765", d.String())

	// Scale 0 over hugeint storage.
	wide := fixedVecTyped(&ColumnType{
		kind: KindDecimal, decWidth: 38, decScale: 0, decStorage: KindHugeInt,
	}, []hugeint{{lower: 0, upper: 1}}, nil)
	d, err = decimalAt(wide.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "18446744073709551616", d.String())
}

func TestEnumCodeOutsideDictionary(t *testing.T) {
	tv := enumVec([]string{"on", "off"}, []uint8{5}, nil)
	_, err := enumNameAt(tv.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)
}
