package duckvec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestListConverterTyped(t *testing.T) {
	child := fixedVec(KindInteger, []int32{1, 2, 3, 4, 5}, nil)
	tv := listVec(child, []listEntry{
		{offset: 0, length: 2},
		{offset: 2, length: 0},
		{offset: 2, length: 3},
	}, nil)

	conv, err := ResolveConverter[[]int32](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = conv(tv.vec, 2)
	require.NoError(t, err)
	require.Equal(t, []int32{3, 4, 5}, got)
}

func TestListConverterNullRow(t *testing.T) {
	child := fixedVec(KindBigInt, []int64{9}, nil)
	tv := listVec(child, []listEntry{{0, 1}, {1, 0}}, []bool{false, true})

	conv, err := ResolveConverter[[]int64](tv.vec)
	require.NoError(t, err)
	_, err = conv(tv.vec, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestListConverterNullElements(t *testing.T) {
	child := fixedVec(KindInteger, []int32{1, 2, 3}, []bool{false, true, false})
	tv := listVec(child, []listEntry{{0, 3}}, nil)

	// Plain element type rejects NULL elements.
	plain, err := ResolveConverter[[]int32](tv.vec)
	require.NoError(t, err)
	_, err = plain(tv.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)

	// The any element type boxes them as nil.
	boxed, err := ResolveConverter[[]any](tv.vec)
	require.NoError(t, err)
	got, err := boxed(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []any{int32(1), nil, int32(3)}, got)
}

func TestListWideningElement(t *testing.T) {
	child := fixedVec(KindSmallInt, []int16{10, 20}, nil)
	tv := listVec(child, []listEntry{{0, 2}}, nil)

	conv, err := ResolveConverter[[]int64](tv.vec)
	require.NoError(t, err)
	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, got)
}

func TestListConverterVarcharElements(t *testing.T) {
	child := stringVec(KindVarchar, []string{"a", "b", "c"}, nil)
	tv := listVec(child, []listEntry{
		{offset: 0, length: 2},
		{offset: 2, length: 0},
		{offset: 2, length: 1},
	}, nil)

	conv, err := ResolveConverter[[]string](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = conv(tv.vec, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, got)
}

func TestListConverterReadsAppliedVector(t *testing.T) {
	// A converter resolved on one chunk's vector must decode from whichever
	// vector it is applied to, elements included.
	a := listVec(fixedVec(KindInteger, []int32{10, 20}, nil), []listEntry{{0, 2}}, nil)
	b := listVec(fixedVec(KindInteger, []int32{77, 88}, nil), []listEntry{{0, 2}}, nil)

	conv, err := ResolveConverter[[]int32](a.vec)
	require.NoError(t, err)

	got, err := conv(b.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []int32{77, 88}, got)

	got, err = conv(a.vec, 0)
	require.NoError(t, err)
	require.Equal(t, []int32{10, 20}, got)
}

func TestListConverterRejectsMismatchedShape(t *testing.T) {
	ints := listVec(fixedVec(KindInteger, []int32{1}, nil), []listEntry{{0, 1}}, nil)
	strs := listVec(stringVec(KindVarchar, []string{"x"}, nil), []listEntry{{0, 1}}, nil)

	conv, err := ResolveConverter[[]int32](ints.vec)
	require.NoError(t, err)

	_, err = conv(strs.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)

	plain := fixedVec(KindBigInt, []int64{1}, nil)
	_, err = conv(plain.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStructConverterReadsAppliedVector(t *testing.T) {
	a := structVec(1, nil, []string{"n"}, fixedVec(KindInteger, []int32{1}, nil))
	b := structVec(1, nil, []string{"n"}, fixedVec(KindInteger, []int32{9}, nil))

	conv, err := ResolveConverter[map[string]any](a.vec)
	require.NoError(t, err)

	got, err := conv(b.vec, 0)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"n": int32(9)}, got)

	plain := fixedVec(KindInteger, []int32{1}, nil)
	_, err = conv(plain.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStructConverter(t *testing.T) {
	ids := fixedVec(KindBigInt, []int64{1, 2}, nil)
	names := stringVec(KindVarchar, []string{"ada", "grace"}, nil)
	tv := structVec(2, nil, []string{"id", "name"}, ids, names)

	conv, err := ResolveConverter[map[string]any](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": int64(2), "name": "grace"}, got)
}

func TestStructBoxedThroughAny(t *testing.T) {
	ids := fixedVec(KindInteger, []int32{7}, nil)
	tv := structVec(1, nil, []string{"id"}, ids)

	got, err := anyAt(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": int32(7)}, got)
}

func TestEnumConverterToString(t *testing.T) {
	tv := enumVec([]string{"red", "green", "blue"}, []uint8{2, 0}, nil)

	conv, err := ResolveConverter[string](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, "blue", got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, "red", got)
}

func TestResolveEnumMemberMap(t *testing.T) {
	type color int
	const (
		red color = iota
		green
		blue
	)
	tv := enumVec([]string{"red", "green", "blue"}, []uint8{1, 2, 0}, nil)

	conv, err := ResolveEnum(tv.vec, map[string]color{
		"red": red, "green": green, "blue": blue,
	})
	require.NoError(t, err)

	for i, want := range []color{green, blue, red} {
		got, err := conv(tv.vec, uint64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestResolveEnumMissingMember(t *testing.T) {
	tv := enumVec([]string{"red", "green"}, []uint8{1}, nil)
	conv, err := ResolveEnum(tv.vec, map[string]int{"red": 1})
	require.NoError(t, err)

	_, err = conv(tv.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "green")
}

func TestResolveEnumWrongKind(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1}, nil)
	_, err := ResolveEnum(tv.vec, map[string]int{"x": 1})
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestDecimalConverter(t *testing.T) {
	// 1234.56 and -0.07 at scale 2.
	tv := decimalVec(18, 2, []int64{123456, -7}, nil)

	conv, err := ResolveConverter[decimal.Decimal](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("1234.56")))

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("-0.07")))
}

func TestDecimalOptional(t *testing.T) {
	tv := decimalVec(9, 3, []int64{1500, 0}, []bool{false, true})

	conv, err := ResolveConverter[*decimal.Decimal](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Equal(decimal.RequireFromString("1.5")))

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Nil(t, got)
}
