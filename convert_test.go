package duckvec

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConverterDirectScalars(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{-7, 0, 41}, nil)
	conv, err := ResolveConverter[int32](tv.vec)
	require.NoError(t, err)

	for i, want := range []int32{-7, 0, 41} {
		got, err := conv(tv.vec, uint64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestConverterBoolean(t *testing.T) {
	tv := fixedVec(KindBoolean, []uint8{1, 0, 1}, nil)
	conv, err := ResolveConverter[bool](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.True(t, got)
	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.False(t, got)
}

func TestConverterWideningPromotion(t *testing.T) {
	tv := fixedVec(KindSmallInt, []int16{-300, 300}, nil)

	conv64, err := ResolveConverter[int64](tv.vec)
	require.NoError(t, err)
	got, err := conv64(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, int64(-300), got)

	// Same width resolves too.
	_, err = ResolveConverter[int16](tv.vec)
	require.NoError(t, err)

	// Narrowing does not.
	_, err = ResolveConverter[int8](tv.vec)
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestConverterSignednessIsNotCrossed(t *testing.T) {
	unsigned := fixedVec(KindUInteger, []uint32{5}, nil)
	_, err := ResolveConverter[int64](unsigned.vec)
	require.ErrorIs(t, err, ErrUnsupportedConversion)

	signed := fixedVec(KindInteger, []int32{5}, nil)
	_, err = ResolveConverter[uint64](signed.vec)
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestConverterUnsignedWidening(t *testing.T) {
	tv := fixedVec(KindUTinyInt, []uint8{200}, nil)
	conv, err := ResolveConverter[uint64](tv.vec)
	require.NoError(t, err)
	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(200), got)
}

func TestConverterFloatWidening(t *testing.T) {
	tv := fixedVec(KindFloat, []float32{1.5, -2.25}, nil)

	conv, err := ResolveConverter[float64](tv.vec)
	require.NoError(t, err)
	got, err := conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, -2.25, got)

	// Double never narrows to float32.
	double := fixedVec(KindDouble, []float64{math.Pi}, nil)
	_, err = ResolveConverter[float32](double.vec)
	require.ErrorIs(t, err, ErrUnsupportedConversion)
}

func TestConverterNullThroughPlainTarget(t *testing.T) {
	tv := fixedVec(KindBigInt, []int64{10, 20}, []bool{false, true})
	conv, err := ResolveConverter[int64](tv.vec)
	require.NoError(t, err)

	_, err = conv(tv.vec, 1)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, int64(10), got)
}

func TestConverterNullThroughPointerTarget(t *testing.T) {
	tv := fixedVec(KindBigInt, []int64{10, 20}, []bool{false, true})
	conv, err := ResolveConverter[*int64](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(10), *got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConverterNullThroughAnyTarget(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1, 2}, []bool{true, false})
	conv, err := ResolveConverter[any](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, int32(2), got)
}

func TestConverterStrings(t *testing.T) {
	values := []string{"", "short", "this one is longer than twelve bytes"}
	tv := stringVec(KindVarchar, values, nil)
	conv, err := ResolveConverter[string](tv.vec)
	require.NoError(t, err)

	for i, want := range values {
		got, err := conv(tv.vec, uint64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestConverterBlob(t *testing.T) {
	tv := stringVec(KindBlob, []string{"", "\x00\x01\x02"}, nil)
	conv, err := ResolveConverter[[]byte](tv.vec)
	require.NoError(t, err)

	got, err := conv(tv.vec, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = conv(tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, got)
}

func TestConverterTemporal(t *testing.T) {
	date := fixedVec(KindDate, []int32{0, 19723}, nil)
	conv, err := ResolveConverter[time.Time](date.vec)
	require.NoError(t, err)

	got, err := conv(date.vec, 0)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))

	ts := fixedVec(KindTimestamp, []int64{1_700_000_000_123_456}, nil)
	tconv, err := ResolveConverter[time.Time](ts.vec)
	require.NoError(t, err)
	gotTS, err := tconv(ts.vec, 0)
	require.NoError(t, err)
	require.True(t, gotTS.Equal(time.Unix(1_700_000_000, 123_456_000)))
}

func TestConverterUnsupportedPairNamesBothSides(t *testing.T) {
	tv := stringVec(KindVarchar, []string{"x"}, nil)
	_, err := ResolveConverter[int64](tv.vec)
	require.ErrorIs(t, err, ErrUnsupportedConversion)
	require.Contains(t, err.Error(), "VARCHAR")
	require.Contains(t, err.Error(), "int64")
}

func TestConverterOutOfRangeRow(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1}, nil)
	conv, err := ResolveConverter[int32](tv.vec)
	require.NoError(t, err)

	_, err = conv(tv.vec, 5)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestGetValueSingleCell(t *testing.T) {
	tv := fixedVec(KindDouble, []float64{2.5}, nil)
	got, err := GetValue[float64](tv.vec, 0)
	require.NoError(t, err)
	require.Equal(t, 2.5, got)
}

func TestConverterDisposedChunkFailsLoudly(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1, 2}, nil)
	state := &chunkState{}
	tv.vec.owner = state
	tv.vec.stamp = state.gen.Load()

	conv, err := ResolveConverter[int32](tv.vec)
	require.NoError(t, err)
	_, err = conv(tv.vec, 0)
	require.NoError(t, err)

	state.invalidate()
	_, err = conv(tv.vec, 0)
	require.ErrorIs(t, err, ErrDisposed)

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, ErrDisposedKind, e.Kind)
}
