package duckvec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVectorValidityBitmap(t *testing.T) {
	// 70 rows forces the bitmap across a word boundary.
	values := make([]int64, 70)
	nulls := make([]bool, 70)
	for i := range values {
		values[i] = int64(i)
		nulls[i] = i%3 == 0
	}
	tv := fixedVec(KindBigInt, values, nulls)

	for i := 0; i < 70; i++ {
		valid, err := tv.vec.RowIsValid(uint64(i))
		require.NoError(t, err)
		require.Equal(t, i%3 != 0, valid, "row %d", i)
	}
}

func TestVectorAbsentBitmapMeansAllValid(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1, 2}, nil)
	valid, err := tv.vec.RowIsValid(1)
	require.NoError(t, err)
	require.True(t, valid)
}

func TestVectorRowBounds(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1, 2}, nil)
	_, err := tv.vec.RowIsValid(2)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Contains(t, err.Error(), "2")
}

func TestStringInlineBoundary(t *testing.T) {
	exactly12 := strings.Repeat("a", 12)
	thirteen := strings.Repeat("b", 13)
	tv := stringVec(KindVarchar, []string{exactly12, thirteen}, nil)

	require.Equal(t, exactly12, tv.vec.stringAt(0))
	require.Equal(t, thirteen, tv.vec.stringAt(1))
}

func TestGenerationStampInvalidation(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1}, nil)
	state := &chunkState{}
	tv.vec.owner = state
	tv.vec.stamp = state.gen.Load()

	_, err := tv.vec.RowIsValid(0)
	require.NoError(t, err)

	state.invalidate()

	_, err = tv.vec.RowIsValid(0)
	require.ErrorIs(t, err, ErrDisposed)
	_, err = rawRead[int32](tv.vec, 0)
	require.ErrorIs(t, err, ErrDisposed)
}

func TestGenerationStampPropagatesToChildren(t *testing.T) {
	child := fixedVec(KindInteger, []int32{1, 2}, nil)
	tv := listVec(child, []listEntry{{0, 2}}, nil)

	state := &chunkState{}
	tv.vec.owner = state
	tv.vec.stamp = state.gen.Load()
	child.vec.owner = state
	child.vec.stamp = state.gen.Load()

	conv, err := ResolveConverter[[]int32](tv.vec)
	require.NoError(t, err)
	_, err = conv(tv.vec, 0)
	require.NoError(t, err)

	state.invalidate()
	_, err = conv(tv.vec, 0)
	require.ErrorIs(t, err, ErrDisposed)
}

func TestRawReadRejectsWidthMismatch(t *testing.T) {
	tv := fixedVec(KindInteger, []int32{1, 2}, nil)

	_, err := rawRead[int64](tv.vec, 0)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "INTEGER")

	got, err := rawRead[int32](tv.vec, 1)
	require.NoError(t, err)
	require.Equal(t, int32(2), got)
}

func TestSyntheticListWithoutChildFails(t *testing.T) {
	tv := fixedVec(KindList, []listEntry{{0, 0}}, nil)
	tv.vec.typ = &ColumnType{kind: KindList, elem: scalarType(KindInteger)}

	_, err := tv.vec.listChild()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestColumnTypeAccessorsCopy(t *testing.T) {
	typ := &ColumnType{
		kind:      KindEnum,
		enumNames: []string{"a", "b"},
	}
	names := typ.EnumNames()
	names[0] = "mutated"
	require.Equal(t, "a", typ.enumNames[0])
}
