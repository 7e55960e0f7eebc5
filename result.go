package duckvec

// ResultCursor pulls successive chunks from a query result, one batch at a
// time, in the exact order the engine produced them. Pulling mutates cursor
// position, so every pull runs under an exclusive guard; a cursor may be
// held by multiple goroutines but its operations must not overlap.
//
// Exhaustion is terminal and quiet: once the engine reports no more chunks,
// further pulls keep reporting exhaustion and never error.
type ResultCursor struct {
	res         apiResult
	guard       *ExclusiveGuard
	names       []string
	types       []*ColumnType
	rowsChanged uint64
	exhausted   bool
}

// newResultCursor takes ownership of res. The caller has already checked
// the engine's success state.
func newResultCursor(res apiResult) *ResultCursor {
	c := &ResultCursor{
		res:   res,
		guard: NewExclusiveGuard("result cursor"),
	}
	n := lib.columnCount(&c.res)
	c.names = make([]string, n)
	c.types = make([]*ColumnType, n)
	for i := uint64(0); i < n; i++ {
		c.names[i] = lib.columnName(&c.res, i)
		lt := lib.columnLogicalType(&c.res, i)
		c.types[i] = typeFromLogical(lt)
		lib.destroyLogicalType(&lt)
	}
	c.rowsChanged = lib.rowsChanged(&c.res)
	return c
}

// ColumnCount returns the number of result columns.
func (c *ResultCursor) ColumnCount() int { return len(c.names) }

// ColumnName returns the name of column i.
func (c *ResultCursor) ColumnName(i int) (string, error) {
	if i < 0 || i >= len(c.names) {
		return "", errOutOfRange("column", uint64(i), uint64(len(c.names)))
	}
	return c.names[i], nil
}

// ColumnType returns the materialized type of column i.
func (c *ResultCursor) ColumnType(i int) (*ColumnType, error) {
	if i < 0 || i >= len(c.types) {
		return nil, errOutOfRange("column", uint64(i), uint64(len(c.types)))
	}
	return c.types[i], nil
}

// RowsChanged returns the engine's changed-row count for statements that
// modify data.
func (c *ResultCursor) RowsChanged() uint64 { return c.rowsChanged }

// NextChunk pulls the next chunk and hands it to fn as a borrowed view.
// The chunk and all vectors derived from it are invalidated when fn
// returns. It reports false once the result is exhausted; fn is not called
// in that case.
func (c *ResultCursor) NextChunk(fn func(*Chunk) error) (bool, error) {
	scope, err := c.guard.Enter()
	if err != nil {
		return false, err
	}
	defer scope.Release()

	handle := c.fetch()
	if handle == 0 {
		return false, nil
	}
	chunk := newChunk(handle, c.types)
	defer chunk.release()
	return true, fn(chunk)
}

// PullCaptured pulls the next chunk as an owned CapturedChunk the caller
// must Close. It returns (nil, nil) once the result is exhausted.
func (c *ResultCursor) PullCaptured() (*CapturedChunk, error) {
	scope, err := c.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer scope.Release()

	handle := c.fetch()
	if handle == 0 {
		return nil, nil
	}
	return newCapturedChunk(handle, c.types), nil
}

// fetch advances the cursor under the already-held guard.
func (c *ResultCursor) fetch() chunkHandle {
	if c.exhausted {
		return 0
	}
	handle := lib.fetchChunk(c.res)
	if handle == 0 {
		c.exhausted = true
	}
	return handle
}

// ForEach visits every remaining chunk exactly once, in engine order,
// stopping early on the first error from fn.
func (c *ResultCursor) ForEach(fn func(*Chunk) error) error {
	for {
		more, err := c.NextChunk(fn)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Close destroys the result. It fails loudly if a pull is in flight and is
// a no-op when already closed.
func (c *ResultCursor) Close() error {
	first, err := c.guard.PrepareDispose()
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	lib.destroyResult(&c.res)
	return nil
}

// Fold reduces all remaining chunks of c into a single value, visiting each
// chunk exactly once in engine order.
func Fold[S any](c *ResultCursor, seed S, fn func(S, *Chunk) (S, error)) (S, error) {
	acc := seed
	err := c.ForEach(func(chunk *Chunk) error {
		var ferr error
		acc, ferr = fn(acc, chunk)
		return ferr
	})
	return acc, err
}
