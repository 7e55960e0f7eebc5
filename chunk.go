package duckvec

// Chunk is a borrowed view of one batch of rows across all columns. It is
// handed to caller code inside ResultCursor.NextChunk and is invalidated,
// together with every Vector derived from it, the moment that callback
// returns. Storing a Chunk or Vector past the callback is a bug; the
// generation stamp turns such use into a loud disposed error rather than a
// dangling read.
type Chunk struct {
	handle chunkHandle
	size   uint64
	types  []*ColumnType
	state  *chunkState
	stamp  uint64
	vecs   []*Vector
}

func newChunk(handle chunkHandle, types []*ColumnType) *Chunk {
	state := &chunkState{}
	return &Chunk{
		handle: handle,
		size:   lib.chunkSize(handle),
		types:  types,
		state:  state,
		stamp:  state.gen.Load(),
		vecs:   make([]*Vector, len(types)),
	}
}

// RowCount returns the number of rows in the chunk.
func (c *Chunk) RowCount() uint64 { return c.size }

// ColumnCount returns the number of columns in the chunk.
func (c *Chunk) ColumnCount() int { return len(c.types) }

func (c *Chunk) live() error {
	if c.state.gen.Load() != c.stamp {
		return errDisposed("chunk view")
	}
	return nil
}

// Column returns the view of column i's vector within this chunk.
func (c *Chunk) Column(i int) (*Vector, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(c.types) {
		return nil, errOutOfRange("column", uint64(i), uint64(len(c.types)))
	}
	if c.vecs[i] == nil {
		c.vecs[i] = newNativeVector(lib.chunkVector(c.handle, uint64(i)),
			c.size, c.types[i], c.state, c.stamp)
	}
	return c.vecs[i], nil
}

// release destroys the native chunk and invalidates all derived views.
func (c *Chunk) release() {
	if c.handle == 0 {
		return
	}
	c.state.invalidate()
	lib.destroyChunk(&c.handle)
	c.handle = 0
}

// CapturedChunk is the owned variant of Chunk: it holds its native chunk
// handle behind a Guard, can be read repeatedly (row-oriented iteration
// reads the same chunk many times), and is disposed independently of the
// cursor that produced it.
type CapturedChunk struct {
	chunk *Chunk
	guard *Guard
}

func newCapturedChunk(handle chunkHandle, types []*ColumnType) *CapturedChunk {
	return &CapturedChunk{
		chunk: newChunk(handle, types),
		guard: NewGuard("captured chunk"),
	}
}

// RowCount returns the number of rows in the chunk.
func (c *CapturedChunk) RowCount() uint64 { return c.chunk.size }

// ColumnCount returns the number of columns in the chunk.
func (c *CapturedChunk) ColumnCount() int { return len(c.chunk.types) }

// Column returns the view of column i. The view stays valid until Close.
func (c *CapturedChunk) Column(i int) (*Vector, error) {
	scope, err := c.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer scope.Release()
	return c.chunk.Column(i)
}

// Close releases the native chunk. It fails with a concurrency violation
// if another caller is mid-access, and is a no-op when already closed.
func (c *CapturedChunk) Close() error {
	first, err := c.guard.PrepareDispose()
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	c.chunk.release()
	return nil
}
