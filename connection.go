package duckvec

import (
	"context"

	"go.uber.org/zap"
)

// Connection is one session against a Database. Operations may be issued
// from multiple goroutines; the access guard counts them in and turns
// close-while-in-use into a loud concurrency error instead of a freed-handle
// crash. The engine serializes query execution per connection internally.
type Connection struct {
	db     *Database
	handle connHandle
	guard  *Guard
}

// Query runs sql and returns a cursor over its result chunks. The context
// cancels a running query through the engine's interrupt mechanism.
func (c *Connection) Query(ctx context.Context, sql string) (*ResultCursor, error) {
	scope, err := c.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer scope.Release()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := c.watchContext(ctx)
	var res apiResult
	state := lib.query(c.handle, sql, &res)
	stop()

	if state != stateSuccess {
		msg := lib.resultError(&res)
		lib.destroyResult(&res)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errorf(ErrQueryKind, "query: %s", msg)
	}
	return newResultCursor(res), nil
}

// Exec runs sql and returns the engine's changed-row count, discarding any
// result rows.
func (c *Connection) Exec(ctx context.Context, sql string) (uint64, error) {
	cursor, err := c.Query(ctx, sql)
	if err != nil {
		return 0, err
	}
	changed := cursor.RowsChanged()
	return changed, cursor.Close()
}

// Prepare compiles sql into a reusable statement. The statement holds a
// scope on the connection until closed, so closing the connection first
// fails loudly.
func (c *Connection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	scope, err := c.guard.Enter()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		scope.Release()
		return nil, err
	}

	var handle stmtHandle
	if lib.prepare(c.handle, sql, &handle) != stateSuccess {
		msg := lib.prepareError(handle)
		lib.destroyPrepare(&handle)
		scope.Release()
		return nil, errorf(ErrPrepare, "prepare: %s", msg)
	}
	return &Statement{
		conn:    c,
		scope:   scope,
		handle:  handle,
		guard:   NewExclusiveGuard("prepared statement"),
		nparams: lib.nparams(handle),
		query:   sql,
	}, nil
}

// Interrupt asks the engine to abort the connection's running query. Safe
// to call from any goroutine; a connection with no running query ignores it.
func (c *Connection) Interrupt() error {
	scope, err := c.guard.Enter()
	if err != nil {
		return err
	}
	defer scope.Release()
	lib.interrupt(c.handle)
	return nil
}

// Close disconnects the session. It fails with a concurrency violation if
// an operation or an open statement still holds the connection, and is a
// no-op when already closed.
func (c *Connection) Close() error {
	first, err := c.guard.PrepareDispose()
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	lib.disconnect(&c.handle)
	c.db.release()
	return nil
}

// watchContext interrupts the connection when ctx is canceled. The returned
// stop function must be called when the engine call returns.
func (c *Connection) watchContext(ctx context.Context) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logger().Debug("interrupting query", zap.Error(ctx.Err()))
			lib.interrupt(c.handle)
		case <-done:
		}
	}()
	return func() { close(done) }
}
