package duckvec

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"time"
)

// The package registers itself as the "duckvec" driver for database/sql.
// The shim is a thin row-oriented adapter over the columnar API; code that
// cares about throughput should use Database and ResultCursor directly.

func init() {
	sql.Register("duckvec", &Driver{})
}

// Driver implements driver.Driver. The data source name is the database
// path; an empty name opens an in-memory database.
type Driver struct{}

// Open opens a database and one connection to it.
func (Driver) Open(name string) (driver.Conn, error) {
	if name == "" {
		name = MemoryPath
	}
	db, err := Open(name)
	if err != nil {
		return nil, err
	}
	conn, err := db.Connect()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &driverConn{db: db, conn: conn}, nil
}

type driverConn struct {
	db   *Database
	conn *Connection
}

func (c *driverConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *driverConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return &driverStmt{stmt: stmt}, nil
}

func (c *driverConn) Close() error {
	if err := c.conn.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

func (c *driverConn) Ping(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "SELECT 1")
	return err
}

func (c *driverConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *driverConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if sql.IsolationLevel(opts.Isolation) != sql.LevelDefault {
		return nil, fmt.Errorf("duckvec: unsupported isolation level %d", opts.Isolation)
	}
	if opts.ReadOnly {
		return nil, fmt.Errorf("duckvec: read-only transactions are not supported")
	}
	if _, err := c.conn.Exec(ctx, "BEGIN TRANSACTION"); err != nil {
		return nil, err
	}
	return &driverTx{conn: c.conn}, nil
}

func (c *driverConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, driver.ErrSkip
	}
	changed, err := c.conn.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	return driverResult{rowsAffected: int64(changed)}, nil
}

func (c *driverConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, driver.ErrSkip
	}
	cursor, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return newDriverRows(cursor), nil
}

// CheckNamedValue accepts the types Statement.Bind can bind.
func (c *driverConn) CheckNamedValue(nv *driver.NamedValue) error {
	switch nv.Value.(type) {
	case nil, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, string, []byte, time.Time:
		return nil
	default:
		return fmt.Errorf("duckvec: unsupported parameter type %T", nv.Value)
	}
}

type driverTx struct {
	conn *Connection
}

func (tx *driverTx) Commit() error {
	_, err := tx.conn.Exec(context.Background(), "COMMIT")
	return err
}

func (tx *driverTx) Rollback() error {
	_, err := tx.conn.Exec(context.Background(), "ROLLBACK")
	return err
}

type driverStmt struct {
	stmt *Statement
}

func (s *driverStmt) Close() error  { return s.stmt.Close() }
func (s *driverStmt) NumInput() int { return s.stmt.NumParams() }

func (s *driverStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *driverStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *driverStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	cursor, err := s.run(ctx, args)
	if err != nil {
		return nil, err
	}
	changed := cursor.RowsChanged()
	if err := cursor.Close(); err != nil {
		return nil, err
	}
	return driverResult{rowsAffected: int64(changed)}, nil
}

func (s *driverStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	cursor, err := s.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return newDriverRows(cursor), nil
}

func (s *driverStmt) run(ctx context.Context, args []driver.NamedValue) (*ResultCursor, error) {
	for _, arg := range args {
		if err := s.stmt.Bind(uint64(arg.Ordinal), arg.Value); err != nil {
			return nil, err
		}
	}
	return s.stmt.Execute(ctx)
}

func valuesToNamed(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return named
}

type driverResult struct {
	rowsAffected int64
}

func (r driverResult) LastInsertId() (int64, error) {
	// The engine has no insert id concept.
	return 0, nil
}

func (r driverResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// driverRows walks the cursor's chunks row by row. Each chunk is captured
// so its vectors stay valid across Next calls while the current row is
// boxed into driver values.
type driverRows struct {
	cursor  *ResultCursor
	chunk   *CapturedChunk
	row     uint64
	strings *StringCache
}

func newDriverRows(cursor *ResultCursor) *driverRows {
	return &driverRows{
		cursor:  cursor,
		strings: NewStringCache(cursor.ColumnCount()),
	}
}

func (r *driverRows) Columns() []string {
	names := make([]string, r.cursor.ColumnCount())
	for i := range names {
		names[i], _ = r.cursor.ColumnName(i)
	}
	return names
}

func (r *driverRows) Next(dest []driver.Value) error {
	for r.chunk == nil || r.row >= r.chunk.RowCount() {
		if r.chunk != nil {
			if err := r.chunk.Close(); err != nil {
				return err
			}
			r.chunk = nil
		}
		chunk, err := r.cursor.PullCaptured()
		if err != nil {
			return err
		}
		if chunk == nil {
			return io.EOF
		}
		r.chunk = chunk
		r.row = 0
	}

	for i := range dest {
		vec, err := r.chunk.Column(i)
		if err != nil {
			return err
		}
		if vec.Kind() == KindVarchar {
			valid, err := vec.RowIsValid(r.row)
			if err != nil {
				return err
			}
			if !valid {
				dest[i] = nil
				continue
			}
			dest[i] = r.strings.GetFromBytes(i, vec.stringBytes(r.row))
			continue
		}
		val, err := anyAt(vec, r.row)
		if err != nil {
			return err
		}
		dest[i] = val
	}
	r.row++
	return nil
}

func (r *driverRows) Close() error {
	if r.chunk != nil {
		if err := r.chunk.Close(); err != nil {
			return err
		}
		r.chunk = nil
	}
	return r.cursor.Close()
}
