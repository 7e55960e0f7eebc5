package duckvec

import (
	"fmt"
	"time"
	"unsafe"
)

// Appender streams rows into a table through the engine's bulk-append path,
// bypassing SQL parsing and binding per row. Appending mutates engine-side
// buffers, so operations run under an exclusive guard.
//
// Rows are buffered engine-side; Flush or Close makes them visible.
type Appender struct {
	conn    *Connection
	scope   Scope // held on the connection until Close
	handle  appenderHandle
	guard   *ExclusiveGuard
	columns uint64
}

// NewAppender creates an appender for schema.table. An empty schema means
// the default schema.
func NewAppender(conn *Connection, schema, table string) (*Appender, error) {
	scope, err := conn.guard.Enter()
	if err != nil {
		return nil, err
	}

	var handle appenderHandle
	if lib.appenderCreate(conn.handle, schema, table, &handle) != stateSuccess {
		msg := lib.appenderError(handle)
		lib.appenderDestroy(&handle)
		scope.Release()
		return nil, errorf(ErrQueryKind, "create appender for %q: %s", table, msg)
	}
	return &Appender{
		conn:    conn,
		scope:   scope,
		handle:  handle,
		guard:   NewExclusiveGuard("appender"),
		columns: lib.appenderColumnCount(handle),
	}, nil
}

// ColumnCount returns the target table's column count.
func (a *Appender) ColumnCount() int { return int(a.columns) }

// AppendRow appends one row. The value count must match the table's column
// count; values append in column order with the same type rules as
// Statement.Bind.
func (a *Appender) AppendRow(values ...any) error {
	scope, err := a.guard.Enter()
	if err != nil {
		return err
	}
	defer scope.Release()
	return a.appendRow(values)
}

// AppendRows appends many rows under a single guard acquisition.
func (a *Appender) AppendRows(rows [][]any) error {
	scope, err := a.guard.Enter()
	if err != nil {
		return err
	}
	defer scope.Release()
	for i, row := range rows {
		if err := a.appendRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func (a *Appender) appendRow(values []any) error {
	if uint64(len(values)) != a.columns {
		return errorf(ErrBindKind, "table takes %d column(s), got %d values",
			a.columns, len(values))
	}
	for i, value := range values {
		if err := a.appendValue(value); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	if lib.appenderEndRow(a.handle) != stateSuccess {
		return errorf(ErrQueryKind, "end row: %s", lib.appenderError(a.handle))
	}
	return nil
}

func (a *Appender) appendValue(value any) error {
	var state int32
	switch v := value.(type) {
	case nil:
		state = lib.appendNull(a.handle)
	case bool:
		state = lib.appendBool(a.handle, v)
	case int8:
		state = lib.appendInt8(a.handle, v)
	case int16:
		state = lib.appendInt16(a.handle, v)
	case int32:
		state = lib.appendInt32(a.handle, v)
	case int64:
		state = lib.appendInt64(a.handle, v)
	case int:
		state = lib.appendInt64(a.handle, int64(v))
	case uint8:
		state = lib.appendUint8(a.handle, v)
	case uint16:
		state = lib.appendUint16(a.handle, v)
	case uint32:
		state = lib.appendUint32(a.handle, v)
	case uint64:
		state = lib.appendUint64(a.handle, v)
	case uint:
		state = lib.appendUint64(a.handle, uint64(v))
	case float32:
		state = lib.appendFloat(a.handle, v)
	case float64:
		state = lib.appendDouble(a.handle, v)
	case string:
		state = lib.appendVarchar(a.handle, v)
	case []byte:
		if len(v) == 0 {
			state = lib.appendBlob(a.handle, nil, 0)
		} else {
			state = lib.appendBlob(a.handle, unsafe.Pointer(&v[0]), uint64(len(v)))
		}
	case time.Time:
		state = lib.appendTimestamp(a.handle, MicrosFromTime(v))
	default:
		return errorf(ErrBindKind, "no append rule for type %T", value)
	}
	if state != stateSuccess {
		return errorf(ErrQueryKind, "append: %s", lib.appenderError(a.handle))
	}
	return nil
}

// Flush pushes buffered rows into the table.
func (a *Appender) Flush() error {
	scope, err := a.guard.Enter()
	if err != nil {
		return err
	}
	defer scope.Release()
	if lib.appenderFlush(a.handle) != stateSuccess {
		return errorf(ErrQueryKind, "flush appender: %s", lib.appenderError(a.handle))
	}
	return nil
}

// Close flushes remaining rows and destroys the appender, releasing its
// hold on the connection. It fails if an append is in flight and is a no-op
// when already closed.
func (a *Appender) Close() error {
	first, err := a.guard.PrepareDispose()
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	state := lib.appenderDestroy(&a.handle)
	a.scope.Release()
	if state != stateSuccess {
		return errorf(ErrQueryKind, "close appender")
	}
	return nil
}
