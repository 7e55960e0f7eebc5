package duckvec

import (
	"context"
	"fmt"
	"time"
	"unsafe"
)

// Statement is a compiled, reusable prepared statement. Binding and
// execution mutate engine-side state, so they run under an exclusive guard;
// a statement is shareable between goroutines but its operations must not
// overlap.
//
// Parameters are 1-based, matching SQL placeholder numbering.
type Statement struct {
	conn    *Connection
	scope   Scope // held on the connection until Close
	handle  stmtHandle
	guard   *ExclusiveGuard
	nparams uint64
	query   string
}

// NumParams returns the statement's placeholder count.
func (s *Statement) NumParams() int { return int(s.nparams) }

// Query returns the SQL text the statement was prepared from.
func (s *Statement) Query() string { return s.query }

func (s *Statement) checkIndex(idx uint64) error {
	if idx < 1 || idx > s.nparams {
		return errOutOfRange("parameter", idx, s.nparams)
	}
	return nil
}

func (s *Statement) bindErr(idx uint64, what string) error {
	msg := lib.prepareError(s.handle)
	if msg == "" {
		msg = "bind rejected"
	}
	return errorf(ErrBindKind, "bind %s at parameter %d: %s", what, idx, msg)
}

// bind runs one engine bind call under the exclusive guard.
func (s *Statement) bind(idx uint64, what string, call func() int32) error {
	scope, err := s.guard.Enter()
	if err != nil {
		return err
	}
	defer scope.Release()
	if err := s.checkIndex(idx); err != nil {
		return err
	}
	if call() != stateSuccess {
		return s.bindErr(idx, what)
	}
	return nil
}

// BindNull binds SQL NULL to parameter idx.
func (s *Statement) BindNull(idx uint64) error {
	return s.bind(idx, "NULL", func() int32 { return lib.bindNull(s.handle, idx) })
}

// BindBool binds a BOOLEAN parameter.
func (s *Statement) BindBool(idx uint64, v bool) error {
	return s.bind(idx, "boolean", func() int32 { return lib.bindBoolean(s.handle, idx, v) })
}

// BindInt64 binds a BIGINT parameter.
func (s *Statement) BindInt64(idx uint64, v int64) error {
	return s.bind(idx, "int64", func() int32 { return lib.bindInt64(s.handle, idx, v) })
}

// BindUint64 binds a UBIGINT parameter.
func (s *Statement) BindUint64(idx uint64, v uint64) error {
	return s.bind(idx, "uint64", func() int32 { return lib.bindUint64(s.handle, idx, v) })
}

// BindFloat64 binds a DOUBLE parameter.
func (s *Statement) BindFloat64(idx uint64, v float64) error {
	return s.bind(idx, "double", func() int32 { return lib.bindDouble(s.handle, idx, v) })
}

// BindString binds a VARCHAR parameter.
func (s *Statement) BindString(idx uint64, v string) error {
	return s.bind(idx, "string", func() int32 { return lib.bindVarchar(s.handle, idx, v) })
}

// BindBlob binds a BLOB parameter. The bytes are copied by the engine
// before the call returns.
func (s *Statement) BindBlob(idx uint64, v []byte) error {
	return s.bind(idx, "blob", func() int32 {
		if len(v) == 0 {
			return lib.bindBlob(s.handle, idx, nil, 0)
		}
		return lib.bindBlob(s.handle, idx, unsafe.Pointer(&v[0]), uint64(len(v)))
	})
}

// BindDate binds a DATE parameter from t's UTC calendar day.
func (s *Statement) BindDate(idx uint64, t time.Time) error {
	return s.bind(idx, "date", func() int32 {
		return lib.bindDate(s.handle, idx, DateFromTime(t))
	})
}

// BindTime binds a TIMESTAMP parameter at microsecond precision, in UTC.
func (s *Statement) BindTime(idx uint64, t time.Time) error {
	return s.bind(idx, "timestamp", func() int32 {
		return lib.bindTimestamp(s.handle, idx, MicrosFromTime(t))
	})
}

// Bind binds v to parameter idx based on its dynamic type. nil binds NULL;
// a type with no binding rule is rejected without touching the engine.
func (s *Statement) Bind(idx uint64, v any) error {
	switch val := v.(type) {
	case nil:
		return s.BindNull(idx)
	case bool:
		return s.BindBool(idx, val)
	case int8:
		return s.bind(idx, "int8", func() int32 { return lib.bindInt8(s.handle, idx, val) })
	case int16:
		return s.bind(idx, "int16", func() int32 { return lib.bindInt16(s.handle, idx, val) })
	case int32:
		return s.bind(idx, "int32", func() int32 { return lib.bindInt32(s.handle, idx, val) })
	case int64:
		return s.BindInt64(idx, val)
	case int:
		return s.BindInt64(idx, int64(val))
	case uint8:
		return s.bind(idx, "uint8", func() int32 { return lib.bindUint8(s.handle, idx, val) })
	case uint16:
		return s.bind(idx, "uint16", func() int32 { return lib.bindUint16(s.handle, idx, val) })
	case uint32:
		return s.bind(idx, "uint32", func() int32 { return lib.bindUint32(s.handle, idx, val) })
	case uint64:
		return s.BindUint64(idx, val)
	case uint:
		return s.BindUint64(idx, uint64(val))
	case float32:
		return s.bind(idx, "float", func() int32 { return lib.bindFloat(s.handle, idx, val) })
	case float64:
		return s.BindFloat64(idx, val)
	case string:
		return s.BindString(idx, val)
	case []byte:
		return s.BindBlob(idx, val)
	case time.Time:
		return s.BindTime(idx, val)
	default:
		return errorf(ErrBindKind, "no binding for parameter type %T", v)
	}
}

// BindAll binds args to parameters 1..len(args). The count must match the
// statement's placeholder count exactly.
func (s *Statement) BindAll(args ...any) error {
	if uint64(len(args)) != s.nparams {
		return errorf(ErrBindKind, "statement takes %d parameter(s), got %d",
			s.nparams, len(args))
	}
	for i, arg := range args {
		if err := s.Bind(uint64(i+1), arg); err != nil {
			return fmt.Errorf("parameter %d: %w", i+1, err)
		}
	}
	return nil
}

// Execute runs the statement with its currently bound parameters and
// returns a cursor over the result. The context cancels a running
// execution through the connection's interrupt mechanism.
func (s *Statement) Execute(ctx context.Context) (*ResultCursor, error) {
	scope, err := s.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer scope.Release()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := s.conn.watchContext(ctx)
	var res apiResult
	state := lib.executePrepared(s.handle, &res)
	stop()

	if state != stateSuccess {
		msg := lib.resultError(&res)
		lib.destroyResult(&res)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errorf(ErrQueryKind, "execute: %s", msg)
	}
	return newResultCursor(res), nil
}

// Exec binds args, executes, and returns the changed-row count.
func (s *Statement) Exec(ctx context.Context, args ...any) (uint64, error) {
	if err := s.BindAll(args...); err != nil {
		return 0, err
	}
	cursor, err := s.Execute(ctx)
	if err != nil {
		return 0, err
	}
	changed := cursor.RowsChanged()
	return changed, cursor.Close()
}

// Close destroys the statement and releases its hold on the connection.
// It fails if an operation is in flight and is a no-op when already closed.
func (s *Statement) Close() error {
	first, err := s.guard.PrepareDispose()
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	lib.destroyPrepare(&s.handle)
	s.scope.Release()
	return nil
}
