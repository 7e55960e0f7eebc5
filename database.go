package duckvec

import (
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
)

// Database is an open engine instance. Connections share it; the native
// handle is released when the database and every connection derived from it
// have been closed, whichever comes last.
type Database struct {
	handle dbHandle
	path   string

	// refs counts the open Close obligations: one for the Database itself
	// plus one per live Connection. The native handle is closed when the
	// count reaches zero.
	refs   atomic.Int64
	closed atomic.Bool
}

// Open opens or creates the database at path. Use MemoryPath for a
// transient in-memory database.
func Open(path string, opts ...Option) (*Database, error) {
	cfg := &Config{Path: path}
	for _, opt := range opts {
		opt(cfg)
	}
	return OpenConfig(cfg)
}

// OpenConfig opens a database from a full Config.
func OpenConfig(cfg *Config) (*Database, error) {
	if err := requireLibrary(); err != nil {
		return nil, err
	}
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}

	var native configHandle
	if lib.createConfig(&native) != stateSuccess {
		return nil, errorf(ErrOpen, "create engine config")
	}
	defer lib.destroyConfig(&native)
	for _, pair := range cfg.settingPairs() {
		if lib.setConfig(native, pair[0], pair[1]) != stateSuccess {
			return nil, errorf(ErrOpen, "unrecognized engine setting %q", pair[0])
		}
	}

	var handle dbHandle
	var errMsg unsafe.Pointer
	if lib.openExt(path, &handle, native, &errMsg) != stateSuccess {
		return nil, errorf(ErrOpen, "open %s: %s", path, takeString(errMsg))
	}

	db := &Database{handle: handle, path: path}
	db.refs.Store(1)
	logger().Info("database opened", zap.String("path", path))
	return db, nil
}

// Path returns the database location the instance was opened with.
func (db *Database) Path() string { return db.path }

// Connect opens a new connection. Each connection must be closed
// independently; closing the Database does not tear down live connections.
func (db *Database) Connect() (*Connection, error) {
	for {
		c := db.refs.Load()
		if c <= 0 || db.closed.Load() {
			return nil, errDisposed("database")
		}
		if db.refs.CompareAndSwap(c, c+1) {
			break
		}
	}

	var handle connHandle
	if lib.connect(db.handle, &handle) != stateSuccess {
		db.release()
		return nil, errorf(ErrOpen, "connect to %s", db.path)
	}
	return &Connection{
		db:     db,
		handle: handle,
		guard:  NewGuard("connection"),
	}, nil
}

// Close drops the Database's own reference. The native handle is released
// once every connection has also closed. Close is idempotent.
func (db *Database) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.release()
	return nil
}

func (db *Database) release() {
	if db.refs.Add(-1) == 0 {
		lib.close(&db.handle)
		logger().Info("database closed", zap.String("path", db.path))
	}
}
