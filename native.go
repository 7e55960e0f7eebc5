package duckvec

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"
)

// Opaque engine handles. Never dereferenced; always mediated by a Guard.
type (
	dbHandle          uintptr // duckdb_database
	connHandle        uintptr // duckdb_connection
	stmtHandle        uintptr // duckdb_prepared_statement
	chunkHandle       uintptr // duckdb_data_chunk
	vectorHandle      uintptr // duckdb_vector
	logicalTypeHandle uintptr // duckdb_logical_type
	configHandle      uintptr // duckdb_config
	appenderHandle    uintptr // duckdb_appender
)

// duckdb_state return codes.
const (
	stateSuccess int32 = 0
	stateError   int32 = 1
)

// apiResult mirrors the duckdb_result struct layout. The engine owns
// internalData; the leading fields are dead weight kept for ABI layout only.
type apiResult struct {
	deprecatedColumnCount  uint64
	deprecatedRowCount     uint64
	deprecatedRowsChanged  uint64
	deprecatedColumns      unsafe.Pointer
	deprecatedErrorMessage unsafe.Pointer
	internalData           unsafe.Pointer
}

// api holds every libduckdb entry point the package calls, bound once at
// load time through purego.RegisterLibFunc.
type api struct {
	// lifecycle
	openExt       func(path string, out *dbHandle, cfg configHandle, errMsg *unsafe.Pointer) int32
	close         func(db *dbHandle)
	createConfig  func(out *configHandle) int32
	setConfig     func(cfg configHandle, name, option string) int32
	destroyConfig func(cfg *configHandle)
	connect       func(db dbHandle, out *connHandle) int32
	disconnect    func(conn *connHandle)
	interrupt     func(conn connHandle)
	version       func() string
	free          func(p unsafe.Pointer)

	// query and result metadata
	query             func(conn connHandle, sql string, out *apiResult) int32
	destroyResult     func(res *apiResult)
	resultError       func(res *apiResult) string
	columnCount       func(res *apiResult) uint64
	columnName        func(res *apiResult, col uint64) string
	columnLogicalType func(res *apiResult, col uint64) logicalTypeHandle
	rowsChanged       func(res *apiResult) uint64
	fetchChunk        func(res apiResult) chunkHandle

	// chunks and vectors
	chunkSize      func(chunk chunkHandle) uint64
	chunkVector    func(chunk chunkHandle, col uint64) vectorHandle
	destroyChunk   func(chunk *chunkHandle)
	vectorData     func(vec vectorHandle) unsafe.Pointer
	vectorValidity func(vec vectorHandle) unsafe.Pointer
	listChild      func(vec vectorHandle) vectorHandle
	listSize       func(vec vectorHandle) uint64
	structChild    func(vec vectorHandle, idx uint64) vectorHandle

	// logical type introspection
	typeID              func(lt logicalTypeHandle) uint32
	destroyLogicalType  func(lt *logicalTypeHandle)
	decimalWidth        func(lt logicalTypeHandle) uint8
	decimalScale        func(lt logicalTypeHandle) uint8
	decimalInternalType func(lt logicalTypeHandle) uint32
	enumInternalType    func(lt logicalTypeHandle) uint32
	enumDictSize        func(lt logicalTypeHandle) uint32
	enumDictValue       func(lt logicalTypeHandle, idx uint64) unsafe.Pointer
	listChildType       func(lt logicalTypeHandle) logicalTypeHandle
	structChildCount    func(lt logicalTypeHandle) uint64
	structChildName     func(lt logicalTypeHandle, idx uint64) unsafe.Pointer
	structChildType     func(lt logicalTypeHandle, idx uint64) logicalTypeHandle

	// prepared statements
	prepare         func(conn connHandle, sql string, out *stmtHandle) int32
	destroyPrepare  func(stmt *stmtHandle)
	prepareError    func(stmt stmtHandle) string
	nparams         func(stmt stmtHandle) uint64
	bindBoolean     func(stmt stmtHandle, idx uint64, v bool) int32
	bindInt8        func(stmt stmtHandle, idx uint64, v int8) int32
	bindInt16       func(stmt stmtHandle, idx uint64, v int16) int32
	bindInt32       func(stmt stmtHandle, idx uint64, v int32) int32
	bindInt64       func(stmt stmtHandle, idx uint64, v int64) int32
	bindUint8       func(stmt stmtHandle, idx uint64, v uint8) int32
	bindUint16      func(stmt stmtHandle, idx uint64, v uint16) int32
	bindUint32      func(stmt stmtHandle, idx uint64, v uint32) int32
	bindUint64      func(stmt stmtHandle, idx uint64, v uint64) int32
	bindFloat       func(stmt stmtHandle, idx uint64, v float32) int32
	bindDouble      func(stmt stmtHandle, idx uint64, v float64) int32
	bindVarchar     func(stmt stmtHandle, idx uint64, v string) int32
	bindBlob        func(stmt stmtHandle, idx uint64, data unsafe.Pointer, length uint64) int32
	bindNull        func(stmt stmtHandle, idx uint64) int32
	bindDate        func(stmt stmtHandle, idx uint64, days int32) int32
	bindTimestamp   func(stmt stmtHandle, idx uint64, micros int64) int32
	executePrepared func(stmt stmtHandle, out *apiResult) int32

	// bulk append
	appenderCreate      func(conn connHandle, schema, table string, out *appenderHandle) int32
	appenderError       func(app appenderHandle) string
	appenderColumnCount func(app appenderHandle) uint64
	appenderEndRow      func(app appenderHandle) int32
	appenderFlush       func(app appenderHandle) int32
	appenderDestroy     func(app *appenderHandle) int32
	appendBool          func(app appenderHandle, v bool) int32
	appendInt8          func(app appenderHandle, v int8) int32
	appendInt16         func(app appenderHandle, v int16) int32
	appendInt32         func(app appenderHandle, v int32) int32
	appendInt64         func(app appenderHandle, v int64) int32
	appendUint8         func(app appenderHandle, v uint8) int32
	appendUint16        func(app appenderHandle, v uint16) int32
	appendUint32        func(app appenderHandle, v uint32) int32
	appendUint64        func(app appenderHandle, v uint64) int32
	appendFloat         func(app appenderHandle, v float32) int32
	appendDouble        func(app appenderHandle, v float64) int32
	appendVarchar       func(app appenderHandle, v string) int32
	appendBlob          func(app appenderHandle, data unsafe.Pointer, length uint64) int32
	appendNull          func(app appenderHandle) int32
	appendDate          func(app appenderHandle, days int32) int32
	appendTimestamp     func(app appenderHandle, micros int64) int32
}

var (
	libOnce   sync.Once
	libLoaded bool
	libError  error
	libPath   string
	lib       api
)

// LibraryAvailable reports whether libduckdb was found and loaded.
func LibraryAvailable() bool {
	loadLibrary()
	return libLoaded
}

// LibraryError returns the error from loading libduckdb, if any.
func LibraryError() error {
	loadLibrary()
	return libError
}

// LibraryPath returns the path or soname the engine was loaded from.
func LibraryPath() string {
	loadLibrary()
	return libPath
}

func loadLibrary() {
	libOnce.Do(func() {
		for _, candidate := range libraryCandidates() {
			handle, err := openDynamicLibrary(candidate)
			if err != nil {
				continue
			}
			libPath = candidate
			registerAPI(handle)
			libLoaded = true
			logger().Info("loaded libduckdb",
				zap.String("path", candidate),
				zap.String("platform", runtime.GOOS+"/"+runtime.GOARCH))
			return
		}
		libError = errorf(ErrLibrary,
			"libduckdb not found (set %s to the library path)", libraryPathEnv)
		logger().Warn("libduckdb not found", zap.Error(libError))
	})
}

// libraryPathEnv points at a specific libduckdb to load, bypassing search.
const libraryPathEnv = "DUCKDB_LIBRARY_PATH"

// libraryCandidates lists paths to try in order: explicit override, the
// executable's directory, the working directory, then the platform soname
// resolved through the system loader's own search path.
func libraryCandidates() []string {
	name := platformLibraryName()

	var candidates []string
	if p := os.Getenv(libraryPathEnv); p != "" {
		candidates = append(candidates, p)
	}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), name))
	}
	candidates = append(candidates, filepath.Join(".", name), name)
	return candidates
}

func registerAPI(handle uintptr) {
	register := func(fptr any, name string) {
		purego.RegisterLibFunc(fptr, handle, name)
	}

	register(&lib.openExt, "duckdb_open_ext")
	register(&lib.close, "duckdb_close")
	register(&lib.createConfig, "duckdb_create_config")
	register(&lib.setConfig, "duckdb_set_config")
	register(&lib.destroyConfig, "duckdb_destroy_config")
	register(&lib.connect, "duckdb_connect")
	register(&lib.disconnect, "duckdb_disconnect")
	register(&lib.interrupt, "duckdb_interrupt")
	register(&lib.version, "duckdb_library_version")
	register(&lib.free, "duckdb_free")

	register(&lib.query, "duckdb_query")
	register(&lib.destroyResult, "duckdb_destroy_result")
	register(&lib.resultError, "duckdb_result_error")
	register(&lib.columnCount, "duckdb_column_count")
	register(&lib.columnName, "duckdb_column_name")
	register(&lib.columnLogicalType, "duckdb_column_logical_type")
	register(&lib.rowsChanged, "duckdb_rows_changed")
	register(&lib.fetchChunk, "duckdb_fetch_chunk")

	register(&lib.chunkSize, "duckdb_data_chunk_get_size")
	register(&lib.chunkVector, "duckdb_data_chunk_get_vector")
	register(&lib.destroyChunk, "duckdb_destroy_data_chunk")
	register(&lib.vectorData, "duckdb_vector_get_data")
	register(&lib.vectorValidity, "duckdb_vector_get_validity")
	register(&lib.listChild, "duckdb_list_vector_get_child")
	register(&lib.listSize, "duckdb_list_vector_get_size")
	register(&lib.structChild, "duckdb_struct_vector_get_child")

	register(&lib.typeID, "duckdb_get_type_id")
	register(&lib.destroyLogicalType, "duckdb_destroy_logical_type")
	register(&lib.decimalWidth, "duckdb_decimal_width")
	register(&lib.decimalScale, "duckdb_decimal_scale")
	register(&lib.decimalInternalType, "duckdb_decimal_internal_type")
	register(&lib.enumInternalType, "duckdb_enum_internal_type")
	register(&lib.enumDictSize, "duckdb_enum_dictionary_size")
	register(&lib.enumDictValue, "duckdb_enum_dictionary_value")
	register(&lib.listChildType, "duckdb_list_type_child_type")
	register(&lib.structChildCount, "duckdb_struct_type_child_count")
	register(&lib.structChildName, "duckdb_struct_type_child_name")
	register(&lib.structChildType, "duckdb_struct_type_child_type")

	register(&lib.prepare, "duckdb_prepare")
	register(&lib.destroyPrepare, "duckdb_destroy_prepare")
	register(&lib.prepareError, "duckdb_prepare_error")
	register(&lib.nparams, "duckdb_nparams")
	register(&lib.bindBoolean, "duckdb_bind_boolean")
	register(&lib.bindInt8, "duckdb_bind_int8")
	register(&lib.bindInt16, "duckdb_bind_int16")
	register(&lib.bindInt32, "duckdb_bind_int32")
	register(&lib.bindInt64, "duckdb_bind_int64")
	register(&lib.bindUint8, "duckdb_bind_uint8")
	register(&lib.bindUint16, "duckdb_bind_uint16")
	register(&lib.bindUint32, "duckdb_bind_uint32")
	register(&lib.bindUint64, "duckdb_bind_uint64")
	register(&lib.bindFloat, "duckdb_bind_float")
	register(&lib.bindDouble, "duckdb_bind_double")
	register(&lib.bindVarchar, "duckdb_bind_varchar")
	register(&lib.bindBlob, "duckdb_bind_blob")
	register(&lib.bindNull, "duckdb_bind_null")
	register(&lib.bindDate, "duckdb_bind_date")
	register(&lib.bindTimestamp, "duckdb_bind_timestamp")
	register(&lib.executePrepared, "duckdb_execute_prepared")

	register(&lib.appenderCreate, "duckdb_appender_create")
	register(&lib.appenderError, "duckdb_appender_error")
	register(&lib.appenderColumnCount, "duckdb_appender_column_count")
	register(&lib.appenderEndRow, "duckdb_appender_end_row")
	register(&lib.appenderFlush, "duckdb_appender_flush")
	register(&lib.appenderDestroy, "duckdb_appender_destroy")
	register(&lib.appendBool, "duckdb_append_bool")
	register(&lib.appendInt8, "duckdb_append_int8")
	register(&lib.appendInt16, "duckdb_append_int16")
	register(&lib.appendInt32, "duckdb_append_int32")
	register(&lib.appendInt64, "duckdb_append_int64")
	register(&lib.appendUint8, "duckdb_append_uint8")
	register(&lib.appendUint16, "duckdb_append_uint16")
	register(&lib.appendUint32, "duckdb_append_uint32")
	register(&lib.appendUint64, "duckdb_append_uint64")
	register(&lib.appendFloat, "duckdb_append_float")
	register(&lib.appendDouble, "duckdb_append_double")
	register(&lib.appendVarchar, "duckdb_append_varchar")
	register(&lib.appendBlob, "duckdb_append_blob")
	register(&lib.appendNull, "duckdb_append_null")
	register(&lib.appendDate, "duckdb_append_date")
	register(&lib.appendTimestamp, "duckdb_append_timestamp")
}

// requireLibrary is the entry check for every operation that reaches the
// engine.
func requireLibrary() error {
	loadLibrary()
	if !libLoaded {
		return libError
	}
	return nil
}

// goString copies a NUL-terminated C string into Go memory.
func goString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// takeString copies an engine-allocated C string and releases it through
// duckdb_free.
func takeString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	s := goString(p)
	lib.free(p)
	return s
}
