// Package duckvec is a pure-Go client for the DuckDB embedded database,
// focused on safe zero-copy access to the engine's columnar memory.
//
// The package binds the official libduckdb C ABI through dynamic loading
// (github.com/ebitengine/purego), so no CGO toolchain is needed. Query
// results are read directly out of the engine's vectors: a ResultCursor
// yields one Chunk at a time, each Chunk exposes per-column Vectors, and a
// resolved Converter turns a vector row into a Go value of the caller's
// chosen type.
//
// Every native handle is mediated by a Guard, which turns "this handle is
// still alive" into a checked permission held for the duration of a call.
// Borrowed views (Chunk, Vector) carry generation stamps and fail loudly if
// touched after their chunk is released; they must never be stored past the
// callback that received them. Use CapturedChunk when a chunk has to outlive
// the pull that produced it.
package duckvec
