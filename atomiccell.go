package duckvec

import (
	"reflect"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// AtomicCell publishes a small fixed-layout value between goroutines without
// locks: readers never observe a torn mixture of two writes, and never block
// writers. It is a seqlock: an even/odd version counter claims write
// exclusivity, and readers retry when the version moves under them. The
// value is copied word-by-word with atomic loads and stores, which keeps the
// pattern visible to the race detector as what it is.
//
// T must not contain pointers; the words are opaque to the garbage
// collector. NewAtomicCell panics otherwise.
type AtomicCell[T any] struct {
	seq   atomic.Uint64
	words []atomic.Uint64
}

// NewAtomicCell creates a cell holding the zero value of T.
func NewAtomicCell[T any]() *AtomicCell[T] {
	var zero T
	if typeHasPointers(reflect.TypeOf(&zero).Elem()) {
		panic("duckvec: AtomicCell value type must not contain pointers")
	}
	n := (unsafe.Sizeof(zero) + 7) / 8
	if n == 0 {
		n = 1
	}
	return &AtomicCell[T]{words: make([]atomic.Uint64, n)}
}

// Store publishes v. Concurrent writers serialize on the version counter.
func (c *AtomicCell[T]) Store(v T) {
	buf := make([]uint64, len(c.words))
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*8)
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)))

	spins := 0
	for {
		s := c.seq.Load()
		if s&1 != 0 {
			// Another writer holds the cell.
			backoff(&spins)
			continue
		}
		if !c.seq.CompareAndSwap(s, s+1) {
			continue
		}
		for i := range c.words {
			c.words[i].Store(buf[i])
		}
		c.seq.Store(s + 2)
		return
	}
}

// Load returns the most recently published value.
func (c *AtomicCell[T]) Load() T {
	buf := make([]uint64, len(c.words))
	spins := 0
	for {
		s := c.seq.Load()
		if s&1 != 0 {
			// Write in progress; the speculative copy would be torn.
			backoff(&spins)
			continue
		}
		for i := range c.words {
			buf[i] = c.words[i].Load()
		}
		if c.seq.Load() == s {
			var v T
			dst := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
			copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*8))
			return v
		}
		backoff(&spins)
	}
}

// backoff yields to the scheduler after a burst of failed spins so readers
// cannot starve an in-progress writer on a loaded machine.
func backoff(spins *int) {
	*spins++
	if *spins%16 == 0 {
		runtime.Gosched()
	}
}

func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
