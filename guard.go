package duckvec

import (
	"sync/atomic"
)

// guardDisposed is the sentinel counter state. Once set, no Enter can
// succeed; only TryResurrect transitions the guard back to live.
const guardDisposed = int64(-1)

// Guard is a reference-counting access guard for a native handle. Entering
// atomically increments the usage counter and fails once the guard is
// disposed, so a handle can never be used after release. Re-entrant Enter
// from the same caller is allowed; the counter simply increments again,
// which makes scopes composable across nested calls.
//
// Counter invariant: > 0 active users, 0 idle (disposable), < 0 disposed.
// All transitions are CAS or fetch-and-add.
type Guard struct {
	count atomic.Int64
	name  string
}

// NewGuard creates a live guard. The name appears in error messages.
func NewGuard(name string) *Guard {
	return &Guard{name: name}
}

// Enter acquires a usage scope. It fails with a disposed error if the guard
// has been disposed. The returned Scope must be released on every exit path.
func (g *Guard) Enter() (Scope, error) {
	for {
		c := g.count.Load()
		if c < 0 {
			return Scope{}, errDisposed(g.name)
		}
		if g.count.CompareAndSwap(c, c+1) {
			return Scope{g: g}, nil
		}
	}
}

// PrepareDispose atomically transitions the guard from idle to disposed.
// It returns false if the guard is already disposed, and fails loudly with
// a concurrency violation if any scope is still active: disposal while in
// use is a programming error at the call site, not a race to resolve by
// waiting.
func (g *Guard) PrepareDispose() (bool, error) {
	for {
		c := g.count.Load()
		if c < 0 {
			return false, nil
		}
		if c > 0 {
			return false, errorf(ErrConcurrencyKind,
				"%s disposed while in use by %d active scope(s)", g.name, c)
		}
		if g.count.CompareAndSwap(0, guardDisposed) {
			return true, nil
		}
	}
}

// TryResurrect transitions a disposed guard back to live with one active
// scope, letting the caller rebuild the underlying handle before releasing.
// It reports false if the guard is not currently disposed. This is the
// explicit reopen-in-place transition; normal Enter never resurrects.
func (g *Guard) TryResurrect() (Scope, bool) {
	if g.count.CompareAndSwap(guardDisposed, 1) {
		return Scope{g: g}, true
	}
	return Scope{}, false
}

// Disposed reports whether the guard is in the disposed state.
func (g *Guard) Disposed() bool {
	return g.count.Load() < 0
}

// Scope is a held usage permission on a Guard. The zero Scope is inert.
type Scope struct {
	g *Guard
}

// Release returns the permission. Releasing an already-released or zero
// Scope is a no-op.
func (s *Scope) Release() {
	if s.g == nil {
		return
	}
	s.g.count.Add(-1)
	s.g = nil
}

// exclusiveTokens issues caller-identifying tokens for ExclusiveGuard.
// Token 0 means free; guardDisposed is reserved for the disposed state.
var exclusiveTokens atomic.Int64

func nextExclusiveToken() int64 {
	for {
		t := exclusiveTokens.Add(1)
		if t != 0 && t != guardDisposed {
			return t
		}
	}
}

// ExclusiveGuard is the stricter variant of Guard for native objects whose
// every operation mutates shared state. Enter fails while any other caller
// holds the guard, and, deliberately, also when the same caller re-enters:
// each Enter issues a fresh token, so nested acquisition surfaces as a
// concurrency violation instead of silent re-entrancy.
//
// Internally a tri-state integer: 0 free, a nonzero token held, or the
// disposed sentinel.
type ExclusiveGuard struct {
	state atomic.Int64
	name  string
}

// NewExclusiveGuard creates a live exclusive guard.
func NewExclusiveGuard(name string) *ExclusiveGuard {
	return &ExclusiveGuard{name: name}
}

// Enter acquires exclusive access or fails: with a disposed error if the
// guard has been disposed, with a concurrency violation if it is held.
func (g *ExclusiveGuard) Enter() (ExclusiveScope, error) {
	token := nextExclusiveToken()
	for {
		c := g.state.Load()
		if c == guardDisposed {
			return ExclusiveScope{}, errDisposed(g.name)
		}
		if c != 0 {
			return ExclusiveScope{}, errorf(ErrConcurrencyKind,
				"%s is held by another caller", g.name)
		}
		if g.state.CompareAndSwap(0, token) {
			return ExclusiveScope{g: g, token: token}, nil
		}
	}
}

// PrepareDispose has the same semantics as Guard.PrepareDispose.
func (g *ExclusiveGuard) PrepareDispose() (bool, error) {
	for {
		c := g.state.Load()
		if c == guardDisposed {
			return false, nil
		}
		if c != 0 {
			return false, errorf(ErrConcurrencyKind,
				"%s disposed while held", g.name)
		}
		if g.state.CompareAndSwap(0, guardDisposed) {
			return true, nil
		}
	}
}

// Disposed reports whether the guard is in the disposed state.
func (g *ExclusiveGuard) Disposed() bool {
	return g.state.Load() == guardDisposed
}

// ExclusiveScope is a held exclusive permission. The zero value is inert.
type ExclusiveScope struct {
	g     *ExclusiveGuard
	token int64
}

// Release frees the guard. The atomic store publishes all of the holder's
// writes to the next acquirer.
func (s *ExclusiveScope) Release() {
	if s.g == nil {
		return
	}
	s.g.state.CompareAndSwap(s.token, 0)
	s.g = nil
}
