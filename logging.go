package duckvec

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// The package is silent by default. Logging happens only on slow paths:
// library discovery, database open/close, disposal misuse. Row reads and
// chunk pulls never log.
var pkgLogger atomic.Pointer[zap.Logger]

// SetLogger installs a logger for the package's slow-path diagnostics.
// Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}
