//go:build !windows

package duckvec

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// openDynamicLibrary loads a shared library on Unix systems using purego.
func openDynamicLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func platformLibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libduckdb.dylib"
	}
	return "libduckdb.so"
}
