//go:build windows

package duckvec

import (
	"syscall"
)

// openDynamicLibrary loads a shared library on Windows systems.
func openDynamicLibrary(path string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

func platformLibraryName() string {
	return "duckdb.dll"
}
