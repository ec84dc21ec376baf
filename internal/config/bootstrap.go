package config

import (
	"fmt"
	"os"
)

const dirPerm = 0o755

// BootstrapError reports a directory that could not be created.
type BootstrapError struct {
	Role string
	Path string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("create %s %q: %v", e.Role, e.Path, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// EnsureDirectories creates every directory role in layout, including missing
// parents. Existing directories are left untouched, so repeated calls are no-ops.
// A path component that exists as a non-directory is an error.
func EnsureDirectories(layout PathLayout) error {
	for _, dir := range layout.Directories() {
		if err := os.MkdirAll(dir.Path, dirPerm); err != nil {
			return &BootstrapError{Role: dir.Role, Path: dir.Path, Err: err}
		}
	}
	return nil
}
