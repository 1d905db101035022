package audiotag

import (
	"errors"
	"fmt"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

var (
	// ErrNotLoaded is wrapped by every NotLoadedError.
	ErrNotLoaded = errors.New("no file loaded")

	// ErrHandleInUse is the cause of a LoadError on a handle that is
	// already loaded.
	ErrHandleInUse = errors.New("handle already holds a file")

	// ErrDisposed is the cause of a LoadError on a disposed handle.
	ErrDisposed = errors.New("handle is disposed")

	// ErrNoPath is the cause of an IOError when a path save is requested
	// on a handle loaded from a buffer.
	ErrNoPath = errors.New("handle was loaded from a buffer and has no path")

	// ErrNoTag is the cause of a LoadError when WithRequireTag is set and
	// the file carries no tag.
	ErrNoTag = registry.ErrNoTag

	// ErrValidation is wrapped when WithValidation finds a field that did
	// not survive the save.
	ErrValidation = errors.New("saved file does not match")
)

// NotLoadedError is returned by every accessor while the handle is not
// Loaded, before the first load and after Dispose alike.
type NotLoadedError struct {
	Op string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrNotLoaded)
}

func (e *NotLoadedError) Unwrap() error { return ErrNotLoaded }

// LoadError reports a failed LoadPath or LoadBuffer. The handle stays
// Empty. Err is the cause: an *os.PathError, *UnsupportedFormatError,
// *CorruptedFileError, ErrNoTag, ErrHandleInUse or ErrDisposed.
type LoadError struct {
	Path string // empty for buffers
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load buffer: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure during a path save.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
type CorruptedFileError = types.CorruptedFileError

// InvalidValueError is an alias to types.InvalidValueError.
type InvalidValueError = types.InvalidValueError

// Warning is an alias to types.Warning.
type Warning = types.Warning
