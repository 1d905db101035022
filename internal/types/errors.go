package types

import "fmt"

// UnsupportedFormatError is returned when no codec recognises the input.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unsupported format: %s", e.Reason)
	}
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("corrupted data at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// InvalidValueError is returned when a value does not fit a field's
// semantic type or the active format's storage limits.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Field, e.Reason)
}

// Warning represents a non-fatal issue.
//
// Warnings are collected while loading a file and while writing pictures
// to a format that cannot hold all of them. Examples include:
//   - A truncated comment block
//   - Corrupted artwork that was skipped
//   - Pictures dropped because the format limits their number
type Warning struct {
	// Stage where the warning occurred
	Stage string // "metadata", "technical", "pictures"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
