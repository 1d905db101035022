package audiotag

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/simonhull/audiotag/internal/registry"
)

// Save writes the current tag state.
//
// For a handle loaded from a path, the file is replaced atomically: the new
// contents go to a temporary file in the same directory, which is synced
// and renamed over the original. If any step fails, the original file
// remains unchanged. Save then returns nil bytes.
//
// For a handle loaded from a buffer, Save returns the serialized bytes,
// which also become the handle's Buffer.
//
// Options can be provided to customize save behavior:
//
//	_, err := t.Save(
//	    audiotag.WithBackup(".bak"),
//	    audiotag.WithValidation(),
//	)
func (t *Tagger) Save(opts ...SaveOption) ([]byte, error) {
	if err := t.loaded("save"); err != nil {
		return nil, err
	}
	if t.origin == OriginBuffer {
		return t.saveBuffer(saveOptionsOf(opts))
	}
	return nil, t.savePath(t.path, saveOptionsOf(opts))
}

// SaveAs writes the current tag state to path, atomically, leaving the
// loaded file untouched. The handle stays bound to the file it was loaded
// from; saving to that same path is equivalent to Save.
//
// Handles loaded from a buffer have no filesystem origin and fail with an
// IOError wrapping ErrNoPath.
func (t *Tagger) SaveAs(path string, opts ...SaveOption) error {
	if err := t.loaded("save as"); err != nil {
		return err
	}
	if t.origin != OriginPath {
		return &IOError{Op: "save", Path: path, Err: ErrNoPath}
	}
	return t.savePath(path, saveOptionsOf(opts))
}

// Buffer returns the bytes of a buffer-origin handle as of the last load
// or save. Path-origin handles return an empty, non-nil slice.
func (t *Tagger) Buffer() ([]byte, error) {
	if err := t.loaded("buffer"); err != nil {
		return nil, err
	}
	if t.origin != OriginBuffer {
		return []byte{}, nil
	}
	return bytes.Clone(t.buf), nil
}

func saveOptionsOf(opts []SaveOption) *saveOptions {
	o := defaultSaveOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (t *Tagger) saveBuffer(o *saveOptions) ([]byte, error) {
	var out bytes.Buffer
	if err := t.adapter.Serialize(&out); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	data := out.Bytes()

	opened, err := registry.Open(bytes.NewReader(data), int64(len(data)), "buffer", registry.OpenOptions{})
	if err != nil {
		return nil, fmt.Errorf("reload saved buffer: %w", err)
	}
	if o.validate {
		if err := t.verify(opened); err != nil {
			return nil, err
		}
	}

	t.buf = data
	t.bind(bytes.NewReader(data), int64(len(data)), opened)
	t.opts.logger.Debug("saved", zap.Int("size", len(data)), zap.Stringer("format", t.format), zap.Stringer("origin", t.origin))
	return bytes.Clone(data), nil
}

func (t *Tagger) savePath(target string, o *saveOptions) error { //nolint:gocyclo // Atomic file operations require sequential steps
	inPlace := filepath.Clean(target) == filepath.Clean(t.path)

	// The replacement takes the target's permissions, or the loaded file's
	// when the target is new.
	origInfo, statErr := os.Stat(target)
	mode := os.FileMode(0o644)
	switch {
	case statErr == nil:
		mode = origInfo.Mode().Perm()
	case t.file != nil:
		if info, err := t.file.Stat(); err == nil {
			mode = info.Mode().Perm()
		}
	}

	// Create temp file in same directory as output (for atomic rename)
	tempFile, err := os.CreateTemp(filepath.Dir(target), ".audiotag-*.tmp")
	if err != nil {
		return &IOError{Op: "create temp file", Path: target, Err: err}
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if err := tempFile.Chmod(mode); err != nil {
		return &IOError{Op: "chmod", Path: tempPath, Err: err}
	}

	if err := t.adapter.Serialize(tempFile); err != nil {
		return fmt.Errorf("save %s: %w", target, err)
	}
	if err := tempFile.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tempPath, Err: err}
	}

	if o.validate {
		info, err := tempFile.Stat()
		if err != nil {
			return &IOError{Op: "stat", Path: tempPath, Err: err}
		}
		opened, err := registry.Open(tempFile, info.Size(), target, registry.OpenOptions{})
		if err != nil {
			return fmt.Errorf("%w: reopen: %w", ErrValidation, err)
		}
		if err := t.verify(opened); err != nil {
			return err
		}
	}

	if err := tempFile.Close(); err != nil {
		return &IOError{Op: "close", Path: tempPath, Err: err}
	}

	// Rename original to backup before replace
	if o.backupSuffix != "" {
		if _, err := os.Stat(target); err == nil {
			if err := os.Rename(target, target+o.backupSuffix); err != nil {
				return &IOError{Op: "backup", Path: target, Err: err}
			}
		}
	}

	if err := os.Rename(tempPath, target); err != nil {
		return &IOError{Op: "rename", Path: target, Err: err}
	}
	success = true

	if o.preserveModTime && statErr == nil {
		_ = os.Chtimes(target, origInfo.ModTime(), origInfo.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}
	t.opts.logger.Debug("saved", zap.String("path", target), zap.Stringer("format", t.format), zap.Stringer("origin", t.origin))

	if inPlace {
		t.rebind(target)
	}
	return nil
}

// rebind reopens the handle on the file just written so later saves read
// from the new contents. Failure keeps the previous binding, which still
// holds the pre-save bytes.
func (t *Tagger) rebind(path string) {
	f, err := os.Open(path)
	if err != nil {
		t.opts.logger.Warn("reopen after save", zap.String("path", path), zap.Error(err))
		return
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		t.opts.logger.Warn("reopen after save", zap.String("path", path), zap.Error(err))
		return
	}
	opened, err := registry.Open(f, info.Size(), path, registry.OpenOptions{})
	if err != nil {
		f.Close()
		t.opts.logger.Warn("reopen after save", zap.String("path", path), zap.Error(err))
		return
	}
	if t.file != nil {
		_ = t.file.Close() //nolint:errcheck // Read-only handle
	}
	t.file = f
	t.bind(f, info.Size(), opened)
}

// verify compares a reparsed save with the handle's tag state.
func (t *Tagger) verify(opened *registry.Opened) error {
	got := opened.Adapter
	for _, f := range Fields() {
		if !t.adapter.Supports(f) {
			continue
		}
		want := t.adapter.ReadField(f)
		if v := got.ReadField(f); v != want {
			return fmt.Errorf("%w: %s is %v, want %v", ErrValidation, f, v, want)
		}
	}

	if want, have := len(t.adapter.Pictures()), len(got.Pictures()); want != have {
		return fmt.Errorf("%w: %d pictures, want %d", ErrValidation, have, want)
	}

	want, have := t.adapter.ReplayGain(), got.ReplayGain()
	for i, e := range want.Entries() {
		h := have.Entries()[i]
		tolerance := 5e-7
		if e.Gain {
			tolerance = 5e-3
		}
		if !gainEqual(e.Value, h.Value, tolerance) {
			return fmt.Errorf("%w: %s differs", ErrValidation, e.Key)
		}
	}
	return nil
}

func gainEqual(a, b *float64, tolerance float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) <= tolerance
}
