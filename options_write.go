package audiotag

// SaveOption configures behavior when saving.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	_, err := t.Save(
//	    audiotag.WithBackup(".bak"),
//	    audiotag.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for saving files.
type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Keep original modification time
}

// defaultSaveOptions returns the default configuration for saving.
func defaultSaveOptions() *saveOptions {
	return &saveOptions{}
}

// WithBackup keeps the previous file before replacing it.
//
// The backup file will have the specified suffix appended to the target
// filename. For example, WithBackup(".bak") will create "song.mp3.bak"
// before replacing "song.mp3". It has no effect on buffer saves.
//
// If the backup file already exists, it will be overwritten.
//
// Example:
//
//	_, err := t.Save(audiotag.WithBackup(".bak"))
//	// Original file preserved as song.mp3.bak
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the serialized file before committing it.
//
// The written bytes are parsed again and every field, the ReplayGain
// block, and the picture count are compared with the handle. A mismatch
// fails the save with ErrValidation; for path saves the target is left
// untouched.
//
// Example:
//
//	_, err := t.Save(audiotag.WithValidation())
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the target's modification time.
//
// By default, saving updates the file's modification time to the current
// time. This option preserves the original modification time.
//
// Example:
//
//	_, err := t.Save(audiotag.WithPreserveModTime())
//	// File modification time unchanged
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
