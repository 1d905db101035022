package audiotag

import "go.uber.org/zap"

// Option configures a Tagger.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	t := audiotag.New(
//	    audiotag.WithStrictParsing(),
//	    audiotag.WithLogger(zap.L()),
//	)
type Option func(*options)

// options holds configuration for loading files.
type options struct {
	strictParsing  bool        // Fail on any warning
	requireTag     bool        // Fail when the file has no tag
	maxPictureSize int         // Maximum picture size in bytes (0 = no limit)
	logger         *zap.Logger // Never nil
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger: zap.NewNop(),
	}
}

// WithStrictParsing treats any load warning as a fatal error.
//
// By default, loading continues when it encounters issues like a
// malformed tag item or an unreadable picture, and the issues are
// reported by Warnings. With strict parsing enabled, the first warning
// fails the load with a LoadError.
//
// Example:
//
//	t := audiotag.New(audiotag.WithStrictParsing())
//	err := t.LoadPath("song.flac")
//	// err != nil if ANY issue is encountered
func WithStrictParsing() Option {
	return func(o *options) {
		o.strictParsing = true
	}
}

// WithRequireTag fails the load with ErrNoTag when the file carries no
// tag of any supported scheme.
//
// By default, such a file is given an empty tag of the container's
// preferred scheme, which is written on the next save.
func WithRequireTag() Option {
	return func(o *options) {
		o.requireTag = true
	}
}

// WithMaxPictureSize hides pictures larger than n bytes.
//
// Oversized pictures are reported as warnings at load time and left out
// of Pictures. They stay in the file until SetPictures replaces the
// picture list.
//
// Default is 0 (no limit).
//
// Example:
//
//	// Ignore pictures over 10MB
//	t := audiotag.New(audiotag.WithMaxPictureSize(10 * 1024 * 1024))
func WithMaxPictureSize(n int) Option {
	return func(o *options) {
		o.maxPictureSize = n
	}
}

// WithLogger sets the logger for load, save, and dispose events. Soft
// diagnostics are logged at warn level. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
