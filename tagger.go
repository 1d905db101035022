package audiotag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/dhowden/tag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/audiotag/internal/ape"
	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

type state int

const (
	stateEmpty state = iota
	stateLoaded
	stateDisposed
)

// Origin records where a loaded handle's bytes came from.
type Origin int

const (
	// OriginNone is the origin of an Empty or Disposed handle.
	OriginNone Origin = iota
	// OriginPath handles save back to a file.
	OriginPath
	// OriginBuffer handles save to memory.
	OriginBuffer
)

func (o Origin) String() string {
	switch o {
	case OriginPath:
		return "path"
	case OriginBuffer:
		return "buffer"
	default:
		return "none"
	}
}

// Tagger is a handle on one tagged audio file.
//
// A Tagger starts Empty, becomes Loaded through LoadPath or LoadBuffer,
// and ends Disposed. Every accessor fails with NotLoadedError unless the
// handle is Loaded. A Tagger is not safe for concurrent use.
//
// Always call Dispose when done to release the open file:
//
//	t := audiotag.New()
//	defer t.Dispose()
//	if err := t.LoadPath("song.flac"); err != nil {
//		return err
//	}
//	title, _ := t.Title()
type Tagger struct {
	opts *options

	state  state
	origin Origin
	path   string
	file   *os.File // path origin only
	buf    []byte   // buffer origin only
	reader io.ReaderAt
	size   int64

	format   Format
	adapter  registry.Adapter
	props    Properties
	warnings []Warning
	dirty    bool
}

// New creates an Empty handle.
func New(opts ...Option) *Tagger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Tagger{opts: o}
}

// LoadPath opens the file at path and parses its tags. The file stays open
// until Dispose.
//
// On failure the handle remains Empty and the error is a *LoadError.
func (t *Tagger) LoadPath(path string) error {
	if err := t.checkEmpty(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return &LoadError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	if err := t.load(f, info.Size(), path); err != nil {
		f.Close()
		return &LoadError{Path: path, Err: err}
	}
	t.origin, t.path, t.file = OriginPath, path, f
	t.opts.logger.Debug("loaded", zap.String("path", path), zap.Stringer("format", t.format), zap.Stringer("origin", t.origin))
	return nil
}

// LoadBuffer parses tags from data. The bytes are copied; the caller may
// reuse data afterwards.
//
// On failure the handle remains Empty and the error is a *LoadError.
func (t *Tagger) LoadBuffer(data []byte) error {
	if err := t.checkEmpty(""); err != nil {
		return err
	}

	buf := slices.Clone(data)
	if err := t.load(bytes.NewReader(buf), int64(len(buf)), "buffer"); err != nil {
		return &LoadError{Err: err}
	}
	t.origin, t.buf = OriginBuffer, buf
	t.opts.logger.Debug("loaded", zap.Int("size", len(buf)), zap.Stringer("format", t.format), zap.Stringer("origin", t.origin))
	return nil
}

func (t *Tagger) checkEmpty(path string) error {
	switch t.state {
	case stateLoaded:
		return &LoadError{Path: path, Err: ErrHandleInUse}
	case stateDisposed:
		return &LoadError{Path: path, Err: ErrDisposed}
	}
	return nil
}

// load binds the handle to r. Nothing is kept on failure.
func (t *Tagger) load(r io.ReaderAt, size int64, path string) error {
	opened, err := registry.Open(r, size, path, registry.OpenOptions{RequireTag: t.opts.requireTag})
	if err != nil {
		return err
	}

	warnings := slices.Clone(opened.Warnings)
	if limit := t.opts.maxPictureSize; limit > 0 {
		for _, p := range opened.Adapter.Pictures() {
			if p.Size() > limit {
				warnings = append(warnings, Warning{
					Stage:   "pictures",
					Message: fmt.Sprintf("%s exceeds the %d byte limit and is hidden", p, limit),
				})
			}
		}
	}
	if t.opts.strictParsing && len(warnings) > 0 {
		return fmt.Errorf("strict parsing: %s", warnings[0])
	}

	t.state = stateLoaded
	t.bind(r, size, opened)
	t.warnings = warnings
	for _, w := range warnings {
		t.warn(w)
	}
	return nil
}

// bind points the handle at a freshly opened container.
func (t *Tagger) bind(r io.ReaderAt, size int64, opened *registry.Opened) {
	t.reader, t.size = r, size
	t.format = opened.Format
	t.adapter = opened.Adapter
	t.props = opened.Properties
	t.dirty = false
}

func (t *Tagger) warn(w Warning) {
	t.opts.logger.Warn(w.Message, zap.String("stage", w.Stage), zap.Int64("offset", w.Offset), zap.String("path", t.path))
}

// loaded returns a NotLoadedError for op unless the handle is Loaded.
func (t *Tagger) loaded(op string) error {
	if t.state != stateLoaded {
		return &NotLoadedError{Op: op}
	}
	return nil
}

// Dispose releases the adapter and closes the file. It may be called in
// any state and any number of times.
func (t *Tagger) Dispose() {
	if t.state == stateDisposed {
		return
	}
	if t.file != nil {
		_ = t.file.Close() //nolint:errcheck // Read-only handle
	}
	if t.state == stateLoaded {
		t.opts.logger.Debug("disposed", zap.String("path", t.path), zap.Stringer("format", t.format), zap.Stringer("origin", t.origin))
	}
	*t = Tagger{opts: t.opts, state: stateDisposed}
}

// IsDisposed reports whether the handle is unusable. It is true both
// before the first load and after Dispose.
func (t *Tagger) IsDisposed() bool {
	return t.state != stateLoaded
}

// Origin returns where the loaded bytes came from.
func (t *Tagger) Origin() Origin {
	return t.origin
}

// Path returns the loaded path, or "" for buffers.
func (t *Tagger) Path() string {
	return t.path
}

// Format returns the detected container format.
func (t *Tagger) Format() (Format, error) {
	if err := t.loaded("format"); err != nil {
		return FormatUnknown, err
	}
	return t.format, nil
}

// TagType returns the scheme of the primary tag.
func (t *Tagger) TagType() (TagType, error) {
	if err := t.loaded("tag type"); err != nil {
		return TagNone, err
	}
	return t.adapter.TagType(), nil
}

// Modified reports whether fields, pictures, or ReplayGain changed since
// the last load or save.
func (t *Tagger) Modified() bool {
	return t.state == stateLoaded && t.dirty
}

// Warnings returns the soft diagnostics gathered while loading and while
// writing pictures.
func (t *Tagger) Warnings() []Warning {
	return slices.Clone(t.warnings)
}

// AudioChecksum returns a SHA-1 of the audio payload. A leading ID3v2
// tag, FLAC metadata blocks, MP4 atoms other than mdat and the trailing
// APEv2 and ID3v1 tags of an MP3 are excluded, so the sum of an MP3, FLAC
// or M4A file is stable across retagging. Other containers hash every byte
// after any ID3v2 tag.
func (t *Tagger) AudioChecksum() (string, error) {
	if err := t.loaded("audio checksum"); err != nil {
		return "", err
	}
	sr := binutil.NewSafeReader(t.reader, t.size, t.path)
	start, _ := types.ID3v2End(sr)
	if start > t.size {
		start = 0
	}
	r := io.NewSectionReader(t.reader, start, t.size-start)

	var sum string
	var err error
	switch t.format {
	case FormatFLAC:
		sum, err = tag.SumFLAC(r)
	case FormatM4A, FormatM4B:
		sum, err = tag.SumAtoms(r)
	case FormatMP3:
		end := max(mp3AudioEnd(sr, r), start)
		sum, err = tag.SumAll(io.NewSectionReader(t.reader, start, end-start))
	default:
		sum, err = tag.SumAll(r)
	}
	if err != nil {
		return "", fmt.Errorf("audio checksum: %w", err)
	}
	return sum, nil
}

// mp3AudioEnd returns the offset where the trailing tags of an MP3 begin.
// An APEv2 tag sits before any ID3v1 tag.
func mp3AudioEnd(sr *binutil.SafeReader, r *io.SectionReader) int64 {
	end := sr.Size()
	if hasID3v1(r) {
		end -= 128
	}
	if region, ok, err := ape.Find(sr, end); err == nil && ok {
		end = region.Start
	}
	return end
}

func hasID3v1(r *io.SectionReader) bool {
	if r.Size() < 128 {
		return false
	}
	b := make([]byte, 3)
	_, err := r.ReadAt(b, r.Size()-128)
	return err == nil && string(b) == "TAG"
}

// LoadMany loads several files concurrently, bounded by the CPU count.
// Results are returned in the same order as the input paths.
//
// If any load fails, every handle already loaded is disposed and the first
// error is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	taggers, err := audiotag.LoadMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() {
//		for _, t := range taggers {
//			t.Dispose()
//		}
//	}()
func LoadMany(ctx context.Context, paths ...string) ([]*Tagger, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Tagger, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := New()
			if err := t.LoadPath(path); err != nil {
				return err
			}
			results[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, t := range results {
			if t != nil {
				t.Dispose()
			}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("load many: %w", err)
		}
		return nil, err
	}
	return results, nil
}
