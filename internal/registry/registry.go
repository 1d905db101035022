// Package registry binds detected container formats to the codecs that open
// them, and defines the adapter contract those codecs return.
package registry

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// ErrNoTag is returned by codecs when OpenOptions.RequireTag is set and the
// file carries no tag of any supported scheme.
var ErrNoTag = errors.New("file must contain at least one tag")

// Tag is the field-level view of one tag scheme. Values passed to
// WriteField are already normalized; a null value removes the field.
type Tag interface {
	TagType() types.TagType
	Supports(f types.Field) bool
	ReadField(f types.Field) types.Value
	WriteField(f types.Field, v types.Value) error

	// Pictures returns a copy of the embedded pictures in file order.
	Pictures() []types.Picture
	// SetPictures replaces every picture. Pictures the scheme cannot hold
	// are dropped and reported as warnings.
	SetPictures(pics []types.Picture) []types.Warning

	ReplayGain() types.ReplayGain
	SetReplayGain(rg types.ReplayGain) error
}

// Adapter is a Tag bound to an open container.
type Adapter interface {
	Tag

	// Serialize writes the complete file with the current tag state.
	// Regions the tag does not own are copied from the original input.
	Serialize(w io.Writer) error
}

// OpenOptions tune how a codec treats files without tags.
type OpenOptions struct {
	// RequireTag makes Open fail with ErrNoTag instead of creating an empty
	// primary tag.
	RequireTag bool
}

// Opened is the result of opening a container.
type Opened struct {
	Adapter    Adapter
	Properties types.Properties
	Warnings   []types.Warning
	Format     types.Format
}

// Codec opens one container format.
type Codec interface {
	Open(sr *binary.SafeReader, opts OpenOptions) (*Opened, error)
}

var (
	mu     sync.RWMutex
	codecs = make(map[types.Format]Codec)
)

// Register registers a codec for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, c Codec) {
	mu.Lock()
	defer mu.Unlock()
	codecs[format] = c
}

// Get returns the codec for a given format, or nil.
func Get(format types.Format) Codec {
	mu.RLock()
	defer mu.RUnlock()
	return codecs[format]
}

// Open detects the container in r and opens it with the registered codec.
// Detection failures and formats without a codec yield
// *types.UnsupportedFormatError.
func Open(r io.ReaderAt, size int64, path string, opts OpenOptions) (*Opened, error) {
	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	c := Get(format)
	if c == nil {
		return nil, &types.UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no codec registered for %s", format),
		}
	}

	opened, err := c.Open(binary.NewSafeReader(r, size, path), opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", format, err)
	}
	opened.Format = format
	return opened, nil
}

// LimitPictures keeps at most limit pictures and reports the rest.
// A negative limit means unlimited.
func LimitPictures(pics []types.Picture, limit int, scheme types.TagType) ([]types.Picture, []types.Warning) {
	if limit < 0 || len(pics) <= limit {
		return types.ClonePictures(pics), nil
	}
	kept := types.ClonePictures(pics[:limit])
	var msg string
	if limit == 0 {
		msg = fmt.Sprintf("%s tags cannot hold pictures; %d dropped", scheme, len(pics))
	} else {
		msg = fmt.Sprintf("%s tags hold at most %d picture(s); %d dropped", scheme, limit, len(pics)-limit)
	}
	return kept, []types.Warning{{Stage: "pictures", Message: msg}}
}
