// Package mp3 opens MPEG audio files and exposes their tags.
//
// An MP3 file can carry a leading ID3v2 tag, a trailing APEv2 tag, and a
// trailing ID3v1 tag at the same time. The first one present, in that
// order, becomes the primary tag that reads and writes go to; the others
// are preserved byte for byte on save.
package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/audiotag/internal/ape"
	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// encoder is a tag that can render itself in place of its region.
type encoder interface {
	registry.Tag
	Empty() bool
}

// region is one byte range of the original file. When tag is set the
// range is replaced by the tag's encoding on save.
type region struct {
	start, end int64
	tag        encoder
}

// codec implements registry.Codec.
type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binutil.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	var warnings []types.Warning
	size := sr.Size()

	// Leading ID3v2
	v2End, hasV2 := types.ID3v2End(sr)
	if v2End > size {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: 6, Reason: "ID3v2 tag size exceeds file"}
	}
	var v2 *id3.V2
	if hasV2 {
		raw, err := sr.Slice(0, int(v2End), "ID3v2 tag")
		if err != nil {
			return nil, err
		}
		if v2, err = id3.ParseV2(bytes.NewReader(raw)); err != nil {
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: "ID3v2 tag unreadable and will be replaced on save: " + err.Error(),
			})
			v2 = nil
		}
	}

	// Trailing ID3v1
	v1Start := size
	v1, err := id3.ParseV1(sr)
	if err != nil {
		return nil, err
	}
	if v1 != nil {
		v1Start = size - id3.V1Size
	}

	// Trailing APEv2, before ID3v1
	apeRegion, hasAPE, err := ape.Find(sr, v1Start)
	if err != nil {
		warnings = append(warnings, types.Warning{Stage: "metadata", Message: "APE tag ignored: " + err.Error()})
		hasAPE = false
	}
	var apeTag *ape.Tag
	if hasAPE && apeRegion.Start >= v2End {
		if apeTag, err = ape.Read(sr, apeRegion); err != nil {
			warnings = append(warnings, types.Warning{Stage: "metadata", Message: "APE tag ignored: " + err.Error()})
			apeTag = nil
		}
	}
	audioEnd := v1Start
	if apeTag != nil {
		audioEnd = apeRegion.Start
	}

	var primary encoder
	switch {
	case v2 != nil:
		primary = v2
	case apeTag != nil:
		primary = apeTag
	case v1 != nil:
		primary = v1
	case opts.RequireTag && !hasV2:
		return nil, registry.ErrNoTag
	default:
		primary = id3.NewV2()
	}

	regions := []region{{start: 0, end: v2End}}
	if _, isV2 := primary.(*id3.V2); isV2 {
		regions[0].tag = primary
	}
	regions = append(regions, region{start: v2End, end: audioEnd})
	if apeTag != nil {
		r := region{start: apeRegion.Start, end: apeRegion.End}
		if primary == apeTag {
			r.tag = apeTag
		}
		regions = append(regions, r, region{start: apeRegion.End, end: v1Start})
	}
	if v1 != nil {
		r := region{start: v1Start, end: size}
		if primary == v1 {
			r.tag = v1
		}
		regions = append(regions, r)
	}

	props, err := parseTechnicalInfo(sr, v2End, audioEnd)
	if errors.Is(err, errNoFrame) {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: v2End, Reason: err.Error()}
	}
	if err != nil {
		warnings = append(warnings, types.Warning{
			Stage:   "technical",
			Message: "failed to parse MP3 technical info: " + err.Error(),
			Offset:  v2End,
		})
	}

	return &registry.Opened{
		Adapter:    &file{encoder: primary, sr: sr, regions: regions},
		Properties: props,
		Warnings:   warnings,
	}, nil
}

// file is the MP3 adapter.
type file struct {
	encoder
	sr      *binutil.SafeReader
	regions []region
}

// Serialize implements registry.Adapter.
func (f *file) Serialize(w io.Writer) error {
	for _, r := range f.regions {
		if r.tag == nil {
			if err := f.sr.CopyTo(w, r.start, r.end-r.start); err != nil {
				return err
			}
			continue
		}
		b, err := encodeTag(r.tag)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.tag.TagType(), err)
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// encodeTag renders a tag. Empty tags are dropped from the file.
func encodeTag(t encoder) ([]byte, error) {
	if t.Empty() {
		return nil, nil
	}
	switch t := t.(type) {
	case *id3.V2:
		return t.Encode()
	case *ape.Tag:
		return t.Encode(), nil
	case *id3.V1:
		return t.Encode(), nil
	}
	return nil, fmt.Errorf("unexpected tag %T", t)
}

func init() {
	registry.Register(types.FormatMP3, codec{})
}
