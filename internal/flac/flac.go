// Package flac opens native FLAC streams.
//
// Metadata blocks are parsed and re-marshalled with
// github.com/go-flac/go-flac. Tags live in the VORBIS_COMMENT block and
// pictures in PICTURE blocks; every other block, and the audio frames, is
// written back unchanged.
package flac

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	flac "github.com/go-flac/go-flac"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

// maxBlockSize is the largest body a 24-bit block length can describe.
const maxBlockSize = 1<<24 - 1

type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	// An ID3v2 prefix is not part of the stream. It is kept verbatim.
	var start int64
	if end, ok := types.ID3v2End(sr); ok {
		start = end
	}

	f, err := flac.ParseMetadata(sr.Section(start, sr.Size()-start))
	if err != nil {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Reason: fmt.Sprintf("read metadata blocks: %v", err),
			Offset: start,
		}
	}
	if len(f.Meta) == 0 {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Reason: "no metadata blocks", Offset: start + 4}
	}
	info, err := f.GetStreamInfo()
	if err != nil {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Reason: fmt.Sprintf("STREAMINFO: %v", err),
			Offset: start + 4,
		}
	}

	a := &file{sr: sr, prefix: start, meta: f.Meta}
	var warnings []types.Warning
	var pictures []types.Picture

	offset := start + 4
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			if a.Comments != nil {
				warnings = append(warnings, types.Warning{
					Stage:   "metadata",
					Message: "duplicate VORBIS_COMMENT block ignored; it will be removed on save",
					Offset:  offset,
				})
				break
			}
			c, ws, err := vorbis.Parse(block.Data)
			if err != nil {
				warnings = append(warnings, types.Warning{
					Stage:   "metadata",
					Message: fmt.Sprintf("%v; the block will be replaced on save", err),
					Offset:  offset,
				})
				break
			}
			a.Comments = c
			a.hadComments = true
			warnings = append(warnings, ws...)
		case flac.Picture:
			p, err := vorbis.DecodePicture(block.Data)
			if err != nil {
				warnings = append(warnings, types.Warning{
					Stage:   "pictures",
					Message: fmt.Sprintf("%v; the block will be removed on save", err),
					Offset:  offset,
				})
				break
			}
			pictures = append(pictures, p)
		}
		offset += 4 + int64(len(block.Data))
	}
	a.audio = offset

	if a.Comments == nil {
		if opts.RequireTag && len(pictures) == 0 {
			return nil, registry.ErrNoTag
		}
		a.Comments = vorbis.New()
	}
	a.Comments.SetPictures(pictures)

	return &registry.Opened{
		Adapter:    a,
		Properties: properties(info, sr.Size()-a.audio),
		Warnings:   warnings,
	}, nil
}

func properties(info *flac.StreamInfoBlock, audioSize int64) types.Properties {
	p := types.Properties{
		Codec:      "FLAC",
		SampleRate: info.SampleRate,
		BitDepth:   info.BitDepth,
		Channels:   info.ChannelCount,
		Lossless:   true,
	}
	if info.SampleRate > 0 {
		p.Duration = time.Duration(float64(info.SampleCount) / float64(info.SampleRate) * float64(time.Second))
	}
	p.Bitrate = types.EstimateBitrate(audioSize, p.Duration)
	return p
}

// file is the Vorbis comment adapter bound to a FLAC stream.
type file struct {
	*vorbis.Comments
	sr          *binary.SafeReader
	prefix      int64
	meta        []*flac.MetaDataBlock
	hadComments bool
	audio       int64
}

// Serialize implements registry.Adapter.
func (a *file) Serialize(w io.Writer) error {
	meta, err := a.metadata()
	if err != nil {
		return err
	}
	if err := a.sr.CopyTo(w, 0, a.prefix); err != nil {
		return err
	}
	head := flac.File{Meta: meta}
	if _, err := w.Write(head.Marshal()); err != nil {
		return err
	}
	return a.sr.CopyTo(w, a.audio, a.sr.Size()-a.audio)
}

// metadata rebuilds the block list. The comment and picture blocks take
// the position of the first tag block in the original; without one they
// follow STREAMINFO.
func (a *file) metadata() ([]*flac.MetaDataBlock, error) {
	var tags []*flac.MetaDataBlock
	if a.hadComments || a.Store().Len() > 0 {
		tags = append(tags, &flac.MetaDataBlock{Type: flac.VorbisComment, Data: a.Encode()})
	}
	for _, p := range a.Pictures() {
		tags = append(tags, &flac.MetaDataBlock{Type: flac.Picture, Data: vorbis.EncodePicture(p)})
	}
	for _, b := range tags {
		if len(b.Data) > maxBlockSize {
			return nil, errors.New("metadata block exceeds 16 MiB")
		}
	}

	out := make([]*flac.MetaDataBlock, 0, len(a.meta)+len(tags))
	placed := false
	for _, b := range a.meta {
		switch b.Type {
		case flac.VorbisComment, flac.Picture:
			if !placed {
				out = append(out, tags...)
				placed = true
			}
		default:
			out = append(out, b)
		}
	}
	if !placed {
		out = slices.Insert(out, 1, tags...)
	}
	return out, nil
}

func init() {
	registry.Register(types.FormatFLAC, codec{})
}
