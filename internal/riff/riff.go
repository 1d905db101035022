// Package riff opens WAV files and edits their LIST/INFO chunk.
//
// Stream parameters come from the fmt chunk, decoded with
// github.com/go-audio/wav. The INFO list is the only tag; every other
// chunk, an embedded "id3 " chunk included, is written back unchanged.
package riff

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/iff"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// WAVE format tags.
const (
	formatPCM        = 0x0001
	formatADPCM      = 0x0002
	formatFloat      = 0x0003
	formatALaw       = 0x0006
	formatMuLaw      = 0x0007
	formatMP3        = 0x0055
	formatExtensible = 0xFFFE
)

var codecNames = map[uint16]string{
	formatPCM:        "PCM",
	formatADPCM:      "ADPCM",
	formatFloat:      "IEEE Float",
	formatALaw:       "A-law",
	formatMuLaw:      "mu-law",
	formatMP3:        "MP3",
	formatExtensible: "PCM",
}

type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	form, warnings, err := iff.Read(sr, "RIFF", binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if form.Type != "WAVE" {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: 8, Reason: fmt.Sprintf("RIFF form type %q is not WAVE", form.Type)}
	}

	a := &file{sr: sr, form: form}
	for _, c := range form.Chunks {
		if !a.isInfo(c) {
			continue
		}
		if a.Info != nil {
			a.dropped++
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: "duplicate LIST/INFO chunk ignored; it will be removed on save",
				Offset:  c.Offset,
			})
			continue
		}
		body, err := form.Body(sr, c)
		if err != nil {
			return nil, err
		}
		info, ws := ParseInfo(body[4:], c.Body()+4)
		warnings = append(warnings, ws...)
		a.Info = info
		a.infoAt = c.Offset
	}

	if a.Info == nil {
		if opts.RequireTag {
			return nil, registry.ErrNoTag
		}
		a.Info = NewInfo()
	}

	props, err := properties(sr, form)
	if err != nil {
		return nil, err
	}
	return &registry.Opened{Adapter: a, Properties: props, Warnings: warnings}, nil
}

// properties reads the fmt chunk with go-audio/wav. Duration and bitrate
// come from the data chunk size and the declared byte rate.
func properties(sr *binary.SafeReader, form *iff.Form) (types.Properties, error) {
	d := wav.NewDecoder(sr.Section(0, sr.Size()))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return types.Properties{}, &types.CorruptedFileError{Path: sr.Path(), Reason: fmt.Sprintf("fmt chunk: %v", err)}
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return types.Properties{}, &types.CorruptedFileError{Path: sr.Path(), Offset: 12, Reason: "missing or empty fmt chunk"}
	}

	p := types.Properties{
		Codec:      codecNames[d.WavAudioFormat],
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}
	if p.Codec == "" {
		p.Codec = fmt.Sprintf("WAVE format 0x%04X", d.WavAudioFormat)
	}
	switch d.WavAudioFormat {
	case formatPCM, formatFloat, formatExtensible:
		p.Lossless = true
		p.BitDepth = int(d.BitDepth)
	}

	var dataSize int64
	if c, ok := form.Find("data"); ok {
		dataSize = form.Len(c)
	}
	if d.AvgBytesPerSec > 0 {
		p.Duration = time.Duration(float64(dataSize) / float64(d.AvgBytesPerSec) * float64(time.Second))
		p.Bitrate = int(d.AvgBytesPerSec) * 8 / 1000
	}
	if p.Bitrate == 0 {
		p.Bitrate = types.EstimateBitrate(dataSize, p.Duration)
	}
	return p, nil
}

// file is the INFO adapter bound to a WAV file.
type file struct {
	*Info
	sr      *binary.SafeReader
	form    *iff.Form
	infoAt  int64
	dropped int
}

func (a *file) isInfo(c iff.Chunk) bool {
	if c.ID != "LIST" || a.form.Len(c) < 4 {
		return false
	}
	kind, err := a.sr.Slice(c.Body(), 4, "LIST type")
	return err == nil && string(kind) == "INFO"
}

// Serialize implements registry.Adapter. An untouched file is copied as is.
func (a *file) Serialize(w io.Writer) error {
	if !a.dirty && a.dropped == 0 {
		return a.sr.CopyTo(w, 0, a.sr.Size())
	}

	var info []byte
	if body := a.Encode(); body != nil {
		info = a.form.Encode("LIST", body)
	}
	placed := false
	edit := func(c iff.Chunk) ([]byte, bool) {
		if !a.isInfo(c) {
			return nil, false
		}
		if placed || c.Offset != a.infoAt {
			return nil, true
		}
		placed = true
		return info, true
	}
	if a.infoAt > 0 {
		return a.form.Write(w, a.sr, edit, nil)
	}
	return a.form.Write(w, a.sr, edit, info)
}

func init() {
	registry.Register(types.FormatWAV, codec{})
}
