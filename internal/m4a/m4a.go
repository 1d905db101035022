package m4a

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// maxMoovSize bounds the moov atom read into memory.
const maxMoovSize = 512 << 20

// handler is the hdlr payload iTunes writes under udta/meta.
var handler = []byte("\x00\x00\x00\x00\x00\x00\x00\x00mdirappl\x00\x00\x00\x00\x00\x00\x00\x00\x00")

type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	var moov *Atom
	var mediaSize int64
	for offset := int64(0); offset+8 <= sr.Size(); {
		atom, err := readAtomHeader(sr, offset, sr.Size())
		if err != nil {
			if moov != nil {
				break // trailing bytes after the last atom
			}
			return nil, err
		}
		switch atom.Type {
		case "moov":
			if moov == nil {
				moov = atom
			}
		case "mdat":
			mediaSize += int64(atom.DataSize())
		}
		offset = atom.End()
	}
	if moov == nil {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Reason: "no moov atom"}
	}
	if moov.Size > maxMoovSize {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: moov.Offset,
			Reason: fmt.Sprintf("moov atom of %d bytes is too large", moov.Size),
		}
	}

	payload, err := sr.Slice(moov.Offset, int(moov.Size), "moov atom")
	if err != nil {
		return nil, err
	}
	root, err := parseTree(payload, sr.Path())
	if err != nil {
		return nil, fmt.Errorf("moov atom at offset %d: %w", moov.Offset, err)
	}

	f := &file{sr: sr, moov: moov, root: root}
	var warnings []types.Warning
	if ilst := root.find("udta", "meta", "ilst"); ilst != nil {
		base := moov.Offset + ilst.offset + 8
		tag, ws, err := parseIlst(ilst.data, base, sr.Path())
		if err != nil {
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: fmt.Sprintf("%v; the item list will be rebuilt on save", err),
				Offset:  base,
			})
			tag = New()
		}
		f.Tag = tag
		warnings = append(warnings, ws...)
	}
	if f.Tag == nil {
		if opts.RequireTag {
			return nil, registry.ErrNoTag
		}
		f.Tag = New()
	}

	return &registry.Opened{
		Adapter:    f,
		Properties: properties(root, mediaSize),
		Warnings:   warnings,
	}, nil
}

// file is the ilst adapter bound to an MP4 container.
type file struct {
	*Tag
	sr   *binary.SafeReader
	moov *Atom
	root *box
}

// Serialize implements registry.Adapter. Only moov is rewritten; the
// atoms around it are copied.
func (f *file) Serialize(w io.Writer) error {
	if !f.dirty {
		return f.sr.CopyTo(w, 0, f.sr.Size())
	}
	moov, err := f.renderMoov()
	if err != nil {
		return err
	}
	if err := f.sr.CopyTo(w, 0, f.moov.Offset); err != nil {
		return err
	}
	if _, err := w.Write(moov); err != nil {
		return err
	}
	return f.sr.CopyTo(w, f.moov.End(), f.sr.Size()-f.moov.End())
}

func (f *file) renderMoov() ([]byte, error) {
	ilst := f.root.find("udta", "meta", "ilst")
	if ilst == nil {
		if f.empty() {
			return f.root.render(nil, nil)
		}
		ilst = f.createIlst()
	}
	payload, err := f.encode()
	if err != nil {
		return nil, err
	}
	ilst.data = payload

	delta := f.root.size() - int64(f.moov.Size)
	after := f.moov.End()
	return f.root.render(make([]byte, 0, f.root.size()), func(typ string, data []byte) ([]byte, error) {
		return shiftChunkOffsets(typ, data, after, delta)
	})
}

// createIlst adds udta/meta/ilst, creating whichever parents are missing.
func (f *file) createIlst() *box {
	udta := f.root.child("udta")
	if udta == nil {
		udta = &box{typ: "udta"}
		f.root.children = append(f.root.children, udta)
	}
	meta := udta.child("meta")
	if meta == nil {
		meta = &box{
			typ:      "meta",
			prefix:   []byte{0, 0, 0, 0},
			children: []*box{{typ: "hdlr", data: handler, leaf: true}},
		}
		udta.children = append(udta.children, meta)
	}
	ilst := &box{typ: "ilst", leaf: true}
	meta.children = append(meta.children, ilst)
	return ilst
}

// shiftChunkOffsets moves the entries of an stco or co64 table that point
// at or past after by delta.
func shiftChunkOffsets(typ string, data []byte, after, delta int64) ([]byte, error) {
	var width int
	switch typ {
	case "stco":
		width = 4
	case "co64":
		width = 8
	default:
		return data, nil
	}
	if delta == 0 || len(data) < 8 {
		return data, nil
	}
	n := int(binary.Decode[uint32](data[4:], binary.BigEndian))
	if n > (len(data)-8)/width {
		return nil, fmt.Errorf("%s table of %d entries overruns its atom", typ, n)
	}

	out := slices.Clone(data)
	for i := range n {
		pos := 8 + i*width
		if width == 4 {
			v := int64(binary.Decode[uint32](out[pos:], binary.BigEndian))
			if v < after {
				continue
			}
			v += delta
			if v < 0 || v > math.MaxUint32 {
				return nil, fmt.Errorf("chunk offset %d does not fit in stco", v)
			}
			binary.Encode(out[pos:pos], uint32(v), binary.BigEndian) // in place
			continue
		}
		v := int64(binary.Decode[uint64](out[pos:], binary.BigEndian))
		if v >= after {
			binary.Encode(out[pos:pos], uint64(v+delta), binary.BigEndian) // in place
		}
	}
	return out, nil
}

func init() {
	registry.Register(types.FormatM4A, codec{})
	registry.Register(types.FormatM4B, codec{})
}
