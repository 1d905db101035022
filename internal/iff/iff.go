// Package iff walks and rewrites the chunk lists of RIFF and AIFF files.
//
// Both containers are a 12-byte form header (id, size, form type) followed
// by chunks of an id, a 32-bit size, and a body padded to even length. RIFF
// sizes are little-endian, AIFF sizes big-endian.
package iff

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

const (
	headerSize = 8
	formSize   = 12
)

// Chunk is one chunk of a form.
type Chunk struct {
	ID     string
	Offset int64  // header offset
	Size   uint32 // declared body size
	// Truncated marks a chunk whose body runs past the form end.
	Truncated bool
}

// Body returns the body offset.
func (c Chunk) Body() int64 { return c.Offset + headerSize }

// Form is a parsed RIFF or AIFF form.
type Form struct {
	ID     string // "RIFF" or "FORM"
	Type   string // "WAVE", "AIFF", "AIFC"
	Chunks []Chunk

	order binary.ByteOrder
	stop  int64 // where the chunk walk ended
	end   int64 // form end, clamped to the file
	size  int64
}

// Read parses the form header and its chunk list. Damage after the first
// chunk is reported as warnings; the readable chunks are kept.
func Read(sr *binary.SafeReader, id string, order binary.ByteOrder) (*Form, []types.Warning, error) {
	c := binary.NewCursor(sr, 0, order)
	gotID := c.String(4, id+" header")
	declared := binary.Next[uint32](c, id+" size")
	formType := c.String(4, id+" form type")
	if err := c.Err(); err != nil {
		return nil, nil, err
	}
	if gotID != id {
		return nil, nil, &types.CorruptedFileError{Path: sr.Path(), Reason: fmt.Sprintf("missing %s header", id)}
	}

	f := &Form{ID: id, Type: formType, order: order, size: sr.Size()}
	var warnings []types.Warning

	f.end = headerSize + int64(declared)
	if f.end > sr.Size() {
		warnings = append(warnings, types.Warning{
			Stage:   "metadata",
			Message: fmt.Sprintf("%s size %d exceeds file size %d", id, declared, sr.Size()),
			Offset:  4,
		})
		f.end = sr.Size()
	}

	off := int64(formSize)
	for off+headerSize <= f.end {
		c := binary.NewCursor(sr, off, order)
		ck := Chunk{Offset: off, ID: c.String(4, "chunk id"), Size: binary.Next[uint32](c, "chunk size")}
		if err := c.Err(); err != nil {
			return nil, nil, err
		}
		next := ck.Body() + int64(ck.Size) + int64(ck.Size&1)
		if ck.Body()+int64(ck.Size) > f.end {
			ck.Truncated = true
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: fmt.Sprintf("chunk %q runs past the end of the %s form", ck.ID, id),
				Offset:  off,
			})
			next = f.end
		}
		f.Chunks = append(f.Chunks, ck)
		off = min(next, f.end)
	}
	f.stop = off
	return f, warnings, nil
}

// Find returns the first chunk with the given id.
func (f *Form) Find(id string) (Chunk, bool) {
	for _, c := range f.Chunks {
		if c.ID == id {
			return c, true
		}
	}
	return Chunk{}, false
}

// Len returns the number of body bytes c holds inside the form.
func (f *Form) Len(c Chunk) int64 {
	return min(int64(c.Size), f.end-c.Body())
}

// Body reads the body of c.
func (f *Form) Body(sr *binary.SafeReader, c Chunk) ([]byte, error) {
	n := f.Len(c)
	if n > math.MaxInt32 {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: c.Offset, Reason: fmt.Sprintf("chunk %q too large", c.ID)}
	}
	return sr.Slice(c.Body(), int(n), fmt.Sprintf("%q chunk", c.ID))
}

// Encode frames body as a chunk, padding it to even length.
func (f *Form) Encode(id string, body []byte) []byte {
	out := make([]byte, 0, headerSize+len(body)+1)
	out = append(out, id...)
	out = binary.Encode(out, uint32(len(body)), f.order)
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

type piece struct {
	data   []byte
	off, n int64
}

func (p piece) len() int64 {
	if p.data != nil {
		return int64(len(p.data))
	}
	return p.n
}

// Write renders the form. edit is called for every chunk in order: when it
// reports true the chunk is replaced by the returned bytes, which may be
// empty. extra is inserted after the last complete chunk. Bytes after the
// form end are copied unchanged.
func (f *Form) Write(w io.Writer, sr *binary.SafeReader, edit func(Chunk) ([]byte, bool), extra []byte) error {
	var pieces []piece
	for _, c := range f.Chunks {
		if b, ok := edit(c); ok {
			if len(b) > 0 {
				pieces = append(pieces, piece{data: b})
			}
			continue
		}
		if c.Truncated {
			if len(extra) > 0 {
				pieces = append(pieces, piece{data: extra})
				extra = nil
			}
			pieces = append(pieces, piece{off: c.Offset, n: f.end - c.Offset})
			continue
		}
		pieces = append(pieces, piece{off: c.Offset, n: headerSize + int64(c.Size)})
		if c.Size&1 == 1 {
			pieces = append(pieces, piece{data: []byte{0}})
		}
	}
	if len(extra) > 0 {
		pieces = append(pieces, piece{data: extra})
	}
	if f.stop < f.end {
		pieces = append(pieces, piece{off: f.stop, n: f.end - f.stop})
	}

	size := int64(4)
	for _, p := range pieces {
		size += p.len()
	}
	if size > math.MaxUint32 {
		return fmt.Errorf("%s form of %d bytes exceeds 4 GiB", f.ID, size)
	}

	sw := binary.NewSafeWriter(w)
	header := append([]byte(f.ID), binary.Encode(nil, uint32(size), f.order)...)
	_ = sw.WriteBytes(append(header, f.Type...))
	for _, p := range pieces {
		if p.data != nil {
			_ = sw.WriteBytes(p.data)
		} else {
			_ = sw.CopyFrom(sr, p.off, p.n)
		}
	}
	_ = sw.CopyFrom(sr, f.end, f.size-f.end)
	return sw.Err()
}

// DecodeText reads a NUL-terminated text chunk. Valid UTF-8 is kept as is;
// anything else is read as Latin-1.
func DecodeText(b []byte) string {
	s := strings.TrimRight(string(b), "\x00")
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// EncodeText renders s as Latin-1 when every rune fits and as UTF-8
// otherwise.
func EncodeText(s string) []byte {
	enc, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return enc
}
