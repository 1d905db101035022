// Package m4a opens MP4 audio files (M4A, M4B) and edits their iTunes
// metadata list.
//
// The moov atom is read into memory as a tree. Saving replaces the ilst
// atom under moov/udta/meta, re-renders moov, and shifts the chunk
// offsets in stco/co64 when moov precedes the media data.
package m4a

import (
	"bytes"
	"fmt"
	"math"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// Atom represents an MP4 atom (box) header.
type Atom struct {
	Size     uint64 // Total size including header
	Type     string // 4-character type code
	Offset   int64  // Position in file
	Extended bool   // Whether this uses 64-bit extended size
}

// HeaderSize returns 16 for extended atoms and 8 otherwise.
func (a *Atom) HeaderSize() int64 {
	if a.Extended {
		return 16
	}
	return 8
}

// DataSize returns the size of the atom's data (excluding header)
func (a *Atom) DataSize() uint64 {
	if a.Size < uint64(a.HeaderSize()) {
		return 0
	}
	return a.Size - uint64(a.HeaderSize())
}

// DataOffset returns the file offset where the atom's data starts
func (a *Atom) DataOffset() int64 {
	return a.Offset + a.HeaderSize()
}

// End returns the offset just past the atom.
func (a *Atom) End() int64 {
	return a.Offset + int64(a.Size)
}

var containerTypes = map[string]bool{
	"moov": true, // Movie container
	"udta": true, // User data
	"meta": true, // Metadata container
	"ilst": true, // iTunes metadata list
	"trak": true, // Track container
	"mdia": true, // Media container
	"minf": true, // Media information
	"stbl": true, // Sample table
	"edts": true, // Edit list container
	"dinf": true, // Data information
}

// IsContainer returns true if this atom type can contain other atoms
func (a *Atom) IsContainer() bool {
	return containerTypes[a.Type]
}

// readAtomHeader reads an atom header at the given offset. A size of zero
// means the atom extends to end.
func readAtomHeader(sr *binary.SafeReader, offset, end int64) (*Atom, error) {
	c := binary.NewCursor(sr, offset, binary.BigEndian)
	size32 := binary.Next[uint32](c, "atom size")
	atomType := c.String(4, "atom type")
	if err := c.Err(); err != nil {
		return nil, err
	}

	atom := &Atom{Type: atomType, Offset: offset, Size: uint64(size32)}
	switch size32 {
	case 0:
		atom.Size = uint64(end - offset)
	case 1:
		// 64-bit size follows the type
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	}

	if atom.Size < uint64(atom.HeaderSize()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid atom size %d for %q", atom.Size, atomType),
		}
	}
	if atom.Size > uint64(end-offset) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("atom %q of size %d overruns its parent", atomType, atom.Size),
		}
	}
	return atom, nil
}

// metaPrefix reports whether a meta atom's payload starts with the
// version and flags of a full box. QuickTime files omit them and place
// hdlr first.
func metaPrefix(sr *binary.SafeReader, a *Atom) int64 {
	var typ [4]byte
	if err := sr.ReadAt(typ[:], a.DataOffset()+4, "meta child type"); err == nil && string(typ[:]) == "hdlr" {
		return 0
	}
	return 4
}

// Walk visits every atom in the file depth-first, descending into
// containers and the items of ilst.
func Walk(sr *binary.SafeReader, fn func(depth int, a *Atom) error) error {
	return walk(sr, 0, sr.Size(), 0, "", fn)
}

func walk(sr *binary.SafeReader, start, end int64, depth int, parent string, fn func(int, *Atom) error) error {
	for offset := start; offset+8 <= end; {
		atom, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return err
		}
		if err := fn(depth, atom); err != nil {
			return err
		}
		if atom.IsContainer() || parent == "ilst" {
			dataStart := atom.DataOffset()
			if atom.Type == "meta" {
				dataStart += metaPrefix(sr, atom)
			}
			if err := walk(sr, dataStart, atom.End(), depth+1, atom.Type, fn); err != nil {
				return err
			}
		}
		offset = atom.End()
	}
	return nil
}

// sliceReader wraps an in-memory atom payload.
func sliceReader(b []byte) *binary.SafeReader {
	return binary.NewSafeReader(bytes.NewReader(b), int64(len(b)), "")
}

// box is an in-memory atom. Containers hold children; leaves hold their
// payload verbatim.
type box struct {
	typ      string
	offset   int64 // position within the parsed payload
	prefix   []byte // version and flags preceding a meta atom's children
	data     []byte
	children []*box
	tail     []byte // bytes after the last child too short for a header
	leaf     bool
}

// parseTree parses the atoms of payload. Containers listed in
// containerTypes are descended into except ilst, which stays opaque.
func parseTree(payload []byte, path string) (*box, error) {
	sr := binary.NewSafeReader(bytes.NewReader(payload), int64(len(payload)), path)
	atom, err := readAtomHeader(sr, 0, sr.Size())
	if err != nil {
		return nil, err
	}
	root := &box{typ: atom.Type}
	root.children, root.tail, err = parseBoxes(sr, atom.DataOffset(), atom.End())
	if err != nil {
		return nil, err
	}
	return root, nil
}

func parseBoxes(sr *binary.SafeReader, start, end int64) ([]*box, []byte, error) {
	var out []*box
	for offset := start; offset < end; {
		if end-offset < 8 {
			// Some writers terminate udta with a 32-bit zero.
			tail, err := sr.Slice(offset, int(end-offset), "atom padding")
			return out, tail, err
		}
		atom, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return nil, nil, err
		}
		b := &box{typ: atom.Type, offset: atom.Offset}
		if atom.IsContainer() && atom.Type != "ilst" {
			dataStart := atom.DataOffset()
			if atom.Type == "meta" {
				n := metaPrefix(sr, atom)
				if b.prefix, err = sr.Slice(dataStart, int(n), "meta version"); err != nil {
					return nil, nil, err
				}
				dataStart += n
			}
			if b.children, b.tail, err = parseBoxes(sr, dataStart, atom.End()); err != nil {
				return nil, nil, err
			}
		} else {
			b.leaf = true
			if b.data, err = sr.Slice(atom.DataOffset(), int(atom.DataSize()), atom.Type); err != nil {
				return nil, nil, err
			}
		}
		out = append(out, b)
		offset = atom.End()
	}
	return out, nil, nil
}

// child returns the first direct child of type typ.
func (b *box) child(typ string) *box {
	for _, c := range b.children {
		if c.typ == typ {
			return c
		}
	}
	return nil
}

// find follows a path of child types.
func (b *box) find(path ...string) *box {
	cur := b
	for _, typ := range path {
		if cur = cur.child(typ); cur == nil {
			return nil
		}
	}
	return cur
}

// size returns the rendered size, header included.
func (b *box) size() int64 {
	n := int64(8)
	if b.leaf {
		return n + int64(len(b.data))
	}
	n += int64(len(b.prefix) + len(b.tail))
	for _, c := range b.children {
		n += c.size()
	}
	return n
}

// render appends the atom to dst. fix rewrites chunk offset tables on
// the way out.
func (b *box) render(dst []byte, fix func(typ string, data []byte) ([]byte, error)) ([]byte, error) {
	size := b.size()
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("atom %q exceeds 4 GiB", b.typ)
	}
	dst = binary.Encode(dst, uint32(size), binary.BigEndian)
	dst = append(dst, b.typ...)
	if b.leaf {
		data := b.data
		if fix != nil {
			var err error
			if data, err = fix(b.typ, data); err != nil {
				return nil, err
			}
		}
		return append(dst, data...), nil
	}
	dst = append(dst, b.prefix...)
	for _, c := range b.children {
		var err error
		if dst, err = c.render(dst, fix); err != nil {
			return nil, err
		}
	}
	return append(dst, b.tail...), nil
}
