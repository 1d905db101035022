// Package binary provides bounds-checked binary reading and writing primitives
// shared by the container codecs.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Unsigned is the set of integer types the generic readers and writers accept.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if len(b) == 0 {
		return nil
	}

	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (file size: %d) while reading %s",
			sr.path, off, sr.size, what)
	}

	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
			sr.path, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Slice returns a freshly allocated copy of n bytes starting at off.
func (sr *SafeReader) Slice(off int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d while reading %s", sr.path, n, what)
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// CopyTo copies n bytes starting at off into w.
func (sr *SafeReader) CopyTo(w io.Writer, off, n int64) error {
	if n == 0 {
		return nil
	}
	if off < 0 || n < 0 || off+n > sr.size {
		return fmt.Errorf("%s: copy of %d bytes at offset %d exceeds file size %d",
			sr.path, n, off, sr.size)
	}
	if _, err := io.Copy(w, io.NewSectionReader(sr.r, off, n)); err != nil {
		return fmt.Errorf("%s: copy %d bytes at offset %d: %w", sr.path, n, off, err)
	}
	return nil
}

// Section returns a reader over n bytes starting at off. Reads past the
// end of the file are cut short rather than failing.
func (sr *SafeReader) Section(off, n int64) *io.SectionReader {
	return io.NewSectionReader(sr.r, off, min(n, max(sr.size-off, 0)))
}

// ByteOrder selects the byte order of a multi-byte read or write.
type ByteOrder int

const (
	// BigEndian is used by MP4, ID3v2, AIFF, and FLAC headers.
	BigEndian ByteOrder = iota
	// LittleEndian is used by RIFF, APE, Ogg, and Vorbis comments.
	LittleEndian
)

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (o ByteOrder) codec() byteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func sizeOf[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// Decode converts the leading bytes of b into T using the given byte order.
// b must hold at least as many bytes as T.
func Decode[T Unsigned](b []byte, order ByteOrder) T {
	bo := order.codec()
	switch sizeOf[T]() {
	case 1:
		return T(b[0])
	case 2:
		return T(bo.Uint16(b))
	case 4:
		return T(bo.Uint32(b))
	default:
		return T(bo.Uint64(b))
	}
}

// ReadEndian reads a numeric value of type T at off with the given byte order.
func ReadEndian[T Unsigned](sr *SafeReader, off int64, what string, order ByteOrder) (T, error) {
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](buf, order), nil
}

// Read reads a big-endian value of type T at off.
func Read[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// ReadLE reads a little-endian value of type T at off.
//
// Example:
//
//	itemCount, err := binary.ReadLE[uint32](sr, footer+16, "APE item count")
func ReadLE[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, LittleEndian)
}

// Cursor reads sequentially from a SafeReader and remembers the first error.
// Later reads after a failure return zero values, so a run of field reads
// needs a single Err check at the end.
type Cursor struct {
	sr    *SafeReader
	err   error
	off   int64
	order ByteOrder
}

// NewCursor creates a Cursor positioned at off.
func NewCursor(sr *SafeReader, off int64, order ByteOrder) *Cursor {
	return &Cursor{sr: sr, off: off, order: order}
}

// Next reads a value of type T and advances the cursor.
func Next[T Unsigned](c *Cursor, what string) T {
	if c.err != nil {
		var zero T
		return zero
	}
	v, err := ReadEndian[T](c.sr, c.off, what, c.order)
	if err != nil {
		c.err = err
		return v
	}
	c.off += int64(sizeOf[T]())
	return v
}

// Bytes reads n raw bytes and advances the cursor.
func (c *Cursor) Bytes(n int, what string) []byte {
	if c.err != nil {
		return nil
	}
	b, err := c.sr.Slice(c.off, n, what)
	if err != nil {
		c.err = err
		return nil
	}
	c.off += int64(n)
	return b
}

// String reads n bytes as a string and advances the cursor.
func (c *Cursor) String(n int, what string) string {
	return string(c.Bytes(n, what))
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int64) {
	c.off += n
}

// Offset returns the current position.
func (c *Cursor) Offset() int64 {
	return c.off
}

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error {
	return c.err
}
