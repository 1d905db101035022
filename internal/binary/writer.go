package binary

import "io"

// SafeWriter wraps io.Writer with position tracking and a sticky error.
type SafeWriter struct {
	w      io.Writer
	err    error
	offset int64
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{w: w}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// Err returns the first write error, if any.
func (sw *SafeWriter) Err() error {
	return sw.err
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	if sw.err != nil {
		return sw.err
	}
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	sw.err = err
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// Pad writes n zero bytes.
func (sw *SafeWriter) Pad(n int) error {
	if n <= 0 {
		return sw.err
	}
	return sw.WriteBytes(make([]byte, n))
}

// CopyFrom copies n bytes at off from sr.
func (sw *SafeWriter) CopyFrom(sr *SafeReader, off, n int64) error {
	if sw.err != nil {
		return sw.err
	}
	cw := &countingWriter{w: sw.w}
	err := sr.CopyTo(cw, off, n)
	sw.offset += cw.n
	sw.err = err
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Encode appends v to b using the given byte order.
func Encode[T Unsigned](b []byte, v T, order ByteOrder) []byte {
	bo := order.codec()
	switch sizeOf[T]() {
	case 1:
		return append(b, byte(v))
	case 2:
		return bo.AppendUint16(b, uint16(v))
	case 4:
		return bo.AppendUint32(b, uint32(v))
	default:
		return bo.AppendUint64(b, uint64(v))
	}
}

// Write writes a value of type T in big-endian byte order.
func Write[T Unsigned](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(nil, val, BigEndian))
}

// WriteLE writes a value of type T in little-endian byte order.
func WriteLE[T Unsigned](sw *SafeWriter, val T) error {
	return sw.WriteBytes(Encode(nil, val, LittleEndian))
}
