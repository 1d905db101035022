package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestSafeWriter_Offset(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	if sw.Offset() != 0 {
		t.Errorf("expected initial offset 0, got %d", sw.Offset())
	}

	steps := []struct {
		write func() error
		name  string
		want  int64
	}{
		{name: "uint8", want: 1, write: func() error { return Write[uint8](sw, 0x01) }},
		{name: "uint16", want: 3, write: func() error { return Write[uint16](sw, 0x0203) }},
		{name: "uint32 LE", want: 7, write: func() error { return WriteLE[uint32](sw, 0x07060504) }},
		{name: "string", want: 11, write: func() error { return sw.WriteString("TAG!") }},
		{name: "pad", want: 13, write: func() error { return sw.Pad(2) }},
	}

	for _, step := range steps {
		if err := step.write(); err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		if sw.Offset() != step.want {
			t.Errorf("%s: offset = %d, want %d", step.name, sw.Offset(), step.want)
		}
	}

	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 'T', 'A', 'G', '!', 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("written = % X, want % X", buf.Bytes(), want)
	}
}

func TestSafeWriter_CopyFrom(t *testing.T) {
	src := []byte("0123456789")
	sr := NewSafeReader(bytes.NewReader(src), int64(len(src)), "src")

	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)
	if err := sw.CopyFrom(sr, 2, 5); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if buf.String() != "23456" {
		t.Errorf("copied %q, want %q", buf.String(), "23456")
	}
	if sw.Offset() != 5 {
		t.Errorf("offset = %d, want 5", sw.Offset())
	}

	if err := sw.CopyFrom(sr, 8, 5); err == nil {
		t.Error("expected error copying past end")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSafeWriter_StickyError(t *testing.T) {
	sw := NewSafeWriter(failingWriter{})
	if err := Write[uint32](sw, 1); err == nil {
		t.Fatal("expected write error")
	}
	if err := sw.WriteString("more"); err == nil || err.Error() != "disk full" {
		t.Errorf("second write error = %v, want sticky disk full", err)
	}
	if sw.Err() == nil {
		t.Error("Err() should report the first failure")
	}
}

func TestEncode(t *testing.T) {
	got := Encode[uint32](nil, 0x01020304, LittleEndian)
	got = Encode[uint16](got, 0x0506, BigEndian)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0x05, 0x06}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode = % X, want % X", got, want)
	}
	if v := Decode[uint32](got, LittleEndian); v != 0x01020304 {
		t.Errorf("Decode = 0x%X", v)
	}
}
