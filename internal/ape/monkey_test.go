package ape

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/testutil"
	"github.com/simonhull/audiotag/internal/types"
)

func TestCodec_Open(t *testing.T) {
	// Two frames of 294912 blocks plus a half frame, at 44.1 kHz.
	file := testutil.MonkeysAudio(44100, 16, 2, 3, 256)

	opened, err := codec{}.Open(reader(file), registry.OpenOptions{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	p := opened.Properties
	if p.SampleRate != 44100 || p.BitDepth != 16 || p.Channels != 2 || !p.Lossless {
		t.Errorf("Properties = %+v", p)
	}
	wantBlocks := 2*73728*4 + 73728*2
	want := time.Duration(wantBlocks) * time.Second / 44100
	if p.Duration != want {
		t.Errorf("Duration = %v, want %v", p.Duration, want)
	}
	if opened.Adapter.TagType() != types.TagAPE {
		t.Errorf("TagType() = %v", opened.Adapter.TagType())
	}
}

func TestCodec_RequireTag(t *testing.T) {
	file := testutil.MonkeysAudio(44100, 16, 2, 1, 16)
	_, err := codec{}.Open(reader(file), registry.OpenOptions{RequireTag: true})
	if !errors.Is(err, registry.ErrNoTag) {
		t.Errorf("Open() error = %v, want ErrNoTag", err)
	}
}

func TestCodec_SerializeReplacesTag(t *testing.T) {
	audio := testutil.MonkeysAudio(96000, 24, 2, 1, 64)
	old := New()
	_ = old.WriteField(types.FieldTitle, types.StringValue("Old title with extra length"))
	file := append(append([]byte{}, audio...), old.Encode()...)

	opened, err := codec{}.Open(reader(file), registry.OpenOptions{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := opened.Adapter.ReadField(types.FieldTitle); got != types.StringValue("Old title with extra length") {
		t.Fatalf("title = %v", got)
	}
	_ = opened.Adapter.WriteField(types.FieldTitle, types.StringValue("New"))

	var out bytes.Buffer
	if err := opened.Adapter.Serialize(&out); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), audio) {
		t.Error("audio payload was not preserved")
	}

	reopened, err := codec{}.Open(reader(out.Bytes()), registry.OpenOptions{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.Adapter.ReadField(types.FieldTitle); got != types.StringValue("New") {
		t.Errorf("title after save = %v", got)
	}
	if out.Len() >= len(file) {
		t.Errorf("shorter title should shrink the file: %d >= %d", out.Len(), len(file))
	}
}
