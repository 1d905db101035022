// Package testutil builds small synthetic audio containers for tests.
//
// Every builder returns a complete, parseable file as a byte slice. The
// audio payload is filler; only headers carry real values.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to name inside a fresh temporary directory and
// returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
func be16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// MonkeysAudio builds a Monkey's Audio 3.99 file with the given stream
// parameters and payloadSize filler bytes.
func MonkeysAudio(sampleRate uint32, bits, channels uint16, totalFrames uint32, payloadSize int) []byte {
	const blocksPerFrame = 73728 * 4
	descriptor := concat(
		[]byte("MAC "),
		le16(3990), le16(0),
		le32(52),                  // descriptor bytes
		le32(24),                  // header bytes
		le32(0),                   // seek table bytes
		le32(0),                   // header data bytes
		le32(uint32(payloadSize)), // frame data bytes
		le32(0),                   // frame data bytes high
		le32(0),                   // terminating data bytes
		make([]byte, 16),          // MD5
	)
	header := concat(
		le16(2000), le16(0),
		le32(blocksPerFrame),
		le32(blocksPerFrame/2), // final frame blocks
		le32(totalFrames),
		le16(bits), le16(channels),
		le32(sampleRate),
	)
	return concat(descriptor, header, make([]byte, payloadSize))
}
