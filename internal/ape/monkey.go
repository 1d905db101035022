package ape

import (
	"fmt"
	"io"
	"time"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// Monkey's Audio versions where the header layout or frame size changed.
const (
	versionDescriptor = 3980
	version3950       = 3950
	version3900       = 3900
	version3800       = 3800

	compressionExtraHigh = 4000

	formatFlag8Bit  = 1 << 0
	formatFlag24Bit = 1 << 3
)

type streamHeader struct {
	version          uint16
	compression      uint16
	channels         uint16
	bitsPerSample    uint16
	sampleRate       uint32
	blocksPerFrame   uint32
	finalFrameBlocks uint32
	totalFrames      uint32
}

// parseStreamHeader decodes the "MAC " header at off.
func parseStreamHeader(sr *binary.SafeReader, off int64) (*streamHeader, error) {
	c := binary.NewCursor(sr, off, binary.LittleEndian)
	if magic := c.String(4, "Monkey's Audio magic"); magic != "MAC " {
		if c.Err() != nil {
			return nil, c.Err()
		}
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: off, Reason: "missing MAC header"}
	}

	h := &streamHeader{version: binary.Next[uint16](c, "version")}
	if h.version >= versionDescriptor {
		c.Skip(2) // padding
		descriptorBytes := binary.Next[uint32](c, "descriptor size")
		c = binary.NewCursor(sr, off+int64(descriptorBytes), binary.LittleEndian)
		h.compression = binary.Next[uint16](c, "compression level")
		c.Skip(2) // format flags
		h.blocksPerFrame = binary.Next[uint32](c, "blocks per frame")
		h.finalFrameBlocks = binary.Next[uint32](c, "final frame blocks")
		h.totalFrames = binary.Next[uint32](c, "total frames")
		h.bitsPerSample = binary.Next[uint16](c, "bits per sample")
		h.channels = binary.Next[uint16](c, "channels")
		h.sampleRate = binary.Next[uint32](c, "sample rate")
	} else {
		h.compression = binary.Next[uint16](c, "compression level")
		flags := binary.Next[uint16](c, "format flags")
		h.channels = binary.Next[uint16](c, "channels")
		h.sampleRate = binary.Next[uint32](c, "sample rate")
		c.Skip(8) // header and terminating data sizes
		h.totalFrames = binary.Next[uint32](c, "total frames")
		h.finalFrameBlocks = binary.Next[uint32](c, "final frame blocks")

		switch {
		case flags&formatFlag8Bit != 0:
			h.bitsPerSample = 8
		case flags&formatFlag24Bit != 0:
			h.bitsPerSample = 24
		default:
			h.bitsPerSample = 16
		}

		switch {
		case h.version >= version3950:
			h.blocksPerFrame = 73728 * 4
		case h.version >= version3900, h.version >= version3800 && h.compression == compressionExtraHigh:
			h.blocksPerFrame = 73728
		default:
			h.blocksPerFrame = 9216
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return h, nil
}

// duration returns the stream length, or zero when the header is incomplete.
func (h *streamHeader) duration() time.Duration {
	if h.sampleRate == 0 || h.totalFrames == 0 {
		return 0
	}
	blocks := uint64(h.totalFrames-1)*uint64(h.blocksPerFrame) + uint64(h.finalFrameBlocks)
	return time.Duration(blocks) * time.Second / time.Duration(h.sampleRate)
}

// TrailerEnd returns where a trailing APE tag must end: before an ID3v1 tag
// when one is present, else at end of file.
func TrailerEnd(sr *binary.SafeReader) int64 {
	end := sr.Size()
	if end >= 128 {
		if b, err := sr.Slice(end-128, 3, "ID3v1 marker"); err == nil && string(b) == "TAG" {
			end -= 128
		}
	}
	return end
}

type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	start, _ := types.ID3v2End(sr)
	h, err := parseStreamHeader(sr, start)
	if err != nil {
		return nil, fmt.Errorf("parse Monkey's Audio header: %w", err)
	}

	region, found, err := Find(sr, TrailerEnd(sr))
	if err != nil {
		return nil, err
	}

	tag := New()
	if found {
		if tag, err = Read(sr, region); err != nil {
			return nil, err
		}
	} else {
		if opts.RequireTag {
			return nil, registry.ErrNoTag
		}
		end := TrailerEnd(sr)
		region = Region{Start: end, End: end}
	}

	d := h.duration()
	return &registry.Opened{
		Adapter: &fileAdapter{Tag: tag, sr: sr, region: region},
		Properties: types.Properties{
			Codec:      fmt.Sprintf("Monkey's Audio %d.%02d", h.version/1000, h.version%1000/10),
			Duration:   d,
			SampleRate: int(h.sampleRate),
			BitDepth:   int(h.bitsPerSample),
			Channels:   int(h.channels),
			Bitrate:    types.EstimateBitrate(sr.Size(), d),
			Lossless:   true,
		},
	}, nil
}

// fileAdapter rewrites the APE tag region of a Monkey's Audio file.
type fileAdapter struct {
	*Tag
	sr     *binary.SafeReader
	region Region
}

// Serialize implements registry.Adapter.
func (a *fileAdapter) Serialize(w io.Writer) error {
	if err := a.sr.CopyTo(w, 0, a.region.Start); err != nil {
		return err
	}
	if _, err := w.Write(a.Encode()); err != nil {
		return err
	}
	return a.sr.CopyTo(w, a.region.End, a.sr.Size()-a.region.End)
}

func init() {
	registry.Register(types.FormatAPE, codec{})
}
