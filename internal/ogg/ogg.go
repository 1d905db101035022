package ogg

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

// variant describes one codec carried in Ogg.
type variant struct {
	format       types.Format
	headers      int // header packets, identification included
	commentMagic string
	framingBit   bool
	identify     func(packet []byte) (identification, []types.Warning, error)
}

type identification struct {
	props       types.Properties
	granuleRate int64
	preSkip     int64
}

type codec struct {
	v *variant
}

// Open implements registry.Codec.
func (c codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	corrupt := func(off int64, format string, args ...any) error {
		return &types.CorruptedFileError{Path: sr.Path(), Offset: off, Reason: fmt.Sprintf(format, args...)}
	}

	first, headerStart, err := readPage(sr, 0)
	if err != nil {
		return nil, corrupt(0, "first page: %v", err)
	}
	var pr packetReader
	pr.add(first)
	if first.HeaderType&flagBOS == 0 || len(pr.packets) != 1 || pr.partial != nil {
		return nil, corrupt(0, "first page must hold exactly the identification header")
	}
	id, warnings, err := c.v.identify(pr.packets[0])
	if err != nil {
		return nil, corrupt(pageHeaderSize, "%v", err)
	}

	pr = packetReader{}
	offset := headerStart
	headerPages := 0
	for len(pr.packets) < c.v.headers-1 {
		page, next, err := readPage(sr, offset)
		if err != nil {
			return nil, corrupt(offset, "header page: %v", err)
		}
		if page.SerialNumber != first.SerialNumber {
			return nil, corrupt(offset, "multiplexed Ogg streams are not supported")
		}
		pr.add(page)
		headerPages++
		offset = next
	}
	if len(pr.packets) != c.v.headers-1 || pr.partial != nil {
		return nil, corrupt(offset, "audio data shares a page with the header packets")
	}

	packet := pr.packets[0]
	if !bytes.HasPrefix(packet, []byte(c.v.commentMagic)) {
		return nil, corrupt(headerStart, "missing comment header")
	}
	comments, ws, err := vorbis.Parse(packet[len(c.v.commentMagic):])
	if err != nil {
		if opts.RequireTag {
			return nil, registry.ErrNoTag
		}
		warnings = append(warnings, types.Warning{
			Stage:   "metadata",
			Message: fmt.Sprintf("%v; the comment header will be replaced on save", err),
			Offset:  headerStart,
		})
		comments = vorbis.New()
	}
	warnings = append(warnings, ws...)
	warnings = append(warnings, comments.TakeInlinePictures()...)

	s := &stream{
		Comments:    comments,
		v:           c.v,
		sr:          sr,
		serial:      first.SerialNumber,
		firstSeq:    first.SequenceNumber,
		headerStart: headerStart,
		headerEnd:   offset,
		headerPages: headerPages,
		setup:       pr.packets[1:],
	}

	props := id.props
	if granule, err := findLastGranulePosition(sr, s.serial); err != nil {
		warnings = append(warnings, types.Warning{
			Stage:   "technical",
			Message: fmt.Sprintf("failed to calculate duration: %v", err),
		})
	} else if id.granuleRate > 0 && granule > id.preSkip {
		props.Duration = time.Duration(float64(granule-id.preSkip) / float64(id.granuleRate) * float64(time.Second))
	}
	if props.Bitrate == 0 {
		props.Bitrate = types.EstimateBitrate(sr.Size()-offset, props.Duration)
	}

	return &registry.Opened{Adapter: s, Properties: props, Warnings: warnings}, nil
}

// stream is the Vorbis comment adapter bound to an Ogg logical stream.
type stream struct {
	*vorbis.Comments
	v           *variant
	sr          *binary.SafeReader
	serial      uint32
	firstSeq    uint32
	headerStart int64 // end of the identification page
	headerEnd   int64 // first audio page
	headerPages int
	setup       [][]byte // header packets after the comments, kept verbatim
}

func (s *stream) commentPacket() []byte {
	packet := append([]byte(s.v.commentMagic), s.EncodeInline()...)
	if s.v.framingBit {
		packet = append(packet, 1)
	}
	return packet
}

// Serialize implements registry.Adapter.
func (s *stream) Serialize(w io.Writer) error {
	packets := append([][]byte{s.commentPacket()}, s.setup...)
	pages := paginate(s.serial, s.firstSeq+1, 0, packets)

	if err := s.sr.CopyTo(w, 0, s.headerStart); err != nil {
		return err
	}
	for _, p := range pages {
		if _, err := w.Write(p.encode()); err != nil {
			return err
		}
	}

	size := s.sr.Size()
	shift := int64(len(pages) - s.headerPages)
	if shift == 0 {
		return s.sr.CopyTo(w, s.headerEnd, size-s.headerEnd)
	}

	// Later pages of the stream need new sequence numbers and checksums.
	for off := s.headerEnd; off < size; {
		page, next, err := readPage(s.sr, off)
		if err != nil {
			return s.sr.CopyTo(w, off, size-off)
		}
		if page.SerialNumber != s.serial {
			if err := s.sr.CopyTo(w, off, next-off); err != nil {
				return err
			}
		} else {
			page.SequenceNumber = uint32(int64(page.SequenceNumber) + shift)
			if _, err := w.Write(page.encode()); err != nil {
				return err
			}
		}
		off = next
	}
	return nil
}

func init() {
	registry.Register(types.FormatOgg, codec{v: vorbisStream})
	registry.Register(types.FormatOpus, codec{v: opusStream})
}
