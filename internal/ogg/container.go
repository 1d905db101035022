// Package ogg opens Ogg Vorbis and Opus streams.
//
// Both codecs store their tags in a Vorbis comment header packet that
// follows the identification packet. Saving re-paginates the header
// packets and renumbers the pages that follow; audio packets are never
// touched.
package ogg

import (
	"errors"
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
)

// Page header flags.
const (
	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04
)

const (
	pageHeaderSize = 27
	maxSegments    = 255
	maxSegmentSize = 255
)

// Page represents an Ogg page.
//
// An Ogg page is the fundamental unit of the Ogg container format.
// Each page contains a header and payload data.
type Page struct {
	HeaderType      byte   // Bit flags: 0x01=continued, 0x02=BOS, 0x04=EOS
	GranulePosition int64  // Position in samples
	SerialNumber    uint32 // Logical bitstream identifier
	SequenceNumber  uint32 // Page sequence number
	Segments        []byte // Lacing values
	Data            []byte // Page payload (one or more packets)
}

// readPage reads an Ogg page at the given offset.
//
// Returns the page, next offset, and any error encountered.
func readPage(sr *binary.SafeReader, offset int64) (*Page, int64, error) {
	c := binary.NewCursor(sr, offset, binary.LittleEndian)
	magic := c.String(4, "Ogg magic")
	version := binary.Next[uint8](c, "version")
	headerType := binary.Next[uint8](c, "header type")
	granule := binary.Next[uint64](c, "granule position")
	serial := binary.Next[uint32](c, "serial number")
	sequence := binary.Next[uint32](c, "sequence number")
	c.Skip(4) // checksum
	segmentCount := binary.Next[uint8](c, "segment count")
	if err := c.Err(); err != nil {
		return nil, 0, err
	}
	if magic != "OggS" {
		return nil, 0, fmt.Errorf("invalid Ogg page at offset %d", offset)
	}
	if version != 0 {
		return nil, 0, fmt.Errorf("unsupported Ogg version: %d", version)
	}

	segments := c.Bytes(int(segmentCount), "segment table")
	dataSize := 0
	for _, seg := range segments {
		dataSize += int(seg)
	}
	data := c.Bytes(dataSize, "page data")
	if err := c.Err(); err != nil {
		return nil, 0, err
	}

	page := &Page{
		HeaderType:      headerType,
		GranulePosition: int64(granule),
		SerialNumber:    serial,
		SequenceNumber:  sequence,
		Segments:        segments,
		Data:            data,
	}
	return page, c.Offset(), nil
}

// complete reports whether the last packet on the page ends on it.
func (p *Page) complete() bool {
	return len(p.Segments) == 0 || p.Segments[len(p.Segments)-1] < maxSegmentSize
}

// encode renders the page with a freshly computed checksum.
func (p *Page) encode() []byte {
	b := make([]byte, 0, pageHeaderSize+len(p.Segments)+len(p.Data))
	b = append(b, "OggS"...)
	b = append(b, 0, p.HeaderType)
	b = binary.Encode(b, uint64(p.GranulePosition), binary.LittleEndian)
	b = binary.Encode(b, p.SerialNumber, binary.LittleEndian)
	b = binary.Encode(b, p.SequenceNumber, binary.LittleEndian)
	b = append(b, 0, 0, 0, 0)
	b = append(b, byte(len(p.Segments)))
	b = append(b, p.Segments...)
	b = append(b, p.Data...)

	sum := checksum(b)
	b[22], b[23], b[24], b[25] = byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24)
	return b
}

// packetReader reassembles packets from consecutive pages using the
// lacing values.
type packetReader struct {
	packets [][]byte
	partial []byte
}

func (pr *packetReader) add(p *Page) {
	pos := 0
	for _, seg := range p.Segments {
		pr.partial = append(pr.partial, p.Data[pos:pos+int(seg)]...)
		pos += int(seg)
		if seg < maxSegmentSize {
			pr.packets = append(pr.packets, pr.partial)
			pr.partial = nil
		}
	}
}

// paginate lays packets out on pages starting at sequence seq. A page
// on which no packet ends carries granule position -1.
func paginate(serial, seq uint32, granule int64, packets [][]byte) []*Page {
	var pages []*Page
	page := &Page{SerialNumber: serial, SequenceNumber: seq, GranulePosition: -1}
	flush := func(continued bool) {
		pages = append(pages, page)
		seq++
		page = &Page{SerialNumber: serial, SequenceNumber: seq, GranulePosition: -1}
		if continued {
			page.HeaderType = flagContinued
		}
	}

	for _, packet := range packets {
		rest := packet
		for first := true; ; first = false {
			if len(page.Segments) == maxSegments {
				flush(!first)
			}
			n := min(len(rest), maxSegmentSize)
			page.Segments = append(page.Segments, byte(n))
			page.Data = append(page.Data, rest[:n]...)
			rest = rest[n:]
			if n < maxSegmentSize {
				page.GranulePosition = granule
				break
			}
		}
	}
	if len(page.Segments) > 0 {
		pages = append(pages, page)
	}
	return pages
}

var errLastPage = errors.New("could not find last Ogg page")

// findLastGranulePosition searches backwards from the end of file
// for the last page of the stream and returns its granule position.
//
// This is used to calculate the duration of the audio stream.
func findLastGranulePosition(sr *binary.SafeReader, serial uint32) (int64, error) {
	// Search last 64KB for final page (typical max page size)
	searchStart := max(sr.Size()-65536, 0)
	buf, err := sr.Slice(searchStart, int(sr.Size()-searchStart), "search region")
	if err != nil {
		return 0, err
	}

	for i := len(buf) - pageHeaderSize; i >= 0; i-- {
		if string(buf[i:i+4]) != "OggS" {
			continue
		}
		if binary.Decode[uint32](buf[i+14:], binary.LittleEndian) != serial {
			continue
		}
		granule := int64(binary.Decode[uint64](buf[i+6:], binary.LittleEndian))
		if granule < 0 {
			continue
		}
		return granule, nil
	}
	return 0, errLastPage
}

// Ogg uses CRC-32 with polynomial 0x04c11db7, no reflection, zero initial
// value, and no final xor. hash/crc32 only implements the reflected form.
var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

func checksum(b []byte) uint32 {
	var crc uint32
	for _, v := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^v]
	}
	return crc
}
