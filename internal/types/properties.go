package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Properties are technical audio properties decoded from the stream
// header, not from tags. Zero means unknown.
type Properties struct {
	Codec      string
	Duration   time.Duration
	SampleRate int // Hz
	BitDepth   int // bits per sample; 0 for lossy codecs
	Channels   int
	Bitrate    int // kbps
	Lossless   bool
}

// String returns a short description such as "FLAC 44.1kHz 16-bit stereo lossless".
func (p Properties) String() string {
	parts := []string{p.Codec}
	if p.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.1fkHz", float64(p.SampleRate)/1000))
	}
	if p.BitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", p.BitDepth))
	}
	if ch := channelDescription(p.Channels); ch != "" {
		parts = append(parts, ch)
	}
	if p.Lossless {
		parts = append(parts, "lossless")
	} else if p.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%dkbps", p.Bitrate))
	}
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })
	return strings.Join(parts, " ")
}

func channelDescription(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", n)
	}
}

// Bitrate bounds for the size-based estimate, in kbps.
const (
	MinEstimatedBitrate = 8
	MaxEstimatedBitrate = 10000
)

// EstimateBitrate derives an average bitrate in kbps from the file size and
// duration. It returns 0 when the duration is unknown.
func EstimateBitrate(fileSize int64, d time.Duration) int {
	ms := d.Milliseconds()
	if ms <= 0 || fileSize <= 0 {
		return 0
	}
	kbps := fileSize * 8 / ms
	return int(min(max(kbps, MinEstimatedBitrate), MaxEstimatedBitrate))
}

// Quality is a coarse audio quality tier.
type Quality int

const (
	// QualityHQ is lossy material, or anything whose properties are unknown.
	QualityHQ Quality = iota
	// QualitySQ is CD-equivalent lossless audio.
	QualitySQ
	// QualityHiRes is lossless audio above 48 kHz or 16 bits.
	QualityHiRes
)

func (q Quality) String() string {
	switch q {
	case QualitySQ:
		return "SQ"
	case QualityHiRes:
		return "HiRes"
	default:
		return "HQ"
	}
}

// Hi-res thresholds.
const (
	CDSampleRate = 48000
	CDBitDepth   = 16
)

// Classify maps raw technical properties to a quality tier. It is total:
// missing data yields QualityHQ. bitRate does not change the outcome; lossy
// material of any bitrate is HQ.
func Classify(sampleRate, bitDepth, bitRate int, lossless bool) Quality {
	if !lossless {
		return QualityHQ
	}
	if sampleRate > CDSampleRate || bitDepth > CDBitDepth {
		return QualityHiRes
	}
	if sampleRate > 0 && bitDepth > 0 {
		return QualitySQ
	}
	return QualityHQ
}
