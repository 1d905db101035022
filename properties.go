package audiotag

import (
	"time"

	"github.com/simonhull/audiotag/internal/types"
)

// Properties returns the technical properties decoded from the stream.
// Bitrate is filled in from the file size when the stream has none.
func (t *Tagger) Properties() (Properties, error) {
	if err := t.loaded("properties"); err != nil {
		return Properties{}, err
	}
	p := t.props
	if p.Bitrate == 0 {
		p.Bitrate = types.EstimateBitrate(t.size, p.Duration)
	}
	return p, nil
}

// Quality classifies the audio as HQ, SQ or HiRes.
func (t *Tagger) Quality() (Quality, error) {
	p, err := t.Properties()
	if err != nil {
		return QualityHQ, err
	}
	return Classify(p.SampleRate, p.BitDepth, p.Bitrate, p.Lossless), nil
}

func known(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// BitDepth returns bits per sample, or nil for lossy codecs and unknown
// streams.
func (t *Tagger) BitDepth() (*int, error) {
	p, err := t.Properties()
	if err != nil {
		return nil, err
	}
	return known(p.BitDepth), nil
}

// BitRate returns the average bitrate in kbps, or nil if unknown.
func (t *Tagger) BitRate() (*int, error) {
	p, err := t.Properties()
	if err != nil {
		return nil, err
	}
	return known(p.Bitrate), nil
}

// SampleRate returns the sample rate in Hz, or nil if unknown.
func (t *Tagger) SampleRate() (*int, error) {
	p, err := t.Properties()
	if err != nil {
		return nil, err
	}
	return known(p.SampleRate), nil
}

// Channels returns the channel count, or nil if unknown.
func (t *Tagger) Channels() (*int, error) {
	p, err := t.Properties()
	if err != nil {
		return nil, err
	}
	return known(p.Channels), nil
}

// Duration returns the playback length. Zero means unknown.
func (t *Tagger) Duration() (time.Duration, error) {
	p, err := t.Properties()
	if err != nil {
		return 0, err
	}
	return p.Duration, nil
}
