package audiotag

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneReplayGain(rg ReplayGain) ReplayGain {
	return ReplayGain{
		TrackGain: clonePtr(rg.TrackGain),
		TrackPeak: clonePtr(rg.TrackPeak),
		AlbumGain: clonePtr(rg.AlbumGain),
		AlbumPeak: clonePtr(rg.AlbumPeak),
	}
}

// ReplayGain returns the loudness normalization block. Schemes without
// ReplayGain storage return an empty block.
func (t *Tagger) ReplayGain() (ReplayGain, error) {
	if err := t.loaded("replay gain"); err != nil {
		return ReplayGain{}, err
	}
	return cloneReplayGain(t.adapter.ReplayGain()), nil
}

// SetReplayGain replaces the whole block. Nil members are removed. Schemes
// without ReplayGain storage ignore it. NaN and infinite values fail with
// an InvalidValueError.
func (t *Tagger) SetReplayGain(rg ReplayGain) error {
	if err := t.loaded("set replay gain"); err != nil {
		return err
	}
	if err := rg.Validate(); err != nil {
		return err
	}
	if err := t.adapter.SetReplayGain(cloneReplayGain(rg)); err != nil {
		return err
	}
	t.dirty = true
	return nil
}

func (t *Tagger) gain(get func(ReplayGain) *float64) (*float64, error) {
	rg, err := t.ReplayGain()
	if err != nil {
		return nil, err
	}
	return get(rg), nil
}

func (t *Tagger) setGain(v *float64, set func(*ReplayGain, *float64)) error {
	rg, err := t.ReplayGain()
	if err != nil {
		return err
	}
	set(&rg, clonePtr(v))
	return t.SetReplayGain(rg)
}

// TrackGain returns the track gain in dB, or nil if absent.
func (t *Tagger) TrackGain() (*float64, error) {
	return t.gain(func(rg ReplayGain) *float64 { return rg.TrackGain })
}

// SetTrackGain sets the track gain in dB. Nil removes it.
func (t *Tagger) SetTrackGain(v *float64) error {
	return t.setGain(v, func(rg *ReplayGain, v *float64) { rg.TrackGain = v })
}

// TrackPeak returns the track peak amplitude, or nil if absent.
func (t *Tagger) TrackPeak() (*float64, error) {
	return t.gain(func(rg ReplayGain) *float64 { return rg.TrackPeak })
}

// SetTrackPeak sets the track peak amplitude. Nil removes it.
func (t *Tagger) SetTrackPeak(v *float64) error {
	return t.setGain(v, func(rg *ReplayGain, v *float64) { rg.TrackPeak = v })
}

// AlbumGain returns the album gain in dB, or nil if absent.
func (t *Tagger) AlbumGain() (*float64, error) {
	return t.gain(func(rg ReplayGain) *float64 { return rg.AlbumGain })
}

// SetAlbumGain sets the album gain in dB. Nil removes it.
func (t *Tagger) SetAlbumGain(v *float64) error {
	return t.setGain(v, func(rg *ReplayGain, v *float64) { rg.AlbumGain = v })
}

// AlbumPeak returns the album peak amplitude, or nil if absent.
func (t *Tagger) AlbumPeak() (*float64, error) {
	return t.gain(func(rg ReplayGain) *float64 { return rg.AlbumPeak })
}

// SetAlbumPeak sets the album peak amplitude. Nil removes it.
func (t *Tagger) SetAlbumPeak(v *float64) error {
	return t.setGain(v, func(rg *ReplayGain, v *float64) { rg.AlbumPeak = v })
}
