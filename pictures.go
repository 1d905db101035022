package audiotag

import (
	"slices"
)

// Pictures returns copies of the embedded pictures in file order. Pictures
// over the WithMaxPictureSize limit are left out.
func (t *Tagger) Pictures() ([]Picture, error) {
	if err := t.loaded("pictures"); err != nil {
		return nil, err
	}
	pics := t.adapter.Pictures()
	if limit := t.opts.maxPictureSize; limit > 0 {
		pics = slices.DeleteFunc(pics, func(p Picture) bool { return p.Size() > limit })
	}
	return pics, nil
}

// SetPictures replaces every embedded picture, including hidden ones, with
// copies of pics. An empty slice removes them all.
//
// Tag schemes that hold fewer pictures keep the first ones; the dropped
// pictures are reported through Warnings.
func (t *Tagger) SetPictures(pics []Picture) error {
	if err := t.loaded("set pictures"); err != nil {
		return err
	}
	warnings := t.adapter.SetPictures(pics)
	for _, w := range warnings {
		t.warn(w)
	}
	t.warnings = append(t.warnings, warnings...)
	t.dirty = true
	return nil
}

// AddPicture appends p to the picture list.
func (t *Tagger) AddPicture(p Picture) error {
	if err := t.loaded("add picture"); err != nil {
		return err
	}
	return t.SetPictures(append(t.adapter.Pictures(), p))
}

// RemovePictures deletes every embedded picture.
func (t *Tagger) RemovePictures() error {
	return t.SetPictures(nil)
}
