// Package audiotag reads and writes audio metadata through one typed API.
//
// Every supported container exposes the same eighteen fields, an ordered
// picture list, a ReplayGain block and derived audio properties, whichever
// tag scheme stores them underneath.
//
// # Quick Start
//
// Editing tags in place:
//
//	t := audiotag.New()
//	defer t.Dispose()
//
//	if err := t.LoadPath("song.flac"); err != nil {
//		log.Fatal(err)
//	}
//	title := "Modified Title"
//	if err := t.SetTitle(&title); err != nil {
//		log.Fatal(err)
//	}
//	if _, err := t.Save(); err != nil {
//		log.Fatal(err)
//	}
//
// # Supported Formats
//
//   - MP3: ID3v2 (with ID3v1 and APE read as fallbacks)
//   - FLAC, Ogg Vorbis, Opus: Vorbis comments and picture blocks
//   - M4A/M4B: iTunes ilst atoms
//   - WAV: RIFF LIST/INFO chunk
//   - AIFF/AIFF-C: NAME, AUTH, (c) and ANNO chunks
//   - Monkey's Audio: APEv2
//
// # Lifecycle
//
// A Tagger is Empty after New, Loaded after a successful LoadPath or
// LoadBuffer, and Disposed after Dispose. A handle loads at most once;
// every accessor fails with a NotLoadedError outside the Loaded state.
//
// # Null Semantics
//
// Absent fields read as nil. Setting nil removes the entry from the file.
// Fields the tag scheme cannot store read as nil and ignore writes.
//
// # Saving
//
// Path-loaded handles are saved atomically through a temporary file in
// the same directory. Buffer-loaded handles return the new bytes:
//
//	out, err := t.Save()
//
// # Concurrency
//
// A Tagger is not safe for concurrent use. LoadMany loads independent
// handles in parallel:
//
//	taggers, err := audiotag.LoadMany(ctx, paths...)
package audiotag
