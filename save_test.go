package audiotag_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/simonhull/audiotag"
	"github.com/simonhull/audiotag/internal/testutil"
)

func TestTagger_SaveBuffer(t *testing.T) {
	original := testutil.FLAC(44100, 2, 16, 44100)
	tg := loadBuffer(t, original)

	buf, err := tg.Buffer()
	if err != nil || !bytes.Equal(buf, original) {
		t.Fatalf("Buffer() before save = %d bytes, %v", len(buf), err)
	}

	if err := tg.SetArtist(ptr("Band")); err != nil {
		t.Fatal(err)
	}
	out, err := tg.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if buf, _ := tg.Buffer(); !bytes.Equal(buf, out) {
		t.Error("Buffer() should return the saved bytes")
	}
	if tg.Modified() {
		t.Error("Modified() = true after Save")
	}

	// A second save builds on the first.
	if err := tg.SetAlbum(ptr("Album")); err != nil {
		t.Fatal(err)
	}
	out, err = tg.Save()
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	reloaded := loadBuffer(t, out)
	if artist, _ := reloaded.Artist(); artist == nil || *artist != "Band" {
		t.Errorf("Artist() = %v, want Band", artist)
	}
	if album, _ := reloaded.Album(); album == nil || *album != "Album" {
		t.Errorf("Album() = %v, want Album", album)
	}
}

func TestTagger_SaveUntouched(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"MP3", testutil.MP3("Song", "Band", 10)},
		{"WAV", testutil.WAV(44100, 2, 16, 400, testutil.RIFFInfo("INAM", "Song"))},
		{"AIFF", testutil.AIFF(44100, 2, 16, 100, testutil.AIFFChunk("NAME", []byte("Song")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := loadBuffer(t, tt.data)
			out, err := tg.Save()
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			reloaded := loadBuffer(t, out)
			if title, _ := reloaded.Title(); title == nil || *title != "Song" {
				t.Errorf("Title() = %v, want Song", title)
			}
		})
	}
}

func TestTagger_SaveAsFromBuffer(t *testing.T) {
	tg := loadBuffer(t, testutil.MP3("Song", "Band", 10))
	target := filepath.Join(t.TempDir(), "out.mp3")

	err := tg.SaveAs(target)
	var ioErr *audiotag.IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, audiotag.ErrNoPath) {
		t.Fatalf("SaveAs() error = %v, want IOError wrapping ErrNoPath", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("SaveAs() should not create the target")
	}
}

func TestTagger_SaveAs(t *testing.T) {
	original := testutil.MP3("Song", "Band", 10)
	path := testutil.WriteFile(t, "song.mp3", original)
	target := filepath.Join(filepath.Dir(path), "copy.mp3")

	tg := loadPath(t, path)
	if err := tg.SetAlbum(ptr("Copied")); err != nil {
		t.Fatal(err)
	}
	if err := tg.SaveAs(target); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, original) {
		t.Error("SaveAs() should leave the loaded file untouched")
	}
	if album, _ := loadPath(t, target).Album(); album == nil || *album != "Copied" {
		t.Errorf("Album() in copy = %v, want Copied", album)
	}
	if tg.Path() != path {
		t.Errorf("Path() = %q, want %q", tg.Path(), path)
	}

	// Saving in place afterwards still reads the original audio.
	if _, err := tg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if album, _ := loadPath(t, path).Album(); album == nil || *album != "Copied" {
		t.Errorf("Album() in original = %v, want Copied", album)
	}
}

func TestTagger_SaveRepeatedInPlace(t *testing.T) {
	path := testutil.WriteFile(t, "song.flac", testutil.FLAC(44100, 2, 16, 44100))
	tg := loadPath(t, path)

	for i, title := range []string{"One", "A much longer second title", "3"} {
		if err := tg.SetTitle(ptr(title)); err != nil {
			t.Fatal(err)
		}
		if _, err := tg.Save(); err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}
		if got, _ := loadPath(t, path).Title(); got == nil || *got != title {
			t.Errorf("after save #%d Title() = %v, want %q", i, got, title)
		}
	}
}

func TestTagger_SaveOptions(t *testing.T) {
	t.Run("backup", func(t *testing.T) {
		original := testutil.MP3("Song", "Band", 10)
		path := testutil.WriteFile(t, "song.mp3", original)
		tg := loadPath(t, path)
		if err := tg.SetTitle(ptr("New")); err != nil {
			t.Fatal(err)
		}
		if _, err := tg.Save(audiotag.WithBackup(".bak")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		backup, err := os.ReadFile(path + ".bak")
		if err != nil {
			t.Fatalf("read backup: %v", err)
		}
		if !bytes.Equal(backup, original) {
			t.Error("backup should hold the original bytes")
		}
		if title, _ := loadPath(t, path).Title(); title == nil || *title != "New" {
			t.Errorf("Title() = %v, want New", title)
		}
	})

	t.Run("preserve mod time", func(t *testing.T) {
		path := testutil.WriteFile(t, "song.mp3", testutil.MP3("Song", "Band", 10))
		past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatal(err)
		}

		tg := loadPath(t, path)
		if err := tg.SetTitle(ptr("New")); err != nil {
			t.Fatal(err)
		}
		if _, err := tg.Save(audiotag.WithPreserveModTime()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().Equal(past) {
			t.Errorf("ModTime() = %v, want %v", info.ModTime(), past)
		}
	})

	t.Run("validation", func(t *testing.T) {
		path := testutil.WriteFile(t, "song.m4a", testutil.M4A(1))
		tg := loadPath(t, path)
		if err := tg.SetTitle(ptr("Validated")); err != nil {
			t.Fatal(err)
		}
		if err := tg.SetTrackNumber(ptr(9)); err != nil {
			t.Fatal(err)
		}
		if _, err := tg.Save(audiotag.WithValidation()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if n, _ := loadPath(t, path).TrackNumber(); n == nil || *n != 9 {
			t.Errorf("TrackNumber() = %v, want 9", n)
		}
	})

	t.Run("no temp files left", func(t *testing.T) {
		path := testutil.WriteFile(t, "song.mp3", testutil.MP3("Song", "Band", 10))
		tg := loadPath(t, path)
		if _, err := tg.Save(); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory holds %d entries, want 1", len(entries))
		}
	})
}

func TestTagger_SaveKeepsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not POSIX permissions on windows")
	}

	tests := []struct {
		name string
		mode os.FileMode
		as   bool
	}{
		{"in place", 0o644, false},
		{"in place group only", 0o640, false},
		{"new target takes source mode", 0o604, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, "song.mp3", testutil.MP3("Song", "Band", 10))
			if err := os.Chmod(path, tt.mode); err != nil {
				t.Fatal(err)
			}
			target := path
			if tt.as {
				target = filepath.Join(filepath.Dir(path), "copy.mp3")
			}

			tg := loadPath(t, path)
			if err := tg.SetTitle(ptr("New")); err != nil {
				t.Fatal(err)
			}
			if err := tg.SaveAs(target); err != nil {
				t.Fatalf("SaveAs() error = %v", err)
			}

			info, err := os.Stat(target)
			if err != nil {
				t.Fatal(err)
			}
			if got := info.Mode().Perm(); got != tt.mode {
				t.Errorf("mode = %v, want %v", got, tt.mode)
			}
		})
	}
}

func TestTagger_SaveMissingDirectory(t *testing.T) {
	path := testutil.WriteFile(t, "song.mp3", testutil.MP3("Song", "Band", 10))
	tg := loadPath(t, path)

	err := tg.SaveAs(filepath.Join(t.TempDir(), "missing", "out.mp3"))
	var ioErr *audiotag.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("SaveAs() error = %v, want IOError", err)
	}
	if ioErr.Op != "create temp file" {
		t.Errorf("Op = %q", ioErr.Op)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		is   error
	}{
		{"not loaded", &audiotag.NotLoadedError{Op: "title"}, "title: no file loaded", audiotag.ErrNotLoaded},
		{"load buffer", &audiotag.LoadError{Err: audiotag.ErrNoTag}, "load buffer: file must contain at least one tag", audiotag.ErrNoTag},
		{"load path", &audiotag.LoadError{Path: "a.mp3", Err: audiotag.ErrDisposed}, "load a.mp3: handle is disposed", audiotag.ErrDisposed},
		{"io", &audiotag.IOError{Op: "rename", Path: "a.mp3", Err: os.ErrPermission}, "rename a.mp3: permission denied", os.ErrPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, tt.is) {
				t.Errorf("errors.Is(%v) = false", tt.is)
			}
		})
	}
}

func BenchmarkTagger_LoadBuffer(b *testing.B) {
	data := testutil.MP3("Song", "Band", 100)
	b.ReportAllocs()
	for b.Loop() {
		tg := audiotag.New()
		if err := tg.LoadBuffer(data); err != nil {
			b.Fatal(err)
		}
		tg.Dispose()
	}
}

func BenchmarkTagger_SaveBuffer(b *testing.B) {
	tg := loadBuffer(b, testutil.FLAC(44100, 2, 16, 44100))
	b.ReportAllocs()
	for b.Loop() {
		if err := tg.SetTitle(ptr("Benchmark")); err != nil {
			b.Fatal(err)
		}
		if _, err := tg.Save(); err != nil {
			b.Fatal(err)
		}
	}
}
