package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/audiotag"
)

type setOptions struct {
	fields   []string
	clear    []string
	gains    []string
	cover    string
	noCovers bool
	out      string
	backup   string
	validate bool
	keepTime bool
}

func newSetCommand(a *app) *cobra.Command {
	var opts setOptions

	cmd := &cobra.Command{
		Use:   "set FILE",
		Short: "Change tags, the front cover or ReplayGain values",
		Long: "Set fields with --field name=value, remove them with --clear name. " +
			"Field names are the camelCase names printed by show, such as albumArtist or trackNumber.",
		Example: `  tagctl set song.mp3 --field title="New Title" --field year=2024
  tagctl set song.flac --clear comment --cover front.jpg
  tagctl set song.m4a --gain track=-6.5 --gain trackPeak=0.98 --out tagged.m4a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.fields)+len(opts.clear)+len(opts.gains) == 0 && opts.cover == "" && !opts.noCovers {
				return fmt.Errorf("nothing to change: pass --field, --clear, --gain, --cover or --no-covers")
			}

			t, err := a.load(args[0])
			if err != nil {
				return err
			}
			defer t.Dispose()

			if err := apply(t, &opts); err != nil {
				return err
			}

			var save []audiotag.SaveOption
			if opts.backup != "" {
				save = append(save, audiotag.WithBackup(opts.backup))
			}
			if opts.validate {
				save = append(save, audiotag.WithValidation())
			}
			if opts.keepTime {
				save = append(save, audiotag.WithPreserveModTime())
			}
			if opts.out != "" {
				err = t.SaveAs(opts.out, save...)
			} else {
				_, err = t.Save(save...)
			}
			if err != nil {
				return err
			}
			for _, w := range t.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.fields, "field", "f", nil, "set a field, as name=value (repeatable)")
	f.StringArrayVar(&opts.clear, "clear", nil, "remove a field (repeatable)")
	f.StringArrayVar(&opts.gains, "gain", nil, "set ReplayGain, as track|trackPeak|album|albumPeak=value; an empty value removes it")
	f.StringVar(&opts.cover, "cover", "", "replace all pictures with this image as the front cover")
	f.BoolVar(&opts.noCovers, "no-covers", false, "remove all pictures")
	f.StringVarP(&opts.out, "out", "o", "", "write to this path instead of replacing FILE")
	f.StringVar(&opts.backup, "backup", "", "keep the previous file with this suffix, e.g. .bak")
	f.BoolVar(&opts.validate, "validate", false, "re-read the written file before committing it")
	f.BoolVar(&opts.keepTime, "preserve-mtime", false, "keep the file's modification time")
	cmd.MarkFlagsMutuallyExclusive("cover", "no-covers")
	return cmd
}

func apply(t *audiotag.Tagger, opts *setOptions) error {
	for _, kv := range opts.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--field %q: want name=value", kv)
		}
		f, ok := audiotag.ParseField(name)
		if !ok {
			return fmt.Errorf("--field %q: unknown field %q", kv, name)
		}
		if err := t.Set(f, audiotag.StringValue(value)); err != nil {
			return err
		}
	}

	for _, name := range opts.clear {
		f, ok := audiotag.ParseField(name)
		if !ok {
			return fmt.Errorf("--clear: unknown field %q", name)
		}
		if err := t.Set(f, audiotag.Null()); err != nil {
			return err
		}
	}

	for _, kv := range opts.gains {
		if err := applyGain(t, kv); err != nil {
			return err
		}
	}

	switch {
	case opts.cover != "":
		data, err := os.ReadFile(opts.cover)
		if err != nil {
			return err
		}
		mime := audiotag.DetectMIME(data)
		if mime == "" {
			return fmt.Errorf("--cover %s: unrecognised image format", opts.cover)
		}
		return t.SetPictures([]audiotag.Picture{audiotag.NewPicture(mime, data, nil)})
	case opts.noCovers:
		return t.RemovePictures()
	}
	return nil
}

func applyGain(t *audiotag.Tagger, kv string) error {
	name, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("--gain %q: want name=value", kv)
	}

	var v *float64
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "dB"))
	if value != "" {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("--gain %q: %w", kv, err)
		}
		v = &n
	}

	switch strings.ToLower(name) {
	case "track", "trackgain":
		return t.SetTrackGain(v)
	case "trackpeak":
		return t.SetTrackPeak(v)
	case "album", "albumgain":
		return t.SetAlbumGain(v)
	case "albumpeak":
		return t.SetAlbumPeak(v)
	}
	return fmt.Errorf("--gain %q: unknown value %q", kv, name)
}
