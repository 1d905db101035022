package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonhull/audiotag"
	"github.com/simonhull/audiotag/internal/types"
)

func newShowCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print tags, ReplayGain and audio properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(args[0])
			if err != nil {
				return err
			}
			defer t.Dispose()
			return show(cmd.OutOrStdout(), t, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also list fields that are not set")
	return cmd
}

func show(w io.Writer, t *audiotag.Tagger, all bool) error {
	format, err := t.Format()
	if err != nil {
		return err
	}
	tagType, err := t.TagType()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "File:    %s\n", t.Path())
	fmt.Fprintf(w, "Format:  %s\n", format)
	fmt.Fprintf(w, "Tag:     %s\n", tagType)

	fmt.Fprintln(w, "\nTags:")
	for _, f := range audiotag.Fields() {
		v, err := t.Get(f)
		if err != nil {
			return err
		}
		if v.IsNull() && !all {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", f.String()+":", v)
	}

	rg, err := t.ReplayGain()
	if err != nil {
		return err
	}
	if !rg.IsZero() {
		fmt.Fprintln(w, "\nReplayGain:")
		for _, e := range rg.Entries() {
			if e.Value != nil {
				fmt.Fprintf(w, "  %-22s %s\n", e.Key+":", types.FormatReplayGain(e))
			}
		}
	}

	props, err := t.Properties()
	if err != nil {
		return err
	}
	quality, err := t.Quality()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nAudio:")
	fmt.Fprintf(w, "  %s\n", props)
	fmt.Fprintf(w, "  Duration: %s\n", props.Duration.Round(time.Millisecond))
	if props.Bitrate > 0 {
		fmt.Fprintf(w, "  Bitrate:  %d kbps\n", props.Bitrate)
	}
	fmt.Fprintf(w, "  Quality:  %s\n", quality)

	pics, err := t.Pictures()
	if err != nil {
		return err
	}
	if len(pics) > 0 {
		fmt.Fprintf(w, "\nPictures: %d\n", len(pics))
	}

	if sum, err := t.AudioChecksum(); err == nil {
		fmt.Fprintf(w, "\nAudio SHA-1: %s\n", sum)
	}
	for _, warning := range t.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}
