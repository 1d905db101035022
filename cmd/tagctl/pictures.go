package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newPicturesCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "pictures FILE",
		Short: "List embedded pictures, optionally writing them to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(args[0])
			if err != nil {
				return err
			}
			defer t.Dispose()

			pics, err := t.Pictures()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pics) == 0 {
				fmt.Fprintln(out, "no pictures")
				return nil
			}
			if dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			for i, p := range pics {
				line := fmt.Sprintf("%d: %s", i+1, p)
				if d := p.DescriptionOrEmpty(); d != "" {
					line += fmt.Sprintf(" %q", d)
				}
				if dir != "" {
					name := filepath.Join(dir, fmt.Sprintf("%02d%s", i+1, extension(p.MIMEType)))
					if err := os.WriteFile(name, p.Data(), 0o644); err != nil {
						return err
					}
					line += " -> " + name
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "extract", "x", "", "write each picture into this directory")
	return cmd
}

func extension(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	}
	if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
		return "." + sub
	}
	return ".bin"
}
