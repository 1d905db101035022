package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/m4a"
)

func newAtomsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "atoms FILE",
		Short: "Print the MP4 atom tree of an M4A or M4B file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			a.logger.Debug("walking atoms", zap.String("path", args[0]), zap.Int64("size", info.Size()))
			out := cmd.OutOrStdout()
			sr := binary.NewSafeReader(f, info.Size(), args[0])
			return m4a.Walk(sr, func(depth int, atom *m4a.Atom) error {
				fmt.Fprintf(out, "%s%s (size: %d, offset: %d)\n", strings.Repeat("  ", depth), atom.Type, atom.Size, atom.Offset)
				return nil
			})
		},
	}
}
