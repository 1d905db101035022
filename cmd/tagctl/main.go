// Command tagctl reads and edits audio metadata from the command line.
//
// Usage:
//
//	tagctl show song.flac
//	tagctl set song.mp3 --field title="New Title" --field year=2024
//	tagctl pictures song.m4a --extract covers/
//	tagctl atoms book.m4b
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simonhull/audiotag"
)

// app carries state shared by every subcommand.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "tagctl",
		Short:        "Read and edit audio metadata",
		Long:         "tagctl reads and writes tags, pictures and ReplayGain values of MP3, FLAC, Ogg, Opus, M4A/M4B, WAV, AIFF and Monkey's Audio files.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zapcore.WarnLevel
			if a.verbose {
				level = zapcore.DebugLevel
			}
			a.logger = newLogger(cmd.ErrOrStderr(), level)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log load and save events to stderr")

	root.AddCommand(
		newShowCommand(a),
		newSetCommand(a),
		newPicturesCommand(a),
		newAtomsCommand(a),
		newVersionCommand(),
	)
	return root
}

// newLogger writes development-style console records to w.
func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// load opens path with the app's logger. The caller must Dispose the
// returned handle.
func (a *app) load(path string) (*audiotag.Tagger, error) {
	t := audiotag.New(audiotag.WithLogger(a.logger))
	if err := t.LoadPath(path); err != nil {
		return nil, err
	}
	return t, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := audiotag.GetVersionInfo()
			printVersion(cmd.OutOrStdout(), info)
		},
	}
}

func printVersion(w io.Writer, info audiotag.VersionInfo) {
	fmt.Fprintf(w, "tagctl %s\n", info.Version)
	fmt.Fprintf(w, "  commit: %s\n", info.GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", info.BuildDate)
	fmt.Fprintf(w, "  go:     %s\n", info.GoVersion)
}
