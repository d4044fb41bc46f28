// Package cli implements the goeq command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "latex" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "latex", "json"}

// NewRootCommand creates the root command for the goeq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "goeq",
		Short: "goeq - systems of symbolic equations",
		Long:  "Load equation systems from YAML and render, inspect or validate them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log system construction to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|latex|json)")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewNamesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// logger returns a debug logger on w when verbose, else a discarding one.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
