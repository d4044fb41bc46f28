package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/goeq"
	"github.com/njchilds90/goeq/expr"
	"github.com/njchilds90/goeq/internal/sysfile"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render <file>",
		Short: "Print every equation of a system document",
		Long: `Build the system described by a YAML document and print its equations
in binding order, as plain text, LaTeX or JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem(rootOpts, cmd, args[0])
			if err != nil {
				return err
			}
			return renderEquations(cmd.OutOrStdout(), rootOpts.Format, sys.Equations())
		},
	}
}

// NewNamesCommand creates the names command.
func NewNamesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "names <file>",
		Short:         "List the variables a system document resolves",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem(rootOpts, cmd, args[0])
			if err != nil {
				return err
			}
			return renderNames(cmd.OutOrStdout(), rootOpts.Format, sys.Inner().Namespace)
		},
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <file>",
		Short:         "Check that a system document loads and builds",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			sys, err := loadSystem(rootOpts, cmd, args[0])
			if err != nil {
				if GetExitCode(err) == ExitCommandError {
					return err
				}
				if rootOpts.Format == "json" {
					_ = writeJSON(w, CLIResponse{Status: "error", Error: err.Error()})
				} else {
					fmt.Fprintf(w, "✗ invalid: %v\n", err)
				}
				return err
			}
			eqs := sys.Inner().Equations
			if rootOpts.Format == "json" {
				return writeJSON(w, CLIResponse{Status: "ok", Data: map[string]int{
					"equations": len(sys.Equations()),
					"bound":     eqs.Len(),
					"variables": sys.Inner().Namespace.Len(),
				}})
			}
			fmt.Fprintf(w, "✓ valid: %d equations, %d bound variables\n", len(sys.Equations()), eqs.Len())
			return nil
		},
	}
}

func loadSystem(opts *RootOptions, cmd *cobra.Command, path string) (*goeq.System, error) {
	doc, err := sysfile.LoadFile(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, &ExitError{Code: ExitCommandError, Message: "cannot read document", Err: err}
		}
		return nil, &ExitError{Code: ExitFailure, Message: "invalid document", Err: err}
	}
	sys, err := doc.Build(goeq.WithLogger(opts.logger(cmd.ErrOrStderr())))
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Message: "invalid document", Err: fmt.Errorf("%s: %w", path, err)}
	}
	return sys, nil
}

func renderEquations(w io.Writer, format string, eqs []*expr.Equation) error {
	switch format {
	case "json":
		items := make([]map[string]interface{}, len(eqs))
		for i, eq := range eqs {
			items[i] = expr.ToMap(eq)
		}
		return writeJSON(w, CLIResponse{Status: "ok", Data: map[string]interface{}{"equations": items}})
	case "latex":
		lines := make([]string, len(eqs))
		for i, eq := range eqs {
			lines[i] = eq.LHS.LaTeX() + " &= " + eq.RHS.LaTeX()
		}
		fmt.Fprintln(w, `\begin{aligned}`)
		if len(lines) > 0 {
			fmt.Fprintln(w, strings.Join(lines, " \\\\\n"))
		}
		fmt.Fprintln(w, `\end{aligned}`)
		return nil
	}
	for _, eq := range eqs {
		fmt.Fprintln(w, eq.String())
	}
	return nil
}

func renderNames(w io.Writer, format string, ns *goeq.Namespace) error {
	keys := ns.Keys()
	if format == "json" {
		items := make([]map[string]interface{}, len(keys))
		for i, k := range keys {
			s, _ := ns.Lookup(k)
			items[i] = map[string]interface{}{"key": k, "name": s.Name(), "dummy": s.IsDummy()}
		}
		return writeJSON(w, CLIResponse{Status: "ok", Data: map[string]interface{}{"variables": items}})
	}
	for _, k := range keys {
		s, _ := ns.Lookup(k)
		label := k.String()
		if k.IsIndex() {
			label = "[" + label + "]"
		}
		rendered := s.String()
		if format == "latex" {
			rendered = s.LaTeX()
		}
		kind := "plain"
		if s.IsDummy() {
			kind = "dummy"
		}
		fmt.Fprintf(w, "%s -> %s (%s)\n", label, rendered, kind)
	}
	return nil
}
