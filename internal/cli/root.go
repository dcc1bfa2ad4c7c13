// Package cli wires the verifier, fixture packs, and gate engine into the
// evidify command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	JSON    bool   // shorthand that forces Format to "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the evidify CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "evidify",
		Short: "Tamper-evident integrity tooling for exported case records",
		Long: `evidify verifies exported audit ledgers and case records.

It recomputes every content and chain hash from the raw event stream,
compares against the stored ledger and manifest, evaluates the gate
rules over the case record, and generates deterministic fixture exports
for regression testing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.JSON {
				opts.Format = "json"
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "machine-readable output (same as --format json)")

	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRunPackCommand(opts))
	cmd.AddCommand(NewListPacksCommand(opts))

	return cmd
}

// newFormatter builds the formatter for one command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
