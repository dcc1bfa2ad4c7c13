package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidify/integrity/internal/export"
	"github.com/evidify/integrity/internal/gates"
	"github.com/evidify/integrity/internal/ledger"
	"github.com/evidify/integrity/internal/record"
	"github.com/evidify/integrity/internal/schema"
	"github.com/evidify/integrity/internal/verify"
)

// VerifyResult is the combined output of one verification run.
// GateReport is present only when the export carries a case record; gate
// findings are report content and never change the exit code.
type VerifyResult struct {
	Verification verify.Report `json:"verification"`
	GateReport   *gates.Report `json:"gate_report,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var requiredEvents []string

	cmd := &cobra.Command{
		Use:   "verify <export-path>",
		Short: "Independently verify an export's integrity",
		Long: `Verify an export directory without trusting anything the producer wrote.

Every content hash and chain hash is recomputed from the raw event
stream and compared against the stored ledger and manifest. All checks
run even after one fails, so a single run enumerates every problem.

Exit codes: 0 all required checks pass (warnings allowed), 1 any
required check fails, 2 the input cannot be read or parsed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := verify.DefaultConfig()
			if cmd.Flags().Changed("require-event") {
				cfg.RequiredEventTypes = requiredEvents
			}
			return runVerify(rootOpts, args[0], cfg, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&requiredEvents, "require-event",
		verify.DefaultConfig().RequiredEventTypes,
		"event types that must appear at least once (repeatable)")

	return cmd
}

func runVerify(opts *RootOptions, dir string, cfg verify.Config, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	bundle, err := export.Read(dir)
	if err != nil {
		_ = formatter.Failure("STRUCTURAL", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read export", err)
	}
	formatter.VerboseLog("Read %d events, %d ledger entries from %s",
		len(bundle.Events), len(bundle.Entries), dir)

	if err := validateShapes(bundle); err != nil {
		_ = formatter.Failure("STRUCTURAL", err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed schema validation", err)
	}

	result := VerifyResult{Verification: verify.Verify(bundle, cfg)}

	if bundle.RawCaseRecord != nil {
		rec, err := record.Parse(bundle.RawCaseRecord)
		if err != nil {
			_ = formatter.Failure("STRUCTURAL", err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot parse case record", err)
		}
		report, err := gates.BuildReport(rec, bundle.Events, ledger.FinalHashOf(bundle.Entries))
		if err != nil {
			_ = formatter.Failure("STRUCTURAL", err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot build gate report", err)
		}
		result.GateReport = &report
		formatter.VerboseLog("Gate evaluation: %s (%d blocking, %d warning)",
			report.Summary.Status, report.Summary.BlockCount, report.Summary.WarnCount)
	}

	return outputVerifyResult(formatter, result)
}

// validateShapes runs the structural pre-check: every artifact must match
// its embedded schema before any hash comparison is attempted.
func validateShapes(b *export.Bundle) error {
	v, err := schema.NewValidator()
	if err != nil {
		return err
	}

	if err := v.ValidateManifest(b.RawManifest); err != nil {
		return err
	}
	for i, entry := range b.Entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("ledger entry %d: %w", i, err)
		}
		if err := v.ValidateLedgerEntry(data); err != nil {
			return fmt.Errorf("ledger entry %d: %w", i, err)
		}
	}
	for i, ev := range b.Events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if err := v.ValidateEvent(data); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

func outputVerifyResult(formatter *OutputFormatter, result VerifyResult) error {
	if formatter.Format == "json" {
		if result.Verification.Pass {
			if err := formatter.Success(result); err != nil {
				return err
			}
			return nil
		}
		failed := result.Verification.Failed()
		if err := formatter.Failure("VERIFY_FAILED",
			fmt.Sprintf("%d check(s) failed", len(failed)), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("verification failed: %v", failed))
	}

	// Human-readable transcript: one line per check, problems indented.
	for _, c := range result.Verification.Checks {
		fmt.Fprintf(formatter.Writer, "%-5s %s\n", c.Status, c.Name)
		for _, p := range c.Problems {
			fmt.Fprintf(formatter.Writer, "      %s: %s\n", p.Code, p.Message)
		}
	}
	if gr := result.GateReport; gr != nil {
		fmt.Fprintf(formatter.Writer, "\nGates: %s (%d blocking, %d warning)\n",
			gr.Summary.Status, gr.Summary.BlockCount, gr.Summary.WarnCount)
		for _, f := range gr.Violations {
			fmt.Fprintf(formatter.Writer, "  %s %s/%s: %s\n", f.GateID, f.Code, f.SubCode, f.Message)
		}
		for _, f := range gr.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s %s/%s: %s\n", f.GateID, f.Code, f.SubCode, f.Message)
		}
	}

	if !result.Verification.Pass {
		failed := result.Verification.Failed()
		fmt.Fprintf(formatter.Writer, "\n%d check(s) failed\n", len(failed))
		return NewExitError(ExitFailure, fmt.Sprintf("verification failed: %v", failed))
	}
	fmt.Fprintln(formatter.Writer, "\nAll required checks passed")
	return nil
}
