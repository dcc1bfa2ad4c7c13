package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidify/integrity/internal/packs"
	"github.com/evidify/integrity/internal/store"
)

// NewRunPackCommand creates the run-pack command.
func NewRunPackCommand(rootOpts *RootOptions) *cobra.Command {
	var scenario string
	var exportDir string

	cmd := &cobra.Command{
		Use:   "run-pack <pack-id>",
		Short: "Generate a deterministic fixture export",
		Long: `Generate a synthetic export from an embedded fixture pack.

Events are captured through the same append-only store the live producer
uses, then exported and optionally tampered with according to the
scenario. Timestamps and event ids are fixed, so the same pack and
scenario always produce byte-identical artifacts.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(rootOpts, args[0], scenario, exportDir, cmd)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "clean", "scenario to generate")
	cmd.Flags().StringVar(&exportDir, "export", "", "directory to write the export into")
	_ = cmd.MarkFlagRequired("export")

	return cmd
}

func runPack(opts *RootOptions, packID, scenario, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := cmd.Context()

	p, err := packs.Load(packID)
	if err != nil {
		_ = formatter.Failure("PACK", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot load pack", err)
	}

	events, err := p.BuildEvents(scenario)
	if err != nil {
		_ = formatter.Failure("PACK", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot build events", err)
	}
	extra, err := p.ExtraFiles()
	if err != nil {
		_ = formatter.Failure("PACK", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot build extra files", err)
	}

	// Capture through the live store so fixtures exercise the same
	// append path real sessions use.
	s, err := store.Open(":memory:")
	if err != nil {
		_ = formatter.Failure("STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open capture store", err)
	}
	defer s.Close()

	for _, ev := range events {
		if _, err := s.Append(ctx, ev.ID, ev.Type, ev.Timestamp, ev.Payload); err != nil {
			_ = formatter.Failure("STORE", err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot append event", err)
		}
	}

	manifest, err := s.Export(ctx, dir, extra)
	if err != nil {
		_ = formatter.Failure("EXPORT", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot write export", err)
	}

	if err := p.ApplyTamper(dir, scenario); err != nil {
		_ = formatter.Failure("PACK", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot apply tamper", err)
	}

	formatter.VerboseLog("Generated %s/%s: %d events, final hash %s",
		packID, scenario, manifest.EventCount, manifest.FinalHash)

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"pack":       packID,
			"scenario":   scenario,
			"export_dir": dir,
			"manifest":   manifest,
		})
	}
	fmt.Fprintf(formatter.Writer, "Wrote %s/%s to %s (%d events)\n",
		packID, scenario, dir, manifest.EventCount)
	return nil
}

// PackSummary is the list-packs line item.
type PackSummary struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Scenarios   []string `json:"scenarios"`
}

// NewListPacksCommand creates the list-packs command.
func NewListPacksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list-packs",
		Short:         "List embedded fixture packs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListPacks(rootOpts, cmd)
		},
	}
}

func runListPacks(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	all, err := packs.List()
	if err != nil {
		_ = formatter.Failure("PACK", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot list packs", err)
	}

	summaries := make([]PackSummary, 0, len(all))
	for _, p := range all {
		names := make([]string, 0, len(p.Scenarios))
		for _, sc := range p.Scenarios {
			names = append(names, sc.Name)
		}
		summaries = append(summaries, PackSummary{
			ID:          p.ID,
			Description: p.Description,
			Scenarios:   names,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "%s\n", s.ID)
		for _, name := range s.Scenarios {
			fmt.Fprintf(formatter.Writer, "  %s\n", name)
		}
	}
	return nil
}
