// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-matcher/internal/export"
	"github.com/pdiddy/grant-matcher/internal/match"
	"github.com/pdiddy/grant-matcher/internal/openalex"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

var matchCmd = &cobra.Command{
	Use:   "match <grant-id>",
	Short: "Fetch the publications citing a single grant ID",
	Long: `Match resolves one grant ID and fetches every citing work from OpenAlex.

When the ID resolves to exactly one funder the match proceeds directly.
When several funders share the ID the candidates are listed and the
command stops: rerun with --funder to pin one, or --auto to take the
funder with the most citing works.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	grantID := args[0]
	funderID, _ := cmd.Flags().GetString("funder")
	auto, _ := cmd.Flags().GetBool("auto")

	client := openalex.New(openAlexConfig(cmd), logger)

	candidates, err := client.Funders(cmd.Context(), grantID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(os.Stderr, "No funders found for grant ID %q (no citing works in OpenAlex).\n", grantID)
		return nil
	}

	var policy match.SelectionPolicy
	switch {
	case funderID != "":
		policy = match.Fixed(funderID)
	case auto:
		policy = match.MostCited
	default:
		if len(candidates) > 1 {
			fmt.Fprintf(os.Stderr, "Grant ID %q is used by %d funders:\n\n", grantID, len(candidates))
			export.FormatCandidates(os.Stderr, grantID, candidates)
			fmt.Fprintln(os.Stderr, "\nRerun with --funder <id> to pick one, or --auto for the most-cited funder.")
			return fmt.Errorf("ambiguous grant ID %q", grantID)
		}
		policy = match.MostCited
	}

	// The candidates are already resolved above; RunOne matches without a
	// second resolution query.
	runner := &match.Runner{API: client, Log: logger}
	outcome := runner.RunOne(cmd.Context(), grantID, candidates, policy)
	if outcome.Status == match.StatusFailed {
		return fmt.Errorf("matching grant %q: %s", grantID, outcome.Reason)
	}

	logger.Info().Str("grant_id", grantID).Str("funder", outcome.FunderName).
		Int("publications", len(outcome.Publications)).Msg("match complete")

	return writePublications(exportConfig(cmd), outcome.Publications)
}

// exportConfig assembles the export settings from the command's flags.
// Flags a command does not define read as empty and leave the
// corresponding output disabled.
func exportConfig(cmd *cobra.Command) types.ExportConfig {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	report, _ := cmd.Flags().GetString("report")
	db, _ := cmd.Flags().GetString("db")
	return types.ExportConfig{
		Format:   types.ExportFormat(format),
		Output:   output,
		Report:   report,
		Database: db,
	}
}

// writePublications renders records to cfg.Output in cfg.Format, or as a
// table on stdout when no output file is given and no format is forced.
func writePublications(cfg types.ExportConfig, pubs []types.Publication) error {
	if cfg.Output == "" && cfg.Format == "" {
		export.FormatTable(os.Stdout, pubs)
		return nil
	}

	w := os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return export.WritePublications(w, pubs, cfg.Format)
}

func init() {
	matchCmd.Flags().String("funder", "", "funder ID to match under (from \"resolve\")")
	matchCmd.Flags().Bool("auto", false, "pick the most-cited funder when the grant ID is ambiguous")
	matchCmd.Flags().String("format", "", "output format: csv, json, or yaml (default: table)")
	matchCmd.Flags().String("output", "", "output file (default: stdout)")

	rootCmd.AddCommand(matchCmd)
}
