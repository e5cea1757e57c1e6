// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-matcher/internal/export"
	"github.com/pdiddy/grant-matcher/internal/input"
	"github.com/pdiddy/grant-matcher/internal/match"
	"github.com/pdiddy/grant-matcher/internal/openalex"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match every grant ID in a CSV file (up to 100)",
	Long: `Batch reads a grant ID column from a CSV file and matches each ID
unattended, picking the most-cited funder when an ID is ambiguous. A
failing ID never aborts the batch: its outcome is recorded and processing
continues. Interrupting the run (Ctrl-C) stops between IDs and keeps the
results collected so far.

Publications are written to --output (stdout by default); --report adds a
per-grant-ID outcome CSV where failures stay distinct from IDs that simply
have no citing works; --db appends the full run to a SQLite archive.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	column, _ := cmd.Flags().GetString("column")

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	ids, err := input.ReadGrantIDs(f, column)
	f.Close()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no grant IDs found in %s", inputPath)
	}
	logger.Info().Int("grant_ids", len(ids)).Str("input", inputPath).Msg("starting batch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := openalex.New(openAlexConfig(cmd), logger)
	runner := &match.Runner{
		API:    client,
		Config: matchConfig(cmd),
		Log:    logger,
		Progress: func(done, total int, o match.Outcome) {
			switch o.Status {
			case match.StatusFailed:
				fmt.Fprintf(os.Stderr, "(%d/%d) %s: error: %s\n", done, total, o.GrantID, o.Reason)
			case match.StatusNoResults:
				fmt.Fprintf(os.Stderr, "(%d/%d) %s: 0 publications found\n", done, total, o.GrantID)
			default:
				fmt.Fprintf(os.Stderr, "(%d/%d) %s: %d publication(s) via %s\n",
					done, total, o.GrantID, len(o.Publications), o.FunderName)
			}
		},
	}

	result, err := runner.Run(ctx, ids, match.MostCited)
	if err != nil {
		return err
	}

	exportCfg := exportConfig(cmd)
	if err := writePublications(exportCfg, result.Publications()); err != nil {
		return err
	}

	if exportCfg.Report != "" {
		rf, err := os.Create(exportCfg.Report)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		err = export.WriteReport(rf, result.Outcomes)
		rf.Close()
		if err != nil {
			return err
		}
	}

	if exportCfg.Database != "" {
		runID, err := archiveRun(exportCfg.Database, result)
		if err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
		logger.Info().Int64("run_id", runID).Str("db", exportCfg.Database).Msg("run archived")
	}

	logger.Info().
		Int("matched", result.Matched()).
		Int("empty", result.Empty()).
		Int("failed", result.Failed()).
		Int("skipped", result.Skipped()).
		Msg("batch complete")

	if result.Failed() > 0 {
		return fmt.Errorf("%d grant ID(s) failed", result.Failed())
	}
	return nil
}

// archiveRun appends result to the SQLite archive at path. It uses its
// own context rather than the run's: after an interrupt the run context
// is already cancelled, and the collected outcomes of an interrupted run
// must still reach the archive.
func archiveRun(path string, result match.Result) (int64, error) {
	archive, err := export.OpenArchive(path)
	if err != nil {
		return 0, err
	}
	defer archive.Close()
	return archive.SaveRun(context.Background(), result)
}

func init() {
	batchCmd.Flags().String("input", "", "CSV file with a grant ID column (required)")
	batchCmd.Flags().String("column", input.DefaultColumn, "name of the grant ID column")
	batchCmd.Flags().Int("workers", 0, "concurrent grant IDs (1-4)")
	batchCmd.Flags().String("format", "csv", "output format: csv, json, or yaml")
	batchCmd.Flags().String("output", "", "publications output file (default: stdout)")
	batchCmd.Flags().String("report", "", "per-grant-ID outcome report CSV file")
	batchCmd.Flags().String("db", "", "SQLite archive for the run")
	batchCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(batchCmd)
}
