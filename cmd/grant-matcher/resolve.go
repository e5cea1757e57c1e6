// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-matcher/internal/export"
	"github.com/pdiddy/grant-matcher/internal/openalex"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <grant-id>",
	Short: "List the funders whose works cite a grant ID",
	Long: `Resolve queries OpenAlex for the funders associated with a grant ID.
Grant IDs are assigned by funders and are not globally unique, so the same
ID can belong to several funders. The list is ordered by the number of
citing works; pass the chosen funder ID to "match --funder".`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	grantID := args[0]

	client := openalex.New(openAlexConfig(cmd), logger)
	candidates, err := client.Funders(cmd.Context(), grantID)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	export.FormatCandidates(os.Stdout, grantID, candidates)
	return nil
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(resolveCmd)
}
