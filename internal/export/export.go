// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes match results for downstream use.
// Implements: prd003-export (R1-R4).
//
// Publications export as CSV (the tool's primary interchange format),
// JSON, or YAML. A separate per-grant-ID report keeps failure outcomes
// visible and distinct from empty-but-successful ones.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grant-matcher/internal/match"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

// listSeparator joins multi-valued fields inside one CSV cell. Semicolons
// avoid colliding with commas inside institution names.
const listSeparator = "; "

// csvHeader is the publications column set downstream spreadsheets expect.
var csvHeader = []string{
	"doi",
	"title",
	"authors",
	"funder_display_name",
	"publication_year",
	"institutions",
}

// WritePublications serializes pubs to w in the given format.
func WritePublications(w io.Writer, pubs []types.Publication, format types.ExportFormat) error {
	switch format {
	case types.ExportCSV, "":
		return writeCSV(w, pubs)
	case types.ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pubs)
	case types.ExportYAML:
		data, err := yaml.Marshal(pubs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, or yaml)", format)
	}
}

func writeCSV(w io.Writer, pubs []types.Publication) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, p := range pubs {
		year := ""
		if p.Year != 0 {
			year = strconv.Itoa(p.Year)
		}
		record := []string{
			p.DOI,
			p.Title,
			strings.Join(p.Authors, listSeparator),
			p.Funder,
			year,
			strings.Join(p.Institutions, listSeparator),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReport serializes per-grant-ID outcomes as CSV so callers can tell
// failures ("error: …") apart from empty successes ("0 publications").
func WriteReport(w io.Writer, outcomes []match.Outcome) error {
	cw := csv.NewWriter(w)
	header := []string{"grant_id", "status", "funder_id", "funder_display_name", "publications", "reason"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, o := range outcomes {
		record := []string{
			o.GrantID,
			string(o.Status),
			o.FunderID,
			o.FunderName,
			strconv.Itoa(len(o.Publications)),
			o.Reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
