// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/grant-matcher/pkg/types"
)

// FormatTable writes publications as a human-readable table to w.
func FormatTable(w io.Writer, pubs []types.Publication) {
	if len(pubs) == 0 {
		fmt.Fprintln(w, "No publications found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n",
		"#", "Title", "Authors", "Year", "DOI")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, p := range pubs {
		title := truncate(p.Title, 60)
		year := ""
		if p.Year != 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %s\n",
			i+1, title, formatAuthors(p.Authors), year, p.DOI)
	}

	fmt.Fprintf(w, "\n%d publication(s)\n", len(pubs))
}

// FormatCandidates writes funder candidates as a table to w, most-cited
// first, so a user can pick a funder ID for an ambiguous grant.
func FormatCandidates(w io.Writer, grantID string, candidates []types.FunderCandidate) {
	if len(candidates) == 0 {
		fmt.Fprintf(w, "No funders found for grant ID %q (no citing works in OpenAlex).\n", grantID)
		return
	}

	fmt.Fprintf(w, "%-14s  %-50s  %s\n", "Funder ID", "Name", "Works")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, c := range candidates {
		fmt.Fprintf(w, "%-14s  %-50s  %d\n", c.ID, truncate(c.DisplayName, 50), c.WorksCount)
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes. Counting runes rather than bytes
// keeps multibyte titles and funder names valid UTF-8 when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
