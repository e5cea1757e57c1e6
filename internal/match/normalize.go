// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/pdiddy/grant-matcher/internal/openalex"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

const doiPrefix = "https://doi.org/"

// Normalize flattens one OpenAlex work into a Publication tagged with the
// funder the match was made under. It is a pure function and total over
// well-formed works: structurally absent fields become their zero
// representation (empty string, empty slice, year 0) rather than errors.
func Normalize(w openalex.Work, funderName string) types.Publication {
	title := w.Title
	if title == "" {
		title = w.DisplayName
	}

	pub := types.Publication{
		Title:  title,
		DOI:    normalizeDOI(w.DOI),
		Year:   w.PublicationYear,
		Funder: funderName,
	}

	seen := make(map[string]bool)
	for _, authorship := range w.Authorships {
		// Keep positions aligned with the source authorship list: a
		// missing name becomes "", not a dropped entry.
		pub.Authors = append(pub.Authors, authorship.Author.DisplayName)

		for _, inst := range authorship.Institutions {
			name := inst.DisplayName
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			pub.Institutions = append(pub.Institutions, name)
		}
	}

	return pub
}

// normalizeDOI renders a DOI as a resolvable https://doi.org/ link.
// OpenAlex usually returns DOIs in that form already; bare "10.x" and
// "doi:" forms are prefixed. Empty stays empty.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	switch {
	case doi == "":
		return ""
	case strings.HasPrefix(doi, "https://doi.org/") || strings.HasPrefix(doi, "http://doi.org/"):
		return doi
	case strings.HasPrefix(doi, "doi:"):
		return doiPrefix + strings.TrimPrefix(doi, "doi:")
	case strings.HasPrefix(doi, "10."):
		return doiPrefix + doi
	default:
		return doi
	}
}
