// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the grant-matcher pipeline.
// Implements: prd001-resolution (FunderCandidate);
//
//	prd002-matching (Publication, MatchQuery);
//	prd003-export (Publication field schema).
package types

// FunderCandidate is one funder known to have works citing a grant ID.
// Grant IDs are funder-assigned and not globally unique, so a single ID can
// resolve to several candidates; the caller picks one before querying works.
type FunderCandidate struct {
	// ID is the OpenAlex funder identifier (e.g. "F4320306076").
	ID string `json:"id" yaml:"id"`

	// DisplayName is the funder name as reported by OpenAlex.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// WorksCount is the number of works citing the grant ID under this
	// funder. Candidate lists are ordered by descending WorksCount.
	WorksCount int `json:"works_count" yaml:"works_count"`
}

// MatchQuery is a resolved (grant ID, funder) pair ready for a works query.
type MatchQuery struct {
	// GrantID is the funder-assigned award identifier.
	GrantID string `json:"grant_id" yaml:"grant_id"`

	// FunderID is the OpenAlex funder identifier chosen for this grant ID.
	FunderID string `json:"funder_id" yaml:"funder_id"`

	// FunderName is the display name of the chosen funder.
	FunderName string `json:"funder_name" yaml:"funder_name"`
}

// Publication is the normalized record produced for each matched work.
// Every Publication is traceable to exactly one (grant ID, funder) query.
type Publication struct {
	// Title is the work title. May be empty when OpenAlex has none.
	Title string `json:"title" yaml:"title"`

	// DOI is the Digital Object Identifier in resolvable form
	// ("https://doi.org/10..."), or empty when the work has no DOI.
	DOI string `json:"doi" yaml:"doi"`

	// Authors lists author display names in source order. An author whose
	// name is missing from the record appears as an empty string so that
	// positions stay aligned with the source authorship list.
	Authors []string `json:"authors" yaml:"authors"`

	// Institutions lists affiliated institution names across all authors,
	// deduplicated by exact name, in order of first appearance.
	Institutions []string `json:"institutions" yaml:"institutions"`

	// Year is the publication year. Zero means the year is absent.
	Year int `json:"publication_year" yaml:"publication_year"`

	// Funder is the display name of the funder the match was made under.
	Funder string `json:"funder_display_name" yaml:"funder_display_name"`
}
