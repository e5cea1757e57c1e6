// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

// OpenAlex API JSON structures. Every field is optional on the wire;
// consumers must not assume presence.

type worksResponse struct {
	Meta    meta   `json:"meta"`
	Results []Work `json:"results"`
}

type groupByResponse struct {
	Meta    meta          `json:"meta"`
	GroupBy []groupBucket `json:"group_by"`
}

type meta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

// groupBucket is one facet bucket from a group_by query. For
// group_by=grants.funder the key is the funder ID (often as a full
// https://openalex.org/ URL) and the display name is the funder name.
type groupBucket struct {
	Key            string `json:"key"`
	KeyDisplayName string `json:"key_display_name"`
	Count          int    `json:"count"`
}

// Work is one bibliographic record returned by the Works endpoint.
type Work struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	DisplayName     string       `json:"display_name"`
	DOI             string       `json:"doi"`
	PublicationYear int          `json:"publication_year"`
	Authorships     []Authorship `json:"authorships"`
	Grants          []Grant      `json:"grants"`
}

// Authorship links an author to their institutions for one work.
type Authorship struct {
	Author       Author        `json:"author"`
	Institutions []Institution `json:"institutions"`
}

type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Grant is one funding acknowledgement attached to a work.
type Grant struct {
	Funder            string `json:"funder"`
	FunderDisplayName string `json:"funder_display_name"`
	AwardID           string `json:"award_id"`
}
