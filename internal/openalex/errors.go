// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import "fmt"

// ResolutionError reports that a funder lookup for a grant ID could not
// complete. It is distinct from an empty candidate list, which is a valid
// result and not an error.
type ResolutionError struct {
	GrantID string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving funders for grant %q: %v", e.GrantID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports that a works query could not retrieve every page.
// Pages records how many pages were fetched before the failure; the
// partial results are discarded rather than returned as if complete.
type FetchError struct {
	GrantID  string
	FunderID string
	Pages    int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching works for grant %q under funder %q after %d page(s): %v",
		e.GrantID, e.FunderID, e.Pages, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
