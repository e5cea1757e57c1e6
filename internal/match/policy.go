// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"fmt"

	"github.com/pdiddy/grant-matcher/pkg/types"
)

// SelectionPolicy chooses one funder when a grant ID resolves to more than
// one candidate. Interactive callers prompt the user; unattended batch
// runs use MostCited. A policy error converts to a per-item failure
// outcome without aborting the batch.
type SelectionPolicy func(grantID string, candidates []types.FunderCandidate) (types.FunderCandidate, error)

// MostCited is the default unattended policy: it picks the candidate with
// the highest citing-work count. Ties keep the earliest candidate, which
// matches the resolver's stable ordering.
func MostCited(grantID string, candidates []types.FunderCandidate) (types.FunderCandidate, error) {
	if len(candidates) == 0 {
		return types.FunderCandidate{}, fmt.Errorf("no funder candidates for grant %q", grantID)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.WorksCount > best.WorksCount {
			best = c
		}
	}
	return best, nil
}

// Fixed returns a policy that always selects funderID, failing when the
// ID is not among the candidates. Used by the CLI --funder flag.
func Fixed(funderID string) SelectionPolicy {
	return func(grantID string, candidates []types.FunderCandidate) (types.FunderCandidate, error) {
		for _, c := range candidates {
			if c.ID == funderID {
				return c, nil
			}
		}
		return types.FunderCandidate{}, fmt.Errorf("funder %q is not a candidate for grant %q", funderID, grantID)
	}
}
