// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match resolves grant IDs to funders, fetches the citing works,
// and normalizes them into flat publication records.
// Implements: prd002-matching (R1-R5);
//
//	prd001-resolution (policy decision point).
//
// Batch runs isolate per-item failures: one grant ID failing to resolve or
// fetch never aborts the rest, and the result always carries exactly one
// outcome per input ID in input order.
package match

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/grant-matcher/internal/openalex"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

// DefaultBatchLimit caps the grant IDs accepted per batch run. The cap
// keeps one run from hammering the API; larger datasets should be pulled
// from an OpenAlex snapshot instead.
const DefaultBatchLimit = 100

// maxWorkers bounds batch fan-out so concurrency stays small relative to
// the shared rate limit.
const maxWorkers = 4

// BatchTooLargeError reports an input exceeding the batch cap. It is
// returned before any network call is made.
type BatchTooLargeError struct {
	Count int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d grant IDs exceeds the %d-item limit", e.Count, e.Limit)
}

// Fetcher is the OpenAlex surface the runner needs. *openalex.Client
// implements it; tests substitute stubs.
type Fetcher interface {
	Funders(ctx context.Context, grantID string) ([]types.FunderCandidate, error)
	Works(ctx context.Context, q types.MatchQuery) ([]openalex.Work, error)
}

// Status classifies the outcome of one grant ID.
type Status string

const (
	// StatusMatched means the query completed; Publications holds the
	// records (possibly zero).
	StatusMatched Status = "matched"

	// StatusNoResults means no funder has works citing the grant ID.
	// This is a valid empty result, not an error.
	StatusNoResults Status = "no_results"

	// StatusFailed means resolution, funder selection, or the works fetch
	// failed; Reason carries the cause.
	StatusFailed Status = "failed"

	// StatusNotAttempted means the run was cancelled before this grant ID
	// was processed.
	StatusNotAttempted Status = "not_attempted"
)

// Outcome is the per-grant-ID result within a batch.
type Outcome struct {
	GrantID      string              `json:"grant_id" yaml:"grant_id"`
	Status       Status              `json:"status" yaml:"status"`
	FunderID     string              `json:"funder_id,omitempty" yaml:"funder_id,omitempty"`
	FunderName   string              `json:"funder_name,omitempty" yaml:"funder_name,omitempty"`
	Publications []types.Publication `json:"publications,omitempty" yaml:"publications,omitempty"`
	Reason       string              `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Result holds one outcome per input grant ID, in input order.
type Result struct {
	Outcomes []Outcome
}

// Matched counts grant IDs that completed with publications attached.
func (r Result) Matched() int { return r.count(StatusMatched) }

// Empty counts grant IDs with no citing works (valid empty results).
func (r Result) Empty() int { return r.count(StatusNoResults) }

// Failed counts grant IDs whose resolution or fetch failed.
func (r Result) Failed() int { return r.count(StatusFailed) }

// Skipped counts grant IDs not attempted because the run was cancelled.
func (r Result) Skipped() int { return r.count(StatusNotAttempted) }

func (r Result) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Publications flattens the matched records in input order.
func (r Result) Publications() []types.Publication {
	var pubs []types.Publication
	for _, o := range r.Outcomes {
		pubs = append(pubs, o.Publications...)
	}
	return pubs
}

// ProgressFunc receives a notification after each grant ID completes
// (success or failure). done counts completed items and increases
// monotonically; not-attempted items produce no notification.
type ProgressFunc func(done, total int, outcome Outcome)

// Runner drives resolution and fetching across a batch of grant IDs.
type Runner struct {
	// API is the OpenAlex client surface.
	API Fetcher

	// Config bounds the batch. BatchLimit overrides DefaultBatchLimit
	// when positive; Workers is the number of grant IDs processed
	// concurrently, clamped to [1, 4]. The API's shared rate limiter
	// keeps the total request rate bounded either way.
	Config types.MatchConfig

	// Progress, when set, is called after each processed grant ID.
	Progress ProgressFunc

	Log zerolog.Logger
}

// Run processes grantIDs in order and returns one outcome per input ID.
// Inputs over the batch limit are rejected with BatchTooLargeError before
// any network call. Per-item errors become failure outcomes, never a
// returned error. Cancelling ctx stops the run between items: already
// collected outcomes are returned and the remainder is marked
// not-attempted.
func (r *Runner) Run(ctx context.Context, grantIDs []string, policy SelectionPolicy) (Result, error) {
	limit := r.Config.BatchLimit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	if len(grantIDs) > limit {
		return Result{}, &BatchTooLargeError{Count: len(grantIDs), Limit: limit}
	}
	if policy == nil {
		policy = MostCited
	}

	workers := r.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > len(grantIDs) {
		workers = len(grantIDs)
	}

	outcomes := make([]Outcome, len(grantIDs))
	for i, id := range grantIDs {
		outcomes[i] = Outcome{GrantID: id, Status: StatusNotAttempted, Reason: "cancelled before processing"}
	}

	total := len(grantIDs)
	indexes := make(chan int)
	go func() {
		defer close(indexes)
		for i := range grantIDs {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				// Cancellation between items: leave the outcome as
				// not-attempted.
				select {
				case <-ctx.Done():
					continue
				default:
				}

				o := r.processOne(ctx, grantIDs[idx], policy)
				outcomes[idx] = o

				mu.Lock()
				done++
				if r.Progress != nil {
					r.Progress(done, total, o)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return Result{Outcomes: outcomes}, nil
}

// processOne handles a single grant ID end to end.
func (r *Runner) processOne(ctx context.Context, grantID string, policy SelectionPolicy) Outcome {
	candidates, err := r.API.Funders(ctx, grantID)
	if err != nil {
		r.Log.Warn().Str("grant_id", grantID).Err(err).Msg("funder resolution failed")
		return Outcome{GrantID: grantID, Status: StatusFailed, Reason: err.Error()}
	}
	return r.RunOne(ctx, grantID, candidates, policy)
}

// RunOne matches a single grant ID whose funder candidates have already
// been resolved, so callers that listed the candidates first (for
// disambiguation) do not trigger a second resolution query. A nil policy
// defaults to MostCited.
func (r *Runner) RunOne(ctx context.Context, grantID string, candidates []types.FunderCandidate, policy SelectionPolicy) Outcome {
	o := Outcome{GrantID: grantID}
	if policy == nil {
		policy = MostCited
	}

	if len(candidates) == 0 {
		o.Status = StatusNoResults
		return o
	}

	chosen := candidates[0]
	if len(candidates) > 1 {
		var err error
		chosen, err = policy(grantID, candidates)
		if err != nil {
			o.Status = StatusFailed
			o.Reason = fmt.Sprintf("selecting funder: %v", err)
			r.Log.Warn().Str("grant_id", grantID).Err(err).Msg("funder selection failed")
			return o
		}
		if !containsFunder(candidates, chosen.ID) {
			o.Status = StatusFailed
			o.Reason = fmt.Sprintf("selecting funder: policy chose %q, which is not a candidate", chosen.ID)
			return o
		}
	}
	o.FunderID = chosen.ID
	o.FunderName = chosen.DisplayName

	query := types.MatchQuery{GrantID: grantID, FunderID: chosen.ID, FunderName: chosen.DisplayName}
	works, err := r.API.Works(ctx, query)
	if err != nil {
		o.Status = StatusFailed
		o.Reason = err.Error()
		r.Log.Warn().Str("grant_id", grantID).Err(err).Msg("works fetch failed")
		return o
	}

	pubs := make([]types.Publication, len(works))
	for i, w := range works {
		pubs[i] = Normalize(w, query.FunderName)
	}
	o.Status = StatusMatched
	o.Publications = pubs
	return o
}

func containsFunder(candidates []types.FunderCandidate, id string) bool {
	for _, c := range candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}
