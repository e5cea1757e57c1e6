// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex queries the OpenAlex Works API for grant-to-publication
// matching. Implements: prd001-resolution (R1-R3), prd002-matching (R1-R2).
//
// Two query shapes are used: a group_by facet query that lists the funders
// whose works cite a grant ID, and a cursor-paginated works query filtered
// by (grant ID, funder). Both go through one shared rate limiter whose
// lifetime is the client's, so a batch run never exceeds the API limit.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/grant-matcher/internal/httputil"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

const (
	// DefaultBaseURL is the OpenAlex API root.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultPerPage is the works page size. 200 is the API maximum.
	DefaultPerPage = 200

	// DefaultRateLimit is the sustained request rate in requests per
	// second. The polite pool allows 10; staying below leaves headroom.
	DefaultRateLimit = 5.0

	// DefaultBurst is the token bucket burst size.
	DefaultBurst = 5

	// openAlexIDPrefix is the URL prefix OpenAlex uses for entity IDs.
	openAlexIDPrefix = "https://openalex.org/"

	// maxBodyBytes caps response body reads to guard against oversized
	// payloads.
	maxBodyBytes = 10 << 20
)

// Client issues grant-filtered queries against the OpenAlex Works API.
type Client struct {
	cfg     types.OpenAlexConfig
	http    *http.Client
	limiter *Limiter
	log     zerolog.Logger
}

// New creates a Client from cfg, filling unset fields with defaults. The
// client owns its rate limiter; construct one client per batch run so no
// limiter state leaks across runs.
func New(cfg types.OpenAlexConfig, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PerPage <= 0 || cfg.PerPage > DefaultPerPage {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "grant-matcher/0.1"
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: NewLimiter(cfg.RateLimit, cfg.Burst),
		log:     log.With().Str("component", "openalex").Logger(),
	}
}

// Funders returns the funders whose works cite grantID, ordered by
// descending work count (ties broken by funder ID so the order is stable).
// A grant ID nobody cites yields an empty slice and no error; only
// transport or API failures produce a ResolutionError.
func (c *Client) Funders(ctx context.Context, grantID string) ([]types.FunderCandidate, error) {
	if strings.TrimSpace(grantID) == "" {
		return nil, &ResolutionError{GrantID: grantID, Err: fmt.Errorf("empty grant ID")}
	}

	params := url.Values{
		"filter":   {"grants.award_id:" + grantID},
		"group_by": {"grants.funder"},
	}

	var resp groupByResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, &ResolutionError{GrantID: grantID, Err: err}
	}

	seen := make(map[string]bool)
	var candidates []types.FunderCandidate
	for _, bucket := range resp.GroupBy {
		// OpenAlex reports works with no funder under an "unknown" bucket.
		if bucket.Key == "" || bucket.Key == "unknown" {
			continue
		}
		id := strings.TrimPrefix(bucket.Key, openAlexIDPrefix)
		if seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, types.FunderCandidate{
			ID:          id,
			DisplayName: bucket.KeyDisplayName,
			WorksCount:  bucket.Count,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].WorksCount != candidates[j].WorksCount {
			return candidates[i].WorksCount > candidates[j].WorksCount
		}
		return candidates[i].ID < candidates[j].ID
	})

	c.log.Debug().Str("grant_id", grantID).Int("candidates", len(candidates)).
		Msg("resolved funders")
	return candidates, nil
}

// Works fetches every work citing the resolved (grant ID, funder) pair in
// q, following the cursor pagination contract until the API reports no
// further pages. A failure on any page fails the whole fetch: the
// FetchError carries the page count reached, and no partial result set is
// returned.
func (c *Client) Works(ctx context.Context, q types.MatchQuery) ([]Work, error) {
	funderID := strings.TrimPrefix(q.FunderID, openAlexIDPrefix)

	filter := "grants.award_id:" + q.GrantID + ",grants.funder:" + funderID
	cursor := "*"
	pages := 0
	var works []Work

	for {
		params := url.Values{
			"filter":   {filter},
			"per_page": {strconv.Itoa(c.cfg.PerPage)},
			"cursor":   {cursor},
		}

		var resp worksResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, &FetchError{GrantID: q.GrantID, FunderID: funderID, Pages: pages, Err: err}
		}
		pages++
		works = append(works, resp.Results...)

		c.log.Debug().Str("grant_id", q.GrantID).Str("funder_id", funderID).
			Int("page", pages).Int("total", len(works)).Msg("fetched works page")

		// An empty page guards against servers that echo a cursor forever.
		if resp.Meta.NextCursor == "" || len(resp.Results) == 0 {
			return works, nil
		}
		cursor = resp.Meta.NextCursor
	}
}

// get performs a rate-limited GET against the works endpoint and decodes
// the JSON response into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}
	reqURL := c.cfg.BaseURL + "/works?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}
