// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-matcher/pkg/types"
)

func testClient(baseURL string) *Client {
	return New(types.OpenAlexConfig{
		BaseURL:   baseURL,
		Email:     "tests@example.org",
		RateLimit: 1000,
		Burst:     1000,
	}, zerolog.Nop())
}

const sampleGroupByJSON = `{
  "meta": {"count": 65, "per_page": 200},
  "group_by": [
    {"key": "https://openalex.org/F4320332161", "key_display_name": "National Institutes of Health", "count": 50},
    {"key": "https://openalex.org/F4320306076", "key_display_name": "National Science Foundation", "count": 10},
    {"key": "unknown", "key_display_name": "unknown", "count": 3},
    {"key": "https://openalex.org/F4320321001", "key_display_name": "Wellcome Trust", "count": 5}
  ]
}`

func TestFunders(t *testing.T) {
	var gotQuery atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleGroupByJSON)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	candidates, err := c.Funders(context.Background(), "R01GM123456")
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	// Ordered by descending work count; the "unknown" bucket is dropped.
	assert.Equal(t, "F4320332161", candidates[0].ID)
	assert.Equal(t, "National Institutes of Health", candidates[0].DisplayName)
	assert.Equal(t, 50, candidates[0].WorksCount)
	assert.Equal(t, "F4320306076", candidates[1].ID)
	assert.Equal(t, "F4320321001", candidates[2].ID)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "grants.award_id:R01GM123456", q["filter"][0])
	assert.Equal(t, "grants.funder", q["group_by"][0])
	assert.Equal(t, "tests@example.org", q["mailto"][0])
}

func TestFunders_NoCitingWorks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"meta": {"count": 0}, "group_by": []}`)
	}))
	defer ts.Close()

	candidates, err := testClient(ts.URL).Funders(context.Background(), "NOSUCH")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFunders_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Funders(context.Background(), "R01GM123456")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "R01GM123456", resErr.GrantID)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFunders_EmptyGrantID(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Funders(context.Background(), "  ")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "empty grant ID must not reach the network")
}

func worksPage(nextCursor string, titles ...string) string {
	results := ""
	for i, title := range titles {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{"id": "https://openalex.org/W%d", "title": %q, "publication_year": 2020}`, i+1, title)
	}
	cursor := "null"
	if nextCursor != "" {
		cursor = fmt.Sprintf("%q", nextCursor)
	}
	return fmt.Sprintf(`{"meta": {"count": %d, "next_cursor": %s}, "results": [%s]}`, len(titles), cursor, results)
}

func TestWorks_SinglePage(t *testing.T) {
	var gotQuery atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		fmt.Fprint(w, worksPage("", "Paper One", "Paper Two"))
	}))
	defer ts.Close()

	works, err := testClient(ts.URL).Works(context.Background(), types.MatchQuery{GrantID: "ABC123", FunderID: "F100"})
	require.NoError(t, err)
	require.Len(t, works, 2)
	assert.Equal(t, "Paper One", works[0].Title)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "grants.award_id:ABC123,grants.funder:F100", q["filter"][0])
	assert.Equal(t, "*", q["cursor"][0])
	assert.Equal(t, "200", q["per_page"][0])
}

func TestWorks_CursorPagination(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		cursor := r.URL.Query().Get("cursor")
		switch n {
		case 1:
			if cursor != "*" {
				t.Errorf("first request cursor = %q, want \"*\"", cursor)
			}
			fmt.Fprint(w, worksPage("cur-2", "Page1 A", "Page1 B"))
		case 2:
			if cursor != "cur-2" {
				t.Errorf("second request cursor = %q, want \"cur-2\"", cursor)
			}
			fmt.Fprint(w, worksPage("", "Page2 A"))
		default:
			t.Errorf("unexpected extra request %d", n)
		}
	}))
	defer ts.Close()

	works, err := testClient(ts.URL).Works(context.Background(), types.MatchQuery{GrantID: "ABC123", FunderID: "F100"})
	require.NoError(t, err)
	require.Len(t, works, 3)
	// API ordering is preserved across pages.
	assert.Equal(t, "Page1 A", works[0].Title)
	assert.Equal(t, "Page2 A", works[2].Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWorks_FailureMidPagination(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, worksPage("cur-2", "Only Page"))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	works, err := testClient(ts.URL).Works(context.Background(), types.MatchQuery{GrantID: "ABC123", FunderID: "F100"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.Pages)
	assert.Equal(t, "ABC123", fetchErr.GrantID)
	assert.Nil(t, works, "partial results must not be returned as success")
}

func TestWorks_FullFunderURLAccepted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "grants.award_id:X,grants.funder:F42", r.URL.Query().Get("filter"))
		fmt.Fprint(w, worksPage(""))
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Works(context.Background(), types.MatchQuery{GrantID: "X", FunderID: "https://openalex.org/F42"})
	require.NoError(t, err)
}

func TestWorks_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, worksPage(""))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(ts.URL).Works(ctx, types.MatchQuery{GrantID: "ABC123", FunderID: "F100"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
