// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that call OpenAlex.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "grant-matcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OpenAlexConfig holds settings for the OpenAlex client.
type OpenAlexConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the OpenAlex API base URL. Defaults to
	// https://api.openalex.org.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Email is the contact address sent as the mailto parameter. Supplying
	// one places requests in the OpenAlex polite pool, which gets more
	// favorable rate treatment.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// PerPage is the page size for works queries (default 200, the API
	// maximum).
	PerPage int `json:"per_page" yaml:"per_page"`

	// RateLimit is the sustained request rate in requests per second
	// (default 5). The limit is shared by all queries in a run.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Burst is the token bucket burst size (default 5).
	Burst int `json:"burst" yaml:"burst"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// MatchConfig holds settings for batch matching.
type MatchConfig struct {
	// BatchLimit caps the number of grant IDs per batch run (default 100).
	// Larger inputs are rejected before any network call.
	BatchLimit int `json:"batch_limit" yaml:"batch_limit"`

	// Workers is the number of grant IDs processed concurrently (default 1,
	// capped at 4). The shared rate limiter keeps the total request rate
	// under the OpenAlex limit regardless of worker count.
	Workers int `json:"workers" yaml:"workers"`
}

// ExportFormat selects the publication export serialization.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ExportConfig holds settings for result export.
type ExportConfig struct {
	// Format selects the output serialization: csv, json, or yaml.
	Format ExportFormat `json:"format" yaml:"format"`

	// Output is the publications output path. Empty means stdout.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Report is the per-grant-ID outcome report path. Empty disables it.
	Report string `json:"report,omitempty" yaml:"report,omitempty"`

	// Database is the path of an optional SQLite archive of the run.
	// Empty disables it.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
}
