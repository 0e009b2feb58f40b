// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperfetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// QueryConfig holds the search query and the window of recent publications
// to check.
type QueryConfig struct {
	// Terms are the search terms. The CLI overrides them with positional
	// arguments when given.
	Terms []string `json:"terms" yaml:"terms"`

	// Interests is an optional researcher-interest statement included in
	// the relevance-rating prompt.
	Interests string `json:"interests,omitempty" yaml:"interests,omitempty"`

	// DaysToCheck is the size of the publication date window ending today
	// (default 7).
	DaysToCheck int `json:"days_to_check" yaml:"days_to_check"`
}

// FetchConfig holds settings for the source-fetching stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableCrossref controls whether the CrossRef source is queried.
	EnableCrossref bool `json:"enable_crossref" yaml:"enable_crossref"`

	// EnableSpringer controls whether the Springer/Nature source is queried.
	EnableSpringer bool `json:"enable_springer" yaml:"enable_springer"`

	// Mailto is the contact email sent to CrossRef for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// SpringerAPIKey authenticates against the Springer Meta API.
	SpringerAPIKey string `json:"springer_api_key,omitempty" yaml:"springer_api_key,omitempty"`

	// MaxResults caps the number of records requested per source (default 100).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// EnrichmentConfig holds settings for the LLM enrichment engine.
type EnrichmentConfig struct {
	// Model is the model identifier sent with each request.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the model API endpoint, for OpenAI-compatible
	// gateways. Empty means the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxSummaryAttempts is the attempt budget for the summarization stage
	// (default 3, minimum 1).
	MaxSummaryAttempts int `json:"max_summary_attempts" yaml:"max_summary_attempts"`

	// MaxRatingAttempts is the attempt budget for the rating stage
	// (default 3, minimum 1).
	MaxRatingAttempts int `json:"max_rating_attempts" yaml:"max_rating_attempts"`

	// MaxPapers is the largest batch the engine is asked to process. When
	// a fetch run finds more papers, the pipeline bypasses the engine and
	// sends a titles-only digest instead (default 50). The check happens
	// before the engine is invoked, never inside it.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`
}

// EmailConfig holds settings for digest delivery.
type EmailConfig struct {
	// SMTPHost and SMTPPort locate the mail server. STARTTLS is always used.
	SMTPHost string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `json:"smtp_port" yaml:"smtp_port"`

	// Sender is the From address and SMTP username.
	Sender string `json:"sender" yaml:"sender"`

	// Password is the SMTP password. Usually supplied via .secrets/smtp-password.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Recipient is the To address.
	Recipient string `json:"recipient" yaml:"recipient"`

	// SubjectPrefix is prepended to every digest subject (default "PaperFetch").
	SubjectPrefix string `json:"subject_prefix" yaml:"subject_prefix"`
}

// CacheConfig holds settings for the transient run cache.
type CacheConfig struct {
	// Dir is the directory holding the SQLite cache database (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// KeepRuns is how many recent runs Prune retains (default 20).
	KeepRuns int `json:"keep_runs" yaml:"keep_runs"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Query      QueryConfig      `json:"query" yaml:"query"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment"`
	Email      EmailConfig      `json:"email" yaml:"email"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
}
