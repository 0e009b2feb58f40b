// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperfetch pipeline:
// paper records produced by the source fetchers, per-stage enrichment
// outcomes, and the configuration structs consumed by every stage.
package types

// PaperRecord is a single paper as returned by a bibliographic source.
// The title is the identity key within a batch: case-sensitive, exact
// match. When two sources yield the same title, the later source's record
// replaces the earlier one wholesale.
type PaperRecord struct {
	// Title is the paper title as returned by the source. Never empty.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract. Sources drop items without one.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL links to the paper, preferring https://doi.org/<DOI> when the
	// source provides a DOI. May be empty.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source identifies which fetcher produced this record (e.g. "crossref").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// QueryContext is the text against which relevance is rated.
type QueryContext struct {
	// Query is the search query the papers were fetched with.
	Query string `json:"query" yaml:"query"`

	// Interests is an optional free-text statement of the researcher's
	// interests. When set, the rating prompt carries both fields under
	// separate labels.
	Interests string `json:"interests,omitempty" yaml:"interests,omitempty"`
}
