// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummaryOutcome is the terminal result of the summarization stage for one
// paper: either a bullet-point summary or a failure reason.
type SummaryOutcome struct {
	// Bullets holds the 3-5 key points extracted from the abstract.
	// Only meaningful when FailureReason is empty.
	Bullets []string `json:"bullets,omitempty" yaml:"bullets,omitempty"`

	// FailureReason is a human-readable description of why summarization
	// failed. Empty means success.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// Summarized returns a successful summary outcome.
func Summarized(bullets []string) SummaryOutcome {
	return SummaryOutcome{Bullets: bullets}
}

// SummaryFailed returns a failed summary outcome with the given reason.
func SummaryFailed(reason string) SummaryOutcome {
	return SummaryOutcome{FailureReason: reason}
}

// OK reports whether the summarization stage succeeded.
func (o SummaryOutcome) OK() bool { return o.FailureReason == "" }

// RatingOutcome is the terminal result of the relevance-rating stage for
// one paper. A score is present only when the model produced an integer in
// [0,10]; out-of-range or non-integer output is recorded as a failure,
// never clamped or coerced.
type RatingOutcome struct {
	// Score is the relevance rating in [0,10]. Only meaningful when
	// FailureReason is empty.
	Score int `json:"score" yaml:"score"`

	// FailureReason is a human-readable description of why rating failed.
	// Empty means success.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// Rated returns a successful rating outcome holding score.
func Rated(score int) RatingOutcome {
	return RatingOutcome{Score: score}
}

// RatingFailed returns a failed rating outcome with the given reason.
func RatingFailed(reason string) RatingOutcome {
	return RatingOutcome{FailureReason: reason}
}

// OK reports whether the rating stage succeeded.
func (o RatingOutcome) OK() bool { return o.FailureReason == "" }

// EnrichmentResult holds both stage outcomes for one paper. It is created
// once by the enrichment engine and never mutated after being placed in a
// ResultBatch.
type EnrichmentResult struct {
	Summary SummaryOutcome `json:"summary" yaml:"summary"`
	Rating  RatingOutcome  `json:"rating" yaml:"rating"`
	URL     string         `json:"url,omitempty" yaml:"url,omitempty"`
}

// ResultBatch maps paper title to its enrichment result. Map iteration
// order carries no meaning; consumers re-derive order by rating.
type ResultBatch map[string]EnrichmentResult
