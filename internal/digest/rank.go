// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest turns an enrichment batch into a ranked HTML report and
// delivers it by email.
package digest

import (
	"sort"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// failedSortKey sorts below every valid rating so unratable papers land
// at the bottom of the digest.
const failedSortKey = -1

// RankedPaper pairs a title with its enrichment result for ordered output.
type RankedPaper struct {
	Title  string
	Result types.EnrichmentResult
}

// Rank orders the batch by rating, highest first. Papers whose rating
// failed sort last. Ties break by title so repeated runs over the same
// batch produce identical reports.
func Rank(batch types.ResultBatch) []RankedPaper {
	ranked := make([]RankedPaper, 0, len(batch))
	for title, result := range batch {
		ranked = append(ranked, RankedPaper{Title: title, Result: result})
	}

	sort.Slice(ranked, func(i, j int) bool {
		ki, kj := sortKey(ranked[i].Result), sortKey(ranked[j].Result)
		if ki != kj {
			return ki > kj
		}
		return ranked[i].Title < ranked[j].Title
	})
	return ranked
}

func sortKey(r types.EnrichmentResult) int {
	if r.Rating.OK() {
		return r.Rating.Score
	}
	return failedSortKey
}
