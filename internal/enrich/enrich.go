// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich transforms a batch of fetched papers into summaries and
// relevance ratings by fanning out two-stage model calls, one goroutine per
// paper. Papers fail independently: a modeled failure (bad model output,
// transient API error, exhausted retries) becomes a failure outcome in the
// batch, never an error to the caller.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Message is one role-tagged message in a model request.
type Message struct {
	Role    string
	Content string
}

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ModelCaller sends an ordered message sequence to a language model and
// returns the response text. Implementations carry their own model
// identifier and must be safe for concurrent use.
type ModelCaller interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

const defaultMaxAttempts = 3

// Enrich processes every paper concurrently and returns one result per
// input title. It returns only after every paper has reached a terminal
// outcome. The single exception to the one-result-per-title guarantee is a
// panic escaping a per-paper goroutine: that paper is logged and dropped
// so its siblings still complete.
//
// Progress and per-attempt diagnostics are written to w. Each paper's
// goroutine buffers its own lines and sends them with its result, so only
// the coordinating goroutine touches w; it need not be safe for
// concurrent use.
func Enrich(ctx context.Context, papers map[string]types.PaperRecord, qctx types.QueryContext, caller ModelCaller, cfg types.EnrichmentConfig, w io.Writer) types.ResultBatch {
	batch := make(types.ResultBatch, len(papers))
	if len(papers) == 0 {
		return batch
	}

	summaryAttempts := cfg.MaxSummaryAttempts
	if summaryAttempts < 1 {
		summaryAttempts = defaultMaxAttempts
	}
	ratingAttempts := cfg.MaxRatingAttempts
	if ratingAttempts < 1 {
		ratingAttempts = defaultMaxAttempts
	}

	type paperOutcome struct {
		title   string
		result  types.EnrichmentResult
		log     []byte
		dropped bool
	}

	ch := make(chan paperOutcome, len(papers))
	var wg sync.WaitGroup

	for title, rec := range papers {
		wg.Add(1)
		go func(title string, rec types.PaperRecord) {
			defer wg.Done()
			var log bytes.Buffer
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(&log, "warning: dropping %q after unexpected error: %v\n", shorten(title), r)
					ch <- paperOutcome{title: title, dropped: true, log: log.Bytes()}
				}
			}()
			result := enrichOne(ctx, rec, qctx, caller, summaryAttempts, ratingAttempts, &log)
			ch <- paperOutcome{title: title, result: result, log: log.Bytes()}
		}(title, rec)
	}

	wg.Wait()
	close(ch)

	// Only the coordinating goroutine writes the map and w.
	for out := range ch {
		if len(out.log) > 0 {
			w.Write(out.log)
		}
		if out.dropped {
			continue
		}
		batch[out.title] = out.result
	}
	return batch
}

// enrichOne runs the two-stage protocol for a single paper. The rating
// stage is reached only when summarization succeeded; a rating failure
// never discards the summary.
func enrichOne(ctx context.Context, rec types.PaperRecord, qctx types.QueryContext, caller ModelCaller, summaryAttempts, ratingAttempts int, w io.Writer) types.EnrichmentResult {
	bullets, err := retry(summaryAttempts, func() ([]string, error) {
		text, err := caller.Complete(ctx, summaryMessages(rec))
		if err != nil {
			return nil, err
		}
		return parseBulletList(text)
	}, func(attempt int, err error) {
		fmt.Fprintf(w, "summary attempt %d/%d failed for %q: %v\n", attempt, summaryAttempts, shorten(rec.Title), err)
	})
	if err != nil {
		fmt.Fprintf(w, "skipping %q: summary %v\n", shorten(rec.Title), err)
		return types.EnrichmentResult{
			Summary: types.SummaryFailed(fmt.Sprintf("summary failed %v", err)),
			Rating:  types.RatingFailed("skipped: no summary"),
			URL:     rec.URL,
		}
	}

	score, err := retry(ratingAttempts, func() (int, error) {
		text, err := caller.Complete(ctx, ratingMessages(rec, qctx))
		if err != nil {
			return 0, err
		}
		return parseRating(text)
	}, func(attempt int, err error) {
		fmt.Fprintf(w, "rating attempt %d/%d failed for %q: %v\n", attempt, ratingAttempts, shorten(rec.Title), err)
	})
	if err != nil {
		fmt.Fprintf(w, "summarized %q but rating failed\n", shorten(rec.Title))
		return types.EnrichmentResult{
			Summary: types.Summarized(bullets),
			Rating:  types.RatingFailed(fmt.Sprintf("rating failed %v", err)),
			URL:     rec.URL,
		}
	}

	fmt.Fprintf(w, "enriched %q (rating %d/10)\n", shorten(rec.Title), score)
	return types.EnrichmentResult{
		Summary: types.Summarized(bullets),
		Rating:  types.Rated(score),
		URL:     rec.URL,
	}
}

// retry invokes op up to attempts times, stopping at the first success.
// onErr observes each failed attempt. The returned error names the number
// of attempts exhausted and wraps the last failure. Both stages use this
// combinator; a parse or range failure retries exactly like a call failure.
func retry[T any](attempts int, op func() (T, error), onErr func(attempt int, err error)) (T, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if onErr != nil {
			onErr(attempt, err)
		}
	}
	var zero T
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// shorten truncates long titles for log lines, on a rune boundary so a
// multi-byte character is never split.
func shorten(s string) string {
	if len(s) <= 50 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:47]) + "..."
}
