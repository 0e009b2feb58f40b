// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries bibliographic APIs for recently published papers
// and merges the per-source results into one title-keyed batch.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Source fetches papers from a single bibliographic API.
type Source interface {
	Name() string
	Fetch(ctx context.Context, terms []string, window Window, cfg types.FetchConfig) (map[string]types.PaperRecord, error)
}

// Window is the publication date range to search.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowEndingToday returns a window covering the last days days. A
// non-positive value falls back to 7.
func WindowEndingToday(days int) Window {
	if days <= 0 {
		days = 7
	}
	to := time.Now()
	return Window{From: to.AddDate(0, 0, -days), To: to}
}

// Output holds the merged papers and per-source failure notes.
type Output struct {
	Papers       map[string]types.PaperRecord
	SourceErrors []string
}

// All queries every source concurrently and merges the results in the
// order the sources were given: on a title collision the later source's
// record replaces the earlier one wholesale. A failing source is a
// warning on w, not a run failure, unless every source fails.
func All(ctx context.Context, terms []string, window Window, sources []Source, cfg types.FetchConfig, w io.Writer) (Output, error) {
	if len(terms) == 0 {
		return Output{}, fmt.Errorf("no search terms: provide query terms on the command line or in the config")
	}
	if len(sources) == 0 {
		return Output{}, fmt.Errorf("no sources enabled")
	}

	// Collect into per-source slots so the merge order matches the
	// declared source order regardless of completion order.
	results := make([]map[string]types.PaperRecord, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = src.Fetch(ctx, terms, window, cfg)
		}(i, src)
	}
	wg.Wait()

	out := Output{Papers: make(map[string]types.PaperRecord)}
	failed := 0
	for i, src := range sources {
		if errs[i] != nil {
			failed++
			msg := fmt.Sprintf("%s: %v", src.Name(), errs[i])
			out.SourceErrors = append(out.SourceErrors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", src.Name(), errs[i])
			continue
		}
		for title, rec := range results[i] {
			out.Papers[title] = rec
		}
		fmt.Fprintf(w, "%s: %d papers with abstracts\n", src.Name(), len(results[i]))
	}

	if failed == len(sources) {
		return Output{}, fmt.Errorf("all sources failed: %s", strings.Join(out.SourceErrors, "; "))
	}
	return out, nil
}

// FormatTable writes the fetched papers as a human-readable table to w,
// sorted by title for stable output.
func FormatTable(out Output, w io.Writer) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	titles := make([]string, 0, len(out.Papers))
	for title := range out.Papers {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	fmt.Fprintf(w, "%-4s  %-60s  %-10s  %s\n", "Num", "Title", "Source", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, title := range titles {
		rec := out.Papers[title]
		short := title
		if len(short) > 60 {
			short = short[:57] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-10s  %s\n", i+1, short, rec.Source, rec.URL)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(out.Papers))
}

// FormatJSON writes the fetched papers as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	titles := make([]string, 0, len(out.Papers))
	for title := range out.Papers {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	records := make([]types.PaperRecord, 0, len(titles))
	for _, title := range titles {
		records = append(records, out.Papers[title])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
