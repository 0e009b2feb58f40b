package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name   string
	papers map[string]types.PaperRecord
	err    error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(_ context.Context, _ []string, _ Window, _ types.FetchConfig) (map[string]types.PaperRecord, error) {
	return m.papers, m.err
}

func testCfg() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults: 100,
	}
}

func record(title, source string) types.PaperRecord {
	return types.PaperRecord{Title: title, Abstract: "An abstract.", Source: source}
}

// --- All ---

func TestAllNoTerms(t *testing.T) {
	var buf bytes.Buffer
	_, err := All(context.Background(), nil, WindowEndingToday(7), []Source{&mockSource{name: "mock"}}, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "no search terms") {
		t.Errorf("expected no-terms error, got: %v", err)
	}
}

func TestAllNoSources(t *testing.T) {
	var buf bytes.Buffer
	_, err := All(context.Background(), []string{"transformers"}, WindowEndingToday(7), nil, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "no sources") {
		t.Errorf("expected no-sources error, got: %v", err)
	}
}

func TestAllMergesLaterSourceWins(t *testing.T) {
	first := &mockSource{name: "first", papers: map[string]types.PaperRecord{
		"Shared Title": record("Shared Title", "first"),
		"Only First":   record("Only First", "first"),
	}}
	second := &mockSource{name: "second", papers: map[string]types.PaperRecord{
		"Shared Title": record("Shared Title", "second"),
		"Only Second":  record("Only Second", "second"),
	}}

	var buf bytes.Buffer
	out, err := All(context.Background(), []string{"q"}, WindowEndingToday(7), []Source{first, second}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(out.Papers) != 3 {
		t.Fatalf("len(Papers) = %d, want 3", len(out.Papers))
	}
	// The later source's record replaces the earlier one wholesale.
	if out.Papers["Shared Title"].Source != "second" {
		t.Errorf("Shared Title came from %q, want %q", out.Papers["Shared Title"].Source, "second")
	}
}

func TestAllContinuesAfterSourceFailure(t *testing.T) {
	failing := &mockSource{name: "failing", err: fmt.Errorf("network error")}
	working := &mockSource{name: "working", papers: map[string]types.PaperRecord{
		"Paper A": record("Paper A", "working"),
	}}

	var buf bytes.Buffer
	out, err := All(context.Background(), []string{"q"}, WindowEndingToday(7), []Source{failing, working}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("All should not fail entirely: %v", err)
	}
	if len(out.Papers) != 1 {
		t.Errorf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if len(out.SourceErrors) != 1 {
		t.Errorf("len(SourceErrors) = %d, want 1", len(out.SourceErrors))
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Error("output should contain a warning about the failed source")
	}
}

func TestAllFailsWhenEverySourceFails(t *testing.T) {
	a := &mockSource{name: "a", err: fmt.Errorf("boom")}
	b := &mockSource{name: "b", err: fmt.Errorf("bust")}

	var buf bytes.Buffer
	_, err := All(context.Background(), []string{"q"}, WindowEndingToday(7), []Source{a, b}, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "all sources failed") {
		t.Errorf("expected all-sources error, got: %v", err)
	}
}

// --- Window ---

func TestWindowEndingToday(t *testing.T) {
	w := WindowEndingToday(7)
	days := w.To.Sub(w.From).Hours() / 24
	if days < 6.9 || days > 7.1 {
		t.Errorf("window spans %.1f days, want 7", days)
	}

	// Non-positive falls back to the default.
	w = WindowEndingToday(0)
	days = w.To.Sub(w.From).Hours() / 24
	if days < 6.9 || days > 7.1 {
		t.Errorf("default window spans %.1f days, want 7", days)
	}
}

// --- CrossRef source ---

const sampleCrossrefJSON = `{
  "message": {
    "items": [
      {
        "title": ["Attention Is All You Need"],
        "abstract": "<jats:p>We propose a new architecture.</jats:p>",
        "DOI": "10.5555/3295222",
        "URL": "https://publisher.example/attention"
      },
      {
        "title": ["No Abstract Here"],
        "DOI": "10.5555/9999999"
      },
      {
        "title": ["URL Only Paper"],
        "abstract": "Has an abstract but no DOI.",
        "URL": "https://publisher.example/url-only"
      },
      {
        "title": [],
        "abstract": "Untitled."
      }
    ]
  }
}`

func TestCrossrefSourceFetch(t *testing.T) {
	var gotQuery, gotFilter string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotFilter = r.URL.Query().Get("filter")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleCrossrefJSON)
	}))
	defer ts.Close()

	old := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = old }()

	window := Window{
		From: time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
	}
	src := &CrossrefSource{Client: ts.Client()}
	papers, err := src.Fetch(context.Background(), []string{"attention", "transformers"}, window, testCfg())
	if err != nil {
		t.Fatalf("CrossrefSource.Fetch: %v", err)
	}

	if gotQuery != "attention transformers" {
		t.Errorf("query = %q, want terms joined by space", gotQuery)
	}
	if gotFilter != "from-pub-date:2026-08-22,until-pub-date:2026-08-29" {
		t.Errorf("filter = %q", gotFilter)
	}

	// Abstract-less and title-less items are dropped.
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	r := papers["Attention Is All You Need"]
	if r.URL != "https://doi.org/10.5555/3295222" {
		t.Errorf("URL = %q, want DOI link preferred", r.URL)
	}
	if r.Source != "crossref" {
		t.Errorf("Source = %q", r.Source)
	}

	u := papers["URL Only Paper"]
	if u.URL != "https://publisher.example/url-only" {
		t.Errorf("URL = %q, want publisher URL fallback", u.URL)
	}
}

func TestCrossrefSourceHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = old }()

	src := &CrossrefSource{Client: ts.Client()}
	_, err := src.Fetch(context.Background(), []string{"q"}, WindowEndingToday(7), testCfg())
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected HTTP error, got: %v", err)
	}
}

// --- Springer source ---

const sampleSpringerJSON = `{
  "records": [
    {
      "title": "A Nature Paper",
      "abstract": "Findings of note.",
      "doi": "10.1038/s41586-026-00001",
      "url": [{"format": "html", "value": "https://www.nature.com/articles/00001"}]
    },
    {
      "title": "No DOI Paper",
      "abstract": "Also notable.",
      "url": [{"format": "html", "value": "https://link.springer.com/article/2"}]
    },
    {
      "title": "Abstract Missing"
    }
  ]
}`

func TestSpringerSourceFetch(t *testing.T) {
	var gotQ string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSpringerJSON)
	}))
	defer ts.Close()

	old := springerAPIBase
	springerAPIBase = ts.URL
	defer func() { springerAPIBase = old }()

	cfg := testCfg()
	cfg.SpringerAPIKey = "test-key"
	window := Window{
		From: time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
	}

	src := &SpringerSource{Client: ts.Client()}
	papers, err := src.Fetch(context.Background(), []string{"gene", "editing"}, window, cfg)
	if err != nil {
		t.Fatalf("SpringerSource.Fetch: %v", err)
	}

	want := `"gene" AND "editing" onlinedatefrom:2026-08-22 onlinedateto:2026-08-29`
	if gotQ != want {
		t.Errorf("q = %q, want %q", gotQ, want)
	}

	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers["A Nature Paper"].URL != "https://doi.org/10.1038/s41586-026-00001" {
		t.Errorf("URL = %q, want DOI link preferred", papers["A Nature Paper"].URL)
	}
	if papers["No DOI Paper"].URL != "https://link.springer.com/article/2" {
		t.Errorf("URL = %q, want record URL fallback", papers["No DOI Paper"].URL)
	}
}

func TestSpringerSourceRequiresKey(t *testing.T) {
	src := &SpringerSource{Client: http.DefaultClient}
	_, err := src.Fetch(context.Background(), []string{"q"}, WindowEndingToday(7), testCfg())
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("expected missing-key error, got: %v", err)
	}
}

// --- Output formatting ---

func TestFormatTable(t *testing.T) {
	out := Output{Papers: map[string]types.PaperRecord{
		"Paper A": {Title: "Paper A", Source: "crossref", URL: "https://doi.org/10.1/a"},
		"Paper B": {Title: "Paper B", Source: "springer"},
	}}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	s := buf.String()

	if !strings.Contains(s, "Paper A") || !strings.Contains(s, "Paper B") {
		t.Error("table should list both papers")
	}
	if !strings.Contains(s, "2 papers") {
		t.Error("table should report the count")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No papers") {
		t.Error("empty output should say 'No papers'")
	}
}
