// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefSource queries the CrossRef REST API. Papers without an
// abstract are dropped: the enrichment engine has nothing to work with.
type CrossrefSource struct {
	Client *http.Client
}

// Name returns the source identifier.
func (s *CrossrefSource) Name() string { return "crossref" }

// Fetch queries CrossRef for works published inside the window.
func (s *CrossrefSource) Fetch(ctx context.Context, terms []string, window Window, cfg types.FetchConfig) (map[string]types.PaperRecord, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	params := url.Values{
		"query": {strings.Join(terms, " ")},
		"filter": {fmt.Sprintf("from-pub-date:%s,until-pub-date:%s",
			window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))},
		"rows": {fmt.Sprintf("%d", maxResults)},
	}
	if cfg.Mailto != "" {
		params.Set("mailto", cfg.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := doWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	papers := make(map[string]types.PaperRecord)
	for _, item := range cr.Message.Items {
		if len(item.Title) == 0 || item.Title[0] == "" || item.Abstract == "" {
			continue
		}
		title := item.Title[0]

		// DOI link preferred over the publisher URL.
		link := ""
		if item.DOI != "" {
			link = "https://doi.org/" + item.DOI
		} else if item.URL != "" {
			link = item.URL
		}

		papers[title] = types.PaperRecord{
			Title:    title,
			Abstract: item.Abstract,
			URL:      link,
			Source:   s.Name(),
		}
	}
	return papers, nil
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"`
	DOI      string   `json:"DOI"`
	URL      string   `json:"URL"`
}
