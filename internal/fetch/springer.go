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

// springerAPIBase is the Springer Meta API endpoint, which covers Nature
// journals. Declared as a var so tests can substitute an httptest server.
var springerAPIBase = "https://api.springer.com/meta/v2/json"

// SpringerSource queries the Springer/Nature Meta API. Requires an API key.
type SpringerSource struct {
	Client *http.Client
}

// Name returns the source identifier.
func (s *SpringerSource) Name() string { return "springer" }

// Fetch queries the Meta API for records published inside the window.
func (s *SpringerSource) Fetch(ctx context.Context, terms []string, window Window, cfg types.FetchConfig) (map[string]types.PaperRecord, error) {
	if cfg.SpringerAPIKey == "" {
		return nil, fmt.Errorf("springer API key missing: set fetch.springer_api_key or .secrets/springer-api-key")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{
		"q":       {buildSpringerQuery(terms, window)},
		"p":       {fmt.Sprintf("%d", maxResults)},
		"api_key": {cfg.SpringerAPIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, springerAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := doWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Springer API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Springer API returned HTTP %d", resp.StatusCode)
	}

	var sr springerResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Springer response: %w", err)
	}

	papers := make(map[string]types.PaperRecord)
	for _, rec := range sr.Records {
		if rec.Title == "" || rec.Abstract == "" {
			continue
		}

		link := ""
		if rec.DOI != "" {
			link = "https://doi.org/" + rec.DOI
		} else if len(rec.URL) > 0 {
			link = rec.URL[0].Value
		}

		papers[rec.Title] = types.PaperRecord{
			Title:    rec.Title,
			Abstract: rec.Abstract,
			URL:      link,
			Source:   s.Name(),
		}
	}
	return papers, nil
}

// buildSpringerQuery joins quoted terms with AND and appends the online
// date constraints the Meta API expects.
func buildSpringerQuery(terms []string, window Window) string {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + term + `"`
	}
	return fmt.Sprintf("%s onlinedatefrom:%s onlinedateto:%s",
		strings.Join(quoted, " AND "),
		window.From.Format("2006-01-02"),
		window.To.Format("2006-01-02"))
}

// Springer Meta API JSON structures.
type springerResponse struct {
	Records []springerRecord `json:"records"`
}

type springerRecord struct {
	Title    string        `json:"title"`
	Abstract string        `json:"abstract"`
	DOI      string        `json:"doi"`
	URL      []springerURL `json:"url"`
}

type springerURL struct {
	Format string `json:"format"`
	Value  string `json:"value"`
}
