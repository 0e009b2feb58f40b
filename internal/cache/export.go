// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperfetch/internal/digest"
)

// ExportRun holds one cached run in export form, papers in ranked order.
type ExportRun struct {
	Run    RunInfo       `json:"run" yaml:"run"`
	Papers []ExportPaper `json:"papers" yaml:"papers"`
}

// ExportPaper is one paper's outcome in export form.
type ExportPaper struct {
	Title          string   `json:"title" yaml:"title"`
	Score          *int     `json:"score,omitempty" yaml:"score,omitempty"`
	RatingFailure  string   `json:"rating_failure,omitempty" yaml:"rating_failure,omitempty"`
	Bullets        []string `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	SummaryFailure string   `json:"summary_failure,omitempty" yaml:"summary_failure,omitempty"`
	URL            string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// ExportYAML writes one run as YAML to w.
func (s *Store) ExportYAML(ctx context.Context, runID int64, w io.Writer) error {
	run, err := s.exportRun(ctx, runID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes one run as indented JSON to w.
func (s *Store) ExportJSON(ctx context.Context, runID int64, w io.Writer) error {
	run, err := s.exportRun(ctx, runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func (s *Store) exportRun(ctx context.Context, runID int64) (ExportRun, error) {
	info, batch, err := s.LoadRun(ctx, runID)
	if err != nil {
		return ExportRun{}, err
	}

	out := ExportRun{Run: info, Papers: make([]ExportPaper, 0, len(batch))}
	for _, rp := range digest.Rank(batch) {
		p := ExportPaper{
			Title:          rp.Title,
			RatingFailure:  rp.Result.Rating.FailureReason,
			Bullets:        rp.Result.Summary.Bullets,
			SummaryFailure: rp.Result.Summary.FailureReason,
			URL:            rp.Result.URL,
		}
		if rp.Result.Rating.OK() {
			score := rp.Result.Rating.Score
			p.Score = &score
		}
		out.Papers = append(out.Papers, p)
	}
	return out, nil
}
