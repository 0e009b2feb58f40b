package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/cache"
	"github.com/pdiddy/paperfetch/internal/digest"
	"github.com/pdiddy/paperfetch/internal/enrich"
	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [terms...]",
	Short: "Run the full pipeline: fetch, enrich, and email the digest",
	Long: `Run fetches recent papers matching the search terms, summarizes and rates
each abstract through the language model, and emails a ranked HTML digest.
Terms given as arguments override query.terms from the config file.

When the fetch finds more papers than enrichment.max_papers, the model is
skipped and a titles-only digest is sent instead. Results of each run are
cached for later inspection with the runs subcommand.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "render the digest to stdout instead of emailing it")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	terms := args
	if len(terms) == 0 {
		terms = cfg.Query.Terms
	}
	if len(terms) == 0 {
		return fmt.Errorf("provide search terms as arguments or set query.terms in the config")
	}
	query := strings.Join(terms, " ")
	qctx := types.QueryContext{Query: query, Interests: cfg.Query.Interests}

	window := fetch.WindowEndingToday(cfg.Query.DaysToCheck)
	sources := enabledSources(cfg.Fetch)

	out, err := fetch.All(cmd.Context(), terms, window, sources, cfg.Fetch, os.Stderr)
	if err != nil {
		return err
	}
	if len(out.Papers) == 0 {
		fmt.Fprintf(os.Stderr, "No papers found for %q between %s and %s; nothing to send.\n",
			query, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintf(os.Stderr, "Found %d paper(s) for %q\n", len(out.Papers), query)

	// Oversized batches bypass the model entirely.
	if len(out.Papers) > cfg.Enrichment.MaxPapers {
		fmt.Fprintf(os.Stderr, "%d papers exceeds the limit of %d; sending titles only\n",
			len(out.Papers), cfg.Enrichment.MaxPapers)
		html, err := digest.RenderSkipped(out.Papers, qctx, window.From, window.To, cfg.Enrichment.MaxPapers)
		if err != nil {
			return err
		}
		subject := digest.SkippedSubject(cfg.Email, query, time.Now(), len(out.Papers))
		return deliver(cfg.Email, subject, html, dryRun)
	}

	caller, err := enrich.NewOpenAICaller(cfg.Enrichment)
	if err != nil {
		return err
	}
	batch := enrich.Enrich(cmd.Context(), out.Papers, qctx, caller, cfg.Enrichment, os.Stderr)
	if len(batch) == 0 {
		return fmt.Errorf("enrichment produced no results")
	}

	cacheRun(cfg.Cache, query, window, batch)

	html, err := digest.RenderDigest(batch, qctx, window.From, window.To)
	if err != nil {
		return err
	}
	subject := digest.DigestSubject(cfg.Email, query, time.Now())
	return deliver(cfg.Email, subject, html, dryRun)
}

// enabledSources returns the fetch sources in merge order: CrossRef first,
// Springer second, so a Springer record wins a title collision.
func enabledSources(cfg types.FetchConfig) []fetch.Source {
	client := &http.Client{Timeout: cfg.Timeout}

	var sources []fetch.Source
	if cfg.EnableCrossref {
		sources = append(sources, &fetch.CrossrefSource{Client: client})
	}
	if cfg.EnableSpringer {
		sources = append(sources, &fetch.SpringerSource{Client: client})
	}
	return sources
}

// cacheRun persists the batch and prunes old runs. Cache failures are
// warnings: the digest still goes out.
func cacheRun(cfg types.CacheConfig, query string, window fetch.Window, batch types.ResultBatch) {
	store, err := cache.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open run cache: %v\n", err)
		return
	}
	defer store.Close()

	ctx := context.Background()
	runID, err := store.SaveRun(ctx, query, window.From, window.To, batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not cache run: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Cached run %d\n", runID)

	if removed, err := store.Prune(ctx, cfg.KeepRuns); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not prune cache: %v\n", err)
	} else if removed > 0 {
		fmt.Fprintf(os.Stderr, "Pruned %d old run(s)\n", removed)
	}
}

func deliver(cfg types.EmailConfig, subject, html string, dryRun bool) error {
	if dryRun {
		fmt.Fprintf(os.Stderr, "Dry run; subject would be: %s\n", subject)
		fmt.Println(html)
		return nil
	}
	if err := digest.Send(cfg, subject, html); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Digest sent to %s\n", cfg.Recipient)
	return nil
}
