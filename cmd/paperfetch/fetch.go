package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [terms...]",
	Short: "Query the paper sources without enrichment",
	Long: `Fetch queries the enabled bibliographic sources (CrossRef, Springer/Nature)
for papers published in the recent window and prints what it finds. No model
calls are made and no email is sent; use it to tune search terms before a
full run.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("json", false, "output results as JSON")
	fetchCmd.Flags().Int("days", 0, "override query.days_to_check")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	terms := args
	if len(terms) == 0 {
		terms = cfg.Query.Terms
	}
	if len(terms) == 0 {
		return fmt.Errorf("provide search terms as arguments or set query.terms in the config")
	}

	days, _ := cmd.Flags().GetInt("days")
	if days == 0 {
		days = cfg.Query.DaysToCheck
	}
	window := fetch.WindowEndingToday(days)
	sources := enabledSources(cfg.Fetch)

	out, err := fetch.All(cmd.Context(), terms, window, sources, cfg.Fetch, os.Stderr)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return fetch.FormatJSON(out, os.Stdout)
	}

	fmt.Printf("Found %d paper(s) for %q between %s and %s\n\n",
		len(out.Papers), strings.Join(terms, " "),
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
	fetch.FormatTable(out, os.Stdout)
	return nil
}
