package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/cache"
	"github.com/pdiddy/paperfetch/internal/digest"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect cached results of earlier runs",
	Long: `Runs lists the cached pipeline runs and lets a single run be shown or
exported. The cache exists for debugging: it holds what each run fetched
and how the model scored it, after the email has already gone out.`,
	RunE: listRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one cached run's ranked results",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export one cached run as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  exportRun,
}

func init() {
	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*cache.Store, error) {
	return cache.Open(loadConfig().Cache)
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id %q", arg)
	}
	return id, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No cached runs.")
		return nil
	}

	fmt.Printf("%-6s %-20s %-24s %s\n", "ID", "CREATED", "WINDOW", "QUERY (PAPERS)")
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %s to %s  %s (%d)\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"),
			r.Query, r.Papers)
	}
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	info, batch, err := store.LoadRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d: %q, %s to %s, %d paper(s)\n\n",
		info.ID, info.Query,
		info.From.Format("2006-01-02"), info.To.Format("2006-01-02"),
		info.Papers)

	for _, rp := range digest.Rank(batch) {
		if rp.Result.Rating.OK() {
			fmt.Printf("[%2d/10] %s\n", rp.Result.Rating.Score, rp.Title)
		} else {
			fmt.Printf("[  --] %s (%s)\n", rp.Title, rp.Result.Rating.FailureReason)
		}
		if rp.Result.Summary.OK() {
			for _, b := range rp.Result.Summary.Bullets {
				fmt.Printf("        - %s\n", b)
			}
		} else {
			fmt.Printf("        summary not available: %s\n", rp.Result.Summary.FailureReason)
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml":
		return store.ExportYAML(cmd.Context(), id, os.Stdout)
	case "json":
		return store.ExportJSON(cmd.Context(), id, os.Stdout)
	default:
		return fmt.Errorf("unknown export format %q (use yaml or json)", format)
	}
}
