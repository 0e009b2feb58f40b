// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperfetch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperfetch/internal/secrets"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paperfetch CLI.
var rootCmd = &cobra.Command{
	Use:   "paperfetch",
	Short: "Fetch recent papers, enrich them with an LLM, and email a digest",
	Long: `paperfetch checks bibliographic APIs (CrossRef, Springer/Nature) for papers
published in a recent window, asks a language model to summarize and rate
each abstract, and emails a ranked HTML digest.

The full pipeline runs as the run subcommand. The fetch subcommand queries
the sources without enrichment, and runs inspects cached results of earlier
runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperfetch.yaml or ~/.config/paperfetch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperfetch"))
		}
	}

	viper.SetEnvPrefix("PAPERFETCH")
	viper.AutomaticEnv()

	viper.SetDefault("query.days_to_check", 7)
	viper.SetDefault("fetch.timeout", "30s")
	viper.SetDefault("fetch.user_agent", "paperfetch/0.1")
	viper.SetDefault("fetch.enable_crossref", true)
	viper.SetDefault("fetch.enable_springer", false)
	viper.SetDefault("fetch.max_results", 100)
	viper.SetDefault("enrichment.model", "gpt-4o-mini")
	viper.SetDefault("enrichment.max_summary_attempts", 3)
	viper.SetDefault("enrichment.max_rating_attempts", 3)
	viper.SetDefault("enrichment.max_papers", 50)
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.subject_prefix", "PaperFetch")
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.keep_runs", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the pipeline configuration from viper keys, with
// secrets backfilling any credential the config file leaves empty.
func loadConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Query: types.QueryConfig{
			Terms:       viper.GetStringSlice("query.terms"),
			Interests:   viper.GetString("query.interests"),
			DaysToCheck: viper.GetInt("query.days_to_check"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			EnableCrossref: viper.GetBool("fetch.enable_crossref"),
			EnableSpringer: viper.GetBool("fetch.enable_springer"),
			Mailto:         secretDefault("crossref-mailto", viper.GetString("fetch.mailto")),
			SpringerAPIKey: secretDefault("springer-api-key", viper.GetString("fetch.springer_api_key")),
			MaxResults:     viper.GetInt("fetch.max_results"),
		},
		Enrichment: types.EnrichmentConfig{
			Model:              viper.GetString("enrichment.model"),
			APIKey:             secretDefault("openai-api-key", viper.GetString("enrichment.api_key")),
			BaseURL:            viper.GetString("enrichment.base_url"),
			MaxSummaryAttempts: viper.GetInt("enrichment.max_summary_attempts"),
			MaxRatingAttempts:  viper.GetInt("enrichment.max_rating_attempts"),
			MaxPapers:          viper.GetInt("enrichment.max_papers"),
		},
		Email: types.EmailConfig{
			SMTPHost:      viper.GetString("email.smtp_host"),
			SMTPPort:      viper.GetInt("email.smtp_port"),
			Sender:        viper.GetString("email.sender"),
			Password:      secretDefault("smtp-password", viper.GetString("email.password")),
			Recipient:     viper.GetString("email.recipient"),
			SubjectPrefix: viper.GetString("email.subject_prefix"),
		},
		Cache: types.CacheConfig{
			Dir:      viper.GetString("cache.dir"),
			KeepRuns: viper.GetInt("cache.keep_runs"),
		},
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
