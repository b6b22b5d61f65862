// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-coa CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-coa/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the scholar-coa CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-coa",
	Short: "Extract Google Scholar coauthors for NSF COA reports",
	Long: `scholar-coa fetches a researcher's Google Scholar profile, collects
coauthor names over a lookback window, and writes them to a CSV file in the
"Family, Given" form the NSF COA disclosure template expects.

The pipeline is linear: resolve the profile, fetch each publication's author
list, aggregate coauthors with their most recent collaboration year, filter
by the lookback window, and emit CSV. Fetched publications are cached in a
local SQLite database so repeated runs do not re-scrape Scholar.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-coa.yaml or ~/.config/scholar-coa/config.yaml)")
	rootCmd.PersistentFlags().String("cache-dir", "", "publication cache directory (default: ./cache)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-coa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-coa"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_COA")
	viper.AutomaticEnv()

	viper.SetDefault("scholar.backend", "scrape")
	viper.SetDefault("scholar.page_size", 100)
	viper.SetDefault("scholar.fetch_delay", "1s")
	viper.SetDefault("scholar.timeout", "30s")
	viper.SetDefault("scholar.user_agent", "scholar-coa/"+version)
	viper.SetDefault("report.years_back", 2)
	viper.SetDefault("report.output_path", "coauthors.csv")
	viper.SetDefault("cache.dir", "cache")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
