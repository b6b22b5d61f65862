// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-coa/internal/cache"
	"github.com/pdiddy/scholar-coa/internal/secrets"
	"github.com/pdiddy/scholar-coa/pkg/types"
)

// pipelineConfig materializes the viper-backed configuration. Flag
// overrides are applied per command on top of this.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Scholar: types.ScholarConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("scholar.timeout"),
				UserAgent: viper.GetString("scholar.user_agent"),
			},
			Backend:    types.ScholarBackend(viper.GetString("scholar.backend")),
			PageSize:   viper.GetInt("scholar.page_size"),
			MaxPages:   viper.GetInt("scholar.max_pages"),
			FetchDelay: viper.GetDuration("scholar.fetch_delay"),
			SerpAPIKey: viper.GetString("scholar.serpapi_api_key"),
		},
		Report: types.ReportConfig{
			YearsBack:  viper.GetInt("report.years_back"),
			OutputPath: viper.GetString("report.output_path"),
		},
		Cache: types.CacheConfig{
			Dir:      viper.GetString("cache.dir"),
			Disabled: viper.GetBool("cache.disabled"),
		},
	}
}

// scholarConfig resolves retrieval settings: viper-backed defaults,
// overridden by command flags, with credentials from the secrets
// directory.
func scholarConfig(cmd *cobra.Command) types.ScholarConfig {
	cfg := pipelineConfig().Scholar

	if v, err := cmd.Flags().GetString("backend"); err == nil && v != "" {
		cfg.Backend = types.ScholarBackend(v)
	}
	if v, err := cmd.Flags().GetBool("browser"); err == nil && v {
		cfg.UseBrowser = true
	}
	if cmd.Flags().Changed("fetch-delay") {
		cfg.FetchDelay, _ = cmd.Flags().GetDuration("fetch-delay")
	}

	cfg.Cookie = secrets.Value(loadedSecrets, secrets.KeyScholarCookie)
	if cfg.SerpAPIKey == "" {
		cfg.SerpAPIKey = secrets.Value(loadedSecrets, secrets.KeySerpAPI)
	}
	return cfg
}

// reportConfig resolves aggregation and output settings.
func reportConfig(cmd *cobra.Command) types.ReportConfig {
	cfg := pipelineConfig().Report

	if cmd.Flags().Changed("years-back") {
		cfg.YearsBack, _ = cmd.Flags().GetInt("years-back")
	}
	if v, err := cmd.Flags().GetString("output"); err == nil && v != "" {
		cfg.OutputPath = v
	}
	if v, err := cmd.Flags().GetBool("include-self"); err == nil && v {
		cfg.IncludeSelf = true
	}
	return cfg
}

// openCache opens the publication cache, honoring --cache-dir and
// --no-cache. A nil store means caching is off.
func openCache(cmd *cobra.Command) (*cache.Store, error) {
	cfg := pipelineConfig().Cache
	if v, err := cmd.Flags().GetBool("no-cache"); err == nil && v {
		cfg.Disabled = true
	}
	if cfg.Disabled {
		return nil, nil
	}

	if dir, _ := rootCmd.PersistentFlags().GetString("cache-dir"); dir != "" {
		cfg.Dir = dir
	}
	return cache.NewStore(cfg)
}
