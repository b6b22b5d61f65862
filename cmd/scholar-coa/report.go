// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-coa/internal/coauthor"
	"github.com/pdiddy/scholar-coa/internal/report"
	"github.com/pdiddy/scholar-coa/internal/scholar"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a coauthor CSV for NSF COA disclosure",
	Long: `Report fetches the profile for --scholar-id, retrieves the author list
of every publication within the lookback window, and writes one CSV row per
coauthor with their most recent collaboration year.

The scholar ID is the string after "user=" in the profile URL. Use
--years-back 0 to disable the lookback filter, and --output - to print a
table instead of writing a file.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	scholarID, _ := cmd.Flags().GetString("scholar-id")
	if scholarID == "" {
		return fmt.Errorf("--scholar-id is required (the value after \"user=\" in the profile URL)")
	}

	scholarCfg := scholarConfig(cmd)
	reportCfg := reportConfig(cmd)
	ctx := cmd.Context()

	backend, err := scholar.NewBackend(scholarCfg)
	if err != nil {
		return err
	}

	store, err := openCache(cmd)
	if err != nil {
		return err
	}
	var pubCache scholar.PublicationCache
	if store != nil {
		defer store.Close()
		pubCache = store
	}

	fmt.Fprintf(os.Stderr, "fetching profile %s (%s backend)\n", scholarID, backend.Name())
	profile, err := backend.FetchProfile(ctx, scholarID, scholarCfg)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}
	fmt.Fprintf(os.Stderr, "profile: %s, %d publications\n", profile.Name, len(profile.Publications))

	if store != nil {
		if err := store.SaveProfile(ctx, profile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving profile: %v\n", err)
		}
	}

	cutoff := coauthor.CutoffYear(reportCfg.YearsBack)
	pubs := coauthor.FilterPublications(profile.Publications, cutoff)
	if cutoff > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d publications within the %d-year window\n",
			len(pubs), len(profile.Publications), reportCfg.YearsBack)
	}

	if _, err := scholar.FillAllAuthors(ctx, backend, scholarID, pubs, pubCache, scholarCfg, os.Stderr); err != nil {
		return fmt.Errorf("fetching author lists: %w", err)
	}

	selfName := profile.Name
	if reportCfg.IncludeSelf {
		selfName = ""
	}
	records := coauthor.FilterSince(coauthor.Aggregate(pubs, selfName), cutoff)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return report.FormatJSON(records, os.Stdout)
	}
	if reportCfg.OutputPath == "-" {
		report.FormatTable(records, os.Stdout)
		return nil
	}

	if err := report.WriteCSVFile(records, reportCfg.OutputPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d coauthors to %s\n", len(records), reportCfg.OutputPath)
	return nil
}

func init() {
	reportCmd.Flags().String("scholar-id", "", "Google Scholar user ID (required)")
	reportCmd.Flags().Int("years-back", 2, "lookback window in years (0 = no limit)")
	reportCmd.Flags().String("output", "", "CSV output path (\"-\" prints a table)")
	reportCmd.Flags().String("backend", "", "data source: scrape or serpapi")
	reportCmd.Flags().Bool("browser", false, "use a headless Chrome session for scraping")
	reportCmd.Flags().Bool("include-self", false, "keep the profile owner in the report")
	reportCmd.Flags().Bool("json", false, "output records as JSON instead of CSV")
	reportCmd.Flags().Bool("no-cache", false, "bypass the publication cache")
	reportCmd.Flags().Duration("fetch-delay", 0, "pause between publication fetches")

	rootCmd.AddCommand(reportCmd)
}
