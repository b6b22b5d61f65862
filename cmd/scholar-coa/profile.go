// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-coa/internal/scholar"
	"github.com/pdiddy/scholar-coa/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Fetch and display a Google Scholar profile summary",
	Long: `Profile fetches the profile for --scholar-id and prints a summary:
name, affiliation, citation metrics, and publication count. A YAML snapshot
of the full profile is written under the cache directory.`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	scholarID, _ := cmd.Flags().GetString("scholar-id")
	if scholarID == "" {
		return fmt.Errorf("--scholar-id is required (the value after \"user=\" in the profile URL)")
	}

	scholarCfg := scholarConfig(cmd)
	ctx := cmd.Context()

	backend, err := scholar.NewBackend(scholarCfg)
	if err != nil {
		return err
	}

	profile, err := backend.FetchProfile(ctx, scholarID, scholarCfg)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}

	snapshotProfile(ctx, cmd, profile, os.Stderr)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	fmt.Printf("Name:         %s\n", profile.Name)
	if profile.Affiliation != "" {
		fmt.Printf("Affiliation:  %s\n", profile.Affiliation)
	}
	if profile.Citations > 0 {
		fmt.Printf("Citations:    %d\n", profile.Citations)
	}
	if profile.HIndex > 0 {
		fmt.Printf("h-index:      %d\n", profile.HIndex)
	}
	fmt.Printf("Publications: %d\n", len(profile.Publications))
	return nil
}

// snapshotProfile writes the profile through the cache store. Snapshot
// problems are reported to w but never fail the command.
func snapshotProfile(ctx context.Context, cmd *cobra.Command, profile *types.Profile, w io.Writer) {
	store, err := openCache(cmd)
	if err != nil {
		fmt.Fprintf(w, "warning: opening cache: %v\n", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.SaveProfile(ctx, profile); err != nil {
		fmt.Fprintf(w, "warning: saving profile: %v\n", err)
	}
}

func init() {
	profileCmd.Flags().String("scholar-id", "", "Google Scholar user ID (required)")
	profileCmd.Flags().String("backend", "", "data source: scrape or serpapi")
	profileCmd.Flags().Bool("browser", false, "use a headless Chrome session for scraping")
	profileCmd.Flags().Bool("json", false, "output the full profile as JSON")
	profileCmd.Flags().Bool("no-cache", false, "skip the profile snapshot")

	rootCmd.AddCommand(profileCmd)
}
