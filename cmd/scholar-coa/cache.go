// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the publication cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cached scholars and publication counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("cache is disabled")
		}
		defer store.Close()

		entries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-14s  %-30s  %6s  %6s  %s\n",
			"Scholar ID", "Name", "Pubs", "Filled", "Fetched")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
		for _, e := range entries {
			name := e.Name
			if len(name) > 30 {
				name = name[:27] + "..."
			}
			fmt.Fprintf(os.Stdout, "%-14s  %-30s  %6d  %6d  %s\n",
				e.ScholarID, name, e.Publications, e.Filled, e.FetchedAt)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached publications and profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("cache is disabled")
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
