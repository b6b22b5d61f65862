// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar retrieves Google Scholar profiles and publication
// author lists. Two backends implement the Backend interface: a direct
// HTML scraper and a SerpAPI client.
package scholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/scholar-coa/pkg/types"
)

// Backend retrieves profile data from a single source.
type Backend interface {
	Name() string

	// FetchProfile resolves a scholar ID to a profile with its full
	// publication list. Author lists may be truncated; FillAuthors
	// completes them.
	FetchProfile(ctx context.Context, scholarID string, cfg types.ScholarConfig) (*types.Profile, error)

	// FillAuthors fetches the complete author list for one publication
	// and marks it filled.
	FillAuthors(ctx context.Context, scholarID string, pub *types.Publication, cfg types.ScholarConfig) error
}

// PublicationCache stores filled publications between runs. A nil cache
// disables reuse.
type PublicationCache interface {
	Lookup(ctx context.Context, scholarID, pubID string) (*types.Publication, error)
	Store(ctx context.Context, scholarID string, pub types.Publication) error
}

// NewBackend constructs the backend selected by cfg.Backend.
func NewBackend(cfg types.ScholarConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendSerpAPI:
		if cfg.SerpAPIKey == "" {
			return nil, fmt.Errorf("serpapi backend requires an API key (secret serpapi-api-key)")
		}
		return &SerpAPIBackend{APIKey: cfg.SerpAPIKey}, nil
	case types.BackendScrape, "":
		var fetcher Fetcher
		if cfg.UseBrowser {
			fetcher = &BrowserFetcher{}
		} else {
			fetcher = &HTTPFetcher{
				Client:    &http.Client{Timeout: cfg.Timeout},
				UserAgent: cfg.UserAgent,
				Cookie:    cfg.Cookie,
			}
		}
		return &ScrapeBackend{Fetch: fetcher}, nil
	default:
		return nil, fmt.Errorf("unknown scholar backend %q: use scrape or serpapi", cfg.Backend)
	}
}

// FillSummary holds counts from an author-fill run.
type FillSummary struct {
	Filled int
	Cached int
	Inline int
	Failed int
}

// Total returns the number of publications processed.
func (s FillSummary) Total() int {
	return s.Filled + s.Cached + s.Inline + s.Failed
}

// FillAllAuthors completes the author list of every publication in
// pubs, preferring cached copies over network fetches. It prints a
// per-item status line to w, applies cfg.FetchDelay between
// consecutive network fetches, continues after individual failures,
// and returns a summary. Failed publications keep their truncated
// author list.
func FillAllAuthors(ctx context.Context, b Backend, scholarID string, pubs []types.Publication, cache PublicationCache, cfg types.ScholarConfig, w io.Writer) (FillSummary, error) {
	var summary FillSummary
	total := len(pubs)
	fetched := 0

	for i := range pubs {
		pub := &pubs[i]

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		// Already filled on a previous pass; nothing to fetch.
		if pub.Filled {
			summary.Inline++
			continue
		}

		if cache != nil {
			cached, err := cache.Lookup(ctx, scholarID, pub.ID)
			if err != nil {
				fmt.Fprintf(w, "warning: cache lookup for %s: %v\n", pub.ID, err)
			} else if cached != nil && cached.Filled {
				pub.Authors = cached.Authors
				if pub.Year == 0 {
					pub.Year = cached.Year
				}
				pub.Filled = true
				summary.Cached++
				continue
			}
		}

		if fetched > 0 && cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.FetchDelay):
			}
		}

		fmt.Fprintf(w, "fetching authors (%d/%d): %s\n", i+1, total, pub.Title)
		fetched++

		if err := b.FillAuthors(ctx, scholarID, pub, cfg); err != nil {
			fmt.Fprintf(w, "  warning: %v\n", err)
			summary.Failed++
			continue
		}
		summary.Filled++

		if cache != nil {
			if err := cache.Store(ctx, scholarID, *pub); err != nil {
				fmt.Fprintf(w, "  warning: cache store for %s: %v\n", pub.ID, err)
			}
		}
	}

	fmt.Fprintf(w, "\nFill summary: %d fetched, %d cached, %d inline, %d failed (total: %d)\n",
		summary.Filled, summary.Cached, summary.Inline, summary.Failed, summary.Total())
	return summary, nil
}
