// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	serpapi "github.com/serpapi/google-search-results-golang"

	"github.com/pdiddy/scholar-coa/internal/coauthor"
	"github.com/pdiddy/scholar-coa/pkg/types"
)

// serpSearch runs one SerpAPI query. Declared as a var so tests can
// substitute canned responses without network access.
var serpSearch = func(params map[string]string, apiKey string) (map[string]interface{}, error) {
	search := serpapi.NewGoogleSearch(params, apiKey)
	return search.GetJSON()
}

// SerpAPIBackend retrieves profiles through SerpAPI's
// google_scholar_author engine. The article list carries abbreviated
// author names only; FillAuthors fetches the citation view for the
// full forms.
type SerpAPIBackend struct {
	APIKey string
}

// Name returns the backend identifier.
func (b *SerpAPIBackend) Name() string { return "serpapi" }

// FetchProfile pages through the author's articles via SerpAPI.
func (b *SerpAPIBackend) FetchProfile(ctx context.Context, scholarID string, cfg types.ScholarConfig) (*types.Profile, error) {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 20
	}

	profile := &types.Profile{ID: scholarID, FetchedAt: time.Now()}

	for page := 0; page < maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		params := map[string]string{
			"engine":    "google_scholar_author",
			"author_id": scholarID,
			"hl":        "en",
			"num":       strconv.Itoa(pageSize),
			"start":     strconv.Itoa(page * pageSize),
		}

		response, err := serpSearch(params, b.APIKey)
		if err != nil {
			return nil, fmt.Errorf("serpapi request: %w", err)
		}
		if errMsg, ok := response["error"].(string); ok && errMsg != "" {
			return nil, fmt.Errorf("serpapi: %s", errMsg)
		}

		if page == 0 {
			parseSerpAuthor(response, profile)
			if profile.Name == "" {
				return nil, fmt.Errorf("no profile found for scholar ID %q", scholarID)
			}
		}

		articles := parseSerpArticles(response)
		profile.Publications = append(profile.Publications, articles...)

		if len(articles) < pageSize {
			break
		}
	}

	return profile, nil
}

// parseSerpAuthor reads the author block and citation table.
func parseSerpAuthor(response map[string]interface{}, profile *types.Profile) {
	author, ok := response["author"].(map[string]interface{})
	if !ok {
		return
	}
	profile.Name, _ = author["name"].(string)
	profile.Affiliation, _ = author["affiliations"].(string)

	citedBy, ok := response["cited_by"].(map[string]interface{})
	if !ok {
		return
	}
	table, ok := citedBy["table"].([]interface{})
	if !ok {
		return
	}
	for _, raw := range table {
		row, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if c, ok := row["citations"].(map[string]interface{}); ok {
			if v, ok := c["all"].(float64); ok {
				profile.Citations = int(v)
			}
		}
		if h, ok := row["h_index"].(map[string]interface{}); ok {
			if v, ok := h["all"].(float64); ok {
				profile.HIndex = int(v)
			}
		}
	}
}

// parseSerpArticles converts the articles array into publications.
func parseSerpArticles(response map[string]interface{}) []types.Publication {
	raw, ok := response["articles"].([]interface{})
	if !ok {
		return nil
	}

	var pubs []types.Publication
	for _, entry := range raw {
		article, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		pub := types.Publication{}
		pub.Title, _ = article["title"].(string)
		if pub.Title == "" {
			continue
		}
		pub.ID, _ = article["citation_id"].(string)
		pub.Venue, _ = article["publication"].(string)

		if yearText, ok := article["year"].(string); ok {
			pub.Year, _ = strconv.Atoi(yearText)
		}

		// The inline authors string abbreviates given names the same way
		// the profile table does; keep it only as a fallback.
		authorText, _ := article["authors"].(string)
		pub.Authors = coauthor.SplitAuthors(authorText)

		pubs = append(pubs, pub)
	}
	return pubs
}

// FillAuthors fetches the citation detail for one publication.
func (b *SerpAPIBackend) FillAuthors(ctx context.Context, scholarID string, pub *types.Publication, cfg types.ScholarConfig) error {
	if pub.ID == "" {
		return fmt.Errorf("publication %q has no citation ID", pub.Title)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	params := map[string]string{
		"engine":      "google_scholar_author",
		"view_op":     "view_citation",
		"citation_id": pub.ID,
		"hl":          "en",
	}

	response, err := serpSearch(params, b.APIKey)
	if err != nil {
		return fmt.Errorf("serpapi citation request: %w", err)
	}
	if errMsg, ok := response["error"].(string); ok && errMsg != "" {
		return fmt.Errorf("serpapi: %s", errMsg)
	}

	citation, ok := response["citation"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("no citation detail for %q", pub.Title)
	}

	authorText, _ := citation["authors"].(string)
	authors := coauthor.SplitAuthors(authorText)
	if len(authors) == 0 {
		return fmt.Errorf("citation detail for %q has no authors", pub.Title)
	}

	pub.Authors = authors
	if pub.Year == 0 {
		if dateText, ok := citation["publication_date"].(string); ok && len(dateText) >= 4 {
			pub.Year, _ = strconv.Atoi(dateText[:4])
		}
	}
	pub.Filled = true
	return nil
}
