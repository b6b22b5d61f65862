// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-coa/internal/coauthor"
	"github.com/pdiddy/scholar-coa/internal/httputil"
	"github.com/pdiddy/scholar-coa/pkg/types"
)

// scholarBase is the Google Scholar origin. Declared as a var so tests
// can substitute an httptest server.
var scholarBase = "https://scholar.google.com"

// ErrBlocked indicates Scholar served its unusual-traffic interstitial
// instead of profile content. A browser session (--browser) or a
// scholar-cookie secret usually gets past it.
var ErrBlocked = errors.New("blocked by Google Scholar bot detection")

// Fetcher retrieves a page and returns its HTML.
type Fetcher interface {
	Page(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher loads pages with a plain HTTP client, retrying throttled
// responses. An optional Cookie header carries a logged-in session.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Cookie    string
}

// Page fetches pageURL and returns the response body.
func (f *HTTPFetcher) Page(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept-Language", "en")
	if f.Cookie != "" {
		req.Header.Set("Cookie", f.Cookie)
	}

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("scholar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scholar returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	html := string(body)
	if isInterstitial(html) {
		return "", ErrBlocked
	}
	return html, nil
}

// isInterstitial recognizes the Scholar CAPTCHA page, which comes back
// with HTTP 200.
func isInterstitial(html string) bool {
	return strings.Contains(html, "gs_captcha_f") ||
		strings.Contains(html, "not a robot") ||
		strings.Contains(html, "unusual traffic")
}

// ScrapeBackend parses Scholar profile pages directly.
type ScrapeBackend struct {
	Fetch Fetcher
}

// Name returns the backend identifier.
func (b *ScrapeBackend) Name() string { return "scrape" }

// FetchProfile loads the profile page for scholarID, following the
// cstart/pagesize pagination until the publication table runs out.
func (b *ScrapeBackend) FetchProfile(ctx context.Context, scholarID string, cfg types.ScholarConfig) (*types.Profile, error) {
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
		pageURL := fmt.Sprintf("%s/citations?user=%s&hl=en&cstart=%d&pagesize=%d",
			scholarBase, url.QueryEscape(scholarID), page*pageSize, pageSize)

		html, err := b.Fetch.Page(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching profile page %d: %w", page+1, err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("parsing profile page: %w", err)
		}

		if page == 0 {
			parseProfileHeader(doc, profile)
			if profile.Name == "" {
				return nil, fmt.Errorf("no profile found for scholar ID %q", scholarID)
			}
		}

		pubs := parsePublicationRows(doc)
		profile.Publications = append(profile.Publications, pubs...)

		// A short page or the empty-table marker ends pagination.
		if len(pubs) < pageSize || doc.Find(".gsc_a_e").Length() > 0 {
			break
		}
	}

	return profile, nil
}

// parseProfileHeader reads name, affiliation, and citation metrics.
func parseProfileHeader(doc *goquery.Document, profile *types.Profile) {
	profile.Name = strings.TrimSpace(doc.Find("#gsc_prf_in").Text())
	profile.Affiliation = strings.TrimSpace(doc.Find(".gsc_prf_il").First().Text())

	doc.Find("#gsc_rsb_st tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("td").First().Text()))
		allTime := strings.ReplaceAll(strings.TrimSpace(row.Find("td.gsc_rsb_std").First().Text()), ",", "")
		switch {
		case strings.Contains(label, "citations"):
			profile.Citations, _ = strconv.Atoi(allTime)
		case strings.Contains(label, "h-index"):
			profile.HIndex, _ = strconv.Atoi(allTime)
		}
	})
}

// parsePublicationRows reads the publication table rows of one page.
func parsePublicationRows(doc *goquery.Document) []types.Publication {
	var pubs []types.Publication
	doc.Find(".gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.gsc_a_at")
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		pub := types.Publication{Title: title}

		if href, ok := link.Attr("href"); ok {
			pub.ID = citationID(href)
		}

		// Two .gs_gray lines under the title: authors, then venue.
		// The table abbreviates given names ("A Rosen"), so the inline
		// list is only a fallback; the citation page has the full forms.
		gray := row.Find(".gs_gray")
		pub.Authors = coauthor.SplitAuthors(strings.TrimSpace(gray.Eq(0).Text()))
		pub.Venue = strings.TrimSpace(gray.Eq(1).Text())

		yearText := strings.TrimSpace(row.Find(".gsc_a_y span").Text())
		pub.Year, _ = strconv.Atoi(yearText)

		pubs = append(pubs, pub)
	})
	return pubs
}

// citationID extracts the citation_for_view parameter from a
// view_citation href.
func citationID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("citation_for_view")
}

// FillAuthors loads the citation detail page for pub and replaces its
// truncated author list with the full one.
func (b *ScrapeBackend) FillAuthors(ctx context.Context, scholarID string, pub *types.Publication, cfg types.ScholarConfig) error {
	if pub.ID == "" {
		return fmt.Errorf("publication %q has no citation ID", pub.Title)
	}

	pageURL := fmt.Sprintf("%s/citations?view_op=view_citation&hl=en&user=%s&citation_for_view=%s",
		scholarBase, url.QueryEscape(scholarID), url.QueryEscape(pub.ID))

	html, err := b.Fetch.Page(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetching citation %s: %w", pub.ID, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing citation page: %w", err)
	}

	authors, year := parseCitationDetail(doc)
	if len(authors) == 0 {
		return fmt.Errorf("no author list on citation page for %q", pub.Title)
	}

	pub.Authors = authors
	if pub.Year == 0 && year != 0 {
		pub.Year = year
	}
	pub.Filled = true
	return nil
}

// parseCitationDetail reads the Authors and Publication date rows of
// the citation detail table.
func parseCitationDetail(doc *goquery.Document) (authors []string, year int) {
	doc.Find(".gs_scl").Each(func(_ int, row *goquery.Selection) {
		field := strings.TrimSpace(row.Find(".gsc_oci_field").Text())
		value := strings.TrimSpace(row.Find(".gsc_oci_value").Text())
		switch field {
		case "Authors":
			authors = coauthor.SplitAuthors(value)
		case "Publication date":
			if len(value) >= 4 {
				year, _ = strconv.Atoi(value[:4])
			}
		}
	})

	// Older page layouts pair the divs without the .gs_scl wrapper.
	if len(authors) == 0 {
		doc.Find(".gsc_oci_field").Each(func(_ int, field *goquery.Selection) {
			if strings.TrimSpace(field.Text()) == "Authors" {
				authors = coauthor.SplitAuthors(strings.TrimSpace(field.Next().Text()))
			}
		})
	}
	return authors, year
}
