// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher loads pages through a headless Chrome session.
// Scholar's bot detection treats plain HTTP clients far more harshly
// than a real browser, so this is the fallback when HTTPFetcher hits
// the interstitial.
type BrowserFetcher struct{}

// Page navigates to pageURL, waits for the document body, and returns
// the rendered HTML.
func (f *BrowserFetcher) Page(ctx context.Context, pageURL string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser navigation: %w", err)
	}

	if isInterstitial(html) {
		return "", ErrBlocked
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("browser returned an empty document for %s", pageURL)
	}
	return html, nil
}
