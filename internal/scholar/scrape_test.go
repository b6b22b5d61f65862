// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-coa/internal/coauthor"
	"github.com/pdiddy/scholar-coa/pkg/types"
)

const sampleProfileHTML = `<html><body>
<div id="gsc_prf_in">Andrew Rosen</div>
<div class="gsc_prf_il">Princeton University</div>
<table id="gsc_rsb_st">
<tr><td>Citations</td><td class="gsc_rsb_std">3,200</td><td class="gsc_rsb_std">2,100</td></tr>
<tr><td>h-index</td><td class="gsc_rsb_std">30</td><td class="gsc_rsb_std">25</td></tr>
</table>
<table id="gsc_a_t">
<tr class="gsc_a_tr">
  <td><a class="gsc_a_at" href="/citations?view_op=view_citation&amp;user=AB12&amp;citation_for_view=AB12:c1">Paper One</a>
    <div class="gs_gray">A Rosen, B Jones, ...</div>
    <div class="gs_gray">Nature</div></td>
  <td class="gsc_a_y"><span>2024</span></td>
</tr>
<tr class="gsc_a_tr">
  <td><a class="gsc_a_at" href="/citations?view_op=view_citation&amp;user=AB12&amp;citation_for_view=AB12:c2">Paper Two</a>
    <div class="gs_gray">A Rosen, C Lee</div>
    <div class="gs_gray">Science</div></td>
  <td class="gsc_a_y"><span>2019</span></td>
</tr>
</table>
</body></html>`

const sampleCitationHTML = `<html><body>
<div id="gsc_oci_title">Paper One</div>
<div class="gs_scl"><div class="gsc_oci_field">Authors</div><div class="gsc_oci_value">Andrew Rosen, Bill Jones, Carol Lee</div></div>
<div class="gs_scl"><div class="gsc_oci_field">Publication date</div><div class="gsc_oci_value">2024/5/1</div></div>
</body></html>`

// newScholarServer serves a fake profile and citation page, rebinding
// scholarBase for the duration of the test.
func newScholarServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := scholarBase
	scholarBase = ts.URL
	t.Cleanup(func() {
		scholarBase = old
		ts.Close()
	})
	return ts
}

func newScrapeBackend(ts *httptest.Server) *ScrapeBackend {
	return &ScrapeBackend{Fetch: &HTTPFetcher{Client: ts.Client(), UserAgent: "scholar-coa/test"}}
}

func TestScrapeFetchProfile(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleProfileHTML)
	})
	b := newScrapeBackend(ts)

	profile, err := b.FetchProfile(context.Background(), "AB12", types.ScholarConfig{})
	require.NoError(t, err)

	assert.Equal(t, "AB12", profile.ID)
	assert.Equal(t, "Andrew Rosen", profile.Name)
	assert.Equal(t, "Princeton University", profile.Affiliation)
	assert.Equal(t, 3200, profile.Citations)
	assert.Equal(t, 30, profile.HIndex)

	require.Len(t, profile.Publications, 2)

	one := profile.Publications[0]
	assert.Equal(t, "AB12:c1", one.ID)
	assert.Equal(t, "Paper One", one.Title)
	assert.Equal(t, 2024, one.Year)
	assert.Equal(t, "Nature", one.Venue)
	assert.Equal(t, []string{"A Rosen", "B Jones"}, one.Authors)
	assert.False(t, one.Filled)

	two := profile.Publications[1]
	assert.Equal(t, "AB12:c2", two.ID)
	assert.Equal(t, 2019, two.Year)
	assert.False(t, two.Filled, "inline lists are abbreviated and never count as filled")
}

func TestScrapeFetchProfile_Pagination(t *testing.T) {
	pages := map[string]string{
		"0": rowPage("AB12:c1", "Paper One", "A Rosen, B Jones", "2024"),
		"1": rowPage("AB12:c2", "Paper Two", "A Rosen, C Lee", "2020"),
		"2": `<html><body><div id="gsc_prf_in">Andrew Rosen</div><table id="gsc_a_t"><td class="gsc_a_e">There are no articles in this profile.</td></table></body></html>`,
	}
	var requests int
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, pages[r.URL.Query().Get("cstart")])
	})
	b := newScrapeBackend(ts)

	profile, err := b.FetchProfile(context.Background(), "AB12", types.ScholarConfig{PageSize: 1})
	require.NoError(t, err)

	assert.Len(t, profile.Publications, 2)
	assert.Equal(t, 3, requests)
}

func rowPage(id, title, authors, year string) string {
	return fmt.Sprintf(`<html><body>
<div id="gsc_prf_in">Andrew Rosen</div>
<table id="gsc_a_t">
<tr class="gsc_a_tr">
  <td><a class="gsc_a_at" href="/citations?view_op=view_citation&amp;citation_for_view=%s">%s</a>
    <div class="gs_gray">%s</div><div class="gs_gray">Venue</div></td>
  <td class="gsc_a_y"><span>%s</span></td>
</tr>
</table></body></html>`, id, title, authors, year)
}

func TestScrapeFetchProfile_NotFound(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>no such profile</body></html>`)
	})
	b := newScrapeBackend(ts)

	_, err := b.FetchProfile(context.Background(), "NOPE", types.ScholarConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profile found")
}

func TestScrapeFetchProfile_Blocked(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Our systems have detected unusual traffic from your computer network.</body></html>`)
	})
	b := newScrapeBackend(ts)

	_, err := b.FetchProfile(context.Background(), "AB12", types.ScholarConfig{})
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestScrapeFetchProfile_Forbidden(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	b := newScrapeBackend(ts)

	_, err := b.FetchProfile(context.Background(), "AB12", types.ScholarConfig{})
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestScrapeFillAuthors(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "view_citation", r.URL.Query().Get("view_op"))
		assert.Equal(t, "AB12:c1", r.URL.Query().Get("citation_for_view"))
		fmt.Fprint(w, sampleCitationHTML)
	})
	b := newScrapeBackend(ts)

	pub := types.Publication{ID: "AB12:c1", Title: "Paper One"}
	err := b.FillAuthors(context.Background(), "AB12", &pub, types.ScholarConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Andrew Rosen", "Bill Jones", "Carol Lee"}, pub.Authors)
	assert.Equal(t, 2024, pub.Year)
	assert.True(t, pub.Filled)
}

func TestScrapeFillAuthors_NoID(t *testing.T) {
	b := &ScrapeBackend{}
	pub := types.Publication{Title: "Untracked"}
	err := b.FillAuthors(context.Background(), "AB12", &pub, types.ScholarConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no citation ID")
}

func TestHTTPFetcher_SendsCookie(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, "<html></html>")
	}))
	defer ts.Close()

	f := &HTTPFetcher{Client: ts.Client(), UserAgent: "scholar-coa/test", Cookie: "NID=42"}
	_, err := f.Page(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "NID=42", gotCookie)
}

// --- FillAllAuthors ---

// memCache is an in-memory PublicationCache for tests.
type memCache struct {
	pubs map[string]types.Publication
}

func newMemCache() *memCache {
	return &memCache{pubs: make(map[string]types.Publication)}
}

func (m *memCache) Lookup(_ context.Context, scholarID, pubID string) (*types.Publication, error) {
	if pub, ok := m.pubs[scholarID+"/"+pubID]; ok {
		return &pub, nil
	}
	return nil, nil
}

func (m *memCache) Store(_ context.Context, scholarID string, pub types.Publication) error {
	m.pubs[scholarID+"/"+pub.ID] = pub
	return nil
}

// errBackend fails every FillAuthors call.
type errBackend struct{}

func (errBackend) Name() string { return "err" }
func (errBackend) FetchProfile(context.Context, string, types.ScholarConfig) (*types.Profile, error) {
	return nil, errors.New("not implemented")
}
func (errBackend) FillAuthors(context.Context, string, *types.Publication, types.ScholarConfig) error {
	return errors.New("boom")
}

func TestFillAllAuthors_MixesSources(t *testing.T) {
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleCitationHTML)
	})
	b := newScrapeBackend(ts)

	cache := newMemCache()
	cache.Store(context.Background(), "AB12", types.Publication{
		ID: "AB12:c2", Authors: []string{"A Rosen", "C Lee"}, Year: 2019, Filled: true,
	})

	pubs := []types.Publication{
		{ID: "AB12:c1", Title: "Paper One"},                  // network fetch
		{ID: "AB12:c2", Title: "Paper Two"},                  // cache hit
		{ID: "AB12:c3", Title: "Paper Three", Filled: true},  // already filled
	}

	summary, err := FillAllAuthors(context.Background(), b, "AB12", pubs, cache, types.ScholarConfig{}, noopWriter{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Filled)
	assert.Equal(t, 1, summary.Cached)
	assert.Equal(t, 1, summary.Inline)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Total())

	assert.True(t, pubs[0].Filled)
	assert.Equal(t, []string{"Andrew Rosen", "Bill Jones", "Carol Lee"}, pubs[0].Authors)
	assert.Equal(t, []string{"A Rosen", "C Lee"}, pubs[1].Authors)

	// The network fetch landed in the cache.
	stored, err := cache.Lookup(context.Background(), "AB12", "AB12:c1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Filled)
}

func TestFillAllAuthors_ExpandsAbbreviatedNames(t *testing.T) {
	var citationFetches int
	ts := newScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view_op") == "view_citation" {
			citationFetches++
			fmt.Fprint(w, `<html><body>
<div class="gs_scl"><div class="gsc_oci_field">Authors</div><div class="gsc_oci_value">Andrew Rosen, Carol Lee</div></div>
</body></html>`)
			return
		}
		fmt.Fprint(w, rowPage("AB12:c9", "Paper Nine", "A Rosen, C Lee", "2024"))
	})
	b := newScrapeBackend(ts)

	profile, err := b.FetchProfile(context.Background(), "AB12", types.ScholarConfig{})
	require.NoError(t, err)
	require.Len(t, profile.Publications, 1)

	// The short inline list still goes through the citation page: the
	// profile table abbreviates given names.
	summary, err := FillAllAuthors(context.Background(), b, "AB12", profile.Publications, nil, types.ScholarConfig{}, noopWriter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Filled)
	assert.Equal(t, 0, summary.Inline)
	assert.Equal(t, 1, citationFetches)
	assert.Equal(t, []string{"Andrew Rosen", "Carol Lee"}, profile.Publications[0].Authors)

	// With the full forms in place, exact self-removal catches the
	// profile owner.
	records := coauthor.Aggregate(profile.Publications, profile.Name)
	require.Len(t, records, 1)
	assert.Equal(t, "Lee, Carol", records[0].Name)
}

func TestFillAllAuthors_ContinuesAfterFailure(t *testing.T) {
	pubs := []types.Publication{
		{ID: "c1", Title: "Paper One"},
		{ID: "c2", Title: "Paper Two", Filled: true},
	}

	summary, err := FillAllAuthors(context.Background(), errBackend{}, "AB12", pubs, nil, types.ScholarConfig{}, noopWriter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Inline)
}

func TestFillAllAuthors_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pubs := []types.Publication{{ID: "c1", Title: "Paper One"}}
	_, err := FillAllAuthors(ctx, errBackend{}, "AB12", pubs, nil, types.ScholarConfig{}, noopWriter{})
	assert.ErrorIs(t, err, context.Canceled)
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
