// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-coa pipeline.
package types

import "time"

// Profile holds a researcher's Google Scholar profile and publication list.
type Profile struct {
	// ID is the Google Scholar user identifier, the value of the "user"
	// query parameter in the profile URL (e.g. "lHBjgLsAAAAJ").
	ID string `json:"id" yaml:"id"`

	// Name is the researcher's display name as shown on the profile.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the first affiliation line on the profile, if any.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// Citations is the all-time citation count from the profile sidebar.
	Citations int `json:"citations,omitempty" yaml:"citations,omitempty"`

	// HIndex is the all-time h-index from the profile sidebar.
	HIndex int `json:"h_index,omitempty" yaml:"h_index,omitempty"`

	// Publications lists the profile's publications in page order.
	Publications []Publication `json:"publications" yaml:"publications"`

	// FetchedAt records when the profile was retrieved.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Publication is a single entry from a profile's publication list.
// Author names are free text as rendered by Scholar; no identity
// resolution is applied.
type Publication struct {
	// ID is the Scholar citation identifier (citation_for_view value).
	// The serpapi backend uses its citation_id, which has the same shape.
	ID string `json:"id" yaml:"id"`

	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year. Zero means Scholar lists no year.
	Year int `json:"year" yaml:"year"`

	// Authors lists author names in source order. Until the citation
	// page has been fetched this holds the abbreviated inline forms.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal or conference string, if shown.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Filled reports whether the full author list has been retrieved
	// from the citation page. The profile table abbreviates given
	// names, so inline lists never count as filled.
	Filled bool `json:"filled" yaml:"filled"`
}

// CoauthorRecord is one row of the COA report: a coauthor name and the
// most recent year a publication was shared with them. Records are
// unique by exact name string.
type CoauthorRecord struct {
	// Name is the coauthor name in NSF "Family, Given Middle" form.
	Name string `json:"name" yaml:"name"`

	// LastYear is the most recent collaboration year.
	LastYear int `json:"last_year" yaml:"last_year"`
}
