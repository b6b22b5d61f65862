// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coauthor aggregates publication author lists into a
// deduplicated coauthor table for COA disclosure reports.
package coauthor

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/scholar-coa/pkg/types"
)

// nowYear returns the current year. Declared as a var so tests can pin it.
var nowYear = func() int { return time.Now().Year() }

// SplitAuthors splits a free-text author string into individual names.
// Scholar renders author lists either comma-separated (profile and
// citation pages) or " and "-separated (bibliographic exports); both
// forms are handled, including mixtures. Ellipsis placeholders that
// Scholar substitutes for long author lists are dropped.
func SplitAuthors(s string) []string {
	var names []string
	for _, chunk := range strings.Split(s, " and ") {
		for _, name := range strings.Split(chunk, ",") {
			name = strings.TrimSpace(name)
			if name == "" || name == "..." || name == "…" {
				continue
			}
			names = append(names, name)
		}
	}
	return names
}

// NSFName reorders a "Given Middle Family" name into the NSF COA form
// "Family, Given Middle". Single-token names are returned unchanged.
func NSFName(name string) string {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name
	}
	return name[idx+1:] + ", " + name[:idx]
}

// Aggregate builds coauthor records from publications: one record per
// distinct author name, carrying the most recent collaboration year.
// Uniqueness is exact string match on the source name, before NSF
// reordering. A publication without a year counts as the current year.
// selfName, when non-empty, removes the profile owner from the result.
// Records are returned in NSF name form, sorted by name.
func Aggregate(pubs []types.Publication, selfName string) []types.CoauthorRecord {
	selfName = strings.TrimSpace(selfName)
	latest := make(map[string]int)

	for _, pub := range pubs {
		year := pub.Year
		if year == 0 {
			year = nowYear()
		}
		for _, author := range pub.Authors {
			author = strings.TrimSpace(author)
			if author == "" || author == selfName {
				continue
			}
			if year > latest[author] {
				latest[author] = year
			}
		}
	}

	records := make([]types.CoauthorRecord, 0, len(latest))
	for name, year := range latest {
		records = append(records, types.CoauthorRecord{
			Name:     NSFName(name),
			LastYear: year,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].LastYear < records[j].LastYear
	})
	return records
}

// CutoffYear converts a lookback window into the earliest included
// publication year. Zero yearsBack means no cutoff (returns 0).
func CutoffYear(yearsBack int) int {
	if yearsBack <= 0 {
		return 0
	}
	return nowYear() - yearsBack
}

// FilterSince drops records whose last collaboration year is before
// cutoff. A zero cutoff keeps everything.
func FilterSince(records []types.CoauthorRecord, cutoff int) []types.CoauthorRecord {
	if cutoff == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		if r.LastYear >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}

// FilterPublications keeps publications within the lookback window.
// Undated publications are kept: Scholar omits years most often on the
// newest entries.
func FilterPublications(pubs []types.Publication, cutoff int) []types.Publication {
	if cutoff == 0 {
		return pubs
	}
	var kept []types.Publication
	for _, pub := range pubs {
		if pub.Year == 0 || pub.Year >= cutoff {
			kept = append(kept, pub)
		}
	}
	return kept
}
