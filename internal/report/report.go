// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report serializes coauthor records for COA disclosure:
// CSV for the NSF template, plus table, JSON, and YAML views.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-coa/pkg/types"
)

// csvHeader is the column header row of the CSV output.
var csvHeader = []string{"Name", "Last Collaboration Year"}

// WriteCSV writes records as CSV to w: a header row, then one row per
// coauthor. Names contain commas (NSF form), so proper CSV quoting
// matters here.
func WriteCSV(records []types.CoauthorRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Name, strconv.Itoa(r.LastYear)}); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV to path atomically: the content lands in
// a temp file first and is renamed into place on success.
func WriteCSVFile(records []types.CoauthorRecord, path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, ".coa-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := WriteCSV(records, tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.CoauthorRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No coauthors found.")
		return
	}

	fmt.Fprintf(w, "%-40s  %s\n", "Name", "Last Year")
	fmt.Fprintln(w, strings.Repeat("-", 51))
	for _, r := range records {
		name := r.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%-40s  %d\n", name, r.LastYear)
	}
	fmt.Fprintf(w, "\n%d coauthors\n", len(records))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.CoauthorRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatYAML writes records as a YAML list to w.
func FormatYAML(records []types.CoauthorRecord, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(records)
}
