// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-coa/pkg/types"
)

var sampleRecords = []types.CoauthorRecord{
	{Name: "Jones, B", LastYear: 2019},
	{Name: "Lee, Carol", LastYear: 2024},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sampleRecords, &buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "Name,Last Collaboration Year" {
		t.Errorf("header = %q", lines[0])
	}
	// NSF names contain commas, so fields must be quoted.
	if lines[1] != `"Jones, B",2019` {
		t.Errorf("row = %q", lines[1])
	}
	if lines[2] != `"Lee, Carol",2024` {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Name,Last Collaboration Year" {
		t.Errorf("empty report should still carry the header, got %q", got)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "coauthors.csv")
	if err := WriteCSVFile(sampleRecords, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Jones, B",2019`) {
		t.Errorf("unexpected file content: %s", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the CSV in the output directory, found %d entries", len(entries))
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleRecords, &buf)

	out := buf.String()
	if !strings.Contains(out, "Jones, B") || !strings.Contains(out, "2024") {
		t.Errorf("table missing content: %s", out)
	}
	if !strings.Contains(out, "2 coauthors") {
		t.Errorf("table missing count: %s", out)
	}
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No coauthors found.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(sampleRecords, &buf); err != nil {
		t.Fatal(err)
	}

	var decoded []types.CoauthorRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[1].LastYear != 2024 {
		t.Errorf("unexpected decode: %+v", decoded)
	}
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatYAML(sampleRecords, &buf); err != nil {
		t.Fatal(err)
	}

	var decoded []types.CoauthorRecord
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[0].Name != "Jones, B" {
		t.Errorf("unexpected decode: %+v", decoded)
	}
}
