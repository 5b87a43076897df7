// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes an extracted report in the formats downstream tools
// read: YAML, JSON, CSV, XLSX, or a table for the terminal.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/heuler/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatYAML, FormatJSON, FormatCSV, FormatTable, FormatXLSX}

// DateLayout is how intake dates are rendered.
const DateLayout = "2006-01-02"

// Headers are the column names of tabular output.
var Headers = []string{"location", "intake_date", "species", "current_status"}

// ParseFormat returns the Format named by s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Entry is one dataset row as written to YAML and JSON.
type Entry struct {
	Location      string `json:"location" yaml:"location"`
	IntakeDate    string `json:"intake_date" yaml:"intake_date"`
	Species       string `json:"species" yaml:"species"`
	CurrentStatus string `json:"current_status" yaml:"current_status"`
}

// Document is the YAML and JSON envelope: metadata followed by the rows.
type Document struct {
	Modified  string  `json:"modified" yaml:"modified"`
	PageCount int     `json:"page_count" yaml:"page_count"`
	Source    string  `json:"source,omitempty" yaml:"source,omitempty"`
	Records   []Entry `json:"records" yaml:"records"`
}

// NewDocument builds the export envelope for a dataset.
func NewDocument(ds types.ReportDataset, meta types.ReportMetadata) Document {
	doc := Document{
		Modified:  meta.Modified.Format(time.RFC3339),
		PageCount: meta.PageCount,
		Source:    meta.Source,
		Records:   make([]Entry, len(ds)),
	}
	for i, r := range ds {
		doc.Records[i] = Entry{
			Location:      r.Location,
			IntakeDate:    r.IntakeDate.Format(DateLayout),
			Species:       r.Species,
			CurrentStatus: r.CurrentStatus,
		}
	}
	return doc
}

// Write renders ds and meta to w in the given format.
func Write(w io.Writer, format Format, ds types.ReportDataset, meta types.ReportMetadata) error {
	switch format {
	case FormatYAML:
		return writeYAML(w, NewDocument(ds, meta))
	case FormatJSON:
		return writeJSON(w, NewDocument(ds, meta))
	case FormatCSV:
		return writeCSV(w, ds)
	case FormatTable:
		return writeTable(w, ds, meta)
	case FormatXLSX:
		return writeXLSX(w, ds, meta)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteFile writes the dataset to path, replacing any existing file.
func WriteFile(path string, format Format, ds types.ReportDataset, meta types.ReportMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, format, ds, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, ds types.ReportDataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range ds {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r types.ReportRecord) []string {
	return []string{r.Location, r.IntakeDate.Format(DateLayout), r.Species, r.CurrentStatus}
}
