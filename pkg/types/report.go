// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"net/url"
	"time"
)

// ReportLink is an absolute URL identifying a candidate report PDF.
type ReportLink string

// String returns the link as a plain string.
func (l ReportLink) String() string { return string(l) }

// ReportRecord is one row of the rescued seal pup table.
type ReportRecord struct {
	// Location is where the animal was found (Fundort).
	Location string `json:"location" yaml:"location"`

	// IntakeDate is the day the animal was admitted (Einlieferungsdatum).
	// Always a calendar date at UTC midnight.
	IntakeDate time.Time `json:"intake_date" yaml:"intake_date"`

	// Species is the animal's species (Tierart).
	Species string `json:"species" yaml:"species"`

	// CurrentStatus is the animal's current state (Aktuell).
	CurrentStatus string `json:"current_status" yaml:"current_status"`
}

// ReportDataset is the extracted table in document page order. Page
// boundaries are not represented; the index of a record is its row number.
type ReportDataset []ReportRecord

// ReportMetadata describes the PDF a dataset was extracted from.
type ReportMetadata struct {
	// Modified is the document-info modification date.
	Modified time.Time `json:"modified" yaml:"modified"`

	// PageCount is the number of pages in the document.
	PageCount int `json:"page_count" yaml:"page_count"`

	// Source is the URL or local path the document was read from.
	Source string `json:"source" yaml:"source"`
}

// Source selects where the extractor reads the report from. Exactly one
// of URL and Path is expected to be set; a zero Source means no report
// has been discovered or supplied yet.
type Source struct {
	URL  ReportLink `json:"url,omitempty" yaml:"url,omitempty"`
	Path string     `json:"path,omitempty" yaml:"path,omitempty"`
}

// SourceFromLink returns a Source reading from a discovered link.
func SourceFromLink(link ReportLink) Source { return Source{URL: link} }

// SourceFromPath returns a Source reading from a local file.
func SourceFromPath(path string) Source { return Source{Path: path} }

// IsZero reports whether neither a link nor a path is set.
func (s Source) IsZero() bool { return s.URL == "" && s.Path == "" }

// String returns the path if set, otherwise the URL.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return string(s.URL)
}

// ValidLink reports whether link is an absolute http(s) URL with a host.
func ValidLink(link ReportLink) bool {
	u, err := url.Parse(string(link))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
