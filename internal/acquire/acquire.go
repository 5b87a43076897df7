// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire saves report PDFs to a local directory, next to a small
// YAML record of where each file came from, so later runs can extract from
// disk instead of the network.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/heuler/internal/httputil"
	"github.com/pdiddy/heuler/pkg/types"
)

const op = "acquire"

// DefaultReportsDir is used when AcquisitionConfig.ReportsDir is empty.
const DefaultReportsDir = "reports"

// now is replaced in tests.
var now = time.Now

// Record describes one downloaded report.
type Record struct {
	Link      types.ReportLink `yaml:"link"`
	Path      string           `yaml:"path"`
	FetchedAt time.Time        `yaml:"fetched_at"`
	Size      int64            `yaml:"size"`
}

// FileName returns the local file name for link: the last element of its
// URL path.
func FileName(link types.ReportLink) (string, error) {
	if !types.ValidLink(link) {
		return "", types.Errorf(types.KindInvalidSourceURL, op, "%q is not an absolute http(s) URL", link)
	}
	u, err := url.Parse(string(link))
	if err != nil {
		return "", types.NewError(types.KindInvalidSourceURL, op, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", types.Errorf(types.KindInvalidSourceURL, op, "%q has no file name", link)
	}
	return name, nil
}

// Download saves the report at link into cfg.ReportsDir. If the file
// already exists the download is skipped and the stored record, when
// present, is returned. Progress lines are written to w.
func Download(ctx context.Context, client *http.Client, link types.ReportLink, cfg types.AcquisitionConfig, w io.Writer) (rec Record, skipped bool, err error) {
	name, err := FileName(link)
	if err != nil {
		return Record{}, false, err
	}
	dir := cfg.ReportsDir
	if dir == "" {
		dir = DefaultReportsDir
	}
	pdfPath := filepath.Join(dir, name)
	metaPath := recordPath(pdfPath)

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		r, readErr := readRecord(metaPath)
		if readErr != nil {
			r = Record{Link: link, Path: pdfPath}
		}
		return r, true, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Record{}, false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", name)
	size, err := downloadFile(ctx, client, string(link), pdfPath, cfg.HTTPConfig)
	if err != nil {
		return Record{}, false, fmt.Errorf("downloading %s: %w", name, err)
	}

	rec = Record{Link: link, Path: pdfPath, FetchedAt: now().UTC(), Size: size}
	if err := writeRecord(rec, metaPath); err != nil {
		return Record{}, false, fmt.Errorf("writing record for %s: %w", name, err)
	}
	return rec, false, nil
}

// downloadFile writes the response body to a temp file in the destination
// directory and renames it into place, so a failed download never leaves
// a partial PDF behind.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.HTTPConfig) (int64, error) {
	body, err := httputil.Open(ctx, client, url, "application/pdf", cfg)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

func recordPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".yaml"
}

func writeRecord(rec Record, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
