// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns the published rescue report PDF into a typed
// dataset, and composes discovery and extraction into one pipeline run.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/heuler/internal/httputil"
	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/internal/pdfdoc"
	"github.com/pdiddy/heuler/internal/table"
	"github.com/pdiddy/heuler/pkg/types"
)

const op = "extract"

// modDateLayouts are the accepted document-info date shapes after quote
// characters have been stripped.
var modDateLayouts = []string{
	"D:20060102150405-0700",
	"D:20060102150405Z",
}

// Document is the part of an opened PDF the extractor reads.
type Document interface {
	PageCount() int
	ModDate() (string, error)
	Page(n int) (pdfdoc.Page, error)
}

// openDocument parses PDF bytes. Tests replace it to feed fake documents.
var openDocument = func(rs io.ReadSeeker) (Document, error) {
	doc, err := pdfdoc.Open(rs)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Extractor reads a report PDF from a URL or a local path.
type Extractor struct {
	client *http.Client
	cfg    types.ExtractionConfig
	log    logger.Logger
}

// NewExtractor returns an Extractor. Zero regions and an empty date layout
// fall back to the published report's layout.
func NewExtractor(client *http.Client, cfg types.ExtractionConfig, log logger.Logger) *Extractor {
	def := types.DefaultExtractionConfig()
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.FirstPageRegion == (types.Region{}) {
		cfg.FirstPageRegion = def.FirstPageRegion
	}
	if cfg.RestPagesRegion == (types.Region{}) {
		cfg.RestPagesRegion = def.RestPagesRegion
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = def.DateLayout
	}
	return &Extractor{client: client, cfg: cfg, log: log.With(logger.String("stage", op))}
}

// Extract reads the report at src and returns its rows with the document's
// metadata. It either returns the complete dataset or an *types.Error
// whose Kind names the failure; no partial dataset is returned.
func (e *Extractor) Extract(ctx context.Context, src types.Source) (types.ReportDataset, types.ReportMetadata, error) {
	ds, meta, err := e.extract(ctx, src)
	if err != nil {
		e.log.Error("report extraction failed",
			logger.String("kind", types.KindOf(err).String()),
			logger.String("source", src.String()),
			logger.Error(err))
		return nil, types.ReportMetadata{}, err
	}
	e.log.Info("report extracted",
		logger.String("source", meta.Source),
		logger.Int("rows", len(ds)),
		logger.Int("pages", meta.PageCount),
		logger.Time("modified", meta.Modified))
	return ds, meta, nil
}

func (e *Extractor) extract(ctx context.Context, src types.Source) (types.ReportDataset, types.ReportMetadata, error) {
	data, err := e.load(ctx, src)
	if err != nil {
		return nil, types.ReportMetadata{}, err
	}

	doc, err := openDocument(bytes.NewReader(data))
	if err != nil {
		return nil, types.ReportMetadata{}, types.NewError(types.KindMalformedDocument, op, err)
	}
	meta, err := readMetadata(doc)
	if err != nil {
		return nil, types.ReportMetadata{}, err
	}
	meta.Source = src.String()

	pages := make([]pdfdoc.Page, meta.PageCount)
	for i := range pages {
		if pages[i], err = doc.Page(i + 1); err != nil {
			return nil, types.ReportMetadata{}, types.NewError(types.KindMalformedDocument, op, err)
		}
	}

	rows, err := e.rows(pages)
	if err != nil {
		return nil, types.ReportMetadata{}, err
	}
	ds, err := toDataset(rows, e.cfg.DateLayout)
	if err != nil {
		return nil, types.ReportMetadata{}, err
	}
	return ds, meta, nil
}

// load returns the PDF bytes. A local file is closed before this returns,
// so it is never held open while tables are parsed.
func (e *Extractor) load(ctx context.Context, src types.Source) ([]byte, error) {
	switch {
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, types.NewError(types.KindSourceNotFound, op, err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, types.NewError(types.KindSourceNotFound, op, fmt.Errorf("reading %s: %w", src.Path, err))
		}
		return data, nil

	case src.URL != "":
		if !types.ValidLink(src.URL) {
			return nil, types.Errorf(types.KindInvalidSourceURL, op, "%q is not an absolute http(s) URL", src.URL)
		}
		data, err := httputil.Get(ctx, e.client, string(src.URL), "application/pdf", e.cfg.HTTPConfig)
		if err != nil {
			return nil, types.NewError(types.KindUnexpected, op, fmt.Errorf("fetching report: %w", err))
		}
		return data, nil

	default:
		return nil, types.NewError(types.KindMissingLinkState, op, nil)
	}
}

func readMetadata(doc Document) (types.ReportMetadata, error) {
	n := doc.PageCount()
	if n < 1 {
		return types.ReportMetadata{}, types.Errorf(types.KindMalformedDocument, op, "document has no pages")
	}
	raw, err := doc.ModDate()
	if err != nil {
		return types.ReportMetadata{}, types.NewError(types.KindMalformedDocument, op, err)
	}
	mod, err := ParseModDate(raw)
	if err != nil {
		return types.ReportMetadata{}, types.NewError(types.KindMalformedDocument, op, err)
	}
	return types.ReportMetadata{Modified: mod, PageCount: n}, nil
}

// ParseModDate parses a document-info date such as "D:20230115103000+01'00'"
// after removing its quote characters.
func ParseModDate(raw string) (time.Time, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "'", "")
	for _, layout := range modDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("modification date %q does not match D:YYYYMMDDHHMMSS+HHMM", raw)
}

// rows runs the page 1 region and the pages 2..N region and concatenates
// the results.
func (e *Extractor) rows(pages []pdfdoc.Page) ([][]string, error) {
	first, err := table.Extract(pages[:1], e.cfg.FirstPageRegion, types.ReportColumns)
	if err != nil {
		return nil, types.NewError(types.KindTableParse, op, err)
	}
	if len(first) == 0 {
		return nil, types.Errorf(types.KindTableParse, op, "no table on page 1")
	}
	rest, err := table.Extract(pages[1:], e.cfg.RestPagesRegion, types.ReportColumns)
	if err != nil {
		return nil, types.NewError(types.KindTableParse, op, err)
	}
	return append(first, rest...), nil
}

// toDataset types the table rows. Every row must have four cells and a
// parseable intake date.
func toDataset(rows [][]string, layout string) (types.ReportDataset, error) {
	ds := make(types.ReportDataset, 0, len(rows))
	for i, r := range rows {
		if len(r) != types.ReportColumns {
			return nil, types.Errorf(types.KindTableParse, op, "row %d has %d cells, want %d", i, len(r), types.ReportColumns)
		}
		d, err := time.Parse(layout, strings.TrimSpace(r[1]))
		if err != nil {
			return nil, types.Errorf(types.KindTableParse, op, "row %d: intake date %q: %w", i, r[1], err)
		}
		ds = append(ds, types.ReportRecord{
			Location:      r[0],
			IntakeDate:    d,
			Species:       r[2],
			CurrentStatus: r[3],
		})
	}
	return ds, nil
}
