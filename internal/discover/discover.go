// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds the current report PDF on the listing page.
package discover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/heuler/internal/httputil"
	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/pkg/types"
)

const op = "discover"

// Discoverer fetches the listing page and collects report links.
type Discoverer struct {
	client *http.Client
	cfg    types.DiscoveryConfig
	log    logger.Logger
}

// New returns a Discoverer. Empty marker or extension settings fall back to
// the published report's defaults.
func New(client *http.Client, cfg types.DiscoveryConfig, log logger.Logger) *Discoverer {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.ListingURL == "" {
		cfg.ListingURL = types.DefaultListingURL
	}
	if cfg.PathMarker == "" {
		cfg.PathMarker = types.DefaultPathMarker
	}
	if cfg.Extension == "" {
		cfg.Extension = types.DefaultExtension
	}
	return &Discoverer{client: client, cfg: cfg, log: log.With(logger.String("stage", op))}
}

// Discover returns every matching link on the listing page in document
// order. No match is a KindNoLinkFound error. More than one match is
// logged as a warning and all matches are returned; choosing among them is
// the caller's job.
func (d *Discoverer) Discover(ctx context.Context) ([]types.ReportLink, error) {
	base, err := url.Parse(d.cfg.ListingURL)
	if err != nil || !types.ValidLink(types.ReportLink(d.cfg.ListingURL)) {
		if err == nil {
			err = fmt.Errorf("listing URL %q is not an absolute http(s) URL", d.cfg.ListingURL)
		}
		d.log.Error("invalid listing URL", logger.String("listing_url", d.cfg.ListingURL), logger.Error(err))
		return nil, types.NewError(types.KindInvalidSourceURL, op, err)
	}

	body, err := httputil.Open(ctx, d.client, d.cfg.ListingURL, "text/html", d.cfg.HTTPConfig)
	if err != nil {
		d.log.Error("fetching listing page failed", logger.String("listing_url", d.cfg.ListingURL), logger.Error(err))
		return nil, types.NewError(types.KindUnexpected, op, fmt.Errorf("fetching listing page: %w", err))
	}
	defer body.Close()

	links, err := Parse(base, body, d.cfg.PathMarker, d.cfg.Extension)
	if err != nil {
		d.log.Error("parsing listing page failed", logger.Error(err))
		return nil, types.NewError(types.KindUnexpected, op, err)
	}

	switch {
	case len(links) == 0:
		d.log.Error("no report link found",
			logger.String("listing_url", d.cfg.ListingURL),
			logger.String("path_marker", d.cfg.PathMarker))
		return nil, types.NewError(types.KindNoLinkFound, op, nil)
	case len(links) > 1:
		d.log.Warn("multiple report links found, make sure the intended report is selected",
			logger.Int("count", len(links)),
			logger.Strings("links", linkStrings(links)))
	default:
		d.log.Debug("report link found", logger.String("link", links[0].String()))
	}
	return links, nil
}

// Parse reads HTML from r and returns, in document order, the hrefs that
// contain marker and end with ext, resolved against base. Matching is case
// sensitive. Hrefs that cannot be resolved are skipped.
func Parse(base *url.URL, r io.Reader, marker, ext string) ([]types.ReportLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var links []types.ReportLink
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !Matches(href, marker, ext) {
			return
		}
		abs, err := base.Parse(href)
		if err != nil {
			return
		}
		links = append(links, types.ReportLink(abs.String()))
	})
	return links, nil
}

// Matches reports whether href contains marker and ends with ext.
func Matches(href, marker, ext string) bool {
	return strings.Contains(href, marker) && strings.HasSuffix(href, ext)
}

func linkStrings(links []types.ReportLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.String()
	}
	return out
}
