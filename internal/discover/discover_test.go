// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/pkg/types"
)

const singleLinkHTML = `<html><body>
<a href="/kontakt/">Kontakt</a>
<a href="/wp-content/heuler/Heuler_2023.pdf">Aktuelle Heulerliste</a>
<a href="/wp-content/uploads/flyer.pdf">Flyer</a>
</body></html>`

const multiLinkHTML = `<html><body>
<a href="https://cdn.example.org/wp-content/heuler/Heuler_2023.pdf">2023</a>
<a>no href</a>
<a href="../wp-content/heuler/Heuler_2022.pdf">2022</a>
<a href="/wp-content/heuler/Heuler_2021.PDF">upper-case extension</a>
<a href="/wp-content/heuler/liste.pdf?download=1">query string</a>
<a href="/wp-content/heuler/Heuler_2020.pdf">2020</a>
</body></html>`

const noLinkHTML = `<html><body><a href="/wp-content/uploads/flyer.pdf">Flyer</a></body></html>`

func newListingServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aktuelle-saison/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	}))
}

func newObserved() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.FromZap(zap.New(core)), logs
}

func configFor(ts *httptest.Server) types.DiscoveryConfig {
	cfg := types.DefaultDiscoveryConfig()
	cfg.ListingURL = ts.URL + "/aktuelle-saison/"
	return cfg
}

func TestMatches(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"/wp-content/heuler/a.pdf", true},
		{"https://x.de/wp-content/heuler/sub/a.pdf", true},
		{"/wp-content/heuler/a.PDF", false},
		{"/wp-content/heuler/a.pdf?x=1", false},
		{"/wp-content/uploads/a.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.href, types.DefaultPathMarker, types.DefaultExtension))
		})
	}
}

func TestParse_ResolvesInDocumentOrder(t *testing.T) {
	base, err := url.Parse("https://www.seehundstation-friedrichskoog.de/aktuelle-saison/")
	require.NoError(t, err)

	links, err := Parse(base, strings.NewReader(multiLinkHTML), types.DefaultPathMarker, types.DefaultExtension)
	require.NoError(t, err)

	assert.Equal(t, []types.ReportLink{
		"https://cdn.example.org/wp-content/heuler/Heuler_2023.pdf",
		"https://www.seehundstation-friedrichskoog.de/wp-content/heuler/Heuler_2022.pdf",
		"https://www.seehundstation-friedrichskoog.de/wp-content/heuler/Heuler_2020.pdf",
	}, links)
}

func TestDiscover_SingleLink(t *testing.T) {
	ts := newListingServer(t, singleLinkHTML)
	defer ts.Close()
	log, logs := newObserved()

	links, err := New(ts.Client(), configFor(ts), log).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.ReportLink{types.ReportLink(ts.URL + "/wp-content/heuler/Heuler_2023.pdf")}, links)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestDiscover_MultipleLinksWarnsAndKeepsAll(t *testing.T) {
	ts := newListingServer(t, multiLinkHTML)
	defer ts.Close()
	log, logs := newObserved()

	links, err := New(ts.Client(), configFor(ts), log).Discover(context.Background())
	require.NoError(t, err)

	assert.Len(t, links, 3)
	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "multiple report links")
	assert.EqualValues(t, 3, warnings[0].ContextMap()["count"])
}

func TestDiscover_NoLink(t *testing.T) {
	ts := newListingServer(t, noLinkHTML)
	defer ts.Close()
	log, logs := newObserved()

	links, err := New(ts.Client(), configFor(ts), log).Discover(context.Background())
	require.Error(t, err)

	assert.Nil(t, links)
	assert.True(t, errors.Is(err, types.ErrNoLinkFound))
	assert.Equal(t, types.KindNoLinkFound, types.KindOf(err))
	assert.Equal(t, 1, logs.FilterMessage("no report link found").Len())
}

func TestDiscover_ListingNotFound(t *testing.T) {
	ts := newListingServer(t, singleLinkHTML)
	defer ts.Close()

	cfg := configFor(ts)
	cfg.ListingURL = ts.URL + "/moved/"
	_, err := New(ts.Client(), cfg, nil).Discover(context.Background())
	require.Error(t, err)

	assert.Equal(t, types.KindUnexpected, types.KindOf(err))
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestDiscover_InvalidListingURL(t *testing.T) {
	cfg := types.DefaultDiscoveryConfig()
	cfg.ListingURL = "www.example.org/no-scheme"

	_, err := New(nil, cfg, nil).Discover(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidSourceURL))
}
