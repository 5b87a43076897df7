// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/heuler/internal/pdfdoc/pdftest"
	"github.com/pdiddy/heuler/pkg/types"
)

func reportPDF() []byte {
	page := pdftest.Page{pdftest.Title(810, "Heuler Saison 2023")}
	page = append(page, pdftest.Table(700,
		[]string{"Büsum", "15.01.2023", "Seehund", "in Pflege"},
		[]string{"Husum", "16.01.2023", "Kegelrobbe", "ausgewildert"},
	)...)
	return pdftest.Doc{ModDate: "D:20230115103000'+0100'", Pages: []pdftest.Page{page}}.Bytes()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	setDefaults()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultListingURL, cfg.Discovery.ListingURL)
	assert.Equal(t, types.DefaultExtractionConfig().FirstPageRegion, cfg.Extraction.FirstPageRegion)
	assert.Equal(t, types.DefaultExtractionConfig().RestPagesRegion, cfg.Extraction.RestPagesRegion)
	assert.Equal(t, types.DefaultUserAgent, cfg.Extraction.UserAgent)
	assert.Equal(t, "reports", cfg.Acquisition.ReportsDir)
}

func TestLoadConfigBadRegion(t *testing.T) {
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.Set("extraction.rest_pages_region", []float64{5, 0, 95})

	_, err := loadConfig()
	assert.ErrorContains(t, err, "extraction.rest_pages_region")
}

func TestExtractFileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Heuler_2023.pdf")
	require.NoError(t, os.WriteFile(path, reportPDF(), 0o644))

	out, err := execute(t, "extract", "--file", path, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "location,intake_date,species,current_status\n")
	assert.Contains(t, out, "Büsum,2023-01-15,Seehund,in Pflege\n")
	assert.Contains(t, out, "Husum,2023-01-16,Kegelrobbe,ausgewildert\n")
}

func TestRootPrintsTimestamp(t *testing.T) {
	pdf := reportPDF()
	mux := http.NewServeMux()
	mux.HandleFunc("/aktuelle-saison/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/wp-content/heuler/Heuler_2023.pdf">Heuler</a>`)
	})
	mux.HandleFunc("/wp-content/heuler/Heuler_2023.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdf)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	viper.Set("discovery.listing_url", ts.URL+"/aktuelle-saison/")
	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-15 10:30:00+01:00\n", out)
}
