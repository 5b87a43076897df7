// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/pdiddy/heuler/internal/acquire"
	"github.com/pdiddy/heuler/internal/discover"
	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/internal/report"
	"github.com/pdiddy/heuler/pkg/types"
)

func setDefaults() {
	disc := types.DefaultDiscoveryConfig()
	ext := types.DefaultExtractionConfig()

	viper.SetDefault("discovery.listing_url", disc.ListingURL)
	viper.SetDefault("discovery.path_marker", disc.PathMarker)
	viper.SetDefault("discovery.extension", disc.Extension)
	viper.SetDefault("http.timeout", 0)
	viper.SetDefault("http.user_agent", types.DefaultUserAgent)
	viper.SetDefault("extraction.first_page_region", regionSlice(ext.FirstPageRegion))
	viper.SetDefault("extraction.rest_pages_region", regionSlice(ext.RestPagesRegion))
	viper.SetDefault("extraction.date_layout", ext.DateLayout)
	viper.SetDefault("acquisition.reports_dir", acquire.DefaultReportsDir)
	viper.SetDefault("log.level", logger.DefaultLevel)
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.output_paths", logger.DefaultOutputPaths)
}

func regionSlice(r types.Region) []float64 {
	return []float64{r.Top, r.Left, r.Bottom, r.Right}
}

// loadConfig reads the stage settings from viper.
func loadConfig() (types.PipelineConfig, error) {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	first, err := regionKey("extraction.first_page_region")
	if err != nil {
		return types.PipelineConfig{}, err
	}
	rest, err := regionKey("extraction.rest_pages_region")
	if err != nil {
		return types.PipelineConfig{}, err
	}

	return types.PipelineConfig{
		Discovery: types.DiscoveryConfig{
			HTTPConfig: httpCfg,
			ListingURL: viper.GetString("discovery.listing_url"),
			PathMarker: viper.GetString("discovery.path_marker"),
			Extension:  viper.GetString("discovery.extension"),
		},
		Extraction: types.ExtractionConfig{
			HTTPConfig:      httpCfg,
			FirstPageRegion: first,
			RestPagesRegion: rest,
			DateLayout:      viper.GetString("extraction.date_layout"),
		},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig: httpCfg,
			ReportsDir: viper.GetString("acquisition.reports_dir"),
		},
	}, nil
}

func regionKey(key string) (types.Region, error) {
	var v []float64
	if err := viper.UnmarshalKey(key, &v); err != nil {
		return types.Region{}, fmt.Errorf("reading %s: %w", key, err)
	}
	r, ok := types.RegionFromSlice(v)
	if !ok {
		return types.Region{}, fmt.Errorf("%s must be [top, left, bottom, right], got %v", key, v)
	}
	return r, nil
}

func logConfig() logger.Config {
	return logger.Config{
		Level:       viper.GetString("log.level"),
		Development: viper.GetBool("log.development"),
		OutputPaths: viper.GetStringSlice("log.output_paths"),
	}
}

func newClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

func newPipeline(cfg types.PipelineConfig, sel report.Selector) *report.Pipeline {
	return &report.Pipeline{
		Discoverer: discover.New(newClient(cfg.Discovery.HTTPConfig), cfg.Discovery, appLog),
		Extractor:  report.NewExtractor(newClient(cfg.Extraction.HTTPConfig), cfg.Extraction, appLog),
		Select:     sel,
		Log:        appLog,
	}
}
