package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default in place.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests (e.g. "heuler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Default listing settings for the Seehundstation Friedrichskoog season page.
const (
	DefaultListingURL = "https://www.seehundstation-friedrichskoog.de/aktuelle-saison/"
	DefaultPathMarker = "/wp-content/heuler/"
	DefaultExtension  = ".pdf"
	DefaultUserAgent  = "heuler/0.1"
)

// DiscoveryConfig holds settings for finding the current report link.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ListingURL is the page whose anchors are scanned.
	ListingURL string `json:"listing_url" yaml:"listing_url" mapstructure:"listing_url"`

	// PathMarker must appear somewhere in a matching href.
	PathMarker string `json:"path_marker" yaml:"path_marker" mapstructure:"path_marker"`

	// Extension must be the exact, case-sensitive suffix of a matching href.
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`
}

// DefaultDiscoveryConfig returns the settings for the published report page.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		HTTPConfig: HTTPConfig{UserAgent: DefaultUserAgent},
		ListingURL: DefaultListingURL,
		PathMarker: DefaultPathMarker,
		Extension:  DefaultExtension,
	}
}

// Region is a page-relative rectangle in percent, measured from the top-left
// corner: Top and Bottom are fractions of the page height, Left and Right of
// the page width.
type Region struct {
	Top    float64 `json:"top" yaml:"top" mapstructure:"top"`
	Left   float64 `json:"left" yaml:"left" mapstructure:"left"`
	Bottom float64 `json:"bottom" yaml:"bottom" mapstructure:"bottom"`
	Right  float64 `json:"right" yaml:"right" mapstructure:"right"`
}

// RegionFromSlice builds a Region from a [top, left, bottom, right] list.
// It returns false when the list does not have four entries.
func RegionFromSlice(v []float64) (Region, bool) {
	if len(v) != 4 {
		return Region{}, false
	}
	return Region{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, true
}

// ReportColumns is the number of columns in the report table.
const ReportColumns = 4

// DefaultDateLayout is the intake date format (DD.MM.YYYY).
const DefaultDateLayout = "02.01.2006"

// ExtractionConfig holds settings for reading the report PDF.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// FirstPageRegion bounds the table on page 1, below the title block.
	FirstPageRegion Region `json:"first_page_region" yaml:"first_page_region" mapstructure:"first_page_region"`

	// RestPagesRegion bounds the table on pages 2 through N.
	RestPagesRegion Region `json:"rest_pages_region" yaml:"rest_pages_region" mapstructure:"rest_pages_region"`

	// DateLayout is the Go time layout of the intake date column.
	DateLayout string `json:"date_layout" yaml:"date_layout" mapstructure:"date_layout"`
}

// DefaultExtractionConfig returns the regions and date layout of the published report.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		HTTPConfig:      HTTPConfig{UserAgent: DefaultUserAgent},
		FirstPageRegion: Region{Top: 10, Left: 0, Bottom: 95, Right: 100},
		RestPagesRegion: Region{Top: 5, Left: 0, Bottom: 95, Right: 100},
		DateLayout:      DefaultDateLayout,
	}
}

// AcquisitionConfig holds settings for saving the report PDF locally.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ReportsDir is the directory downloaded reports are written to.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery   DiscoveryConfig   `json:"discovery" yaml:"discovery" mapstructure:"discovery"`
	Extraction  ExtractionConfig  `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
}
