// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLink(t *testing.T) {
	tests := []struct {
		link ReportLink
		want bool
	}{
		{"https://www.seehundstation-friedrichskoog.de/wp-content/heuler/Heuler_2023.pdf", true},
		{"http://example.org/a.pdf", true},
		{"www.seehundstation-friedrichskoog.de/wp-content/heuler/a.pdf", false},
		{"/wp-content/heuler/a.pdf", false},
		{"ftp://example.org/a.pdf", false},
		{"https:///a.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidLink(tt.link), "ValidLink(%q)", tt.link)
	}
}

func TestSource(t *testing.T) {
	assert.True(t, Source{}.IsZero())

	link := SourceFromLink("https://example.org/a.pdf")
	assert.False(t, link.IsZero())
	assert.Equal(t, "https://example.org/a.pdf", link.String())

	path := SourceFromPath("reports/a.pdf")
	assert.False(t, path.IsZero())
	assert.Equal(t, "reports/a.pdf", path.String())
}

func TestRegionFromSlice(t *testing.T) {
	r, ok := RegionFromSlice([]float64{10, 0, 95, 100})
	assert.True(t, ok)
	assert.Equal(t, DefaultExtractionConfig().FirstPageRegion, r)

	_, ok = RegionFromSlice([]float64{10, 0, 95})
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	kinds := []struct {
		kind     ErrorKind
		sentinel error
		name     string
	}{
		{KindUnexpected, ErrUnexpected, "unexpected"},
		{KindNoLinkFound, ErrNoLinkFound, "no_link_found"},
		{KindSourceNotFound, ErrSourceNotFound, "source_not_found"},
		{KindInvalidSourceURL, ErrInvalidSourceURL, "invalid_source_url"},
		{KindMissingLinkState, ErrMissingLinkState, "missing_link_state"},
		{KindMalformedDocument, ErrMalformedDocument, "malformed_document"},
		{KindTableParse, ErrTableParse, "table_parse"},
	}
	for _, k := range kinds {
		t.Run(k.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewError(k.kind, "op", nil))
			assert.Equal(t, k.name, k.kind.String())
			assert.ErrorIs(t, err, k.sentinel)
			assert.Equal(t, k.kind, KindOf(err))
			for _, other := range kinds {
				if other.kind != k.kind {
					assert.NotErrorIs(t, err, other.sentinel)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("open x.pdf: no such file")
	err := NewError(KindSourceNotFound, "extract", cause)
	assert.Equal(t, "extract: report source not found: open x.pdf: no such file", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "select: no report source discovered or supplied", NewError(KindMissingLinkState, "select", nil).Error())
	assert.Equal(t, "report table could not be parsed: row 3", Errorf(KindTableParse, "", "row %d", 3).Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnexpected, KindOf(nil))
}
