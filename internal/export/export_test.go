// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/heuler/pkg/types"
)

func sample() (types.ReportDataset, types.ReportMetadata) {
	ds := types.ReportDataset{
		{Location: "Büsum", IntakeDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), Species: "Seehund", CurrentStatus: "in Pflege"},
		{Location: "Husum, Hafen", IntakeDate: time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC), Species: "Kegelrobbe", CurrentStatus: "ausgewildert"},
	}
	meta := types.ReportMetadata{
		Modified:  time.Date(2023, 1, 15, 10, 30, 0, 0, time.FixedZone("", 3600)),
		PageCount: 2,
		Source:    "https://example.org/wp-content/heuler/Heuler_2023.pdf",
	}
	return ds, meta
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorContains(t, err, "yaml, json, csv, table, xlsx")
}

func TestNewDocument(t *testing.T) {
	ds, meta := sample()
	doc := NewDocument(ds, meta)
	assert.Equal(t, "2023-01-15T10:30:00+01:00", doc.Modified)
	assert.Equal(t, 2, doc.PageCount)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, Entry{Location: "Büsum", IntakeDate: "2023-01-15", Species: "Seehund", CurrentStatus: "in Pflege"}, doc.Records[0])
}

func TestWriteYAML(t *testing.T) {
	ds, meta := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, ds, meta))

	assert.Contains(t, buf.String(), "species: Kegelrobbe")

	var got Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, NewDocument(ds, meta), got)
}

func TestWriteJSON(t *testing.T) {
	ds, meta := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, ds, meta))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2023-01-15T10:30:00+01:00", got["modified"])
	records, ok := got["records"].([]any)
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Equal(t, "Kegelrobbe", records[1].(map[string]any)["species"])
}

func TestWriteCSV(t *testing.T) {
	ds, meta := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, ds, meta))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		Headers,
		{"Büsum", "2023-01-15", "Seehund", "in Pflege"},
		{"Husum, Hafen", "2023-01-16", "Kegelrobbe", "ausgewildert"},
	}, rows)
}

func TestWriteTable(t *testing.T) {
	ds, meta := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, ds, meta))

	out := buf.String()
	assert.Contains(t, out, "Büsum")
	assert.Contains(t, out, "2023-01-16")
	assert.Contains(t, out, "2 ROWS")
}

func TestWriteXLSX(t *testing.T) {
	ds, meta := sample()
	path := filepath.Join(t.TempDir(), "heuler.xlsx")
	require.NoError(t, WriteFile(path, FormatXLSX, ds, meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "Büsum", rows[1][0])
	assert.Equal(t, "Kegelrobbe", rows[2][2])

	pages, err := f.GetCellValue(MetadataSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", pages)
	source, err := f.GetCellValue(MetadataSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, meta.Source, source)
}

func TestWriteUnknownFormat(t *testing.T) {
	ds, meta := sample()
	err := Write(&bytes.Buffer{}, Format("pdf"), ds, meta)
	assert.Error(t, err)
}

func TestWriteFileCreateError(t *testing.T) {
	ds, meta := sample()
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), FormatCSV, ds, meta)
	assert.Error(t, err)
}
