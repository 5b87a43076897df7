// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/heuler/pkg/types"
)

// Sheet names in the XLSX workbook.
const (
	DataSheet     = "Heuler"
	MetadataSheet = "Metadata"
)

const xlsxDateFormat = "yyyy-mm-dd"

func writeXLSX(w io.Writer, ds types.ReportDataset, meta types.ReportMetadata) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for i, h := range Headers {
		if err := setCell(f, DataSheet, i+1, 1, h); err != nil {
			return err
		}
	}

	numFmt := xlsxDateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	for i, r := range ds {
		rowNum := i + 2
		values := []any{r.Location, r.IntakeDate, r.Species, r.CurrentStatus}
		for col, v := range values {
			if err := setCell(f, DataSheet, col+1, rowNum, v); err != nil {
				return err
			}
		}
		cell, err := excelize.CoordinatesToCellName(2, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellStyle(DataSheet, cell, cell, dateStyle); err != nil {
			return fmt.Errorf("styling %s: %w", cell, err)
		}
	}

	if _, err := f.NewSheet(MetadataSheet); err != nil {
		return fmt.Errorf("creating metadata sheet: %w", err)
	}
	metaRows := [][2]any{
		{"modified", meta.Modified.Format(time.RFC3339)},
		{"page_count", meta.PageCount},
		{"source", meta.Source},
		{"rows", len(ds)},
	}
	for i, kv := range metaRows {
		if err := setCell(f, MetadataSheet, 1, i+1, kv[0]); err != nil {
			return err
		}
		if err := setCell(f, MetadataSheet, 2, i+1, kv[1]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
	}
	return nil
}
