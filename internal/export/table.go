// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pdiddy/heuler/pkg/types"
)

func writeTable(w io.Writer, ds types.ReportDataset, meta types.ReportMetadata) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, r := range ds {
		t.AppendRow(table.Row{r.Location, r.IntakeDate.Format(DateLayout), r.Species, r.CurrentStatus})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(ds)), "", "", "modified " + meta.Modified.Format("2006-01-02 15:04:05-07:00")})

	t.Render()
	return nil
}
