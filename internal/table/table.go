// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table recovers rows of cells from positioned page text. It works
// the way stream-mode table readers do: text inside a page region is grouped
// into rows by baseline, and columns are the horizontal bands that the
// row cells occupy.
package table

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/heuler/internal/pdfdoc"
	"github.com/pdiddy/heuler/pkg/types"
)

// Rect is a rectangle in PDF user space (origin bottom-left).
type Rect struct {
	Left, Bottom, Right, Top float64
}

// Contains reports whether (x, y) lies in r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Bottom && y <= r.Top
}

// RegionRect converts a percentage region (top-left origin) into user space
// for a page of the given size.
func RegionRect(reg types.Region, pageW, pageH float64) Rect {
	return Rect{
		Left:   pageW * reg.Left / 100,
		Right:  pageW * reg.Right / 100,
		Top:    pageH * (1 - reg.Top/100),
		Bottom: pageH * (1 - reg.Bottom/100),
	}
}

// cell is merged text on one row with its horizontal extent.
type cell struct {
	text   string
	x0, x1 float64
}

type row struct {
	y     float64
	size  float64
	frags []pdfdoc.Fragment
}

// Extract returns the rows found inside region on each page, in page order.
// Every returned row has exactly columns cells. A page whose text forms a
// different number of columns is an error.
func Extract(pages []pdfdoc.Page, region types.Region, columns int) ([][]string, error) {
	var out [][]string
	for _, p := range pages {
		rows, err := extractPage(p, region, columns)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func extractPage(p pdfdoc.Page, region types.Region, columns int) ([][]string, error) {
	rect := RegionRect(region, p.Width, p.Height)

	var frags []pdfdoc.Fragment
	for _, f := range p.Fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		if rect.Contains(f.X, f.Y) {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil, nil
	}

	rows := groupRows(frags)
	cells := make([][]cell, len(rows))
	for i, r := range rows {
		cells[i] = mergeCells(r.frags)
	}

	spans := columnSpans(cells)
	if len(spans) != columns {
		return nil, fmt.Errorf("found %d columns, want %d", len(spans), columns)
	}

	out := make([][]string, 0, len(cells))
	for _, rc := range cells {
		vals := make([]string, columns)
		for _, c := range rc {
			i := spanIndex(spans, c)
			if vals[i] != "" {
				vals[i] += " "
			}
			vals[i] += c.text
		}
		out = append(out, vals)
	}
	return out, nil
}

// groupRows clusters fragments top to bottom. A fragment joins the current
// row when its baseline is within half a font size of the row's baseline.
func groupRows(frags []pdfdoc.Fragment) []row {
	sorted := append([]pdfdoc.Fragment(nil), frags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []row
	for _, f := range sorted {
		if n := len(rows); n > 0 {
			r := &rows[n-1]
			tol := 0.5 * math.Max(r.size, f.FontSize)
			if math.Abs(r.y-f.Y) <= tol {
				r.frags = append(r.frags, f)
				r.size = math.Max(r.size, f.FontSize)
				continue
			}
		}
		rows = append(rows, row{y: f.Y, size: f.FontSize, frags: []pdfdoc.Fragment{f}})
	}
	return rows
}

// mergeCells joins fragments of one row, left to right, whenever the gap
// between them is narrower than one em.
func mergeCells(frags []pdfdoc.Fragment) []cell {
	sorted := append([]pdfdoc.Fragment(nil), frags...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []cell
	for _, f := range sorted {
		text := normalize(f.Text)
		if n := len(cells); n > 0 {
			c := &cells[n-1]
			if f.X-c.x1 < f.FontSize {
				c.text += " " + text
				c.x1 = math.Max(c.x1, f.X+f.Width)
				continue
			}
		}
		cells = append(cells, cell{text: text, x0: f.X, x1: f.X + f.Width})
	}
	return cells
}

// columnSpans projects every cell onto the x axis and returns the union of
// the overlapping extents, left to right.
func columnSpans(rows [][]cell) [][2]float64 {
	var ivs [][2]float64
	for _, r := range rows {
		for _, c := range r {
			ivs = append(ivs, [2]float64{c.x0, c.x1})
		}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i][0] < ivs[j][0] })

	var spans [][2]float64
	for _, iv := range ivs {
		if n := len(spans); n > 0 && iv[0] <= spans[n-1][1] {
			spans[n-1][1] = math.Max(spans[n-1][1], iv[1])
			continue
		}
		spans = append(spans, iv)
	}
	return spans
}

func spanIndex(spans [][2]float64, c cell) int {
	for i, s := range spans {
		if c.x0 >= s[0] && c.x0 <= s[1] {
			return i
		}
	}
	return len(spans) - 1
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
