// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/heuler/internal/pdfdoc/pdftest"
)

func openTestDoc(t *testing.T, d pdftest.Doc) *Document {
	t.Helper()
	doc, err := Open(bytes.NewReader(d.Bytes()))
	require.NoError(t, err)
	return doc
}

func TestOpenPageCount(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{
		ModDate: "D:20230115103000'+0100'",
		Pages:   []pdftest.Page{{pdftest.Title(800, "Heuler 2023")}, nil, nil},
	})
	assert.Equal(t, 3, doc.PageCount())
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("this is not a PDF")))
	assert.Error(t, err)
}

func TestModDate(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{
		ModDate: "D:20230115103000'+0100'",
		Pages:   []pdftest.Page{nil},
	})
	got, err := doc.ModDate()
	require.NoError(t, err)
	assert.Equal(t, "D:20230115103000'+0100'", got)
}

func TestModDateMissing(t *testing.T) {
	tests := []struct {
		name string
		doc  pdftest.Doc
	}{
		{"no entry", pdftest.Doc{Pages: []pdftest.Page{nil}}},
		{"no info dictionary", pdftest.Doc{NoInfo: true, Pages: []pdftest.Page{nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openTestDoc(t, tt.doc)
			_, err := doc.ModDate()
			assert.ErrorIs(t, err, ErrNoModDate)
		})
	}
}

func TestPage(t *testing.T) {
	page := pdftest.Table(700,
		[]string{"Büsum", "15.01.2023", "Seehund", "in Pflege"},
		[]string{"Friedrichskoog", "16.01.2023", "Kegelrobbe", "ausgewildert"},
	)
	page = append(page, pdftest.Title(800, "Heuler"))
	doc := openTestDoc(t, pdftest.Doc{ModDate: "D:20230115103000'+0100'", Pages: []pdftest.Page{page}})

	p, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
	assert.InDelta(t, pdftest.PageWidth, p.Width, 1e-6)
	assert.InDelta(t, pdftest.PageHeight, p.Height, 1e-6)
	require.Len(t, p.Fragments, 9)

	first := p.Fragments[0]
	assert.Equal(t, "Büsum", first.Text)
	assert.InDelta(t, 40, first.X, 1e-6)
	assert.InDelta(t, 700, first.Y, 1e-6)
	assert.InDelta(t, 10, first.FontSize, 1e-6)

	assert.Equal(t, "ausgewildert", p.Fragments[7].Text)
	assert.InDelta(t, 686, p.Fragments[7].Y, 1e-6)

	title := p.Fragments[8]
	assert.Equal(t, "Heuler", title.Text)
	assert.InDelta(t, 18, title.FontSize, 1e-6)
}

func TestPageFontsAndForms(t *testing.T) {
	page := pdftest.Table(700,
		[]string{"Büsum", "15.01.2023", "Seehund", "in Pflege"},
		[]string{"Friedrichskoog, Trischen, Kliff, Sylt", "16.01.2023", "Kegelrobbe", "Straße €"},
	)
	fonts := []struct {
		name string
		kind pdftest.FontKind
	}{
		{"standard", pdftest.FontStandard},
		{"differences", pdftest.FontDifferences},
		{"type0", pdftest.FontType0},
	}
	for _, f := range fonts {
		for _, form := range []bool{false, true} {
			name := f.name
			if form {
				name += " in form"
			}
			t.Run(name, func(t *testing.T) {
				doc := openTestDoc(t, pdftest.Doc{Font: f.kind, Form: form, Pages: []pdftest.Page{page}})
				p, err := doc.Page(1)
				require.NoError(t, err)
				require.Len(t, p.Fragments, 8)

				texts := make([]string, len(p.Fragments))
				for i, fr := range p.Fragments {
					texts[i] = fr.Text
				}
				assert.Equal(t, []string{
					"Büsum", "15.01.2023", "Seehund", "in Pflege",
					"Friedrichskoog, Trischen, Kliff, Sylt", "16.01.2023", "Kegelrobbe", "Straße €",
				}, texts)

				long := p.Fragments[4]
				assert.InDelta(t, 40, long.X, 1e-6)
				assert.InDelta(t, 686, long.Y, 1e-6)
				assert.InDelta(t, 153.93, long.Width, 1e-6)
				assert.InDelta(t, 40.03, p.Fragments[2].Width, 1e-6)
			})
		}
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc := openTestDoc(t, pdftest.Doc{ModDate: "D:20230115103000Z", Pages: []pdftest.Page{nil}})
	for _, n := range []int{0, 2} {
		_, err := doc.Page(n)
		assert.Error(t, err, "page %d", n)
	}
}

func TestTextString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "D:20230115103000Z", "D:20230115103000Z"},
		{"escaped", `D:2023\(x\)`, "D:2023(x)"},
		{"octal", `\104:2023`, "D:2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(unescapeLiteral(tt.in)))
		})
	}
}
