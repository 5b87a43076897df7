// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, valid PDF files for tests: one font in a
// choice of encodings, an optional info dictionary, and text placed at
// absolute positions, optionally wrapped in a Form XObject.
package pdftest

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	corefont "github.com/pdfcpu/pdfcpu/pkg/font"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// A4 page size in points.
const (
	PageWidth  = 595.0
	PageHeight = 842.0
)

// Column x positions used by Row.
var ColumnX = []float64{40, 220, 330, 430}

// Text is a string drawn with its baseline origin at (X, Y).
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Page is the text drawn on one page.
type Page []Text

// FontKind selects how the document's font is declared and how text is
// encoded in content streams.
type FontKind int

const (
	// FontStandard is Helvetica with WinAnsiEncoding and no /Widths, so
	// readers fall back to the standard 14 font metrics.
	FontStandard FontKind = iota
	// FontDifferences is a Helvetica subset with /Widths and an /Encoding
	// whose /Differences move German letters and the euro sign to codes 1-8.
	FontDifferences
	// FontType0 is a Type0 font with Identity-H encoding: two-byte glyph
	// ids, /W widths on the descendant CIDFont, and a /ToUnicode CMap.
	FontType0
)

// Doc describes a PDF to build.
type Doc struct {
	// ModDate is written verbatim into the info dictionary. Empty omits the entry.
	ModDate string
	// NoInfo omits the info dictionary entirely.
	NoInfo bool
	Font   FontKind
	// Form draws each page's text inside a Form XObject that the page
	// content invokes with Do.
	Form  bool
	Pages []Page
}

// Row places one table row at baseline y, one cell per ColumnX entry.
func Row(y float64, cells ...string) []Text {
	out := make([]Text, 0, len(cells))
	for i, c := range cells {
		x := ColumnX[len(ColumnX)-1] + float64(i-len(ColumnX)+1)*100
		if i < len(ColumnX) {
			x = ColumnX[i]
		}
		out = append(out, Text{X: x, Y: y, Size: 10, S: c})
	}
	return out
}

// Table builds a page from rows starting at baseline top and stepping down
// 14 points per row.
func Table(top float64, rows ...[]string) Page {
	var p Page
	for i, r := range rows {
		p = append(p, Row(top-float64(i)*14, r...)...)
	}
	return p
}

// Title returns a large heading line at baseline y.
func Title(y float64, s string) Text {
	return Text{X: 40, Y: y, Size: 18, S: s}
}

// Bytes renders the document.
func (d Doc) Bytes() []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	const (
		catalogID = 1
		pagesID   = 2
		fontID    = 3
		infoID    = 4
		firstPage = 5
	)
	nPages := len(d.Pages)
	next := firstPage + 2*nPages
	alloc := func() int {
		next++
		return next - 1
	}

	kids := make([]string, nPages)
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}

	enc := newEncoder(d.Font, d.Pages)
	w.object(catalogID, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesID))
	w.object(pagesID, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), nPages))
	switch d.Font {
	case FontType0:
		cidID, cmapID := alloc(), alloc()
		w.object(fontID, fmt.Sprintf(
			"<< /Type /Font /Subtype /Type0 /BaseFont /ABCDEF+ArialMT /Encoding /Identity-H /DescendantFonts [%d 0 R] /ToUnicode %d 0 R >>",
			cidID, cmapID))
		w.object(cidID, fmt.Sprintf(
			"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /ABCDEF+ArialMT /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /DW 1000 /W [1 [%s]] >>",
			enc.widthList(enc.runes)))
		w.stream(cmapID, "", enc.toUnicode())
	case FontDifferences:
		w.object(fontID, fmt.Sprintf(
			"<< /Type /Font /Subtype /TrueType /BaseFont /ABCDEF+ArialMT /FirstChar 1 /LastChar 255 /Widths [%s] /Encoding << /Type /Encoding /BaseEncoding /WinAnsiEncoding /Differences [1 %s] >> >>",
			enc.widthList(enc.simpleRunes()), "/"+strings.Join(differenceNames, " /")))
	default:
		w.object(fontID, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	}
	if d.ModDate != "" {
		w.object(infoID, fmt.Sprintf("<< /Producer (heuler pdftest) /ModDate (%s) >>", d.ModDate))
	} else {
		w.object(infoID, "<< /Producer (heuler pdftest) >>")
	}

	fontRes := fmt.Sprintf("<< /Font << /F1 %d 0 R >> >>", fontID)
	for i, p := range d.Pages {
		pageID := firstPage + 2*i
		contentID := pageID + 1
		content := p.content(enc)
		resources := fontRes
		if d.Form {
			formID := alloc()
			w.stream(formID, fmt.Sprintf(
				"/Type /XObject /Subtype /Form /BBox [0 0 %g %g] /Matrix [1 0 0 1 0 0] /Resources %s",
				PageWidth, PageHeight, fontRes), content)
			resources = fmt.Sprintf("<< /XObject << /X1 %d 0 R >> >>", formID)
			content = "q 1 0 0 1 0 0 cm /X1 Do Q\n"
		}
		w.object(pageID, fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %g %g] /Resources %s /Contents %d 0 R >>",
			pagesID, PageWidth, PageHeight, resources, contentID))
		w.stream(contentID, "", content)
	}

	size := next
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for id := 1; id < size; id++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[id])
	}
	trailer := fmt.Sprintf("<< /Size %d /Root %d 0 R", size, catalogID)
	if !d.NoInfo {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoID)
	}
	trailer += " >>"
	fmt.Fprintf(&w.buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return w.buf.Bytes()
}

func (p Page) content(enc *encoder) string {
	var b strings.Builder
	for _, t := range p {
		size := t.Size
		if size == 0 {
			size = 10
		}
		fmt.Fprintf(&b, "BT /F1 %g Tf 1 0 0 1 %g %g Tm %s Tj ET\n", size, t.X, t.Y, enc.operand(t.S))
	}
	return b.String()
}

// differenceNames are the glyphs FontDifferences places at codes 1-8.
var differenceNames = []string{
	"udieresis", "adieresis", "odieresis", "germandbls",
	"Udieresis", "Adieresis", "Odieresis", "Euro",
}

var differenceRunes = []rune("üäößÜÄÖ€")

// encoder writes text as string operands for one FontKind.
type encoder struct {
	kind FontKind
	// runes lists every rune the document draws; with FontType0 the glyph
	// id of runes[i] is i+1.
	runes []rune
	cids  map[rune]int
}

func newEncoder(kind FontKind, pages []Page) *encoder {
	e := &encoder{kind: kind, cids: make(map[rune]int)}
	seen := make(map[rune]bool)
	for _, p := range pages {
		for _, t := range p {
			for _, r := range t.S {
				seen[r] = true
			}
		}
	}
	for r := range seen {
		e.runes = append(e.runes, r)
	}
	slices.Sort(e.runes)
	for i, r := range e.runes {
		e.cids[r] = i + 1
	}
	return e
}

func (e *encoder) operand(s string) string {
	switch e.kind {
	case FontType0:
		var b strings.Builder
		b.WriteByte('<')
		for _, r := range s {
			fmt.Fprintf(&b, "%04X", e.cids[r])
		}
		b.WriteByte('>')
		return b.String()
	case FontDifferences:
		var raw []byte
		for _, r := range s {
			if i := slices.Index(differenceRunes, r); i >= 0 {
				raw = append(raw, byte(i+1))
				continue
			}
			c, ok := charmap.Windows1252.EncodeRune(r)
			if !ok {
				c = '?'
			}
			raw = append(raw, c)
		}
		return "(" + escapeBytes(raw) + ")"
	default:
		return "(" + escape(s) + ")"
	}
}

// simpleRunes returns the rune drawn by each code 1-255 of FontDifferences.
func (e *encoder) simpleRunes() []rune {
	out := make([]rune, 255)
	for c := 1; c <= 255; c++ {
		out[c-1] = charmap.Windows1252.DecodeByte(byte(c))
	}
	copy(out, differenceRunes)
	return out
}

// widthList returns the Helvetica advance of each rune, in thousandths of
// an em, as PDF array elements.
func (e *encoder) widthList(runes []rune) string {
	ws := make([]string, len(runes))
	for i, r := range runes {
		ws[i] = fmt.Sprintf("%g", HelveticaWidth(r))
	}
	return strings.Join(ws, " ")
}

// toUnicode returns a CMap mapping each glyph id back to its rune.
func (e *encoder) toUnicode() string {
	var b strings.Builder
	b.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for start := 0; start < len(e.runes); start += 100 {
		chunk := e.runes[start:min(start+100, len(e.runes))]
		fmt.Fprintf(&b, "%d beginbfchar\n", len(chunk))
		for i, r := range chunk {
			fmt.Fprintf(&b, "<%04X> <%04X>\n", start+i+1, r)
		}
		b.WriteString("endbfchar\n")
	}
	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.String()
}

// HelveticaWidth returns the advance of r in Helvetica, in thousandths of
// an em. Accented letters take their base letter's width.
func HelveticaWidth(r rune) float64 {
	if d := []rune(norm.NFD.String(string(r))); len(d) > 0 && d[0] < 0x80 {
		r = d[0]
	}
	if r < 0x20 || r >= 0x80 {
		return 556
	}
	return corefont.TextWidth(string(r), "Helvetica", 1000)
}

// escape encodes s as Windows-1252 and escapes it for a literal string.
// Bytes outside ASCII are written as octal escapes.
func escape(s string) string {
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		raw = s
	}
	return escapeBytes([]byte(raw))
}

func escapeBytes(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		switch {
		case c == '(' || c == ')' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x80:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) object(id int, body string) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[id] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

// stream writes a stream object; dict holds extra entries besides /Length.
func (w *writer) stream(id int, dict, data string) {
	if dict != "" {
		dict += " "
	}
	w.object(id, fmt.Sprintf("<< %s/Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}
