// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc reads the parts of a PDF the report extractor needs: the
// page count, the document-info modification date, and positioned text for
// each page. Document structure comes from pdfcpu; page text comes from
// interpreting the content stream's text operators with the page's fonts,
// including text drawn by Form XObjects.
package pdfdoc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// ErrNoModDate is returned when the info dictionary has no ModDate entry.
var ErrNoModDate = errors.New("document info has no ModDate")

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// Fragment is a run of text drawn at one position. X and Y are the baseline
// origin in default user space (origin bottom-left); Width is the sum of
// the glyph advances.
type Fragment struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
}

// Page is one page's size and text.
type Page struct {
	Number    int
	Width     float64
	Height    float64
	Fragments []Fragment
}

// Document is an opened PDF held in memory.
type Document struct {
	ctx  *model.Context
	dims []types.Dim
	// fonts caches fonts by object number; pages usually share them.
	fonts map[int]*font
}

// Open parses the PDF read from rs. The reader is fully consumed; the
// returned Document does not retain it beyond what pdfcpu buffers.
func Open(rs io.ReadSeeker) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("reading page sizes: %w", err)
	}
	if len(dims) != ctx.PageCount {
		return nil, fmt.Errorf("page tree lists %d pages but %d page boxes", ctx.PageCount, len(dims))
	}
	return &Document{ctx: ctx, dims: dims, fonts: make(map[int]*font)}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// ModDate returns the raw text of the info dictionary's ModDate entry,
// e.g. "D:20230115103000+01'00'".
func (d *Document) ModDate() (string, error) {
	if d.ctx.Info == nil {
		return "", fmt.Errorf("document has no info dictionary: %w", ErrNoModDate)
	}
	info, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil {
		return "", fmt.Errorf("reading info dictionary: %w", err)
	}
	if info == nil {
		return "", ErrNoModDate
	}
	obj, found := info.Find("ModDate")
	if !found || obj == nil {
		return "", ErrNoModDate
	}
	obj, err = d.ctx.Dereference(obj)
	if err != nil {
		return "", fmt.Errorf("resolving ModDate: %w", err)
	}
	return textString(obj)
}

// Page returns the size and positioned text of page n (1-based).
func (d *Document) Page(n int) (Page, error) {
	if n < 1 || n > d.ctx.PageCount {
		return Page{}, fmt.Errorf("page %d out of range 1-%d", n, d.ctx.PageCount)
	}
	p := Page{Number: n, Width: d.dims[n-1].Width, Height: d.dims[n-1].Height}

	r, err := pdfcpu.ExtractPageContent(d.ctx, n)
	if err != nil {
		return Page{}, fmt.Errorf("page %d content: %w", n, err)
	}
	if r == nil {
		return p, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("page %d content: %w", n, err)
	}

	res, err := d.pageResources(n)
	if err != nil {
		return Page{}, fmt.Errorf("page %d resources: %w", n, err)
	}
	p.Fragments, err = fragments(data, res)
	if err != nil {
		return Page{}, fmt.Errorf("page %d text: %w", n, err)
	}
	return p, nil
}

// pageResources returns the resource dictionary of page n, inherited from
// the page tree when the page has none of its own.
func (d *Document) pageResources(n int) (*resources, error) {
	pd, _, inh, err := d.ctx.PageDict(n, false)
	if err != nil {
		return nil, err
	}
	res := &resources{doc: d}
	if obj, ok := pd["Resources"]; ok {
		res.dict, err = d.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
	}
	if res.dict == nil && inh != nil {
		res.dict = inh.Resources
	}
	return res, nil
}

// textString decodes a PDF text string object: a literal or hex string in
// PDFDocEncoding or UTF-16BE with a byte order mark.
func textString(obj types.Object) (string, error) {
	var raw []byte
	switch v := obj.(type) {
	case types.StringLiteral:
		raw = unescapeLiteral(string(v))
	case types.HexLiteral:
		b, err := hex.DecodeString(string(v))
		if err != nil {
			return "", fmt.Errorf("decoding hex string: %w", err)
		}
		raw = b
	default:
		return "", fmt.Errorf("ModDate is a %T, not a string", obj)
	}

	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decoding UTF-16 string: %w", err)
		}
		return string(out), nil
	}
	return string(raw), nil
}

// unescapeLiteral resolves the backslash escapes pdfcpu leaves in literal
// strings.
func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 == len(s) {
			out = append(out, s[i])
			i++
			continue
		}
		b, n := unescape([]byte(s[i+1:]))
		out = append(out, b...)
		i += 1 + n
	}
	return out
}
