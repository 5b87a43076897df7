// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resourceSet resolves the names a content stream uses.
type resourceSet interface {
	// font returns the font for a /Font resource name. Unknown names yield
	// the default font.
	font(name string) *font
	// form returns the Form XObject for an /XObject resource name.
	form(name string) (*form, bool)
}

// form is a decoded Form XObject.
type form struct {
	content []byte
	matrix  matrix
	res     resourceSet
}

// noResources serves content interpreted without a page.
type noResources struct{}

func (noResources) font(string) *font         { return defaultFont }
func (noResources) form(string) (*form, bool) { return nil, false }

// resources resolves names against one PDF resource dictionary.
type resources struct {
	doc  *Document
	dict types.Dict
}

func (r *resources) entry(category, name string) types.Object {
	if r.dict == nil {
		return nil
	}
	sub, err := r.doc.ctx.DereferenceDict(r.dict[category])
	if err != nil || sub == nil {
		return nil
	}
	return sub[name]
}

func (r *resources) font(name string) *font {
	obj := r.entry("Font", name)
	if obj == nil {
		return defaultFont
	}
	ref, isRef := obj.(types.IndirectRef)
	if isRef {
		if f, ok := r.doc.fonts[ref.ObjectNumber.Value()]; ok {
			return f
		}
	}
	f, err := r.doc.loadFont(obj)
	if err != nil {
		f = defaultFont
	}
	if isRef {
		r.doc.fonts[ref.ObjectNumber.Value()] = f
	}
	return f
}

func (r *resources) form(name string) (*form, bool) {
	obj := r.entry("XObject", name)
	if obj == nil {
		return nil, false
	}
	sd, err := r.doc.stream(obj)
	if err != nil || sd == nil {
		return nil, false
	}
	if st := sd.Dict.NameEntry("Subtype"); st == nil || *st != "Form" {
		return nil, false
	}

	f := &form{content: sd.Content, matrix: identity, res: r}
	if m, err := r.doc.numbers(sd.Dict["Matrix"]); err == nil && len(m) == 6 {
		f.matrix = matrix{m[0], m[1], m[2], m[3], m[4], m[5]}
	}
	if obj, ok := sd.Dict["Resources"]; ok {
		if d, err := r.doc.ctx.DereferenceDict(obj); err == nil && d != nil {
			f.res = &resources{doc: r.doc, dict: d}
		}
	}
	return f, true
}

// stream dereferences obj to a stream dictionary and decodes its content.
func (d *Document) stream(obj types.Object) (*types.StreamDict, error) {
	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}
	var sd types.StreamDict
	switch v := o.(type) {
	case types.StreamDict:
		sd = v
	case *types.StreamDict:
		sd = *v
	default:
		return nil, fmt.Errorf("%T is not a stream", o)
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("decoding stream: %w", err)
		}
	}
	if sd.Content == nil {
		sd.Content = sd.Raw
	}
	return &sd, nil
}

// number dereferences obj to an integer or real.
func (d *Document) number(obj types.Object) (float64, bool) {
	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}

// numbers dereferences obj to an array of numbers.
func (d *Document) numbers(obj types.Object) ([]float64, error) {
	if obj == nil {
		return nil, fmt.Errorf("missing array")
	}
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(arr))
	for _, el := range arr {
		v, ok := d.number(el)
		if !ok {
			return nil, fmt.Errorf("array element %v is not a number", el)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Document) name(obj types.Object) string {
	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	if n, ok := o.(types.Name); ok {
		return n.Value()
	}
	return ""
}

// loadFont builds a font from a font dictionary.
func (d *Document) loadFont(obj types.Object) (*font, error) {
	fd, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, err
	}
	if fd == nil {
		return nil, fmt.Errorf("font is not a dictionary")
	}

	f := &font{codeLen: 1, scale: 1}
	if tu, ok := fd["ToUnicode"]; ok {
		if sd, err := d.stream(tu); err == nil {
			if cm, err := parseCMap(sd.Content); err == nil {
				f.toUnicode = cm
			}
		}
	}

	if d.name(fd["Subtype"]) == "Type0" {
		f.codeLen = 2
		if f.toUnicode != nil && f.toUnicode.codeLen == 1 && d.name(fd["Encoding"]) != "Identity-H" {
			f.codeLen = 1
		}
		d.loadCIDWidths(f, fd)
		return f, nil
	}

	f.core = coreName(d.name(fd["BaseFont"]))
	d.loadEncoding(f, fd["Encoding"])
	if fc, ok := d.number(fd["FirstChar"]); ok {
		f.firstChar = int(fc)
	}
	if ws, err := d.numbers(fd["Widths"]); err == nil {
		f.widths = ws
	}
	if desc, err := d.ctx.DereferenceDict(fd["FontDescriptor"]); err == nil && desc != nil {
		if mw, ok := d.number(desc["MissingWidth"]); ok {
			f.missingWidth = mw
		}
	}
	if d.name(fd["Subtype"]) == "Type3" {
		if m, err := d.numbers(fd["FontMatrix"]); err == nil && len(m) == 6 {
			f.scale = m[0] * 1000
		}
	}
	return f, nil
}

// loadEncoding sets a simple font's code table from /Encoding: a base
// encoding name, or a dictionary with /BaseEncoding and /Differences.
func (d *Document) loadEncoding(f *font, obj types.Object) {
	f.encoding = winAnsi
	if obj == nil {
		return
	}
	if n := d.name(obj); n != "" {
		f.encoding = baseEncoding(n)
		return
	}
	enc, err := d.ctx.DereferenceDict(obj)
	if err != nil || enc == nil {
		return
	}
	base := *baseEncoding(d.name(enc["BaseEncoding"]))
	diffs, err := d.ctx.DereferenceArray(enc["Differences"])
	if err == nil {
		code := 0
		for _, el := range diffs {
			if v, ok := d.number(el); ok {
				code = int(v)
				continue
			}
			if n := d.name(el); n != "" {
				if code >= 0 && code < 256 {
					base[code] = glyphRune(n)
				}
				code++
			}
		}
	}
	f.encoding = &base
}

// loadCIDWidths reads /W and /DW from a Type0 font's descendant CIDFont.
func (d *Document) loadCIDWidths(f *font, fd types.Dict) {
	f.defaultWidth = 1000
	kids, err := d.ctx.DereferenceArray(fd["DescendantFonts"])
	if err != nil || len(kids) == 0 {
		return
	}
	cid, err := d.ctx.DereferenceDict(kids[0])
	if err != nil || cid == nil {
		return
	}
	if dw, ok := d.number(cid["DW"]); ok {
		f.defaultWidth = dw
	}
	w, err := d.ctx.DereferenceArray(cid["W"])
	if err != nil {
		return
	}
	f.cidWidths = make(map[uint32]float64)
	for i := 0; i < len(w); {
		first, ok := d.number(w[i])
		if !ok || i+1 >= len(w) {
			return
		}
		if list, err := d.numbers(w[i+1]); err == nil {
			for j, v := range list {
				f.cidWidths[uint32(first)+uint32(j)] = v
			}
			i += 2
			continue
		}
		last, ok := d.number(w[i+1])
		if !ok || i+2 >= len(w) {
			return
		}
		v, _ := d.number(w[i+2])
		for c := uint32(first); c <= uint32(last) && c-uint32(first) < 0x10000; c++ {
			f.cidWidths[c] = v
		}
		i += 3
	}
}
