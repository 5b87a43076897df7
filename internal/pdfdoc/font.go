// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"strconv"
	"strings"
	"unicode/utf8"

	corefont "github.com/pdfcpu/pdfcpu/pkg/font"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// fallbackWidth is the advance, in thousandths of an em, used when a font
// gives no width for a code and is not one of the standard 14.
const fallbackWidth = 500

// font turns the bytes of a shown string into text and glyph advances.
type font struct {
	// codeLen is the number of bytes per character code: 1 for simple
	// fonts, 2 for Type0 fonts with an Identity or UCS-2 CMap.
	codeLen int
	// toUnicode comes from the font's /ToUnicode CMap.
	toUnicode *cmap
	// encoding maps single-byte codes of a simple font to runes.
	encoding *[256]rune

	firstChar    int
	widths       []float64
	missingWidth float64
	// cidWidths and defaultWidth come from a CIDFont's /W and /DW.
	cidWidths    map[uint32]float64
	defaultWidth float64
	// scale converts widths to thousandths of an em; Type3 fonts set it
	// from /FontMatrix.
	scale float64
	// core names a standard 14 font whose metrics stand in when the font
	// dictionary carries no widths.
	core string
}

// glyph is one decoded character code.
type glyph struct {
	text string
	// width is the horizontal advance in thousandths of an em.
	width float64
	// space is true for the single-byte code 32, the only code word
	// spacing applies to.
	space bool
}

var winAnsi = encodingTable(charmap.Windows1252)

// defaultFont is used when the content names no font or the font resource
// cannot be resolved: Helvetica with WinAnsiEncoding.
var defaultFont = &font{codeLen: 1, encoding: winAnsi, core: "Helvetica", scale: 1}

func encodingTable(cm *charmap.Charmap) *[256]rune {
	var t [256]rune
	for i := range t {
		t[i] = cm.DecodeByte(byte(i))
	}
	return &t
}

// baseEncoding returns the code table for a /Encoding or /BaseEncoding
// name. StandardEncoding differs from WinAnsi only in rarely used codes and
// shares its table.
func baseEncoding(name string) *[256]rune {
	switch name {
	case "MacRomanEncoding":
		return encodingTable(charmap.Macintosh)
	default:
		return winAnsi
	}
}

// glyphs splits raw into character codes and decodes each one.
func (f *font) glyphs(raw []byte) []glyph {
	n := f.codeLen
	if n < 1 {
		n = 1
	}
	out := make([]glyph, 0, len(raw)/n)
	for i := 0; i < len(raw); i += n {
		var code uint32
		end := min(i+n, len(raw))
		for _, b := range raw[i:end] {
			code = code<<8 | uint32(b)
		}
		out = append(out, glyph{
			text:  f.text(code),
			width: f.width(code),
			space: n == 1 && code == ' ',
		})
	}
	return out
}

func (f *font) text(code uint32) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.lookup(code); ok {
			return s
		}
	}
	if f.encoding != nil && code < 256 {
		r := f.encoding[code]
		if r == 0 || r == utf8.RuneError {
			return ""
		}
		return string(r)
	}
	// Without a ToUnicode map a two-byte code is taken as a UCS-2 value.
	if code >= 0x20 && code < 0xd800 {
		return string(rune(code))
	}
	return ""
}

func (f *font) width(code uint32) float64 {
	scale := f.scale
	if scale == 0 {
		scale = 1
	}
	if f.cidWidths != nil || f.codeLen == 2 {
		if w, ok := f.cidWidths[code]; ok {
			return w * scale
		}
		if f.defaultWidth > 0 {
			return f.defaultWidth * scale
		}
		return 1000
	}
	if i := int(code) - f.firstChar; f.widths != nil && i >= 0 && i < len(f.widths) {
		return f.widths[i] * scale
	}
	if f.core != "" {
		r := rune(code)
		if f.encoding != nil && code < 256 {
			r = f.encoding[code]
		}
		if w := coreWidth(f.core, r); w > 0 {
			return w
		}
	}
	if f.missingWidth > 0 {
		return f.missingWidth * scale
	}
	return fallbackWidth
}

// coreWidth looks up r in pdfcpu's standard 14 font metrics. Accented
// letters take the width of their base letter; other non-ASCII runes take
// the width of "n".
func coreWidth(name string, r rune) float64 {
	if r >= 0x80 {
		d := []rune(norm.NFD.String(string(r)))
		if len(d) > 0 && d[0] < 0x80 {
			r = d[0]
		} else {
			r = 'n'
		}
	}
	if r < 0x20 {
		return 0
	}
	return corefont.TextWidth(string(r), name, 1000)
}

var coreAliases = map[string]string{
	"Arial":                    "Helvetica",
	"ArialMT":                  "Helvetica",
	"Arial-BoldMT":             "Helvetica-Bold",
	"Arial-ItalicMT":           "Helvetica-Oblique",
	"Arial-BoldItalicMT":       "Helvetica-BoldOblique",
	"TimesNewRoman":            "Times-Roman",
	"TimesNewRomanPSMT":        "Times-Roman",
	"TimesNewRomanPS-BoldMT":   "Times-Bold",
	"TimesNewRomanPS-ItalicMT": "Times-Italic",
	"CourierNew":               "Courier",
	"CourierNewPSMT":           "Courier",
}

// coreName maps a /BaseFont name to a standard 14 font name, or "" when
// there is no close match. Subset prefixes ("ABCDEF+") and ",Bold" style
// suffixes are understood.
func coreName(base string) string {
	if i := strings.IndexByte(base, '+'); i == 6 {
		base = base[i+1:]
	}
	if corefont.IsCoreFont(base) {
		return base
	}
	if alias, ok := coreAliases[base]; ok {
		return alias
	}
	name, style, found := strings.Cut(base, ",")
	if !found {
		return ""
	}
	if alias, ok := coreAliases[name]; ok {
		name = alias
	}
	switch {
	case name == "Helvetica" && style == "Bold":
		return "Helvetica-Bold"
	case name == "Helvetica":
		return "Helvetica"
	case strings.HasPrefix(name, "Times") && style == "Bold":
		return "Times-Bold"
	case strings.HasPrefix(name, "Times"):
		return "Times-Roman"
	}
	return ""
}

// glyphRune maps a glyph name from a /Differences array to its rune.
// uniXXXX and uXXXX[XX] names are decoded; other names come from a table of
// the Latin glyphs report fonts use.
func glyphRune(name string) rune {
	if r, ok := glyphNames[name]; ok {
		return r
	}
	if len(name) == 1 && name[0] > 0x20 && name[0] < 0x7f {
		return rune(name[0])
	}
	hexName := ""
	switch {
	case strings.HasPrefix(name, "uni") && len(name) == 7:
		hexName = name[3:]
	case strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7:
		hexName = name[1:]
	}
	if hexName != "" {
		if v, err := strconv.ParseUint(hexName, 16, 32); err == nil {
			return rune(v)
		}
	}
	return 0
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "underscore": '_',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’',
	"quotedblleft": '“', "quotedblright": '”',
	"quotedblbase": '„', "quotesinglbase": '‚',
	"endash": '–', "emdash": '—', "bullet": '•',
	"ellipsis": '…', "Euro": '€', "degree": '°',
	"section": '§', "paragraph": '¶', "copyright": '©',
	"registered": '®', "nbspace": '\u00a0', "sfthyphen": '\u00ad',
	"Adieresis": 'Ä', "Odieresis": 'Ö', "Udieresis": 'Ü',
	"adieresis": 'ä', "odieresis": 'ö', "udieresis": 'ü',
	"germandbls": 'ß', "eacute": 'é', "Eacute": 'É', "egrave": 'è',
	"aacute": 'á', "agrave": 'à', "oacute": 'ó', "uacute": 'ú',
	"ccedilla": 'ç', "oslash": 'ø', "Oslash": 'Ø', "aring": 'å',
	"Aring": 'Å', "ae": 'æ', "AE": 'Æ',
}

// cmap is a parsed /ToUnicode CMap.
type cmap struct {
	// codeLen is the byte length declared by the codespace ranges, or 0.
	codeLen int
	chars   map[uint32]string
	ranges  []cmapRange
}

type cmapRange struct {
	lo, hi uint32
	// dst is the UTF-16BE text of lo; later codes increment its last unit.
	dst []byte
	// each, when set, lists the text of every code from lo.
	each []string
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap.
// CMaps are PostScript fragments but their tokens are the same as a
// content stream's, so the content lexer splits them.
func parseCMap(data []byte) (*cmap, error) {
	ops, err := parseContent(data)
	if err != nil {
		return nil, err
	}
	cm := &cmap{chars: make(map[uint32]string)}
	for _, o := range ops {
		args := o.args
		switch o.op {
		case "endcodespacerange":
			if len(args) >= 2 && args[0].kind == kindString && cm.codeLen == 0 {
				cm.codeLen = len(args[0].str)
			}
		case "endbfchar":
			for i := 0; i+1 < len(args); i += 2 {
				if args[i].kind != kindString || args[i+1].kind != kindString {
					continue
				}
				cm.chars[codeOf(args[i].str)] = decodeUTF16(args[i+1].str)
			}
		case "endbfrange":
			for i := 0; i+2 < len(args); i += 3 {
				if args[i].kind != kindString || args[i+1].kind != kindString {
					continue
				}
				r := cmapRange{lo: codeOf(args[i].str), hi: codeOf(args[i+1].str)}
				switch dst := args[i+2]; dst.kind {
				case kindString:
					r.dst = dst.str
				case kindArray:
					for _, el := range dst.arr {
						r.each = append(r.each, decodeUTF16(el.str))
					}
				default:
					continue
				}
				cm.ranges = append(cm.ranges, r)
			}
		}
	}
	return cm, nil
}

func (cm *cmap) lookup(code uint32) (string, bool) {
	if s, ok := cm.chars[code]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		off := code - r.lo
		if r.each != nil {
			if int(off) < len(r.each) {
				return r.each[off], true
			}
			return "", false
		}
		dst := append([]byte(nil), r.dst...)
		if n := len(dst); n >= 2 {
			last := uint32(dst[n-2])<<8 | uint32(dst[n-1])
			last += off
			dst[n-2], dst[n-1] = byte(last>>8), byte(last)
		} else if n == 1 {
			dst[0] += byte(off)
		}
		return decodeUTF16(dst), true
	}
	return "", false
}

func codeOf(b []byte) uint32 {
	var c uint32
	for _, x := range b {
		c = c<<8 | uint32(x)
	}
	return c
}

func decodeUTF16(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	out, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}
