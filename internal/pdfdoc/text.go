// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"math"
	"strings"
)

// maxFormDepth bounds Form XObject nesting so a form that draws itself
// terminates.
const maxFormDepth = 8

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func translate(tx, ty float64) matrix { return matrix{1, 0, 0, 1, tx, ty} }

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) xScale() float64 { return math.Hypot(m[0], m[1]) }
func (m matrix) yScale() float64 { return math.Hypot(m[2], m[3]) }

// textState is the subset of the graphics and text state that positions glyphs.
type textState struct {
	ctm      matrix
	tm, tlm  matrix
	font     *font
	fontSize float64
	charSp   float64
	wordSp   float64
	hScale   float64
	leading  float64
	rise     float64
}

// interpreter turns content stream operations into fragments.
type interpreter struct {
	res   resourceSet
	depth int
	state textState
	saved []textState
	out   []Fragment

	// run accumulates text shown by one TJ array.
	run    strings.Builder
	runX   float64
	runY   float64
	runEnd float64
	runFS  float64
}

// Fragments returns the positioned text drawn by a decoded content stream
// that has no resources: every font is Helvetica with WinAnsiEncoding and
// XObjects are not drawn.
func Fragments(content []byte) ([]Fragment, error) {
	return fragments(content, noResources{})
}

func fragments(content []byte, res resourceSet) ([]Fragment, error) {
	in := &interpreter{
		res:   res,
		state: textState{ctm: identity, tm: identity, tlm: identity, font: defaultFont, hScale: 1},
	}
	if err := in.exec(content); err != nil {
		return nil, err
	}
	return in.out, nil
}

func (in *interpreter) exec(content []byte) error {
	ops, err := parseContent(content)
	if err != nil {
		return err
	}
	for _, o := range ops {
		in.apply(o)
	}
	return nil
}

// drawForm interprets a Form XObject under ctm × its /Matrix with its own
// resources, then restores the caller's state.
func (in *interpreter) drawForm(name string) {
	if in.depth >= maxFormDepth {
		return
	}
	f, ok := in.res.form(name)
	if !ok {
		return
	}
	in.flush()
	state, res, stack := in.state, in.res, append([]textState(nil), in.saved...)
	in.state.ctm = f.matrix.mul(in.state.ctm)
	in.res = f.res
	in.depth++
	// A broken form stream loses its own text only.
	_ = in.exec(f.content)
	in.depth--
	in.flush()
	in.state, in.res, in.saved = state, res, stack
}

func (in *interpreter) apply(o operation) {
	s := &in.state
	n := func(i int) float64 {
		if i < len(o.args) && o.args[i].kind == kindNumber {
			return o.args[i].num
		}
		return 0
	}
	switch o.op {
	case "q":
		in.saved = append(in.saved, *s)
	case "Q":
		if len(in.saved) > 0 {
			*s = in.saved[len(in.saved)-1]
			in.saved = in.saved[:len(in.saved)-1]
		}
	case "cm":
		if len(o.args) == 6 {
			s.ctm = matrix{n(0), n(1), n(2), n(3), n(4), n(5)}.mul(s.ctm)
		}
	case "BT":
		s.tm, s.tlm = identity, identity
	case "Tf":
		if len(o.args) == 2 {
			if o.args[0].kind == kindName {
				s.font = in.res.font(o.args[0].name)
			}
			s.fontSize = n(1)
		}
	case "Do":
		if len(o.args) == 1 && o.args[0].kind == kindName {
			in.drawForm(o.args[0].name)
		}
	case "Tc":
		s.charSp = n(0)
	case "Tw":
		s.wordSp = n(0)
	case "Tz":
		s.hScale = n(0) / 100
	case "TL":
		s.leading = n(0)
	case "Ts":
		s.rise = n(0)
	case "Td":
		in.moveLine(n(0), n(1))
	case "TD":
		s.leading = -n(1)
		in.moveLine(n(0), n(1))
	case "T*":
		in.moveLine(0, -s.leading)
	case "Tm":
		if len(o.args) == 6 {
			s.tm = matrix{n(0), n(1), n(2), n(3), n(4), n(5)}
			s.tlm = s.tm
		}
	case "Tj":
		if len(o.args) == 1 && o.args[0].kind == kindString {
			in.show(o.args[0].str)
			in.flush()
		}
	case "'":
		in.moveLine(0, -s.leading)
		if len(o.args) == 1 && o.args[0].kind == kindString {
			in.show(o.args[0].str)
			in.flush()
		}
	case "\"":
		if len(o.args) == 3 {
			s.wordSp, s.charSp = n(0), n(1)
			in.moveLine(0, -s.leading)
			if o.args[2].kind == kindString {
				in.show(o.args[2].str)
				in.flush()
			}
		}
	case "TJ":
		if len(o.args) == 1 && o.args[0].kind == kindArray {
			in.showArray(o.args[0].arr)
			in.flush()
		}
	}
}

func (in *interpreter) moveLine(tx, ty float64) {
	in.state.tlm = translate(tx, ty).mul(in.state.tlm)
	in.state.tm = in.state.tlm
}

// show draws raw string bytes at the current text position, extending the
// pending run, and advances the text matrix by the font's glyph widths.
func (in *interpreter) show(raw []byte) {
	s := &in.state
	if len(raw) == 0 {
		return
	}
	f := s.font
	if f == nil {
		f = defaultFont
	}
	trm := translate(0, s.rise).mul(s.tm).mul(s.ctm)

	advance := 0.0
	var text strings.Builder
	for _, g := range f.glyphs(raw) {
		w := g.width/1000*s.fontSize + s.charSp
		if g.space {
			w += s.wordSp
		}
		advance += w * s.hScale
		text.WriteString(g.text)
	}

	if in.run.Len() == 0 {
		in.runX, in.runY = trm[4], trm[5]
		in.runFS = s.fontSize * trm.yScale()
	}
	in.run.WriteString(text.String())
	in.runEnd = trm[4] + advance*trm.xScale()

	s.tm = translate(advance, 0).mul(s.tm)
}

// showArray handles a TJ array. Small kerning adjustments stay inside the
// run, a gap of a fraction of an em becomes a space, and a gap wider than an
// em starts a new fragment so separate table cells drawn by one TJ split.
func (in *interpreter) showArray(arr []operand) {
	s := &in.state
	for _, el := range arr {
		switch el.kind {
		case kindString:
			in.show(el.str)
		case kindNumber:
			shift := -el.num / 1000 * s.fontSize * s.hScale
			s.tm = translate(shift, 0).mul(s.tm)
			if s.fontSize == 0 || in.run.Len() == 0 {
				continue
			}
			switch em := shift / s.fontSize; {
			case em > 1:
				in.flush()
			case em > 0.2:
				in.run.WriteByte(' ')
			}
		}
	}
}

// flush emits the pending run as a fragment.
func (in *interpreter) flush() {
	if in.run.Len() == 0 {
		return
	}
	in.out = append(in.out, Fragment{
		Text:     in.run.String(),
		X:        in.runX,
		Y:        in.runY,
		Width:    in.runEnd - in.runX,
		FontSize: in.runFS,
	})
	in.run.Reset()
}
