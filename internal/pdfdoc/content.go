// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"fmt"
	"strconv"
)

type operandKind int

const (
	kindNumber operandKind = iota
	kindString
	kindName
	kindArray
	kindOther
)

// operand is a content stream operand. Only the shapes text extraction
// looks at are kept; dictionaries, booleans and null become kindOther.
type operand struct {
	kind operandKind
	num  float64
	str  []byte
	name string
	arr  []operand
}

// operation is an operator with the operands that preceded it.
type operation struct {
	op   string
	args []operand
}

// lexer tokenizes a decoded content stream.
type lexer struct {
	data []byte
	pos  int
}

// parseContent splits a content stream into operations. Inline image data
// (BI ... ID ... EI) is skipped.
func parseContent(data []byte) ([]operation, error) {
	l := &lexer{data: data}
	var (
		ops   []operation
		stack []operand
	)
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			break
		}
		c := l.data[l.pos]
		if isRegular(c) && !isNumberStart(c) {
			word := l.readWord()
			switch word {
			case "true", "false", "null":
				stack = append(stack, operand{kind: kindOther})
				continue
			case "BI":
				l.skipInlineImage()
				stack = stack[:0]
				continue
			}
			ops = append(ops, operation{op: word, args: stack})
			stack = nil
			continue
		}
		o, err := l.readOperand()
		if err != nil {
			return nil, err
		}
		stack = append(stack, o)
	}
	return ops, nil
}

func (l *lexer) readOperand() (operand, error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return operand{}, fmt.Errorf("unexpected end of content stream")
	}
	c := l.data[l.pos]
	switch {
	case isNumberStart(c):
		return l.readNumber()
	case c == '(':
		s, err := l.readLiteral()
		return operand{kind: kindString, str: s}, err
	case c == '<' && l.peek(1) == '<':
		return l.readDict()
	case c == '<':
		s, err := l.readHex()
		return operand{kind: kindString, str: s}, err
	case c == '/':
		l.pos++
		return operand{kind: kindName, name: l.readWord()}, nil
	case c == '[':
		return l.readArray()
	case c == '{' || c == '}' || c == ']' || c == '>' || c == ')':
		l.pos++
		return operand{kind: kindOther}, nil
	case isRegular(c):
		w := l.readWord()
		if w == "true" || w == "false" || w == "null" {
			return operand{kind: kindOther}, nil
		}
		return operand{}, fmt.Errorf("operator %q inside operand at offset %d", w, l.pos)
	default:
		return operand{}, fmt.Errorf("unexpected byte %q at offset %d", c, l.pos)
	}
}

func (l *lexer) readNumber() (operand, error) {
	start := l.pos
	if c := l.data[l.pos]; c == '+' || c == '-' {
		l.pos++
	}
	for l.pos < len(l.data) && (isDigit(l.data[l.pos]) || l.data[l.pos] == '.') {
		l.pos++
	}
	s := string(l.data[start:l.pos])
	if s == "+" || s == "-" || s == "." || s == "-." || s == "+." {
		return operand{kind: kindNumber}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return operand{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return operand{kind: kindNumber, num: v}, nil
}

func (l *lexer) readLiteral() ([]byte, error) {
	l.pos++ // (
	var out bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.data):
			b, n := unescape(l.data[l.pos+1:])
			out.Write(b)
			l.pos += 1 + n
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				l.pos++
				return out.Bytes(), nil
			}
		}
		out.WriteByte(c)
		l.pos++
	}
	return nil, fmt.Errorf("unterminated string")
}

// unescape decodes the escape sequence that follows a backslash in data and
// reports how many bytes of data it consumed.
func unescape(data []byte) ([]byte, int) {
	if len(data) == 0 {
		return nil, 0
	}
	switch c := data[0]; c {
	case 'n':
		return []byte{'\n'}, 1
	case 'r':
		return []byte{'\r'}, 1
	case 't':
		return []byte{'\t'}, 1
	case 'b':
		return []byte{'\b'}, 1
	case 'f':
		return []byte{'\f'}, 1
	case '\r':
		if len(data) > 1 && data[1] == '\n' {
			return nil, 2
		}
		return nil, 1
	case '\n':
		return nil, 1
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v, n := 0, 0
		for n < 3 && n < len(data) && data[n] >= '0' && data[n] <= '7' {
			v = v*8 + int(data[n]-'0')
			n++
		}
		return []byte{byte(v)}, n
	default:
		return []byte{c}, 1
	}
}

func (l *lexer) readHex() ([]byte, error) {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = hexVal(digits[2*i])<<4 | hexVal(digits[2*i+1])
			}
			return out, nil
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	return nil, fmt.Errorf("unterminated hex string")
}

func (l *lexer) readArray() (operand, error) {
	l.pos++ // [
	arr := operand{kind: kindArray}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return operand{}, fmt.Errorf("unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		o, err := l.readOperand()
		if err != nil {
			return operand{}, err
		}
		arr.arr = append(arr.arr, o)
	}
}

// readDict consumes an inline dictionary such as a BDC property list.
func (l *lexer) readDict() (operand, error) {
	l.pos += 2 // <<
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return operand{}, fmt.Errorf("unterminated dictionary")
		}
		if l.data[l.pos] == '>' && l.peek(1) == '>' {
			l.pos += 2
			return operand{kind: kindOther}, nil
		}
		if _, err := l.readOperand(); err != nil {
			return operand{}, err
		}
	}
}

// skipInlineImage advances past "ID <data> EI". The image dictionary
// between BI and ID is plain tokens and is skipped with the data.
func (l *lexer) skipInlineImage() {
	idx := bytes.Index(l.data[l.pos:], []byte("ID"))
	if idx < 0 {
		l.pos = len(l.data)
		return
	}
	l.pos += idx + 2
	for l.pos < len(l.data) {
		idx := bytes.Index(l.data[l.pos:], []byte("EI"))
		if idx < 0 {
			l.pos = len(l.data)
			return
		}
		at := l.pos + idx
		before := at == 0 || isSpace(l.data[at-1])
		after := at+2 >= len(l.data) || isSpace(l.data[at+2])
		l.pos = at + 2
		if before && after {
			return
		}
	}
}

func (l *lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.data) {
		return l.data[l.pos+n]
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isSpace(c) && !isDelimiter(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool { return isDigit(c) || c == '-' || c == '+' || c == '.' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
