package gparser

import (
	"strconv"
	"strings"

	"github.com/polygen-project/polygen/internal/ast"
)

var simpleEscapes = map[rune]rune{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\'': '\'',
	'"':  '"',
	'[':  '[',
	']':  ']',
	'\\': '\\',
}

// char recognizes one Char: either a backslash escape (simple, octal, or
// \uXXXX) or a single literal rune. Grounded on
// original_source/polygen/grammar_parser.py's _Char, which dispatches on
// the character following a backslash the same way.
func (p *Parser) char() (ast.Char, bool, error) {
	c, ok := p.r.Peek()
	if !ok {
		return 0, false, nil
	}

	if c != '\\' {
		p.r.Next()
		return ast.Char(c), true, nil
	}

	mark := p.r.Mark()
	p.r.Next() // consume '\\'

	ec, ok := p.r.Peek()
	if !ok {
		p.r.Restore(mark)
		return 0, false, p.errorf("unterminated escape sequence")
	}

	if mapped, ok := simpleEscapes[ec]; ok {
		p.r.Next()
		return ast.Char(mapped), true, nil
	}

	if ec == 'u' {
		p.r.Next()
		var digits strings.Builder
		for i := 0; i < 4; i++ {
			d, ok := p.r.Peek()
			if !ok || !isHexDigit(d) {
				return 0, false, p.errorf("\\u escape requires exactly 4 hex digits")
			}
			digits.WriteRune(d)
			p.r.Next()
		}
		n, err := strconv.ParseInt(digits.String(), 16, 32)
		if err != nil {
			return 0, false, p.errorf("invalid \\u escape: %v", err)
		}
		return ast.Char(rune(n)), true, nil
	}

	if isOctalDigit(ec) {
		var digits strings.Builder
		digits.WriteRune(ec)
		p.r.Next()

		maxLen := 2
		if ec == '0' || ec == '1' || ec == '2' {
			maxLen = 3
		}
		for digits.Len() < maxLen {
			d, ok := p.r.Peek()
			if !ok || !isOctalDigit(d) {
				break
			}
			digits.WriteRune(d)
			p.r.Next()
		}
		n, err := strconv.ParseInt(digits.String(), 8, 32)
		if err != nil {
			return 0, false, p.errorf("invalid octal escape: %v", err)
		}
		return ast.Char(rune(n)), true, nil
	}

	return 0, false, p.errorf("unrecognized escape sequence '\\%c'", ec)
}

func isOctalDigit(c rune) bool { return c >= '0' && c <= '7' }

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
