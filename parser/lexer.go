// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
	"github.com/bufbuild/banjocompile/token"
)

const utf8BOM = "\uFEFF"

// punctuation lists every punctuation token, longest first so that "->" is
// matched before "-" would be.
var punctuation = [...]string{
	"->",
	"{", "}", "[", "]", "(", ")", "<", ">",
	";", ",", ".", "=", ":", "?",
}

type lexer struct {
	file *source.File
	text string
	pos  int
	mark int

	tokens []token.Token
}

// lex breaks file into tokens. The returned stream always ends with an EOF
// token.
func lex(file *source.File) ([]token.Token, error) {
	l := &lexer{file: file, text: file.Text()}
	if strings.HasPrefix(l.text, utf8BOM) {
		l.pos = len(utf8BOM)
	}
	if !utf8.ValidString(l.text) {
		return nil, l.invalidUTF8()
	}

	for {
		l.skipSpace()
		if l.pos >= len(l.text) {
			break
		}
		l.mark = l.pos
		if err := l.next(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, token.Token{
		Kind: token.EOF,
		Span: file.EOF(),
	})
	return l.tokens, nil
}

func (l *lexer) invalidUTF8() *reporter.Error {
	offset := l.pos
	for offset < len(l.text) {
		r, size := utf8.DecodeRuneInString(l.text[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return reporter.Errorf(reporter.SyntaxError, l.file.Span(offset, offset+1),
		"invalid UTF-8 byte 0x%02x", l.text[offset])
}

func (l *lexer) peekByte(n int) byte {
	if l.pos+n >= len(l.text) {
		return 0
	}
	return l.text[l.pos+n]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.text) {
		switch l.text[l.pos] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) emit(kind token.Kind) *token.Token {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Text: l.text[l.mark:l.pos],
		Span: l.file.Span(l.mark, l.pos),
	})
	return &l.tokens[len(l.tokens)-1]
}

func (l *lexer) errorf(start, end int, format string, args ...any) *reporter.Error {
	return reporter.Errorf(reporter.SyntaxError, l.file.Span(start, end), format, args...)
}

func (l *lexer) next() error {
	c := l.text[l.pos]
	switch {
	case c == '/' && l.peekByte(1) == '/':
		l.lineComment()
		return nil
	case c == '/' && l.peekByte(1) == '*':
		return l.blockComment()
	case c == '"':
		return l.stringLit()
	case isDigit(c), c == '-' && isDigit(l.peekByte(1)):
		return l.intLit()
	case isIdentStart(c):
		for l.pos < len(l.text) && isIdentPart(l.text[l.pos]) {
			l.pos++
		}
		l.emit(token.Ident)
		return nil
	}

	for _, p := range punctuation {
		if strings.HasPrefix(l.text[l.pos:], p) {
			l.pos += len(p)
			l.emit(token.Punct)
			return nil
		}
	}

	r, size := utf8.DecodeRuneInString(l.text[l.pos:])
	return l.errorf(l.pos, l.pos+size, "unexpected character %q", r)
}

func (l *lexer) lineComment() {
	end := strings.IndexByte(l.text[l.pos:], '\n')
	if end < 0 {
		end = len(l.text)
	} else {
		end += l.pos
	}

	// Exactly three slashes make a doc comment; "////" is an ordinary one.
	text := l.text[l.pos:end]
	l.pos = end
	if strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////") {
		tok := l.emit(token.DocComment)
		tok.Text = strings.TrimRight(tok.Text, "\r")
		tok.Span.End = tok.Span.Start + len(tok.Text)
		tok.Value = strings.TrimPrefix(tok.Text, "///")
	}
}

func (l *lexer) blockComment() error {
	end := strings.Index(l.text[l.pos+2:], "*/")
	if end < 0 {
		return l.errorf(l.pos, l.pos+2, "unterminated block comment")
	}
	l.pos += 2 + end + 2
	return nil
}

func (l *lexer) intLit() error {
	if l.text[l.pos] == '-' {
		l.pos++
	}

	base := 10
	digitsStart := l.pos
	if l.text[l.pos] == '0' {
		switch l.peekByte(1) {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			l.pos += 2
			digitsStart = l.pos
		}
	}
	for l.pos < len(l.text) && isIdentPart(l.text[l.pos]) {
		l.pos++
	}

	digits := l.text[digitsStart:l.pos]
	negative := l.text[l.mark] == '-'
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return l.errorf(l.mark, l.pos, "integer literal %s does not fit in 64 bits", l.text[l.mark:l.pos])
		}
		return l.errorf(l.mark, l.pos, "invalid integer literal %s", l.text[l.mark:l.pos])
	}
	if negative && value > 1<<63 {
		return l.errorf(l.mark, l.pos, "integer literal %s does not fit in 64 bits", l.text[l.mark:l.pos])
	}

	tok := l.emit(token.Int)
	tok.Uint = value
	tok.Negative = negative && value != 0
	return nil
}

func (l *lexer) stringLit() error {
	var buf strings.Builder
	l.pos++ // Opening quote.
	for {
		if l.pos >= len(l.text) || l.text[l.pos] == '\n' {
			return l.errorf(l.mark, l.pos, "unterminated string literal")
		}

		c := l.text[l.pos]
		switch c {
		case '"':
			l.pos++
			tok := l.emit(token.String)
			tok.Value = buf.String()
			return nil
		case '\\':
			if err := l.escape(&buf); err != nil {
				return err
			}
		default:
			r, size := utf8.DecodeRuneInString(l.text[l.pos:])
			buf.WriteRune(r)
			l.pos += size
		}
	}
}

func (l *lexer) escape(buf *strings.Builder) error {
	start := l.pos
	l.pos++ // Backslash.
	if l.pos >= len(l.text) {
		return l.errorf(start, l.pos, "unterminated string literal")
	}

	c := l.text[l.pos]
	l.pos++
	switch c {
	case '\\', '"':
		buf.WriteByte(c)
	case 'n':
		buf.WriteByte('\n')
	case 't':
		buf.WriteByte('\t')
	case 'r':
		buf.WriteByte('\r')
	case '0':
		buf.WriteByte(0)
	case 'x':
		if l.pos+2 > len(l.text) {
			return l.errorf(start, l.pos, "invalid escape sequence")
		}
		v, err := strconv.ParseUint(l.text[l.pos:l.pos+2], 16, 8)
		if err != nil {
			return l.errorf(start, l.pos+2, "invalid escape sequence %s", l.text[start:l.pos+2])
		}
		l.pos += 2
		buf.WriteByte(byte(v))
	case 'u':
		if l.peekByte(0) != '{' {
			return l.errorf(start, l.pos, `expected "{" after \u`)
		}
		end := strings.IndexByte(l.text[l.pos:], '}')
		if end < 0 {
			return l.errorf(start, l.pos, "unterminated escape sequence")
		}
		digits := l.text[l.pos+1 : l.pos+end]
		l.pos += end + 1
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || len(digits) > 6 || !utf8.ValidRune(rune(v)) {
			return l.errorf(start, l.pos, "invalid escape sequence %s", l.text[start:l.pos])
		}
		buf.WriteRune(rune(v))
	default:
		r, size := utf8.DecodeRuneInString(l.text[l.pos-1:])
		return l.errorf(start, l.pos-1+size, `invalid escape sequence "\%c"`, r)
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
