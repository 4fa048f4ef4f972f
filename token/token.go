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

// Package token defines the lexical elements of Banjo source: token kinds,
// the keyword tables, and a cursor over a lexed token stream.
package token

import (
	"fmt"

	"github.com/bufbuild/banjocompile/source"
)

// Kind identifies what kind of token a [Token] is.
type Kind int8

const (
	EOF Kind = iota
	Ident
	Int
	String
	Punct
	DocComment
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Int:
		return "integer literal"
	case String:
		return "string literal"
	case Punct:
		return "punctuation"
	case DocComment:
		return "doc comment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexical element.
type Token struct {
	Kind Kind
	// The exact source text of this token.
	Text string
	// Where the token appears in its file.
	source.Span

	// For Int tokens: the magnitude of the literal, and whether it had a
	// leading minus sign.
	Uint     uint64
	Negative bool

	// For String tokens, the unescaped contents; for DocComment tokens, the
	// text following the ///.
	Value string
}

// Is returns whether this token is the given punctuation or identifier text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

// IsKeyword returns whether this token is an identifier spelling kw.
func (t Token) IsKeyword(kw Keyword) bool {
	return t.Kind == Ident && Lookup(t.Text) == kw
}

// Describe returns a description of this token suitable for use in an
// "expected X, found Y" diagnostic.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of file"
	case Punct:
		return fmt.Sprintf("%q", t.Text)
	case Ident:
		if kw := Lookup(t.Text); kw != Unknown {
			return fmt.Sprintf("keyword %q", t.Text)
		}
		return fmt.Sprintf("identifier %q", t.Text)
	case Int:
		return fmt.Sprintf("integer %s", t.Text)
	case String:
		return fmt.Sprintf("string %s", t.Text)
	default:
		return t.Kind.String()
	}
}
