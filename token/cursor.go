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

package token

// Cursor is an iterator over a token stream.
//
// The stream must end with an [EOF] token; once the cursor reaches it,
// [Cursor.Next] keeps returning it.
type Cursor struct {
	tokens []Token
	idx    int
}

// NewCursor returns a cursor over tokens, which must end with an EOF token.
func NewCursor(tokens []Token) *Cursor {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		panic("banjocompile/token: token stream must end with EOF")
	}
	return &Cursor{tokens: tokens}
}

// Peek returns the next token without advancing the cursor.
func (c *Cursor) Peek() Token {
	return c.tokens[c.idx]
}

// PeekAt returns the token n places ahead without advancing the cursor.
// PeekAt(0) is equivalent to Peek.
func (c *Cursor) PeekAt(n int) Token {
	return c.tokens[min(c.idx+n, len(c.tokens)-1)]
}

// Next returns the next token and advances the cursor.
func (c *Cursor) Next() Token {
	tok := c.tokens[c.idx]
	if tok.Kind != EOF {
		c.idx++
	}
	return tok
}

// Prev returns the token most recently returned by Next. It returns the
// zero token if Next has not been called.
func (c *Cursor) Prev() Token {
	if c.idx == 0 {
		return Token{}
	}
	return c.tokens[c.idx-1]
}
