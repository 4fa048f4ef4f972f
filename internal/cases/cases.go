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

// Package cases converts Banjo identifiers between the case styles used by
// generated code.
package cases

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Case is a target case style to convert to.
type Case int

const (
	Snake  Case = iota // snake_case
	Enum               // ENUM_CASE
	Camel              // camelCase
	Pascal             // PascalCase
)

// Convert converts str to c.
func (c Case) Convert(str string) string {
	return c.Join(str)
}

// Join converts the words of every part to c as if they were one
// identifier, so Snake.Join("Gpio", "SetAlt") is "gpio_set_alt".
func (c Case) Join(parts ...string) string {
	var buf strings.Builder
	n := 0
	for _, part := range parts {
		for word := range Words(part) {
			c.appendWord(&buf, word, n)
			n++
		}
	}
	return buf.String()
}

// appendWord appends the nth word of an identifier.
func (c Case) appendWord(buf *strings.Builder, word string, n int) {
	switch c {
	case Snake, Enum:
		if n > 0 {
			buf.WriteByte('_')
		}
		if c == Enum {
			buf.WriteString(strings.ToUpper(word))
		} else {
			buf.WriteString(strings.ToLower(word))
		}
	case Camel, Pascal:
		first, size := utf8.DecodeRuneInString(word)
		if c == Pascal || n > 0 {
			first = unicode.ToUpper(first)
		} else {
			first = unicode.ToLower(first)
		}
		buf.WriteRune(first)
		buf.WriteString(strings.ToLower(word[size:]))
	}
}
