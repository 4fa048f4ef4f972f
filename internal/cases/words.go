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

package cases

import (
	"iter"
	"unicode"
	"unicode/utf8"
)

// Words splits str into words.
//
// Underscores separate words and are not part of any word. Within a run of
// letters, a new word starts at an uppercase letter followed by a lowercase
// one, as in "fooBar" or "HTTPServer", or at a final uppercase letter that
// follows a lowercase one, as in "FooX".
func Words(str string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		emit := func(end int) bool {
			word := str[start:end]
			start = end
			return word == "" || yield(word)
		}

		var prev rune
		for i, r := range str {
			if r == '_' {
				if !emit(i) {
					return
				}
				start = i + 1
				prev = r
				continue
			}

			if unicode.IsUpper(r) {
				next, _ := utf8.DecodeRuneInString(str[i+utf8.RuneLen(r):])
				last := i+utf8.RuneLen(r) == len(str)
				if (!last && unicode.IsLower(next)) || (last && unicode.IsLower(prev)) {
					if !emit(i) {
						return
					}
				}
			}
			prev = r
		}
		emit(len(str))
	}
}
