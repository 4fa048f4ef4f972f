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

package golden

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpus(t *testing.T) {
	t.Parallel()

	Corpus{
		Root:      "testdata/upper",
		Extension: "txt",
		Outputs: []Output{
			{Extension: "upper"},
			// Never written, so it is expected to be empty.
			{Extension: "lower"},
		},
		Test: func(t *testing.T, _, text string) []string {
			return []string{strings.ToUpper(text), ""}
		},
	}.Run(t)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Diff("a\nb\n", "a\nb\n"))
	assert.Equal(t, "--- want\n+++ got\n@@ -1,2 +1,2 @@\n a\n-b\n+c\n", Diff("a\nc\n", "a\nb\n"))
}
