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

package toposort_test

import (
	"errors"
	"iter"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/internal/toposort"
)

type dag map[int][]int

func (d dag) children(n int) iter.Seq[int] {
	return slices.Values(d[n])
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dag   dag
		roots []int
		want  []int
	}{
		{
			name: "empty",
		},
		{
			name:  "list",
			dag:   dag{1: {2}, 2: {3}, 3: {4}, 4: {}},
			roots: []int{1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "list",
			dag:   dag{1: {2}, 2: {3}, 3: {4}, 4: {}},
			roots: []int{2, 1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "list",
			dag:   dag{1: {2}, 2: {3}, 3: {4}, 4: {}},
			roots: []int{1, 2},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "diamond",
			dag:   dag{1: {2, 3}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{1},
			want:  []int{4, 2, 3, 1},
		},
		{
			name:  "diamond",
			dag:   dag{1: {2, 3}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{2},
			want:  []int{4, 2},
		},
		{
			name:  "diamond",
			dag:   dag{1: {2, 3}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{3, 2, 1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "diamond",
			dag:   dag{1: {3, 2}, 2: {3}, 3: {}},
			roots: []int{1},
			want:  []int{3, 2, 1},
		},
		{
			name:  "y",
			dag:   dag{1: {2}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{1, 3},
			want:  []int{4, 2, 1, 3},
		},
		{
			name:  "y",
			dag:   dag{1: {2}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{3, 1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "independent",
			dag:   dag{},
			roots: []int{5, 1, 3},
			want:  []int{5, 1, 3},
		},
	}

	var mu sync.Mutex
	s := toposort.Sorter[int, int]{Key: func(n int) int { return n }}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Serialize the tests, but run them in an arbitrary order.
			t.Parallel()
			mu.Lock()
			defer mu.Unlock()

			got, err := s.Sort(tt.roots, tt.dag.children)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dag   dag
		roots []int
		want  []int
		msg   string
	}{
		{
			name:  "self",
			dag:   dag{0: {0}},
			roots: []int{0},
			want:  []int{0, 0},
			msg:   "cycle detected: 0 -> 0",
		},
		{
			name:  "triangle",
			dag:   dag{1: {2}, 2: {3}, 3: {1}},
			roots: []int{1},
			want:  []int{1, 2, 3, 1},
			msg:   "cycle detected: 1 -> 2 -> 3 -> 1",
		},
		{
			name:  "tail",
			dag:   dag{1: {2, 5}, 2: {}, 5: {6}, 6: {5}},
			roots: []int{1},
			want:  []int{5, 6, 5},
			msg:   "cycle detected: 5 -> 6 -> 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := toposort.Sort(tt.roots, func(n int) int { return n }, tt.dag.children)
			assert.Nil(t, got)

			var cycle *toposort.CycleError[int]
			require.True(t, errors.As(err, &cycle))
			assert.Equal(t, tt.want, cycle.Cycle)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestReuseAfterCycle(t *testing.T) {
	t.Parallel()

	s := toposort.Sorter[int, int]{Key: func(n int) int { return n }}
	_, err := s.Sort([]int{1}, dag{1: {1}}.children)
	require.Error(t, err)

	got, err := s.Sort([]int{1}, dag{1: {2}}.children)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)
}

func TestReentrant(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		s := toposort.Sorter[int, int]{Key: func(n int) int { return n }}
		var dag func(int) iter.Seq[int]
		dag = func(int) iter.Seq[int] {
			_, _ = s.Sort([]int{0}, dag)
			return slices.Values([]int(nil))
		}
		_, _ = s.Sort([]int{0}, dag)
	})
}
