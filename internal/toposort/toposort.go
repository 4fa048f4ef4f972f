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

// Package toposort provides a generic topological sort implementation.
package toposort

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

const (
	unsorted byte = iota
	walking
	sorted
)

// CycleError is returned by [Sort] when the graph is not acyclic.
type CycleError[Node any] struct {
	// The nodes along the cycle. The first and last elements are the same
	// node.
	Cycle []Node
}

// Error implements [error].
func (e *CycleError[Node]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = fmt.Sprint(n)
	}
	return "cycle detected: " + strings.Join(parts, " -> ")
}

// Sort sorts a DAG topologically, so that every node comes after its
// children.
//
// Roots are the nodes whose dependencies we are querying. key returns a
// comparable key for each node. dag contains the data of the DAG being sorted,
// and returns the children of a node. Roots and children are visited in the
// order given, so among nodes with no dependency between them, the output
// preserves the input order.
//
// If the graph reachable from roots contains a cycle, Sort returns a
// *[CycleError] describing the first one found.
func Sort[Node any, Key comparable](
	roots []Node,
	key func(Node) Key,
	dag func(Node) iter.Seq[Node],
) ([]Node, error) {
	s := Sorter[Node, Key]{Key: key}
	return s.Sort(roots, dag)
}

// Sorter is reusable scratch space for a particular stencil of [Sort], which
// needs to allocate memory for book-keeping. This struct allows amortizing that
// cost.
type Sorter[Node any, Key comparable] struct {
	// A function to extract a unique key from each node, for marking.
	Key func(Node) Key

	state   map[Key]byte
	stack   []frame[Node]
	sorting bool
}

type frame[Node any] struct {
	node     Node
	children []Node
	next     int
}

// Sort is like [Sort], but re-uses allocated resources stored in s.
func (s *Sorter[Node, Key]) Sort(
	roots []Node,
	dag func(Node) iter.Seq[Node],
) ([]Node, error) {
	if s.sorting {
		panic("internal/toposort: Sort() called reëntrantly")
	}
	s.sorting = true
	if s.state == nil {
		s.state = make(map[Key]byte)
	}
	defer func() {
		clear(s.state)
		clear(s.stack)
		s.stack = s.stack[:0]
		s.sorting = false
	}()

	var out []Node
	for _, root := range roots {
		if s.state[s.Key(root)] != unsorted {
			continue
		}
		s.push(root, dag)

		// This is DFS with an explicit stack. A frame stays on the stack
		// until all of its children are sorted, so the stack is always the
		// path from the current root, which is what a cycle report needs.
		for len(s.stack) > 0 {
			top := &s.stack[len(s.stack)-1]
			if top.next == len(top.children) {
				s.stack = s.stack[:len(s.stack)-1]
				s.state[s.Key(top.node)] = sorted
				out = append(out, top.node)
				continue
			}

			child := top.children[top.next]
			top.next++
			switch s.state[s.Key(child)] {
			case unsorted:
				s.push(child, dag)
			case walking:
				return nil, s.cycle(child)
			case sorted:
			}
		}
	}
	return out, nil
}

func (s *Sorter[Node, Key]) push(node Node, dag func(Node) iter.Seq[Node]) {
	s.state[s.Key(node)] = walking
	s.stack = append(s.stack, frame[Node]{
		node:     node,
		children: slices.Collect(dag(node)),
	})
}

func (s *Sorter[Node, Key]) cycle(to Node) *CycleError[Node] {
	k := s.Key(to)
	start := slices.IndexFunc(s.stack, func(f frame[Node]) bool {
		return s.Key(f.node) == k
	})
	err := &CycleError[Node]{}
	for _, f := range s.stack[start:] {
		err.Cycle = append(err.Cycle, f.node)
	}
	err.Cycle = append(err.Cycle, to)
	return err
}
