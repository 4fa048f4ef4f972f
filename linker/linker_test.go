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

package linker_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/linker"
	"github.com/bufbuild/banjocompile/lower"
	"github.com/bufbuild/banjocompile/parser"
	"github.com/bufbuild/banjocompile/reporter"
)

type file struct {
	path, text string
}

func link(t *testing.T, handler *reporter.Handler, files ...file) (*ir.AST, error) {
	t.Helper()
	units := make([]*ir.Unit, len(files))
	for i, f := range files {
		parsed, err := parser.ParseString(f.path, f.text)
		require.NoError(t, err)
		units[i], err = lower.Lower(parsed)
		require.NoError(t, err)
	}
	return linker.Link(units, handler)
}

func TestLinkAcrossLibraries(t *testing.T) {
	t.Parallel()

	ast, err := link(t, nil,
		file{"b.banjo", "library pkg.b;\nusing pkg.a;\nprotocol Canvas {\n    Draw(pkg.a.Point pt);\n};"},
		file{"a.banjo", "library pkg.a;\nstruct Point { int32 x; int32 y; };"},
	)
	require.NoError(t, err)

	require.Len(t, ast.Libraries, 2)
	assert.Equal(t, "pkg.b", ast.Libraries[0].Name)
	assert.Equal(t, []string{"pkg.a"}, ast.Libraries[0].Imports)
	assert.Equal(t, []string{"b.banjo"}, ast.Libraries[0].Files)

	var order []string
	for lib := range ast.InOrder {
		order = append(order, lib.Name)
	}
	assert.Equal(t, []string{"pkg.a", "pkg.b"}, order)

	canvas, ok := ast.Lookup("pkg.b.Canvas")
	require.True(t, ok)
	pt := canvas.Interface.Methods[0].Request[0].Type
	require.True(t, pt.Ref.Resolved)
	assert.Equal(t, ir.DeclID{Library: 1, Index: 0}, pt.Ref.Target)
	assert.Equal(t, "pkg.a.Point", pt.Format(ast))
	assert.Equal(t, "pkg.a.Point", ast.Decl(pt.Ref.Target).FullName())

	var symbols []string
	for fqn := range ast.Symbols {
		symbols = append(symbols, fqn)
	}
	assert.Equal(t, []string{"pkg.a.Point", "pkg.b.Canvas"}, symbols)
}

func TestLinkInterfaceAcrossLibraries(t *testing.T) {
	t.Parallel()

	ast, err := link(t, nil,
		file{"b.banjo", "library pkg.b;\nusing pkg.a;\ninterface Canvas { Draw(pkg.a.Point pt) -> (); };"},
		file{"a.banjo", "library pkg.a;\nstruct Point { int32 x; int32 y; };"},
	)
	require.NoError(t, err)

	canvas, ok := ast.Lookup("pkg.b.Canvas")
	require.True(t, ok)
	draw := canvas.Interface.Methods[0]
	assert.Equal(t, "pkg.a.Point", draw.Request[0].Type.Format(ast))
	assert.True(t, draw.HasResponse)
	assert.Empty(t, draw.Response)
	assert.Equal(t, []string{"pkg.a"}, ast.Libraries[0].Imports)
}

func TestLinkMissingImport(t *testing.T) {
	t.Parallel()

	ast, err := link(t, nil,
		file{"b.banjo", "library pkg.b;\nprotocol Canvas {\n    Draw(pkg.a.Point pt);\n};"},
		file{"a.banjo", "library pkg.a;\nstruct Point { int32 x; int32 y; };"},
	)
	assert.Nil(t, ast)

	var rerr *reporter.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, reporter.DependencyError, rerr.Kind)
	assert.Equal(t, reporter.StageAssembly, rerr.Stage())
	assert.Equal(t, "Canvas", rerr.Decl)
	assert.Equal(t, "Draw.pt", rerr.Member)
	assert.Equal(t, "b.banjo:3:10: Canvas.Draw.pt refers to pkg.a.Point, but library pkg.a is not imported", err.Error())
}

func TestLinkResolution(t *testing.T) {
	t.Parallel()

	ast, err := link(t, nil,
		file{"a.banjo", `library a;
using ddk.hw as hw;
using b;

struct S {
    hw.Pin pin;
    T t;
    b.Color color = b.Color.RED;
    Color other = Color.GREEN;
    uint32 max = MAX;
};

struct T {};
`},
		file{"hw.banjo", "library ddk.hw;\nstruct Pin {};"},
		file{"b.banjo", "library b;\nenum Color { RED = 1; GREEN = 2; };\nstruct T {};\nconst uint32 MAX = 4;"},
	)
	require.NoError(t, err)

	s, ok := ast.Lookup("a.S")
	require.True(t, ok)
	members := s.Struct.Members
	assert.Equal(t, "ddk.hw.Pin", members[0].Type.Format(ast))
	// The file's own library shadows its imports.
	assert.Equal(t, "a.T", members[1].Type.Format(ast))
	assert.Equal(t, "b.Color", members[2].Type.Format(ast))
	assert.Equal(t, "b.Color.RED", members[2].Default.Format(ast))
	assert.Equal(t, "RED", members[2].Default.Ref.Member)
	assert.Equal(t, "b.Color.GREEN", members[3].Default.Format(ast))
	assert.Equal(t, "b.MAX", members[4].Default.Format(ast))
	assert.Equal(t, uint64(4), members[4].Default.Ref.Value(ast).Uint)
}

func TestLinkErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  []file
		kind   reporter.Kind
		want   string
		decl   string
		member string
	}{
		{
			name: "duplicate across files",
			files: []file{
				{"a.banjo", "library a;\nstruct S {};"},
				{"b.banjo", "library a;\nenum S { X = 1; };"},
			},
			kind: reporter.DuplicateError,
			want: "b.banjo:2:6: S is declared more than once in library a",
			decl: "S",
		},
		{
			name:  "unknown import",
			files: []file{{"a.banjo", "library a;\nusing b;"}},
			kind:  reporter.DependencyError,
			want:  "a.banjo:2:1: imported library b is not declared by any input file",
		},
		{
			name:  "self import",
			files: []file{{"a.banjo", "library a;\nusing a;"}},
			kind:  reporter.DependencyError,
			want:  "a.banjo:2:1: library a imports itself",
		},
		{
			name:   "unknown type",
			files:  []file{{"a.banjo", "library a;\nstruct S { T t; };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:2:12: S.t refers to unknown type T",
			decl:   "S",
			member: "t",
		},
		{
			name: "ambiguous",
			files: []file{
				{"a.banjo", "library a;\nusing b;\nusing c;\nstruct S { T t; };"},
				{"b.banjo", "library b; struct T {};"},
				{"c.banjo", "library c; struct T {};"},
			},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:4:12: T is ambiguous: it could refer to b.T or c.T",
			decl:   "S",
			member: "t",
		},
		{
			name:   "constant as type",
			files:  []file{{"a.banjo", "library a;\nconst uint32 N = 1;\nstruct S { N n; };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:3:12: N is a constant, not a type",
			decl:   "S",
			member: "n",
		},
		{
			name:   "request of struct",
			files:  []file{{"a.banjo", "library a;\nstruct T {};\nprotocol P { M(request<T> r); };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:3:24: request<T> must name a protocol, but T is a struct",
			decl:   "P",
			member: "M.r",
		},
		{
			name:  "alias cycle",
			files: []file{{"a.banjo", "library a;\nusing A = B;\nusing B = A;"}},
			kind:  reporter.CycleError,
			want:  "a.banjo:2:7: alias A expands to itself: A -> B -> A",
			decl:  "A",
		},
		{
			name:  "constant cycle",
			files: []file{{"a.banjo", "library a;\nconst uint32 A = B;\nconst uint32 B = A;"}},
			kind:  reporter.CycleError,
			want:  "a.banjo:2:14: constant A depends on itself: A -> B -> A",
			decl:  "A",
		},
		{
			name:   "containment cycle",
			files:  []file{{"a.banjo", "library a;\nstruct A { B b; };\nstruct B { A a; };"}},
			kind:   reporter.CycleError,
			want:   "a.banjo:2:8: A contains itself by value: A.b -> B.a -> A",
			decl:   "A",
			member: "b",
		},
		{
			name:   "containment through alias and array",
			files:  []file{{"a.banjo", "library a;\nusing Arr = array<S>:2;\nstruct S { Arr items; };"}},
			kind:   reporter.CycleError,
			want:   "a.banjo:3:8: S contains itself by value: S.items -> S",
			decl:   "S",
			member: "items",
		},
		{
			name: "import cycle",
			files: []file{
				{"a.banjo", "library a;\nusing b;\nstruct A {};"},
				{"b.banjo", "library b;\nusing a;\nstruct B {};"},
			},
			kind: reporter.CycleError,
			want: "a.banjo:2:1: library a imports itself: a -> b -> a",
		},
		{
			name:   "wrong enum",
			files:  []file{{"a.banjo", "library a;\nenum E { X = 1; };\nenum F { Y = 1; };\nstruct S { E e = F.Y; };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:4:18: default value of S.e: expected a member of enum E, found F.Y",
			decl:   "S",
			member: "e",
		},
		{
			name:   "literal for enum",
			files:  []file{{"a.banjo", "library a;\nenum E { X = 1; };\nstruct S { E e = 1; };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:3:18: default value of S.e: expected a member of enum E, found 1",
			decl:   "S",
			member: "e",
		},
		{
			name:  "constant out of range",
			files: []file{{"a.banjo", "library a;\nconst int32 N = -1;\nconst uint32 M = N;"}},
			kind:  reporter.ResolutionError,
			want:  "a.banjo:3:18: value of M: -1 does not fit in uint32",
			decl:  "M",
		},
		{
			name:   "negative bound",
			files:  []file{{"a.banjo", "library a;\nconst int32 N = -1;\nstruct S { vector<uint8>:N v; };"}},
			kind:   reporter.ResolutionError,
			want:   "a.banjo:3:26: bound of S.v must be a positive uint32, but N is -1",
			decl:   "S",
			member: "v",
		},
		{
			name:  "missing enum member",
			files: []file{{"a.banjo", "library a;\nenum E { X = 1; };\nconst E C = E.Y;"}},
			kind:  reporter.ResolutionError,
			want:  "a.banjo:3:13: enum E has no member Y",
			decl:  "C",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			ast, err := link(t, nil, test.files...)
			assert.Nil(t, ast)

			var rerr *reporter.Error
			require.True(t, errors.As(err, &rerr), "%v", err)
			assert.Equal(t, test.kind, rerr.Kind)
			assert.Equal(t, test.want, err.Error())
			assert.Equal(t, test.decl, rerr.Decl)
			assert.Equal(t, test.member, rerr.Member)
		})
	}
}

func TestLinkOutOfLineReferences(t *testing.T) {
	t.Parallel()

	_, err := link(t, nil, file{"a.banjo", `library a;
struct Node {
    Node? next;
    vector<Node> children;
    handle<vmo> data;
};
union Tree {
    Node node;
    vector<Tree> forest;
};
`})
	require.NoError(t, err)
}

func TestLinkOrder(t *testing.T) {
	t.Parallel()

	ast, err := link(t, nil, file{"a.banjo", `library a;
struct B { A a; C? c; };
struct A { uint32 x; };
struct C { B b; };
const uint32 N = M;
const uint32 M = 4;
protocol P { Do(C c); };
`})
	require.NoError(t, err)

	var names []string
	for decl := range ast.Library("a").InOrder {
		names = append(names, decl.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "M", "N", "P"}, names)
}

func TestLinkUnusedImport(t *testing.T) {
	t.Parallel()

	var warnings []string
	handler := reporter.NewHandler(reporter.NewReporter(nil, func(w *reporter.Error) {
		warnings = append(warnings, w.Error())
	}))
	ast, err := link(t, handler,
		file{"a.banjo", "library a;\nusing b;\nusing c;\nstruct S { c.T t; };"},
		file{"b.banjo", "library b;\nstruct T {};"},
		file{"c.banjo", "library c;\nstruct T {};"},
	)
	require.NoError(t, err)
	require.NotNil(t, ast)
	assert.Equal(t, []string{"a.banjo:2:1: library b is imported but not used"}, warnings)
}

func TestLinkReportsEveryError(t *testing.T) {
	t.Parallel()

	var errs []string
	handler := reporter.NewHandler(reporter.NewReporter(func(err *reporter.Error) error {
		errs = append(errs, err.Error())
		return nil
	}, nil))
	ast, err := link(t, handler,
		file{"a.banjo", "library a;\nstruct S {};\nstruct S {};\nstruct T {};"},
		file{"b.banjo", "library a;\nstruct T {};"},
	)
	assert.Nil(t, ast)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	assert.Equal(t, []string{
		"a.banjo:3:8: S is declared more than once in library a",
		"b.banjo:2:8: T is declared more than once in library a",
	}, errs)
}
