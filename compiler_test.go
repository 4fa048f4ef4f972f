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

package banjocompile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/banjocompile/backend"
	"github.com/bufbuild/banjocompile/internal/golden"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// compileCase is the schema of the files under testdata/compile.
type compileCase struct {
	// If set, the named backend is run on the linked AST.
	Backend string        `yaml:"backend"`
	Files   []compileFile `yaml:"files"`
}

type compileFile struct {
	Path string `yaml:"path"`
	Text string `yaml:"text"`
}

func TestCompileGolden(t *testing.T) {
	t.Parallel()

	corpus := golden.Corpus{
		Root:      "testdata/compile",
		Refresh:   "BANJOCOMPILE_REFRESH",
		Extension: "yaml",
		Outputs: []golden.Output{
			{Extension: "stderr.txt"},
			{Extension: "out"},
		},
		Test: func(t *testing.T, path, text string) []string {
			var tc compileCase
			require.NoError(t, yaml.Unmarshal([]byte(text), &tc), "parsing %s", path)

			inputs := make([]Input, 0, len(tc.Files))
			for _, f := range tc.Files {
				inputs = append(inputs, Input{Path: f.Path, Text: f.Text})
			}

			var compiler Compiler
			ctx := t.Context()
			ast, err := compiler.Compile(ctx, inputs...)
			if err != nil {
				return []string{err.Error() + "\n", ""}
			}
			if tc.Backend == "" {
				return []string{"", ""}
			}
			kind, err := backend.ParseKind(tc.Backend)
			require.NoError(t, err)

			var out bytes.Buffer
			if err := compiler.Generate(ctx, ast, kind, &out); err != nil {
				return []string{err.Error() + "\n", ""}
			}
			return []string{"", out.String()}
		},
	}
	corpus.Run(t)
}

func TestCompileAcrossLibraries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, canvas string
		hasResponse  bool
	}{
		{
			name:   "protocol",
			canvas: "library pkg.b;\nusing pkg.a;\nprotocol Canvas {\n    Draw(pkg.a.Point pt);\n};\n",
		},
		{
			name:        "interface",
			canvas:      "library pkg.b;\nusing pkg.a;\ninterface Canvas { Draw(pkg.a.Point pt) -> (); };\n",
			hasResponse: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var compiler Compiler
			ast, err := compiler.Compile(t.Context(),
				Input{Path: "b.banjo", Text: test.canvas},
				Input{Path: "a.banjo", Text: "library pkg.a;\nstruct Point { int32 x; int32 y; };\n"},
			)
			require.NoError(t, err)

			var names []string
			for lib := range ast.InOrder {
				names = append(names, lib.Name)
			}
			assert.Equal(t, []string{"pkg.a", "pkg.b"}, names)

			canvas, ok := ast.Lookup("pkg.b.Canvas")
			require.True(t, ok)
			require.Equal(t, ir.DeclInterface, canvas.Kind)
			draw := canvas.Interface.Methods[0]
			assert.Equal(t, "pkg.a.Point", draw.Request[0].Type.Format(ast))
			assert.Equal(t, test.hasResponse, draw.HasResponse)
			assert.Empty(t, draw.Response)

			var buf bytes.Buffer
			require.NoError(t, backend.Generate(ast, backend.AST, &buf))
			var dump struct {
				Libraries []struct {
					Name         string `yaml:"name"`
					Declarations []struct {
						FQN     string `yaml:"fqn"`
						Methods []struct {
							Name     string `yaml:"name"`
							Request  []struct {
								Name string `yaml:"name"`
								Type string `yaml:"type"`
							} `yaml:"request"`
							Response []struct {
								Name string `yaml:"name"`
							} `yaml:"response"`
						} `yaml:"methods"`
					} `yaml:"declarations"`
				} `yaml:"libraries"`
			}
			require.NoError(t, yaml.Unmarshal(buf.Bytes(), &dump))
			require.Len(t, dump.Libraries, 2)
			lib := dump.Libraries[0]
			if lib.Name != "pkg.b" {
				lib = dump.Libraries[1]
			}
			assert.Equal(t, "pkg.b", lib.Name)
			require.Len(t, lib.Declarations, 1)
			assert.Equal(t, "pkg.b.Canvas", lib.Declarations[0].FQN)
			require.Len(t, lib.Declarations[0].Methods, 1)
			method := lib.Declarations[0].Methods[0]
			assert.Equal(t, "Draw", method.Name)
			require.Len(t, method.Request, 1)
			assert.Equal(t, "pt", method.Request[0].Name)
			assert.Equal(t, "pkg.a.Point", method.Request[0].Type)
			assert.Empty(t, method.Response)
		})
	}
}

func TestCompileFirstErrorInInputOrder(t *testing.T) {
	t.Parallel()

	inputs := []Input{
		{Path: "a.banjo", Text: "library a;\nstruct S { int32 x; bool x; };\n"},
		{Path: "b.banjo", Text: "library a\nstruct A {};\n"},
		{Path: "c.banjo", Text: "library a;\nmessage C {};\n"},
	}
	for _, par := range []int{1, 2, 8} {
		compiler := Compiler{MaxParallelism: par}
		ast, err := compiler.Compile(t.Context(), inputs...)
		assert.Nil(t, ast)
		require.Error(t, err)
		assert.Equal(t, `a.banjo:2:26: duplicate member "x" in S`, err.Error(), "parallelism %d", par)
	}
}

func TestCompileWellKnown(t *testing.T) {
	t.Parallel()

	input := Input{Path: "a.banjo", Text: "library a;\nusing zx;\nstruct S { zx.status s; };\n"}

	var compiler Compiler
	ast, err := compiler.Compile(t.Context(), input)
	require.NoError(t, err)
	assert.NotNil(t, ast.Library("zx"))

	compiler = Compiler{NoWellKnown: true}
	_, err = compiler.Compile(t.Context(), input)
	require.Error(t, err)
	assert.Equal(t, "a.banjo:2:1: imported library zx is not declared by any input file", err.Error())

	// A zx supplied by the caller replaces the embedded one.
	var compiler2 Compiler
	ast, err = compiler2.Compile(t.Context(), input,
		Input{Path: "my_zx.banjo", Text: "library zx;\nusing status = int32;\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"my_zx.banjo"}, ast.Library("zx").Files)
}

func TestCompileCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var compiler Compiler
	_, err := compiler.Compile(ctx, Input{Path: "a.banjo", Text: "library a;\n"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestParse(t *testing.T) {
	t.Parallel()

	var compiler Compiler
	units, err := compiler.Parse(t.Context(),
		Input{Path: "a.banjo", Text: "library a;\nconst uint32 N = 1;\n"},
		Input{Path: "b.banjo", Text: "library b;\nusing a;\nstruct B { a.T t; };\n"},
	)
	require.NoError(t, err)
	require.Len(t, units, 2)

	type summary struct {
		Library string
		Imports []string
		Decls   []string
	}
	got := make([]summary, 0, len(units))
	for _, unit := range units {
		s := summary{Library: unit.Library}
		for _, imp := range unit.Imports {
			s.Imports = append(s.Imports, imp.Library)
		}
		for _, decl := range unit.Decls {
			s.Decls = append(s.Decls, decl.Name)
		}
		got = append(got, s)
	}
	want := []summary{
		{Library: "a", Decls: []string{"N"}},
		{Library: "b", Imports: []string{"a"}, Decls: []string{"B"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/gpio.banjo": "library gpio;\nusing zx;\nprotocol Gpio {\n    Read() -> (zx.status s);\n};\n",
	}
	accessor := func(path string) (io.ReadCloser, error) {
		text, ok := files[path]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return io.NopCloser(strings.NewReader(text)), nil
	}
	resolver := WithWellKnown(&SourceResolver{ImportPaths: []string{"include", "src"}, Accessor: accessor})

	compiler := Compiler{NoWellKnown: true}
	inputs, err := compiler.Load(t.Context(), resolver, "gpio.banjo", "zx/zx.banjo")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "gpio.banjo", inputs[0].Path)
	assert.Equal(t, files["src/gpio.banjo"], inputs[0].Text)
	assert.Contains(t, inputs[1].Text, "library zx;")

	ast, err := compiler.Compile(t.Context(), inputs...)
	require.NoError(t, err)
	assert.NotNil(t, ast.Library("zx"))

	_, err = compiler.Load(t.Context(), resolver, "missing.banjo")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()

	_, err := CompositeResolver(nil).FindFileByPath("a.banjo")
	require.ErrorIs(t, err, fs.ErrNotExist)

	first := errors.New("first")
	res := CompositeResolver{
		ResolverFunc(func(string) (SearchResult, error) { return SearchResult{}, first }),
		ResolverFunc(func(string) (SearchResult, error) { return SearchResult{}, errors.New("second") }),
	}
	_, err = res.FindFileByPath("a.banjo")
	require.ErrorIs(t, err, first)

	res = append(res, ResolverFunc(func(path string) (SearchResult, error) {
		return SearchResult{Source: strings.NewReader("library " + strings.TrimSuffix(path, ".banjo") + ";")}, nil
	}))
	found, err := res.FindFileByPath("a.banjo")
	require.NoError(t, err)
	text, err := io.ReadAll(found.Source)
	require.NoError(t, err)
	assert.Equal(t, "library a;", string(text))
}

func TestGuard(t *testing.T) {
	t.Parallel()

	err := guard(func() error { panic("boom") })
	var rerr *reporter.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, reporter.InternalError, rerr.Kind)
	assert.Contains(t, rerr.Message, "panic: boom")
}
