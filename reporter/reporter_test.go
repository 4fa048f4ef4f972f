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

package reporter_test

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
)

func TestErrorFormat(t *testing.T) {
	t.Parallel()

	f := source.NewFile("a.banjo", "library a;\nstruct S {};\n")
	err := reporter.Errorf(reporter.LoweringError, f.Span(18, 19), "bad %s", "thing").InDecl("S", "x")

	assert.Equal(t, "a.banjo:2:8: bad thing", err.Error())
	assert.Equal(t, reporter.StageLowering, err.Stage())
	assert.Equal(t, "S", err.Decl)
	assert.Equal(t, "x", err.Member)

	var target *reporter.Error
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &target)
	assert.Same(t, err, target)

	noSpan := reporter.Errorf(reporter.GenerationError, nil, "nope").InFile("b.banjo")
	assert.Equal(t, "b.banjo: nope", noSpan.Error())
	assert.Equal(t, reporter.StageGeneration, noSpan.Stage())

	wrapped := reporter.Wrap(reporter.GenerationError, io.ErrShortWrite, "writing output")
	assert.ErrorIs(t, wrapped, io.ErrShortWrite)
}

func TestKindStages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, reporter.StageSyntax, reporter.SyntaxError.Stage())
	assert.Equal(t, reporter.StageLowering, reporter.LoweringError.Stage())
	for _, kind := range []reporter.Kind{
		reporter.DependencyError, reporter.ResolutionError,
		reporter.DuplicateError, reporter.CycleError,
	} {
		assert.Equal(t, reporter.StageAssembly, kind.Stage(), kind.String())
	}
	assert.Equal(t, reporter.StageGeneration, reporter.GenerationError.Stage())
	assert.Equal(t, reporter.StageUnknown, reporter.InternalError.Stage())
	assert.Equal(t, "Kind(0)", reporter.Kind(0).String())
}

func TestHandlerFirstErrorWins(t *testing.T) {
	t.Parallel()

	h := reporter.NewHandler(nil)
	first := reporter.Errorf(reporter.ResolutionError, nil, "first")
	second := reporter.Errorf(reporter.ResolutionError, nil, "second")

	assert.Equal(t, first, h.HandleError(first))
	assert.Equal(t, first, h.HandleError(second))
	assert.Equal(t, first, h.Error())
}

func TestHandlerSwallowedErrors(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		errs     []string
		warnings []string
	)
	rep := reporter.NewReporter(
		func(err *reporter.Error) error {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err.Message)
			return nil
		},
		func(err *reporter.Error) {
			mu.Lock()
			defer mu.Unlock()
			warnings = append(warnings, err.Message)
		},
	)

	h := reporter.NewHandler(rep)
	require.NoError(t, h.HandleError(reporter.Errorf(reporter.CycleError, nil, "a")))
	require.NoError(t, h.HandleError(reporter.Errorf(reporter.CycleError, nil, "b")))
	h.HandleWarning(reporter.Errorf(reporter.DependencyError, nil, "unused"))

	assert.Equal(t, []string{"a", "b"}, errs)
	assert.Equal(t, []string{"unused"}, warnings)
	assert.ErrorIs(t, h.Error(), reporter.ErrInvalidSource)

	plain := errors.New("io failure")
	assert.Equal(t, plain, reporter.NewHandler(nil).HandleError(plain))
}

func TestRender(t *testing.T) {
	t.Parallel()

	f := source.NewFile("a.banjo", "library a;\n\tstruct S { int32 x };\n")
	err := reporter.Errorf(reporter.SyntaxError, f.Span(31, 32), `expected ";", found "}"`).
		Note(f.Span(12, 18), "in this struct")

	out := reporter.Renderer{}.RenderString(err, "error")
	assert.Equal(t, `error[syntax error]: expected ";", found "}"
 --> a.banjo:2:24
  |
2 |     struct S { int32 x };
  |                        ^
 --> a.banjo:2:5
  |
2 |     struct S { int32 x };
  |     ^^^^^^ in this struct
`, out)

	plain := reporter.Renderer{}.RenderString(errors.New("boom"), "error")
	assert.Equal(t, "error: boom\n", plain)
}
