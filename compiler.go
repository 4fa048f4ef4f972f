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
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/banjocompile/backend"
	"github.com/bufbuild/banjocompile/internal/ctxlog"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/linker"
	"github.com/bufbuild/banjocompile/lower"
	"github.com/bufbuild/banjocompile/parser"
	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
	"github.com/bufbuild/banjocompile/wellknown"
)

// Input is a single Banjo source file.
type Input struct {
	// The path used in diagnostics. It need not exist on disk.
	Path string
	Text string
}

// Compiler turns Banjo source files into a linked AST, and linked ASTs into
// generated code.
//
// The compilation process involves four steps:
//  1. Parsing each file into a parse tree.
//  2. Lowering each parse tree into unresolved declarations.
//  3. Linking every file's declarations into one AST, resolving references.
//  4. Generating code for the AST with one backend.
//
// The first two steps run in parallel, one task per file. Linking is a single
// serialization point; it begins once every file has been lowered.
//
// The zero value is ready to use.
type Compiler struct {
	// The maximum parallelism to use when parsing and lowering. If
	// unspecified or set to a non-positive value, then
	// min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified a default reporter
	// is used. A default reporter fails the compilation after encountering
	// any error and ignores all warnings.
	Reporter reporter.Reporter
	// Debug records for each stage are logged here. If nil, the logger in
	// the context passed to each method is used, if any.
	Logger *slog.Logger

	// If set, the embedded zx library is not added to compilations that
	// import zx without supplying it.
	NoWellKnown bool
}

// Parse parses and lowers inputs, returning one unit per input in the same
// order.
//
// If more than one file has an error, the error reported first is the one
// for the file that comes first in inputs, regardless of which task found
// its error first.
func (c *Compiler) Parse(ctx context.Context, inputs ...Input) ([]*ir.Unit, error) {
	return c.parse(ctx, reporter.NewHandler(c.Reporter), inputs)
}

// Compile parses, lowers and links inputs.
//
// On failure, the returned error is the first error found, and the AST is
// nil: a partially linked AST is never returned.
func (c *Compiler) Compile(ctx context.Context, inputs ...Input) (*ir.AST, error) {
	logger := c.logger(ctx)
	h := reporter.NewHandler(c.Reporter)

	units, err := c.parse(ctx, h, inputs)
	if err != nil {
		return nil, err
	}
	if extra, err := c.wellKnown(ctx, units); err != nil {
		return nil, err
	} else if extra != nil {
		units = append(units, extra)
	}

	var ast *ir.AST
	err = guard(func() error {
		var err error
		ast, err = linker.Link(units, h)
		return err
	})
	if err != nil {
		return nil, h.HandleError(err)
	}
	logger.DebugContext(ctx, "linked", "files", len(units), "libraries", len(ast.Libraries))
	return ast, nil
}

// Generate writes the output of the given backend for ast to w.
//
// The backend renders its whole output before writing any of it, so a
// generation error never leaves partial output in w. Errors from w itself
// may.
func (c *Compiler) Generate(ctx context.Context, ast *ir.AST, kind backend.Kind, w io.Writer) error {
	err := guard(func() error {
		return backend.Generate(ast, kind, w)
	})
	if err != nil {
		return err
	}
	c.logger(ctx).DebugContext(ctx, "generated", "backend", kind.String())
	return nil
}

// Load reads the text of each path using r.
func (c *Compiler) Load(ctx context.Context, r Resolver, paths ...string) ([]Input, error) {
	logger := c.logger(ctx)
	inputs := make([]Input, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.FindFileByPath(path)
		if err != nil {
			return nil, err
		}
		text, err := io.ReadAll(res.Source)
		if closer, ok := res.Source.(io.Closer); ok {
			_ = closer.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		inputs[i] = Input{Path: path, Text: string(text)}
		logger.DebugContext(ctx, "loaded file", "path", path, "bytes", len(text))
	}
	return inputs, nil
}

func (c *Compiler) logger(ctx context.Context) *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return ctxlog.FromContext(ctx)
}

func (c *Compiler) parallelism() int {
	par := c.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}
	return par
}

func (c *Compiler) parse(ctx context.Context, h *reporter.Handler, inputs []Input) ([]*ir.Unit, error) {
	logger := c.logger(ctx)
	sem := semaphore.NewWeighted(int64(c.parallelism()))
	grp, grpCtx := errgroup.WithContext(ctx)

	// Results are stored by index so that they can be reported in input
	// order once every task is done.
	units := make([]*ir.Unit, len(inputs))
	errs := make([]error, len(inputs))
	for i, input := range inputs {
		if err := sem.Acquire(grpCtx, 1); err != nil {
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			errs[i] = guard(func() error {
				var err error
				units[i], err = parseOne(ctx, logger, input)
				return err
			})
			if errs[i] == nil {
				logger.DebugContext(ctx, "lowered file", "path", input.Path, "library", units[i].Library)
			}
			return nil
		})
	}
	// Tasks never fail the group; only cancellation can.
	_ = grp.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err == nil {
			continue
		}
		if err := h.HandleError(err); err != nil {
			return nil, err
		}
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	return units, nil
}

func parseOne(ctx context.Context, logger *slog.Logger, input Input) (*ir.Unit, error) {
	file, err := parser.Parse(source.NewFile(input.Path, input.Text))
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "parsed file", "path", input.Path)
	return lower.Lower(file)
}

// wellKnown returns the unit for the embedded zx library if units import it
// but none of them declare it.
func (c *Compiler) wellKnown(ctx context.Context, units []*ir.Unit) (*ir.Unit, error) {
	if c.NoWellKnown {
		return nil, nil
	}
	imported := false
	for _, unit := range units {
		if unit.Library == wellknown.ZX {
			return nil, nil
		}
		imported = imported || slices.ContainsFunc(unit.Imports, func(imp ir.Import) bool {
			return imp.Library == wellknown.ZX
		})
	}
	if !imported {
		return nil, nil
	}

	path, text, ok := wellknown.Source(wellknown.ZX)
	if !ok {
		return nil, reporter.Errorf(reporter.InternalError, nil, "missing embedded %s library", wellknown.ZX)
	}
	var unit *ir.Unit
	err := guard(func() error {
		var err error
		unit, err = parseOne(ctx, c.logger(ctx), Input{Path: path, Text: text})
		return err
	})
	if err != nil {
		return nil, err
	}
	c.logger(ctx).DebugContext(ctx, "added well-known library", "library", wellknown.ZX, "path", path)
	return unit, nil
}

// guard runs f, converting a panic into an internal error.
func guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = reporter.Errorf(reporter.InternalError, nil, "panic: %v\n%s", r, debug.Stack())
		}
	}()
	return f()
}
