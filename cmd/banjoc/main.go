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

// Command banjoc compiles Banjo interface definitions into C and C++
// headers, or into YAML and JSON dumps of the linked AST.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bufbuild/banjocompile"
	"github.com/bufbuild/banjocompile/internal/cli"
	"github.com/bufbuild/banjocompile/internal/ctxlog"
	"github.com/bufbuild/banjocompile/reporter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is main without the process-level concerns, for testing. Diagnostics
// are rendered to stderr; a returned *cli.ExitError with an empty message
// means they already have been.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, stderr)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cfg.NewLogger(stderr)
	ctx = ctxlog.WithLogger(ctx, logger)
	renderer := reporter.Renderer{Colorize: cli.IsTerminal(stderr) && os.Getenv("NO_COLOR") == ""}

	compiler := banjocompile.Compiler{
		MaxParallelism: cfg.Parallelism,
		Reporter: reporter.NewReporter(nil, func(w *reporter.Error) {
			_ = renderer.RenderWarning(stderr, w)
		}),
	}

	// The working directory is searched first, so that inputs named
	// relative to it are found even when -I is given.
	resolver := banjocompile.WithWellKnown(&banjocompile.SourceResolver{
		ImportPaths: append([]string{"."}, cfg.ImportPaths...),
	})
	inputs, err := compiler.Load(ctx, resolver, cfg.Inputs...)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	ast, err := compiler.Compile(ctx, inputs...)
	if err != nil {
		return failed(renderer, stderr, err)
	}

	var out bytes.Buffer
	if err := compiler.Generate(ctx, ast, cfg.Backend, &out); err != nil {
		return failed(renderer, stderr, err)
	}
	if cfg.Output == "" {
		_, err = out.WriteTo(stdout)
	} else {
		err = writeFile(cfg.Output, out.Bytes())
	}
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	logger.InfoContext(ctx, "compiled", "files", len(inputs), "backend", cfg.Backend.String(), "output", cfg.Output)
	return nil
}

func failed(renderer reporter.Renderer, stderr io.Writer, err error) error {
	if errors.Is(err, context.Canceled) {
		return &cli.ExitError{Code: 1, Message: "interrupted"}
	}
	_ = renderer.Render(stderr, err)
	return &cli.ExitError{Code: 1}
}

// writeFile writes data to a scratch file next to path and renames it over
// path, so that path is never left partially written.
func writeFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing output file: %w", err)
	}
	return nil
}
