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

// Package cli parses the banjoc command line and manifest into a [Config],
// and defines the errors that carry the process exit code.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bufbuild/banjocompile/backend"
	"github.com/bufbuild/banjocompile/internal/manifest"
)

// ExitError is an error that carries the exit code the process should use.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Config is a validated banjoc invocation.
type Config struct {
	Backend backend.Kind
	// The output file. Empty means standard output.
	Output string
	// Input files, with globs expanded.
	Inputs      []string
	ImportPaths []string
	LogLevel    slog.Level
	// "text" or "json".
	LogFormat   string
	Parallelism int
}

// stringsFlag is a repeatable string flag.
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringsFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Parse processes command-line arguments. It returns the config, whether the
// program should exit cleanly without doing anything, or an *ExitError.
//
// Flags take precedence over the values in a manifest.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("banjoc", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, `
banjoc - compiles Banjo interface definitions.

Usage:
  banjoc [options] [FILE or GLOB ...]

Backends:
  %s

Options:
`, strings.Join(backendNames(), ", "))
		flagSet.PrintDefaults()
	}

	backendFlag := flagSet.String("backend", "", "The backend to generate output with.")
	outputFlag := flagSet.String("o", "", "The output file. Unset or '-' writes to standard output.")
	manifestFlag := flagSet.String("manifest", "", "Path to an HCL manifest ("+manifest.FileName+") supplying defaults for these options.")
	var importPaths stringsFlag
	flagSet.Var(&importPaths, "I", "A directory to search for input files. May be repeated.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	parallelismFlag := flagSet.Int("j", 0, "Maximum number of files to parse at once. 0 uses every CPU.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	m := &manifest.Manifest{}
	if *manifestFlag != "" {
		var err error
		if m, err = manifest.Load(*manifestFlag); err != nil {
			return nil, false, usageError("%s", err.Error())
		}
	}

	pick := func(name, flagValue, manifestValue string) string {
		if set[name] || manifestValue == "" {
			return flagValue
		}
		return manifestValue
	}

	patterns := flagSet.Args()
	if len(patterns) == 0 {
		patterns = m.Inputs
	}
	if len(patterns) == 0 && *backendFlag == "" && m.Backend == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	backendName := pick("backend", *backendFlag, m.Backend)
	if backendName == "" {
		return nil, false, usageError("missing -backend: must be one of %s", strings.Join(backendNames(), ", "))
	}
	kind, err := backend.ParseKind(backendName)
	if err != nil {
		return nil, false, usageError("invalid backend %q: must be one of %s", backendName, strings.Join(backendNames(), ", "))
	}

	if len(patterns) == 0 {
		return nil, false, usageError("no input files")
	}
	inputs, err := expand(patterns)
	if err != nil {
		return nil, false, err
	}

	level, err := parseLevel(pick("log-level", *logLevelFlag, m.LogLevel))
	if err != nil {
		return nil, false, err
	}
	logFormat := strings.ToLower(pick("log-format", *logFormatFlag, m.LogFormat))
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	parallelism := *parallelismFlag
	if !set["j"] && m.Parallelism != 0 {
		parallelism = m.Parallelism
	}
	if parallelism < 0 {
		return nil, false, usageError("invalid -j: must not be negative")
	}

	out := pick("o", *outputFlag, m.Output)
	if out == "-" {
		out = ""
	}

	return &Config{
		Backend:     kind,
		Output:      out,
		Inputs:      inputs,
		ImportPaths: append(importPaths, m.ImportPaths...),
		LogLevel:    level,
		LogFormat:   logFormat,
		Parallelism: parallelism,
	}, false, nil
}

// NewLogger returns a logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
}

// expand expands doublestar globs in patterns. A pattern that matches
// nothing is kept as is, so that it can still be found on an import path.
// Matches of each pattern are sorted, and files named more than once are
// only compiled once.
func expand(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, usageError("invalid glob %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &ExitError{Code: 1, Message: fmt.Sprintf("expanding %q: %v", pattern, err)}
		}
		if len(matches) == 0 {
			if hasMeta(pattern) {
				return nil, usageError("no files match %q", pattern)
			}
			add(pattern)
			continue
		}
		slices.Sort(matches)
		for _, match := range matches {
			add(match)
		}
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{`)
}

func backendNames() []string {
	kinds := backend.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// IsTerminal reports whether w is a character device, such as a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
