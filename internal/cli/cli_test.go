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

package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/backend"
)

func TestParse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.banjo", "b.banjo", "sub/c.banjo", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{
		"-backend", "cpp_i",
		"-I", "include", "-I", "/opt/banjo",
		"-j", "3",
		"-log-level", "DEBUG",
		"-log-format", "json",
		filepath.Join(dir, "**", "*.banjo"),
		filepath.Join(dir, "a.banjo"),
		"zx/zx.banjo",
	}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, &Config{
		Backend: backend.CPPInternal,
		Inputs: []string{
			filepath.Join(dir, "a.banjo"),
			filepath.Join(dir, "b.banjo"),
			filepath.Join(dir, "sub", "c.banjo"),
			filepath.Join("zx", "zx.banjo"),
		},
		ImportPaths: []string{"include", "/opt/banjo"},
		LogLevel:    slog.LevelDebug,
		LogFormat:   "json",
		Parallelism: 3,
	}, cfg)
	assert.Empty(t, out.String())
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "banjo.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
backend      = "c"
output       = "out/gpio.h"
inputs       = ["gpio.banjo"]
import_paths = ["include"]
log_level    = "info"
parallelism  = 2
`), 0o600))

	cfg, _, err := Parse([]string{"-manifest", path}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Backend:     backend.C,
		Output:      filepath.Join(dir, "out", "gpio.h"),
		Inputs:      []string{filepath.Join(dir, "gpio.banjo")},
		ImportPaths: []string{filepath.Join(dir, "include")},
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
		Parallelism: 2,
	}, cfg)

	cfg, _, err = Parse([]string{
		"-manifest", path,
		"-backend", "json",
		"-o", "-",
		"-I", "extra",
		"-log-level", "error",
		"-j", "0",
		"other.banjo",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Backend:     backend.JSON,
		Inputs:      []string{"other.banjo"},
		ImportPaths: []string{"extra", filepath.Join(dir, "include")},
		LogLevel:    slog.LevelError,
		LogFormat:   "text",
	}, cfg)
}

func TestParseUsage(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"-h"}, {"-help"}} {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(args, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "c, cpp, cpp-internal, ast, json, rust")
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "unknown flag",
			args: []string{"-x"},
			want: "flag provided but not defined: -x",
		},
		{
			name: "missing backend",
			args: []string{"a.banjo"},
			want: "missing -backend: must be one of c, cpp, cpp-internal, ast, json, rust",
		},
		{
			name: "unknown backend",
			args: []string{"-backend", "go", "a.banjo"},
			want: `invalid backend "go": must be one of c, cpp, cpp-internal, ast, json, rust`,
		},
		{
			name: "no inputs",
			args: []string{"-backend", "c"},
			want: "no input files",
		},
		{
			name: "bad glob",
			args: []string{"-backend", "c", "[a.banjo"},
			want: `invalid glob "[a.banjo"`,
		},
		{
			name: "glob matches nothing",
			args: []string{"-backend", "c", "testdata/nothing/*.banjo"},
			want: `no files match "testdata/nothing/*.banjo"`,
		},
		{
			name: "log level",
			args: []string{"-backend", "c", "-log-level", "trace", "a.banjo"},
			want: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'",
		},
		{
			name: "log format",
			args: []string{"-backend", "c", "-log-format", "xml", "a.banjo"},
			want: "invalid log-format: must be 'text' or 'json'",
		},
		{
			name: "parallelism",
			args: []string{"-backend", "c", "-j", "-1", "a.banjo"},
			want: "invalid -j: must not be negative",
		},
		{
			name: "missing manifest",
			args: []string{"-manifest", "testdata/missing.hcl"},
			want: "failed to read manifest",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg := &Config{LogLevel: slog.LevelInfo, LogFormat: "json"}
	logger := cfg.NewLogger(&out)
	logger.Debug("hidden")
	logger.Info("compiled", "files", 2)
	assert.Contains(t, out.String(), `"msg":"compiled","files":2`)
	assert.NotContains(t, out.String(), "hidden")

	out.Reset()
	cfg.LogFormat = "text"
	cfg.NewLogger(&out).Warn("slow", "path", "a.banjo")
	assert.Contains(t, out.String(), "level=WARN msg=slow path=a.banjo")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(&bytes.Buffer{}))
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
