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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/internal/cli"
)

const gpioSource = `library ddk.protocol.gpio;

using zx;

const uint32 MAX_PINS = 8;

enum Polarity : uint8 {
    LOW = 0;
    HIGH = 1;
};

struct Config {
    Polarity polarity;
    vector<uint8> data;
    string:MAX_PINS label;
};

/// Controls a GPIO.
protocol Gpio {
    Read() -> (zx.status s, uint8 value);
    Configure(Config config) -> ();
};
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	}
	return dir
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestRunC(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"gpio.banjo": gpioSource})
	out := filepath.Join(dir, "out", "gpio.h")

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "c", "-o", out, filepath.Join(dir, "gpio.banjo")})
	require.NoError(t, err, stderr.String())
	assert.Empty(t, stdout.String())

	want, err := os.ReadFile("../../testdata/compile/gpio.yaml.out")
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	// No scratch files are left behind.
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunStdout(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"sdk/a.banjo":     "library a;\nstruct A { int32 x; };\n",
		"sdk/sub/b.banjo": "library b;\nusing a;\nstruct B { a.A a; };\n",
	})

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend=json", "-o", "-", filepath.Join(dir, "sdk/**/*.banjo")})
	require.NoError(t, err, stderr.String())

	var doc struct {
		Libraries []struct {
			Name string `json:"name"`
		} `json:"libraries"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	require.Len(t, doc.Libraries, 2)
	assert.Equal(t, "a", doc.Libraries[0].Name)
	assert.Equal(t, "b", doc.Libraries[1].Name)
}

func TestRunImportPath(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"include/a.banjo": "library a;\nconst bool ON = true;\n"})

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "ast", "-I", filepath.Join(dir, "include"), "a.banjo"})
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "name: ON")
}

func TestRunManifest(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"banjo.hcl": `
backend = "ast"
output  = "${manifest_dir}/out/a.yaml"
inputs  = ["*.banjo"]
`,
		"a.banjo": "library a;\nstruct A {};\n",
	})

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-manifest", filepath.Join(dir, "banjo.hcl")})
	require.NoError(t, err, stderr.String())

	got, err := os.ReadFile(filepath.Join(dir, "out", "a.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "libraries:")

	// Flags override the manifest.
	stdout.Reset()
	err = run(t.Context(), &stdout, &stderr, []string{"-manifest", filepath.Join(dir, "banjo.hcl"), "-backend", "json", "-o", "-"})
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), `"libraries": [`)
}

func TestRunCompileError(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.banjo": "library a\nstruct A {};\n"})
	path := filepath.Join(dir, "a.banjo")

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "c", path})
	exitErr := requireExitCode(t, err, 1)
	assert.Empty(t, exitErr.Message)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "error[syntax error]: expected \";\", found keyword \"struct\"\n")
	assert.Contains(t, stderr.String(), path+":2:1\n")
}

func TestRunGenerationErrorKeepsOutput(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.banjo": "library a;\nprotocol P {\n    Bind(request<P> req);\n};\n",
		"a.h":     "old",
	})
	out := filepath.Join(dir, "a.h")

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "c", "-o", out, filepath.Join(dir, "a.banjo")})
	requireExitCode(t, err, 1)
	assert.Contains(t, stderr.String(), "error[generation error]: P.Bind.req has type request<a.P>, which the c backend does not support")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestRunWarnings(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.banjo": "library a;\nusing b;\nstruct A {};\n",
		"b.banjo": "library b;\nstruct B {};\n",
	})

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "ast", filepath.Join(dir, "*.banjo")})
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "warning: library b is imported but not used\n")
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-backend", "c", filepath.Join(t.TempDir(), "missing.banjo")})
	exitErr := requireExitCode(t, err, 1)
	assert.Contains(t, exitErr.Message, "missing.banjo")
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(t.Context(), &stdout, &stderr, nil))
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	require.NoError(t, run(t.Context(), &stdout, &stderr, []string{"-h"}))
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestRunInvalidFlags(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(t.Context(), &stdout, &stderr, []string{"-not-a-flag"})
	exitErr := requireExitCode(t, err, 2)
	assert.Contains(t, exitErr.Message, "flag provided but not defined: -not-a-flag")

	err = run(t.Context(), &stdout, &stderr, []string{"-backend", "go", "a.banjo"})
	exitErr = requireExitCode(t, err, 2)
	assert.Contains(t, exitErr.Message, `invalid backend "go"`)
}
