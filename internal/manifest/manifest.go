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

// Package manifest loads banjoc project manifests.
//
// A manifest is an HCL file, conventionally named banjo.hcl, holding the same
// settings as the banjoc command line:
//
//	backend      = "c"
//	output       = "${manifest_dir}/out/gpio.h"
//	inputs       = ["sdk/**/*.banjo"]
//	import_paths = ["${manifest_dir}/include"]
//	log_level    = "info"
//
// Expressions may refer to manifest_dir, the directory containing the
// manifest. Relative paths are relative to that directory, not to the
// working directory.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// FileName is the conventional name of a manifest.
const FileName = "banjo.hcl"

// Manifest is a decoded manifest. Unset fields are zero.
type Manifest struct {
	Backend     string   `hcl:"backend,optional"`
	Output      string   `hcl:"output,optional"`
	Inputs      []string `hcl:"inputs,optional"`
	ImportPaths []string `hcl:"import_paths,optional"`
	LogLevel    string   `hcl:"log_level,optional"`
	LogFormat   string   `hcl:"log_format,optional"`
	Parallelism int      `hcl:"parallelism,optional"`

	// The absolute directory containing the manifest.
	Dir string
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes the manifest src, which was read from path.
func Parse(path string, src []byte) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	// Made absolute so that interpolating manifest_dir yields a path that
	// resolve leaves alone.
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to locate manifest %s: %w", path, err)
	}
	m := &Manifest{Dir: dir}
	if diags := gohcl.DecodeBody(file.Body, evalContext(dir), m); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}
	if m.Parallelism < 0 {
		return nil, fmt.Errorf("manifest %s: parallelism must not be negative, got %d", path, m.Parallelism)
	}

	if m.Output != "" && m.Output != "-" {
		m.Output = m.resolve(m.Output)
	}
	for i, input := range m.Inputs {
		m.Inputs[i] = m.resolve(input)
	}
	for i, dir := range m.ImportPaths {
		m.ImportPaths[i] = m.resolve(dir)
	}
	return m, nil
}

func evalContext(dir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"manifest_dir": cty.StringVal(dir),
		},
	}
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
