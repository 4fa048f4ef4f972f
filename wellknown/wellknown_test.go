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

package wellknown_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/linker"
	"github.com/bufbuild/banjocompile/lower"
	"github.com/bufbuild/banjocompile/parser"
	"github.com/bufbuild/banjocompile/wellknown"
)

func TestZX(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"zx"}, wellknown.Libraries())

	path, text, ok := wellknown.Source(wellknown.ZX)
	require.True(t, ok)
	assert.Equal(t, "zx/zx.banjo", path)

	// The embedded library must compile on its own.
	file, err := parser.ParseString(path, text)
	require.NoError(t, err)
	unit, err := lower.Lower(file)
	require.NoError(t, err)
	assert.Equal(t, "zx", unit.Library)

	ast, err := linker.Link([]*ir.Unit{unit}, nil)
	require.NoError(t, err)
	status, ok := ast.Lookup("zx.status")
	require.True(t, ok)
	assert.Equal(t, ir.DeclAlias, status.Kind)
	assert.Equal(t, "int32", status.Alias.Target.String())
	assert.Equal(t, " A kernel status code. Negative values are errors.", status.Attributes.Doc())

	for _, name := range []string{"time", "duration", "koid", "vaddr", "paddr", "paddr32", "gpaddr", "off", "signals"} {
		_, ok := ast.Lookup("zx." + name)
		assert.True(t, ok, name)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	_, text, ok := wellknown.Source(wellknown.ZX)
	require.True(t, ok)

	rc, err := wellknown.Open("zx/zx.banjo")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))

	_, ok = wellknown.Path("ddk.protocol.gpio")
	assert.False(t, ok)
	_, err = wellknown.Open("nope.banjo")
	assert.Error(t, err)
}
