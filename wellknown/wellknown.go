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

// Package wellknown provides the source of libraries that every Banjo
// compilation may import without supplying them, which today is only zx.
package wellknown

import (
	"embed"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed zx/*.banjo
var files embed.FS

// ZX is the name of the kernel types library.
const ZX = "zx"

// Path returns the path under which the source of library is embedded,
// and whether it is well known.
func Path(library string) (string, bool) {
	p := path.Join(strings.ReplaceAll(library, ".", "/"), library+".banjo")
	if _, err := fs.Stat(files, p); err != nil {
		return "", false
	}
	return p, true
}

// Source returns the embedded source of a well-known library.
func Source(library string) (filePath, text string, ok bool) {
	filePath, ok = Path(library)
	if !ok {
		return "", "", false
	}
	data, err := files.ReadFile(filePath)
	if err != nil {
		return "", "", false
	}
	return filePath, string(data), true
}

// Open opens an embedded file by path. It has the signature of a
// SourceResolver accessor, so that well-known libraries can be loaded like
// any other file.
func Open(filePath string) (io.ReadCloser, error) {
	return files.Open(filePath)
}

// Libraries returns the names of every well-known library, sorted. Only
// single-component library names are supported.
func Libraries() []string {
	entries, _ := fs.ReadDir(files, ".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
