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

package ir

import "github.com/bufbuild/banjocompile/source"

// DocAttribute is the attribute that `///` doc comments lower to.
const DocAttribute = "Doc"

// Attribute is a single key-value attribute. Attributes written without a
// value have an empty Value.
type Attribute struct {
	Name, Value string
	Span        source.Span
}

// Attributes is an ordered list of attributes, in source order. Lowering
// guarantees that names are unique.
type Attributes []Attribute

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has returns whether the named attribute is present.
func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Doc returns the documentation for an element, or "".
func (a Attributes) Doc() string {
	doc, _ := a.Get(DocAttribute)
	return doc
}
