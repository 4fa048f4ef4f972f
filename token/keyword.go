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

package token

// Keyword is a reserved word of the Banjo language.
//
// Keywords are contextual: the lexer produces identifiers, and the parser
// decides whether an identifier acts as a keyword. Using a keyword as the
// name of a declaration or member is rejected during lowering.
type Keyword int8

const (
	Unknown Keyword = iota

	Library
	Using
	As
	Const
	Enum
	Struct
	Union
	Interface
	Protocol
	True
	False

	// Primitive type names.
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Usize
	Voidptr

	// Type constructors.
	StringType
	Vector
	Array
	Handle
	Request

	keywordCount
)

// keywords is indexed by Keyword. It is the single, read-only table from
// which both Lookup and Keyword.String are derived.
var keywords = [keywordCount]string{
	Library:    "library",
	Using:      "using",
	As:         "as",
	Const:      "const",
	Enum:       "enum",
	Struct:     "struct",
	Union:      "union",
	Interface:  "interface",
	Protocol:   "protocol",
	True:       "true",
	False:      "false",
	Bool:       "bool",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	Usize:      "usize",
	Voidptr:    "voidptr",
	StringType: "string",
	Vector:     "vector",
	Array:      "array",
	Handle:     "handle",
	Request:    "request",
}

// Lookup returns the keyword spelled by text, or [Unknown].
func Lookup(text string) Keyword {
	switch text {
	case "library":
		return Library
	case "using":
		return Using
	case "as":
		return As
	case "const":
		return Const
	case "enum":
		return Enum
	case "struct":
		return Struct
	case "union":
		return Union
	case "interface":
		return Interface
	case "protocol":
		return Protocol
	case "true":
		return True
	case "false":
		return False
	case "bool":
		return Bool
	case "int8":
		return Int8
	case "int16":
		return Int16
	case "int32":
		return Int32
	case "int64":
		return Int64
	case "uint8":
		return Uint8
	case "uint16":
		return Uint16
	case "uint32":
		return Uint32
	case "uint64":
		return Uint64
	case "float32":
		return Float32
	case "float64":
		return Float64
	case "usize":
		return Usize
	case "voidptr":
		return Voidptr
	case "string":
		return StringType
	case "vector":
		return Vector
	case "array":
		return Array
	case "handle":
		return Handle
	case "request":
		return Request
	default:
		return Unknown
	}
}

// String implements [fmt.Stringer].
func (k Keyword) String() string {
	if k <= Unknown || k >= keywordCount {
		return "<unknown>"
	}
	return keywords[k]
}

// IsPrimitive returns whether this keyword names a primitive type.
func (k Keyword) IsPrimitive() bool {
	return k >= Bool && k <= Voidptr
}

// IsReserved returns whether text may not be used as an identifier.
func IsReserved(text string) bool {
	return Lookup(text) != Unknown
}
