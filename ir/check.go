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

import (
	"fmt"

	"golang.org/x/exp/constraints" //nolint:exptostd // cmp has no Integer.
)

// CheckLiteral checks that the literal c may be assigned to a value of the
// primitive or string type ty. It returns a description of the problem, or
// "" if there is none.
func CheckLiteral(ty *Type, c *Constant) string {
	if ty.Kind == TypeString {
		if c.Kind != ConstString {
			return fmt.Sprintf("expected a string, found %s", c)
		}
		if ty.Size != nil && ty.Size.Kind == ConstInt && uint64(len(c.Str)) > ty.Size.Uint {
			return fmt.Sprintf("string of length %d exceeds bound %d", len(c.Str), ty.Size.Uint)
		}
		return ""
	}
	if ty.Kind != TypePrimitive {
		return fmt.Sprintf("type %s cannot have a constant value", ty)
	}

	prim := ty.Primitive
	switch {
	case prim == Bool:
		if c.Kind != ConstBool {
			return fmt.Sprintf("expected true or false, found %s", c)
		}
	case prim.IsIntegral():
		if c.Kind != ConstInt {
			return fmt.Sprintf("expected an integer, found %s", c)
		}
		if !prim.Fits(c.Uint, c.Negative) {
			return fmt.Sprintf("%s does not fit in %s", c, prim)
		}
	case prim.IsFloat():
		if c.Kind != ConstInt {
			return fmt.Sprintf("expected a number, found %s", c)
		}
	default:
		return fmt.Sprintf("type %s cannot have a constant value", prim)
	}
	return ""
}

// Fits returns whether the integer with the given magnitude and sign can be
// represented by p. It returns false if p is not integral.
func (p Primitive) Fits(magnitude uint64, negative bool) bool {
	switch p {
	case Int8:
		return fitsIn[int8](magnitude, negative)
	case Int16:
		return fitsIn[int16](magnitude, negative)
	case Int32:
		return fitsIn[int32](magnitude, negative)
	case Int64:
		return fitsIn[int64](magnitude, negative)
	case Uint8:
		return fitsIn[uint8](magnitude, negative)
	case Uint16:
		return fitsIn[uint16](magnitude, negative)
	case Uint32:
		return fitsIn[uint32](magnitude, negative)
	case Uint64, Usize:
		return fitsIn[uint64](magnitude, negative)
	default:
		return false
	}
}

func fitsIn[T constraints.Integer](magnitude uint64, negative bool) bool {
	if !negative {
		v := T(magnitude)
		return v >= 0 && uint64(v) == magnitude
	}
	if magnitude > 1<<63 {
		return false
	}
	signed := ^T(0) < 0
	if !signed {
		return magnitude == 0
	}
	want := -int64(magnitude)
	return int64(T(want)) == want
}
