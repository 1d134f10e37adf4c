// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package dtype implements the engine's closed logical type set and
// the type-erased value carrier (Variant) used at column boundaries.
//
// The tag-dispatched Resolve function is the Go rendering of the
// source's make_by_data_type / resolve_data_type pivot: since Go
// cannot late-bind a generic type parameter from a runtime string,
// callers implement a Visitor whose five methods each close over the
// concrete type statically, and Resolve just picks the matching arm.
package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Tag is the stable string identifier for a logical column type, as
// it appears at the external boundary (column type strings).
type Tag string

// The closed set of logical column types.
const (
	Int    Tag = "int"
	Long   Tag = "long"
	Float  Tag = "float"
	Double Tag = "double"
	String Tag = "string"
)

// Valid reports whether t is one of the five closed logical types.
func (t Tag) Valid() bool {
	switch t {
	case Int, Long, Float, Double, String:
		return true
	default:
		return false
	}
}

// ErrTypeCastFailed indicates a Variant's contents could not be cast
// to the requested logical type (spec error kind 3).
var ErrTypeCastFailed = errors.New("dtype: type cast failed")

// ErrUnknownType indicates a type tag outside the closed set.
var ErrUnknownType = errors.New("dtype: unknown type tag")

// Value enumerates the concrete Go types backing the closed logical
// type set.
type Value interface {
	constraints.Integer | constraints.Float | ~string
}

// Variant is a type-erased carrier for exactly one value of one of
// the closed logical types.
type Variant struct {
	tag Tag
	val any
}

// NewVariant wraps val, tagged as the logical type tag. It does not
// validate that val's dynamic type matches tag; that is TypeCast's job.
func NewVariant(tag Tag, val any) Variant {
	return Variant{tag: tag, val: val}
}

// VariantFrom wraps a concrete T as a Variant, tagging it with T's
// logical type.
func VariantFrom[T Value](v T) Variant {
	return Variant{tag: TagOf[T](), val: v}
}

// Tag returns the Variant's declared logical type.
func (v Variant) Tag() Tag { return v.tag }

// Raw returns the Variant's boxed contents, with no cast applied.
func (v Variant) Raw() any { return v.val }

// IsZero reports whether v carries no value at all (the zero Variant).
func (v Variant) IsZero() bool { return v.tag == "" && v.val == nil }

// TagOf returns the logical type tag corresponding to the Go type T.
func TagOf[T Value]() Tag {
	var zero T
	switch any(zero).(type) {
	case int32:
		return Int
	case int64:
		return Long
	case float32:
		return Float
	case float64:
		return Double
	case string:
		return String
	default:
		return ""
	}
}

// TypeCast casts v's contents to T, applying the conversions this
// package permits: int32 and int64 convert to each other, as do
// float32 and float64 (the narrowing direction uses Go's truncating
// conversion, with no range check); string only casts to string. Any
// other combination (including string<->numeric) is a type cast
// failure.
func TypeCast[T Value](v Variant) (T, error) {
	var zero T
	switch p := any(&zero).(type) {
	case *int32:
		i, err := asInt(v)
		if err != nil {
			return zero, err
		}
		*p = int32(i)
	case *int64:
		i, err := asInt(v)
		if err != nil {
			return zero, err
		}
		*p = i
	case *float32:
		f, err := asFloat(v)
		if err != nil {
			return zero, err
		}
		*p = float32(f)
	case *float64:
		f, err := asFloat(v)
		if err != nil {
			return zero, err
		}
		*p = f
	case *string:
		s, ok := v.val.(string)
		if !ok {
			return zero, fmt.Errorf("%w: expected string, got %T", ErrTypeCastFailed, v.val)
		}
		*p = s
	default:
		return zero, fmt.Errorf("%w: unsupported target type %T", ErrTypeCastFailed, zero)
	}
	return zero, nil
}

func asInt(v Variant) (int64, error) {
	switch x := v.val.(type) {
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, fmt.Errorf("%w: expected a numeric value, got %T", ErrTypeCastFailed, v.val)
	}
}

func asFloat(v Variant) (float64, error) {
	switch x := v.val.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("%w: expected a floating point value, got %T", ErrTypeCastFailed, v.val)
	}
}

// AppendBytes appends a stable little-endian encoding of v's contents
// to buf and returns the extended slice. Used by Table.ContentDigest
// to build a deterministic hash over decoded row contents.
func (v Variant) AppendBytes(buf []byte) []byte {
	switch v.tag {
	case Int:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.val.(int32)))
		return append(buf, tmp[:]...)
	case Long:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.val.(int64)))
		return append(buf, tmp[:]...)
	case Float:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.val.(float32)))
		return append(buf, tmp[:]...)
	case Double:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.val.(float64)))
		return append(buf, tmp[:]...)
	case String:
		return append(buf, v.val.(string)...)
	default:
		return buf
	}
}

// Visitor is implemented by callers of Resolve; each method is
// invoked with T known statically inside the implementation, which is
// the pivot the typed table scan dispatches through.
type Visitor[R any] interface {
	VisitInt32() (R, error)
	VisitInt64() (R, error)
	VisitFloat32() (R, error)
	VisitFloat64() (R, error)
	VisitString() (R, error)
}

// Resolve dispatches on tag, invoking the matching method of v.
func Resolve[R any](tag Tag, v Visitor[R]) (R, error) {
	switch tag {
	case Int:
		return v.VisitInt32()
	case Long:
		return v.VisitInt64()
	case Float:
		return v.VisitFloat32()
	case Double:
		return v.VisitFloat64()
	case String:
		return v.VisitString()
	default:
		var zero R
		return zero, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}
