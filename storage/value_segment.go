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

package storage

import (
	"fmt"
	"unsafe"

	"github.com/opossum-db/columnstore/dtype"
)

// ValueSegment is the uncompressed representation: a plain growable
// slice of T, one entry per row. Every newly appended row starts out
// in a ValueSegment; CompressChunk may later replace it with a
// DictionarySegment.
type ValueSegment[T dtype.Value] struct {
	values []T
}

// NewValueSegment returns an empty ValueSegment ready to accept
// appends.
func NewValueSegment[T dtype.Value]() *ValueSegment[T] {
	return &ValueSegment[T]{}
}

// Append adds v as the next row.
func (s *ValueSegment[T]) Append(v T) {
	s.values = append(s.values, v)
}

// Values returns the segment's backing slice. Callers must not retain
// or mutate it past the next Append.
func (s *ValueSegment[T]) Values() []T { return s.values }

func (s *ValueSegment[T]) Len() int   { return len(s.values) }
func (s *ValueSegment[T]) Kind() Kind { return ValueKind }
func (s *ValueSegment[T]) Tag() dtype.Tag {
	return dtype.TagOf[T]()
}

func (s *ValueSegment[T]) ValueAt(i int) (dtype.Variant, error) {
	if i < 0 || i >= len(s.values) {
		return dtype.Variant{}, fmt.Errorf("storage: row %d out of range (len %d)", i, len(s.values))
	}
	return dtype.VariantFrom(s.values[i]), nil
}

// AppendVariant type-casts v to T and appends it.
func (s *ValueSegment[T]) AppendVariant(v dtype.Variant) error {
	cast, err := dtype.TypeCast[T](v)
	if err != nil {
		return err
	}
	s.Append(cast)
	return nil
}

// EstimateMemoryUsage approximates resident bytes as element count
// times the static size of T. Strings are charged their header size
// plus their backing bytes.
func (s *ValueSegment[T]) EstimateMemoryUsage() int {
	var zero T
	switch any(zero).(type) {
	case string:
		total := 0
		for _, v := range s.values {
			sv := any(v).(string)
			total += len(sv) + int(unsafe.Sizeof(sv))
		}
		return total
	default:
		return len(s.values) * int(unsafe.Sizeof(zero))
	}
}

// newValueSegmentFor allocates a fresh, empty Segment for the given
// logical type, by way of the closed-type-set visitor pivot.
func newValueSegmentFor(tag dtype.Tag) (Segment, error) {
	return dtype.Resolve[Segment](tag, valueSegmentFactory{})
}

type valueSegmentFactory struct{}

func (valueSegmentFactory) VisitInt32() (Segment, error)   { return NewValueSegment[int32](), nil }
func (valueSegmentFactory) VisitInt64() (Segment, error)   { return NewValueSegment[int64](), nil }
func (valueSegmentFactory) VisitFloat32() (Segment, error) { return NewValueSegment[float32](), nil }
func (valueSegmentFactory) VisitFloat64() (Segment, error) { return NewValueSegment[float64](), nil }
func (valueSegmentFactory) VisitString() (Segment, error)  { return NewValueSegment[string](), nil }
