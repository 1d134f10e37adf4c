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
	"sync"
	"unsafe"

	"github.com/dchest/siphash"
	"github.com/klauspost/compress/s2"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/opossum-db/columnstore/avector"
	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
)

// Ordered is the subset of dtype.Value that DictionarySegment can
// sort and binary-search over: every logical type we support
// satisfies it.
type Ordered interface {
	constraints.Ordered
}

// DictionarySegment is the compressed representation: a sorted,
// deduplicated dictionary of distinct values plus a width-adaptive
// avector.AttributeVector of value ids, one per row.
type DictionarySegment[T Ordered] struct {
	dict []T
	attr avector.AttributeVector

	// hashOnce lazily builds hashIndex on first FastEqual call; most
	// dictionaries are scanned with range predicates that never touch
	// it, so building it eagerly at compress time would be wasted
	// work on those columns.
	hashOnce  sync.Once
	hashIndex map[uint64][]rowid.ValueID
}

const (
	sipK0 = 0x0123456789abcdef
	sipK1 = 0xfedcba9876543210
)

// NewDictionarySegment builds a DictionarySegment from values, one
// entry per row, in row order. The dictionary is the sorted, unique
// set of values; attribute vector width is chosen from the resulting
// cardinality via avector.WidthFor.
func NewDictionarySegment[T Ordered](values []T) *DictionarySegment[T] {
	dict := append([]T(nil), values...)
	slices.Sort(dict)
	dict = slices.Compact(dict)

	width := avector.WidthFor(len(dict))
	attr := avector.New(width, len(values))
	for i, v := range values {
		id, found := slices.BinarySearch(dict, v)
		if !found {
			// unreachable: dict contains every distinct value in values
			panic(fmt.Sprintf("storage: value %v missing from its own dictionary", v))
		}
		attr.Set(i, uint32(id))
	}

	return &DictionarySegment[T]{dict: dict, attr: attr}
}

func (s *DictionarySegment[T]) Len() int       { return s.attr.Len() }
func (s *DictionarySegment[T]) Kind() Kind     { return DictionaryKind }
func (s *DictionarySegment[T]) Tag() dtype.Tag { return dtype.TagOf[T]() }

func (s *DictionarySegment[T]) ValueAt(i int) (dtype.Variant, error) {
	if i < 0 || i >= s.Len() {
		return dtype.Variant{}, fmt.Errorf("storage: row %d out of range (len %d)", i, s.Len())
	}
	return dtype.VariantFrom(s.dict[s.attr.Get(i)]), nil
}

// AppendVariant is a silent no-op (spec error kind 5): a
// DictionarySegment is produced once, by CompressChunk, and is never
// grown directly. New rows always arrive through the ValueSegment the
// next (open) chunk holds.
func (s *DictionarySegment[T]) AppendVariant(dtype.Variant) error {
	Debugf("storage: dropped append to immutable dictionary segment (%d rows, %d unique)", s.Len(), len(s.dict))
	return nil
}

// Dictionary returns the sorted, deduplicated values backing this
// segment. Callers must not mutate the returned slice.
func (s *DictionarySegment[T]) Dictionary() []T { return s.dict }

// AttributeVector returns the per-row value-id array.
func (s *DictionarySegment[T]) AttributeVector() avector.AttributeVector { return s.attr }

// UniqueValuesCount returns the dictionary's cardinality.
func (s *DictionarySegment[T]) UniqueValuesCount() int { return len(s.dict) }

// ValueByID decodes the dictionary entry at id.
func (s *DictionarySegment[T]) ValueByID(id rowid.ValueID) (T, error) {
	var zero T
	if int(id) >= len(s.dict) {
		return zero, fmt.Errorf("storage: %w: value id %d", ErrColumnNotFound, id)
	}
	return s.dict[id], nil
}

// LowerBound returns the id of the first dictionary entry >= v, and
// rowid.InvalidValueID if every entry is < v.
func (s *DictionarySegment[T]) LowerBound(v T) rowid.ValueID {
	id, _ := slices.BinarySearch(s.dict, v)
	if id >= len(s.dict) {
		return rowid.InvalidValueID
	}
	return rowid.ValueID(id)
}

// UpperBound returns the id of the first dictionary entry > v, and
// rowid.InvalidValueID if every entry is <= v.
func (s *DictionarySegment[T]) UpperBound(v T) rowid.ValueID {
	id, found := slices.BinarySearch(s.dict, v)
	if found {
		id++
	}
	if id >= len(s.dict) {
		return rowid.InvalidValueID
	}
	return rowid.ValueID(id)
}

// FastEqual reports whether v is present in the dictionary, and if
// so, its value id. It is backed by a lazily built siphash index over
// the dictionary's encoded bytes, but a hash lookup is never trusted
// on its own: any hit is re-verified against the authoritative sorted
// dictionary before being reported, so a hash collision can only cost
// time, never correctness. A hash miss still falls through to
// LowerBound, since building the index is only a latency optimization.
func (s *DictionarySegment[T]) FastEqual(v T) (rowid.ValueID, bool) {
	s.hashOnce.Do(s.buildHashIndex)

	h := hashOf(v)
	for _, candidate := range s.hashIndex[h] {
		if s.dict[candidate] == v {
			return candidate, true
		}
	}
	id := s.LowerBound(v)
	if id != rowid.InvalidValueID && s.dict[id] == v {
		return id, true
	}
	return rowid.InvalidValueID, false
}

func (s *DictionarySegment[T]) buildHashIndex() {
	idx := make(map[uint64][]rowid.ValueID, len(s.dict))
	for i, v := range s.dict {
		h := hashOf(v)
		idx[h] = append(idx[h], rowid.ValueID(i))
	}
	s.hashIndex = idx
}

func hashOf[T Ordered](v T) uint64 {
	return siphash.Hash(sipK0, sipK1, encodeForHash(v))
}

func encodeForHash[T Ordered](v T) []byte {
	return dtype.VariantFrom(v).AppendBytes(nil)
}

// EstimateMemoryUsage sums the dictionary's resident bytes and the
// attribute vector's byte size.
func (s *DictionarySegment[T]) EstimateMemoryUsage() int {
	var zero T
	dictBytes := 0
	switch any(zero).(type) {
	case string:
		for _, v := range s.dict {
			sv := any(v).(string)
			dictBytes += len(sv) + int(unsafe.Sizeof(sv))
		}
	default:
		dictBytes = len(s.dict) * int(unsafe.Sizeof(zero))
	}
	return dictBytes + s.attr.ByteSize()
}

// CompressedDictionaryBytes runs the dictionary's concatenated byte
// encoding through s2 and returns the resulting size. It is a
// read-only estimate of what the dictionary would cost at rest under
// a general-purpose compressor; nothing in the segment's in-memory
// representation actually changes.
func (s *DictionarySegment[T]) CompressedDictionaryBytes() int {
	var buf []byte
	for _, v := range s.dict {
		buf = dtype.VariantFrom(v).AppendBytes(buf)
	}
	return len(s2.Encode(nil, buf))
}
