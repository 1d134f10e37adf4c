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

import "github.com/opossum-db/columnstore/dtype"

// Kind distinguishes the three segment representations a Chunk column
// can take.
type Kind int

const (
	// ValueKind is an uncompressed, append-in-place run of raw values.
	ValueKind Kind = iota
	// DictionaryKind is a compressed run: a sorted unique dictionary
	// plus a width-adaptive attribute vector of value ids.
	DictionaryKind
	// ReferenceKind doesn't own any values; it indirects every
	// position to a row in some other table's column.
	ReferenceKind
)

func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case DictionaryKind:
		return "dictionary"
	case ReferenceKind:
		return "reference"
	default:
		return "unknown"
	}
}

// Segment is one column's worth of storage within a single Chunk.
//
// Implementations: ValueSegment[T], DictionarySegment[T], and
// ReferenceSegment. A Segment's Len is always equal to its owning
// Chunk's row count.
type Segment interface {
	// Len returns the number of rows addressable in this segment.
	Len() int
	// Kind reports which of the three segment representations this is.
	Kind() Kind
	// Tag reports the logical type of the values this segment yields.
	Tag() dtype.Tag
	// ValueAt decodes the logical value at row i.
	ValueAt(i int) (dtype.Variant, error)
	// EstimateMemoryUsage returns an estimate, in bytes, of this
	// segment's resident memory footprint.
	EstimateMemoryUsage() int
	// AppendVariant type-casts v to this segment's logical type and
	// appends it as the next row. A ValueSegment appends normally; a
	// DictionarySegment silently does nothing (see ErrSegmentImmutable
	// doc); a ReferenceSegment returns ErrSegmentImmutable.
	AppendVariant(v dtype.Variant) error
}
