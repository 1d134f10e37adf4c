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

// Package rowid holds the identifier newtypes shared across the
// storage and engine packages, plus the position-list primitives
// used to denote a scan result.
package rowid

import "math"

// ChunkID identifies a chunk within a table.
type ChunkID uint32

// ChunkOffset identifies a row within a chunk.
type ChunkOffset uint32

// ColumnID identifies a column within a table's schema.
type ColumnID uint32

// ValueID indexes a dictionary segment's sorted, deduplicated values.
type ValueID uint32

// InvalidValueID is the sentinel returned by a dictionary bound lookup
// when no dictionary entry satisfies the requested predicate.
const InvalidValueID ValueID = math.MaxUint32

// RowID addresses a single row: the chunk it lives in and its offset
// within that chunk.
type RowID struct {
	ChunkID     ChunkID
	ChunkOffset ChunkOffset
}

// PosList is an ordered, append-only sequence of RowIDs. A TableScan
// result shares a single PosList instance across every output column.
type PosList []RowID

// Append adds r to the end of the list.
func (p *PosList) Append(r RowID) {
	*p = append(*p, r)
}

// Len returns the number of entries in the list.
func (p PosList) Len() int { return len(p) }
