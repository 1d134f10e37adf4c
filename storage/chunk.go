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

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
)

// Chunk is an ordered sequence of segments, one per column, all of
// equal length; that length is the chunk's row count.
type Chunk struct {
	segments []Segment
}

// newChunk builds a chunk with one empty ValueSegment per column of
// the given types, in order.
func newChunk(types []dtype.Tag) (*Chunk, error) {
	segs := make([]Segment, len(types))
	for i, tag := range types {
		seg, err := newValueSegmentFor(tag)
		if err != nil {
			return nil, err
		}
		segs[i] = seg
	}
	return &Chunk{segments: segs}, nil
}

// Size returns the chunk's row count (the common length of its
// segments).
func (c *Chunk) Size() int {
	if len(c.segments) == 0 {
		return 0
	}
	return c.segments[0].Len()
}

// ColumnCount returns the number of segments (columns) in the chunk.
func (c *Chunk) ColumnCount() int { return len(c.segments) }

// Segment returns the segment for the given column id.
func (c *Chunk) Segment(col rowid.ColumnID) (Segment, error) {
	if int(col) >= len(c.segments) {
		return nil, fmt.Errorf("storage: %w: column id %d", ErrColumnNotFound, col)
	}
	return c.segments[col], nil
}

// Append appends one row (one value per column, in column order) to
// every segment. len(values) must equal ColumnCount.
func (c *Chunk) Append(values []dtype.Variant) error {
	if len(values) != len(c.segments) {
		return fmt.Errorf("%w: row has %d values, table has %d columns", ErrSchemaViolation, len(values), len(c.segments))
	}
	for i, v := range values {
		if err := c.segments[i].AppendVariant(v); err != nil {
			return err
		}
	}
	return nil
}

// replaceSegments swaps in a new set of segments wholesale; used by
// CompressChunk's atomic swap. Callers must hold the owning table's
// write lock.
func (c *Chunk) replaceSegments(segs []Segment) {
	c.segments = segs
}
