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

// ReferenceSegment owns no values of its own: every row indirects to
// a row of some other table's column. Result tables produced by
// operators like TableScan are built entirely out of these.
//
// The reference-chain flattening invariant (no ReferenceSegment ever
// directly references another ReferenceSegment) is enforced here, in
// the constructor, rather than by every producer: NewReferenceSegment
// walks each input position through any chain of existing
// ReferenceSegments until it lands on a ValueSegment or
// DictionarySegment row, and stores only that final target. Producers
// (TableScan chief among them) can then always call NewReferenceSegment
// against their immediate input without worrying about whether that
// input was itself a reference.
type ReferenceSegment struct {
	target    *Table
	column    rowid.ColumnID
	tag       dtype.Tag
	positions rowid.PosList
}

// NewReferenceSegment builds a ReferenceSegment over column col of
// input, for the given positions (expressed in input's own row ids).
// Every position is flattened to its ultimate non-reference target
// before being stored.
func NewReferenceSegment(input *Table, col rowid.ColumnID, positions rowid.PosList) (*ReferenceSegment, error) {
	tag, err := input.ColumnTag(col)
	if err != nil {
		return nil, err
	}

	target := input
	targetCol := col
	resolved := make(rowid.PosList, 0, len(positions))
	haveTarget := false

	for _, pos := range positions {
		t, c, p, err := flatten(input, col, pos)
		if err != nil {
			return nil, err
		}
		if !haveTarget {
			target, targetCol, haveTarget = t, c, true
		} else if t != target || c != targetCol {
			return nil, fmt.Errorf("storage: reference segment target mismatch across rows")
		}
		resolved = append(resolved, p)
	}
	if !haveTarget {
		// No positions to walk: flatten through input's first chunk so
		// an empty result still never targets a reference table.
		if chunk, err := input.Chunk(0); err == nil {
			if seg, err := chunk.Segment(col); err == nil {
				if ref, ok := seg.(*ReferenceSegment); ok {
					target, targetCol = ref.target, ref.column
				}
			}
		}
	}

	return &ReferenceSegment{target: target, column: targetCol, tag: tag, positions: resolved}, nil
}

// flatten walks a single (table, column, position) through any chain
// of ReferenceSegments until it reaches a segment that owns its own
// values.
func flatten(t *Table, c rowid.ColumnID, p rowid.RowID) (*Table, rowid.ColumnID, rowid.RowID, error) {
	for {
		chunk, err := t.Chunk(p.ChunkID)
		if err != nil {
			return nil, 0, rowid.RowID{}, err
		}
		seg, err := chunk.Segment(c)
		if err != nil {
			return nil, 0, rowid.RowID{}, err
		}
		ref, ok := seg.(*ReferenceSegment)
		if !ok {
			return t, c, p, nil
		}
		if int(p.ChunkOffset) >= len(ref.positions) {
			return nil, 0, rowid.RowID{}, fmt.Errorf("storage: row %d out of range in reference segment", p.ChunkOffset)
		}
		t, c, p = ref.target, ref.column, ref.positions[p.ChunkOffset]
	}
}

func (s *ReferenceSegment) Len() int       { return len(s.positions) }
func (s *ReferenceSegment) Kind() Kind     { return ReferenceKind }
func (s *ReferenceSegment) Tag() dtype.Tag { return s.tag }

// Target returns the table this segment's positions ultimately
// address. It is never itself a result of a ReferenceSegment chain.
func (s *ReferenceSegment) Target() *Table { return s.target }

// Column returns the column id within Target() this segment indirects
// to.
func (s *ReferenceSegment) Column() rowid.ColumnID { return s.column }

// Positions returns the flattened position list, expressed in
// Target()'s row ids. Callers must not mutate the returned slice.
func (s *ReferenceSegment) Positions() rowid.PosList { return s.positions }

func (s *ReferenceSegment) ValueAt(i int) (dtype.Variant, error) {
	if i < 0 || i >= len(s.positions) {
		return dtype.Variant{}, fmt.Errorf("storage: row %d out of range (len %d)", i, len(s.positions))
	}
	pos := s.positions[i]
	chunk, err := s.target.Chunk(pos.ChunkID)
	if err != nil {
		return dtype.Variant{}, err
	}
	seg, err := chunk.Segment(s.column)
	if err != nil {
		return dtype.Variant{}, err
	}
	return seg.ValueAt(int(pos.ChunkOffset))
}

// EstimateMemoryUsage charges only the position list itself: the
// referenced values are accounted for by the target table.
func (s *ReferenceSegment) EstimateMemoryUsage() int {
	return len(s.positions) * 8 // RowID is two uint32 fields
}

// AppendVariant always fails: a ReferenceSegment never owns values to
// append to.
func (s *ReferenceSegment) AppendVariant(dtype.Variant) error {
	return ErrSegmentImmutable
}
