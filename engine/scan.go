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

package engine

import (
	"context"
	"fmt"

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
	"github.com/opossum-db/columnstore/storage"
)

// comparatorFor builds the scalar (T, T) -> bool comparator for op.
// For strings this is lexicographic, matching the dictionary's sort
// order (Go's built-in < on strings is byte-lexicographic, the same
// order slices.Sort uses to build DictionarySegment's dict).
func comparatorFor[T storage.Ordered](op ScanType) (func(a, b T) bool, error) {
	switch op {
	case Eq:
		return func(a, b T) bool { return a == b }, nil
	case Neq:
		return func(a, b T) bool { return a != b }, nil
	case Lt:
		return func(a, b T) bool { return a < b }, nil
	case Le:
		return func(a, b T) bool { return a <= b }, nil
	case Gt:
		return func(a, b T) bool { return a > b }, nil
	case Ge:
		return func(a, b T) bool { return a >= b }, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScan, op)
	}
}

// dictValueIDTest builds the per-offset ValueID test for a
// DictionarySegment, translating each comparator into a test against
// dictionary bounds, including the behavior when a bound is empty
// (the search value falls entirely above or below the dictionary).
func dictValueIDTest[T storage.Ordered](seg *storage.DictionarySegment[T], op ScanType, search T) (func(id uint32) bool, error) {
	equalBound := func() (uint32, bool) {
		id, ok := seg.FastEqual(search)
		if !ok {
			return 0, false
		}
		return uint32(id), true
	}

	switch op {
	case Eq:
		id, ok := equalBound()
		if !ok {
			return func(uint32) bool { return false }, nil
		}
		return func(x uint32) bool { return x == id }, nil
	case Neq:
		id, ok := equalBound()
		if !ok {
			return func(uint32) bool { return true }, nil
		}
		return func(x uint32) bool { return x != id }, nil
	case Lt:
		lb := seg.LowerBound(search)
		if lb == rowid.InvalidValueID {
			return func(uint32) bool { return false }, nil
		}
		bound := uint32(lb)
		return func(x uint32) bool { return x < bound }, nil
	case Le:
		ub := seg.UpperBound(search)
		if ub == rowid.InvalidValueID {
			return func(uint32) bool { return true }, nil
		}
		bound := uint32(ub)
		return func(x uint32) bool { return x < bound }, nil
	case Gt:
		ub := seg.UpperBound(search)
		if ub == rowid.InvalidValueID {
			return func(uint32) bool { return false }, nil
		}
		bound := uint32(ub)
		return func(x uint32) bool { return x >= bound }, nil
	case Ge:
		lb := seg.LowerBound(search)
		if lb == rowid.InvalidValueID {
			return func(uint32) bool { return false }, nil
		}
		bound := uint32(lb)
		return func(x uint32) bool { return x >= bound }, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScan, op)
	}
}

// matchOffsets evaluates the predicate against seg (a ValueSegment[T]
// or DictionarySegment[T]; never a ReferenceSegment, by the
// flattening invariant) at each of offsets, returning the subset that
// matched, in the same order.
func matchOffsets[T storage.Ordered](seg storage.Segment, op ScanType, search T, cmp func(a, b T) bool, offsets []rowid.ChunkOffset) ([]rowid.ChunkOffset, error) {
	switch s := seg.(type) {
	case *storage.ValueSegment[T]:
		values := s.Values()
		out := make([]rowid.ChunkOffset, 0, len(offsets))
		for _, o := range offsets {
			if cmp(values[o], search) {
				out = append(out, o)
			}
		}
		return out, nil
	case *storage.DictionarySegment[T]:
		test, err := dictValueIDTest(s, op, search)
		if err != nil {
			return nil, err
		}
		attr := s.AttributeVector()
		out := make([]rowid.ChunkOffset, 0, len(offsets))
		for _, o := range offsets {
			if test(attr.Get(int(o))) {
				out = append(out, o)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("engine: unexpected segment kind %v in matchOffsets", seg.Kind())
	}
}

func allOffsets(n int) []rowid.ChunkOffset {
	out := make([]rowid.ChunkOffset, n)
	for i := range out {
		out[i] = rowid.ChunkOffset(i)
	}
	return out
}

// scanReferenceSegment implements 4.I's ReferenceSegment branch: the
// segment's pos_list is grouped into maximal runs of equal chunk_id,
// each run is evaluated against the referenced chunk's own
// value/dictionary segment in one batch, and a match's *local* offset
// within the current chunk (not the referenced chunk) is what gets
// reported back to the caller — the caller already knows it is
// scanning this ReferenceSegment's owning chunk, and it is that
// chunk's own (chunk_id, offset) pairs which must flow into the
// result PosList, so that storage.NewResultTable can flatten every
// output column uniformly through the same positions.
func scanReferenceSegment[T storage.Ordered](ref *storage.ReferenceSegment, op ScanType, search T, cmp func(a, b T) bool) ([]rowid.ChunkOffset, error) {
	positions := ref.Positions()
	target := ref.Target()
	col := ref.Column()

	matched := make([]rowid.ChunkOffset, 0, len(positions))

	i := 0
	for i < len(positions) {
		j := i + 1
		cid := positions[i].ChunkID
		for j < len(positions) && positions[j].ChunkID == cid {
			j++
		}
		run := positions[i:j]

		targetChunk, err := target.Chunk(cid)
		if err != nil {
			return nil, err
		}
		targetSeg, err := targetChunk.Segment(col)
		if err != nil {
			return nil, err
		}

		offsets := make([]rowid.ChunkOffset, len(run))
		for k, p := range run {
			offsets[k] = p.ChunkOffset
		}
		hits, err := matchOffsets[T](targetSeg, op, search, cmp, offsets)
		if err != nil {
			return nil, err
		}
		hitSet := make(map[rowid.ChunkOffset]struct{}, len(hits))
		for _, h := range hits {
			hitSet[h] = struct{}{}
		}
		for k, p := range run {
			if _, ok := hitSet[p.ChunkOffset]; ok {
				matched = append(matched, rowid.ChunkOffset(i+k))
			}
		}
		i = j
	}
	return matched, nil
}

// runScan executes the full TableScan algorithm for a statically
// known element type T: for every chunk of input, dispatch on the
// target column's segment kind and collect matching RowIDs in
// chunk-major, offset-ascending order, then build the output result
// table.
//
// Execution never suspends mid-chunk, but ctx is checked at each
// chunk boundary as a courtesy to callers driving a long scan over
// many chunks; correctness never depends on cancellation firing.
func runScan[T storage.Ordered](ctx context.Context, input *storage.Table, column rowid.ColumnID, op ScanType, search dtype.Variant) (*storage.Table, error) {
	searchVal, err := dtype.TypeCast[T](search)
	if err != nil {
		return nil, err
	}
	cmp, err := comparatorFor[T](op)
	if err != nil {
		return nil, err
	}

	var positions rowid.PosList
	chunkCount := input.ChunkCount()
	for cid := 0; cid < chunkCount; cid++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := input.Chunk(rowid.ChunkID(cid))
		if err != nil {
			return nil, err
		}
		seg, err := chunk.Segment(column)
		if err != nil {
			return nil, err
		}

		var offsets []rowid.ChunkOffset
		if ref, ok := seg.(*storage.ReferenceSegment); ok {
			offsets, err = scanReferenceSegment[T](ref, op, searchVal, cmp)
		} else {
			offsets, err = matchOffsets[T](seg, op, searchVal, cmp, allOffsets(chunk.Size()))
		}
		if err != nil {
			return nil, err
		}
		for _, o := range offsets {
			positions.Append(rowid.RowID{ChunkID: rowid.ChunkID(cid), ChunkOffset: o})
		}
	}

	return storage.NewResultTable(input, positions)
}
