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

// CompressChunk replaces every segment of chunk id with a
// DictionarySegment built from that segment's original values.
//
// Columns are compressed independently and in parallel, one goroutine
// per column, writing only into its own slot of a pre-sized result
// slice: no column's worker touches another's slot, so there's no
// data race to guard against beyond the join itself. The exclusive
// table lock is only taken for the final atomic swap; readers observe
// either the fully-old or fully-new chunk, never a partial one.
func (t *Table) CompressChunk(id rowid.ChunkID) error {
	chunk, err := t.Chunk(id)
	if err != nil {
		return err
	}

	n := chunk.ColumnCount()
	results := make([]Segment, n)
	errs := make([]error, n)

	done := make(chan int, n)
	for col := 0; col < n; col++ {
		go func(col int) {
			results[col], errs[col] = compressColumn(chunk.segments[col])
			done <- col
		}(col)
	}
	for i := 0; i < n; i++ {
		<-done
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	chunk.replaceSegments(results)
	Debugf("storage: compressed chunk %d (%d columns)", id, n)
	return nil
}

// compressColumn builds a DictionarySegment from src's current
// values, dispatching on src's logical type via the Resolve pivot so
// the sort/binary-search/attribute-vector-fill loop runs with a
// statically known element type.
func compressColumn(src Segment) (Segment, error) {
	return dtype.Resolve[Segment](src.Tag(), compressVisitor{src: src})
}

type compressVisitor struct{ src Segment }

func (v compressVisitor) VisitInt32() (Segment, error)   { return compressTyped[int32](v.src) }
func (v compressVisitor) VisitInt64() (Segment, error)   { return compressTyped[int64](v.src) }
func (v compressVisitor) VisitFloat32() (Segment, error) { return compressTyped[float32](v.src) }
func (v compressVisitor) VisitFloat64() (Segment, error) { return compressTyped[float64](v.src) }
func (v compressVisitor) VisitString() (Segment, error)  { return compressTyped[string](v.src) }

func compressTyped[T Ordered](src Segment) (Segment, error) {
	n := src.Len()
	values := make([]T, n)
	for i := 0; i < n; i++ {
		variant, err := src.ValueAt(i)
		if err != nil {
			return nil, err
		}
		v, err := dtype.TypeCast[T](variant)
		if err != nil {
			return nil, fmt.Errorf("storage: compressing row %d: %w", i, err)
		}
		values[i] = v
	}
	return NewDictionarySegment(values), nil
}
