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

	"golang.org/x/crypto/blake2b"

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
)

// Table is a chunked columnar store: an ordered list of Chunks, each
// holding the same schema, plus the schema itself.
//
// A Table guards its chunk list with a reader-writer lock: reads
// (Chunk, RowCount, ...) take the shared lock; CompressChunk takes the
// exclusive lock only for the atomic segment swap, after doing the
// compression work lock-free.
type Table struct {
	mu           sync.RWMutex
	maxChunkSize uint32
	columnNames  []string
	columnTypes  []dtype.Tag
	chunks       []*Chunk
}

// NewTable constructs a table with the given chunk capacity and no
// columns. A freshly constructed table always holds exactly one empty
// chunk.
func NewTable(maxChunkSize uint32) *Table {
	t := &Table{maxChunkSize: maxChunkSize}
	t.chunks = []*Chunk{{}}
	return t
}

// AddColumn appends a column to the schema. It fails once the table
// has received any row (B2).
func (t *Table) AddColumn(name string, tag dtype.Tag) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !tag.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrSchemaViolation, tag)
	}
	if t.rowCountLocked() != 0 {
		return fmt.Errorf("%w: cannot add column %q to a non-empty table", ErrSchemaViolation, name)
	}
	t.columnNames = append(t.columnNames, name)
	t.columnTypes = append(t.columnTypes, tag)

	seg, err := newValueSegmentFor(tag)
	if err != nil {
		return err
	}
	t.chunks[len(t.chunks)-1].segments = append(t.chunks[len(t.chunks)-1].segments, seg)
	return nil
}

// ColumnCount returns the schema's column count.
func (t *Table) ColumnCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.columnNames)
}

// Schema returns copies of the column names and logical types, in
// column-id order.
func (t *Table) Schema() ([]string, []dtype.Tag) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := append([]string(nil), t.columnNames...)
	types := append([]dtype.Tag(nil), t.columnTypes...)
	return names, types
}

// ColumnTag returns the logical type of column col.
func (t *Table) ColumnTag(col rowid.ColumnID) (dtype.Tag, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(col) >= len(t.columnTypes) {
		return "", fmt.Errorf("storage: %w: column id %d", ErrColumnNotFound, col)
	}
	return t.columnTypes[col], nil
}

// ColumnIDByName does a linear scan of the schema for name.
func (t *Table) ColumnIDByName(name string) (rowid.ColumnID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, n := range t.columnNames {
		if n == name {
			return rowid.ColumnID(i), nil
		}
	}
	return 0, fmt.Errorf("storage: %w: %q", ErrColumnNotFound, name)
}

// RowCount sums every chunk's size.
func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rowCountLocked()
}

func (t *Table) rowCountLocked() int {
	n := 0
	for _, c := range t.chunks {
		n += c.Size()
	}
	return n
}

// ChunkCount returns the number of chunks.
func (t *Table) ChunkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.chunks)
}

// Chunk returns the chunk with the given id.
func (t *Table) Chunk(id rowid.ChunkID) (*Chunk, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.chunks) {
		return nil, fmt.Errorf("storage: %w: chunk id %d", ErrChunkNotFound, id)
	}
	return t.chunks[id], nil
}

// Append appends one row, opening a new chunk first if the last chunk
// is already at capacity (B3).
func (t *Table) Append(values []dtype.Variant) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(values) != len(t.columnTypes) {
		return fmt.Errorf("%w: row has %d values, table has %d columns", ErrSchemaViolation, len(values), len(t.columnTypes))
	}

	last := t.chunks[len(t.chunks)-1]
	if t.maxChunkSize > 0 && uint32(last.Size()) >= t.maxChunkSize {
		next, err := newChunk(t.columnTypes)
		if err != nil {
			return err
		}
		t.chunks = append(t.chunks, next)
		last = next
	}
	return last.Append(values)
}

// AppendValues is a convenience wrapper around Append for callers
// holding already-typed Go values rather than Variants.
func (t *Table) AppendValues(values ...any) error {
	names, types := t.Schema()
	if len(values) != len(types) {
		return fmt.Errorf("%w: row has %d values, table has %d columns", ErrSchemaViolation, len(values), len(names))
	}
	variants := make([]dtype.Variant, len(values))
	for i, v := range values {
		variants[i] = dtype.NewVariant(types[i], v)
	}
	return t.Append(variants)
}

// MaxChunkSize returns the table's configured chunk capacity. Zero
// means unbounded. Scan result tables report the length of their
// PosList, which their single chunk holds in full.
func (t *Table) MaxChunkSize() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxChunkSize
}

// NewResultTable builds the output table a TableScan produces: schema
// copied from input, one chunk of ReferenceSegments (one per input
// column) sharing positions, and max_chunk_size set to the position
// list's length so the result reports as a single, fully-packed chunk.
func NewResultTable(input *Table, positions rowid.PosList) (*Table, error) {
	names, types := input.Schema()

	segs := make([]Segment, len(types))
	for col := range types {
		seg, err := NewReferenceSegment(input, rowid.ColumnID(col), positions)
		if err != nil {
			return nil, err
		}
		segs[col] = seg
	}

	out := &Table{
		maxChunkSize: uint32(len(positions)),
		columnNames:  names,
		columnTypes:  types,
		chunks:       []*Chunk{{segments: segs}},
	}
	return out, nil
}

// ContentDigest hashes every row's decoded contents, in chunk-major
// row order, with blake2b-256. It is intended for tests and debugging
// (e.g. asserting R1's round-trip property without a full deep-equal).
func (t *Table) ContentDigest() ([32]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	var buf []byte
	for _, chunk := range t.chunks {
		for row := 0; row < chunk.Size(); row++ {
			for col := range chunk.segments {
				v, err := chunk.segments[col].ValueAt(row)
				if err != nil {
					return [32]byte{}, err
				}
				buf = v.AppendBytes(buf[:0])
				h.Write(buf)
			}
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// EstimateMemoryUsage sums every chunk segment's estimate.
func (t *Table) EstimateMemoryUsage() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	total := 0
	for _, chunk := range t.chunks {
		for _, seg := range chunk.segments {
			total += seg.EstimateMemoryUsage()
		}
	}
	return total
}
