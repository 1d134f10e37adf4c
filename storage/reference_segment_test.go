package storage

import (
	"testing"

	"github.com/opossum-db/columnstore/dtype"
	"github.com/opossum-db/columnstore/rowid"
)

func buildBaseTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(10)
	if err := tbl.AddColumn("col_1", dtype.Int); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	for _, v := range []int32{10, 20, 30, 40} {
		if err := tbl.AppendValues(v); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tbl
}

func TestReferenceSegmentBasic(t *testing.T) {
	base := buildBaseTable(t)
	positions := rowid.PosList{
		{ChunkID: 0, ChunkOffset: 2},
		{ChunkID: 0, ChunkOffset: 0},
	}
	seg, err := NewReferenceSegment(base, 0, positions)
	if err != nil {
		t.Fatalf("NewReferenceSegment: %v", err)
	}
	if seg.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", seg.Len())
	}
	want := []int32{30, 10}
	for i, w := range want {
		v, err := seg.ValueAt(i)
		if err != nil {
			t.Fatalf("ValueAt(%d): %v", i, err)
		}
		got, err := dtype.TypeCast[int32](v)
		if err != nil {
			t.Fatalf("TypeCast: %v", err)
		}
		if got != w {
			t.Errorf("row %d: got %d, want %d", i, got, w)
		}
	}
}

// Flattening: a reference segment built over another reference
// segment must never itself hold a pointer to a ReferenceSegment.
func TestReferenceSegmentFlattensChain(t *testing.T) {
	base := buildBaseTable(t)

	firstPositions := rowid.PosList{
		{ChunkID: 0, ChunkOffset: 3},
		{ChunkID: 0, ChunkOffset: 1},
	}
	scanOne, err := NewResultTable(base, firstPositions)
	if err != nil {
		t.Fatalf("NewResultTable: %v", err)
	}

	// scanOne's column 0 is itself a ReferenceSegment over base.
	// Build a second reference over scanOne; it must flatten through
	// to base directly.
	secondPositions := rowid.PosList{{ChunkID: 0, ChunkOffset: 1}}
	seg, err := NewReferenceSegment(scanOne, 0, secondPositions)
	if err != nil {
		t.Fatalf("NewReferenceSegment: %v", err)
	}
	if seg.Target() != base {
		t.Errorf("expected flattened target to be base table, got %p (base=%p)", seg.Target(), base)
	}
	v, err := seg.ValueAt(0)
	if err != nil {
		t.Fatalf("ValueAt: %v", err)
	}
	got, err := dtype.TypeCast[int32](v)
	if err != nil {
		t.Fatalf("TypeCast: %v", err)
	}
	// scanOne row 1 -> base offset 1 (value 20); second scan selects
	// scanOne row 1.
	if got != 20 {
		t.Errorf("got %d, want 20", got)
	}

	// scanOne's own segment for this column is a *ReferenceSegment (the
	// setup this test relies on), yet seg must not target scanOne.
	chunk, err := scanOne.Chunk(0)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	baseSeg, err := chunk.Segment(0)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if _, ok := baseSeg.(*ReferenceSegment); !ok {
		t.Fatalf("expected scanOne's own segment to be a *ReferenceSegment for this test setup")
	}
	if seg.Target() == scanOne {
		t.Errorf("flattening failed: segment still targets the intermediate reference table")
	}
}

func TestNewResultTableEmptyPosList(t *testing.T) {
	base := buildBaseTable(t)
	out, err := NewResultTable(base, nil)
	if err != nil {
		t.Fatalf("NewResultTable: %v", err)
	}
	if out.ChunkCount() != 1 {
		t.Errorf("expected 1 chunk, got %d", out.ChunkCount())
	}
	if out.RowCount() != 0 {
		t.Errorf("expected 0 rows, got %d", out.RowCount())
	}
}
