package fixture

import "testing"

func TestLoadAndBuild(t *testing.T) {
	def, err := Load("testdata/chunking.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tbl, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tbl.RowCount() != 3 {
		t.Errorf("RowCount: got %d, want 3", tbl.RowCount())
	}
	if tbl.ChunkCount() != 2 {
		t.Errorf("ChunkCount: got %d, want 2", tbl.ChunkCount())
	}
	chunk, err := tbl.Chunk(1)
	if err != nil {
		t.Fatalf("Chunk(1): %v", err)
	}
	if chunk.Size() != 1 {
		t.Errorf("Chunk(1).Size(): got %d, want 1", chunk.Size())
	}
}

func TestLoadUnknownFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
}
