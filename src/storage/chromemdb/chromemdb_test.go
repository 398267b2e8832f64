package chromemdb_test

import (
	"context"
	"testing"

	"pdfchat/src/core/docchat"
	"pdfchat/src/storage/chromemdb"
)

// testChunks carry unit-length embeddings so cosine similarities are exact
func testChunks() []docchat.IndexedChunk {
	return []docchat.IndexedChunk{
		{ID: "a", Text: "alpha text", Filename: "report.pdf", Page: 1, ChunkNumber: 1, TotalChunks: 1, CharCount: 10, WordCount: 2, Embedding: []float32{1, 0, 0}},
		{ID: "b", Text: "beta text", Filename: "report.pdf", Page: 2, ChunkNumber: 1, TotalChunks: 1, CharCount: 9, WordCount: 2, Embedding: []float32{0, 1, 0}},
		{ID: "c", Text: "gamma text", Filename: "notes.pdf", Page: 3, ChunkNumber: 1, TotalChunks: 1, HasTables: true, CharCount: 10, WordCount: 2, Embedding: []float32{0.8, 0.6, 0}},
	}
}

func TestAddAndQuery(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	if err := store.EnsureCollection(ctx, "s"); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if err := store.AddChunks(ctx, "s", testChunks()); err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}

	results, err := store.Query(ctx, "s", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Query() returned %d chunks, want 2", len(results))
	}

	if results[0].ChunkID != "a" {
		t.Errorf("Query() best match = %q, want a", results[0].ChunkID)
	}
	if results[0].Score < 0.99 {
		t.Errorf("Query() best score = %f, want close to 1", results[0].Score)
	}
	if results[0].Content != "alpha text" || results[0].Filename != "report.pdf" || results[0].Page != 1 {
		t.Errorf("Query() best match = %+v, want alpha text from report.pdf page 1", results[0])
	}

	if results[1].ChunkID != "c" {
		t.Errorf("Query() second match = %q, want c", results[1].ChunkID)
	}
	if results[1].Score < 0.75 || results[1].Score > 0.85 {
		t.Errorf("Query() second score = %f, want close to 0.8", results[1].Score)
	}
}

func TestQueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	if err := store.AddChunks(ctx, "s", testChunks()); err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}

	results, err := store.Query(ctx, "s", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Query() returned %d chunks, want all 3", len(results))
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	if err := store.EnsureCollection(ctx, "s"); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}

	results, err := store.Query(ctx, "s", []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Query() returned %d chunks, want 0", len(results))
	}
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	n, err := store.Count(ctx, "missing")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count(missing) = %d, want 0", n)
	}

	if err := store.AddChunks(ctx, "s", testChunks()); err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}

	n, err = store.Count(ctx, "s")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	if err := store.AddChunks(ctx, "s", testChunks()); err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}
	if err := store.DeleteCollection(ctx, "s"); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}

	n, err := store.Count(ctx, "s")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() after delete = %d, want 0", n)
	}
}

func TestAddChunksEmptyBatch(t *testing.T) {
	ctx := context.Background()
	store := chromemdb.NewStore()

	if err := store.AddChunks(ctx, "s", nil); err != nil {
		t.Fatalf("AddChunks(nil) error = %v", err)
	}
	n, err := store.Count(ctx, "s")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0 after empty batch", n)
	}
}

func TestPersistentStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := chromemdb.NewPersistentStore(dir)
	if err != nil {
		t.Fatalf("NewPersistentStore() error = %v", err)
	}
	if err := store.AddChunks(ctx, "library", testChunks()); err != nil {
		t.Fatalf("AddChunks() error = %v", err)
	}

	reopened, err := chromemdb.NewPersistentStore(dir)
	if err != nil {
		t.Fatalf("NewPersistentStore() reopen error = %v", err)
	}

	n, err := reopened.Count(ctx, "library")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Count() after reopen = %d, want 3", n)
	}

	results, err := reopened.Query(ctx, "library", []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "b" {
		t.Errorf("Query() after reopen = %+v, want chunk b", results)
	}
}
