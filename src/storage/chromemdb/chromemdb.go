package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"pdfchat/src/core/docchat"
)

// Store keeps per-session chunk collections in an embedded chromem-go
// database. With NewStore everything lives in memory and vanishes on
// shutdown; NewPersistentStore writes collections under the given path.
type Store struct {
	db *chromem.DB
}

func NewStore() *Store {
	return &Store{db: chromem.NewDB()}
}

func NewPersistentStore(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, collection string) error {
	if _, err := s.db.GetOrCreateCollection(collection, nil, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) AddChunks(ctx context.Context, collection string, chunks []docchat.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	c, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to get collection %s: %w", collection, err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Metadata:  chunkMetadata(chunk),
			Embedding: chunk.Embedding,
		})
	}

	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, embedding []float32, limit int) ([]docchat.RetrievedChunk, error) {
	c, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", collection, err)
	}

	// chromem rejects result counts above the collection size.
	n := min(limit, c.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}

	chunks := make([]docchat.RetrievedChunk, 0, len(results))
	for _, res := range results {
		page, _ := strconv.Atoi(res.Metadata["page"])
		chunks = append(chunks, docchat.RetrievedChunk{
			Content:  res.Content,
			Filename: res.Metadata["filename"],
			Page:     page,
			ChunkID:  res.ID,
			Score:    float64(res.Similarity),
		})
	}
	return chunks, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	c := s.db.GetCollection(collection, nil)
	if c == nil {
		return 0, nil
	}
	return c.Count(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.db.ListCollections()
	return nil
}

func chunkMetadata(chunk docchat.IndexedChunk) map[string]string {
	return map[string]string{
		"filename":              chunk.Filename,
		"page":                  strconv.Itoa(chunk.Page),
		"chunk_number":          strconv.Itoa(chunk.ChunkNumber),
		"total_chunks_for_page": strconv.Itoa(chunk.TotalChunks),
		"page_has_tables":       strconv.FormatBool(chunk.HasTables),
		"chunk_char_count":      strconv.Itoa(chunk.CharCount),
		"chunk_word_count":      strconv.Itoa(chunk.WordCount),
	}
}
