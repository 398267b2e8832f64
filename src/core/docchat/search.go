package docchat

import (
	"context"
	"fmt"
	"strings"
)

const DefaultTopK = 5

// Searcher answers similarity queries against a vector-store collection
type Searcher struct {
	embedder Embedder
	index    VectorIndex
}

// NewSearcher creates a Searcher
func NewSearcher(embedder Embedder, index VectorIndex) *Searcher {
	return &Searcher{
		embedder: embedder,
		index:    index,
	}
}

// QueryCollection embeds the query with the same model used at ingestion
// and returns up to topK chunks by similarity. Non-positive topK falls
// back to the default.
func (s *Searcher) QueryCollection(ctx context.Context, collection, query string, topK int) ([]RetrievedChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	chunks, err := s.index.Query(ctx, collection, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	return chunks, nil
}

type searchService struct {
	mgr      *Manager
	searcher *Searcher
}

// NewSearchService creates the session-scoped search service
func NewSearchService(mgr *Manager, searcher *Searcher) SearchService {
	return &searchService{
		mgr:      mgr,
		searcher: searcher,
	}
}

func (s *searchService) Search(ctx context.Context, sessionID string, query string, topK int) ([]RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyMessage
	}

	var results []RetrievedChunk
	err := s.mgr.withSession(sessionID, func(sess *session) error {
		chunks, err := s.searcher.QueryCollection(ctx, sessionCollection(sess.id), query, topK)
		if err != nil {
			return err
		}
		results = chunks
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
