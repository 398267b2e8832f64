package docchat

import (
	"context"

	"pdfchat/src/infrastructure/integrations/groq"
)

// LLMProvider defines operations for language model interactions
type LLMProvider interface {
	// StreamChat streams a chat completion, invoking onDelta for each content
	// delta, and returns the full accumulated response
	StreamChat(ctx context.Context, messages []groq.Message, onDelta func(delta string) error) (string, error)
	// Ping verifies the provider is reachable and authorized
	Ping(ctx context.Context) error
}

// Embedder defines operations for embedding computation
type Embedder interface {
	// Embed computes one embedding vector per input text
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Ping verifies the embedding backend is reachable
	Ping(ctx context.Context) error
}

// IndexedChunk is a document chunk written to the vector index
type IndexedChunk struct {
	ID          string
	Text        string
	Filename    string
	Page        int
	ChunkNumber int
	TotalChunks int
	HasTables   bool
	CharCount   int
	WordCount   int
	Embedding   []float32
}

// VectorIndex defines operations for chunk storage and similarity search
type VectorIndex interface {
	// EnsureCollection creates the named collection if it does not exist
	EnsureCollection(ctx context.Context, collection string) error
	// DeleteCollection removes the named collection and all its chunks
	DeleteCollection(ctx context.Context, collection string) error
	// AddChunks stores chunks with their precomputed embeddings
	AddChunks(ctx context.Context, collection string, chunks []IndexedChunk) error
	// Query returns up to limit chunks most similar to the embedding
	Query(ctx context.Context, collection string, embedding []float32, limit int) ([]RetrievedChunk, error)
	// Count returns the number of chunks stored in the collection
	Count(ctx context.Context, collection string) (int, error)
	// Ping verifies the index backend is usable
	Ping(ctx context.Context) error
}

// Recorder archives completed work outside the serving path.
// Implementations must not block the caller beyond a queue publish.
type Recorder interface {
	// RecordDocument archives an ingested file and its descriptor
	RecordDocument(ctx context.Context, sessionID string, file UploadFile, info DocumentInfo) error
	// RecordExchange archives a completed user/assistant exchange
	RecordExchange(ctx context.Context, userMessage ChatMessage, assistantMessage ChatMessage) error
}
