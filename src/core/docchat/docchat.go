package docchat

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("Session not found")
	ErrEmptyMessage    = errors.New("Message is empty")
	ErrNoFilesUploaded = errors.New("No files uploaded")
	ErrInvalidRequest  = errors.New("Invalid request")
)

// SessionService defines the interface for session lifecycle operations
type SessionService interface {
	Create(ctx context.Context) (*SessionInfo, error)
	Get(ctx context.Context, id string) (*SessionInfo, error)
	Delete(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, id string) ([]DocumentInfo, error)
	History(ctx context.Context, id string) ([]ChatMessage, error)
}

// IngestService defines the interface for document ingestion operations
type IngestService interface {
	IngestFiles(ctx context.Context, sessionID string, files []UploadFile) (*IngestReport, error)
}

// SearchService defines the interface for similarity search operations
type SearchService interface {
	Search(ctx context.Context, sessionID string, query string, topK int) ([]RetrievedChunk, error)
}

// ChatService defines the interface for chat operations. onSources fires
// once before generation when retrieval found context; onDelta fires for
// every streamed content fragment. Either callback may be nil.
type ChatService interface {
	StreamCompletion(ctx context.Context, sessionID string, message string, onSources func(chunks []RetrievedChunk) error, onDelta func(delta string) error) (*ChatCompletion, error)
}

// SystemService defines the interface for system operations
type SystemService interface {
	CheckHealth(ctx context.Context) (*HealthStatus, error)
}

// SessionInfo represents a chat session
type SessionInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActiveAt  time.Time `json:"lastActiveAt"`
	DocumentCount int       `json:"documentCount"`
	MessageCount  int       `json:"messageCount"`
}

// UploadFile carries the name and raw bytes of an uploaded file
type UploadFile struct {
	Name string
	Data []byte
}

// DocumentInfo represents an ingested document
type DocumentInfo struct {
	Filename  string    `json:"filename"`
	Pages     int       `json:"pages"`
	Chunks    int       `json:"chunks"`
	IndexedAt time.Time `json:"indexedAt"`
}

// FileResult represents the outcome of ingesting a single file
type FileResult struct {
	Filename string `json:"filename"`
	Pages    int    `json:"pages,omitempty"`
	Chunks   int    `json:"chunks,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IngestReport summarizes an upload batch
type IngestReport struct {
	Status string       `json:"status"`
	Files  []FileResult `json:"files"`
}

// ChatMessage represents a message in chat history
type ChatMessage struct {
	SessionID string    `json:"sessionId"`
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// RetrievedChunk represents a single chunk returned by retrieval
type RetrievedChunk struct {
	Content  string  `json:"content"`
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	ChunkID  string  `json:"chunkId"`
	Score    float64 `json:"score"`
}

// ChatCompletion is a completed assistant turn with the sources used for it
type ChatCompletion struct {
	Message ChatMessage      `json:"message"`
	Sources []RetrievedChunk `json:"sources"`
}

// ComponentStatus represents the status of system components
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string `json:"status"`
	Components struct {
		LLM         ComponentStatus `json:"llm"`
		Embedder    ComponentStatus `json:"embedder"`
		VectorStore ComponentStatus `json:"vectorStore"`
	} `json:"components"`
}
