package docchat

import (
	"context"
)

type systemService struct {
	provider LLMProvider
	embedder Embedder
	index    VectorIndex
}

// NewSystemService creates the health-check service
func NewSystemService(provider LLMProvider, embedder Embedder, index VectorIndex) SystemService {
	return &systemService{
		provider: provider,
		embedder: embedder,
		index:    index,
	}
}

func (s *systemService) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Status: "healthy",
		Components: struct {
			LLM         ComponentStatus `json:"llm"`
			Embedder    ComponentStatus `json:"embedder"`
			VectorStore ComponentStatus `json:"vectorStore"`
		}{
			LLM:         StatusDown,
			Embedder:    StatusDown,
			VectorStore: StatusDown,
		},
	}

	// Check Groq
	if err := s.provider.Ping(ctx); err == nil {
		status.Components.LLM = StatusUp
	}

	// Check Ollama
	if err := s.embedder.Ping(ctx); err == nil {
		status.Components.Embedder = StatusUp
	}

	// Check vector store
	if err := s.index.Ping(ctx); err == nil {
		status.Components.VectorStore = StatusUp
	}

	// If any component is down, mark system as unhealthy
	if status.Components.LLM == StatusDown ||
		status.Components.Embedder == StatusDown ||
		status.Components.VectorStore == StatusDown {
		status.Status = "unhealthy"
	}

	return status, nil
}
