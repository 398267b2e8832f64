package ollama_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfchat/src/infrastructure/integrations/ollama"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("request path = %q, want /api/embed", r.URL.Path)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "test-embed" {
			t.Errorf("request model = %q, want test-embed", req.Model)
		}
		if len(req.Input) != 2 || req.Input[0] != "first" || req.Input[1] != "second" {
			t.Errorf("request input = %q", req.Input)
		}

		fmt.Fprint(w, `{"model":"test-embed","embeddings":[[0.1,0.2],[0.3,0.4]]}`)
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "test-embed")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	vectors, err := client.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Embed() returned %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 2 || vectors[0][0] != 0.1 {
		t.Errorf("Embed() first vector = %v, want [0.1 0.2]", vectors[0])
	}
}

func TestEmbedNoTexts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "test-embed")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	vectors, err := client.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("Embed() returned %d vectors, want 0", len(vectors))
	}
	if calls != 0 {
		t.Errorf("Embed() made %d requests, want 0 for empty input", calls)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"model":"test-embed","embeddings":[[0.1,0.2]]}`)
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "test-embed")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Embed(context.Background(), []string{"first", "second"}); err == nil {
		t.Error("Embed() error = nil, want count mismatch error")
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"model not found"}`)
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "test-embed")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Embed(context.Background(), []string{"text"}); err == nil {
		t.Error("Embed() error = nil, want server error surfaced")
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("request path = %q, want /api/tags", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[]}`)
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
