package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pdfchat/src/core/docchat"
)

type stubSessionService struct {
	info    *docchat.SessionInfo
	err     error
	docs    []docchat.DocumentInfo
	history []docchat.ChatMessage
	deleted []string
}

func (s *stubSessionService) Create(ctx context.Context) (*docchat.SessionInfo, error) {
	return s.info, s.err
}

func (s *stubSessionService) Get(ctx context.Context, id string) (*docchat.SessionInfo, error) {
	return s.info, s.err
}

func (s *stubSessionService) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubSessionService) ListDocuments(ctx context.Context, id string) ([]docchat.DocumentInfo, error) {
	return s.docs, s.err
}

func (s *stubSessionService) History(ctx context.Context, id string) ([]docchat.ChatMessage, error) {
	return s.history, s.err
}

type stubIngestService struct {
	report   *docchat.IngestReport
	err      error
	received []docchat.UploadFile
}

func (s *stubIngestService) IngestFiles(ctx context.Context, sessionID string, files []docchat.UploadFile) (*docchat.IngestReport, error) {
	s.received = files
	return s.report, s.err
}

type stubSearchService struct {
	results []docchat.RetrievedChunk
	err     error
}

func (s *stubSearchService) Search(ctx context.Context, sessionID string, query string, topK int) ([]docchat.RetrievedChunk, error) {
	return s.results, s.err
}

type stubChatService struct {
	sources    []docchat.RetrievedChunk
	deltas     []string
	completion *docchat.ChatCompletion
	err        error
}

func (s *stubChatService) StreamCompletion(ctx context.Context, sessionID string, message string, onSources func(chunks []docchat.RetrievedChunk) error, onDelta func(delta string) error) (*docchat.ChatCompletion, error) {
	if len(s.sources) > 0 && onSources != nil {
		if err := onSources(s.sources); err != nil {
			return nil, err
		}
	}
	for _, d := range s.deltas {
		if onDelta != nil {
			if err := onDelta(d); err != nil {
				return nil, err
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.completion, nil
}

type stubSystemService struct {
	health *docchat.HealthStatus
	err    error
}

func (s *stubSystemService) CheckHealth(ctx context.Context) (*docchat.HealthStatus, error) {
	return s.health, s.err
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func performJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestCreateSession(t *testing.T) {
	sess := &stubSessionService{info: &docchat.SessionInfo{ID: "abc-123"}}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodPost, "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /sessions status = %d, want 201", w.Code)
	}

	var got docchat.SessionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID != "abc-123" {
		t.Errorf("POST /sessions ID = %q, want abc-123", got.ID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	sess := &stubSessionService{err: docchat.ErrSessionNotFound}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodGet, "/api/v1/sessions/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /sessions/missing status = %d, want 404", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "SESSION_NOT_FOUND" {
		t.Errorf("GET /sessions/missing code = %q, want SESSION_NOT_FOUND", resp.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	sess := &stubSessionService{}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodDelete, "/api/v1/sessions/abc", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /sessions/abc status = %d, want 204", w.Code)
	}
	if len(sess.deleted) != 1 || sess.deleted[0] != "abc" {
		t.Errorf("DELETE /sessions/abc deleted = %v, want [abc]", sess.deleted)
	}
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadRejectsNonPDF(t *testing.T) {
	ingest := &stubIngestService{}
	h := NewHandler(&stubSessionService{}, ingest, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello"))
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sessions/abc/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("upload status = %d, want 400", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Code != "VALIDATION_ERROR" || !strings.Contains(resp.Message, "not a PDF") {
		t.Errorf("upload error = %+v, want VALIDATION_ERROR about non-PDF", resp)
	}
	if ingest.received != nil {
		t.Error("upload passed files to the ingest service despite validation failure")
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	h := NewHandler(&stubSessionService{}, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 4)
	r := newTestRouter(h)

	body, contentType := multipartBody(t, "big.pdf", []byte("0123456789"))
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sessions/abc/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("upload status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); !strings.Contains(resp.Message, "upload size limit") {
		t.Errorf("upload error = %+v, want size limit message", resp)
	}
}

func TestUploadPassesFilesToIngest(t *testing.T) {
	ingest := &stubIngestService{report: &docchat.IngestReport{Status: "done", Files: []docchat.FileResult{{Filename: "report.pdf", Pages: 2, Chunks: 5}}}}
	h := NewHandler(&stubSessionService{}, ingest, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	body, contentType := multipartBody(t, "report.pdf", []byte("%PDF-fake"))
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sessions/abc/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if len(ingest.received) != 1 || ingest.received[0].Name != "report.pdf" {
		t.Fatalf("ingest received = %+v, want report.pdf", ingest.received)
	}
	if string(ingest.received[0].Data) != "%PDF-fake" {
		t.Errorf("ingest received data = %q", ingest.received[0].Data)
	}

	var report docchat.IngestReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Status != "done" || len(report.Files) != 1 {
		t.Errorf("upload report = %+v", report)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	h := NewHandler(&stubSessionService{info: &docchat.SessionInfo{ID: "abc"}}, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	for _, body := range []string{`{}`, `{"message":"   "}`} {
		w := performJSON(r, http.MethodPost, "/api/v1/sessions/abc/chat", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("chat with body %s status = %d, want 400", body, w.Code)
			continue
		}
		if resp := decodeError(t, w); resp.Code != "VALIDATION_ERROR" {
			t.Errorf("chat with body %s code = %q, want VALIDATION_ERROR", body, resp.Code)
		}
	}
}

func TestChatMissingSessionIsJSON(t *testing.T) {
	sess := &stubSessionService{err: docchat.ErrSessionNotFound}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodPost, "/api/v1/sessions/missing/chat", `{"message":"hi"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("chat status = %d, want 404 before streaming starts", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("chat Content-Type = %q, want JSON error", ct)
	}
	if resp := decodeError(t, w); resp.Code != "SESSION_NOT_FOUND" {
		t.Errorf("chat code = %q, want SESSION_NOT_FOUND", resp.Code)
	}
}

func TestChatStreamsEventsInOrder(t *testing.T) {
	chat := &stubChatService{
		sources: []docchat.RetrievedChunk{{Filename: "report.pdf", Page: 2, Score: 0.9}},
		deltas:  []string{"Hello ", "world\nagain"},
		completion: &docchat.ChatCompletion{
			Message: docchat.ChatMessage{Role: "assistant", Content: "Hello world\nagain"},
		},
	}
	sess := &stubSessionService{info: &docchat.SessionInfo{ID: "abc"}}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, chat, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodPost, "/api/v1/sessions/abc/chat", `{"message":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("chat Content-Type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	iSources := strings.Index(body, "event: sources\n")
	iDelta := strings.Index(body, "data: Hello \n")
	iEscaped := strings.Index(body, `data: world\nagain`)
	iDone := strings.Index(body, "event: done\n")

	if iSources < 0 || iDelta < 0 || iEscaped < 0 || iDone < 0 {
		t.Fatalf("chat stream missing frames:\n%s", body)
	}
	if !(iSources < iDelta && iDelta < iEscaped && iEscaped < iDone) {
		t.Errorf("chat stream order wrong: sources=%d delta=%d escaped=%d done=%d", iSources, iDelta, iEscaped, iDone)
	}
	if !strings.Contains(body[iSources:], "report.pdf") {
		t.Errorf("chat sources event missing the chunk:\n%s", body)
	}
}

func TestChatStreamsErrorEvent(t *testing.T) {
	chat := &stubChatService{deltas: []string{"partial"}, err: errors.New("model unavailable")}
	sess := &stubSessionService{info: &docchat.SessionInfo{ID: "abc"}}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, chat, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodPost, "/api/v1/sessions/abc/chat", `{"message":"hi"}`)

	body := w.Body.String()
	if !strings.Contains(body, "data: partial\n") {
		t.Errorf("chat stream missing the partial delta:\n%s", body)
	}
	if !strings.Contains(body, "event: error\n") || !strings.Contains(body, "INTERNAL_ERROR") {
		t.Errorf("chat stream missing the error event:\n%s", body)
	}
	if strings.Contains(body, "event: done\n") {
		t.Errorf("chat stream has a done event after an error:\n%s", body)
	}
}

func TestSearch(t *testing.T) {
	search := &stubSearchService{results: []docchat.RetrievedChunk{{Content: "text", Filename: "a.pdf", Page: 1, Score: 0.8}}}
	h := NewHandler(&stubSessionService{}, &stubIngestService{}, search, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodPost, "/api/v1/sessions/abc/search", `{"query":"text","topK":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	var results []docchat.RetrievedChunk
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding results: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "a.pdf" {
		t.Errorf("search results = %+v", results)
	}

	w = performJSON(r, http.MethodPost, "/api/v1/sessions/abc/search", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search without query status = %d, want 400", w.Code)
	}
}

func TestGetChatHistory(t *testing.T) {
	sess := &stubSessionService{history: []docchat.ChatMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	}}
	h := NewHandler(sess, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodGet, "/api/v1/sessions/abc/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", w.Code)
	}
	var history []docchat.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history) != 2 || history[1].Role != "assistant" {
		t.Errorf("history = %+v", history)
	}
}

func TestCheckHealth(t *testing.T) {
	health := &docchat.HealthStatus{Status: "ok"}
	health.Components.LLM = docchat.StatusUp
	health.Components.Embedder = docchat.StatusUp
	health.Components.VectorStore = docchat.StatusUp

	h := NewHandler(&stubSessionService{}, &stubIngestService{}, &stubSearchService{}, &stubChatService{}, &stubSystemService{health: health}, 0)
	r := newTestRouter(h)

	w := performJSON(r, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	var got docchat.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if got.Status != "ok" || got.Components.VectorStore != docchat.StatusUp {
		t.Errorf("health = %+v", got)
	}
}
