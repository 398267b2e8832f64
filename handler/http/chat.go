package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat/src/core/docchat"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat godoc
// @Summary Stream a retrieval-augmented answer over SSE
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Param body body chatRequest true "User message"
// @Success 200 {string} string "SSE stream: event sources, data deltas, event done"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{id}/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	id := c.Param("id")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", docchat.ErrInvalidRequest, err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		sendError(c, http.StatusBadRequest, docchat.ErrEmptyMessage)
		return
	}

	// Resolve the session before committing to a streamed response so a
	// missing session still gets a JSON 404.
	if _, err := h.sessionService.Get(c.Request.Context(), id); err != nil {
		sendError(c, http.StatusNotFound, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	onSources := func(chunks []docchat.RetrievedChunk) error {
		return writeEvent(c, "sources", chunks)
	}
	onDelta := func(delta string) error {
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", sanitizeSSE(delta)); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	completion, err := h.chatService.StreamCompletion(c.Request.Context(), id, req.Message, onSources, onDelta)
	if err != nil {
		code, _ := errorStatus(err)
		_ = writeEvent(c, "error", ErrorResponse{Code: code, Message: err.Error()})
		return
	}

	_ = writeEvent(c, "done", completion)
}

// GetChatHistory godoc
// @Summary Get the ordered chat history of a session
// @Tags chat
// @Param id path string true "Session ID"
// @Produce json
// @Success 200 {array} docchat.ChatMessage
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{id}/history [get]
func (h *Handler) GetChatHistory(c *gin.Context) {
	history, err := h.sessionService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, history)
}

// writeEvent emits a named SSE event carrying a JSON payload
func writeEvent(c *gin.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// sanitizeSSE keeps multi-line deltas inside a single SSE frame. The UI
// reverses the escape when rendering.
func sanitizeSSE(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "\\n")
}
