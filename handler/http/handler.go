package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/src/core/docchat"
)

type Handler struct {
	sessionService docchat.SessionService
	ingestService  docchat.IngestService
	searchService  docchat.SearchService
	chatService    docchat.ChatService
	sysService     docchat.SystemService
	maxUploadBytes int64
}

func NewHandler(sessionService docchat.SessionService, ingestService docchat.IngestService, searchService docchat.SearchService, chatService docchat.ChatService, sysService docchat.SystemService, maxUploadBytes int64) *Handler {
	return &Handler{
		sessionService: sessionService,
		ingestService:  ingestService,
		searchService:  searchService,
		chatService:    chatService,
		sysService:     sysService,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers the UI and all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)

	api := r.Group("/api/v1")

	// Session routes
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)

	// Document routes
	api.POST("/sessions/:id/documents", h.UploadDocuments)
	api.GET("/sessions/:id/documents", h.ListDocuments)

	// Chat routes
	api.POST("/sessions/:id/chat", h.Chat)
	api.GET("/sessions/:id/history", h.GetChatHistory)

	// Search routes
	api.POST("/sessions/:id/search", h.Search)

	// System routes
	api.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func errorStatus(err error) (string, int) {
	switch {
	case errors.Is(err, docchat.ErrSessionNotFound):
		return "SESSION_NOT_FOUND", http.StatusNotFound
	case errors.Is(err, docchat.ErrEmptyMessage),
		errors.Is(err, docchat.ErrNoFilesUploaded),
		errors.Is(err, docchat.ErrInvalidRequest):
		return "VALIDATION_ERROR", http.StatusBadRequest
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

func sendError(c *gin.Context, status int, err error) {
	code, status := errorStatus(err)
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
