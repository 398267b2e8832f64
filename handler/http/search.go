package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/src/core/docchat"
)

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"topK"`
}

// Search godoc
// @Summary Search indexed chunks in a session
// @Tags search
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body searchRequest true "Search parameters"
// @Success 200 {array} docchat.RetrievedChunk
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{id}/search [post]
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", docchat.ErrInvalidRequest, err))
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), c.Param("id"), req.Query, req.TopK)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, results)
}
