package http

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var indexHTML []byte

// Index godoc
// @Summary Serve the chat UI
// @Tags ui
// @Produce html
// @Success 200 {string} string
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
