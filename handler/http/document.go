package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat/src/core/docchat"
)

// UploadDocuments godoc
// @Summary Upload PDF files into a session
// @Tags documents
// @Accept multipart/form-data
// @Param id path string true "Session ID"
// @Param files formData file true "PDF files"
// @Produce json
// @Success 200 {object} docchat.IngestReport
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{id}/documents [post]
func (h *Handler) UploadDocuments(c *gin.Context) {
	id := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", docchat.ErrInvalidRequest, err))
		return
	}

	headers := form.File["files"]
	files := make([]docchat.UploadFile, 0, len(headers))
	for _, header := range headers {
		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %s is not a PDF file", docchat.ErrInvalidRequest, header.Filename))
			return
		}
		if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
			sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %s exceeds the upload size limit", docchat.ErrInvalidRequest, header.Filename))
			return
		}

		file, err := header.Open()
		if err != nil {
			sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to open uploaded file: %w", err))
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to read uploaded file: %w", err))
			return
		}

		files = append(files, docchat.UploadFile{
			Name: filepath.Base(header.Filename),
			Data: data,
		})
	}

	report, err := h.ingestService.IngestFiles(c.Request.Context(), id, files)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, report)
}

// ListDocuments godoc
// @Summary List documents indexed in a session
// @Tags documents
// @Param id path string true "Session ID"
// @Produce json
// @Success 200 {array} docchat.DocumentInfo
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions/{id}/documents [get]
func (h *Handler) ListDocuments(c *gin.Context) {
	documents, err := h.sessionService.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, documents)
}
