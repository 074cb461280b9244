package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "speech-whisper/internal/api/errors"
	"speech-whisper/internal/api/middleware"
	"speech-whisper/internal/api/v1/dto"
	"speech-whisper/internal/api/v1/services"
)

// TranscriptionHandler handles the record, upload, status and transcript endpoints
type TranscriptionHandler struct {
	service     services.TranscriptionService
	maxUploadMB int
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService, maxUploadMB int) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:     service,
		maxUploadMB: maxUploadMB,
	}
}

// Record handles POST /api/v1/recordings
// Records from the server's microphone and transcribes the result.
// An empty body records for the configured default duration.
func (h *TranscriptionHandler) Record(c *gin.Context) {
	var req dto.RecordRequest

	if c.Request.ContentLength != 0 {
		if err := middleware.ValidateRequest(c, &req); err != nil {
			middleware.HandleError(c, err)
			return
		}
	}

	response, err := h.service.Record(c.Request.Context(), req.DurationSeconds)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Upload handles POST /api/v1/transcriptions/upload
// Transcribes the multipart "file" field.
func (h *TranscriptionHandler) Upload(c *gin.Context) {
	if h.maxUploadMB > 0 {
		limit := int64(h.maxUploadMB) << 20
		if c.Request.ContentLength > limit {
			middleware.HandleError(c, apierrors.NewPayloadTooLargeError(h.maxUploadMB))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.HandleError(c, apierrors.NewPayloadTooLargeError(h.maxUploadMB))
			return
		}
		middleware.HandleError(c, apierrors.NewBadRequestError("No file uploaded"))
		return
	}
	defer file.Close()

	response, err := h.service.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Status handles GET /api/v1/status
func (h *TranscriptionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status(c.Request.Context()))
}

// Transcript handles GET /api/v1/transcript
// Streams the saved transcript as a text attachment.
func (h *TranscriptionHandler) Transcript(c *gin.Context) {
	rc, file, err := h.service.OpenTranscript(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.DataFromReader(http.StatusOK, file.Size, "text/plain; charset=utf-8", io.NopCloser(rc), nil)
}
