package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type DocumentHandler struct {
	log      *logger.Logger
	ingest   services.IngestionService
	maxBytes int64
}

func NewDocumentHandler(log *logger.Logger, ingest services.IngestionService, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{log: log.With("handler", "DocumentHandler"), ingest: ingest, maxBytes: maxBytes}
}

func (h *DocumentHandler) readUpload(c *gin.Context) (services.UploadInput, bool) {
	rd, ok := caller(c)
	if !ok {
		return services.UploadInput{}, false
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest(fmt.Errorf("multipart field \"file\" required")))
		return services.UploadInput{}, false
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		response.RespondAPIError(c, apierr.BadRequest(fmt.Errorf("file larger than %d bytes", h.maxBytes)))
		return services.UploadInput{}, false
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest(err))
		return services.UploadInput{}, false
	}
	defer f.Close()
	limit := h.maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest(err))
		return services.UploadInput{}, false
	}
	return services.UploadInput{
		OwnerID:      rd.UserID,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Data:         data,
	}, true
}

// UploadChat handles POST /api/documents/chat.
func (h *DocumentHandler) UploadChat(c *gin.Context) {
	in, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.ingest.IngestChat(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// UploadTopics handles POST /api/documents/topics. A duplicate upload answers 200 with the stored topics.
func (h *DocumentHandler) UploadTopics(c *gin.Context) {
	in, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.ingest.IngestTopics(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, res)
}
