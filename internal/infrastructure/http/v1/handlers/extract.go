package handlers

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"facturo/internal/core/apperror"
	"facturo/internal/domain/extraction"
	"facturo/internal/domain/invoice"
	"facturo/internal/infrastructure/http/v1/dto"
	"facturo/internal/infrastructure/storage/blob"
	"facturo/pkg/logger"
)

// allowedUploadTypes is the content-type allowlist for invoice documents.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/bmp":       true,
	"image/tiff":      true,
}

const maxUploadBytes = 20 << 20 // 20 MiB

// ExtractHandler handles the document extraction pipeline endpoint.
type ExtractHandler struct {
	*BaseHandler
	extractor  extraction.Extractor
	blobs      *blob.Store
	reconciler *invoice.Reconciler
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(
	base *BaseHandler,
	extractor extraction.Extractor,
	blobs *blob.Store,
	reconciler *invoice.Reconciler,
) *ExtractHandler {
	return &ExtractHandler{
		BaseHandler: base,
		extractor:   extractor,
		blobs:       blobs,
		reconciler:  reconciler,
	}
}

// Extract handles POST /invoices/extract.
//
// The uploaded document is stored, run through the external extractor and
// normalized. The draft is always returned; it is additionally reconciled
// into persistent rows when the save=1 query parameter is present.
func (h *ExtractHandler) Extract(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithDetail("error", err.Error()))
		return
	}

	if fileHeader.Size > maxUploadBytes {
		h.Error(c, apperror.NewValidation("file too large"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		h.Error(c, apperror.NewValidation("unsupported file type").
			WithDetail("contentType", contentType))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(fmt.Errorf("open upload: %w", err)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.Error(c, apperror.NewInternal(fmt.Errorf("read upload: %w", err)))
		return
	}

	storedPath, err := h.blobs.Save(data, "invoices", fileHeader.Filename)
	if err != nil {
		h.Error(c, apperror.NewInternal(fmt.Errorf("store upload: %w", err)))
		return
	}

	logger.Info(ctx, "document stored for extraction",
		"path", storedPath,
		"content_type", contentType,
		"size", fileHeader.Size)

	raw, err := h.extractor.Extract(ctx, storedPath)
	if err != nil {
		h.Error(c, err)
		return
	}

	draft, err := extraction.Normalize(raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ExtractResponse{Draft: draft}

	if c.Query("save") == "1" {
		result, err := h.reconciler.Reconcile(ctx, draft, &storedPath)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Saved = true
		resp.Result = result
	}

	h.OK(c, resp)
}
