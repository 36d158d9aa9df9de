package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

// multipart framing allowance on top of the image itself
const multipartOverhead = 1 << 20

// CaptureHandlers handles camera image uploads
type CaptureHandlers struct {
	captures inbound.CaptureService
	logger   *zap.Logger
}

// NewCaptureHandlers creates a new capture handlers instance
func NewCaptureHandlers(captures inbound.CaptureService, logger *zap.Logger) *CaptureHandlers {
	return &CaptureHandlers{captures: captures, logger: logger.Named("capture-handlers")}
}

// Upload handles POST /api/v1/captures with the image in the "image" field
func (h *CaptureHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, capture.MaxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			response.Error(w, r, h.logger, errors.NewAppError(errors.CodePayloadTooLarge, "Image too large", ""))
			return
		}
		response.Error(w, r, h.logger, errors.NewBadRequestError("No image file provided").WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, h.logger, errors.NewBadRequestError("No image file provided").WithCause(err))
		return
	}
	defer file.Close()

	c, err := h.captures.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusCreated, c, "Image uploaded")
}

// List handles GET /api/v1/captures?limit=
func (h *CaptureHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, r, h.logger, errors.NewValidationErrors([]errors.ValidationError{{
				Field:   "limit",
				Value:   raw,
				Tag:     "min",
				Message: "limit must be a positive integer",
			}}))
			return
		}
		limit = n
	}

	captures, err := h.captures.List(r.Context(), limit)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if captures == nil {
		captures = []*capture.Capture{}
	}
	response.OK(w, http.StatusOK, captures, "")
}

// Delete handles DELETE /api/v1/captures/{id}
func (h *CaptureHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.captures.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, nil, "Capture deleted")
}
