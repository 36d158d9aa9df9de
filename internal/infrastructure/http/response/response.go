// Package response renders the JSON envelope every API endpoint answers with
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a successful envelope
func OK(w http.ResponseWriter, status int, data interface{}, message string) {
	JSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

// Error renders err. AppErrors keep their status and code; anything else is
// reported as an internal error without leaking its text.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	requestID := chimiddleware.GetReqID(r.Context())

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError("An unexpected error occurred").WithCause(err)
	}

	status := appErr.StatusCode()
	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Int("status", status),
		}
		if appErr.Cause != nil {
			fields = append(fields, zap.Error(appErr.Cause))
		}
		if status >= http.StatusInternalServerError {
			logger.Error(appErr.Message, fields...)
		} else {
			logger.Debug(appErr.Message, fields...)
		}
	}

	body := errors.ToErrorResponse(appErr, requestID)
	JSON(w, status, APIResponse{
		Success: false,
		Error:   &body.Error,
		Message: appErr.Message,
	})
}
