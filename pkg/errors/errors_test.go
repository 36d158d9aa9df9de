package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeAuthFailed, http.StatusUnauthorized},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeItemNotFound, http.StatusNotFound},
		{CodeRecipeNotFound, http.StatusNotFound},
		{CodeCaptureNotFound, http.StatusNotFound},
		{CodeUnknownPartner, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{CodeFeedUnavailable, http.StatusServiceUnavailable},
		{CodeExternalServiceError, http.StatusServiceUnavailable},
		{CodeDatabaseError, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, NewAppError(tt.code, "m", "").StatusCode())
		})
	}
}

func TestAppError_Chain(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewDatabaseError("save capture", cause)

	assert.Equal(t, "DATABASE_ERROR: Database operation failed (Failed to save capture)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace)

	wrapped := fmt.Errorf("upload: %w", err)
	assert.True(t, Is(wrapped, CodeDatabaseError))
	assert.False(t, Is(wrapped, CodeInternal))
	assert.Equal(t, CodeDatabaseError, GetCode(wrapped))
	assert.Equal(t, CodeInternal, GetCode(cause))
	assert.Same(t, err, Wrap(wrapped, "ignored"))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))

	err := Wrap(stderrors.New("boom"), "failed to load")
	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, "failed to load", err.Message)
	assert.EqualError(t, err.Cause, "boom")
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "Authentication required", NewUnauthorizedError("").Message)
	assert.Equal(t, "An unexpected error occurred", NewInternalError("").Message)

	nf := NewNotFoundError(CodeRecipeNotFound, "Recipe not found", "42")
	assert.Equal(t, "42", nf.Metadata["id"])

	feed := NewFeedError("Failed to load inventory data", stderrors.New("eof"))
	assert.Equal(t, CodeFeedUnavailable, feed.Code)
	assert.Equal(t, "Failed to load inventory data", feed.Message)

	auth := NewAuthError("Password should be at least 6 characters", nil)
	assert.Equal(t, http.StatusUnauthorized, auth.StatusCode())
}

func TestFromValidator(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
		Diet     string `validate:"oneof=vegetarian any"`
	}

	err := validator.New().Struct(form{Email: "nope", Password: "abc", Diet: "keto"})
	require.Error(t, err)

	appErr := FromValidator(err)
	assert.Equal(t, CodeValidationFailed, appErr.Code)

	errs, ok := appErr.Metadata["validation_errors"].(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 3)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "email must be a valid email address", errs[0].Message)
	assert.Equal(t, "nope", errs[0].Value)
	assert.Equal(t, "password must be at least 6 characters", errs[1].Message)
	assert.Nil(t, errs[1].Value)
	assert.Equal(t, "diet must be one of vegetarian any", errs[2].Message)

	plain := FromValidator(stderrors.New("not a field error"))
	assert.Equal(t, "not a field error", plain.Details)
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewBadRequestError("No image file provided"), "req-1")
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "No image file provided", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Timestamp)
	assert.Equal(t, "validation failed", ValidationErrors(nil).Error())
}
