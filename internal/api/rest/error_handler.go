package rest

import (
	"context"
	"errors"
	"net/http"

	domainErrors "github.com/flarecast/flarecast-backend/internal/domain/errors"
)

// ErrorHandler maps errors to HTTP status codes and error bodies.
type ErrorHandler interface {
	HandleError(err error) (int, *ErrorResponse)
}

// DefaultErrorHandler maps domain AppErrors, validation errors and context
// errors. Anything else becomes an opaque 500.
type DefaultErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() ErrorHandler {
	return DefaultErrorHandler{}
}

// HandleError converts various error types to HTTP responses
func (DefaultErrorHandler) HandleError(err error) (int, *ErrorResponse) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, &ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable,
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: validationErr.Message,
			Details: validationErr.Details,
			Fields:  validationErr.Fields,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, &ErrorResponse{
			Code:      "REQUEST_TIMEOUT",
			Message:   "Request timed out",
			Retryable: true,
		}
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout, &ErrorResponse{
			Code:    "REQUEST_CANCELED",
			Message: "Request was canceled",
		}
	}

	return http.StatusInternalServerError, &ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}
}
