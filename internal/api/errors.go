package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps coded errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render coded errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var coded *apperrors.Error
			if errors.As(err, &coded) {
				return &APIError{
					status:  coded.HTTPStatus(),
					Code:    string(coded.Code),
					Message: coded.Message,
					Details: coded.Details,
				}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}

		// Request validation failures from huma carry per-field details.
		if len(errs) > 0 && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) {
			details := make([]string, 0, len(errs))
			for _, err := range errs {
				details = append(details, err.Error())
			}
			apiErr.Details = details
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(apperrors.CodeValidation)
	case http.StatusNotFound:
		return string(apperrors.CodeNotFound)
	case http.StatusTooManyRequests:
		return string(apperrors.CodeRateLimited)
	default:
		return string(apperrors.CodeInternal)
	}
}

// toHTTPError converts service errors into huma status errors so the coded
// status survives.
func toHTTPError(err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	return huma.NewError(http.StatusInternalServerError, err.Error(), err)
}
