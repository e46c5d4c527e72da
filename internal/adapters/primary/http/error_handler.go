package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/concernrise/concern-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorEnvelope is the JSON error response format
type ErrorEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  map[string][]string    `json:"errors,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	// Check for AppError first (our custom error type)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err, requestID)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorEnvelope{
			Success: false,
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	// Check for field-level validation errors
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusBadRequest, err, requestID)
		h.writeErrorResponse(w, http.StatusBadRequest, ErrorEnvelope{
			Success: false,
			Message: "Validation failed",
			Errors:  validationErrs.Errors,
		})
		return
	}

	// Map known domain errors to HTTP responses
	statusCode, message := h.mapDomainError(err)
	h.logError(r, statusCode, err, requestID)
	h.writeErrorResponse(w, statusCode, ErrorEnvelope{
		Success: false,
		Message: message,
	})
}

// mapDomainError converts domain errors to HTTP status codes and messages
func (h *ErrorHandler) mapDomainError(err error) (int, string) {
	switch {
	// Authentication & Authorization
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, "Your account has been deactivated"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action"

	// Not found
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, apperrors.ErrConcernNotFound):
		return http.StatusNotFound, "Concern not found"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Resource not found"

	// Conflicts
	case errors.Is(err, apperrors.ErrUserExists):
		return http.StatusConflict, "A user with this email already exists"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "Resource conflict"

	// Validation
	case errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrInvalidSeverity),
		errors.Is(err, apperrors.ErrInvalidCategory),
		errors.Is(err, apperrors.ErrNotRatable),
		errors.Is(err, apperrors.ErrMentorRequired),
		errors.Is(err, apperrors.ErrMessageRequired),
		errors.Is(err, apperrors.ErrMessageTooLong),
		errors.Is(err, apperrors.ErrPasswordTooWeak),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error()

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please try again later."

	// Default to internal server error
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error, requestID string) {
	logAttrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
