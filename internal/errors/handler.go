package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"breadthpulse/internal/breadth"
)

// ErrorHandler provides centralized error handling for HTTP handlers
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger,
		includeStack: includeStack,
	}
}

// HandleError converts any error to an RFC 7807 problem response and writes it
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	problem := h.ErrorToProblem(r, err)

	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status),
		slog.String("type", problem.Type),
		slog.String("error", err.Error()),
	}
	if h.includeStack && problem.Status >= 500 {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}

	if problem.Status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		h.logger.WarnContext(r.Context(), "request error", attrs...)
	}

	// Written directly so the problem+json content type survives
	body, marshalErr := json.Marshal(problem)
	if marshalErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to marshal error response",
			slog.String("error", marshalErr.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	w.Write(body)
}

// ErrorToProblem maps domain and transport errors to problem details
func (h *ErrorHandler) ErrorToProblem(r *http.Request, err error) *ProblemDetails {
	instance := r.URL.Path

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "The request took too long to process", instance)

	case stderrors.Is(err, context.Canceled):
		return NewProblemDetails(499, TypeTimeout,
			"Request Cancelled", "The request was cancelled by the client", instance)

	case stderrors.Is(err, breadth.ErrDataFileMissing):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable,
			"Data File Missing", err.Error(), instance).
			WithExtension("error_code", "DATA_FILE_MISSING")

	case stderrors.Is(err, breadth.ErrDataFileCorrupt):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeDataCorrupted,
			"Data File Corrupt", err.Error(), instance).
			WithExtension("error_code", "DATA_FILE_CORRUPT")

	case stderrors.Is(err, breadth.ErrNoDataForDate):
		return NewProblemDetails(http.StatusNotFound, TypeDataNotFound,
			"No Data For Date", err.Error(), instance).
			WithExtension("error_code", "NO_DATA_FOR_DATE")
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, instance)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", instance)
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, instance string) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		problemType = TypeValidation
	case http.StatusNotFound:
		problemType = TypeNotFound
	case http.StatusTooManyRequests:
		problemType = TypeRateLimit
	case http.StatusServiceUnavailable:
		problemType = TypeServiceUnavailable
	}

	switch apiErr.ErrorCode {
	case "DATA_FILE_MISSING":
		problemType = TypeDataUnavailable
	case "DATA_FILE_CORRUPT":
		problemType = TypeDataCorrupted
	case "NO_DATA_FOR_DATE":
		problemType = TypeDataNotFound
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType,
		http.StatusText(apiErr.StatusCode), apiErr.Message, instance).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}
