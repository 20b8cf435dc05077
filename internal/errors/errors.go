package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// DataFileMissingError signals that the sentiment CSV is absent. Fatal for
// the session: nothing renders until the file exists at the expected path.
func DataFileMissingError(path string) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, "DATA_FILE_MISSING",
		fmt.Sprintf("Market sentiment data file not found at %s", path),
		map[string]interface{}{"path": path})
}

// DataFileCorruptError signals that the sentiment CSV exists but failed to
// parse. Treated identically to a missing file: fail closed, never partial.
func DataFileCorruptError(path string, err error) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, "DATA_FILE_CORRUPT",
		fmt.Sprintf("Market sentiment data file at %s could not be parsed", path),
		map[string]interface{}{"path": path, "error": err.Error()})
}

// NoDataForDateError signals that a selected day has zero rows. Scoped to
// the single-day chart; the rest of the page is unaffected.
func NoDataForDateError(date string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NO_DATA_FOR_DATE",
		fmt.Sprintf("No market data for %s", date),
		map[string]interface{}{"date": date})
}
