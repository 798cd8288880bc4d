package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDatabaseUnavailable is returned when the configured database cannot be reached.
	ErrDatabaseUnavailable = errors.New("database unavailable")
	// ErrUnsupportedDatabase is returned when the connection string names an unknown dialect.
	ErrUnsupportedDatabase = errors.New("unsupported database")
	// ErrSchemaCreation is returned when missing tables cannot be created.
	ErrSchemaCreation = errors.New("schema creation failed")
	// ErrUnknownCommand is returned when an operator command is not registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrSeedFailed is returned when the sample data routine aborts.
	ErrSeedFailed = errors.New("seed failed")
	// ErrNoLibrarian is returned when startup cannot leave a librarian account in place.
	ErrNoLibrarian = errors.New("no librarian account")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrDatabaseUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, ErrDatabaseUnavailable.Error(), "DATABASE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
