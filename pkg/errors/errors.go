// Package errors defines the sentinel errors shared across the indexing and
// query pipelines, plus the HTTP status mapping used by the search service.
//
// Every per-document and per-query failure wraps one of these sentinels so
// callers can classify with errors.Is without string matching. None of them
// abort a batch run: the builder skips the offending document and the query
// driver emits an empty result line for the offending query.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSchemaViolation marks a document that cannot be indexed, e.g. one
	// missing its identifier field. The document is skipped and reported.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMalformedQuery marks unparseable query syntax. The query degrades to
	// a no-op that matches nothing.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrMissingField marks a stored or numeric field absent from a matched
	// document. Lookups return the zero value instead of propagating it.
	ErrMissingField = errors.New("missing field")

	// ErrIOFailure marks an unreadable source document or index file.
	ErrIOFailure = errors.New("io failure")
)

// AppError attaches a human-readable message and an HTTP status to a sentinel.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code searchd should return.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrMalformedQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrSchemaViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
