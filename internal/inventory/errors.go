package inventory

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a request the record's current state forbids.
	ErrConflict = errors.New("conflict")
	// ErrInvalid marks a malformed or out-of-range field.
	ErrInvalid = errors.New("invalid")
	// ErrTooLarge marks an upload over the size limit.
	ErrTooLarge = errors.New("too large")
)

// DetailError pairs a sentinel with the message reported to clients.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

func notFound(noun string) error {
	return &DetailError{Kind: ErrNotFound, Detail: noun + " not found"}
}

func conflict(format string, args ...any) error {
	return &DetailError{Kind: ErrConflict, Detail: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return &DetailError{Kind: ErrInvalid, Detail: fmt.Sprintf(format, args...)}
}

// StatusOf maps an error to its HTTP status and client-facing detail.
func StatusOf(err error) (int, string) {
	var de *DetailError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch {
	case errors.Is(de.Kind, ErrNotFound):
		return http.StatusNotFound, de.Detail
	case errors.Is(de.Kind, ErrConflict):
		return http.StatusBadRequest, de.Detail
	case errors.Is(de.Kind, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, de.Detail
	default:
		return http.StatusUnprocessableEntity, de.Detail
	}
}
