// Package errors holds the sentinel errors shared across layers and their
// mapping to transport status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest rejects a send with a missing recipient or empty
	// content before any side effect happens.
	ErrInvalidRequest = fmt.Errorf("invalid request")

	// ErrPersistence marks a storage write failure. A message that failed
	// to persist is never delivered to any room.
	ErrPersistence = fmt.Errorf("persistence failure")

	// ErrUnauthorizedJoin rejects a join whose target room does not match
	// the connection's authenticated identity.
	ErrUnauthorizedJoin = fmt.Errorf("unauthorized join")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrContactExists      = fmt.Errorf("contact already exists")
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// MapToHTTPStatus translates domain errors into HTTP status codes at the
// gateway boundary. Unknown errors stay 500 so internals never leak.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorizedJoin):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrContactExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
