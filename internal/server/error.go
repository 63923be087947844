package server

import (
	"net/http"

	"github.com/pkg/errors"
)

// The messages of these errors are the response bodies sent to clients.
var (
	errMissingParams   = errors.New("missing a or b query parameters")
	errInvalidMode     = errors.New("invalid mode")
	errInvalidEncoding = errors.New("invalid a or b query parameters")
	errInputTooLarge   = errors.New("input too large")
	errTooManyRequests = errors.New("too many requests")
)

func statusOf(err error) int {
	switch errors.Cause(err) {
	case errMissingParams, errInvalidMode, errInvalidEncoding:
		return http.StatusBadRequest
	case errInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case errTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
