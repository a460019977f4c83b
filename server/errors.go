package server

import (
	"net/http"

	"github.com/teranos/eavto/errors"
)

// errDraining rejects work that arrives during shutdown.
var errDraining = errors.New("server is shutting down")

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrReservedOrigin):
		return http.StatusForbidden
	case errors.IsParseError(err), errors.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errDraining):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// publicMessage is the error text safe to show a client.
func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
