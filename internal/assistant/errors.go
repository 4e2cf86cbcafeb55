package assistant

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every failure of the assistant backend. Callers
// decide whether to fall back or surface it.
var ErrUnavailable = errors.New("assistant unavailable")

// UnavailableError carries a human readable detail for error responses.
type UnavailableError struct {
	Detail string
	Status int
	Err    error
}

func (e *UnavailableError) Error() string { return e.Detail }

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

var ErrNotConfigured = &UnavailableError{Detail: "Backboard not configured."}

func responseError(status int, body []byte) *UnavailableError {
	return &UnavailableError{Detail: fmt.Sprintf("Backboard responded %d: %s", status, body), Status: status}
}

func unavailable(detail string, err error) *UnavailableError {
	return &UnavailableError{Detail: detail, Err: err}
}
