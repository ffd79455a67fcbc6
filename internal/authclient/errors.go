package authclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRejected means the API answered with a non-success status.
	ErrRejected = errors.New("request rejected by server")
	// ErrProtocol means the API answered 200 with a body the client cannot use.
	ErrProtocol = errors.New("malformed server response")
)

// StatusError carries the HTTP status of a rejected call.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: server responded %d", e.Op, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrRejected }

// Unauthorized reports whether the server refused the credentials, as opposed
// to failing for any other reason.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized
}

// ProtocolError describes a success response that could not be used.
type ProtocolError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProtocol, e.Err}
	}
	return []error{ErrProtocol}
}

// IsUnauthorized reports whether err is a 401 from the auth API.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Unauthorized()
}
