package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failure reported by the server.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func newAPIError(status int, env envelope) *APIError {
	msg := env.Msg
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Code: env.Code, Msg: msg}
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Msg)
}

// IsSessionExpired reports whether err means the user must log in again.
func IsSessionExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "token_expired"
}

// StatusOf returns the HTTP status of an API error, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
