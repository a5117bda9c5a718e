// Package ecode defines the error kinds returned by the services and how each
// one is rendered at the HTTP boundary.
package ecode

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	Unauthorized
	Expired
	InvalidToken
	Forbidden
	NotFound
	InvalidCredential
	SelfFollow
)

var kindText = map[Kind]string{
	Internal:          "internal_error",
	Validation:        "validation_error",
	Conflict:          "conflict",
	Unauthorized:      "unauthorized",
	Expired:           "token_expired",
	InvalidToken:      "invalid_token",
	Forbidden:         "forbidden",
	NotFound:          "not_found",
	InvalidCredential: "invalid_credential",
	SelfFollow:        "self_follow_not_allowed",
}

// String returns the code sent to clients in the error envelope.
func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return kindText[Internal]
}

// Status maps a kind to its HTTP status.
func (k Kind) Status() int {
	switch k {
	case Validation, InvalidCredential, SelfFollow:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized, Expired, InvalidToken:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error carrying a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind and message, so sentinel values
// survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind with msg as the client-facing text.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-facing message of err. Unclassified errors never
// leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal server error"
}

// Helpers for the common kinds.

func ValidationError(msg string) *Error { return New(Validation, msg) }

func NotFoundError(msg string) *Error { return New(NotFound, msg) }

func ForbiddenError(msg string) *Error { return New(Forbidden, msg) }

func ConflictError(msg string) *Error { return New(Conflict, msg) }

func InternalError(err error) *Error { return Wrap(Internal, "Internal server error", err) }
