// Package domainerrors defines the coded error type returned by every service
// in this module. Callers branch on the Code, never on the message text.
//
// Services translate store-level sentinel errors (pkg/platform/sentinel) into
// coded errors at their boundary; the HTTP layer maps codes to status codes.
package domainerrors

import (
	"errors"
)

// Code identifies a failure kind that callers are expected to handle.
type Code string

const (
	// CodeInvalidInput: malformed or missing required field.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest: request shape is unusable before any domain check runs.
	CodeBadRequest Code = "bad_request"
	// CodeThrottled: the submission throttle rejected the origin.
	CodeThrottled Code = "throttled"
	// CodeInvalidToken: the token never existed or its binding is gone.
	CodeInvalidToken Code = "invalid_or_expired_token"
	// CodeUnknownLocality: the geocoder returned no candidate.
	CodeUnknownLocality Code = "unknown_locality"
	// CodeChangeLimitExceeded: the locality change cap is reached.
	CodeChangeLimitExceeded Code = "change_limit_exceeded"
	// CodeUnauthorized: the operation needs a verified session.
	CodeUnauthorized Code = "unauthorized"
	// CodeAlreadyMatched: a match exists, the locality is frozen.
	CodeAlreadyMatched Code = "already_matched"
	// CodeExternalFailure: mail, geocoding, or match cancellation failed.
	CodeExternalFailure Code = "external_failure"
	// CodeNotFound: the addressed entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvariantViolation: a constructor refused to build an invalid value.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal: anything else. The message is never shown to end users.
	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error in err's chain.
// Uncoded errors report CodeInternal; nil reports the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
